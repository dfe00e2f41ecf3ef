package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/jiangong-dev/task-center/backend/internal/config"
	"github.com/jiangong-dev/task-center/backend/internal/repository"
	"github.com/jiangong-dev/task-center/backend/internal/seed"
	"github.com/jiangong-dev/task-center/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机员工, 2: 插入随机重复任务模板, 3: 为已有模板随机指派负责人, 4: 导入员工花名册)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的员工数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
				if err != nil {
					slog.Error("无法生成随机员工", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateUser(user); err != nil {
					slog.Error("无法插入员工", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入员工成功", slog.Int("count", n-cnt))
		}
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的模板数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				task := utils.GenerateRandomRepeatingTask()
				if err := repo.CreateTask(task); err != nil {
					slog.Error("无法插入重复任务模板", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入重复任务模板成功", slog.Int("count", n-cnt))
		}
	case 3:
		// 先获取所有模板和所有员工，再随机配对
		templates, err := repo.GetRepeatingTasks()
		if err != nil {
			slog.Error("无法获取重复任务模板", slog.String("error", err.Error()))
			return
		}
		users, err := repo.GetAllUsers()
		if err != nil {
			slog.Error("无法获取员工列表", slog.String("error", err.Error()))
			return
		}
		if len(templates) == 0 || len(users) == 0 {
			slog.Error("没有可用的模板或员工")
			return
		}

		cnt := 0
		for _, tmpl := range templates {
			user := users[rand.Intn(len(users))]
			if err := repo.CreateTaskAssignment(tmpl.ID, user.ID); err != nil {
				slog.Error("无法指派负责人", slog.String("error", err.Error()))
				continue
			}
			cnt++
		}

		slog.Info("指派负责人成功", slog.Int("count", cnt))
	case 4:
		seed.SeedStaffRoster(repo, cfg.Seed.User.Password)
	default:
		slog.Error("指定的操作非法")
	}
}
