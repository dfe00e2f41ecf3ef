package seed

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"slices"

	"golang.org/x/crypto/bcrypt"

	"github.com/jiangong-dev/task-center/backend/internal/domain"
	"github.com/jiangong-dev/task-center/backend/internal/repository"
	"github.com/jiangong-dev/task-center/backend/internal/utils"
)

var validRoles = []string{
	string(domain.RoleWorker),
	string(domain.RoleProjectManager),
	string(domain.RoleAdmin),
}

// SeedStaffRoster 从花名册 CSV 中导入员工账号
// 表头需要包含 姓名、邮箱、角色 三列，用户名由姓名的拼音生成，初始密码统一使用配置中的种子密码
func SeedStaffRoster(r *repository.Repository, password string) {
	file, err := os.Open("./internal/seed/data/roster.csv")
	if err != nil {
		slog.Error("打开文件失败", "error", err)
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		slog.Error("读取表头失败", "error", err)
		return
	}

	columnIndex := make(map[string]int)
	for i, header := range headers {
		columnIndex[header] = i
	}
	for _, column := range []string{"姓名", "邮箱", "角色"} {
		if _, exists := columnIndex[column]; !exists {
			slog.Error("没有找到信息列", "column", column)
			return
		}
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("无法生成密码哈希", "error", err)
		return
	}

	cnt := 0
	for {
		row, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			slog.Error("读取文件失败", "error", err)
			return
		}

		fullName := row[columnIndex["姓名"]]
		email := row[columnIndex["邮箱"]]
		role := row[columnIndex["角色"]]

		if !slices.Contains(validRoles, role) {
			slog.Error("角色非法，跳过该行", "fullName", fullName, "role", role)
			continue
		}

		user := &domain.User{
			Username:     utils.GenerateUsernameFromChineseName(fullName),
			PasswordHash: string(passwordHash),
			FullName:     fullName,
			Email:        email,
			Role:         domain.Role(role),
		}

		if err := r.CreateUser(user); err != nil {
			slog.Error("无法插入员工账号", "fullName", fullName, "error", err)
			continue
		}

		cnt++
	}

	slog.Info("导入员工花名册成功", "count", cnt)
}
