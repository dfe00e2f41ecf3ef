package utils

import (
	"fmt"
	"math/rand"

	"github.com/mozillazg/go-pinyin"
	"golang.org/x/crypto/bcrypt"

	"github.com/jiangong-dev/task-center/backend/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var roles = []domain.Role{
	domain.RoleWorker,
	domain.RoleProjectManager,
	domain.RoleAdmin,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

var priorities = []domain.TaskPriority{
	domain.TaskPriorityLow,
	domain.TaskPriorityMedium,
	domain.TaskPriorityHigh,
	domain.TaskPriorityUrgent,
}

// 用 Fisher-Yates 洗牌算法来生成随机的自定义重复日
func GenerateRandomCustomDays() []int {
	days := []int{0, 1, 2, 3, 4, 5, 6}

	for i := len(days) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		days[i], days[j] = days[j], days[i]
	}

	n := rand.Intn(len(days)) + 1

	return days[:n]
}

func GenerateRandomRepeatConfig() *domain.RepeatConfig {
	frequencies := []domain.RepeatFrequency{
		domain.RepeatDaily,
		domain.RepeatWeekly,
		domain.RepeatMonthly,
		domain.RepeatCustom,
	}

	cfg := &domain.RepeatConfig{
		Frequency: frequencies[rand.Intn(len(frequencies))],
	}

	switch cfg.Frequency {
	case domain.RepeatDaily:
		cfg.Interval = rand.Intn(7) + 1
	case domain.RepeatMonthly:
		// monthly 的 interval 表示每月第几天
		cfg.Interval = rand.Intn(28) + 1
	case domain.RepeatWeekly, domain.RepeatCustom:
		cfg.Interval = 1
		cfg.CustomDays = GenerateRandomCustomDays()
	}

	if rand.Intn(2) == 0 {
		cfg.HasSpecificTime = true
		cfg.StartTime = fmt.Sprintf("%02d:%02d", rand.Intn(10)+8, rand.Intn(60))
	}

	return cfg
}

// 随机生成一个重复任务模板
func GenerateRandomRepeatingTask() *domain.Task {
	return &domain.Task{
		TaskNo:       "T" + GenerateRandomID(0, 4),
		Title:        "巡检任务" + GenerateRandomID(3, 3),
		Description:  "任务描述" + GenerateRandomID(20, 10),
		Status:       domain.TaskStatusTodo,
		Priority:     priorities[rand.Intn(len(priorities))],
		IsRepeated:   true,
		RepeatConfig: GenerateRandomRepeatConfig(),
	}
}
