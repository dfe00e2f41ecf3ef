package utils

import (
	"testing"

	"github.com/jiangong-dev/task-center/backend/internal/domain"
)

func TestValidateRepeatConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *domain.RepeatConfig
		wantErr bool
	}{
		{"每天", &domain.RepeatConfig{Frequency: domain.RepeatDaily, Interval: 1}, false},
		{"每三天", &domain.RepeatConfig{Frequency: domain.RepeatDaily, Interval: 3}, false},
		{"daily 间隔为 0", &domain.RepeatConfig{Frequency: domain.RepeatDaily, Interval: 0}, true},
		{"weekly 周一三五", &domain.RepeatConfig{Frequency: domain.RepeatWeekly, CustomDays: []int{1, 3, 5}}, false},
		{"weekly 没有重复日", &domain.RepeatConfig{Frequency: domain.RepeatWeekly}, true},
		{"weekly 重复日越界", &domain.RepeatConfig{Frequency: domain.RepeatWeekly, CustomDays: []int{7}}, true},
		{"custom 同 weekly", &domain.RepeatConfig{Frequency: domain.RepeatCustom, CustomDays: []int{0, 6}}, false},
		{"monthly 每月 15 号", &domain.RepeatConfig{Frequency: domain.RepeatMonthly, Interval: 15}, false},
		{"monthly 日期越界", &domain.RepeatConfig{Frequency: domain.RepeatMonthly, Interval: 32}, true},
		{"未知频率", &domain.RepeatConfig{Frequency: "yearly", Interval: 1}, true},
		{"合法的结束日期", &domain.RepeatConfig{Frequency: domain.RepeatDaily, Interval: 1, EndDate: "2026-12-31"}, false},
		{"结束日期格式错误", &domain.RepeatConfig{Frequency: domain.RepeatDaily, Interval: 1, EndDate: "2026/12/31"}, true},
		{"合法的开始时间", &domain.RepeatConfig{Frequency: domain.RepeatDaily, Interval: 1, HasSpecificTime: true, StartTime: "09:30"}, false},
		{"开始时间格式错误", &domain.RepeatConfig{Frequency: domain.RepeatDaily, Interval: 1, HasSpecificTime: true, StartTime: "9点半"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRepeatConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("期望出错=%v，实际错误=%v", tt.wantErr, err)
			}
		})
	}
}
