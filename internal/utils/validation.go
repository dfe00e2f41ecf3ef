package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/jiangong-dev/task-center/backend/internal/domain"
)

// ValidateRepeatConfig 检查重复规则是否能被生成器正确处理
func ValidateRepeatConfig(cfg *domain.RepeatConfig) error {
	switch cfg.Frequency {
	case domain.RepeatDaily:
		if cfg.Interval < 1 {
			return errors.New("daily 的间隔天数必须大于等于 1")
		}
	case domain.RepeatWeekly, domain.RepeatCustom:
		if len(cfg.CustomDays) == 0 {
			return fmt.Errorf("%s 必须指定至少一个重复日", cfg.Frequency)
		}
		for _, day := range cfg.CustomDays {
			if day < 0 || day > 6 {
				return fmt.Errorf("重复日 %d 非法，必须在 0 到 6 之间", day)
			}
		}
	case domain.RepeatMonthly:
		// monthly 的 interval 表示每月第几天
		if cfg.Interval < 1 || cfg.Interval > 31 {
			return errors.New("monthly 的日期必须在 1 到 31 之间")
		}
	default:
		return fmt.Errorf("不支持的重复频率 %s", cfg.Frequency)
	}

	if cfg.EndDate != "" {
		if _, err := time.Parse("2006-01-02", cfg.EndDate); err != nil {
			return errors.New("结束日期格式错误，必须为 YYYY-MM-DD")
		}
	}

	if cfg.HasSpecificTime && cfg.StartTime != "" {
		if _, err := time.Parse("15:04", cfg.StartTime); err != nil {
			return errors.New("开始时间格式错误，必须为 HH:MM")
		}
	}

	return nil
}
