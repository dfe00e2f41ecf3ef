package recurrence

import (
	"slices"
	"time"

	"github.com/jiangong-dev/task-center/backend/internal/domain"
)

const dayFormat = "2006-01-02"

// IsOccurrenceDay 判断一个重复任务模板在 day 这一天是否应该生成任务
// day 必须是 UTC 的零点日期，整个批次中对每个模板使用同一个 day
func IsOccurrenceDay(cfg *domain.RepeatConfig, day time.Time) bool {
	if cfg == nil {
		return false
	}

	// 结束日期之后不再生成，ISO 日期字符串可以直接按字典序比较
	if cfg.EndDate != "" && day.Format(dayFormat) > cfg.EndDate {
		return false
	}

	switch cfg.Frequency {
	case domain.RepeatDaily:
		if cfg.Interval <= 0 {
			return false
		}
		// 以 Unix 纪元为锚点计算间隔，而不是以模板创建日为锚点
		epochDays := day.Unix() / 86400
		return epochDays%int64(cfg.Interval) == 0
	case domain.RepeatWeekly, domain.RepeatCustom:
		return slices.Contains(cfg.CustomDays, int(day.Weekday()))
	case domain.RepeatMonthly:
		// 历史数据中 monthly 的 interval 存的是"每月第几天"
		return day.Day() == cfg.Interval
	default:
		return false
	}
}
