package recurrence

import (
	"strings"
	"time"
)

// AdjustWeekendDate 把落在周末的日期移到最近的工作日：
// 周六向前移到周五，周日向后移到周一，工作日原样返回
// 输入可以是 YYYY-MM-DD，也可以在日期后带时间部分（以 T 或空格分隔），
// 时间部分原样保留，只移动日期部分
// 空字符串和无法解析的输入原样返回，交给后续校验处理
func AdjustWeekendDate(value string) string {
	if value == "" {
		return ""
	}

	datePart := value
	rest := ""
	if idx := strings.IndexAny(value, "T "); idx != -1 {
		datePart = value[:idx]
		rest = value[idx:]
	}

	day, err := time.Parse(dayFormat, datePart)
	if err != nil {
		return value
	}

	switch day.Weekday() {
	case time.Saturday:
		day = day.AddDate(0, 0, -1)
	case time.Sunday:
		day = day.AddDate(0, 0, 1)
	}

	return day.Format(dayFormat) + rest
}
