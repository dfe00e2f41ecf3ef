package recurrence

import "testing"

func TestAdjustWeekendDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"周六提前到周五", "2026-08-29", "2026-08-28"},
		{"周日推迟到周一", "2026-08-30", "2026-08-31"},
		{"工作日保持不变", "2026-08-26", "2026-08-26"},
		{"周五保持不变", "2026-08-28", "2026-08-28"},
		{"周六跨月提前", "2026-08-01", "2026-07-31"},
		{"周日跨月推迟", "2026-05-31", "2026-06-01"},
		{"带 T 分隔的时间保留", "2026-08-29T14:30:00", "2026-08-28T14:30:00"},
		{"带空格分隔的时间保留", "2026-08-30 09:00", "2026-08-31 09:00"},
		{"工作日带时间保持不变", "2026-08-27T09:00:00", "2026-08-27T09:00:00"},
		{"空字符串原样返回", "", ""},
		{"无法解析原样返回", "not-a-date", "not-a-date"},
		{"格式错误原样返回", "2026/08/29", "2026/08/29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AdjustWeekendDate(tt.input); got != tt.expected {
				t.Errorf("AdjustWeekendDate(%q) 期望 %q，实际 %q", tt.input, tt.expected, got)
			}
		})
	}
}
