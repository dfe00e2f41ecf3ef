package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jiangong-dev/task-center/backend/internal/config"
	"github.com/jiangong-dev/task-center/backend/internal/domain"
	"github.com/jiangong-dev/task-center/backend/internal/recurrence"
)

type emptyStore struct{}

func (emptyStore) GetRepeatingTasks() ([]*domain.Task, error) { return nil, nil }
func (emptyStore) HasTaskInstanceSince(parentTaskID int64, since time.Time) (bool, error) {
	return false, nil
}
func (emptyStore) CreateTask(task *domain.Task) error                  { return nil }
func (emptyStore) CreateTaskAssignment(taskID int64, staffID int64) error { return nil }

type noopNotifier struct{}

func (noopNotifier) NotifyRecurringTask(to string, data domain.RecurringTaskMailData) error {
	return nil
}

func newCronTestHandler(t *testing.T, secret string) *Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.Cron.Secret = secret

	generator := recurrence.NewGenerator(emptyStore{}, noopNotifier{})
	h, err := NewHandler(cfg, nil, nil, nil, generator)
	if err != nil {
		t.Fatalf("无法构造 Handler：%v", err)
	}
	return h
}

func TestCreateRepeatedTasks_Authorization(t *testing.T) {
	tests := []struct {
		name           string
		secret         string
		authorization  string
		signature      string
		query          string
		expectedStatus int
	}{
		{
			name:           "没有任何凭证",
			secret:         "cron-secret",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "正确的 Bearer 密钥",
			secret:         "cron-secret",
			authorization:  "Bearer cron-secret",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "错误的 Bearer 密钥",
			secret:         "cron-secret",
			authorization:  "Bearer wrong",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "正确的 secret 查询参数",
			secret:         "cron-secret",
			query:          "?secret=cron-secret",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "错误的 secret 查询参数",
			secret:         "cron-secret",
			query:          "?secret=wrong",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "调度器签名头存在即放行",
			secret:         "cron-secret",
			signature:      "any-value",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "未配置密钥时一律拒绝",
			secret:         "",
			authorization:  "Bearer ",
			signature:      "any-value",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newCronTestHandler(t, tt.secret)

			r := httptest.NewRequest(http.MethodGet, "/cron/create-repeated-tasks"+tt.query, nil)
			if tt.authorization != "" {
				r.Header.Set("Authorization", tt.authorization)
			}
			if tt.signature != "" {
				r.Header.Set("X-Cron-Signature", tt.signature)
			}

			w := httptest.NewRecorder()
			h.CreateRepeatedTasks(w, r)

			if w.Code != tt.expectedStatus {
				t.Fatalf("状态码期望 %d，实际 %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedStatus == http.StatusUnauthorized {
				var body map[string]string
				if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
					t.Fatalf("响应不是合法的 JSON：%v", err)
				}
				if body["error"] != "Unauthorized" {
					t.Errorf("错误信息期望 Unauthorized，实际 %q", body["error"])
				}
			}
		})
	}
}

func TestCreateRepeatedTasks_ResponseShape(t *testing.T) {
	h := newCronTestHandler(t, "cron-secret")

	r := httptest.NewRequest(http.MethodGet, "/cron/create-repeated-tasks", nil)
	r.Header.Set("Authorization", "Bearer cron-secret")
	w := httptest.NewRecorder()
	h.CreateRepeatedTasks(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("状态码期望 200，实际 %d", w.Code)
	}

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Created int    `json:"created"`
		Skipped int    `json:"skipped"`
		Results []struct {
			OriginalTask string   `json:"originalTask"`
			NewTask      string   `json:"newTask"`
			AssignedTo   []string `json:"assignedTo"`
		} `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("响应不是合法的 JSON：%v", err)
	}
	if !body.Success {
		t.Error("success 应该为 true")
	}
	if body.Message == "" {
		t.Error("message 不应该为空")
	}
	if body.Created != 0 || body.Skipped != 0 {
		t.Errorf("没有模板时期望 created=0 skipped=0，实际 created=%d skipped=%d", body.Created, body.Skipped)
	}
	if body.Results == nil {
		t.Error("results 应该是空数组而不是 null")
	}
}
