package handler

import (
	"fmt"
	"net/http"
	"time"
)

// 这个接口的响应格式是和外部调度器约定好的，不走统一的 Response 包装

type cronResult struct {
	OriginalTask string   `json:"originalTask"`
	NewTask      string   `json:"newTask"`
	AssignedTo   []string `json:"assignedTo"`
}

type cronResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Created int          `json:"created"`
	Skipped int          `json:"skipped"`
	Results []cronResult `json:"results"`
}

// authorizeCron 按顺序检查三种调用方式：
// 可信调度器的签名头（只检查是否存在）、Bearer 密钥、secret 查询参数
// 未配置密钥时一律拒绝
func (h *Handler) authorizeCron(r *http.Request) bool {
	secret := h.config.Cron.Secret
	if secret == "" {
		return false
	}

	if r.Header.Get("X-Cron-Signature") != "" {
		return true
	}

	if r.Header.Get("Authorization") == "Bearer "+secret {
		return true
	}

	return r.URL.Query().Get("secret") == secret
}

func (h *Handler) CreateRepeatedTasks(w http.ResponseWriter, r *http.Request) {
	if !h.authorizeCron(r) {
		h.writeJSON(w, r, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	report, err := h.generator.Run(time.Now())
	if err != nil {
		h.logInternalServerError(r, err)
		h.writeJSON(w, r, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	results := make([]cronResult, 0, report.Created)
	for _, result := range report.CreatedResults() {
		results = append(results, cronResult{
			OriginalTask: result.OriginalTask,
			NewTask:      result.NewTask,
			AssignedTo:   result.AssignedTo,
		})
	}

	h.writeJSON(w, r, http.StatusOK, cronResponse{
		Success: true,
		Message: fmt.Sprintf("本次共生成 %d 个任务，跳过 %d 个模板", report.Created, report.Skipped),
		Created: report.Created,
		Skipped: report.Skipped,
		Results: results,
	})
}
