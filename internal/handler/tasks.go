package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jiangong-dev/task-center/backend/internal/domain"
	"github.com/jiangong-dev/task-center/backend/internal/utils"
)

func (h *Handler) GetAllTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.repository.GetAllTasks()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取任务列表成功", tasks)
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TaskNo          string               `json:"taskNo" validate:"required"`
		Title           string               `json:"title" validate:"required"`
		Description     string               `json:"description"`
		Priority        string               `json:"priority" validate:"required,oneof=low medium high urgent"`
		AllocationMode  string               `json:"allocationMode"`
		StartDate       string               `json:"startDate"`
		DueDate         string               `json:"dueDate"`
		IsRepeated      bool                 `json:"isRepeated"`
		RepeatConfig    *domain.RepeatConfig `json:"repeatConfig"`
		AssignedStaffID []int64              `json:"assignedStaffIDs"`
		AssignedTeamIDs []int64              `json:"assignedTeamIDs"`
		SupportFiles    []string             `json:"supportFiles"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 重复任务模板必须带有合法的生成规则
	if req.IsRepeated {
		if req.RepeatConfig == nil {
			h.badRequest(w, r, errors.New("重复任务必须设置重复规则"))
			return
		}
		if err := utils.ValidateRepeatConfig(req.RepeatConfig); err != nil {
			h.badRequest(w, r, err)
			return
		}
	} else {
		req.RepeatConfig = nil
	}

	task := &domain.Task{
		TaskNo:          req.TaskNo,
		Title:           req.Title,
		Description:     req.Description,
		Status:          domain.TaskStatusTodo,
		Priority:        domain.TaskPriority(req.Priority),
		AllocationMode:  req.AllocationMode,
		StartDate:       req.StartDate,
		DueDate:         req.DueDate,
		IsRepeated:      req.IsRepeated,
		RepeatConfig:    req.RepeatConfig,
		AssignedTeamIDs: req.AssignedTeamIDs,
		SupportFiles:    req.SupportFiles,
	}

	if err := h.repository.CreateTaskWithAssignments(task, req.AssignedStaffID); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "tasks_task_no_key":
				h.badRequest(w, r, errors.New("任务编号已存在"))
			case pgErr.ConstraintName == "task_assignments_staff_id_fkey":
				h.badRequest(w, r, errors.New("指定的负责人不存在"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "任务创建成功", task)
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	task := r.Context().Value(TaskInfoCtx).(*domain.Task)
	h.successResponse(w, r, "获取任务成功", task)
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title        *string              `json:"title"`
		Description  *string              `json:"description"`
		Status       *string              `json:"status" validate:"omitempty,oneof=todo in_progress done"`
		Priority     *string              `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
		StartDate    *string              `json:"startDate"`
		DueDate      *string              `json:"dueDate"`
		IsRepeated   *bool                `json:"isRepeated"`
		RepeatConfig *domain.RepeatConfig `json:"repeatConfig"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	task := r.Context().Value(TaskInfoCtx).(*domain.Task)

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = domain.TaskStatus(*req.Status)
	}
	if req.Priority != nil {
		task.Priority = domain.TaskPriority(*req.Priority)
	}
	if req.StartDate != nil {
		task.StartDate = *req.StartDate
	}
	if req.DueDate != nil {
		task.DueDate = *req.DueDate
	}
	if req.IsRepeated != nil {
		task.IsRepeated = *req.IsRepeated
	}
	if req.RepeatConfig != nil {
		task.RepeatConfig = req.RepeatConfig
	}

	if task.IsRepeated {
		if task.RepeatConfig == nil {
			h.badRequest(w, r, errors.New("重复任务必须设置重复规则"))
			return
		}
		if err := utils.ValidateRepeatConfig(task.RepeatConfig); err != nil {
			h.badRequest(w, r, err)
			return
		}
	}

	if err := h.repository.UpdateTask(task); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新任务失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新任务成功", task)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	task := r.Context().Value(TaskInfoCtx).(*domain.Task)

	if err := h.repository.DeleteTask(task.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除任务成功", nil)
}
