package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jiangong-dev/task-center/backend/internal/domain"
)

// 任务表中 repeat_config、assigned_team_ids 和 support_files 均为 jsonb 列
func unmarshalTaskJSONColumns(task *domain.Task, repeatConfig, teamIDs, supportFiles []byte) error {
	if len(repeatConfig) > 0 {
		cfg := &domain.RepeatConfig{}
		if err := json.Unmarshal(repeatConfig, cfg); err != nil {
			return err
		}
		task.RepeatConfig = cfg
	}

	task.AssignedTeamIDs = make([]int64, 0)
	if len(teamIDs) > 0 {
		if err := json.Unmarshal(teamIDs, &task.AssignedTeamIDs); err != nil {
			return err
		}
	}

	task.SupportFiles = make([]string, 0)
	if len(supportFiles) > 0 {
		if err := json.Unmarshal(supportFiles, &task.SupportFiles); err != nil {
			return err
		}
	}

	return nil
}

func marshalTaskJSONColumns(task *domain.Task) (repeatConfig, teamIDs, supportFiles []byte, err error) {
	if task.RepeatConfig != nil {
		if repeatConfig, err = json.Marshal(task.RepeatConfig); err != nil {
			return nil, nil, nil, err
		}
	}
	if teamIDs, err = json.Marshal(task.AssignedTeamIDs); err != nil {
		return nil, nil, nil, err
	}
	if supportFiles, err = json.Marshal(task.SupportFiles); err != nil {
		return nil, nil, nil, err
	}
	return repeatConfig, teamIDs, supportFiles, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// GetRepeatingTasks 返回所有重复任务模板及其负责人信息（含姓名和邮箱）
func (r *Repository) GetRepeatingTasks() ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			t.id,
			t.task_no,
			t.title,
			t.description,
			t.status,
			t.priority,
			t.allocation_mode,
			t.start_date,
			t.due_date,
			t.repeat_config,
			t.assigned_team_ids,
			t.support_files,
			t.created_at,
			t.version,
			u.id,
			u.full_name,
			u.email
		FROM tasks t
		LEFT JOIN task_assignments ta ON t.id = ta.task_id
		LEFT JOIN users u ON ta.staff_id = u.id
		WHERE t.is_repeated = TRUE
		ORDER BY t.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasksMap := make(map[int64]*domain.Task)
	taskIDs := make([]int64, 0)

	for rows.Next() {
		var row struct {
			ID             int64
			TaskNo         string
			Title          string
			Description    string
			Status         string
			Priority       string
			AllocationMode string
			StartDate      sql.NullString
			DueDate        sql.NullString
			RepeatConfig   []byte
			TeamIDs        []byte
			SupportFiles   []byte
			CreatedAt      time.Time
			Version        int32

			StaffID       sql.NullInt64
			StaffFullName sql.NullString
			StaffEmail    sql.NullString
		}

		dst := []any{
			&row.ID,
			&row.TaskNo,
			&row.Title,
			&row.Description,
			&row.Status,
			&row.Priority,
			&row.AllocationMode,
			&row.StartDate,
			&row.DueDate,
			&row.RepeatConfig,
			&row.TeamIDs,
			&row.SupportFiles,
			&row.CreatedAt,
			&row.Version,
			&row.StaffID,
			&row.StaffFullName,
			&row.StaffEmail,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		task, exists := tasksMap[row.ID]
		if !exists {
			// 说明此时是第一次查到这个模板，需要在 map 中初始化这个模板
			task = &domain.Task{
				ID:             row.ID,
				TaskNo:         row.TaskNo,
				Title:          row.Title,
				Description:    row.Description,
				Status:         domain.TaskStatus(row.Status),
				Priority:       domain.TaskPriority(row.Priority),
				AllocationMode: row.AllocationMode,
				StartDate:      row.StartDate.String,
				DueDate:        row.DueDate.String,
				IsRepeated:     true,
				CreatedAt:      row.CreatedAt,
				Version:        row.Version,
				Assignees:      make([]domain.TaskAssignee, 0),
			}
			if err := unmarshalTaskJSONColumns(task, row.RepeatConfig, row.TeamIDs, row.SupportFiles); err != nil {
				return nil, err
			}
			tasksMap[row.ID] = task
			taskIDs = append(taskIDs, row.ID)
		}

		// 如果 StaffID 为空，则表示这个模板没有任何负责人，此时可以跳过负责人解析的部分
		if !row.StaffID.Valid {
			continue
		}

		task.Assignees = append(task.Assignees, domain.TaskAssignee{
			StaffID:  row.StaffID.Int64,
			FullName: row.StaffFullName.String,
			Email:    row.StaffEmail.String,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	tasks := make([]*domain.Task, 0, len(taskIDs))
	for _, id := range taskIDs {
		tasks = append(tasks, tasksMap[id])
	}

	return tasks, nil
}

// HasTaskInstanceSince 检查某个模板在 since 之后是否已经生成过任务
func (r *Repository) HasTaskInstanceSince(parentTaskID int64, since time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT EXISTS (
			SELECT 1 FROM tasks WHERE parent_task_id = $1 AND created_at >= $2
		)
	`

	var exists bool
	if err := r.dbpool.QueryRowContext(ctx, query, parentTaskID, since).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

func (r *Repository) CreateTask(task *domain.Task) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	repeatConfig, teamIDs, supportFiles, err := marshalTaskJSONColumns(task)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tasks (
			task_no, title, description, status, priority, allocation_mode,
			start_date, due_date, is_repeated, repeat_config, parent_task_id,
			assigned_team_ids, support_files
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, version
	`

	args := []any{
		task.TaskNo,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.AllocationMode,
		nullableString(task.StartDate),
		nullableString(task.DueDate),
		task.IsRepeated,
		repeatConfig,
		task.ParentTaskID,
		teamIDs,
		supportFiles,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&task.ID, &task.CreatedAt, &task.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) CreateTaskAssignment(taskID int64, staffID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO task_assignments (task_id, staff_id)
		VALUES ($1, $2)
	`

	if _, err := r.dbpool.ExecContext(ctx, query, taskID, staffID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetTaskByID(id int64) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			t.task_no,
			t.title,
			t.description,
			t.status,
			t.priority,
			t.allocation_mode,
			t.start_date,
			t.due_date,
			t.is_repeated,
			t.repeat_config,
			t.parent_task_id,
			t.assigned_team_ids,
			t.support_files,
			t.created_at,
			t.version,
			u.id,
			u.full_name,
			u.email
		FROM tasks t
		LEFT JOIN task_assignments ta ON t.id = ta.task_id
		LEFT JOIN users u ON ta.staff_id = u.id
		WHERE t.id = $1
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	task := &domain.Task{
		ID:        id,
		Assignees: make([]domain.TaskAssignee, 0),
	}
	found := false

	for rows.Next() {
		var row struct {
			TaskNo         string
			Title          string
			Description    string
			Status         string
			Priority       string
			AllocationMode string
			StartDate      sql.NullString
			DueDate        sql.NullString
			IsRepeated     bool
			RepeatConfig   []byte
			ParentTaskID   sql.NullInt64
			TeamIDs        []byte
			SupportFiles   []byte
			CreatedAt      time.Time
			Version        int32

			StaffID       sql.NullInt64
			StaffFullName sql.NullString
			StaffEmail    sql.NullString
		}

		dst := []any{
			&row.TaskNo,
			&row.Title,
			&row.Description,
			&row.Status,
			&row.Priority,
			&row.AllocationMode,
			&row.StartDate,
			&row.DueDate,
			&row.IsRepeated,
			&row.RepeatConfig,
			&row.ParentTaskID,
			&row.TeamIDs,
			&row.SupportFiles,
			&row.CreatedAt,
			&row.Version,
			&row.StaffID,
			&row.StaffFullName,
			&row.StaffEmail,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if !found {
			// 说明此时是第一次查到这个任务，需要初始化这个任务
			task.TaskNo = row.TaskNo
			task.Title = row.Title
			task.Description = row.Description
			task.Status = domain.TaskStatus(row.Status)
			task.Priority = domain.TaskPriority(row.Priority)
			task.AllocationMode = row.AllocationMode
			task.StartDate = row.StartDate.String
			task.DueDate = row.DueDate.String
			task.IsRepeated = row.IsRepeated
			task.CreatedAt = row.CreatedAt
			task.Version = row.Version
			if row.ParentTaskID.Valid {
				parentID := row.ParentTaskID.Int64
				task.ParentTaskID = &parentID
			}
			if err := unmarshalTaskJSONColumns(task, row.RepeatConfig, row.TeamIDs, row.SupportFiles); err != nil {
				return nil, err
			}
			found = true
		}

		if !row.StaffID.Valid {
			// 说明该任务没有任何负责人
			continue
		}

		task.Assignees = append(task.Assignees, domain.TaskAssignee{
			StaffID:  row.StaffID.Int64,
			FullName: row.StaffFullName.String,
			Email:    row.StaffEmail.String,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !found {
		return nil, sql.ErrNoRows
	}

	return task, nil
}

func (r *Repository) GetAllTasks() ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			id, task_no, title, description, status, priority, allocation_mode,
			start_date, due_date, is_repeated, repeat_config, parent_task_id,
			assigned_team_ids, support_files, created_at, version
		FROM tasks
		ORDER BY created_at DESC
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task := &domain.Task{
			Assignees: make([]domain.TaskAssignee, 0),
		}
		var startDate, dueDate sql.NullString
		var parentTaskID sql.NullInt64
		var repeatConfig, teamIDs, supportFiles []byte

		dst := []any{
			&task.ID,
			&task.TaskNo,
			&task.Title,
			&task.Description,
			&task.Status,
			&task.Priority,
			&task.AllocationMode,
			&startDate,
			&dueDate,
			&task.IsRepeated,
			&repeatConfig,
			&parentTaskID,
			&teamIDs,
			&supportFiles,
			&task.CreatedAt,
			&task.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		task.StartDate = startDate.String
		task.DueDate = dueDate.String
		if parentTaskID.Valid {
			parentID := parentTaskID.Int64
			task.ParentTaskID = &parentID
		}
		if err := unmarshalTaskJSONColumns(task, repeatConfig, teamIDs, supportFiles); err != nil {
			return nil, err
		}

		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

// CreateTaskWithAssignments 供任务管理接口使用，模板及其负责人在同一个事务中落库
func (r *Repository) CreateTaskWithAssignments(task *domain.Task, staffIDs []int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	repeatConfig, teamIDs, supportFiles, err := marshalTaskJSONColumns(task)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tasks (
			task_no, title, description, status, priority, allocation_mode,
			start_date, due_date, is_repeated, repeat_config, parent_task_id,
			assigned_team_ids, support_files
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, version
	`
	args := []any{
		task.TaskNo,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.AllocationMode,
		nullableString(task.StartDate),
		nullableString(task.DueDate),
		task.IsRepeated,
		repeatConfig,
		task.ParentTaskID,
		teamIDs,
		supportFiles,
	}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&task.ID, &task.CreatedAt, &task.Version); err != nil {
		return err
	}

	for _, staffID := range staffIDs {
		query = `
			INSERT INTO task_assignments (task_id, staff_id)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, task.ID, staffID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateTask(task *domain.Task) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	repeatConfig, teamIDs, supportFiles, err := marshalTaskJSONColumns(task)
	if err != nil {
		return err
	}

	query := `
		UPDATE tasks
		SET
			title = $1,
			description = $2,
			status = $3,
			priority = $4,
			allocation_mode = $5,
			start_date = $6,
			due_date = $7,
			is_repeated = $8,
			repeat_config = $9,
			assigned_team_ids = $10,
			support_files = $11,
			version = version + 1
		WHERE id = $12 AND version = $13
		RETURNING version
	`

	args := []any{
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.AllocationMode,
		nullableString(task.StartDate),
		nullableString(task.DueDate),
		task.IsRepeated,
		repeatConfig,
		teamIDs,
		supportFiles,
		task.ID,
		task.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&task.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteTask(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM tasks WHERE id = $1
	`

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
