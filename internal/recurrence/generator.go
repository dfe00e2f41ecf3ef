package recurrence

import (
	"log/slog"
	"time"

	"github.com/jiangong-dev/task-center/backend/internal/domain"
)

const defaultStartTime = "09:00"

type Store interface {
	GetRepeatingTasks() ([]*domain.Task, error)
	HasTaskInstanceSince(parentTaskID int64, since time.Time) (bool, error)
	CreateTask(task *domain.Task) error
	CreateTaskAssignment(taskID int64, staffID int64) error
}

type Notifier interface {
	NotifyRecurringTask(to string, data domain.RecurringTaskMailData) error
}

// Generator 把到期的重复任务模板实例化为当天的具体任务，
// 复制模板上的负责人，并向有邮箱的负责人发送通知
type Generator struct {
	store    Store
	notifier Notifier
}

func NewGenerator(store Store, notifier Notifier) *Generator {
	return &Generator{
		store:    store,
		notifier: notifier,
	}
}

// Run 执行一次批处理，now 会被归一化为 UTC 的日历日
// 只有模板列表本身获取失败才会返回错误，单个模板的失败只体现在结果里
func (g *Generator) Run(now time.Time) (*Report, error) {
	utc := now.UTC()
	today := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)

	templates, err := g.store.GetRepeatingTasks()
	if err != nil {
		return nil, err
	}

	report := &Report{
		Results: make([]TemplateResult, 0, len(templates)),
	}

	for _, tmpl := range templates {
		result := g.processTemplate(tmpl, today)
		report.Results = append(report.Results, result)
		if result.Outcome == OutcomeCreated {
			report.Created++
		} else {
			report.Skipped++
		}
	}

	return report, nil
}

func (g *Generator) processTemplate(tmpl *domain.Task, today time.Time) TemplateResult {
	result := TemplateResult{
		OriginalTask: tmpl.TaskNo,
		AssignedTo:   make([]string, 0),
	}

	if !IsOccurrenceDay(tmpl.RepeatConfig, today) {
		result.Outcome = OutcomeSkippedEligibility
		return result
	}

	// 去重检查：同一个模板同一天最多生成一次
	// 这里是先查再插，并发触发时存在竞态窗口
	exists, err := g.store.HasTaskInstanceSince(tmpl.ID, today)
	if err != nil {
		slog.Error("去重检查失败", "taskNo", tmpl.TaskNo, "error", err)
		result.Outcome = OutcomeFailed
		result.Err = err
		return result
	}
	if exists {
		result.Outcome = OutcomeSkippedDuplicate
		return result
	}

	instance := g.buildInstance(tmpl, today)
	if err := g.store.CreateTask(instance); err != nil {
		slog.Error("无法创建任务实例", "taskNo", tmpl.TaskNo, "error", err)
		result.Outcome = OutcomeFailed
		result.Err = err
		return result
	}
	result.NewTask = instance.TaskNo

	// 把模板上的负责人逐个复制到新任务上，单个失败不回滚已创建的任务
	for _, assignee := range tmpl.Assignees {
		if err := g.store.CreateTaskAssignment(instance.ID, assignee.StaffID); err != nil {
			slog.Error("无法复制任务负责人", "taskNo", instance.TaskNo, "staffID", assignee.StaffID, "error", err)
		}
	}

	// 逐个通知，单个收件人失败不影响其他人
	for _, assignee := range tmpl.Assignees {
		if assignee.Email == "" {
			continue
		}

		data := domain.RecurringTaskMailData{
			FullName: assignee.FullName,
			TaskNo:   instance.TaskNo,
			Title:    instance.Title,
			Priority: string(instance.Priority),
			DueDate:  instance.DueDate,
		}
		if err := g.notifier.NotifyRecurringTask(assignee.Email, data); err != nil {
			slog.Error("无法发送新任务通知", "taskNo", instance.TaskNo, "to", assignee.Email, "error", err)
			continue
		}

		result.AssignedTo = append(result.AssignedTo, assignee.FullName)
	}

	result.Outcome = OutcomeCreated
	return result
}

func (g *Generator) buildInstance(tmpl *domain.Task, today time.Time) *domain.Task {
	todayStr := today.Format(dayFormat)

	dueDate := todayStr
	if cfg := tmpl.RepeatConfig; cfg != nil && cfg.HasSpecificTime {
		startTime := cfg.StartTime
		if startTime == "" {
			startTime = defaultStartTime
		}
		dueDate = todayStr + "T" + startTime + ":00"
	}

	parentID := tmpl.ID
	return &domain.Task{
		TaskNo:          tmpl.TaskNo + "-" + todayStr,
		Title:           tmpl.Title,
		Description:     tmpl.Description,
		Status:          domain.TaskStatusTodo,
		Priority:        tmpl.Priority,
		AllocationMode:  tmpl.AllocationMode,
		StartDate:       AdjustWeekendDate(todayStr),
		DueDate:         AdjustWeekendDate(dueDate),
		IsRepeated:      false,
		ParentTaskID:    &parentID,
		AssignedTeamIDs: tmpl.AssignedTeamIDs,
		SupportFiles:    tmpl.SupportFiles,
	}
}
