package recurrence

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/jiangong-dev/task-center/backend/internal/domain"
)

type mockStore struct {
	templates []*domain.Task
	fetchErr  error

	clock       time.Time
	nextID      int64
	created     []*domain.Task
	assignments map[int64][]int64
	createErrBy map[string]error
}

func newMockStore(templates ...*domain.Task) *mockStore {
	return &mockStore{
		templates:   templates,
		clock:       time.Now().UTC(),
		nextID:      1000,
		assignments: make(map[int64][]int64),
		createErrBy: make(map[string]error),
	}
}

func (m *mockStore) GetRepeatingTasks() ([]*domain.Task, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.templates, nil
}

func (m *mockStore) HasTaskInstanceSince(parentTaskID int64, since time.Time) (bool, error) {
	for _, task := range m.created {
		if task.ParentTaskID != nil && *task.ParentTaskID == parentTaskID && !task.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStore) CreateTask(task *domain.Task) error {
	if err := m.createErrBy[task.TaskNo]; err != nil {
		return err
	}
	m.nextID++
	task.ID = m.nextID
	task.CreatedAt = m.clock
	m.created = append(m.created, task)
	return nil
}

func (m *mockStore) CreateTaskAssignment(taskID int64, staffID int64) error {
	m.assignments[taskID] = append(m.assignments[taskID], staffID)
	return nil
}

type mockNotifier struct {
	sent    map[string]domain.RecurringTaskMailData
	failFor map[string]error
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{
		sent:    make(map[string]domain.RecurringTaskMailData),
		failFor: make(map[string]error),
	}
}

func (m *mockNotifier) NotifyRecurringTask(to string, data domain.RecurringTaskMailData) error {
	if err := m.failFor[to]; err != nil {
		return err
	}
	m.sent[to] = data
	return nil
}

func weeklyTemplate() *domain.Task {
	return &domain.Task{
		ID:       10,
		TaskNo:   "T010",
		Title:    "每周安全巡检",
		Status:   domain.TaskStatusTodo,
		Priority: domain.TaskPriorityHigh,
		// 周一、周三、周五
		IsRepeated:   true,
		RepeatConfig: &domain.RepeatConfig{Frequency: domain.RepeatWeekly, Interval: 1, CustomDays: []int{1, 3, 5}},
		Assignees: []domain.TaskAssignee{
			{StaffID: 1, FullName: "张三", Email: "zhangsan@example.com"},
			{StaffID: 2, FullName: "李四", Email: "lisi@example.com"},
		},
	}
}

func dailyTemplate(id int64, taskNo string) *domain.Task {
	return &domain.Task{
		ID:           id,
		TaskNo:       taskNo,
		Title:        "每日例行检查",
		Status:       domain.TaskStatusTodo,
		Priority:     domain.TaskPriorityMedium,
		IsRepeated:   true,
		RepeatConfig: &domain.RepeatConfig{Frequency: domain.RepeatDaily, Interval: 1},
	}
}

func TestGeneratorRun_WeeklySchedule(t *testing.T) {
	tuesday := date(2026, time.August, 25)
	wednesday := date(2026, time.August, 26)

	store := newMockStore(weeklyTemplate())
	store.clock = wednesday
	generator := NewGenerator(store, newMockNotifier())

	report, err := generator.Run(tuesday)
	if err != nil {
		t.Fatalf("Run 返回错误：%v", err)
	}
	if report.Created != 0 || report.Skipped != 1 {
		t.Fatalf("周二不应该生成，created=%d skipped=%d", report.Created, report.Skipped)
	}
	if report.Results[0].Outcome != OutcomeSkippedEligibility {
		t.Errorf("期望结局 %s，实际 %s", OutcomeSkippedEligibility, report.Results[0].Outcome)
	}

	report, err = generator.Run(wednesday)
	if err != nil {
		t.Fatalf("Run 返回错误：%v", err)
	}
	if report.Created != 1 || report.Skipped != 0 {
		t.Fatalf("周三应该生成 1 个，created=%d skipped=%d", report.Created, report.Skipped)
	}
	if report.Results[0].NewTask != "T010-2026-08-26" {
		t.Errorf("新任务编号期望 T010-2026-08-26，实际 %s", report.Results[0].NewTask)
	}
}

func TestGeneratorRun_InstanceFields(t *testing.T) {
	wednesday := date(2026, time.August, 26)
	tmpl := weeklyTemplate()
	tmpl.Description = "检查现场安全措施"
	tmpl.AllocationMode = "manual"
	tmpl.AssignedTeamIDs = []int64{3, 7}

	store := newMockStore(tmpl)
	store.clock = wednesday
	generator := NewGenerator(store, newMockNotifier())

	if _, err := generator.Run(wednesday); err != nil {
		t.Fatalf("Run 返回错误：%v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("期望创建 1 个任务，实际 %d", len(store.created))
	}

	instance := store.created[0]
	if instance.TaskNo != "T010-2026-08-26" {
		t.Errorf("任务编号期望 T010-2026-08-26，实际 %s", instance.TaskNo)
	}
	if instance.Title != tmpl.Title || instance.Description != tmpl.Description {
		t.Error("标题和描述应该从模板复制")
	}
	if instance.Priority != tmpl.Priority || instance.AllocationMode != tmpl.AllocationMode {
		t.Error("优先级和分配方式应该从模板复制")
	}
	if instance.Status != domain.TaskStatusTodo {
		t.Errorf("新任务状态期望 %s，实际 %s", domain.TaskStatusTodo, instance.Status)
	}
	if instance.IsRepeated {
		t.Error("生成的实例不应该再是重复任务")
	}
	if instance.ParentTaskID == nil || *instance.ParentTaskID != tmpl.ID {
		t.Error("实例应该指向模板的 ID")
	}
	if instance.StartDate != "2026-08-26" || instance.DueDate != "2026-08-26" {
		t.Errorf("开始和截止日期期望当天，实际 start=%s due=%s", instance.StartDate, instance.DueDate)
	}
	if !slices.Equal(instance.AssignedTeamIDs, tmpl.AssignedTeamIDs) {
		t.Error("班组列表应该从模板复制")
	}
}

func TestGeneratorRun_SpecificTimeDueDate(t *testing.T) {
	wednesday := date(2026, time.August, 26)

	withTime := dailyTemplate(20, "T020")
	withTime.RepeatConfig.HasSpecificTime = true
	withTime.RepeatConfig.StartTime = "14:00"

	withDefault := dailyTemplate(21, "T021")
	withDefault.RepeatConfig.HasSpecificTime = true

	store := newMockStore(withTime, withDefault)
	store.clock = wednesday
	generator := NewGenerator(store, newMockNotifier())

	if _, err := generator.Run(wednesday); err != nil {
		t.Fatalf("Run 返回错误：%v", err)
	}
	if len(store.created) != 2 {
		t.Fatalf("期望创建 2 个任务，实际 %d", len(store.created))
	}
	if got := store.created[0].DueDate; got != "2026-08-26T14:00:00" {
		t.Errorf("指定时间的截止日期期望 2026-08-26T14:00:00，实际 %s", got)
	}
	if got := store.created[1].DueDate; got != "2026-08-26T09:00:00" {
		t.Errorf("缺省时间的截止日期期望 2026-08-26T09:00:00，实际 %s", got)
	}
}

func TestGeneratorRun_WeekendDatesAdjusted(t *testing.T) {
	saturday := date(2026, time.August, 29)

	tmpl := dailyTemplate(30, "T030")
	tmpl.RepeatConfig.HasSpecificTime = true
	tmpl.RepeatConfig.StartTime = "10:30"

	store := newMockStore(tmpl)
	store.clock = saturday
	generator := NewGenerator(store, newMockNotifier())

	if _, err := generator.Run(saturday); err != nil {
		t.Fatalf("Run 返回错误：%v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("期望创建 1 个任务，实际 %d", len(store.created))
	}

	instance := store.created[0]
	if instance.StartDate != "2026-08-28" {
		t.Errorf("周六的开始日期应该提前到周五，实际 %s", instance.StartDate)
	}
	if instance.DueDate != "2026-08-28T10:30:00" {
		t.Errorf("周六的截止日期应该提前到周五并保留时间，实际 %s", instance.DueDate)
	}
	if instance.TaskNo != "T030-2026-08-29" {
		t.Errorf("任务编号仍然使用当天日期，实际 %s", instance.TaskNo)
	}
}

func TestGeneratorRun_Idempotent(t *testing.T) {
	wednesday := date(2026, time.August, 26)

	store := newMockStore(dailyTemplate(40, "T040"))
	store.clock = wednesday
	generator := NewGenerator(store, newMockNotifier())

	report, err := generator.Run(wednesday)
	if err != nil {
		t.Fatalf("第一次 Run 返回错误：%v", err)
	}
	if report.Created != 1 {
		t.Fatalf("第一次应该生成 1 个，实际 %d", report.Created)
	}

	report, err = generator.Run(wednesday)
	if err != nil {
		t.Fatalf("第二次 Run 返回错误：%v", err)
	}
	if report.Created != 0 || report.Skipped != 1 {
		t.Fatalf("同一天重复触发不应该再生成，created=%d skipped=%d", report.Created, report.Skipped)
	}
	if report.Results[0].Outcome != OutcomeSkippedDuplicate {
		t.Errorf("期望结局 %s，实际 %s", OutcomeSkippedDuplicate, report.Results[0].Outcome)
	}
	if len(store.created) != 1 {
		t.Errorf("数据库里应该只有 1 个实例，实际 %d", len(store.created))
	}
}

func TestGeneratorRun_InsertFailureDoesNotAbortBatch(t *testing.T) {
	wednesday := date(2026, time.August, 26)

	store := newMockStore(dailyTemplate(50, "T050"), dailyTemplate(51, "T051"))
	store.clock = wednesday
	store.createErrBy["T050-2026-08-26"] = errors.New("插入失败")
	generator := NewGenerator(store, newMockNotifier())

	report, err := generator.Run(wednesday)
	if err != nil {
		t.Fatalf("Run 返回错误：%v", err)
	}
	if report.Created != 1 || report.Skipped != 1 {
		t.Fatalf("期望 created=1 skipped=1，实际 created=%d skipped=%d", report.Created, report.Skipped)
	}
	if report.Results[0].Outcome != OutcomeFailed {
		t.Errorf("第一个模板期望结局 %s，实际 %s", OutcomeFailed, report.Results[0].Outcome)
	}
	if report.Results[1].Outcome != OutcomeCreated {
		t.Errorf("第二个模板期望结局 %s，实际 %s", OutcomeCreated, report.Results[1].Outcome)
	}
}

func TestGeneratorRun_CopiesAssignmentsAndNotifies(t *testing.T) {
	wednesday := date(2026, time.August, 26)

	tmpl := weeklyTemplate()
	// 第三个负责人没有邮箱，只复制分配不发通知
	tmpl.Assignees = append(tmpl.Assignees, domain.TaskAssignee{StaffID: 3, FullName: "王五"})

	store := newMockStore(tmpl)
	store.clock = wednesday
	notifier := newMockNotifier()
	generator := NewGenerator(store, notifier)

	report, err := generator.Run(wednesday)
	if err != nil {
		t.Fatalf("Run 返回错误：%v", err)
	}

	instance := store.created[0]
	if !slices.Equal(store.assignments[instance.ID], []int64{1, 2, 3}) {
		t.Errorf("分配记录期望 [1 2 3]，实际 %v", store.assignments[instance.ID])
	}
	if len(notifier.sent) != 2 {
		t.Fatalf("期望发送 2 封通知，实际 %d", len(notifier.sent))
	}
	if data, ok := notifier.sent["zhangsan@example.com"]; !ok {
		t.Error("张三应该收到通知")
	} else if data.TaskNo != instance.TaskNo || data.FullName != "张三" {
		t.Errorf("通知内容不正确：%+v", data)
	}
	if !slices.Equal(report.Results[0].AssignedTo, []string{"张三", "李四"}) {
		t.Errorf("AssignedTo 期望 [张三 李四]，实际 %v", report.Results[0].AssignedTo)
	}
}

func TestGeneratorRun_NotifyFailureTolerated(t *testing.T) {
	wednesday := date(2026, time.August, 26)

	store := newMockStore(weeklyTemplate())
	store.clock = wednesday
	notifier := newMockNotifier()
	notifier.failFor["zhangsan@example.com"] = errors.New("邮件队列不可用")
	generator := NewGenerator(store, notifier)

	report, err := generator.Run(wednesday)
	if err != nil {
		t.Fatalf("Run 返回错误：%v", err)
	}
	if report.Created != 1 {
		t.Fatalf("通知失败不应该影响任务创建，created=%d", report.Created)
	}
	if report.Results[0].Outcome != OutcomeCreated {
		t.Errorf("期望结局 %s，实际 %s", OutcomeCreated, report.Results[0].Outcome)
	}
	if !slices.Equal(report.Results[0].AssignedTo, []string{"李四"}) {
		t.Errorf("通知失败的收件人不应该出现在 AssignedTo 里，实际 %v", report.Results[0].AssignedTo)
	}
}

func TestGeneratorRun_FetchErrorReturned(t *testing.T) {
	store := newMockStore()
	store.fetchErr = errors.New("数据库连接失败")
	generator := NewGenerator(store, newMockNotifier())

	report, err := generator.Run(date(2026, time.August, 26))
	if err == nil {
		t.Fatal("模板列表获取失败时 Run 应该返回错误")
	}
	if report != nil {
		t.Error("出错时不应该返回报告")
	}
}

func TestReport_CreatedResults(t *testing.T) {
	report := &Report{
		Created: 1,
		Skipped: 2,
		Results: []TemplateResult{
			{Outcome: OutcomeSkippedEligibility, OriginalTask: "T001"},
			{Outcome: OutcomeCreated, OriginalTask: "T002", NewTask: "T002-2026-08-26"},
			{Outcome: OutcomeFailed, OriginalTask: "T003"},
		},
	}

	created := report.CreatedResults()
	if len(created) != 1 || created[0].OriginalTask != "T002" {
		t.Errorf("CreatedResults 期望只包含 T002，实际 %+v", created)
	}
}
