package domain

import (
	"time"
)

type RepeatFrequency string

const (
	RepeatDaily   RepeatFrequency = "daily"
	RepeatWeekly  RepeatFrequency = "weekly"
	RepeatMonthly RepeatFrequency = "monthly"
	RepeatCustom  RepeatFrequency = "custom"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// RepeatConfig 描述一个重复任务模板的生成规则
// 注意 monthly 时 Interval 表示的是"每月第几天"而不是月数，沿用线上数据的既有含义
type RepeatConfig struct {
	Frequency       RepeatFrequency `json:"frequency"`
	Interval        int             `json:"interval"`
	EndDate         string          `json:"endDate,omitempty"`    // YYYY-MM-DD
	CustomDays      []int           `json:"customDays,omitempty"` // 0=周日 ... 6=周六
	HasSpecificTime bool            `json:"hasSpecificTime"`
	StartTime       string          `json:"startTime,omitempty"` // HH:MM
}

type TaskAssignee struct {
	StaffID  int64  `json:"staffID"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// Task 同时承载重复任务模板（IsRepeated 为 true）和由模板生成的具体任务
// （ParentTaskID 指回模板）；生成的任务一律不再重复
type Task struct {
	ID              int64          `json:"id"`
	TaskNo          string         `json:"taskNo"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Status          TaskStatus     `json:"status"`
	Priority        TaskPriority   `json:"priority"`
	AllocationMode  string         `json:"allocationMode"`
	StartDate       string         `json:"startDate,omitempty"` // 日期或带时间的字符串
	DueDate         string         `json:"dueDate,omitempty"`
	IsRepeated      bool           `json:"isRepeated"`
	RepeatConfig    *RepeatConfig  `json:"repeatConfig,omitempty"`
	ParentTaskID    *int64         `json:"parentTaskID,omitempty"`
	AssignedTeamIDs []int64        `json:"assignedTeamIDs"`
	SupportFiles    []string       `json:"supportFiles"`
	Assignees       []TaskAssignee `json:"assignees"`
	CreatedAt       time.Time      `json:"createdAt"`
	Version         int32          `json:"-"`
}

type TaskAssignment struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"taskID"`
	StaffID   int64     `json:"staffID"`
	CreatedAt time.Time `json:"createdAt"`
}
