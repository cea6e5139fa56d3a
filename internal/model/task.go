package model

import "time"

// Task はユーザーの作業タスクを表す。
type Task struct {
	ID          string
	UserID      string
	ProjectID   *string
	Title       string
	Description string
	Priority    TaskPriority
	Status      TaskStatus
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskPriority はタスクの優先度を表す。
type TaskPriority string

const (
	// TaskPriorityLow は低優先度。
	TaskPriorityLow TaskPriority = "low"
	// TaskPriorityMedium は中優先度。
	TaskPriorityMedium TaskPriority = "medium"
	// TaskPriorityHigh は高優先度。
	TaskPriorityHigh TaskPriority = "high"
)

// TaskStatus はタスクの進行状態を表す。
type TaskStatus string

const (
	// TaskStatusTodo は未着手のタスク。
	TaskStatusTodo TaskStatus = "todo"
	// TaskStatusInProgress は作業中のタスク。
	TaskStatusInProgress TaskStatus = "in_progress"
	// TaskStatusDone は完了したタスク。
	TaskStatusDone TaskStatus = "done"
)
