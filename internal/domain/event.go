package domain

import "time"

// Task event types pushed to live connections.
const (
	EventTaskCreated  = "task.created"
	EventTaskUpdated  = "task.updated"
	EventTaskDeleted  = "task.deleted"
	EventTasksCleared = "tasks.cleared"
	EventTasksRefresh = "tasks.refresh"
)

type TaskEvent struct {
	Type    string    `json:"type"`
	Task    *Task     `json:"task,omitempty"`
	TaskID  string    `json:"task_id,omitempty"`
	Deleted int64     `json:"deleted,omitempty"`
	At      time.Time `json:"at"`
}
