package domain

import "time"

// AuditLog represents an audit log entry for tracking important actions
type AuditLog struct {
	ID        int64          `db:"id" json:"id"`
	UserID    string         `db:"user_id" json:"user_id"`
	Action    string         `db:"action" json:"action"`
	Category  string         `db:"category" json:"category"`
	Details   map[string]any `db:"details" json:"details"`
	IP        string         `db:"ip" json:"ip,omitempty"`
	UserAgent string         `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// Audit action categories
const (
	AuditCategoryAuth      = "auth"
	AuditCategoryTask      = "task"
	AuditCategoryAssistant = "assistant"
)

// Audit actions
const (
	AuditActionSignup = "signup"
	AuditActionLogin  = "login"
	AuditActionLogout = "logout"

	AuditActionTaskCreate    = "task_create"
	AuditActionTaskUpdate    = "task_update"
	AuditActionTaskToggle    = "task_toggle"
	AuditActionTaskDelete    = "task_delete"
	AuditActionTaskDeleteAll = "task_delete_all"

	AuditActionAssistantAsk = "assistant_ask"
)
