package domain

import "time"

const (
	MaxTitleLength       = 500
	MaxDescriptionLength = 5000
)

type Task struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"-"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description,omitempty"`
	Completed   bool      `db:"completed" json:"completed"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// TaskPatch carries the fields of an edit. Nil fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
}

// DescriptionText returns the description or "" when it is unset.
func (t *Task) DescriptionText() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}
