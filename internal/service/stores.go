package service

import (
	"context"

	"todo_webapp/internal/domain"
)

// TaskStore is implemented by repository.TaskRepository (Postgres) and
// sqlite.TaskStore.
type TaskStore interface {
	Create(ctx context.Context, t *domain.Task) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Task, error)
	GetByID(ctx context.Context, userID, id string) (*domain.Task, error)
	Update(ctx context.Context, userID, id string, patch domain.TaskPatch) (*domain.Task, error)
	SetCompleted(ctx context.Context, userID, id string, completed bool) (*domain.Task, error)
	Delete(ctx context.Context, userID, id string) error
	DeleteAllByUser(ctx context.Context, userID string) (int64, error)
}

type AccountStore interface {
	Create(ctx context.Context, a *domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByID(ctx context.Context, id string) (*domain.Account, error)
}

type AuditStore interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	GetByUserID(ctx context.Context, userID string, limit int) ([]*domain.AuditLog, error)
}

// EventPublisher delivers task events to a user's live connections.
type EventPublisher interface {
	Publish(userID string, ev domain.TaskEvent)
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, domain.TaskEvent) {}
