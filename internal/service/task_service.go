package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"todo_webapp/internal/domain"

	"github.com/google/uuid"
)

// TaskService applies the task rules on top of a TaskStore: titles are
// trimmed and never empty, every call is scoped to one user, and every
// successful mutation is audited and published to live connections.
type TaskService struct {
	store  TaskStore
	audit  *AuditService
	events EventPublisher
}

func NewTaskService(store TaskStore, audit *AuditService, events EventPublisher) *TaskService {
	if events == nil {
		events = noopPublisher{}
	}
	return &TaskService{store: store, audit: audit, events: events}
}

func (s *TaskService) Create(ctx context.Context, userID, title string, description *string) (*domain.Task, error) {
	title, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}
	if title == "" {
		return nil, domain.Invalid("title", "is required and must be a non-empty string")
	}
	desc, err := normalizeDescription(description)
	if err != nil {
		return nil, err
	}

	t := &domain.Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: desc,
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	taskOperations.WithLabelValues("create").Inc()
	s.audit.LogTask(ctx, userID, domain.AuditActionTaskCreate, t.ID, map[string]any{"title": t.Title})
	s.publish(userID, domain.TaskEvent{Type: domain.EventTaskCreated, Task: t})
	return t, nil
}

func (s *TaskService) List(ctx context.Context, userID string) ([]*domain.Task, error) {
	tasks, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, userID, id string) (*domain.Task, error) {
	return s.store.GetByID(ctx, userID, id)
}

// Update edits title and/or description. A blank title leaves the title
// unchanged; at least one of the two must carry text.
func (s *TaskService) Update(ctx context.Context, userID, id string, title, description *string) (*domain.Task, error) {
	var patch domain.TaskPatch

	if title != nil {
		t, err := normalizeTitle(*title)
		if err != nil {
			return nil, err
		}
		if t != "" {
			patch.Title = &t
		}
	}
	desc, err := normalizeDescription(description)
	if err != nil {
		return nil, err
	}
	patch.Description = desc

	if patch.Title == nil && patch.Description == nil {
		return nil, domain.Invalid("", "title or description is required for update")
	}

	t, err := s.store.Update(ctx, userID, id, patch)
	if err != nil {
		return nil, err
	}

	taskOperations.WithLabelValues("update").Inc()
	details := map[string]any{}
	if patch.Title != nil {
		details["title"] = *patch.Title
	}
	details["description_changed"] = patch.Description != nil
	s.audit.LogTask(ctx, userID, domain.AuditActionTaskUpdate, id, details)
	s.publish(userID, domain.TaskEvent{Type: domain.EventTaskUpdated, Task: t})
	return t, nil
}

// SetCompleted sets the completion flag. Repeating the same value is
// harmless; updated_at moves forward on every call.
func (s *TaskService) SetCompleted(ctx context.Context, userID, id string, completed bool) (*domain.Task, error) {
	t, err := s.store.SetCompleted(ctx, userID, id, completed)
	if err != nil {
		return nil, err
	}

	taskOperations.WithLabelValues("toggle").Inc()
	s.audit.LogTask(ctx, userID, domain.AuditActionTaskToggle, id, map[string]any{"completed": completed})
	s.publish(userID, domain.TaskEvent{Type: domain.EventTaskUpdated, Task: t})
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.Delete(ctx, userID, id); err != nil {
		return err
	}

	taskOperations.WithLabelValues("delete").Inc()
	s.audit.LogTask(ctx, userID, domain.AuditActionTaskDelete, id, nil)
	s.publish(userID, domain.TaskEvent{Type: domain.EventTaskDeleted, TaskID: id})
	return nil
}

// DeleteAll removes every task of userID and reports how many were removed.
func (s *TaskService) DeleteAll(ctx context.Context, userID string) (int64, error) {
	n, err := s.store.DeleteAllByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("delete all tasks: %w", err)
	}

	taskOperations.WithLabelValues("delete_all").Inc()
	s.audit.LogTask(ctx, userID, domain.AuditActionTaskDeleteAll, "", map[string]any{"deleted": n})
	s.publish(userID, domain.TaskEvent{Type: domain.EventTasksCleared, Deleted: n})
	return n, nil
}

func (s *TaskService) publish(userID string, ev domain.TaskEvent) {
	ev.At = time.Now().UTC()
	s.events.Publish(userID, ev)
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) > domain.MaxTitleLength {
		return "", domain.Invalid("title", fmt.Sprintf("must be at most %d characters", domain.MaxTitleLength))
	}
	return title, nil
}

// normalizeDescription trims the description; blank becomes nil.
func normalizeDescription(description *string) (*string, error) {
	if description == nil {
		return nil, nil
	}
	d := strings.TrimSpace(*description)
	if d == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(d) > domain.MaxDescriptionLength {
		return nil, domain.Invalid("description", fmt.Sprintf("must be at most %d characters", domain.MaxDescriptionLength))
	}
	return &d, nil
}
