package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"todo_webapp/internal/domain"
)

const taskColumns = `id, user_id, title, description, completed, created_at, updated_at`

// TaskStore persists tasks; every statement is scoped by user id.
type TaskStore struct {
	db *sql.DB
}

func (s *TaskStore) Create(ctx context.Context, t *domain.Task) error {
	ts := now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO todos(id, user_id, title, description, completed, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Title, t.Description, t.Completed, ts, ts,
	)
	if err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	t.CreatedAt = fromNanos(ts)
	t.UpdatedAt = t.CreatedAt
	return nil
}

func (s *TaskStore) ListByUser(ctx context.Context, userID string) ([]*domain.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM todos WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) GetByID(ctx context.Context, userID, id string) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM todos WHERE id = ? AND user_id = ?`, id, userID)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get todo: %w", err)
	}
	return t, nil
}

func (s *TaskStore) Update(ctx context.Context, userID, id string, patch domain.TaskPatch) (*domain.Task, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE todos
         SET title = COALESCE(?, title),
             description = COALESCE(?, description),
             updated_at = MAX(?, created_at)
         WHERE id = ? AND user_id = ?`,
		patch.Title, patch.Description, now(), id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, userID, id)
}

func (s *TaskStore) SetCompleted(ctx context.Context, userID, id string, completed bool) (*domain.Task, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE todos SET completed = ?, updated_at = MAX(?, created_at) WHERE id = ? AND user_id = ?`,
		completed, now(), id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("toggle todo: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, userID, id)
}

func (s *TaskStore) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return requireAffected(res)
}

func (s *TaskStore) DeleteAllByUser(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete all todos: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		t                domain.Task
		description      sql.NullString
		created, updated int64
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &description, &t.Completed, &created, &updated); err != nil {
		return nil, err
	}
	if description.Valid {
		d := description.String
		t.Description = &d
	}
	t.CreatedAt = fromNanos(created)
	t.UpdatedAt = fromNanos(updated)
	return &t, nil
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
