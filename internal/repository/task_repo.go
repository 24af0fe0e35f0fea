package repository

import (
	"context"
	"errors"
	"fmt"

	"todo_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id::text, user_id, title, description, completed, created_at, updated_at`

// TaskRepository stores tasks in the todos table. Every statement is
// scoped by the owning user.
type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	row := r.db.QueryRow(ctx,
		`INSERT INTO todos (id, user_id, title, description, completed)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+taskColumns,
		t.ID, t.UserID, t.Title, t.Description, t.Completed,
	)
	if err := scanTask(row, t); err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	return nil
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Task, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+taskColumns+`
		 FROM todos
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	res := make([]*domain.Task, 0)
	for rows.Next() {
		var t domain.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, err
		}
		res = append(res, &t)
	}
	return res, rows.Err()
}

func (r *TaskRepository) GetByID(ctx context.Context, userID, id string) (*domain.Task, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM todos WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	var t domain.Task
	if err := scanTask(row, &t); err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// Update applies patch. Nil patch fields keep their stored value.
func (r *TaskRepository) Update(ctx context.Context, userID, id string, patch domain.TaskPatch) (*domain.Task, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE todos
		 SET title = COALESCE($1, title),
		     description = COALESCE($2, description),
		     updated_at = GREATEST(CURRENT_TIMESTAMP, created_at)
		 WHERE id = $3 AND user_id = $4
		 RETURNING `+taskColumns,
		patch.Title, patch.Description, id, userID,
	)
	var t domain.Task
	if err := scanTask(row, &t); err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *TaskRepository) SetCompleted(ctx context.Context, userID, id string, completed bool) (*domain.Task, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE todos
		 SET completed = $1,
		     updated_at = GREATEST(CURRENT_TIMESTAMP, created_at)
		 WHERE id = $2 AND user_id = $3
		 RETURNING `+taskColumns,
		completed, id, userID,
	)
	var t domain.Task
	if err := scanTask(row, &t); err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM todos WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) DeleteAllByUser(ctx context.Context, userID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM todos WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete all todos: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanTask(row pgx.Row, t *domain.Task) error {
	return row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}
