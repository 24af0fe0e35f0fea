package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"todo_webapp/internal/domain"

	"github.com/mattn/go-sqlite3"
)

type AccountStore struct {
	db *sql.DB
}

func (s *AccountStore) Create(ctx context.Context, a *domain.Account) error {
	ts := now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts(id, email, name, password_hash, created_at) VALUES(?, ?, ?, ?, ?)`,
		a.ID, a.Email, a.Name, a.PasswordHash, ts,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert account: %w", err)
	}
	a.CreatedAt = fromNanos(ts)
	return nil
}

func (s *AccountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return s.getOne(ctx, `email = ?`, email)
}

func (s *AccountStore) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return s.getOne(ctx, `id = ?`, id)
}

func (s *AccountStore) getOne(ctx context.Context, where string, arg any) (*domain.Account, error) {
	var (
		a       domain.Account
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, created_at FROM accounts WHERE `+where, arg).
		Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	a.CreatedAt = fromNanos(created)
	return &a, nil
}
