package repository

import (
	"context"
	"errors"
	"fmt"

	"todo_webapp/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type AccountRepository struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO accounts (id, email, name, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		a.ID, a.Email, a.Name, a.PasswordHash,
	).Scan(&a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.getOne(ctx, `WHERE email = $1`, email)
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *AccountRepository) getOne(ctx context.Context, where string, arg any) (*domain.Account, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, email, name, password_hash, created_at FROM accounts `+where,
		arg,
	)

	var a domain.Account
	if err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}
