package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"todo_webapp/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt input limit
)

// AccountService is the built-in session collaborator: it registers
// accounts and checks credentials. Tokens are issued by the caller.
type AccountService struct {
	store    AccountStore
	audit    *AuditService
	validate *validator.Validate
	cost     int
}

func NewAccountService(store AccountStore, audit *AuditService) *AccountService {
	return &AccountService{
		store:    store,
		audit:    audit,
		validate: validator.New(),
		cost:     bcrypt.DefaultCost,
	}
}

func (s *AccountService) Signup(ctx context.Context, email, password, name string) (*domain.Account, error) {
	email = normalizeEmail(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, domain.Invalid("email", "must be a valid email address")
	}
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return nil, domain.Invalid("password", fmt.Sprintf("must be %d to %d characters", minPasswordLength, maxPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	a := &domain.Account{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, err
	}

	s.audit.LogAuth(ctx, a.ID, domain.AuditActionSignup)
	return a, nil
}

// Login returns the account for valid credentials and ErrUnauthorized
// otherwise, without telling which part was wrong.
func (s *AccountService) Login(ctx context.Context, email, password string) (*domain.Account, error) {
	a, err := s.store.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	s.audit.LogAuth(ctx, a.ID, domain.AuditActionLogin)
	return a, nil
}

func (s *AccountService) Get(ctx context.Context, id string) (*domain.Account, error) {
	return s.store.GetByID(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
