package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"todo_webapp/internal/assistant"
	"todo_webapp/internal/domain"
)

type memTaskStore struct {
	mu    sync.Mutex
	tasks map[string]*domain.Task
	clock time.Time
}

func newMemTaskStore() *memTaskStore {
	return &memTaskStore{
		tasks: make(map[string]*domain.Task),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *memTaskStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memTaskStore) Create(_ context.Context, t *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.tick()
	t.CreatedAt, t.UpdatedAt = now, now
	cp := *t
	s.tasks[t.ID] = &cp
	return nil
}

func (s *memTaskStore) ListByUser(_ context.Context, userID string) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Task
	for _, t := range s.tasks {
		if t.UserID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memTaskStore) owned(userID, id string) (*domain.Task, error) {
	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (s *memTaskStore) GetByID(_ context.Context, userID, id string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.owned(userID, id)
	if err != nil {
		return nil, err
	}
	cp := *t
	return &cp, nil
}

func (s *memTaskStore) Update(_ context.Context, userID, id string, patch domain.TaskPatch) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.owned(userID, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		d := *patch.Description
		t.Description = &d
	}
	t.UpdatedAt = s.tick()
	cp := *t
	return &cp, nil
}

func (s *memTaskStore) SetCompleted(_ context.Context, userID, id string, completed bool) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.owned(userID, id)
	if err != nil {
		return nil, err
	}
	t.Completed = completed
	t.UpdatedAt = s.tick()
	cp := *t
	return &cp, nil
}

func (s *memTaskStore) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.owned(userID, id); err != nil {
		return err
	}
	delete(s.tasks, id)
	return nil
}

func (s *memTaskStore) DeleteAllByUser(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, t := range s.tasks {
		if t.UserID == userID {
			delete(s.tasks, id)
			n++
		}
	}
	return n, nil
}

type memAccountStore struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
}

func newMemAccountStore() *memAccountStore {
	return &memAccountStore{accounts: make(map[string]*domain.Account)}
}

func (s *memAccountStore) Create(_ context.Context, a *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.accounts {
		if existing.Email == a.Email {
			return domain.ErrConflict
		}
	}
	a.CreatedAt = time.Now().UTC()
	cp := *a
	s.accounts[a.ID] = &cp
	return nil
}

func (s *memAccountStore) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memAccountStore) GetByID(_ context.Context, id string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

type memAuditStore struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

func (s *memAuditStore) Create(_ context.Context, log *domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log.ID = int64(len(s.entries) + 1)
	s.entries = append(s.entries, log)
	return nil
}

func (s *memAuditStore) GetByUserID(_ context.Context, userID string, limit int) ([]*domain.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.AuditLog
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if s.entries[i].UserID == userID {
			out = append(out, s.entries[i])
		}
	}
	return out, nil
}

func (s *memAuditStore) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Action
	}
	return out
}

type published struct {
	userID string
	ev     domain.TaskEvent
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(userID string, ev domain.TaskEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{userID: userID, ev: ev})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.ev.Type
	}
	return out
}

type fakeAssistant struct {
	reply string
	err   error
	last  assistant.Request
	calls int
}

func (f *fakeAssistant) Ask(_ context.Context, req assistant.Request) (string, error) {
	f.calls++
	f.last = req
	return f.reply, f.err
}
