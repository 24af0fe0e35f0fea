package service

import (
	"context"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/logger"
)

const MaxAuditPage = 200

type requestInfoKey struct{}

type requestInfo struct {
	ip        string
	userAgent string
}

// WithRequestInfo attaches the client address and user agent to ctx so
// audit entries written further down can record them.
func WithRequestInfo(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, requestInfo{ip: ip, userAgent: userAgent})
}

// AuditService handles audit logging
type AuditService struct {
	repo AuditStore
}

// NewAuditService creates a new audit service. A nil store disables
// persistence; entries are then only logged at debug level.
func NewAuditService(repo AuditStore) *AuditService {
	return &AuditService{repo: repo}
}

// Log creates a new audit log entry. Failures are logged, never returned.
func (s *AuditService) Log(ctx context.Context, userID, action, category string, details map[string]any) {
	if s == nil {
		return
	}
	entry := &domain.AuditLog{
		UserID:   userID,
		Action:   action,
		Category: category,
		Details:  details,
	}
	if info, ok := ctx.Value(requestInfoKey{}).(requestInfo); ok {
		entry.IP = info.ip
		entry.UserAgent = info.userAgent
	}

	if s.repo == nil {
		logger.WithContext(ctx).Debug("audit", "action", action, "category", category)
		return
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		logger.WithContext(ctx).Error("failed to create audit log", "error", err, "action", action, "user_id", userID)
	}
}

// LogTask logs a task mutation
func (s *AuditService) LogTask(ctx context.Context, userID, action, taskID string, details map[string]any) {
	if details == nil {
		details = make(map[string]any)
	}
	if taskID != "" {
		details["task_id"] = taskID
	}
	s.Log(ctx, userID, action, domain.AuditCategoryTask, details)
}

// LogAuth logs signup, login and logout
func (s *AuditService) LogAuth(ctx context.Context, userID, action string) {
	s.Log(ctx, userID, action, domain.AuditCategoryAuth, nil)
}

// GetUserAuditLogs returns audit logs for a user
func (s *AuditService) GetUserAuditLogs(ctx context.Context, userID string, limit int) ([]*domain.AuditLog, error) {
	if limit <= 0 || limit > MaxAuditPage {
		limit = MaxAuditPage
	}
	if s == nil || s.repo == nil {
		return []*domain.AuditLog{}, nil
	}
	return s.repo.GetByUserID(ctx, userID, limit)
}
