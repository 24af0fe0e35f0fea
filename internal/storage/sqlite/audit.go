package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"todo_webapp/internal/domain"
)

type AuditStore struct {
	db *sql.DB
}

func (s *AuditStore) Create(ctx context.Context, log *domain.AuditLog) error {
	details, err := json.Marshal(log.Details)
	if err != nil || log.Details == nil {
		details = []byte("{}")
	}
	ts := now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_logs(user_id, action, category, details, ip, user_agent, created_at) VALUES(?, ?, ?, ?, ?, ?, ?)`,
		log.UserID, log.Action, log.Category, string(details), log.IP, log.UserAgent, ts,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		log.ID = id
	}
	log.CreatedAt = fromNanos(ts)
	return nil
}

func (s *AuditStore) GetByUserID(ctx context.Context, userID string, limit int) ([]*domain.AuditLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, action, category, details, ip, user_agent, created_at
         FROM audit_logs WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*domain.AuditLog, 0)
	for rows.Next() {
		var (
			l       domain.AuditLog
			details string
			created int64
		)
		if err := rows.Scan(&l.ID, &l.UserID, &l.Action, &l.Category, &details, &l.IP, &l.UserAgent, &created); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		if err := json.Unmarshal([]byte(details), &l.Details); err != nil {
			l.Details = make(map[string]any)
		}
		l.CreatedAt = fromNanos(created)
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}
