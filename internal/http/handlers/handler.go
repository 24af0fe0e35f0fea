package handlers

import (
	"todo_webapp/internal/http/middleware"
	"todo_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

// SessionConfig controls how session tokens are handed to browsers.
type SessionConfig struct {
	CookieName    string
	CookieSecure  bool
	SignupEnabled bool
}

type Handler struct {
	Tasks     *service.TaskService
	Accounts  *service.AccountService
	Assistant *service.AssistantService
	Audit     *service.AuditService
	Session   SessionConfig
}

func NewHandler(tasks *service.TaskService, accounts *service.AccountService, assistant *service.AssistantService, audit *service.AuditService, session SessionConfig) *Handler {
	RegisterValidators()
	if session.CookieName == "" {
		session.CookieName = "session"
	}
	return &Handler{
		Tasks:     tasks,
		Accounts:  accounts,
		Assistant: assistant,
		Audit:     audit,
		Session:   session,
	}
}

// getUserID returns the user id set by middleware.Session.
func getUserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
