package handlers

import (
	"net/http"
	"strconv"

	"todo_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) AuditLog(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = min(n, service.MaxAuditPage)
	}

	logs, err := h.Audit.GetUserAuditLogs(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err, "failed to load audit log")
		return
	}
	c.JSON(http.StatusOK, logs)
}
