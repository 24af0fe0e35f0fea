package handlers

import (
	"errors"
	"net/http"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/logger"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto status codes. Unknown errors are
// logged and answered with fallback.
func respondError(c *gin.Context, err error, fallback string) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, domain.ErrAssistantDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "assistant is not configured"})
	case errors.Is(err, domain.ErrAssistantUnavailable):
		logger.WithContext(c.Request.Context()).Warn("assistant call failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "assistant unavailable"})
	default:
		logger.WithContext(c.Request.Context()).Error(fallback, "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
