package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Me(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	account, err := h.Accounts.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "failed to load account")
		return
	}
	c.JSON(http.StatusOK, account)
}
