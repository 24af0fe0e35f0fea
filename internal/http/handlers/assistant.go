package handlers

import (
	"net/http"

	"todo_webapp/internal/assistant"
	"todo_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

type askRequest struct {
	Prompt  string              `json:"prompt" binding:"required,notblank"`
	History []assistant.Message `json:"history"`
}

// Ask relays a prompt to the assistant and returns its reply verbatim.
func (h *Handler) Ask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "prompt is required")
		return
	}

	res, err := h.Assistant.Ask(c.Request.Context(), userID, service.AskInput{Prompt: req.Prompt, History: req.History})
	if err != nil {
		respondError(c, err, "failed to reach assistant")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) AssistantActivity(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	list, err := h.Assistant.Activity(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "failed to load activity")
		return
	}
	c.JSON(http.StatusOK, list)
}

// ClearAssistantActivity resets the activity log, used when the chat is
// wiped.
func (h *Handler) ClearAssistantActivity(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.Assistant.ClearActivity(c.Request.Context(), userID); err != nil {
		respondError(c, err, "failed to clear activity")
		return
	}
	c.Status(http.StatusNoContent)
}
