package handlers

import (
	"net/http"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/tasklist"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type toggleTaskRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

// ListTasks returns the caller's tasks run through the list pipeline
// (q, filter, sort query parameters).
func (h *Handler) ListTasks(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	q, err := tasklist.ParseQuery(c.Query("q"), c.Query("filter"), c.Query("sort"))
	if err != nil {
		respondError(c, err, "failed to retrieve todos")
		return
	}

	tasks, err := h.Tasks.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "failed to retrieve todos")
		return
	}

	c.JSON(http.StatusOK, tasklist.Apply(tasks, q))
}

func (h *Handler) CreateTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "title is required and must be a non-empty string")
		return
	}

	t, err := h.Tasks.Create(c.Request.Context(), userID, req.Title, req.Description)
	if err != nil {
		respondError(c, err, "failed to create todo")
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) GetTask(c *gin.Context) {
	userID, id, ok := h.taskTarget(c)
	if !ok {
		return
	}

	t, err := h.Tasks.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err, "failed to retrieve todo")
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) UpdateTask(c *gin.Context) {
	userID, id, ok := h.taskTarget(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "title or description is required for update")
		return
	}

	t, err := h.Tasks.Update(c.Request.Context(), userID, id, req.Title, req.Description)
	if err != nil {
		respondError(c, err, "failed to update todo")
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) ToggleTask(c *gin.Context) {
	userID, id, ok := h.taskTarget(c)
	if !ok {
		return
	}

	var req toggleTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid value for completed")
		return
	}

	t, err := h.Tasks.SetCompleted(c.Request.Context(), userID, id, *req.Completed)
	if err != nil {
		respondError(c, err, "failed to toggle todo completion")
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	userID, id, ok := h.taskTarget(c)
	if !ok {
		return
	}

	if err := h.Tasks.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err, "failed to delete todo")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteAllTasks(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	n, err := h.Tasks.DeleteAll(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "failed to delete all todos")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All todos deleted successfully", "deleted": n})
}

// taskTarget resolves the caller and the :id parameter, answering the
// request itself when either is unusable.
func (h *Handler) taskTarget(c *gin.Context) (userID, id string, ok bool) {
	userID, ok = getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", "", false
	}
	parsed, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, domain.Invalid("id", "must be a valid task id"), "")
		return "", "", false
	}
	return userID, parsed.String(), true
}
