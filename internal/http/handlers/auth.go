package handlers

import (
	"net/http"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/http/middleware"
	"todo_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

type signupRequest struct {
	Email    string `json:"email" binding:"required,notblank"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,notblank"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Signup(c *gin.Context) {
	if !h.Session.SignupEnabled {
		respondError(c, domain.ErrForbidden, "")
		return
	}

	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and password are required")
		return
	}

	account, err := h.Accounts.Signup(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respondError(c, err, "failed to create account")
		return
	}

	h.startSession(c, http.StatusCreated, account)
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and password are required")
		return
	}

	account, err := h.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "login failed")
		return
	}

	h.startSession(c, http.StatusOK, account)
}

// Logout clears the session cookie. Tokens are stateless, so a bearer
// token stays valid until it expires.
func (h *Handler) Logout(c *gin.Context) {
	token, _ := c.Cookie(h.Session.CookieName)
	if token == "" {
		token = middleware.BearerToken(c.GetHeader("Authorization"))
	}
	if userID, err := service.ParseJWT(token); err == nil {
		h.Audit.LogAuth(c.Request.Context(), userID, domain.AuditActionLogout)
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.Session.CookieName, "", -1, "/", "", h.Session.CookieSecure, true)
	c.Status(http.StatusNoContent)
}

func (h *Handler) startSession(c *gin.Context, status int, account *domain.Account) {
	token, err := service.GenerateJWT(account.ID)
	if err != nil {
		respondError(c, err, "token generation failed")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.Session.CookieName, token, int(service.SessionTTL().Seconds()), "/", "", h.Session.CookieSecure, true)
	c.JSON(status, gin.H{
		"token": token,
		"user":  account,
	})
}
