package http

import (
	"todo_webapp/internal/config"
	"todo_webapp/internal/http/handlers"
	"todo_webapp/internal/http/middleware"
	"todo_webapp/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the wired components the router serves.
type Deps struct {
	Config  *config.Config
	Handler *handlers.Handler
	Health  *handlers.HealthHandler
	Hub     *ws.Hub
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config
	h := d.Handler

	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(cfg.AllowedOrigin))
	r.Use(middleware.Metrics())

	// Health checks (no rate limiting)
	r.GET("/health", d.Health.Health)
	r.GET("/healthz", d.Health.Liveness)
	r.GET("/readyz", d.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Shared by /api and /api/v1.
	limits := apiLimits{
		session: middleware.Session(cfg.SessionCookieName),
		api:     middleware.RateLimit("api", cfg.APIRateLimit, cfg.APIRateWindow),
		auth:    middleware.RateLimit("auth", cfg.AuthRateLimit, cfg.AuthRateWindow),
		ask:     middleware.UserRateLimit("ask", cfg.AssistantRateLimit, cfg.AssistantRateWindow),
	}

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(limits.api)
	registerAPIRoutes(v1, h, limits)

	// Legacy /api routes
	api := r.Group("/api")
	api.Use(limits.api)
	api.GET("/health", d.Health.Health)
	registerAPIRoutes(api, h, limits)

	// Legacy assistant endpoint at the root
	r.POST("/ask", limits.session, limits.ask, h.Ask)

	// Live task updates
	r.GET("/ws", ws.HandleWS(d.Hub, cfg.AllowedOrigin, cfg.SessionCookieName))
}

type apiLimits struct {
	session gin.HandlerFunc
	api     gin.HandlerFunc
	auth    gin.HandlerFunc
	ask     gin.HandlerFunc
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, l apiLimits) {
	session := l.session

	// Auth
	auth := api.Group("/auth")
	auth.Use(l.auth)
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
	}

	api.GET("/me", session, h.Me)
	api.GET("/audit", session, h.AuditLog)

	// Tasks
	todos := api.Group("/todos")
	todos.Use(session)
	{
		todos.GET("", h.ListTasks)
		todos.POST("", h.CreateTask)
		todos.DELETE("", h.DeleteAllTasks)
		todos.GET("/:id", h.GetTask)
		todos.PUT("/:id", h.UpdateTask)
		todos.PATCH("/:id/toggle", h.ToggleTask)
		todos.DELETE("/:id", h.DeleteTask)
	}

	// Assistant
	api.POST("/ask", session, l.ask, h.Ask)
	assistant := api.Group("/assistant")
	assistant.Use(session)
	{
		assistant.GET("/activity", h.AssistantActivity)
		assistant.DELETE("/activity", h.ClearAssistantActivity)
	}
}
