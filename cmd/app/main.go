package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todo_webapp/internal/assistant"
	"todo_webapp/internal/config"
	"todo_webapp/internal/db"
	httpServer "todo_webapp/internal/http"
	"todo_webapp/internal/http/handlers"
	"todo_webapp/internal/http/middleware"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/repository"
	"todo_webapp/internal/service"
	"todo_webapp/internal/storage/sqlite"
	"todo_webapp/internal/ws"

	"github.com/gin-gonic/gin"
)

type stores struct {
	tasks    service.TaskStore
	accounts service.AccountStore
	audit    service.AuditStore
	ping     handlers.Pinger
	close    func()
}

func openStores(cfg *config.Config) stores {
	if cfg.UsesSQLite() {
		s, err := sqlite.Open(cfg.SQLitePath())
		if err != nil {
			logger.Fatal("failed to open sqlite store", "error", err, "path", cfg.SQLitePath())
		}
		logger.Info("using sqlite store", "path", cfg.SQLitePath())
		return stores{
			tasks:    s.Tasks(),
			accounts: s.Accounts(),
			audit:    s.Audit(),
			ping:     s,
			close:    func() { _ = s.Close() },
		}
	}

	pool := db.Connect(cfg.DatabaseURL)
	return stores{
		tasks:    repository.NewTaskRepository(pool),
		accounts: repository.NewAccountRepository(pool),
		audit:    repository.NewAuditRepository(pool),
		ping:     pool,
		close:    pool.Close,
	}
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret, cfg.SessionTTL)

	st := openStores(cfg)
	defer st.close()

	rdb := db.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	var redisPing handlers.Pinger
	if rdb != nil {
		defer rdb.Close()
		redisPing = handlers.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	} else {
		logger.Warn("redis not available, using in-process rate limits and activity log")
	}
	middleware.InitRedisRateLimiter(rdb)

	hub := ws.NewHub()
	defer hub.Close()

	var client service.Assistant
	if c := assistant.New(cfg.AssistantURL, cfg.AssistantTimeout); c != nil {
		client = c
	} else {
		logger.Warn("ASSISTANT_URL not set, /ask is disabled")
	}

	audit := service.NewAuditService(st.audit)
	h := handlers.NewHandler(
		service.NewTaskService(st.tasks, audit, hub),
		service.NewAccountService(st.accounts, audit),
		service.NewAssistantService(client, service.NewActivityStore(rdb), audit, hub),
		audit,
		handlers.SessionConfig{
			CookieName:    cfg.SessionCookieName,
			CookieSecure:  cfg.CookieSecure,
			SignupEnabled: cfg.SignupEnabled,
		},
	)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	httpServer.RegisterRoutes(r, httpServer.Deps{
		Config:  cfg,
		Handler: h,
		Health:  handlers.NewHealthHandler(st.ping, redisPing, cfg.AppVersion),
		Hub:     hub,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", cfg.AppVersion)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
