package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clicker_backend/internal/bot"
	"clicker_backend/internal/config"
	"clicker_backend/internal/db"
	httpServer "clicker_backend/internal/http"
	"clicker_backend/internal/http/middleware"
	"clicker_backend/internal/logger"
	"clicker_backend/internal/redisboard"
	"clicker_backend/internal/service"
	"clicker_backend/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var version = "dev" // overridden at build time via -ldflags

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_JSON") == "true")
	cfg := config.Load()
	service.InitJWT(cfg.JWTSecret)

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	standings := redisboard.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	r := gin.Default()

	// CORS for production (frontend on different domain)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h, hub := httpServer.RegisterRoutes(r, dbPool, cfg, standings, version)
	h.Battles.SetNotifier(hub)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// content cache must be warm before any gameplay request
	if err := h.Content.Load(ctx); err != nil {
		logger.Fatal("game config load failed", "error", err)
	}

	sweep := worker.NewBattleSweep(h.Battles, h.Content, cfg.BattleSweepInterval)
	sweep.Start(ctx)
	defer sweep.Stop()

	outbox := worker.NewOutbox(dbPool, h.Social, h.Content, cfg.OutboxPollInterval)
	outbox.Start(ctx)
	defer outbox.Stop()

	// long-polling bot, off by default so several replicas don't fight
	// over getUpdates
	if os.Getenv("RUN_BOT") == "true" {
		b, err := bot.New(cfg.BotToken, h.Payments, h.Battles, h.Admin, h.Content, cfg.AdminTelegramIDs)
		if err != nil {
			logger.Fatal("bot init failed", "error", err)
		}
		go b.Start()
		defer b.Stop()
	}

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
