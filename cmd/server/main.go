package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devjasani79/WhatsUpDev/internal/config"
	"github.com/devjasani79/WhatsUpDev/internal/database"
	"github.com/devjasani79/WhatsUpDev/internal/handlers"
	"github.com/devjasani79/WhatsUpDev/internal/middleware"
	"github.com/devjasani79/WhatsUpDev/internal/models"
	"github.com/devjasani79/WhatsUpDev/internal/routes"
	"github.com/devjasani79/WhatsUpDev/internal/services"
	"github.com/devjasani79/WhatsUpDev/internal/ws"
	"github.com/devjasani79/WhatsUpDev/pkg/logger"
)

func main() {
	// 0. Load Config & Initialize Logger
	config.LoadConfig()

	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}
	logger.Init(env)

	logger.Info().Str("environment", env).Msg("Starting WhatsupDev Backend...")

	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 1. Connect Database & Redis
	database.Connect()
	database.InitRedis()

	logger.Info().Msg("Running database migrations...")
	if err := database.DB.AutoMigrate(
		&models.User{},
		&models.ImportedContact{},
		&models.Chat{},
		&models.ChatMember{},
		&models.Message{},
		&models.MessageRead{},
	); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// 2. Attachment storage
	store, err := services.NewR2Store(context.Background())
	if err != nil {
		logger.Warn().Err(err).Msg("Attachment storage unavailable, uploads will fail")
	} else {
		handlers.Blobs = store
	}

	// 3. Router
	r := gin.New()
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.ErrorHandlerMiddleware())
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())

	// Websocket connections are long-lived, not request traffic
	r.Use(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/ws") {
			c.Next()
			return
		}
		middleware.GeneralRateLimit()(c)
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		routes.RegisterAuthRoutes(auth)

		routes.RegisterUserRoutes(api)
		routes.RegisterContactRoutes(api)
		routes.RegisterChatRoutes(api)
		routes.RegisterMessageRoutes(api)
	}

	r.GET("/health", func(c *gin.Context) {
		dbStatus := "ok"
		redisStatus := "ok"

		sqlDB, err := database.DB.DB()
		if err != nil || sqlDB.Ping() != nil {
			dbStatus = "error"
		}

		if database.Redis != nil {
			if _, err := database.Redis.Ping(context.Background()).Result(); err != nil {
				redisStatus = "error"
			}
		} else {
			redisStatus = "not configured"
		}

		status := "ok"
		if dbStatus != "ok" {
			status = "degraded"
		}

		c.JSON(200, gin.H{
			"status": status,
			"checks": gin.H{
				"database": dbStatus,
				"redis":    redisStatus,
			},
		})
	})

	// 4. Realtime gateway
	hub := ws.NewHub()
	gateway := ws.NewGateway(hub, database.DB)
	gateway.OnPresence = func(userID string, online bool) {
		if online {
			database.MarkOnline(userID)
		} else {
			database.MarkOffline(userID)
		}
	}
	r.GET("/ws", gateway.Handler())

	// 5. Start server with graceful shutdown
	port := config.AppConfig.Port
	if port == "" {
		port = "3000"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", port).Str("env", env).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}
