package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/scrim-scheduler/config"
	"github.com/Dosada05/scrim-scheduler/db"
	"github.com/Dosada05/scrim-scheduler/handlers"
	"github.com/Dosada05/scrim-scheduler/repositories"
	api "github.com/Dosada05/scrim-scheduler/routes"
	"github.com/Dosada05/scrim-scheduler/schedule"
	"github.com/Dosada05/scrim-scheduler/services"
	"github.com/Dosada05/scrim-scheduler/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

// @title Scrim Scheduler API
// @version 1.0
// @description REST API для планирования многодневных скрим-блоков: турниры, составы команд и генерация расписаний.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Инициализация хранилища экспортов (Cloudflare R2).
	// Без него сервис работает, но публикация CSV недоступна.
	var exportUploader storage.FileUploader
	if cfg.R2Configured() {
		exportUploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("Cloudflare R2 is not configured, export publishing is disabled")
	}

	// Инициализация WebSocket Hub
	wsHub := schedule.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	scheduleRepo := repositories.NewPostgresScheduleRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo)

	tournamentService := services.NewTournamentService(
		dbConn, // Pass dbConn for transaction management
		tournamentRepo,
		teamRepo,
		exportUploader,
		wsHub,
		logger,
	)

	scheduleService := services.NewScheduleService(
		dbConn,
		tournamentRepo,
		teamRepo,
		scheduleRepo,
		schedule.NewLeastPlayedGenerator(),
		exportUploader,
		wsHub,
		logger,
	)

	dashboardService := services.NewDashboardService(tournamentRepo, teamRepo, scheduleRepo)
	logger.Info("Services initialized")

	// Запуск фонового перевода завершившихся турниров в completed
	go func() {
		ticker := time.NewTicker(cfg.StatusSweepInterval)
		defer ticker.Stop()
		logger.Info("tournament status sweeper started", slog.Duration("interval", cfg.StatusSweepInterval))

		// Первый проход сразу при старте, дальше по тикеру
		if completed, err := tournamentService.CompleteFinishedTournaments(context.Background()); err != nil {
			logger.Error("status sweeper: initial run failed", slog.Any("error", err))
		} else if completed > 0 {
			logger.Info("status sweeper: tournaments completed", slog.Int("count", completed))
		}

		for {
			select {
			case <-ticker.C:
				completed, err := tournamentService.CompleteFinishedTournaments(context.Background())
				if err != nil {
					logger.Error("status sweeper: periodic run failed", slog.Any("error", err))
					continue
				}
				if completed > 0 {
					logger.Info("status sweeper: tournaments completed", slog.Int("count", completed))
				}
			}
		}
	}()

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg,
		authHandler,
		tournamentHandler,
		scheduleHandler,
		dashboardHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			// If shutdown fails, force close.
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
