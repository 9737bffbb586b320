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

	"github.com/Dosada05/party-tournament/broadcast"
	"github.com/Dosada05/party-tournament/config"
	"github.com/Dosada05/party-tournament/db"
	"github.com/Dosada05/party-tournament/handlers"
	"github.com/Dosada05/party-tournament/middleware"
	"github.com/Dosada05/party-tournament/repositories"
	api "github.com/Dosada05/party-tournament/routes"
	"github.com/Dosada05/party-tournament/services"
	"github.com/Dosada05/party-tournament/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

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

	migrateCtx, cancelMigrate := context.WithTimeout(ctx, 30*time.Second)
	err = db.Migrate(migrateCtx, dbConn)
	cancelMigrate()
	if err != nil {
		logger.Error("failed to apply database schema", slog.Any("error", err))
		os.Exit(1)
	}

	// Архив расписаний в Cloudflare R2 (опционально)
	scheduleCfg := services.ScheduleServiceConfig{Seed: cfg.ScheduleSeed, Logger: logger}
	if cfg.ArchiveEnabled() {
		uploader, err := storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
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
		scheduleCfg.Archiver = services.NewScheduleArchiver(uploader)
		logger.Info("schedule archive enabled", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Info("schedule archive disabled")
	}
	if cfg.ScheduleSeed != nil {
		logger.Info("schedule generation uses a fixed seed", slog.Int64("seed", *cfg.ScheduleSeed))
	}

	// Инициализация WebSocket Hub
	hub := broadcast.NewHub()
	go hub.Run(ctx)
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	gameTypeRepo := repositories.NewPostgresGameTypeRepository(dbConn)
	roundRepo := repositories.NewPostgresRoundRepository(dbConn)
	transactor := repositories.NewPostgresTransactor(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	tournamentService := services.NewTournamentService(tournamentRepo, teamRepo, playerRepo, gameTypeRepo, roundRepo)
	teamService := services.NewTeamService(tournamentRepo, teamRepo, playerRepo)
	gameTypeService := services.NewGameTypeService(gameTypeRepo)
	scheduleService := services.NewScheduleService(transactor, tournamentRepo, roundRepo, tournamentService, hub, scheduleCfg)
	logger.Info("Services initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Tournament: handlers.NewTournamentHandler(tournamentService),
		Team:       handlers.NewTeamHandler(teamService),
		GameType:   handlers.NewGameTypeHandler(gameTypeService),
		Schedule:   handlers.NewScheduleHandler(scheduleService),
		WebSocket:  handlers.NewWebSocketHandler(hub),
		SSE:        handlers.NewSSEHandler(hub),
		Health:     handlers.NewHealthHandler(dbConn),
	}, api.Options{
		JWTSecret:       []byte(cfg.JWTSecretKey),
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		GenerateLimiter: middleware.NewRateLimiter(cfg.GenerateRatePerMinute),
	})
	logger.Info("Routes configured")

	// WriteTimeout не задан: SSE-потоки держат соединение открытым.
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
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
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		stop()

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
