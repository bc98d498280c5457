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

	"github.com/Dosada05/kicker-system/brackets"
	"github.com/Dosada05/kicker-system/config"
	"github.com/Dosada05/kicker-system/db"
	"github.com/Dosada05/kicker-system/handlers"
	"github.com/Dosada05/kicker-system/models"
	"github.com/Dosada05/kicker-system/repositories"
	api "github.com/Dosada05/kicker-system/routes"
	"github.com/Dosada05/kicker-system/services"
	"github.com/Dosada05/kicker-system/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("application failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	if err := db.Migrate(ctx, dbConn); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info("database connection established")

	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	settingsRepo := repositories.NewPostgresSettingsRepository(dbConn)

	// Архив завершённых турниров в Cloudflare R2 (опционально)
	var archiver services.Archiver
	if cfg.R2 != nil {
		uploader, err := storage.NewCloudflareR2Uploader(ctx, *cfg.R2)
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		archiver = storage.NewSnapshotArchiver(uploader)
		logger.Info("Cloudflare R2 archive enabled", slog.String("bucket", cfg.R2.BucketName))
	}

	tournamentService := services.NewTournamentService(
		tournamentRepo,
		playerRepo,
		settingsRepo,
		archiver,
		services.TournamentConfig{
			DefaultMode:   models.ModeMonsterDYP,
			MaxScore:      cfg.MaxScore,
			NumberOfGames: cfg.GamesPerMatchup,
			KFactor:       cfg.RatingKFactor,
			Spread:        cfg.TeammateSpread,
		},
		logger,
	)
	if err := tournamentService.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize tournament: %w", err)
	}
	playerService := services.NewPlayerService(playerRepo, cfg.RatingDefault, logger)

	wsHub := brackets.NewHub(logger)

	tournamentHandler := handlers.NewTournamentHandler(tournamentService, playerService, wsHub, logger)
	playerHandler := handlers.NewPlayerHandler(playerService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, tournamentHandler, logger)

	router := chi.NewRouter()
	api.SetupRoutes(router, tournamentHandler, playerHandler, webSocketHandler, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return wsHub.Run(gCtx)
	})
	g.Go(func() error {
		logger.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		persistCtx, cancelPersist := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelPersist()
		if err := tournamentService.Persist(persistCtx); err != nil {
			logger.Error("failed to persist tournament on shutdown", slog.Any("error", err))
		}
		logger.Info("server shutdown complete")
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("application exited")
	return nil
}
