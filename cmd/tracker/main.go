package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/assignment-tracker/internal/config"
	"github.com/noah-isme/assignment-tracker/internal/database"
	"github.com/noah-isme/assignment-tracker/internal/handler"
	"github.com/noah-isme/assignment-tracker/internal/middleware"
	"github.com/noah-isme/assignment-tracker/internal/models"
	"github.com/noah-isme/assignment-tracker/internal/repository"
	"github.com/noah-isme/assignment-tracker/internal/router"
	"github.com/noah-isme/assignment-tracker/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("app", cfg.AppName).Logger().Level(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open snapshot store: %v", err)
	}
	defer closeStore()

	events := service.NewNopEventPublisher()
	if cfg.NATSURL != "" {
		conn, err := nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			logger.Warn().Err(err).Str("url", cfg.NATSURL).Msg("nats unavailable, events will not be published")
		} else {
			defer conn.Drain()
			events = service.NewNATSEventPublisher(conn, cfg.NATSSubject)
		}
	}

	state := service.NewAppState(repo, events, logger)
	if cfg.StoreReset {
		if err := state.Clear(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to clear stored snapshot")
		}
	}

	var seed func() models.Snapshot
	if cfg.SeedDemo {
		seed = service.DemoSnapshot
	}
	if err := state.Load(ctx, seed); err != nil {
		log.Fatalf("failed to load snapshot: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	sessionService := service.NewSessionService(state, logger)
	assignmentService := service.NewAssignmentService(state, logger)

	sessionHandler := handler.NewSessionHandler(sessionService, validate, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, logger)
	workflowHandler := handler.NewWorkflowHandler(sessionService, logger)
	deletionHandler := handler.NewDeletionHandler(sessionService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.AllowOrigins})
	router.Register(app, cfg, router.Dependencies{
		SessionHandler:    sessionHandler,
		AssignmentHandler: assignmentHandler,
		WorkflowHandler:   workflowHandler,
		DeletionHandler:   deletionHandler,
		State:             state,
		CurrentUser:       sessionService.CurrentUser,
		LoginLimiter:      middleware.RateLimit("login", 10, time.Minute),
	})

	go func() {
		if err := app.Listen(cfg.AppAddr); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	logger.Info().Str("addr", cfg.AppAddr).Str("store", cfg.StoreDriver).Msg("tracker listening")

	waitForShutdown(app)
}

func openStore(ctx context.Context, cfg config.Config) (repository.SnapshotRepository, func(), error) {
	noop := func() {}

	switch cfg.StoreDriver {
	case config.StoreMemory:
		return repository.NewMemorySnapshotRepository(), noop, nil
	case config.StoreSQLite:
		db, err := database.ConnectSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return repository.NewGormSnapshotRepository(db, cfg.StoreKey), closeGorm(db), nil
	case config.StorePostgres:
		db, err := database.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		return repository.NewGormSnapshotRepository(db, cfg.StoreKey), closeGorm(db), nil
	case config.StoreRedis:
		client, err := database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		return repository.NewRedisSnapshotRepository(client, cfg.StoreKey), func() { _ = client.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func closeGorm(db *gorm.DB) func() {
	return func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
