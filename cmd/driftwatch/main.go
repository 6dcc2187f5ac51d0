package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/driftwatch/driftwatch/db"
	"github.com/driftwatch/driftwatch/internal/adapters"
	"github.com/driftwatch/driftwatch/internal/alerts"
	"github.com/driftwatch/driftwatch/internal/auth"
	"github.com/driftwatch/driftwatch/internal/gateway"
	"github.com/driftwatch/driftwatch/internal/handlers"
	"github.com/driftwatch/driftwatch/internal/invariants"
	"github.com/driftwatch/driftwatch/internal/models"
	"github.com/driftwatch/driftwatch/internal/router"
	"github.com/driftwatch/driftwatch/internal/scheduler"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	logger, err := zap.NewProduction()

	if os.Getenv("APP_ENV") == "development" {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := auth.InitJWTSecret(); err != nil {
		logger.Fatal("failed to initialize JWT secret", zap.Error(err))
	}

	dsn := os.Getenv("DATABASE_URL")

	if dsn == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	if err := db.ConnectDatabase(dsn); err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.MigrateDatabase(); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	engine := invariants.Initialize(
		invariants.GormStore{},
		adapters.Default(),
		gateway.Driver(),
		nil,
		logger.Named("engine"),
	)

	opts := []scheduler.Option{
		scheduler.WithNotify(func(group models.InvariantGroup) {
			handlers.BroadcastRefresh(strconv.FormatUint(uint64(group.ProjectID), 10))
		}),
	}

	if raw := os.Getenv("SCHEDULER_TICK_SECONDS"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			opts = append(opts, scheduler.WithTick(time.Duration(seconds)*time.Second))
		}
	}

	sched := scheduler.New(
		scheduler.GormSource{},
		engine,
		alerts.NewDispatcher(logger.Named("alerts")),
		logger.Named("scheduler"),
		opts...,
	)
	sched.Start()
	defer sched.Stop()

	r := router.NewRouter()

	port := os.Getenv("PORT")

	if port == "" {
		port = "3000"
		logger.Info("PORT not set, defaulting to 3000")
	}

	if err := r.Run(":" + port); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
