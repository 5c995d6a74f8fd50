package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finpulse/finpulse/internal/config"
	"github.com/finpulse/finpulse/internal/database"
	"github.com/finpulse/finpulse/internal/events"
	"github.com/finpulse/finpulse/internal/modules/behavior"
	"github.com/finpulse/finpulse/internal/modules/lean_periods"
	"github.com/finpulse/finpulse/internal/modules/simulations"
	"github.com/finpulse/finpulse/internal/modules/transactions"
	"github.com/finpulse/finpulse/internal/scheduler"
	"github.com/finpulse/finpulse/internal/server"
	"github.com/finpulse/finpulse/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info"})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting FinPulse")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(transactions.InitSchema, behavior.InitSchema); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Events
	eventManager := events.NewManager(log)

	// Behavior engine and service
	behaviorEngine := behavior.NewEngine(behavior.Policy{
		DecayFactor:     cfg.DecayFactor,
		DecayGap:        time.Duration(cfg.DecayGapDays) * 24 * time.Hour,
		ElasticityBase:  cfg.ElasticityBase,
		ElasticitySlope: cfg.ElasticitySlope,
	}, log)
	behaviorRepo := behavior.NewRepository(db.Conn(), log)
	behaviorService := behavior.NewService(behaviorEngine, behaviorRepo, eventManager, log)

	// Transactions
	transactionsRepo := transactions.NewRepository(db.Conn(), log)

	// Lean periods
	aggregator := lean_periods.NewAggregator(transactionsRepo, log)
	detector := lean_periods.NewDetector(cfg.LeanSigmaK, cfg.LeanNetFloor, log)
	forecaster := lean_periods.NewForecaster(cfg.VolatilityRiskThreshold, log)
	advisor := lean_periods.NewAdvisor(log)

	// Simulators
	reallocationSim := simulations.NewReallocationSimulator(log)
	projector := simulations.NewProjector(log)

	// Initialize scheduler
	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	// Nightly profile coverage snapshot at 2 AM
	if err := sched.AddJob("0 0 2 * * *", scheduler.NewProfileSummaryJob(behaviorRepo, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register jobs")
	}

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:    cfg.Port,
		Log:     log,
		DB:      db,
		Config:  cfg,
		DevMode: cfg.DevMode,

		BehaviorHandler:     behavior.NewHandler(behaviorService, log),
		TransactionsHandler: transactions.NewHandler(transactionsRepo, behaviorService, eventManager, log),
		LeanPeriodsHandler:  lean_periods.NewHandler(aggregator, detector, forecaster, advisor, eventManager, log),
		SimulationsHandler:  simulations.NewHandler(behaviorService, reallocationSim, projector, eventManager, log),
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
