// Package main provides the battle engine daemon. It owns the daily battle
// state, persists every mutation, and rolls the day over at local midnight.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/taskraid/taskraid/internal/config"
	"github.com/taskraid/taskraid/internal/engine"
	"github.com/taskraid/taskraid/internal/game/battle"
	"github.com/taskraid/taskraid/internal/game/catalog"
	"github.com/taskraid/taskraid/internal/observability"
	"github.com/taskraid/taskraid/internal/server"
	"github.com/taskraid/taskraid/internal/storage"
	"github.com/taskraid/taskraid/internal/storage/memory"
	"github.com/taskraid/taskraid/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	rolloverCheck := flag.Duration("rollover-check", time.Minute, "how often to check for local-midnight rollover")
	healthCheck := flag.Duration("db-health-check", time.Minute, "how often to ping the database")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	cat := catalog.Default()
	if cfg.Battle.CatalogPath != "" {
		cat, err = catalog.LoadFromFile(cfg.Battle.CatalogPath)
		if err != nil {
			logger.Fatal("loading boss catalog", zap.Error(err))
		}
	}
	logger.Info("boss catalog loaded", zap.Int("bosses", cat.Size()))

	var store storage.Store
	var pool *postgres.Pool
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err = postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		store = postgres.NewBattleRepository(pool.DB())
	case "memory":
		store = memory.NewStore()
	default:
		logger.Fatal("unknown storage driver", zap.String("driver", cfg.Storage.Driver))
	}

	eng := engine.New(store, cat, logger)
	if err := eng.Initialize(ctx); err != nil {
		logger.Fatal("initializing battle engine", zap.Error(err))
	}

	state := eng.State()
	logger.Info("battle engine ready",
		zap.String("date", state.Date),
		zap.Int("bosses_remaining", state.TotalRemainingCount()),
		zap.Duration("startup", time.Since(start)),
	)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("rollover-watcher", newRolloverWatcher(eng, logger, *rolloverCheck))
	if pool != nil {
		lifecycle.Add("db-health", newDBHealthService(pool, logger, *healthCheck))
	}

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("lifecycle error", zap.Error(err))
	}
}

// newDBHealthService pings the database on an interval so a lost connection
// shows up in the logs before the next user action fails.
func newDBHealthService(pool *postgres.Pool, logger *zap.Logger, interval time.Duration) *server.FuncService {
	done := make(chan struct{})
	return &server.FuncService{
		StartFn: func() error {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := pool.Health(context.Background(), 5*time.Second); err != nil {
						logger.Warn("database health check failed", zap.Error(err))
					}
				case <-done:
					return nil
				}
			}
		},
		StopFn: func() { close(done) },
	}
}

// rolloverWatcher starts a new battle day when the local date changes while
// the process stays up across midnight.
type rolloverWatcher struct {
	eng      *engine.Engine
	logger   *zap.Logger
	interval time.Duration
	done     chan struct{}
}

func newRolloverWatcher(eng *engine.Engine, logger *zap.Logger, interval time.Duration) *rolloverWatcher {
	return &rolloverWatcher{
		eng:      eng,
		logger:   logger,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (w *rolloverWatcher) Start() error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			state := w.eng.State()
			if state == nil {
				continue
			}
			today := battle.LocalDate(time.Now())
			if state.Date == today {
				continue
			}
			w.logger.Info("local date changed, starting new battle day",
				zap.String("previous", state.Date),
				zap.String("today", today),
			)
			if err := w.eng.StartNewDay(context.Background()); err != nil {
				w.logger.Error("starting new battle day", zap.Error(err))
			}
		case <-w.done:
			return nil
		}
	}
}

func (w *rolloverWatcher) Stop() {
	close(w.done)
}
