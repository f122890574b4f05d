package cmd

import (
	"context"
	"fmt"

	"grid-sync/core/config"
	"grid-sync/core/database"
	"grid-sync/core/events"
	"grid-sync/core/logger"
	"grid-sync/core/reconcile"
	"grid-sync/core/retry"
	"grid-sync/core/scheduler"
	"grid-sync/core/sheets"
	"grid-sync/core/storage"
	"grid-sync/feature/grid"
	"grid-sync/feature/outbox"
	outboxmodels "grid-sync/feature/outbox/models"
	"grid-sync/feature/rows"
	rowsmodels "grid-sync/feature/rows/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// engine is the wired sync engine shared by the commands.
type engine struct {
	db       *gorm.DB
	rows     *rows.Repository
	queue    *outbox.Queue
	grid     *grid.Adapter
	store    storage.Client
	archiver *grid.Archiver
	hub      *events.Hub

	gridToStore *scheduler.Poller[*reconcile.GridToStoreResult]
	storeToGrid *scheduler.Poller[*reconcile.StoreToGridResult]
}

// loadRuntime loads the configuration and builds the logger from it.
func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, l, nil
}

// openDatabase connects to the relational store.
func openDatabase(cfg database.Config) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, &reconcile.BootstrapError{Component: "database", Err: err}
	}
	return db, nil
}

// migrateAll creates both tables and, where supported, the change queue triggers.
func migrateAll(db *gorm.DB) error {
	if err := rows.Migrate(db); err != nil {
		return err
	}
	if err := outbox.Migrate(db); err != nil {
		return err
	}
	return outbox.InstallTriggers(db)
}

// verifySchema checks that both tables exist with the columns the engine uses.
func verifySchema(db *gorm.DB) error {
	if err := database.VerifySchema(db, rowsmodels.TableName, rowsmodels.Columns); err != nil {
		return &reconcile.BootstrapError{Component: "schema", Err: err}
	}
	if err := database.VerifySchema(db, outboxmodels.TableName, outboxmodels.Columns); err != nil {
		return &reconcile.BootstrapError{Component: "schema", Err: err}
	}
	return nil
}

// newEngine connects every collaborator and builds both reconcilers. Any
// failure is a BootstrapError.
func newEngine(ctx context.Context, cfg *config.Config, l *zap.Logger) (*engine, error) {
	db, err := openDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := verifySchema(db); err != nil {
		return nil, err
	}
	l.Info("Connected to database", zap.String("driver", cfg.Database.Driver), zap.String("name", cfg.Database.Name))

	sheetsClient, err := sheets.NewClient(ctx, cfg.Sheets)
	if err != nil {
		return nil, &reconcile.BootstrapError{Component: "sheets", Err: err}
	}

	e := &engine{
		db:    db,
		rows:  rows.NewRepository(db),
		queue: outbox.NewQueue(db),
		grid:  grid.NewAdapter(sheetsClient, cfg.Sheets.SheetName, retry.New(cfg.Retry, l), l),
		hub:   events.NewHub(),
	}

	if cfg.Storage.Enabled {
		e.store, err = storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, &reconcile.BootstrapError{Component: "storage", Err: err}
		}
		e.archiver = grid.NewArchiver(e.store, cfg.Storage.Bucket, cfg.Storage.Prefix, l).WithRetain(cfg.Storage.Retain)
		if err := e.archiver.EnsureBucket(ctx); err != nil {
			return nil, &reconcile.BootstrapError{Component: "storage", Err: err}
		}
		l.Info("Snapshot archiving enabled", zap.String("bucket", cfg.Storage.Bucket), zap.String("prefix", cfg.Storage.Prefix))
	}

	g2s := reconcile.NewGridToStore(e.grid, e.rows, e.hub, l)
	if e.archiver != nil {
		g2s.WithArchiver(e.archiver)
	}
	s2g := reconcile.NewStoreToGrid(e.grid, e.queue, e.hub, l, cfg.Sync.BatchSize)

	e.gridToStore = scheduler.NewPoller(string(reconcile.DirectionGridToStore), cfg.Sync.GridInterval, g2s.Run, l).
		WithTimeout(cfg.Sync.TickTimeout)
	e.storeToGrid = scheduler.NewPoller(string(reconcile.DirectionStoreToGrid), cfg.Sync.StoreInterval, s2g.Run, l).
		WithTimeout(cfg.Sync.TickTimeout)

	return e, nil
}
