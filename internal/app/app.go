// Package app assembles the migration services from configuration. The
// server and the operator CLI share it so both run the same guarded code.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/dtroode/cohort-migrator/internal/config"
	"github.com/dtroode/cohort-migrator/internal/credential"
	"github.com/dtroode/cohort-migrator/internal/guard"
	"github.com/dtroode/cohort-migrator/internal/logger"
	"github.com/dtroode/cohort-migrator/internal/model"
	"github.com/dtroode/cohort-migrator/internal/monitor"
	"github.com/dtroode/cohort-migrator/internal/repository/postgres"
	"github.com/dtroode/cohort-migrator/internal/service"
	"github.com/dtroode/cohort-migrator/internal/source"
	storage "github.com/dtroode/cohort-migrator/internal/storage/minio"
	"github.com/dtroode/cohort-migrator/internal/token"
)

// Stores are the persistence dependencies of the services.
type Stores struct {
	Identities model.IdentityStore
	Snapshots  model.SnapshotStore
	Audit      model.AuditStore
	Violations model.ViolationStore
	Locks      model.LockStore
	// Registry is nil when registry baselines are kept in memory.
	Registry model.RegistryStore
	// Objects is nil when object storage is disabled.
	Objects *storage.Client
}

// App holds the wired services.
type App struct {
	Config     *config.Config
	Monitor    *monitor.Monitor
	Emergency  *guard.EmergencySwitch
	Guard      *guard.Guard
	Migration  *service.Migration
	Rollback   *service.Rollback
	Credential *service.Credential
	Tokens     *service.TokenService

	logger  *logger.Logger
	closers []func() error
}

// New connects to the database and object storage described by cfg and wires
// the services on top of them.
func New(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*App, error) {
	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	ledger := db.SQLDB()

	stores := Stores{
		Identities: postgres.NewIdentityRepository(db),
		Snapshots:  postgres.NewSnapshotRepository(db),
		Audit:      postgres.NewAuditRepository(ledger),
		Violations: postgres.NewViolationRepository(ledger),
		Locks:      postgres.NewLockRepository(db),
		Registry:   postgres.NewRegistryRepository(ledger),
	}

	if cfg.Storage.Enabled {
		stores.Objects, err = storage.New(ctx, cfg.Storage)
		if err != nil {
			_ = ledger.Close()
			_ = db.Close()
			return nil, fmt.Errorf("failed to initialize object storage: %w", err)
		}
	}

	a, err := Wire(cfg, stores, logger)
	if err != nil {
		_ = ledger.Close()
		_ = db.Close()
		return nil, err
	}
	a.closers = append(a.closers, ledger.Close, db.Close)
	return a, nil
}

// Wire builds the services over stores.
func Wire(cfg *config.Config, stores Stores, logger *logger.Logger) (*App, error) {
	locker, err := newLocker(cfg.Migration, stores.Locks)
	if err != nil {
		return nil, err
	}

	mon := monitor.New(stores.Violations, cfg.Migration.Quarantine, logger)
	if stores.Registry != nil {
		mon.UseRegistry(stores.Registry)
	}

	emergency := guard.NewEmergencySwitch(cfg.Migration.EmergencyFlag)
	authorizer := guard.NewAuthorizer(cfg.Migration.AllowedOperators, nil)
	g := guard.New(mon, emergency, authorizer, locker, cfg.Migration.ConfirmPhrase, logger)

	// nil interfaces, not typed nils, when object storage is disabled
	var (
		objects model.Storage
		archive model.AuditArchive
	)
	if stores.Objects != nil {
		objects = stores.Objects
		archive = stores.Objects
	}

	return &App{
		Config:    cfg,
		Monitor:   mon,
		Emergency: emergency,
		Guard:     g,
		Migration: service.NewMigration(
			cfg.Migration,
			source.NewOpener(objects),
			stores.Identities,
			stores.Snapshots,
			stores.Audit,
			archive,
			g,
			mon,
			logger,
		),
		Rollback: service.NewRollback(
			cfg.Migration.Cohort,
			stores.Identities,
			stores.Snapshots,
			stores.Audit,
			archive,
			g,
			logger,
		),
		Credential: service.NewCredential(stores.Identities, credential.NewHasher(cfg.Migration.BcryptCost), logger),
		Tokens:     service.NewTokenService(token.NewJWT(cfg.JWT.Secret), logger),
		logger:     logger,
	}, nil
}

func newLocker(cfg config.Migration, locks model.LockStore) (guard.Locker, error) {
	switch cfg.LockBackend {
	case config.LockBackendFile:
		return guard.NewFileLocker(cfg.LockDir), nil
	case config.LockBackendPostgres:
		if locks == nil {
			return nil, fmt.Errorf("lock backend %q needs a lock store", cfg.LockBackend)
		}
		return guard.NewStoreLocker(locks, cfg.LockTTL), nil
	default:
		return nil, fmt.Errorf("unknown lock backend %q", cfg.LockBackend)
	}
}

// VerifyRegistry compares the operations returned by current with the
// baseline of scope. Failures are logged; the check never blocks a run.
func (a *App) VerifyRegistry(ctx context.Context, scope string, current []string) {
	if _, err := a.Monitor.VerifyRegistry(ctx, scope, current); err != nil {
		a.logger.Error("App: registry check failed", "scope", scope, "error", err.Error())
	}
}

// WatchRegistry checks the operations returned by current against the
// baseline of scope right away and then every interval until ctx is done.
func (a *App) WatchRegistry(ctx context.Context, interval time.Duration, scope string, current func() []string) {
	a.VerifyRegistry(ctx, scope, current())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.VerifyRegistry(ctx, scope, current())
		}
	}
}

// Close releases the database handles opened by New.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
