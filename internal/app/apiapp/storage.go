package apiapp

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/ivankudzin/pawmatch/internal/config"
	pgrepo "github.com/ivankudzin/pawmatch/internal/repo/postgres"
	sqliterepo "github.com/ivankudzin/pawmatch/internal/repo/sqlite"
	swipesvc "github.com/ivankudzin/pawmatch/internal/services/swipes"
)

// storage is the backend-specific half of the swipe service wiring.
type storage struct {
	tx      swipesvc.TxRunner
	ledger  swipesvc.Ledger
	matches swipesvc.MatchStore
	locker  swipesvc.PairLocker
	ping    func(ctx context.Context) error
	close   func()
}

func openStorage(ctx context.Context, cfg config.Config, log *zap.Logger) (*storage, error) {
	switch cfg.StorageDriver() {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg.Storage.Postgres, log)
	case config.DriverSQLite:
		return openSQLite(ctx, cfg.Storage.SQLite, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func openPostgres(ctx context.Context, cfg config.PostgresConfig, log *zap.Logger) (*storage, error) {
	if cfg.MigrateOnStart {
		res, err := pgrepo.Migrate(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		log.Info("postgres migrated", zap.Strings("applied", res.Applied), zap.Int64("version", res.Version))
	}

	pool, err := pgrepo.NewPool(ctx, pgrepo.PoolConfig{DSN: cfg.DSN, MaxConns: int32(cfg.MaxConns)})
	if err != nil {
		return nil, err
	}

	return &storage{
		tx:      pgrepo.NewTxManager(pool),
		ledger:  pgrepo.NewSwipeRepo(pool),
		matches: pgrepo.NewMatchRepo(pool),
		locker:  pgrepo.NewPairLocker(),
		ping:    pool.Ping,
		close:   pool.Close,
	}, nil
}

func openSQLite(ctx context.Context, cfg config.SQLiteConfig, log *zap.Logger) (*storage, error) {
	db, err := sqliterepo.Open(ctx, cfg.Path)
	if err != nil {
		return nil, err
	}
	log.Info("sqlite storage opened", zap.String("path", cfg.Path))

	return &storage{
		tx:      sqliterepo.NewTxManager(db),
		ledger:  sqliterepo.NewSwipeRepo(db),
		matches: sqliterepo.NewMatchRepo(db),
		ping:    db.PingContext,
		close:   closeSQL(db, log),
	}, nil
}

func closeSQL(db *sql.DB, log *zap.Logger) func() {
	return func() {
		if err := db.Close(); err != nil {
			log.Warn("close sqlite", zap.Error(err))
		}
	}
}

// NewSwipeService wires the swipe service straight onto storage, without
// HTTP or rate limiting. The returned func releases the storage.
func NewSwipeService(ctx context.Context, cfg config.Config, log *zap.Logger) (*swipesvc.Service, func(), error) {
	if log == nil {
		log = zap.NewNop()
	}

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}

	svc := swipesvc.NewService(swipesvc.Dependencies{
		Tx:      store.tx,
		Ledger:  store.ledger,
		Matches: store.matches,
		Locker:  store.locker,
		Logger:  log,
	}, swipesvc.Config{
		ConflictRetries: cfg.Swipes.ConflictRetries,
	})
	return svc, store.close, nil
}
