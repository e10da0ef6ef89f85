// Package storage opens the credential store selected by STORE_DRIVER.
package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oksasatya/go-registration-flow/config"
	"github.com/oksasatya/go-registration-flow/internal/domain/repository"
	"github.com/oksasatya/go-registration-flow/internal/infrastructure/memory"
	"github.com/oksasatya/go-registration-flow/internal/infrastructure/mongostore"
	"github.com/oksasatya/go-registration-flow/internal/infrastructure/postgres"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Store bundles the repositories of one backend. Close releases its connections.
type Store struct {
	Driver  string
	Users   repository.UserRepository
	Pending repository.PendingRegistrationRepository

	// Set for the matching driver only.
	MongoDB *mongo.Database
	PGPool  *pgxpool.Pool

	close func()
}

func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// Open connects to the configured backend and prepares its schema:
// unique indexes for mongo, embedded migrations for postgres.
func Open(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Store, error) {
	switch cfg.StoreDriver {
	case DriverMongo:
		client, err := mongostore.NewClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		db := client.Database(cfg.MongoDB)
		if err := mongostore.EnsureIndexes(ctx, db, cfg.PendingRegistrationTTL); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		logger.WithField("db", cfg.MongoDB).Info("credential store: mongo")
		return &Store{
			Driver:  DriverMongo,
			Users:   mongostore.NewUserRepository(db),
			Pending: mongostore.NewPendingRegistrationRepository(db),
			MongoDB: db,
			close:   func() { _ = client.Disconnect(context.Background()) },
		}, nil

	case DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.PostgresDSN(), postgres.PoolOptions{
			MaxConns:        cfg.DBMaxConns,
			MinConns:        cfg.DBMinConns,
			MaxConnLifetime: cfg.DBMaxConnLife,
		})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.MigrationsEnabled {
			if err := postgres.RunMigrations(cfg.PostgresDSN(), logger); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		logger.WithField("db", cfg.DBName).Info("credential store: postgres")
		return &Store{
			Driver:  DriverPostgres,
			Users:   postgres.NewUserRepository(pool),
			Pending: postgres.NewPendingRegistrationRepository(pool),
			PGPool:  pool,
			close:   pool.Close,
		}, nil

	case DriverMemory:
		logger.Warn("credential store: memory; accounts are lost on restart")
		m := memory.NewStore()
		return &Store{Driver: DriverMemory, Users: m.Users(), Pending: m.Pending()}, nil

	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
