package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/recouphq/voicebridge/internal/config"
	"github.com/recouphq/voicebridge/internal/repository"
	"github.com/samber/do/v2"
)

const databaseInitTimeout = 30 * time.Second

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (repository.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		ctx, cancel := context.WithTimeout(context.Background(), databaseInitTimeout)
		defer cancel()

		pool, err := connectWithRetry(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := RunMigration(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run migration: %w", err)
		}
		return NewPostgresRepository(pool), nil
	})
}

// connectWithRetry retries transient connect/ping failures at startup so a
// database that is still coming up does not kill the process.
func connectWithRetry(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	operation := func() error {
		p, err := pgxpool.New(ctx, databaseURL)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	}

	policy := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return pool, nil
}
