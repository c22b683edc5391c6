package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketapp/internal/config"
)

// Postgres wraps access to a pgx connection pool and stores records in kv_records.
type Postgres struct {
	Pool *pgxpool.Pool
}

// NewPostgres establishes a connection pool.
func NewPostgres(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*Postgres, error) {
	if cfg.DSN == "" {
		return nil, errors.New("POSTGRES_DSN not provided")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("connected to postgres")
	return &Postgres{Pool: pool}, nil
}

func (p *Postgres) Get(ctx context.Context, key string) (Record, error) {
	const query = `SELECT value, revision FROM kv_records WHERE key=$1`

	var rec Record
	if err := p.Pool.QueryRow(ctx, query, key).Scan(&rec.Value, &rec.Revision); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

func (p *Postgres) Put(ctx context.Context, key string, value []byte, expectRevision int64) (int64, error) {
	const (
		upsert = `
        INSERT INTO kv_records (key, value, revision)
        VALUES ($1, $2, 1)
        ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, revision=kv_records.revision+1, updated_at=NOW()
        RETURNING revision`
		insertOnly = `
        INSERT INTO kv_records (key, value, revision)
        VALUES ($1, $2, 1)
        ON CONFLICT (key) DO NOTHING
        RETURNING revision`
		compareAndSwap = `
        UPDATE kv_records SET value=$2, revision=revision+1, updated_at=NOW()
        WHERE key=$1 AND revision=$3
        RETURNING revision`
	)

	var (
		next int64
		row  pgx.Row
	)
	switch {
	case expectRevision == AnyRevision:
		row = p.Pool.QueryRow(ctx, upsert, key, value)
	case expectRevision == 0:
		row = p.Pool.QueryRow(ctx, insertOnly, key, value)
	default:
		row = p.Pool.QueryRow(ctx, compareAndSwap, key, value, expectRevision)
	}
	if err := row.Scan(&next); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrRevisionMismatch
		}
		return 0, err
	}
	return next, nil
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	_, err := p.Pool.Exec(ctx, `DELETE FROM kv_records WHERE key=$1`, key)
	return err
}

// Ping verifies the pool can reach the database.
func (p *Postgres) Ping(ctx context.Context) error {
	if p == nil || p.Pool == nil {
		return errors.New("postgres pool not configured")
	}
	return p.Pool.Ping(ctx)
}

// Close releases pool resources.
func (p *Postgres) Close() error {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
	return nil
}

// PoolHandle returns the underlying pgx pool.
func (p *Postgres) PoolHandle() *pgxpool.Pool {
	if p == nil {
		return nil
	}
	return p.Pool
}
