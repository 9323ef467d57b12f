package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct {
	*pgxpool.Pool
}

// PoolOptions tunes the pgx connection pool. Zero values keep the defaults below.
type PoolOptions struct {
	MaxConns int32
	MinConns int32
	// TimeZone is sent as the session timezone so date_trunc buckets match Go-side windows.
	TimeZone string
}

func NewPostgreSQLDB(dsn string, opts ...PoolOptions) (*DB, error) {
	config, err := pgxpool.ParseConfig(dsn)

	if err != nil {
		return nil, err
	}
	applyPoolOptions(config, opts...)

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, err
	}

	return &DB{Pool: pool}, nil
}

func applyPoolOptions(config *pgxpool.Config, opts ...PoolOptions) {
	// Connection pool settings
	config.MaxConns = 25
	config.MinConns = 5
	for _, o := range opts {
		if o.MaxConns > 0 {
			config.MaxConns = o.MaxConns
		}
		if o.MinConns > 0 {
			config.MinConns = o.MinConns
		}
		if o.TimeZone != "" {
			if config.ConnConfig.RuntimeParams == nil {
				config.ConnConfig.RuntimeParams = map[string]string{}
			}
			config.ConnConfig.RuntimeParams["timezone"] = o.TimeZone
		}
	}
}

func (db *DB) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return db.Pool.Begin(ctx)
}

type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, arguments ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}
