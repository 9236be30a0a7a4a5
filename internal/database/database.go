package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect opens the PostgreSQL pool that stores shots, batch jobs, runtime
// config and API clients.
func Connect(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	// Batch workers each hold a connection while claiming a job
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := Ping(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Ping checks the pool with a short timeout. A nil pool is reported healthy
// so handlers can run without persistence in development.
func Ping(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}
