package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/stapelberg/postgrestest"
)

// EphemeralPostgresDB is a PostgresDB backed by a throwaway server, used for
// development and tests
type EphemeralPostgresDB struct {
	*PostgresDB
	srv *postgrestest.Server
}

// StartEphemeralPostgres starts a throwaway PostgreSQL server and creates a
// fresh database on it, returning the server handle and the database DSN.
// The caller owns the server and must Cleanup() it when done.
func StartEphemeralPostgres(ctx context.Context) (*postgrestest.Server, string, error) {
	Logger.Info("Booting ephemeral PostgreSQL server")

	pgt, err := postgrestest.Start(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("start ephemeral postgres: %w", err)
	}

	dsn, err := pgt.CreateDatabase(ctx)
	if err != nil {
		pgt.Cleanup()
		return nil, "", fmt.Errorf("create folium database: %w", err)
	}

	Logger.Info("Created ephemeral database", "dsn", dsn)
	return pgt, dsn, nil
}

// SetupEphemeralPostgresDatabase brings up an ephemeral server, connects and
// applies the SQL migrations, for use with the raw PostgresDB repository
func SetupEphemeralPostgresDatabase() (*EphemeralPostgresDB, error) {
	pgt, dsn, err := StartEphemeralPostgres(context.Background())
	if err != nil {
		return nil, err
	}
	ready := false
	defer func() {
		if !ready {
			pgt.Cleanup()
		}
	}()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open folium database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping ephemeral database: %w", err)
	}
	Logger.Info("Ephemeral PostgreSQL database is up")

	if err := runPostgresMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	ready = true
	return &EphemeralPostgresDB{
		PostgresDB: &PostgresDB{db: db},
		srv:        pgt,
	}, nil
}

// Close closes the database connection and stops the ephemeral server
func (e *EphemeralPostgresDB) Close() error {
	if e.PostgresDB != nil && e.PostgresDB.db != nil {
		if err := e.PostgresDB.db.Close(); err != nil {
			Logger.Warn("Could not close ephemeral database connection", "error", err)
		}
	}
	if e.srv != nil {
		Logger.Info("Shutting down ephemeral PostgreSQL server")
		e.srv.Cleanup()
	}
	return nil
}
