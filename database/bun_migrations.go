package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

type migrationFunc func(context.Context, *bun.DB) error

type migration struct {
	version string
	name    string
	up      migrationFunc
	down    migrationFunc
}

// ordered oldest first, versions are never reused
var migrations = []migration{
	{"001", "initial_schema", up001InitialSchema, down001InitialSchema},
	{"002", "add_fulltext_search", up002FullTextSearch, down002FullTextSearch},
	{"003", "add_word_cloud", up003WordCloud, down003WordCloud},
	{"004", "create_jobs_table", up004JobsTable, down004JobsTable},
}

type appliedMigration struct {
	bun.BaseModel `bun:"table:bun_schema_migrations"`
	Version       string `bun:"version"`
}

// dialectIsPostgres sniffs the dialect, only pgdialect exposes
// SupportsReturning
func dialectIsPostgres(db *bun.DB) bool {
	_, ok := db.Dialect().(interface{ SupportsReturning() bool })
	return ok
}

// runMigrations applies every migration not yet recorded in
// bun_schema_migrations, in order.
func runMigrations(ctx context.Context, db *bun.DB) error {
	if err := createMigrationsTable(ctx, db); err != nil {
		return err
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}

		Logger.Info("Running migration", "version", m.version, "name", m.name)
		if err := m.up(ctx, db); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", m.version, err)
		}

		_, err := db.NewInsert().
			Model(&appliedMigration{Version: m.version}).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to mark migration %s as applied: %w", m.version, err)
		}
	}

	Logger.Info("All migrations completed successfully")
	return nil
}

func createMigrationsTable(ctx context.Context, db *bun.DB) error {
	trackingSQL := `
		CREATE TABLE IF NOT EXISTS bun_schema_migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			version TEXT NOT NULL UNIQUE,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if dialectIsPostgres(db) {
		trackingSQL = `
		CREATE TABLE IF NOT EXISTS bun_schema_migrations (
			id SERIAL PRIMARY KEY,
			version TEXT NOT NULL UNIQUE,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	}

	if _, err := db.ExecContext(ctx, trackingSQL); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func appliedVersions(ctx context.Context, db *bun.DB) (map[string]bool, error) {
	var rows []appliedMigration
	if err := db.NewSelect().Model(&rows).Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to check applied migrations: %w", err)
	}

	applied := make(map[string]bool, len(rows))
	for _, row := range rows {
		applied[row.Version] = true
	}
	return applied, nil
}

// 001 creates the documents and server_config tables
func up001InitialSchema(ctx context.Context, db *bun.DB) error {
	Logger.Info("Running migration 001: Create initial schema")

	createTableSQL := `
		CREATE TABLE IF NOT EXISTS documents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			path TEXT NOT NULL UNIQUE,
			ingress_time TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			folder TEXT NOT NULL,
			hash TEXT NOT NULL,
			ulid TEXT NOT NULL UNIQUE,
			document_type TEXT NOT NULL,
			full_text TEXT,
			page_count INTEGER NOT NULL DEFAULT 0,
			outline TEXT,
			url TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`
	if dialectIsPostgres(db) {
		createTableSQL = `
		CREATE TABLE IF NOT EXISTS documents (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			path TEXT NOT NULL UNIQUE,
			ingress_time TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			folder TEXT NOT NULL,
			hash TEXT NOT NULL,
			ulid TEXT NOT NULL UNIQUE,
			document_type TEXT NOT NULL,
			full_text TEXT,
			page_count INTEGER NOT NULL DEFAULT 0,
			outline TEXT,
			url TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`
	}

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_documents_hash ON documents(hash)",
		"CREATE INDEX IF NOT EXISTS idx_documents_ulid ON documents(ulid)",
		"CREATE INDEX IF NOT EXISTS idx_documents_folder ON documents(folder)",
		"CREATE INDEX IF NOT EXISTS idx_documents_ingress_time ON documents(ingress_time DESC)",
	}
	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	var createConfigSQL, insertConfigSQL string
	if dialectIsPostgres(db) {
		createConfigSQL = `
			CREATE TABLE IF NOT EXISTS server_config (
				id INTEGER PRIMARY KEY CHECK (id = 1),
				listen_addr_ip TEXT DEFAULT '',
				listen_addr_port TEXT NOT NULL DEFAULT '8000',
				ingress_path TEXT NOT NULL DEFAULT '',
				ingress_delete BOOLEAN NOT NULL DEFAULT false,
				ingress_move_folder TEXT NOT NULL DEFAULT '',
				ingress_preserve BOOLEAN NOT NULL DEFAULT true,
				document_path TEXT NOT NULL DEFAULT '',
				new_document_folder TEXT DEFAULT '',
				new_document_folder_rel TEXT DEFAULT '',
				web_ui_pass BOOLEAN NOT NULL DEFAULT false,
				client_username TEXT DEFAULT '',
				client_password TEXT DEFAULT '',
				tesseract_path TEXT DEFAULT '',
				renderer TEXT NOT NULL DEFAULT 'fitz',
				render_dpi INTEGER NOT NULL DEFAULT 150,
				tesseract_service_url TEXT DEFAULT '',
				pdf_service_url TEXT DEFAULT '',
				use_reverse_proxy BOOLEAN NOT NULL DEFAULT false,
				base_url TEXT DEFAULT '',
				ingress_interval INTEGER NOT NULL DEFAULT 10,
				new_document_number INTEGER NOT NULL DEFAULT 5,
				server_api_url TEXT DEFAULT '',
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`
		insertConfigSQL = `INSERT INTO server_config (id) VALUES (1) ON CONFLICT (id) DO NOTHING`
	} else {
		createConfigSQL = `
			CREATE TABLE IF NOT EXISTS server_config (
				id INTEGER PRIMARY KEY CHECK (id = 1),
				listen_addr_ip TEXT DEFAULT '',
				listen_addr_port TEXT NOT NULL DEFAULT '8000',
				ingress_path TEXT NOT NULL DEFAULT '',
				ingress_delete BOOLEAN NOT NULL DEFAULT 0,
				ingress_move_folder TEXT NOT NULL DEFAULT '',
				ingress_preserve BOOLEAN NOT NULL DEFAULT 1,
				document_path TEXT NOT NULL DEFAULT '',
				new_document_folder TEXT DEFAULT '',
				new_document_folder_rel TEXT DEFAULT '',
				web_ui_pass BOOLEAN NOT NULL DEFAULT 0,
				client_username TEXT DEFAULT '',
				client_password TEXT DEFAULT '',
				tesseract_path TEXT DEFAULT '',
				renderer TEXT NOT NULL DEFAULT 'fitz',
				render_dpi INTEGER NOT NULL DEFAULT 150,
				tesseract_service_url TEXT DEFAULT '',
				pdf_service_url TEXT DEFAULT '',
				use_reverse_proxy BOOLEAN NOT NULL DEFAULT 0,
				base_url TEXT DEFAULT '',
				ingress_interval INTEGER NOT NULL DEFAULT 10,
				new_document_number INTEGER NOT NULL DEFAULT 5,
				server_api_url TEXT DEFAULT '',
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`
		insertConfigSQL = `INSERT OR IGNORE INTO server_config (id) VALUES (1)`
	}

	if _, err := db.ExecContext(ctx, createConfigSQL); err != nil {
		return fmt.Errorf("failed to create server_config table: %w", err)
	}
	if _, err := db.ExecContext(ctx, insertConfigSQL); err != nil {
		return fmt.Errorf("failed to insert default config: %w", err)
	}

	Logger.Info("Migration 001 completed successfully")
	return nil
}

func down001InitialSchema(ctx context.Context, db *bun.DB) error {
	Logger.Info("Rolling back migration 001")

	if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS server_config"); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS documents")
	return err
}

// 002 adds full-text search, a tsvector column kept current by a trigger on
// postgres and a plain indexed column for sqlite
func up002FullTextSearch(ctx context.Context, db *bun.DB) error {
	Logger.Info("Running migration 002: Add full-text search")

	if !dialectIsPostgres(db) {
		_, err := db.ExecContext(ctx, `
			ALTER TABLE documents ADD COLUMN full_text_search TEXT
		`)
		if err != nil {
			// no ADD COLUMN IF NOT EXISTS in sqlite
			Logger.Warn("Could not add full_text_search column (might already exist)", "error", err)
		}

		_, err = db.ExecContext(ctx, `
			CREATE INDEX IF NOT EXISTS idx_documents_full_text_search ON documents(full_text_search)
		`)
		if err != nil {
			return fmt.Errorf("failed to create full_text_search index: %w", err)
		}

		Logger.Info("Migration 002 completed successfully")
		return nil
	}

	_, err := db.ExecContext(ctx, `
		ALTER TABLE documents ADD COLUMN IF NOT EXISTS full_text_search tsvector
	`)
	if err != nil {
		Logger.Warn("Could not add full_text_search column (might already exist)", "error", err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_documents_full_text_search ON documents USING GIN(full_text_search)
	`)
	if err != nil {
		return fmt.Errorf("failed to create full_text_search GIN index: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE OR REPLACE FUNCTION update_full_text_search()
		RETURNS TRIGGER AS $$
		BEGIN
			NEW.full_text_search = to_tsvector('english', COALESCE(NEW.full_text, '') || ' ' || COALESCE(NEW.name, ''));
			RETURN NEW;
		END;
		$$ LANGUAGE plpgsql
	`)
	if err != nil {
		return fmt.Errorf("failed to create update_full_text_search function: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		DROP TRIGGER IF EXISTS trigger_update_full_text_search ON documents
	`)
	if err != nil {
		Logger.Warn("Could not drop trigger (might not exist)", "error", err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE TRIGGER trigger_update_full_text_search
			BEFORE INSERT OR UPDATE OF full_text, name ON documents
			FOR EACH ROW
			EXECUTE FUNCTION update_full_text_search()
	`)
	if err != nil {
		return fmt.Errorf("failed to create trigger: %w", err)
	}

	// backfill rows that predate the trigger
	_, err = db.ExecContext(ctx, `
		UPDATE documents
		SET full_text_search = to_tsvector('english', COALESCE(full_text, '') || ' ' || COALESCE(name, ''))
	`)
	if err != nil {
		Logger.Warn("Could not update existing documents (table might be empty)", "error", err)
	}

	Logger.Info("Migration 002 completed successfully")
	return nil
}

func down002FullTextSearch(ctx context.Context, db *bun.DB) error {
	// sqlite has no easy DROP COLUMN, leave the column in place unused
	Logger.Info("Migration 002 rollback completed (column retained)")
	return nil
}

// 003 adds the word cloud tables
func up003WordCloud(ctx context.Context, db *bun.DB) error {
	Logger.Info("Running migration 003: Add word cloud tables")

	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS word_frequencies (
			word TEXT PRIMARY KEY,
			frequency INTEGER DEFAULT 1,
			last_updated TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create word_frequencies table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_word_frequencies_frequency ON word_frequencies(frequency DESC)",
		"CREATE INDEX IF NOT EXISTS idx_word_frequencies_updated ON word_frequencies(last_updated DESC)",
	}
	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS word_cloud_metadata (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			last_full_calculation TIMESTAMP,
			total_documents_processed INTEGER DEFAULT 0,
			total_words_indexed INTEGER DEFAULT 0,
			version INTEGER DEFAULT 1,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create word_cloud_metadata table: %w", err)
	}

	insertMetadataSQL := `INSERT OR IGNORE INTO word_cloud_metadata (id) VALUES (1)`
	if dialectIsPostgres(db) {
		insertMetadataSQL = `INSERT INTO word_cloud_metadata (id) VALUES (1) ON CONFLICT (id) DO NOTHING`
	}
	if _, err := db.ExecContext(ctx, insertMetadataSQL); err != nil {
		return fmt.Errorf("failed to insert default metadata: %w", err)
	}

	Logger.Info("Migration 003 completed successfully")
	return nil
}

func down003WordCloud(ctx context.Context, db *bun.DB) error {
	Logger.Info("Rolling back migration 003")

	if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS word_cloud_metadata"); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS word_frequencies")
	return err
}

// 004 creates the jobs table
func up004JobsTable(ctx context.Context, db *bun.DB) error {
	Logger.Info("Running migration 004: Create jobs table")

	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS jobs (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			status TEXT DEFAULT 'pending',
			progress INTEGER DEFAULT 0,
			current_step TEXT DEFAULT '',
			total_steps INTEGER DEFAULT 0,
			message TEXT DEFAULT '',
			error TEXT,
			result TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			started_at TIMESTAMP,
			completed_at TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create jobs table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status)",
		"CREATE INDEX IF NOT EXISTS idx_jobs_type ON jobs(type)",
		"CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_jobs_completed_at ON jobs(completed_at) WHERE completed_at IS NOT NULL",
	}
	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			// older sqlite builds reject partial indexes
			Logger.Warn("Could not create index (might not be supported)", "error", err)
		}
	}

	Logger.Info("Migration 004 completed successfully")
	return nil
}

func down004JobsTable(ctx context.Context, db *bun.DB) error {
	Logger.Info("Rolling back migration 004")

	_, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS jobs")
	return err
}
