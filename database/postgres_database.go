package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	config "github.com/folium-app/folium/config"
	"github.com/oklog/ulid/v2"
)

// PostgresDB implements Repository for PostgreSQL
type PostgresDB struct {
	db *sql.DB
}

// SetupPostgresDatabase connects to the given server and brings the schema
// up to date. An empty connection string brings up a throwaway ephemeral
// server instead.
func SetupPostgresDatabase(connectionString string) (*PostgresDB, error) {
	if connectionString == "" {
		Logger.Info("No connection string provided, using ephemeral PostgreSQL...")
		ephemeralDB, err := SetupEphemeralPostgresDatabase()
		if err != nil {
			return nil, fmt.Errorf("failed to setup ephemeral postgres: %w", err)
		}
		// the ephemeral wrapper owns server cleanup on Close
		return ephemeralDB.PostgresDB, nil
	}

	Logger.Info("Connecting to external PostgreSQL/CockroachDB server...")
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	Logger.Info("Connected to PostgreSQL database successfully")

	Logger.Info("Running database migrations...")
	if err := runPostgresMigrations(db); err != nil {
		Logger.Error("Failed to run database migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	Logger.Info("Database migrations completed successfully")

	return &PostgresDB{db: db}, nil
}

// migrationsDir locates the SQL migration files, which sit at a different
// relative path when tests run from inside the package directory.
func migrationsDir() (string, error) {
	path, err := filepath.Abs("database/migrations")
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return filepath.Abs("migrations")
	}
	return path, nil
}

func runPostgresMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	dir, err := migrationsDir()
	if err != nil {
		return fmt.Errorf("failed to get migrations path: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	if dirty {
		// a crashed migration leaves the dirty flag set, force back to the
		// recorded version and rerun
		Logger.Warn("Database is in dirty state, attempting to recover")
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force migration version: %w", err)
		}
	}

	Logger.Info("Applying database migrations")
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Close closes the database connection. Ephemeral servers are stopped by
// the wrapper that started them, not here.
func (p *PostgresDB) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

const documentColumns = `id, name, path, ingress_time, folder, hash, ulid, document_type, full_text, page_count, outline, url`

// SaveDocument saves or updates a document
func (p *PostgresDB) SaveDocument(doc *Document) error {
	query := `
		INSERT INTO documents (name, path, ingress_time, folder, hash, ulid, document_type, full_text, page_count, outline, url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT(path) DO UPDATE SET
			name = EXCLUDED.name,
			ingress_time = EXCLUDED.ingress_time,
			folder = EXCLUDED.folder,
			hash = EXCLUDED.hash,
			ulid = EXCLUDED.ulid,
			document_type = EXCLUDED.document_type,
			full_text = EXCLUDED.full_text,
			page_count = EXCLUDED.page_count,
			outline = EXCLUDED.outline,
			url = EXCLUDED.url,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`

	return p.db.QueryRow(query,
		doc.Name, doc.Path, doc.IngressTime, doc.Folder, doc.Hash,
		doc.ULID.String(), doc.DocumentType, doc.FullText, doc.PageCount,
		doc.Outline, doc.URL,
	).Scan(&doc.ID)
}

// scanDocumentRow scans a single document row sharing documentColumns order
func scanDocumentRow(row *sql.Row) (*Document, error) {
	doc := &Document{}
	var ulidStr string

	err := row.Scan(
		&doc.ID, &doc.Name, &doc.Path, &doc.IngressTime,
		&doc.Folder, &doc.Hash, &ulidStr, &doc.DocumentType,
		&doc.FullText, &doc.PageCount, &doc.Outline, &doc.URL,
	)
	if err != nil {
		return nil, err
	}

	parsed, err := ulid.Parse(ulidStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ULID: %w", err)
	}
	doc.ULID = parsed

	return doc, nil
}

// GetDocumentByID retrieves a document by ID
func (p *PostgresDB) GetDocumentByID(id int) (*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocumentRow(p.db.QueryRow(query, id))
}

// GetDocumentByULID retrieves a document by ULID
func (p *PostgresDB) GetDocumentByULID(ulidStr string) (*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE ulid = $1`
	return scanDocumentRow(p.db.QueryRow(query, ulidStr))
}

// GetDocumentByPath retrieves a document by file path
func (p *PostgresDB) GetDocumentByPath(path string) (*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE path = $1`
	return scanDocumentRow(p.db.QueryRow(query, path))
}

// GetDocumentByHash retrieves a document by hash. A missing row is not an
// error here, callers read nil as "no duplicate".
func (p *PostgresDB) GetDocumentByHash(hash string) (*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE hash = $1`

	doc, err := scanDocumentRow(p.db.QueryRow(query, hash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return doc, err
}

// scanDocuments converts query rows into documents, columns in
// documentColumns order
func scanDocuments(rows *sql.Rows) ([]Document, error) {
	var documents []Document

	for rows.Next() {
		doc := Document{}
		var ulidStr string

		err := rows.Scan(
			&doc.ID, &doc.Name, &doc.Path, &doc.IngressTime,
			&doc.Folder, &doc.Hash, &ulidStr, &doc.DocumentType,
			&doc.FullText, &doc.PageCount, &doc.Outline, &doc.URL,
		)
		if err != nil {
			return nil, err
		}

		parsed, err := ulid.Parse(ulidStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse ULID: %w", err)
		}
		doc.ULID = parsed

		documents = append(documents, doc)
	}

	return documents, rows.Err()
}

func (p *PostgresDB) queryDocuments(query string, args ...any) ([]Document, error) {
	rows, err := p.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// GetNewestDocuments retrieves the newest documents
func (p *PostgresDB) GetNewestDocuments(limit int) ([]Document, error) {
	return p.queryDocuments(
		`SELECT `+documentColumns+` FROM documents ORDER BY ingress_time DESC LIMIT $1`, limit)
}

// GetAllDocuments retrieves all documents
func (p *PostgresDB) GetAllDocuments() ([]Document, error) {
	return p.queryDocuments(`SELECT ` + documentColumns + ` FROM documents ORDER BY id`)
}

// GetDocumentsByFolder retrieves documents in a specific folder
func (p *PostgresDB) GetDocumentsByFolder(folder string) ([]Document, error) {
	return p.queryDocuments(
		`SELECT `+documentColumns+` FROM documents WHERE folder = $1`, folder)
}

// GetNewestDocumentsWithPagination retrieves one page of documents plus the
// total count
func (p *PostgresDB) GetNewestDocumentsWithPagination(page int, pageSize int) ([]Document, int, error) {
	var totalCount int
	if err := p.db.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&totalCount); err != nil {
		return nil, 0, err
	}

	docs, err := p.queryDocuments(
		`SELECT `+documentColumns+` FROM documents ORDER BY ingress_time DESC LIMIT $1 OFFSET $2`,
		pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}

	return docs, totalCount, nil
}

// DeleteDocument deletes a document by ULID
func (p *PostgresDB) DeleteDocument(ulidStr string) error {
	_, err := p.db.Exec(`DELETE FROM documents WHERE ulid = $1`, ulidStr)
	return err
}

// UpdateDocumentURL updates the URL field of a document
func (p *PostgresDB) UpdateDocumentURL(ulidStr string, url string) error {
	_, err := p.db.Exec(
		`UPDATE documents SET url = $1, updated_at = CURRENT_TIMESTAMP WHERE ulid = $2`,
		url, ulidStr)
	return err
}

// UpdateDocumentFolder updates the Folder field of a document
func (p *PostgresDB) UpdateDocumentFolder(ulidStr string, folder string) error {
	_, err := p.db.Exec(
		`UPDATE documents SET folder = $1, updated_at = CURRENT_TIMESTAMP WHERE ulid = $2`,
		folder, ulidStr)
	return err
}

// UpdateDocumentPageData updates the render-derived fields of a document
func (p *PostgresDB) UpdateDocumentPageData(ulidStr string, pageCount int, outline string) error {
	_, err := p.db.Exec(
		`UPDATE documents SET page_count = $1, outline = $2, updated_at = CURRENT_TIMESTAMP WHERE ulid = $3`,
		pageCount, outline, ulidStr)
	return err
}

// SaveConfig saves server configuration
func (p *PostgresDB) SaveConfig(cfg *config.ServerConfig) error {
	query := `
		UPDATE server_config SET
			listen_addr_ip = $1,
			listen_addr_port = $2,
			ingress_path = $3,
			ingress_delete = $4,
			ingress_move_folder = $5,
			ingress_preserve = $6,
			document_path = $7,
			new_document_folder = $8,
			new_document_folder_rel = $9,
			web_ui_pass = $10,
			client_username = $11,
			client_password = $12,
			tesseract_path = $13,
			renderer = $14,
			render_dpi = $15,
			tesseract_service_url = $16,
			pdf_service_url = $17,
			use_reverse_proxy = $18,
			base_url = $19,
			ingress_interval = $20,
			new_document_number = $21,
			server_api_url = $22
		WHERE id = 1
	`

	_, err := p.db.Exec(query,
		cfg.ListenAddrIP, cfg.ListenAddrPort, cfg.IngressPath,
		cfg.IngressDelete, cfg.IngressMoveFolder, cfg.IngressPreserve,
		cfg.DocumentPath, cfg.NewDocumentFolder, cfg.NewDocumentFolderRel,
		cfg.WebUIPass, cfg.ClientUsername, cfg.ClientPassword,
		cfg.TesseractPath, cfg.Renderer, cfg.RenderDPI,
		cfg.TesseractServiceURL, cfg.PDFServiceURL, cfg.UseReverseProxy,
		cfg.BaseURL, cfg.IngressInterval,
		cfg.FrontEndConfig.NewDocumentNumber, cfg.FrontEndConfig.ServerAPIURL,
	)
	return err
}

// GetConfig retrieves server configuration
func (p *PostgresDB) GetConfig() (*config.ServerConfig, error) {
	query := `
		SELECT listen_addr_ip, listen_addr_port, ingress_path, ingress_delete,
		       ingress_move_folder, ingress_preserve, document_path, new_document_folder,
		       new_document_folder_rel, web_ui_pass, client_username, client_password,
		       tesseract_path, renderer, render_dpi, tesseract_service_url,
		       pdf_service_url, use_reverse_proxy, base_url,
		       ingress_interval, new_document_number, server_api_url
		FROM server_config WHERE id = 1
	`

	cfg := &config.ServerConfig{}
	err := p.db.QueryRow(query).Scan(
		&cfg.ListenAddrIP, &cfg.ListenAddrPort, &cfg.IngressPath,
		&cfg.IngressDelete, &cfg.IngressMoveFolder, &cfg.IngressPreserve,
		&cfg.DocumentPath, &cfg.NewDocumentFolder, &cfg.NewDocumentFolderRel,
		&cfg.WebUIPass, &cfg.ClientUsername, &cfg.ClientPassword,
		&cfg.TesseractPath, &cfg.Renderer, &cfg.RenderDPI,
		&cfg.TesseractServiceURL, &cfg.PDFServiceURL, &cfg.UseReverseProxy,
		&cfg.BaseURL, &cfg.IngressInterval,
		&cfg.FrontEndConfig.NewDocumentNumber, &cfg.FrontEndConfig.ServerAPIURL,
	)
	if err != nil {
		return nil, err
	}

	cfg.ID = 1
	return cfg, nil
}

// SearchDocuments performs full-text search ranked by relevance
func (p *PostgresDB) SearchDocuments(searchTerm string) ([]Document, error) {
	formattedTerm := formatSearchTerm(searchTerm)
	if formattedTerm == "" {
		// an empty tsquery is a syntax error in postgres
		return []Document{}, nil
	}

	return p.queryDocuments(
		`SELECT `+documentColumns+`
		 FROM documents
		 WHERE full_text_search @@ to_tsquery('english', $1)
		 ORDER BY ts_rank(full_text_search, to_tsquery('english', $1)) DESC`,
		formattedTerm)
}

// formatSearchTerm converts user input into tsquery syntax, lowercased with
// prefix matching on every word. Multiple words become an adjacency chain so
// phrases match in order.
func formatSearchTerm(term string) string {
	words := strings.Fields(term)
	if len(words) == 0 {
		return ""
	}
	for i := range words {
		words[i] = strings.ToLower(words[i]) + ":*"
	}
	return strings.Join(words, " <-> ")
}

// ReindexSearchDocuments rebuilds the full_text_search column for every
// document that has text, returning how many rows were touched
func (p *PostgresDB) ReindexSearchDocuments() (int, error) {
	result, err := p.db.Exec(`
		UPDATE documents
		SET full_text_search = to_tsvector('english', COALESCE(full_text, '') || ' ' || COALESCE(name, ''))
		WHERE full_text IS NOT NULL AND full_text != ''`)
	if err != nil {
		return 0, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rowsAffected), nil
}
