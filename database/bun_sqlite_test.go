package database

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/folium-app/folium/config"
	"github.com/oklog/ulid/v2"
)

// newSQLiteRepo opens an in-memory sqlite repository. Migrations run as
// part of NewRepository, so the schema is ready when this returns.
func newSQLiteRepo(t *testing.T) *BunDB {
	t.Helper()
	if Logger == nil {
		Logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
	db := NewRepository(config.ServerConfig{
		DatabaseType:   "sqlite",
		DatabaseDbname: ":memory:",
	})
	t.Cleanup(func() { db.Close() })
	return db
}

func mustSaveDocument(t *testing.T, db *BunDB, doc *Document) {
	t.Helper()
	if err := db.SaveDocument(doc); err != nil {
		t.Fatalf("SaveDocument(%s): %v", doc.Name, err)
	}
}

func TestBunSQLiteDatabase(t *testing.T) {
	db := newSQLiteRepo(t)

	t.Run("document round trip", func(t *testing.T) {
		doc := &Document{
			Name:         "test.pdf",
			Path:         "/tmp/test.pdf",
			IngressTime:  time.Now(),
			Folder:       "/tmp",
			Hash:         "test123hash",
			ULID:         ulid.Make(),
			DocumentType: ".pdf",
			FullText:     "This is a test document with some content",
			PageCount:    4,
			Outline:      `[{"title":"Introduction","page":0}]`,
			URL:          "http://example.com/test.pdf",
		}
		mustSaveDocument(t, db, doc)
		if doc.ID == 0 {
			t.Fatal("SaveDocument left ID at zero")
		}

		byID, err := db.GetDocumentByID(doc.ID)
		if err != nil {
			t.Fatalf("GetDocumentByID: %v", err)
		}
		if byID.Name != doc.Name {
			t.Errorf("Name = %q, want %q", byID.Name, doc.Name)
		}
		if byID.PageCount != doc.PageCount {
			t.Errorf("PageCount = %d, want %d", byID.PageCount, doc.PageCount)
		}
		if byID.Outline != doc.Outline {
			t.Errorf("Outline = %q, want %q", byID.Outline, doc.Outline)
		}

		byULID, err := db.GetDocumentByULID(doc.ULID.String())
		if err != nil {
			t.Fatalf("GetDocumentByULID: %v", err)
		}
		if byULID.ID != doc.ID {
			t.Errorf("lookup by ULID returned ID %d, want %d", byULID.ID, doc.ID)
		}
	})

	t.Run("page data update", func(t *testing.T) {
		doc := &Document{
			Name:         "pagedata.pdf",
			Path:         "/tmp/pagedata.pdf",
			IngressTime:  time.Now(),
			Folder:       "/tmp",
			Hash:         "pagedata123",
			ULID:         ulid.Make(),
			DocumentType: ".pdf",
			FullText:     "page data content",
			PageCount:    0,
		}
		mustSaveDocument(t, db, doc)

		outline := `[{"title":"Chapter 1","page":0}]`
		if err := db.UpdateDocumentPageData(doc.ULID.String(), 12, outline); err != nil {
			t.Fatalf("UpdateDocumentPageData: %v", err)
		}

		got, err := db.GetDocumentByULID(doc.ULID.String())
		if err != nil {
			t.Fatalf("GetDocumentByULID: %v", err)
		}
		if got.PageCount != 12 {
			t.Errorf("PageCount = %d, want 12", got.PageCount)
		}
		if got.Outline != outline {
			t.Errorf("Outline = %q, want %q", got.Outline, outline)
		}
	})

	t.Run("config round trip", func(t *testing.T) {
		cfg := &config.ServerConfig{
			ListenAddrPort:  "9000",
			IngressPath:     "/tmp/ingress",
			DocumentPath:    "/tmp/docs",
			IngressInterval: 15,
			Renderer:        "pdfium",
			RenderDPI:       200,
		}
		if err := db.SaveConfig(cfg); err != nil {
			t.Fatalf("SaveConfig: %v", err)
		}

		got, err := db.GetConfig()
		if err != nil {
			t.Fatalf("GetConfig: %v", err)
		}
		if got.ListenAddrPort != cfg.ListenAddrPort {
			t.Errorf("ListenAddrPort = %q, want %q", got.ListenAddrPort, cfg.ListenAddrPort)
		}
		if got.IngressInterval != cfg.IngressInterval {
			t.Errorf("IngressInterval = %d, want %d", got.IngressInterval, cfg.IngressInterval)
		}
		if got.Renderer != "pdfium" {
			t.Errorf("Renderer = %q, want %q", got.Renderer, "pdfium")
		}
		if got.RenderDPI != 200 {
			t.Errorf("RenderDPI = %d, want 200", got.RenderDPI)
		}
	})

	t.Run("job lifecycle", func(t *testing.T) {
		job, err := db.CreateJob(JobTypeIngestion, "Test ingestion job")
		if err != nil {
			t.Fatalf("CreateJob: %v", err)
		}
		if job.ID.String() == "" {
			t.Fatal("CreateJob left the job ID empty")
		}

		created, err := db.GetJob(job.ID)
		if err != nil {
			t.Fatalf("GetJob: %v", err)
		}
		if created.Message != job.Message {
			t.Errorf("Message = %q, want %q", created.Message, job.Message)
		}

		if err := db.UpdateJobProgress(job.ID, 50, "Processing files"); err != nil {
			t.Fatalf("UpdateJobProgress: %v", err)
		}
		if err := db.CompleteJob(job.ID, `{"processed": 10}`); err != nil {
			t.Fatalf("CompleteJob: %v", err)
		}

		done, err := db.GetJob(job.ID)
		if err != nil {
			t.Fatalf("GetJob after complete: %v", err)
		}
		if done.Status != JobStatusCompleted {
			t.Errorf("Status = %q, want %q", done.Status, JobStatusCompleted)
		}
		if done.Progress != 100 {
			t.Errorf("Progress = %d, want 100", done.Progress)
		}
	})

	t.Run("word frequencies", func(t *testing.T) {
		doc := &Document{
			Name:         "wordtest.pdf",
			Path:         "/tmp/wordtest.pdf",
			IngressTime:  time.Now(),
			Folder:       "/tmp",
			Hash:         "wordtest123",
			ULID:         ulid.Make(),
			DocumentType: ".pdf",
			FullText:     "test word test word test another word",
		}
		mustSaveDocument(t, db, doc)

		if err := db.UpdateWordFrequencies(doc.ULID.String()); err != nil {
			t.Fatalf("UpdateWordFrequencies: %v", err)
		}

		words, err := db.GetTopWords(10)
		if err != nil {
			t.Fatalf("GetTopWords: %v", err)
		}
		if len(words) == 0 {
			t.Fatal("GetTopWords returned nothing")
		}
		// "test" and "word" both appear three times, ties order alphabetically
		if words[0].Word != "test" {
			t.Errorf("top word = %q, want %q", words[0].Word, "test")
		}
		if words[0].Frequency < 3 {
			t.Errorf("top word frequency = %d, want at least 3", words[0].Frequency)
		}

		meta, err := db.GetWordCloudMetadata()
		if err != nil {
			t.Fatalf("GetWordCloudMetadata: %v", err)
		}
		if meta.Version < 1 {
			t.Errorf("metadata version = %d, want >= 1", meta.Version)
		}
	})

	t.Run("substring search", func(t *testing.T) {
		doc := &Document{
			Name:         "searchtest.pdf",
			Path:         "/tmp/searchtest.pdf",
			IngressTime:  time.Now(),
			Folder:       "/tmp",
			Hash:         "searchtest123",
			ULID:         ulid.Make(),
			DocumentType: ".pdf",
			FullText:     "This document contains searchable content about databases",
		}
		mustSaveDocument(t, db, doc)

		// sqlite has no tsquery support, the fallback is a LIKE match
		// so the singular term still finds "databases"
		results, err := db.SearchDocuments("database")
		if err != nil {
			t.Fatalf("SearchDocuments: %v", err)
		}
		found := false
		for _, r := range results {
			if r.Name == doc.Name {
				found = true
			}
		}
		if !found {
			t.Errorf("search for %q did not return %s (got %d results)", "database", doc.Name, len(results))
		}
	})
}
