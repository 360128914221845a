package database

import (
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestPostgresFullTextSearch(t *testing.T) {
	requirePostgres(t)
	Logger = slog.New(slog.NewTextHandler(os.Stdout, nil))

	postgresDB, err := SetupPostgresDatabase("")
	if err != nil {
		t.Fatalf("Failed to setup ephemeral database: %v", err)
	}
	defer postgresDB.Close()

	seeds := []struct {
		name    string
		content string
	}{
		{"Invoice_2024.pdf", "This is a test invoice for January 2024"},
		{"Receipt_March.pdf", "Receipt for testing purposes"},
		{"Invoice_Q1.pdf", "First quarter invoice summary report"},
		{"Random_Doc.pdf", "This document contains random text about nothing related"},
		{"Test_Report.pdf", "Testing report with invoice data included"},
	}
	for i, seed := range seeds {
		docULID, err := NewULID(time.Now().Add(time.Duration(i) * time.Millisecond))
		if err != nil {
			t.Fatalf("Failed to mint ULID: %v", err)
		}
		doc := &Document{
			Name:         seed.name,
			Path:         "/test/" + seed.name,
			Folder:       "/test",
			Hash:         fmt.Sprintf("hash%d", i),
			FullText:     seed.content,
			IngressTime:  time.Now(),
			DocumentType: ".pdf",
			ULID:         docULID,
		}
		if err := postgresDB.SaveDocument(doc); err != nil {
			t.Fatalf("Failed to save document %s: %v", seed.name, err)
		}
	}

	searches := []struct {
		name      string
		term      string
		wantCount int // -1 when only membership is checked
		wantDoc   string
	}{
		{"single word", "invoice", 3, ""},
		{"both words must match", "test invoice", -1, "Invoice_2024.pdf"},
		{"prefix matching", "invoi", 3, ""},
		{"unknown term", "xyz123nonexistent", 0, ""},
		{"empty term", "", 0, ""},
	}
	for _, tc := range searches {
		t.Run(tc.name, func(t *testing.T) {
			results, err := postgresDB.SearchDocuments(tc.term)
			if err != nil {
				t.Fatalf("SearchDocuments(%q) failed: %v", tc.term, err)
			}

			if tc.wantCount >= 0 && len(results) != tc.wantCount {
				t.Errorf("SearchDocuments(%q) returned %d documents, want %d", tc.term, len(results), tc.wantCount)
				for _, r := range results {
					t.Logf("  found %s: %s", r.Name, r.FullText)
				}
			}

			if tc.wantDoc != "" {
				if len(results) == 0 {
					t.Fatalf("SearchDocuments(%q) returned nothing, want %s among the results", tc.term, tc.wantDoc)
				}
				found := false
				for _, r := range results {
					if r.Name == tc.wantDoc {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("SearchDocuments(%q) results are missing %s", tc.term, tc.wantDoc)
				}
			}
		})
	}
}
