package database

import (
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestCountWords(t *testing.T) {
	Logger = slog.New(slog.NewTextHandler(os.Stdout, nil))

	t.Run("counts repeated words", func(t *testing.T) {
		frequencies := CountWords("Ledger entry posted. The ledger balances. Check the ledger monthly.")
		if frequencies["ledger"] != 3 {
			t.Errorf("ledger count = %d, want 3", frequencies["ledger"])
		}
		if frequencies["posted"] != 1 {
			t.Errorf("posted count = %d, want 1", frequencies["posted"])
		}
	})

	t.Run("folds case", func(t *testing.T) {
		frequencies := CountWords("Archive ARCHIVE archive")
		if frequencies["archive"] != 3 {
			t.Errorf("archive count = %d, want 3", frequencies["archive"])
		}
	})

	t.Run("drops stop words", func(t *testing.T) {
		frequencies := CountWords("the report and the summary")
		for _, stop := range []string{"the", "and"} {
			if _, exists := frequencies[stop]; exists {
				t.Errorf("stop word %q leaked into the counts", stop)
			}
		}
		if frequencies["report"] != 1 || frequencies["summary"] != 1 {
			t.Errorf("content words missing from counts: %v", frequencies)
		}
	})

	t.Run("drops bare numbers", func(t *testing.T) {
		frequencies := CountWords("Scan 123 pages 456")
		if _, exists := frequencies["123"]; exists {
			t.Error("bare number leaked into the counts")
		}
		if frequencies["scan"] != 1 || frequencies["pages"] != 1 {
			t.Errorf("content words missing from counts: %v", frequencies)
		}
	})

	t.Run("keeps hyphenated words whole", func(t *testing.T) {
		frequencies := CountWords("full-text search with well-known terms")
		if frequencies["full-text"] != 1 {
			t.Errorf("full-text count = %d, want 1", frequencies["full-text"])
		}
		if frequencies["well-known"] != 1 {
			t.Errorf("well-known count = %d, want 1", frequencies["well-known"])
		}
	})

	t.Run("drops words under three characters", func(t *testing.T) {
		frequencies := CountWords("a to be or it in on at by")
		if len(frequencies) != 0 {
			t.Errorf("got %d words from short-word input, want 0", len(frequencies))
		}
	})
}

func TestWordCloudRecalculateEmptyDatabase(t *testing.T) {
	requirePostgres(t)
	Logger = slog.New(slog.NewTextHandler(os.Stdout, nil))

	postgresDB, err := SetupPostgresDatabase("")
	if err != nil {
		t.Fatalf("Failed to setup ephemeral database: %v", err)
	}
	defer postgresDB.Close()

	if err := postgresDB.RecalculateAllWordFrequencies(); err != nil {
		t.Fatalf("RecalculateAllWordFrequencies failed: %v", err)
	}

	metadata, err := postgresDB.GetWordCloudMetadata()
	if err != nil {
		t.Fatalf("GetWordCloudMetadata failed: %v", err)
	}
	if metadata.Version < 1 {
		t.Errorf("Version = %d after recalculation, want >= 1", metadata.Version)
	}

	words, err := postgresDB.GetTopWords(10)
	if err != nil {
		t.Fatalf("GetTopWords failed: %v", err)
	}
	if len(words) != 0 {
		t.Errorf("Got %d words from an empty database, want 0", len(words))
	}
}

func TestWordCloudCountsAcrossDocuments(t *testing.T) {
	requirePostgres(t)
	Logger = slog.New(slog.NewTextHandler(os.Stdout, nil))

	postgresDB, err := SetupPostgresDatabase("")
	if err != nil {
		t.Fatalf("Failed to setup ephemeral database: %v", err)
	}
	defer postgresDB.Close()

	// Filenames count toward the cloud too, except that underscores glue
	// name fragments together so Receipt_2023 contributes nothing
	fixtures := []struct {
		name    string
		content string
	}{
		{"Lease.pdf", "Lease agreement for the flat. The lease starts in June."},
		{"Manual.txt", "Printer manual. Read the manual before use."},
		{"Receipt_2023.pdf", "Receipt for the workshop fee. Keep this receipt."},
	}
	for i, fixture := range fixtures {
		docULID, err := NewULID(time.Now().Add(time.Duration(i) * time.Millisecond))
		if err != nil {
			t.Fatalf("Failed to mint ULID: %v", err)
		}
		doc := &Document{
			Name:         fixture.name,
			Path:         "/test/" + fixture.name,
			Folder:       "/test",
			Hash:         fmt.Sprintf("hash%d", i),
			FullText:     fixture.content,
			IngressTime:  time.Now(),
			DocumentType: ".pdf",
			ULID:         docULID,
		}
		if err := postgresDB.SaveDocument(doc); err != nil {
			t.Fatalf("Failed to save document: %v", err)
		}
	}

	if err := postgresDB.RecalculateAllWordFrequencies(); err != nil {
		t.Fatalf("RecalculateAllWordFrequencies failed: %v", err)
	}

	words, err := postgresDB.GetTopWords(50)
	if err != nil {
		t.Fatalf("GetTopWords failed: %v", err)
	}
	counts := make(map[string]int)
	for _, w := range words {
		counts[w.Word] = w.Frequency
	}

	want := map[string]int{
		"lease":   3, // twice in content, once from the filename
		"manual":  3,
		"receipt": 2, // underscore in the filename keeps it out of the tokens
	}
	for word, expected := range want {
		if counts[word] != expected {
			t.Errorf("%q count = %d, want %d", word, counts[word], expected)
		}
	}
	for _, stop := range []string{"the", "for", "this"} {
		if _, exists := counts[stop]; exists {
			t.Errorf("stop word %q present in word cloud", stop)
		}
	}
}
