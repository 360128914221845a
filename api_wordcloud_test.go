package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	database "github.com/folium-app/folium/database"
	engine "github.com/folium-app/folium/engine"
)

// getJSON fires a GET at the test server, requires a 200 and decodes the
// JSON object it returns.
func getJSON(t *testing.T, e *echo.Echo, path string) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET %s returned %d: %s", path, rec.Code, rec.Body.String())
	}
	var response map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("GET %s returned unparseable body: %v\n%s", path, err, rec.Body.String())
	}
	return response
}

// seedWordCloudDocs stores five documents with known word frequencies and
// rebuilds the cloud over them. "invoice" and "contract" each appear four
// times, "services" five times across documents.
func seedWordCloudDocs(t *testing.T, h *engine.ServerHandler) int {
	t.Helper()
	tempDir := t.TempDir()

	docs := []struct {
		name    string
		content string
	}{
		{"Invoice_2024.pdf", "This is an invoice for services. Invoice total is $1500. Please pay invoice promptly. Invoice services included."},
		{"Contract_Agreement.pdf", "Contract agreement for services. This contract outlines terms. Contract is binding. Services contract valid."},
		{"Report_Annual.pdf", "Annual report showing performance. Report includes data. Financial report summary."},
		{"Meeting_Notes.txt", "Meeting notes for quarterly review. Notes from meeting discussion."},
		{"Proposal_Project.pdf", "Project proposal for new services. Proposal outlines scope."},
	}

	for i, doc := range docs {
		docULID, _ := database.NewULID(time.Now().Add(time.Duration(i) * time.Millisecond))

		filePath := filepath.Join(tempDir, doc.name)
		if err := os.WriteFile(filePath, []byte(doc.content), 0644); err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}

		row := &database.Document{
			Name:         doc.name,
			Path:         filePath,
			Folder:       "Test",
			Hash:         fmt.Sprintf("hash_%d", i),
			FullText:     doc.content,
			IngressTime:  time.Now(),
			DocumentType: filepath.Ext(doc.name),
			ULID:         docULID,
			URL:          fmt.Sprintf("/document/view/%s", docULID.String()),
		}
		if err := h.DB.SaveDocument(row); err != nil {
			t.Fatalf("Failed to save document %s: %v", doc.name, err)
		}
	}

	if err := h.DB.RecalculateAllWordFrequencies(); err != nil {
		t.Fatalf("Failed to recalculate word frequencies: %v", err)
	}
	return len(docs)
}

func TestWordCloudAPI(t *testing.T) {
	e, serverHandler := setupTestServer(t)
	docCount := seedWordCloudDocs(t, serverHandler)

	t.Run("default limit", func(t *testing.T) {
		response := getJSON(t, e, "/api/wordcloud")

		for _, field := range []string{"words", "metadata", "count"} {
			if _, ok := response[field]; !ok {
				t.Errorf("Response missing '%s' field", field)
			}
		}

		words, ok := response["words"].([]any)
		if !ok {
			t.Fatalf("Words is not an array: %T", response["words"])
		}
		if len(words) == 0 {
			t.Fatal("Expected some words in response")
		}

		first, ok := words[0].(map[string]any)
		if !ok {
			t.Fatalf("Word is not an object: %T", words[0])
		}
		if _, ok := first["word"]; !ok {
			t.Error("Word object missing 'word' field")
		}
		if _, ok := first["frequency"]; !ok {
			t.Error("Word object missing 'frequency' field")
		}

		t.Logf("Total unique words: %d", len(words))
	})

	t.Run("limit parameter", func(t *testing.T) {
		response := getJSON(t, e, "/api/wordcloud?limit=5")
		if words := response["words"].([]any); len(words) > 5 {
			t.Errorf("Expected at most 5 words, got %d", len(words))
		}
	})

	t.Run("limit capped at 500", func(t *testing.T) {
		response := getJSON(t, e, "/api/wordcloud?limit=1000")
		if words := response["words"].([]any); len(words) > 500 {
			t.Errorf("Expected at most 500 words (cap), got %d", len(words))
		}
	})

	t.Run("invalid limit falls back to default", func(t *testing.T) {
		getJSON(t, e, "/api/wordcloud?limit=invalid")
	})

	t.Run("metadata shape", func(t *testing.T) {
		response := getJSON(t, e, "/api/wordcloud")

		metadata, ok := response["metadata"].(map[string]any)
		if !ok {
			t.Fatalf("Metadata is not an object: %T", response["metadata"])
		}
		for _, field := range []string{"totalDocsProcessed", "totalWordsIndexed", "version"} {
			if _, ok := metadata[field]; !ok {
				t.Errorf("Metadata missing field: %s", field)
			}
		}
		if docs, _ := metadata["totalDocsProcessed"].(float64); docs != float64(docCount) {
			t.Errorf("Expected totalDocsProcessed %d, got %v", docCount, metadata["totalDocsProcessed"])
		}
	})

	t.Run("seeded frequencies", func(t *testing.T) {
		response := getJSON(t, e, "/api/wordcloud?limit=50")

		frequencies := make(map[string]float64)
		for _, w := range response["words"].([]any) {
			word := w.(map[string]any)
			frequencies[word["word"].(string)] = word["frequency"].(float64)
		}

		for _, expect := range []string{"invoice", "contract", "services"} {
			freq, ok := frequencies[expect]
			if !ok {
				t.Errorf("Expected %q in word cloud", expect)
				continue
			}
			if freq < 3 {
				t.Errorf("Expected %q to appear at least 3 times, got %.0f", expect, freq)
			}
		}

		for _, stopWord := range []string{"this", "is", "for", "the", "and"} {
			if _, ok := frequencies[stopWord]; ok {
				t.Errorf("Stop word %q should not be in word cloud", stopWord)
			}
		}
	})

	t.Run("sorted by frequency", func(t *testing.T) {
		response := getJSON(t, e, "/api/wordcloud?limit=20")

		lastFreq := float64(999999)
		for i, w := range response["words"].([]any) {
			freq := w.(map[string]any)["frequency"].(float64)
			if freq > lastFreq {
				t.Errorf("Words not sorted by frequency at index %d: %.0f > %.0f", i, freq, lastFreq)
			}
			lastFreq = freq
		}
	})

	t.Run("recalculate endpoint", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/wordcloud/recalculate", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var response map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to parse response: %v", err)
		}
		if _, ok := response["message"]; !ok {
			t.Error("Response missing 'message' field")
		}
		if response["status"] != "processing" {
			t.Errorf("Expected status 'processing', got '%s'", response["status"])
		}

		// Recalculation runs in the background, give it a moment to finish
		time.Sleep(500 * time.Millisecond)
		getJSON(t, e, "/api/wordcloud")
	})

	t.Run("content type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/wordcloud", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		contentType := rec.Header().Get("Content-Type")
		if !strings.Contains(contentType, "application/json") {
			t.Errorf("Expected Content-Type to contain 'application/json', got '%s'", contentType)
		}
	})
}

func TestWordCloudAPIEdgeCases(t *testing.T) {
	e, _ := setupTestServer(t)

	t.Run("empty database", func(t *testing.T) {
		response := getJSON(t, e, "/api/wordcloud")

		// Words must marshal as [] rather than null
		if response["words"] == nil {
			t.Error("Expected words to be an empty array [], got null")
		} else if words := response["words"].([]any); len(words) != 0 {
			t.Errorf("Expected 0 words in empty database, got %d", len(words))
		}

		if response["metadata"] == nil {
			t.Error("Expected metadata to be an object, got null")
		} else {
			metadata := response["metadata"].(map[string]any)
			if metadata["totalDocsProcessed"] != float64(0) {
				t.Errorf("Expected totalDocsProcessed to be 0, got %v", metadata["totalDocsProcessed"])
			}
		}

		if response["count"] != float64(0) {
			t.Errorf("Expected count to be 0, got %v", response["count"])
		}
	})

	t.Run("zero limit", func(t *testing.T) {
		getJSON(t, e, "/api/wordcloud?limit=0")
	})

	t.Run("negative limit", func(t *testing.T) {
		getJSON(t, e, "/api/wordcloud?limit=-10")
	})

	t.Run("GET on the recalculate endpoint", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/wordcloud/recalculate", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed && rec.Code != http.StatusNotFound {
			t.Logf("GET on POST endpoint returned %d (may be handled by catch-all)", rec.Code)
		}
	})
}

func TestWordCloudAPIConcurrency(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping concurrency test in short mode")
	}

	e, _ := setupTestServer(t)

	concurrency := 20
	done := make(chan bool, concurrency)
	errs := make(chan error, concurrency)

	for i := 0; i < concurrency; i++ {
		go func(id int) {
			req := httptest.NewRequest(http.MethodGet, "/api/wordcloud", nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				errs <- fmt.Errorf("request %d failed with status %d", id, rec.Code)
			}
			done <- true
		}(i)
	}

	for i := 0; i < concurrency; i++ {
		<-done
	}
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
