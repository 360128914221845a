package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	config "github.com/folium-app/folium/config"
	database "github.com/folium-app/folium/database"
	engine "github.com/folium-app/folium/engine"
)

// setupTestServer creates a test server with the full main.go route surface,
// backed by a throwaway sqlite database in a temp directory
func setupTestServer(t *testing.T) (*echo.Echo, *engine.ServerHandler) {
	t.Helper()

	tempDir := t.TempDir()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	// NewRepository creates its bookkeeping folder relative to the working
	// directory, keep everything inside the temp tree
	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("Failed to enter temp directory: %v", err)
	}
	t.Cleanup(func() { os.Chdir(oldWD) })

	injectGlobals(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn})))

	serverConfig := config.ServerConfig{
		DatabaseType:         "sqlite",
		DatabaseDbname:       filepath.Join(tempDir, "folium_api_test.db"),
		IngressPath:          filepath.Join(tempDir, "ingress"),
		DocumentPath:         filepath.Join(tempDir, "documents"),
		NewDocumentFolder:    filepath.Join(tempDir, "documents", "New"),
		NewDocumentFolderRel: "New",
		IngressDelete:        true,
		Renderer:             "fitz",
		RenderDPI:            72,
	}
	for _, dir := range []string{serverConfig.IngressPath, serverConfig.DocumentPath, serverConfig.NewDocumentFolder} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	testDB := database.NewRepository(serverConfig)
	t.Cleanup(func() { testDB.Close() })

	database.WriteConfigToDB(serverConfig, testDB)

	e := echo.New()
	e.HideBanner = true
	serverHandler := &engine.ServerHandler{
		DB:           testDB,
		Echo:         e,
		ServerConfig: serverConfig,
	}

	// Same wiring the real server uses
	e.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig))
	registerAPIRoutes(e, serverHandler)

	return e, serverHandler
}

// apiRequest serves one bodyless request against the test router.
func apiRequest(e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals a JSON object response.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to parse response: %v\nBody: %s", err, rec.Body.String())
	}
	return body
}

// waitForActiveJobs polls the active jobs endpoint until background jobs have
// drained, so tests do not tear down the database under a running job
func waitForActiveJobs(t *testing.T, e *echo.Echo) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec := apiRequest(e, http.MethodGet, "/api/jobs/active")

		var active []database.Job
		if err := json.Unmarshal(rec.Body.Bytes(), &active); err == nil && len(active) == 0 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Log("Background jobs still active after 5s")
}

func TestGetLatestDocuments(t *testing.T) {
	e, _ := setupTestServer(t)

	t.Run("empty database", func(t *testing.T) {
		rec := apiRequest(e, http.MethodGet, "/api/documents/latest")
		if rec.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", rec.Code)
		}

		body := decodeBody(t, rec)
		if _, ok := body["documents"]; !ok {
			t.Logf("Response structure: %+v", body)
			t.Fatal("Response missing 'documents' field")
		}
	})

	t.Run("pagination fields", func(t *testing.T) {
		rec := apiRequest(e, http.MethodGet, "/api/documents/latest?page=1")
		if rec.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", rec.Code)
		}

		body := decodeBody(t, rec)
		for _, field := range []string{"page", "pageSize", "totalCount", "totalPages", "hasNext", "hasPrevious"} {
			if _, ok := body[field]; !ok {
				t.Errorf("Response missing '%s' field", field)
			}
		}
	})

	t.Run("invalid page number", func(t *testing.T) {
		// Unparseable page numbers fall back to the first page
		rec := apiRequest(e, http.MethodGet, "/api/documents/latest?page=invalid")
		if rec.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", rec.Code)
		}
	})
}

func TestGetDocumentFileSystem(t *testing.T) {
	e, _ := setupTestServer(t)

	rec := apiRequest(e, http.MethodGet, "/api/documents/filesystem")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if _, ok := body["fileSystem"]; !ok {
		t.Error("Response missing 'fileSystem' field")
	}
}

// multipartFile builds a multipart body carrying a single uploaded file.
func multipartFile(t *testing.T, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("Failed to write file content: %v", err)
	}
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestUploadDocument(t *testing.T) {
	e, serverHandler := setupTestServer(t)

	testContent := []byte("This is a test document for upload testing")
	testFileName := "test_upload.txt"

	t.Run("valid file", func(t *testing.T) {
		body, contentType := multipartFile(t, testFileName, testContent)

		req := httptest.NewRequest(http.MethodPost, "/api/document/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}

		// Upload ingests synchronously, so the document should be stored
		documents, err := serverHandler.DB.GetAllDocuments()
		if err != nil {
			t.Fatalf("Failed to list documents: %v", err)
		}
		found := false
		for _, doc := range documents {
			if doc.Name == testFileName {
				found = true
				if doc.FullText != string(testContent) {
					t.Errorf("Uploaded document text mismatch: %q", doc.FullText)
				}
			}
		}
		if !found {
			t.Errorf("Uploaded document %s not found in database", testFileName)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		writer.Close()

		req := httptest.NewRequest(http.MethodPost, "/api/document/upload", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		if rec.Code == http.StatusOK {
			t.Error("Expected error status, got 200")
		}
	})
}

func TestGetDocument(t *testing.T) {
	e, _ := setupTestServer(t)

	t.Run("unknown ULID", func(t *testing.T) {
		rec := apiRequest(e, http.MethodGet, "/api/document/01ARZ3NDEKTSV4RRFFQ69G5FAV")
		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", rec.Code)
		}
	})

	t.Run("invalid ID format", func(t *testing.T) {
		rec := apiRequest(e, http.MethodGet, "/api/document/nonexistent123")
		if rec.Code != http.StatusNotFound && rec.Code != http.StatusInternalServerError {
			t.Errorf("Expected status 404 or 500, got %d", rec.Code)
		}
	})
}

func TestDeleteDocument(t *testing.T) {
	e, _ := setupTestServer(t)

	rec := apiRequest(e, http.MethodDelete, "/api/document/delete?id=nonexistent123&path=missing.pdf")
	if rec.Code != http.StatusNotFound && rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 404 or 500, got %d", rec.Code)
	}
}

func TestFolderOperations(t *testing.T) {
	e, serverHandler := setupTestServer(t)

	t.Run("create folder", func(t *testing.T) {
		rec := apiRequest(e, http.MethodPost, "/api/folder/new?folder=test_api_folder&path=")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}

		created := filepath.Join(serverHandler.ServerConfig.DocumentPath, "test_api_folder")
		if _, err := os.Stat(created); err != nil {
			t.Errorf("Folder was not created on disk: %v", err)
		}
	})

	t.Run("folder already exists", func(t *testing.T) {
		rec := apiRequest(e, http.MethodPost, "/api/folder/new?folder=test_api_folder&path=")
		if rec.Code == http.StatusOK {
			t.Error("Expected error when creating an existing folder")
		}
	})

	t.Run("non-existent folder", func(t *testing.T) {
		// Unknown folders return an empty document list
		rec := apiRequest(e, http.MethodGet, "/api/folder/nonexistent_folder")
		if rec.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", rec.Code)
		}
	})
}

func TestAdminEndpoints(t *testing.T) {
	e, _ := setupTestServer(t)

	t.Run("manual ingest", func(t *testing.T) {
		rec := apiRequest(e, http.MethodPost, "/api/ingest")
		if rec.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}

		body := decodeBody(t, rec)
		if _, ok := body["jobId"]; !ok {
			t.Error("Response missing 'jobId' field")
		}
		waitForActiveJobs(t, e)
	})

	t.Run("clean database", func(t *testing.T) {
		rec := apiRequest(e, http.MethodPost, "/api/clean")
		if rec.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}

		body := decodeBody(t, rec)
		if _, ok := body["jobId"]; !ok {
			t.Error("Response missing 'jobId' field")
		}
		if _, ok := body["message"]; !ok {
			t.Error("Response missing 'message' field")
		}
		waitForActiveJobs(t, e)
	})

	t.Run("GET on POST-only endpoint", func(t *testing.T) {
		rec := apiRequest(e, http.MethodGet, "/api/ingest")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Logf("GET on POST-only endpoint returned %d (may be handled by catch-all)", rec.Code)
		}
	})
}

func TestVersionEndpoint(t *testing.T) {
	e, _ := setupTestServer(t)

	rec := apiRequest(e, http.MethodGet, "/api/version")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	version, ok := body["version"].(string)
	if !ok || version == "" {
		t.Errorf("Expected non-empty version string, got %v", body["version"])
	}
	for _, field := range []string{"commit", "date"} {
		if _, ok := body[field]; !ok {
			t.Errorf("Response missing '%s' field", field)
		}
	}
}

func TestMoveDocument(t *testing.T) {
	e, serverHandler := setupTestServer(t)

	t.Run("no ids given", func(t *testing.T) {
		// With no ids the move is a no-op
		rec := apiRequest(e, http.MethodPatch, "/api/document/move/update?folder=new_folder")
		if rec.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", rec.Code)
		}
	})

	t.Run("updates folder", func(t *testing.T) {
		docULID, err := database.NewULID(time.Now())
		if err != nil {
			t.Fatalf("Failed to generate ULID: %v", err)
		}
		doc := &database.Document{
			Name:         "movable.txt",
			Path:         "/tmp/movable.txt",
			Folder:       "old_folder",
			Hash:         "move-hash",
			FullText:     "movable content",
			IngressTime:  time.Now(),
			DocumentType: ".txt",
			ULID:         docULID,
		}
		if err := serverHandler.DB.SaveDocument(doc); err != nil {
			t.Fatalf("Failed to save document: %v", err)
		}

		rec := apiRequest(e, http.MethodPatch, "/api/document/move/update?folder=new_folder&id="+docULID.String())
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}

		moved, err := serverHandler.DB.GetDocumentByULID(docULID.String())
		if err != nil {
			t.Fatalf("Failed to fetch moved document: %v", err)
		}
		if moved.Folder != "new_folder" {
			t.Errorf("Expected folder new_folder, got %s", moved.Folder)
		}
	})
}

func TestAPIPerformance(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping performance test in short mode")
	}

	e, _ := setupTestServer(t)

	t.Run("latest documents", func(t *testing.T) {
		iterations := 100
		start := time.Now()
		for i := 0; i < iterations; i++ {
			if rec := apiRequest(e, http.MethodGet, "/api/documents/latest"); rec.Code != http.StatusOK {
				t.Errorf("Request %d failed with status %d", i, rec.Code)
			}
		}

		elapsed := time.Since(start)
		avgTime := elapsed / time.Duration(iterations)
		t.Logf("Completed %d requests in %v (avg: %v per request)", iterations, elapsed, avgTime)
		if avgTime > 100*time.Millisecond {
			t.Logf("Warning: Average request time (%v) is higher than expected", avgTime)
		}
	})

	t.Run("search", func(t *testing.T) {
		iterations := 50
		start := time.Now()
		for i := 0; i < iterations; i++ {
			rec := apiRequest(e, http.MethodGet, "/api/search?term=test")
			if rec.Code != http.StatusOK && rec.Code != http.StatusNoContent {
				t.Errorf("Search request %d failed with status %d", i, rec.Code)
			}
		}

		elapsed := time.Since(start)
		t.Logf("Completed %d search requests in %v (avg: %v per request)", iterations, elapsed, elapsed/time.Duration(iterations))
	})
}

func TestConcurrentRequests(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping concurrent test in short mode")
	}

	e, _ := setupTestServer(t)

	concurrency := 10
	done := make(chan bool, concurrency)
	errs := make(chan error, concurrency)

	for i := 0; i < concurrency; i++ {
		go func(id int) {
			if rec := apiRequest(e, http.MethodGet, "/api/documents/latest"); rec.Code != http.StatusOK {
				errs <- fmt.Errorf("concurrent request %d failed with status %d", id, rec.Code)
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

func TestContentTypes(t *testing.T) {
	e, _ := setupTestServer(t)

	endpoints := map[string]string{
		"/api/documents/latest":     "application/json",
		"/api/documents/filesystem": "application/json",
		"/api/about":                "application/json",
	}

	for endpoint, expectedType := range endpoints {
		t.Run(endpoint, func(t *testing.T) {
			rec := apiRequest(e, http.MethodGet, endpoint)
			contentType := rec.Header().Get("Content-Type")
			if !strings.Contains(contentType, expectedType) {
				t.Errorf("Expected Content-Type %s, got %s", expectedType, contentType)
			}
		})
	}
}

func TestErrorHandling(t *testing.T) {
	e, _ := setupTestServer(t)

	// Oversized IDs must not crash the router
	rec := apiRequest(e, http.MethodGet, "/api/document/"+strings.Repeat("a", 1000))
	if rec.Code == http.StatusOK {
		t.Error("Should not return OK for invalid long ID")
	}
	t.Logf("Long ID returned status %d", rec.Code)
}

func TestGetAboutInfo(t *testing.T) {
	e, serverHandler := setupTestServer(t)

	t.Run("required fields", func(t *testing.T) {
		rec := apiRequest(e, http.MethodGet, "/api/about")
		if rec.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}

		aboutInfo := decodeBody(t, rec)
		for _, field := range []string{"version", "ocrConfigured", "ocrPath", "renderer", "nativeRenderer", "databaseType", "ingressPath", "documentPath"} {
			if _, ok := aboutInfo[field]; !ok {
				t.Errorf("Response missing required field: %s", field)
			}
		}

		if _, ok := aboutInfo["version"].(string); !ok {
			t.Errorf("version should be a string, got %T", aboutInfo["version"])
		}
		ocrConfigured, ok := aboutInfo["ocrConfigured"].(bool)
		if !ok {
			t.Fatalf("ocrConfigured should be a boolean, got %T", aboutInfo["ocrConfigured"])
		}
		if want := serverHandler.ServerConfig.TesseractPath != ""; ocrConfigured != want {
			t.Errorf("OCR configured mismatch: got %v, expected %v", ocrConfigured, want)
		}
		if dbType, _ := aboutInfo["databaseType"].(string); dbType != "sqlite" {
			t.Errorf("Expected databaseType sqlite, got %v", aboutInfo["databaseType"])
		}
	})

	t.Run("responses are stable", func(t *testing.T) {
		var responses []string
		for i := 0; i < 3; i++ {
			rec := apiRequest(e, http.MethodGet, "/api/about")
			if rec.Code != http.StatusOK {
				t.Errorf("Request %d failed with status %d", i+1, rec.Code)
				continue
			}
			responses = append(responses, rec.Body.String())
		}

		if len(responses) < 2 {
			t.Fatal("Not enough successful responses to compare")
		}
		for i := 1; i < len(responses); i++ {
			if responses[i] != responses[0] {
				t.Errorf("Response %d differs from first response", i+1)
			}
		}
	})
}
