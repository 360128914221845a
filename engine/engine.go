package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/folium-app/folium/config"
	"github.com/folium-app/folium/database"
	"github.com/oklog/ulid/v2"
)

// Logger is shared across the engine package, main injects it at startup
var Logger *slog.Logger

// ErrDuplicate marks a re-ingested file that was skipped on its hash
var ErrDuplicate = errors.New("duplicate document")

// scanIngressFiles lists every regular file under the ingress folder
func scanIngressFiles(root string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() && path != root {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// runIngressScan is the scheduled sweep of the ingress folder. It reloads
// the config from the database each run so settings changes apply without
// a restart.
func (h *ServerHandler) runIngressScan(db database.Repository) {
	defer func() {
		if r := recover(); r != nil {
			Logger.Error("Recovered from panic during ingress sweep", "panic", r)
		}
	}()

	serverConfig, err := database.FetchConfigFromDB(db)
	if err != nil {
		Logger.Error("Could not load config from database", "error", err)
	}
	Logger.Info("Sweeping ingress folder", "path", serverConfig.IngressPath)

	files, err := scanIngressFiles(serverConfig.IngressPath)
	if err != nil {
		Logger.Error("Ingress folder scan failed", "error", err)
	}
	for _, filePath := range files {
		Logger.Debug("Picked up ingress file", "filePath", filePath)
		h.ingressDocument(filePath, "ingress")
	}
	pruneEmptyFolders(serverConfig.IngressPath)
}

// runIngressJob is the manually triggered variant of the ingress sweep. It
// reports per-file progress onto the given job and uses the step-based
// pipeline so each file's record, move and extraction are tracked.
func (h *ServerHandler) runIngressJob(db database.Repository, jobID ulid.ULID) {
	defer func() {
		if r := recover(); r != nil {
			Logger.Error("Recovered from panic during tracked ingestion", "panic", r, "jobID", jobID)
			db.UpdateJobError(jobID, fmt.Sprintf("Panic: %v", r))
		}
	}()

	if err := db.UpdateJobStatus(jobID, database.JobStatusRunning, "Scanning ingress folder"); err != nil {
		Logger.Error("Could not mark job as running", "error", err)
	}

	serverConfig, err := database.FetchConfigFromDB(db)
	if err != nil {
		Logger.Error("Could not load config from database", "error", err)
		db.UpdateJobError(jobID, fmt.Sprintf("Failed to fetch config: %v", err))
		return
	}
	Logger.Info("Running tracked ingestion", "path", serverConfig.IngressPath, "jobID", jobID)

	files, err := scanIngressFiles(serverConfig.IngressPath)
	if err != nil {
		Logger.Error("Ingress folder scan failed", "error", err)
		db.UpdateJobError(jobID, fmt.Sprintf("Scan failed: %v", err))
		return
	}

	total := len(files)
	if total == 0 {
		Logger.Info("Ingress folder is empty, nothing to ingest")
		db.CompleteJob(jobID, `{"filesProcessed": 0, "message": "No files found"}`)
		return
	}
	Logger.Info("Ingress scan found files", "count", total)

	var processed, failed, duplicates int
	for i, filePath := range files {
		Logger.Info("Ingesting file", "file", filepath.Base(filePath), "number", i+1, "total", total)

		err := h.IngestDocumentWithSteps(filePath, db, jobID, i, total)
		switch {
		case errors.Is(err, ErrDuplicate):
			Logger.Info("Skipping duplicate document", "filePath", filePath)
			duplicates++
			processed++ // a skipped duplicate is a handled file
		case err != nil:
			Logger.Error("Document ingestion failed", "filePath", filePath, "error", err)
			failed++
		default:
			processed++
		}
	}

	pruneEmptyFolders(serverConfig.IngressPath)

	db.UpdateJobProgress(jobID, 95, "Updating word cloud")
	Logger.Info("Refreshing word cloud after ingestion")
	if err := db.RecalculateAllWordFrequencies(); err != nil {
		Logger.Error("Word cloud refresh failed", "error", err)
	}

	result := fmt.Sprintf(`{"filesProcessed": %d, "filesTotal": %d, "errors": %d, "duplicates": %d}`, processed, total, failed, duplicates)
	if err := db.CompleteJob(jobID, result); err != nil {
		Logger.Error("Could not mark job complete", "error", err)
	}
	Logger.Info("Tracked ingestion finished", "jobID", jobID, "processed", processed, "total", total, "errors", failed, "duplicates", duplicates)
}

// ingressDocument runs the legacy single-pass ingestion used by the
// scheduled sweep and by uploads, where no job row exists to report on.
// source is either "ingress" or "upload" and controls source file handling.
func (h *ServerHandler) ingressDocument(filePath string, source string) {
	// One bad document must not crash the whole ingress job
	defer func() {
		if r := recover(); r != nil {
			Logger.Error("Panic recovered while processing document", "filePath", filePath, "panic", r)
		}
	}()

	fullText, err := h.extractText(filePath)
	if err != nil {
		Logger.Error("Text extraction failed on file so not added to database", "filePath", filePath, "error", err)
		return
	}
	if err := h.storeDocument(filePath, fullText, source); err != nil {
		Logger.Error("Unable to add document to database", "filePath", filePath, "error", err)
	}
}

func (h *ServerHandler) storeDocument(filePath string, fullText string, source string) error {
	// Page data has to be read before the file moves out of ingress
	pageCount, outlineJSON := h.documentPageData(filePath)

	document, err := database.AddNewDocument(filePath, fullText, pageCount, outlineJSON, h.DB)
	if err != nil {
		Logger.Error("Failed to add document to database", "filePath", filePath, "error", err)
		return err
	}

	// Register a direct view route so the document is live immediately
	documentURL := "/document/view/" + document.ULID.String()
	h.Echo.File(documentURL, document.Path)
	if _, err := database.UpdateDocumentField(document.ULID.String(), "URL", documentURL, h.DB); err != nil {
		Logger.Error("Unable to update document URL", "ulid", document.ULID.String(), "error", err)
		return err
	}

	if err := copyIntoDocumentStore(filePath, h.ServerConfig); err != nil {
		Logger.Error("Error moving ingress file to new location", "filePath", filePath, "error", err)
		return err
	}
	// Uploads were written straight into ingress by us, only swept files
	// have an original to dispose of
	if source == "ingress" {
		if err := disposeIngressSource(filePath, h.ServerConfig); err != nil {
			return err
		}
	}
	Logger.Info("Added file to the database", "filePath", filePath)
	return nil
}

// pruneEmptyFolders removes directories left empty after their contents
// were ingested. The root itself always stays.
func pruneEmptyFolders(root string) {
	Logger.Info("Running cleanup on ingress folder", "path", root)
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == root || !info.IsDir() {
			return nil
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			Logger.Debug("Removing Empty Folder", "path", path)
			os.RemoveAll(path)
		}
		return nil
	})
	if err != nil {
		Logger.Error("Error cleaning ingress folder", "path", root, "error", err)
	}
}

// DeleteFile deletes a folder (or file) and everything in that folder
func DeleteFile(filePath string) error {
	if err := os.RemoveAll(filePath); err != nil {
		Logger.Error("Error deleting File/Folder", "error", err)
		return err
	}
	return nil
}

// copyIntoDocumentStore writes a copy of the file into document storage.
// With IngressPreserve set the file keeps its relative path under the
// document root, otherwise it lands flat in the new-documents folder.
func copyIntoDocumentStore(filePath string, serverConfig config.ServerConfig) error {
	srcFile, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	var newFilePath string
	if serverConfig.IngressPreserve {
		relativePath, err := filepath.Rel(serverConfig.IngressPath, filePath)
		if err != nil {
			return err
		}
		newFilePath = filepath.Join(serverConfig.DocumentPath, relativePath)
		os.MkdirAll(filepath.Dir(newFilePath), os.ModePerm)
	} else {
		newFilePath = filepath.ToSlash(serverConfig.NewDocumentFolder + "/" + filepath.Base(filePath))
	}
	return os.WriteFile(newFilePath, srcFile, os.ModePerm)
}

// disposeIngressSource removes or archives the original ingress file after
// a successful copy, per the IngressDelete setting.
func disposeIngressSource(fileName string, serverConfig config.ServerConfig) error {
	if serverConfig.IngressDelete {
		return os.Remove(fileName)
	}
	newFile := filepath.FromSlash(serverConfig.IngressMoveFolder + "/" + filepath.Base(fileName))
	return os.Rename(fileName, newFile)
}
