package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/folium-app/folium/database"
	"github.com/oklog/ulid/v2"
)

// documentExtensions are the file types ingestion knows how to process.
// Anything else found in document storage is left alone.
var documentExtensions = []string{".pdf", ".txt", ".rtf", ".doc", ".docx", ".odf", ".tiff", ".jpg", ".jpeg", ".png"}

func isDocumentFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, known := range documentExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

// runCleanupJob reconciles the database with the filesystem: rows whose file
// vanished are deleted, and files with no row are moved back to ingress so
// the next scan re-processes them.
func (h *ServerHandler) runCleanupJob(db database.Repository, jobID ulid.ULID) {
	defer func() {
		if r := recover(); r != nil {
			Logger.Error("Panic recovered in cleanup job", "panic", r, "jobID", jobID)
			db.UpdateJobError(jobID, fmt.Sprintf("Panic: %v", r))
		}
	}()

	db.UpdateJobStatus(jobID, database.JobStatusRunning, "Fetching documents from database")

	documentsPtr, err := database.FetchAllDocuments(db)
	if err != nil {
		Logger.Error("Failed to fetch documents for cleanup", "error", err)
		db.UpdateJobError(jobID, fmt.Sprintf("Failed to fetch documents: %v", err))
		return
	}
	if documentsPtr == nil {
		db.CompleteJob(jobID, `{"scanned": 0, "deleted": 0, "moved": 0}`)
		return
	}

	documents := *documentsPtr
	totalDocs := len(documents)
	deletedCount := 0

	Logger.Info("Starting database cleanup", "total_documents", totalDocs)
	db.UpdateJobProgress(jobID, 10, fmt.Sprintf("Checking %d documents", totalDocs))

	for i, doc := range documents {
		if doc.Path == "" {
			Logger.Warn("Document has empty path, skipping", "id", doc.ID, "name", doc.Name)
			continue
		}
		progress := 10 + int((float64(i)/float64(totalDocs))*50)
		db.UpdateJobProgress(jobID, progress, fmt.Sprintf("Checking document %d/%d", i+1, totalDocs))

		if _, err := os.Stat(doc.Path); os.IsNotExist(err) {
			Logger.Info("File not found, removing from database", "path", doc.Path, "id", doc.ID)
			if err := database.DeleteDocument(doc.ULID.String(), db); err != nil {
				Logger.Error("Failed to delete document from DB", "error", err, "id", doc.ID)
				continue
			}
			deletedCount++
		}
	}

	db.UpdateJobProgress(jobID, 60, "Scanning for orphaned files")
	movedCount := 0
	orphanedFiles, err := h.orphanedDocumentFiles(documents)
	if err != nil {
		// A failed scan leaves orphans where they are, the row check above
		// already did the important half of the job
		Logger.Error("Failed to scan for orphaned documents", "error", err)
	} else {
		totalOrphans := len(orphanedFiles)
		for i, orphanPath := range orphanedFiles {
			progress := 60 + int((float64(i)/float64(totalOrphans))*20)
			db.UpdateJobProgress(jobID, progress, fmt.Sprintf("Moving orphan %d/%d", i+1, totalOrphans))

			if err := h.moveOrphanToIngress(orphanPath); err != nil {
				Logger.Error("Failed to move orphaned document to ingress", "path", orphanPath, "error", err)
			} else {
				movedCount++
			}
		}
	}

	db.UpdateJobProgress(jobID, 80, "Recalculating word cloud")
	Logger.Info("Recalculating word cloud after database cleanup")
	if err := db.RecalculateAllWordFrequencies(); err != nil {
		Logger.Error("Word cloud recalculation failed after cleanup", "error", err)
	}

	result := fmt.Sprintf(`{"scanned": %d, "deleted": %d, "moved": %d}`, totalDocs, deletedCount, movedCount)
	if err := db.CompleteJob(jobID, result); err != nil {
		Logger.Error("Failed to mark cleanup job as complete", "error", err)
	}

	Logger.Info("Database cleanup job completed", "jobID", jobID, "scanned", totalDocs, "deleted", deletedCount, "moved", movedCount)
}

// orphanedDocumentFiles walks document storage and returns files that have
// no database row. Companion .yaml and .txt sidecars ride along with their
// main file and are never reported on their own.
func (h *ServerHandler) orphanedDocumentFiles(documents []database.Document) ([]string, error) {
	tracked := make(map[string]bool)
	for _, doc := range documents {
		if doc.Path == "" {
			continue
		}
		tracked[doc.Path] = true
		tracked[doc.Path+".yaml"] = true
		tracked[doc.Path+".txt"] = true
	}

	var orphans []string
	err := filepath.Walk(h.ServerConfig.DocumentPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			Logger.Warn("Error accessing path during orphan scan", "path", path, "error", err)
			return nil
		}
		if info.IsDir() {
			return nil
		}

		// A sidecar whose main file still exists belongs to that file
		if ext := filepath.Ext(path); ext == ".yaml" || ext == ".txt" {
			if _, err := os.Stat(strings.TrimSuffix(path, ext)); err == nil {
				return nil
			}
		}

		if !tracked[path] && isDocumentFile(path) {
			Logger.Info("Found orphaned document", "path", path)
			orphans = append(orphans, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orphans, nil
}

// moveOrphanToIngress moves an orphaned document and its sidecars to the
// ingress folder, keeping its relative position in the tree.
func (h *ServerHandler) moveOrphanToIngress(docPath string) error {
	relPath, err := filepath.Rel(h.ServerConfig.DocumentPath, docPath)
	if err != nil {
		Logger.Error("Failed to calculate relative path", "docPath", docPath, "documentPath", h.ServerConfig.DocumentPath, "error", err)
		relPath = filepath.Base(docPath)
	}
	destPath := filepath.Join(h.ServerConfig.IngressPath, relPath)

	if err := os.MkdirAll(filepath.Dir(destPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create ingress directory: %w", err)
	}
	if err := os.Rename(docPath, destPath); err != nil {
		return fmt.Errorf("failed to move document: %w", err)
	}
	Logger.Info("Moved orphaned document to ingress", "from", docPath, "to", destPath)

	for _, ext := range []string{".yaml", ".txt"} {
		sidecar := docPath + ext
		if _, err := os.Stat(sidecar); err != nil {
			continue
		}
		if err := os.Rename(sidecar, destPath+ext); err != nil {
			Logger.Warn("Failed to move companion file", "path", sidecar, "error", err)
		} else {
			Logger.Info("Moved companion file", "from", sidecar, "to", destPath+ext)
		}
	}
	return nil
}
