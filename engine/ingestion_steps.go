package engine

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/folium-app/folium/config"
	"github.com/folium-app/folium/database"
	"github.com/oklog/ulid/v2"
)

// stepTracker writes per-file progress updates onto the ingestion job.
// Each file owns a slice of the first 90% of the progress bar; the final
// 10% is reserved for the wordcloud refresh that runs after the batch.
type stepTracker struct {
	db         database.Repository
	jobID      ulid.ULID
	fileName   string
	fileNum    int
	totalFiles int
	base       int
}

func newStepTracker(db database.Repository, jobID ulid.ULID, fileName string, fileNum, totalFiles int) *stepTracker {
	return &stepTracker{
		db:         db,
		jobID:      jobID,
		fileName:   fileName,
		fileNum:    fileNum,
		totalFiles: totalFiles,
		base:       int((float64(fileNum) / float64(totalFiles)) * 90),
	}
}

func (t *stepTracker) step(offset int, description string) {
	msg := fmt.Sprintf("[%d/%d] %s - %s", t.fileNum+1, t.totalFiles, t.fileName, description)
	t.db.UpdateJobProgress(t.jobID, t.base+offset, msg)
}

// IngestDocumentWithSteps runs one file through the full ingestion pipeline,
// reporting progress on the given job between phases. The phases are ordered
// so that a crash mid-way never loses the source file: the record is created
// first, the file is copied and hash-verified before the source is deleted,
// and text extraction happens only once the file sits in its final location.
func (h *ServerHandler) IngestDocumentWithSteps(filePath string, db database.Repository, jobID ulid.ULID, fileNum, totalFiles int) error {
	fileName := filepath.Base(filePath)
	tracker := newStepTracker(db, jobID, fileName, fileNum, totalFiles)

	tracker.step(0, "Step 1: Calculating hash")
	Logger.Info("Step 1: Calculating hash", "filePath", filePath)

	fileHash, err := fileSHA256(filePath)
	if err != nil {
		return fmt.Errorf("step 1 failed (hash calculation): %w", err)
	}

	if existing := h.duplicateOf(fileHash, db); existing != nil {
		Logger.Info("Duplicate document detected, skipping", "fileName", fileName, "existingDoc", existing.Name)
		if err := os.Remove(filePath); err != nil {
			Logger.Error("Failed to remove duplicate file", "filePath", filePath, "error", err)
		}
		return fmt.Errorf("%w (hash: %s)", ErrDuplicate, fileHash)
	}

	doc, err := h.newDocumentRecord(filePath, fileHash, db)
	if err != nil {
		return fmt.Errorf("step 1 failed (create record): %w", err)
	}
	Logger.Info("Step 1 complete: Document record created", "ulid", doc.ULID.String(), "hash", fileHash)

	tracker.step(10, "Step 2: Moving file")
	Logger.Info("Step 2: Moving file to documents folder", "from", filePath, "to", doc.Path)

	if err := h.moveFileVerified(filePath, doc.Path, fileHash); err != nil {
		// The file never made it, so the record must not survive either.
		db.DeleteDocument(doc.ULID.String())
		return fmt.Errorf("step 2 failed (move/verify): %w", err)
	}
	Logger.Info("Step 2 complete: File moved and hash verified", "path", doc.Path)

	// From here on the document exists on disk and in the database. Every
	// remaining phase is an enrichment, so failures are logged, not returned.
	tracker.step(20, "Step 3: Extracting text")
	Logger.Info("Step 3: Extracting text and updating search", "filePath", doc.Path)

	fullText, err := h.extractText(doc.Path)
	if err != nil {
		Logger.Warn("Text extraction failed, storing document without text", "error", err, "fileName", fileName)
		fullText = ""
	}
	doc.FullText = fullText
	if err := db.SaveDocument(doc); err != nil {
		Logger.Error("Failed to update document text, but document is still saved", "error", err, "ulid", doc.ULID.String())
	}
	Logger.Info("Step 3 complete: Text extracted and indexed", "textLength", len(fullText), "fileName", fileName)

	tracker.step(25, "Step 4: Reading page data")

	pageCount, outlineJSON := h.documentPageData(doc.Path)
	if err := db.UpdateDocumentPageData(doc.ULID.String(), pageCount, outlineJSON); err != nil {
		Logger.Error("Unable to store page data, but document is still saved", "error", err, "ulid", doc.ULID.String())
	}

	documentURL := "/document/view/" + doc.ULID.String()
	h.Echo.File(documentURL, doc.Path)
	if _, err := database.UpdateDocumentField(doc.ULID.String(), "URL", documentURL, db); err != nil {
		Logger.Error("Unable to update document URL field", "error", err, "ulid", doc.ULID.String())
	}

	Logger.Info("Document ingestion complete", "fileName", fileName, "ulid", doc.ULID.String(), "pages", pageCount)
	return nil
}

// fileSHA256 hashes a file the same way the database layer does, so
// duplicate detection agrees across both ingestion paths.
func fileSHA256(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}

// duplicateOf returns the already-stored document carrying the same hash,
// or nil when the hash is new.
func (h *ServerHandler) duplicateOf(fileHash string, db database.Repository) *database.Document {
	document, err := db.GetDocumentByHash(fileHash)
	if err != nil || document == nil {
		return nil
	}
	return document
}

// newDocumentRecord saves the minimal row for a file that is about to be
// moved. FullText stays empty until extraction runs.
func (h *ServerHandler) newDocumentRecord(filePath string, fileHash string, db database.Repository) (*database.Document, error) {
	serverConfig, err := database.FetchConfigFromDB(db)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch config: %w", err)
	}

	now := time.Now()
	newULID, err := database.NewULID(now)
	if err != nil {
		return nil, fmt.Errorf("cannot generate ULID: %w", err)
	}

	doc := &database.Document{
		Name:         filepath.Base(filePath),
		Hash:         fileHash,
		IngressTime:  now,
		ULID:         newULID,
		DocumentType: filepath.Ext(filePath),
	}
	doc.Path, doc.Folder, err = destinationFor(serverConfig, filePath)
	if err != nil {
		return nil, err
	}

	if err := db.SaveDocument(doc); err != nil {
		return nil, fmt.Errorf("unable to save document: %w", err)
	}
	return doc, nil
}

// destinationFor decides where a file lands inside the document store.
// With IngressPreserve the folder structure under the ingress path is
// mirrored; otherwise everything goes into the new-documents folder.
func destinationFor(cfg config.ServerConfig, filePath string) (path, folder string, err error) {
	if cfg.IngressPreserve {
		relativePath, err := filepath.Rel(cfg.IngressPath, filePath)
		if err != nil {
			return "", "", err
		}
		dest := filepath.Join(cfg.DocumentPath, relativePath)
		return filepath.ToSlash(dest), filepath.ToSlash(filepath.Dir(dest)), nil
	}

	folder = filepath.ToSlash(cfg.DocumentPath + "/" + cfg.NewDocumentFolderRel)
	return folder + "/" + filepath.Base(filePath), folder, nil
}

// moveFileVerified copies src to dest, confirms the copy hashes to
// expectedHash, and only then removes the source. A bad copy is deleted so
// a retry starts clean.
func (h *ServerHandler) moveFileVerified(sourcePath, destPath, expectedHash string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	srcBytes, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to read source file: %w", err)
	}
	if err := os.WriteFile(destPath, srcBytes, os.ModePerm); err != nil {
		return fmt.Errorf("failed to write destination file: %w", err)
	}

	destHash, err := fileSHA256(destPath)
	if err != nil {
		os.Remove(destPath)
		return fmt.Errorf("failed to verify destination file: %w", err)
	}
	if destHash != expectedHash {
		os.Remove(destPath)
		return fmt.Errorf("hash mismatch after copy (expected: %s, got: %s)", expectedHash, destHash)
	}

	if err := os.Remove(sourcePath); err != nil {
		Logger.Warn("Failed to delete source file after successful copy", "sourcePath", sourcePath, "error", err)
	}
	return nil
}
