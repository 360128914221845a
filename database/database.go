package database

import (
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/folium-app/folium/config"
	"github.com/oklog/ulid/v2"
)

// Document is all of the document information stored in the database
type Document struct {
	ID           int
	Name         string
	Path         string // full path to the file
	IngressTime  time.Time
	Folder       string
	Hash         string
	ULID         ulid.ULID // Have a smaller (than hash) id that can be used in URL's, hopefully speed things up
	DocumentType string    // type of document (pdf, txt, etc)
	FullText     string
	PageCount    int    // -1 when the renderer could not open the file
	Outline      string // JSON-encoded table of contents, empty when the document has none
	URL          string
}

// Logger is set by main before any database use
var Logger *slog.Logger

// Repository defines database operations
type Repository interface {
	Close() error
	SaveDocument(doc *Document) error
	GetDocumentByID(id int) (*Document, error)
	GetDocumentByULID(ulid string) (*Document, error)
	GetDocumentByPath(path string) (*Document, error)
	GetDocumentByHash(hash string) (*Document, error)
	GetNewestDocuments(limit int) ([]Document, error)
	GetNewestDocumentsWithPagination(page int, pageSize int) ([]Document, int, error)
	GetAllDocuments() ([]Document, error)
	GetDocumentsByFolder(folder string) ([]Document, error)
	DeleteDocument(ulid string) error
	UpdateDocumentURL(ulid string, url string) error
	UpdateDocumentFolder(ulid string, folder string) error
	UpdateDocumentPageData(ulid string, pageCount int, outline string) error
	SaveConfig(config *config.ServerConfig) error
	GetConfig() (*config.ServerConfig, error)
	SearchDocuments(searchTerm string) ([]Document, error)
	ReindexSearchDocuments() (int, error)
	// Word cloud methods
	GetTopWords(limit int) ([]WordFrequency, error)
	GetWordCloudMetadata() (*WordCloudMetadata, error)
	RecalculateAllWordFrequencies() error
	UpdateWordFrequencies(docID string) error
	// Job tracking methods
	CreateJob(jobType JobType, message string) (*Job, error)
	UpdateJobProgress(jobID ulid.ULID, progress int, currentStep string) error
	UpdateJobStatus(jobID ulid.ULID, status JobStatus, message string) error
	UpdateJobError(jobID ulid.ULID, errorMsg string) error
	CompleteJob(jobID ulid.ULID, result string) error
	GetJob(jobID ulid.ULID) (*Job, error)
	GetRecentJobs(limit, offset int) ([]Job, error)
	GetActiveJobs() ([]Job, error)
	DeleteOldJobs(olderThan time.Duration) (int, error)
}

// FetchConfigFromDB reads the persisted server config.
func FetchConfigFromDB(db Repository) (config.ServerConfig, error) {
	serverConfig, err := db.GetConfig()
	if err != nil {
		Logger.Error("Could not read server config from the database", "error", err)
		return config.ServerConfig{}, err
	}
	return *serverConfig, nil
}

// WriteConfigToDB persists the server config so the next start picks it up.
func WriteConfigToDB(serverConfig config.ServerConfig, db Repository) {
	serverConfig.ID = 1 // config lives in a single well-known row
	if err := db.SaveConfig(&serverConfig); err != nil {
		Logger.Error("Unable to write server config to database", "error", err)
	}
}

// documentDestination maps an ingress file to its path and folder under the
// document store. Preserve keeps the ingress directory layout, otherwise
// everything lands in the configured new-document folder.
func documentDestination(cfg config.ServerConfig, filePath string) (path, folder string, err error) {
	if cfg.IngressPreserve {
		rel, err := filepath.Rel(cfg.IngressPath, filePath)
		if err != nil {
			return "", "", err
		}
		full := filepath.Join(cfg.DocumentPath, rel)
		return filepath.ToSlash(full), filepath.Dir(full), nil
	}

	base := filepath.Base(filePath)
	return filepath.ToSlash(cfg.DocumentPath + "/" + cfg.NewDocumentFolderRel + "/" + base),
		filepath.ToSlash(cfg.DocumentPath + "/" + cfg.NewDocumentFolderRel), nil
}

// AddNewDocument adds a new document to the database. pageCount and outline
// come from the render layer; pageCount is -1 when the file could not be
// opened as a paged document.
func AddNewDocument(filePath string, fullText string, pageCount int, outline string, db Repository) (*Document, error) {
	serverConfig, err := FetchConfigFromDB(db)
	if err != nil {
		Logger.Error("Unable to fetch config to add new document", "filePath", filePath, "error", err)
	}

	fileHash, err := contentHash(filePath)
	if err != nil {
		return nil, err
	}
	if duplicateHashExists(fileHash, filePath, db) {
		err := errors.New("duplicate document found on import (hash collision): " + filePath)
		Logger.Error("Duplicate document detected", "error", err)
		return nil, err
	}

	now := time.Now()
	newULID, err := NewULID(now)
	if err != nil {
		Logger.Error("Cannot generate ULID", "filePath", filePath, "error", err)
	}

	path, folder, err := documentDestination(serverConfig, filePath)
	if err != nil {
		return nil, err
	}

	newDocument := Document{
		Name:         filepath.Base(filePath),
		Path:         path,
		Folder:       folder,
		Hash:         fileHash,
		IngressTime:  now,
		ULID:         newULID,
		DocumentType: filepath.Ext(filePath),
		FullText:     fullText,
		PageCount:    pageCount,
		Outline:      outline,
	}

	Logger.Debug("Adding document to database", "name", newDocument.Name, "pages", pageCount)
	// the postgres trigger keeps full_text_search current on insert
	if err := db.SaveDocument(&newDocument); err != nil {
		Logger.Error("Unable to write document to database", "error", err)
		return nil, err
	}
	return &newDocument, nil
}

// FetchNewestDocuments returns the most recently added documents.
func FetchNewestDocuments(numberOf int, db Repository) ([]Document, error) {
	docs, err := db.GetNewestDocuments(numberOf)
	if err != nil {
		Logger.Error("Could not list newest documents", "error", err)
	}
	return docs, err
}

// FetchAllDocuments returns every document in the store.
func FetchAllDocuments(db Repository) (*[]Document, error) {
	allDocuments, err := db.GetAllDocuments()
	if err != nil {
		Logger.Error("Could not list documents", "error", err)
		return nil, err
	}
	return &allDocuments, nil
}

// FetchDocuments resolves a list of ULIDs to documents. The first miss
// aborts the whole lookup.
func FetchDocuments(docULIDSt []string, db Repository) ([]Document, int, error) {
	var foundDocuments []Document
	for _, ulidStr := range docULIDSt {
		doc, err := db.GetDocumentByULID(ulidStr)
		if err != nil {
			Logger.Error("Could not resolve document ULID", "ulid", ulidStr, "error", err)
			return foundDocuments, http.StatusNotFound, err
		}
		foundDocuments = append(foundDocuments, *doc)
	}
	return foundDocuments, http.StatusOK, nil
}

// UpdateDocumentField updates a single field in a document. Only fields with
// a type-safe update path are accepted.
func UpdateDocumentField(docULIDSt string, field string, newValue interface{}, db Repository) (int, error) {
	var err error
	switch field {
	case "URL":
		url, ok := newValue.(string)
		if !ok {
			return http.StatusBadRequest, errors.New("URL value must be a string")
		}
		err = db.UpdateDocumentURL(docULIDSt, url)
	case "Folder":
		folder, ok := newValue.(string)
		if !ok {
			return http.StatusBadRequest, errors.New("Folder value must be a string")
		}
		err = db.UpdateDocumentFolder(docULIDSt, folder)
	default:
		return http.StatusBadRequest, errors.New("unsupported field update: " + field)
	}

	if err != nil {
		Logger.Error("Document field update failed", "ulid", docULIDSt, "field", field, "error", err)
		return http.StatusNotFound, err
	}
	return http.StatusOK, nil
}

// FetchDocument looks a document up by ULID. A missing row maps to 404,
// anything else to 500.
func FetchDocument(docULIDSt string, db Repository) (Document, int, error) {
	foundDocument, err := db.GetDocumentByULID(docULIDSt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			Logger.Error("No document with requested ULID", "ulid", docULIDSt, "error", err)
			return Document{}, http.StatusNotFound, err
		}
		Logger.Error("Document lookup failed", "ulid", docULIDSt, "error", err)
		return Document{}, http.StatusInternalServerError, err
	}
	return *foundDocument, http.StatusOK, nil
}

// FetchDocumentFromPath looks a document up by its stored path.
func FetchDocumentFromPath(path string, db Repository) (Document, error) {
	path = filepath.ToSlash(path) // paths are stored slash-separated
	foundDocument, err := db.GetDocumentByPath(path)
	if err != nil {
		Logger.Error("No document at path", "path", path, "error", err)
		return Document{}, err
	}
	return *foundDocument, nil
}

// FetchFolder lists the documents filed under one folder.
func FetchFolder(folderName string, db Repository) ([]Document, error) {
	folderContents, err := db.GetDocumentsByFolder(folderName)
	if err != nil {
		Logger.Error("Could not list folder", "folder", folderName, "error", err)
	}
	return folderContents, err
}

// DeleteDocument removes the document row. The file on disk is untouched.
func DeleteDocument(docULIDSt string, db Repository) error {
	if err := db.DeleteDocument(docULIDSt); err != nil {
		Logger.Error("Could not delete document", "ulid", docULIDSt, "error", err)
		return err
	}
	return nil
}

// duplicateHashExists runs before any heavy processing so a re-ingested file
// is rejected on its hash alone
func duplicateHashExists(fileHash string, fileName string, db Repository) bool {
	document, err := db.GetDocumentByHash(fileHash)
	if err != nil || document == nil {
		Logger.Info("No record found, assume no duplicate hash", "error", err)
		return false
	}
	Logger.Info("Duplicate document found on import (Hash collision)", "fileName", fileName, "existingDocument", document.Name)
	return true
}

// contentHash is the sha256 of the file's bytes, hex encoded
func contentHash(fileName string) (string, error) {
	file, err := os.Open(fileName)
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

// NewULID mints a ULID for the given time, used for document and job ids
func NewULID(t time.Time) (ulid.ULID, error) {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.New(ulid.Timestamp(t), entropy)
}
