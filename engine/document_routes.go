package engine

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/folium-app/folium/database"
	"github.com/labstack/echo/v4"
)

// DeleteFile deletes a folder or file from the database (and all children if folder) (and on disc if document)
// @Summary Delete a file or folder
// @Description Deletes a document or folder from the system, including database entry and physical file
// @Tags Documents
// @Accept json
// @Produce json
// @Param id query string false "Document ULID"
// @Param path query string false "File path relative to document root"
// @Success 200 {string} string "Document Deleted" or "Folder Deleted"
// @Failure 404 {object} map[string]interface{} "File not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /document [delete]
func (h *ServerHandler) DeleteFile(c echo.Context) error {
	params := c.QueryParams()
	ulidStr := params.Get("id")

	path := filepath.Join(h.ServerConfig.DocumentPath, params.Get("path"))
	path, err := filepath.Abs(path)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}
	if path == h.ServerConfig.DocumentPath { //TODO: resolve against the document root so a crafted path cannot escape it
		return c.JSON(http.StatusInternalServerError, err)
	}

	fileInfo, err := os.Stat(path)
	if err != nil {
		Logger.Error("Unable to get information for file", "path", path, "error", err)
		return c.JSON(http.StatusNotFound, err)
	}

	// Folders are removed wholesale, documents row-by-row so the database
	// stays in step with the disk
	if fileInfo.IsDir() {
		if err := DeleteFile(path); err != nil {
			Logger.Error("Unable to delete folder from document filesystem", "path", path, "error", err)
			return c.JSON(http.StatusInternalServerError, err)
		}
		return c.JSON(http.StatusOK, "Folder Deleted")
	}

	document, _, err := database.FetchDocument(ulidStr, h.DB)
	if err != nil {
		Logger.Error("Unable to find document to delete", "path", path, "error", err)
		return c.JSON(http.StatusNotFound, err)
	}
	if err := database.DeleteDocument(ulidStr, h.DB); err != nil {
		Logger.Error("Unable to delete document from database", "name", document.Name, "error", err)
		return c.JSON(http.StatusNotFound, err)
	}
	if err := DeleteFile(document.Path); err != nil {
		Logger.Error("Unable to delete document from file system", "path", document.Path, "error", err)
		return c.JSON(http.StatusNotFound, err)
	}
	// The search index row goes with it via the delete trigger
	return c.JSON(http.StatusOK, "Document Deleted")
}

// UploadDocuments handles documents uploaded from the frontend
// @Summary Upload a document
// @Description Upload a new document file to the ingress folder for processing
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param path formData string false "Upload path (relative to ingress folder)"
// @Param file formData file true "Document file to upload"
// @Success 200 {string} string "Path to uploaded file"
// @Failure 400 {object} map[string]interface{} "Upload failed validation"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /document/upload [post]
func (h *ServerHandler) UploadDocuments(c echo.Context) error {
	request := c.Request()
	uploadPath := request.FormValue("path")
	file, fileHeader, err := request.FormFile("file")
	if err != nil {
		Logger.Error("Unable to read form file from upload", "error", err)
		return err
	}
	defer file.Close()

	// Uploads land in the ingress folder first. A file that fails
	// processing then sticks there instead of polluting document storage.
	path := filepath.ToSlash(h.ServerConfig.IngressPath + "/" + uploadPath + fileHeader.Filename)
	if _, err := os.Stat(filepath.Dir(path)); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
			Logger.Error("Unable to create filepath for upload", "path", path, "error", err)
			return err
		}
	}
	Logger.Debug("Creating path for file upload to ingress", "dir", filepath.Dir(path))

	body, err := io.ReadAll(file)
	if err != nil {
		Logger.Error("Unable to read uploaded file", "name", fileHeader.Filename, "error", err)
		return err
	}
	if err := h.validateUpload(fileHeader.Filename, body); err != nil {
		Logger.Warn("Rejecting unreadable upload", "name", fileHeader.Filename, "error", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := os.WriteFile(path, body, 0644); err != nil {
		Logger.Error("Unable to write uploaded file", "path", path, "error", err)
		return err
	}

	h.ingressDocument(path, "upload")
	return c.JSON(http.StatusOK, path)
}

// validateUpload opens paged document formats in memory before anything is
// written to disk, so a corrupt upload is rejected instead of ingested.
// Builds without the native binding accept the bytes as-is.
func (h *ServerHandler) validateUpload(fileName string, data []byte) error {
	if h.MuPDF == nil {
		return nil
	}
	kind := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	switch kind {
	case "pdf", "xps", "epub", "cbz":
	default:
		return nil
	}
	doc, err := h.MuPDF.OpenDocumentFromMemory(kind, data)
	if err != nil {
		return fmt.Errorf("upload is not a readable %s document: %w", kind, err)
	}
	doc.Drop()
	return nil
}

// MoveDocuments will accept an API call from the frontend to move a document or documents
// @Summary Move documents to a new folder
// @Description Move one or more documents to a different folder in the document tree
// @Tags Documents
// @Accept json
// @Produce json
// @Param folder query string true "Target folder path"
// @Param id query []string true "Document ULID(s) to move"
// @Success 200 {string} string "Ok"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /document/move [patch]
func (h *ServerHandler) MoveDocuments(c echo.Context) error {
	params := c.QueryParams()
	newFolder := params.Get("folder")
	for _, docID := range params["id"] {
		httpStatus, err := database.UpdateDocumentField(docID, "Folder", newFolder, h.DB)
		if err != nil {
			Logger.Error("MoveDocuments API call failed", "ulid", docID, "error", err)
			return c.JSON(httpStatus, err)
		}
	}
	return c.JSON(http.StatusOK, "Ok")
}

// GetDocument will return a document by ULID
// @Summary Get a document by ID
// @Description Retrieve document details by ULID
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ULID"
// @Success 200 {object} database.Document "Document details"
// @Failure 404 {object} map[string]interface{} "Document not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /document/{id} [get]
func (h *ServerHandler) GetDocument(c echo.Context) error {
	document, httpStatus, err := database.FetchDocument(c.Param("id"), h.DB)
	if err != nil {
		Logger.Error("GetDocument API call failed", "error", err)
		return c.JSON(httpStatus, err)
	}
	return c.JSON(httpStatus, document)
}

// GetDocumentFileSystem will scan the document folder and get the complete tree to send to the frontend
// @Summary Get document filesystem tree
// @Description Retrieve the complete document folder structure as a tree
// @Tags Documents
// @Accept json
// @Produce json
// @Success 200 {object} fullFileSystem "Complete filesystem tree"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /documents/filesystem [get]
func (h *ServerHandler) GetDocumentFileSystem(c echo.Context) error {
	tree, err := documentTree(h.ServerConfig.DocumentPath, h.DB)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tree)
}

// GetLatestDocuments gets the latest documents that were ingressed
// @Summary Get latest documents
// @Description Retrieve the most recently ingested documents with pagination
// @Tags Documents
// @Accept json
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Success 200 {object} map[string]interface{} "Paginated documents with metadata"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /documents/latest [get]
func (h *ServerHandler) GetLatestDocuments(c echo.Context) error {
	page := intQueryParam(c, "page", 1, 1, 0)
	const pageSize = 20

	documents, totalCount, err := h.DB.GetNewestDocumentsWithPagination(page, pageSize)
	if err != nil {
		Logger.Error("Can't find latest documents", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch documents"})
	}

	totalPages := (totalCount + pageSize - 1) / pageSize

	return c.JSON(http.StatusOK, echo.Map{
		"documents":   documents,
		"page":        page,
		"pageSize":    pageSize,
		"totalCount":  totalCount,
		"totalPages":  totalPages,
		"hasNext":     page < totalPages,
		"hasPrevious": page > 1,
	})
}
