package engine

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/folium-app/folium/database"
	"github.com/folium-app/folium/engine/pdfrenderer"
	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"
)

// maxRenderScale caps the scale query parameter so a single request cannot
// ask for an absurdly large pixmap
const maxRenderScale = 8.0

// GetDocumentPages returns the page count for a document
// @Summary Get document page count
// @Description Retrieve the number of pages in a document. Rows ingested before rendering support are counted on demand and stored.
// @Tags Rendering
// @Accept json
// @Produce json
// @Param id path string true "Document ULID"
// @Success 200 {object} map[string]interface{} "Page count"
// @Failure 404 {object} map[string]interface{} "Document not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /document/{id}/pages [get]
func (h *ServerHandler) GetDocumentPages(c echo.Context) error {
	ulidStr := c.Param("id")
	document, httpStatus, err := database.FetchDocument(ulidStr, h.DB)
	if err != nil {
		Logger.Error("GetDocumentPages API call failed", "error", err)
		return c.JSON(httpStatus, err)
	}

	pageCount := document.PageCount
	if pageCount <= 0 && strings.EqualFold(filepath.Ext(document.Path), ".pdf") {
		var outlineJSON string
		pageCount, outlineJSON = h.documentPageData(document.Path)
		if pageCount > 0 {
			if err := h.DB.UpdateDocumentPageData(ulidStr, pageCount, outlineJSON); err != nil {
				Logger.Warn("Unable to store refreshed page data", "ulid", ulidStr, "error", err)
			}
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":        document.ULID.String(),
		"name":      document.Name,
		"pageCount": pageCount,
	})
}

// GetDocumentPageImage renders a single page of a document to PNG
// @Summary Render a document page
// @Description Render one page of a document as a PNG image. Scale multiplies the configured render DPI.
// @Tags Rendering
// @Produce png
// @Param id path string true "Document ULID"
// @Param page path int true "Zero-based page number"
// @Param scale query number false "Scale factor (default 1.0, max 8)"
// @Success 200 {file} file "Rendered page"
// @Failure 400 {object} map[string]interface{} "Bad page number or scale"
// @Failure 404 {object} map[string]interface{} "Document not found"
// @Failure 500 {object} map[string]interface{} "Render failed"
// @Router /document/{id}/page/{page}/image [get]
func (h *ServerHandler) GetDocumentPageImage(c echo.Context) error {
	ulidStr := c.Param("id")
	document, httpStatus, err := database.FetchDocument(ulidStr, h.DB)
	if err != nil {
		Logger.Error("GetDocumentPageImage API call failed", "error", err)
		return c.JSON(httpStatus, err)
	}

	pageIndex, err := strconv.Atoi(c.Param("page"))
	if err != nil || pageIndex < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "page must be a non-negative integer"})
	}

	scale := 1.0
	if scaleParam := c.QueryParam("scale"); scaleParam != "" {
		scale, err = strconv.ParseFloat(scaleParam, 64)
		if err != nil || scale <= 0 || scale > maxRenderScale {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "scale must be a number between 0 and 8"})
		}
	}

	img, err := h.renderDocumentPage(document.Path, pageIndex, scale)
	if err != nil {
		Logger.Error("Unable to render document page", "ulid", ulidStr, "page", pageIndex, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "page render failed"})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		Logger.Error("Unable to encode rendered page", "ulid", ulidStr, "page", pageIndex, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "png encode failed"})
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

// renderDocumentPage renders one page to an image. The native binding is
// preferred when present since it honors arbitrary scales. Otherwise the
// configured renderer runs, with a transient renderer standing in when a
// non-default scale was requested.
func (h *ServerHandler) renderDocumentPage(path string, pageIndex int, scale float64) (image.Image, error) {
	dpi := h.ServerConfig.RenderDPI
	if dpi <= 0 {
		dpi = pdfrenderer.DefaultDPI
	}
	if h.MuPDF != nil {
		doc, err := h.MuPDF.OpenDocument(path)
		if err == nil {
			defer doc.Drop()
			page, err := doc.LoadPage(pageIndex)
			if err != nil {
				return nil, err
			}
			defer page.Drop()
			// PDF coordinates are 72 per inch
			return page.Image(scale * float64(dpi) / 72)
		}
		Logger.Warn("Native open failed, falling back to configured renderer", "path", path, "error", err)
	}
	renderer, err := h.getRenderer()
	if err != nil {
		return nil, err
	}
	if scale != 1 {
		scaled, err := pdfrenderer.NewFitzRenderer(int(float64(dpi) * scale))
		if err == nil {
			return scaled.RenderPage(path, pageIndex)
		}
	}
	return renderer.RenderPage(path, pageIndex)
}

// GetDocumentPageText returns the structured text of one page in MuPDF's
// JSON block format
// @Summary Get structured page text
// @Description Extract positioned text blocks from one page. Requires a build with the native mupdf renderer.
// @Tags Rendering
// @Accept json
// @Produce json
// @Param id path string true "Document ULID"
// @Param page path int true "Zero-based page number"
// @Success 200 {object} map[string]interface{} "Structured text blocks"
// @Failure 400 {object} map[string]interface{} "Bad page number"
// @Failure 404 {object} map[string]interface{} "Document not found"
// @Failure 501 {object} map[string]interface{} "Built without native renderer"
// @Router /document/{id}/page/{page}/text [get]
func (h *ServerHandler) GetDocumentPageText(c echo.Context) error {
	if h.MuPDF == nil {
		return c.JSON(http.StatusNotImplemented, echo.Map{"error": "structured text requires a build with the mupdf tag"})
	}

	ulidStr := c.Param("id")
	document, httpStatus, err := database.FetchDocument(ulidStr, h.DB)
	if err != nil {
		Logger.Error("GetDocumentPageText API call failed", "error", err)
		return c.JSON(httpStatus, err)
	}

	pageIndex, err := strconv.Atoi(c.Param("page"))
	if err != nil || pageIndex < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "page must be a non-negative integer"})
	}

	doc, err := h.MuPDF.OpenDocument(document.Path)
	if err != nil {
		Logger.Error("Unable to open document for structured text", "ulid", ulidStr, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unable to open document"})
	}
	defer doc.Drop()

	page, err := doc.LoadPage(pageIndex)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unable to load page"})
	}
	defer page.Drop()

	stext, err := page.StructuredText(nil)
	if err != nil {
		Logger.Error("Structured text extraction failed", "ulid", ulidStr, "page", pageIndex, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "structured text extraction failed"})
	}
	defer stext.Drop()

	data, err := stext.JSON()
	if err != nil {
		Logger.Error("Structured text encoding failed", "ulid", ulidStr, "page", pageIndex, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "structured text encoding failed"})
	}
	return c.JSONBlob(http.StatusOK, data)
}

// GetDocumentOutline returns the document's table of contents
// @Summary Get document outline
// @Description Retrieve the document outline (table of contents) as a flat list with depth markers
// @Tags Rendering
// @Accept json
// @Produce json
// @Param id path string true "Document ULID"
// @Success 200 {array} mupdf.OutlineItem "Outline entries, empty when the document has none"
// @Failure 404 {object} map[string]interface{} "Document not found"
// @Failure 500 {object} map[string]interface{} "Outline read failed"
// @Router /document/{id}/outline [get]
func (h *ServerHandler) GetDocumentOutline(c echo.Context) error {
	ulidStr := c.Param("id")
	document, httpStatus, err := database.FetchDocument(ulidStr, h.DB)
	if err != nil {
		Logger.Error("GetDocumentOutline API call failed", "error", err)
		return c.JSON(httpStatus, err)
	}

	// The outline captured at ingest time is stored on the row
	if document.Outline != "" {
		return c.JSONBlob(http.StatusOK, []byte(document.Outline))
	}

	renderer, err := h.getRenderer()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "renderer unavailable"})
	}
	items, err := renderer.Outline(document.Path)
	if err != nil {
		Logger.Error("Unable to read document outline", "ulid", ulidStr, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "outline read failed"})
	}
	return c.JSON(http.StatusOK, items)
}

// RunRenderRefresh triggers a background refresh of stored page counts and outlines
// @Summary Refresh render metadata
// @Description Recount pages and reread outlines for documents missing that data
// @Tags Admin
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Job created with jobId"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /render/refresh [post]
func (h *ServerHandler) RunRenderRefresh(c echo.Context) error {
	Logger.Info("Render metadata refresh triggered via API")

	job, err := h.DB.CreateJob(database.JobTypeRenderRefresh, "Starting render metadata refresh")
	if err != nil {
		Logger.Error("Failed to create render refresh job", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create render refresh job"})
	}

	go h.runRenderRefreshJob(h.DB, job.ID)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Render refresh started",
		"jobId":   job.ID.String(),
	})
}

// runRenderRefreshJob backfills page counts and outlines for documents
// ingested before rendering support existed or while the renderer was down
func (h *ServerHandler) runRenderRefreshJob(db database.Repository, jobID ulid.ULID) {
	defer func() {
		if r := recover(); r != nil {
			Logger.Error("Panic recovered in render refresh job", "panic", r, "jobID", jobID)
			db.UpdateJobError(jobID, fmt.Sprintf("Panic: %v", r))
		}
	}()

	db.UpdateJobStatus(jobID, database.JobStatusRunning, "Scanning documents for render metadata")

	documentsPtr, err := database.FetchAllDocuments(db)
	if err != nil {
		Logger.Error("Failed to fetch documents for render refresh", "error", err)
		db.UpdateJobError(jobID, fmt.Sprintf("Failed to fetch documents: %v", err))
		return
	}
	if documentsPtr == nil {
		db.CompleteJob(jobID, `{"scanned": 0, "updated": 0, "skipped": 0}`)
		return
	}

	documents := *documentsPtr
	totalDocs := len(documents)
	updatedCount := 0
	skippedCount := 0

	for i, doc := range documents {
		progress := int((float64(i) / float64(totalDocs)) * 100)
		db.UpdateJobProgress(jobID, progress, fmt.Sprintf("Refreshing document %d/%d", i+1, totalDocs))

		// Rows with a positive count already carry their render metadata
		if !strings.EqualFold(doc.DocumentType, ".pdf") || doc.PageCount > 0 {
			skippedCount++
			continue
		}

		pageCount, outlineJSON := h.documentPageData(doc.Path)
		if err := db.UpdateDocumentPageData(doc.ULID.String(), pageCount, outlineJSON); err != nil {
			Logger.Error("Failed to store refreshed page data", "ulid", doc.ULID.String(), "error", err)
			continue
		}
		updatedCount++
	}

	result := fmt.Sprintf(`{"scanned": %d, "updated": %d, "skipped": %d}`, totalDocs, updatedCount, skippedCount)
	if err := db.CompleteJob(jobID, result); err != nil {
		Logger.Error("Failed to mark render refresh job as complete", "error", err)
	}

	Logger.Info("Render refresh job completed", "jobID", jobID, "scanned", totalDocs, "updated", updatedCount)
}
