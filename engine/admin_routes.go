package engine

import (
	"net/http"

	"github.com/folium-app/folium/database"
	"github.com/folium-app/folium/internal/build"
	"github.com/folium-app/folium/mupdf"
	"github.com/labstack/echo/v4"
)

// GetAboutInfo returns information about the application configuration
// @Summary Get application information
// @Description Retrieve information about the application configuration, version, renderer and database
// @Tags Admin
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Application information"
// @Router /about [get]
func (h *ServerHandler) GetAboutInfo(c echo.Context) error {
	ocrConfigured := h.ServerConfig.TesseractPath != "" ||
		h.ServerConfig.TesseractServiceURL != ""

	rendererName := h.ServerConfig.Renderer
	if renderer, err := h.getRenderer(); err == nil {
		rendererName = renderer.Name()
	}

	return c.JSON(http.StatusOK, echo.Map{
		"version":        build.Version,
		"ocrConfigured":  ocrConfigured,
		"ocrPath":        h.ServerConfig.TesseractPath,
		"renderer":       rendererName,
		"renderDPI":      h.ServerConfig.RenderDPI,
		"nativeRenderer": mupdf.Available(),
		"databaseType":   h.ServerConfig.DatabaseType,
		"databaseHost":   h.ServerConfig.DatabaseHost,
		"databasePort":   h.ServerConfig.DatabasePort,
		"databaseName":   h.ServerConfig.DatabaseDbname,
		"ingressPath":    h.ServerConfig.IngressPath,
		"documentPath":   h.ServerConfig.DocumentPath,
	})
}

// GetVersion returns the running build's version information
// @Summary Get version
// @Description Retrieve version and build details for the running binary
// @Tags Admin
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Version information"
// @Router /version [get]
func (h *ServerHandler) GetVersion(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"version": build.Version,
		"commit":  build.Commit,
		"date":    build.Date,
	})
}

// RunIngestNow triggers the ingestion process manually
// @Summary Trigger document ingestion
// @Description Manually trigger the document ingestion process to process files in the ingress folder
// @Tags Admin
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Job created with job ID"
// @Router /ingest [post]
func (h *ServerHandler) RunIngestNow(c echo.Context) error {
	Logger.Info("Manual ingestion triggered via API")

	job, err := h.DB.CreateJob(database.JobTypeIngestion, "Starting document ingestion")
	if err != nil {
		Logger.Error("Failed to create ingestion job", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create job"})
	}

	go h.runIngressJob(h.DB, job.ID)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Ingestion started",
		"jobId":   job.ID.String(),
	})
}

// CleanDatabase checks all documents and removes entries for missing files,
// and moves orphaned files (not in database) back to ingress for reprocessing
// @Summary Clean database
// @Description Remove database entries for missing files and move orphaned files to ingress
// @Tags Admin
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Job created with jobId"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /clean [post]
func (h *ServerHandler) CleanDatabase(c echo.Context) error {
	Logger.Info("Database cleanup triggered via API")

	job, err := h.DB.CreateJob(database.JobTypeCleanup, "Starting database cleanup")
	if err != nil {
		Logger.Error("Failed to create cleanup job", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create cleanup job"})
	}

	go h.runCleanupJob(h.DB, job.ID)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Database cleanup started",
		"jobId":   job.ID.String(),
	})
}
