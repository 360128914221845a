package engine

import (
	"fmt"
	"os"

	"github.com/folium-app/folium/config"
	"github.com/folium-app/folium/database"
	"github.com/folium-app/folium/mupdf"
)

// StartupChecks validates the configured tooling and storage directories.
// Missing optional tools downgrade to warnings, missing directories are
// created.
func (h *ServerHandler) StartupChecks() error {
	serverConfig, err := database.FetchConfigFromDB(h.DB)
	if err != nil {
		Logger.Error("Error fetching config", "error", err)
		return err
	}
	checkOCRTooling(serverConfig)
	checkRenderBackend(serverConfig)
	if err := ensureDirectory("ingress", serverConfig.IngressPath); err != nil {
		return err
	}
	return ensureDirectory("document", serverConfig.DocumentPath)
}

// checkOCRTooling reports whether OCR will be available this run. A missing
// tesseract binary is not fatal, image files just skip text extraction.
func checkOCRTooling(serverConfig config.ServerConfig) {
	if serverConfig.TesseractServiceURL != "" {
		Logger.Info("Remote OCR service configured", "url", serverConfig.TesseractServiceURL)
	}
	if serverConfig.TesseractPath == "" {
		if serverConfig.TesseractServiceURL == "" {
			Logger.Info("Tesseract not configured, OCR functionality will be unavailable")
		}
		return
	}

	tesseractInfo, err := os.Stat(serverConfig.TesseractPath)
	switch {
	case err != nil:
		Logger.Warn("Tesseract executable not found, OCR will be disabled", "path", serverConfig.TesseractPath, "error", err)
	case tesseractInfo.IsDir():
		Logger.Warn("Tesseract path is a directory, not an executable, OCR will be disabled", "path", serverConfig.TesseractPath)
	default:
		Logger.Info("Tesseract executable found and validated, OCR enabled", "path", serverConfig.TesseractPath)
	}
}

// checkRenderBackend reports which rendering backend the binary will run with
func checkRenderBackend(serverConfig config.ServerConfig) {
	if serverConfig.Renderer == "mupdf" && !mupdf.Available() {
		Logger.Warn("Config asks for the mupdf renderer but this binary was built without the mupdf tag, falling back to fitz")
	}
	if mupdf.Available() {
		Logger.Info("Native MuPDF binding present, structured text extraction enabled")
	}
	if serverConfig.PDFServiceURL != "" {
		Logger.Info("Remote PDF service configured", "url", serverConfig.PDFServiceURL)
	}
	Logger.Info("Render backend configured", "renderer", serverConfig.Renderer, "dpi", serverConfig.RenderDPI)
}

// ensureDirectory makes sure a storage path exists and is a directory,
// creating it when absent. An empty path only warns, the feature relying
// on it will complain when used.
func ensureDirectory(label, path string) error {
	if path == "" {
		Logger.Warn("Storage path not configured", "which", label)
		return nil
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		Logger.Info("Creating storage directory", "which", label, "path", path)
		if err := os.MkdirAll(path, 0755); err != nil {
			Logger.Error("Failed to create storage directory", "which", label, "path", path, "error", err)
			return err
		}
		return nil
	}
	if err != nil {
		Logger.Error("Error checking storage directory", "which", label, "path", path, "error", err)
		return err
	}
	if !info.IsDir() {
		Logger.Error("Storage path exists but is not a directory", "which", label, "path", path)
		return fmt.Errorf("%s path is not a directory: %s", label, path)
	}
	return nil
}
