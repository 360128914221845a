package engine

import (
	"github.com/folium-app/folium/config"
	"github.com/folium-app/folium/database"
	"github.com/folium-app/folium/engine/pdfrenderer"
	"github.com/folium-app/folium/mupdf"
	"github.com/labstack/echo/v4"
)

// ServerHandler carries the shared state every route handler needs
type ServerHandler struct {
	DB           database.Repository
	Echo         *echo.Echo
	ServerConfig config.ServerConfig
	Renderer     pdfrenderer.Renderer
	MuPDF        *mupdf.Context  // nil unless the binary carries the native binding
	Services     *ServiceClients // remote OCR and render services, lazily created
	Exec         CommandExecutor // external command runner, tests substitute a fake
}

// InitializeRenderer sets up the page rendering backend named in the server
// config. When the binary carries the native MuPDF binding a shared context
// is opened too, which unlocks structured text extraction and in-memory
// upload validation.
func (h *ServerHandler) InitializeRenderer() error {
	if pdfrenderer.Logger == nil {
		pdfrenderer.Logger = Logger
	}
	renderer, err := pdfrenderer.NewRenderer(h.ServerConfig.Renderer, h.ServerConfig.RenderDPI)
	if err != nil {
		return err
	}
	h.Renderer = renderer

	if mupdf.Available() && h.MuPDF == nil {
		ctx, err := mupdf.NewContext()
		if err != nil {
			Logger.Warn("Unable to create MuPDF context, structured text disabled", "error", err)
		} else {
			h.MuPDF = ctx
		}
	}
	return nil
}

// getRenderer returns the configured renderer, initializing it on first use
// so handlers work even when the caller skipped InitializeRenderer
func (h *ServerHandler) getRenderer() (pdfrenderer.Renderer, error) {
	if h.Renderer == nil {
		if err := h.InitializeRenderer(); err != nil {
			return nil, err
		}
	}
	return h.Renderer, nil
}

// AddDocumentViewRoutes registers a direct file route for every stored
// document so existing URLs work immediately after a restart
func (h *ServerHandler) AddDocumentViewRoutes() error {
	documents, err := database.FetchAllDocuments(h.DB)
	if err != nil {
		return err
	}
	for _, document := range *documents {
		h.Echo.File("/document/view/"+document.ULID.String(), document.Path)
	}
	return nil
}
