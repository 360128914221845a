package pdfrenderer

import (
	"image"
	"log/slog"
	"strings"

	"github.com/folium-app/folium/mupdf"
)

// Logger is injected by the engine at startup
var Logger *slog.Logger

// DefaultDPI is used when the configured render DPI is missing or invalid
const DefaultDPI = 150

// Renderer defines the interface for PDF to image conversion
type Renderer interface {
	// RenderPDF converts all pages of a PDF file to images
	// Returns a slice of images, one per page
	RenderPDF(filename string) ([]image.Image, error)

	// RenderPage converts a single zero-based page to an image
	RenderPage(filename string, pageIndex int) (image.Image, error)

	// PageCount returns the number of pages in the file
	PageCount(filename string) (int, error)

	// Outline returns the document outline flattened depth-first.
	// A document without an outline yields an empty slice.
	Outline(filename string) ([]mupdf.OutlineItem, error)

	// Name identifies the rendering backend
	Name() string

	// Close cleans up any resources used by the renderer
	Close() error
}

// NewRenderer selects a rendering backend by name. Unknown names and
// backends that fail to initialize fall back to fitz.
func NewRenderer(backend string, dpi int) (Renderer, error) {
	if Logger == nil {
		Logger = slog.Default()
	}
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "fitz":
		return NewFitzRenderer(dpi)
	case "pdfium":
		renderer, err := NewPDFiumRenderer(dpi)
		if err != nil {
			Logger.Warn("PDFium renderer unavailable, falling back to fitz", "error", err)
			return NewFitzRenderer(dpi)
		}
		return renderer, nil
	case "mupdf":
		renderer, err := NewMuPDFRenderer(dpi)
		if err != nil {
			Logger.Warn("MuPDF renderer unavailable, falling back to fitz", "error", err)
			return NewFitzRenderer(dpi)
		}
		return renderer, nil
	default:
		Logger.Warn("Unknown renderer backend, falling back to fitz", "backend", backend)
		return NewFitzRenderer(dpi)
	}
}
