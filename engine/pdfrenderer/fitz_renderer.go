package pdfrenderer

import (
	"errors"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"

	"github.com/folium-app/folium/mupdf"
)

// FitzRenderer implements PDF rendering using go-fitz (requires CGo, ships
// its own MuPDF build)
type FitzRenderer struct {
	dpi int
}

// NewFitzRenderer creates a new Fitz-based PDF renderer
func NewFitzRenderer(dpi int) (*FitzRenderer, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &FitzRenderer{dpi: dpi}, nil
}

// RenderPDF converts all pages of a PDF file to images using go-fitz
func (r *FitzRenderer) RenderPDF(filename string) ([]image.Image, error) {
	doc, err := fitz.New(filename)
	if err != nil {
		return nil, fmt.Errorf("unable to open PDF document: %w", err)
	}
	defer doc.Close()

	numPages := doc.NumPage()
	images := make([]image.Image, 0, numPages)

	for pageNum := 0; pageNum < numPages; pageNum++ {
		img, err := doc.ImageDPI(pageNum, float64(r.dpi))
		if err != nil {
			return nil, fmt.Errorf("unable to render page %d: %w", pageNum, err)
		}
		images = append(images, img)
	}

	return images, nil
}

// RenderPage converts a single zero-based page of a PDF file to an image
func (r *FitzRenderer) RenderPage(filename string, pageIndex int) (image.Image, error) {
	doc, err := fitz.New(filename)
	if err != nil {
		return nil, fmt.Errorf("unable to open PDF document: %w", err)
	}
	defer doc.Close()

	if pageIndex < 0 || pageIndex >= doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range, document has %d pages", pageIndex, doc.NumPage())
	}

	img, err := doc.ImageDPI(pageIndex, float64(r.dpi))
	if err != nil {
		return nil, fmt.Errorf("unable to render page %d: %w", pageIndex, err)
	}
	return img, nil
}

// PageCount returns the number of pages in the file
func (r *FitzRenderer) PageCount(filename string) (int, error) {
	doc, err := fitz.New(filename)
	if err != nil {
		return 0, fmt.Errorf("unable to open PDF document: %w", err)
	}
	defer doc.Close()

	return doc.NumPage(), nil
}

// Outline returns the document outline from the go-fitz table of contents
func (r *FitzRenderer) Outline(filename string) ([]mupdf.OutlineItem, error) {
	doc, err := fitz.New(filename)
	if err != nil {
		return nil, fmt.Errorf("unable to open PDF document: %w", err)
	}
	defer doc.Close()

	toc, err := doc.ToC()
	if err != nil {
		// go-fitz reports a document without an outline as an error
		if errors.Is(err, fitz.ErrLoadOutline) {
			return []mupdf.OutlineItem{}, nil
		}
		return nil, fmt.Errorf("unable to load outline: %w", err)
	}

	items := make([]mupdf.OutlineItem, 0, len(toc))
	for _, entry := range toc {
		depth := entry.Level - 1
		if depth < 0 {
			depth = 0
		}
		items = append(items, mupdf.OutlineItem{
			Title: entry.Title,
			URI:   entry.URI,
			Page:  entry.Page,
			Depth: depth,
		})
	}
	return items, nil
}

// Name identifies the rendering backend
func (r *FitzRenderer) Name() string {
	return "fitz"
}

// Close cleans up resources (no-op for Fitz renderer as doc is closed per-render)
func (r *FitzRenderer) Close() error {
	return nil
}
