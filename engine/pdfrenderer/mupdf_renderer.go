package pdfrenderer

import (
	"fmt"
	"image"

	"github.com/folium-app/folium/mupdf"
)

// MuPDFRenderer implements PDF rendering over the native MuPDF binding.
// The constructor fails with mupdf.ErrNotAvailable when the binary was
// built without the mupdf build tag.
type MuPDFRenderer struct {
	ctx *mupdf.Context
	dpi int
}

// NewMuPDFRenderer creates a renderer backed by a native MuPDF context
func NewMuPDFRenderer(dpi int) (*MuPDFRenderer, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	ctx, err := mupdf.NewContext()
	if err != nil {
		return nil, err
	}
	return &MuPDFRenderer{ctx: ctx, dpi: dpi}, nil
}

// scale converts the configured DPI to the zoom factor MuPDF expects,
// relative to the 72 DPI PDF coordinate space
func (r *MuPDFRenderer) scale() float64 {
	return float64(r.dpi) / 72
}

// RenderPDF converts all pages of a PDF file to images
func (r *MuPDFRenderer) RenderPDF(filename string) ([]image.Image, error) {
	doc, err := r.ctx.OpenDocument(filename)
	if err != nil {
		return nil, err
	}
	defer doc.Drop()

	numPages, err := doc.CountPages()
	if err != nil {
		return nil, err
	}

	images := make([]image.Image, 0, numPages)
	for pageNum := 0; pageNum < numPages; pageNum++ {
		img, err := r.renderPage(doc, pageNum)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}

	return images, nil
}

func (r *MuPDFRenderer) renderPage(doc *mupdf.Document, pageNum int) (image.Image, error) {
	page, err := doc.LoadPage(pageNum)
	if err != nil {
		return nil, fmt.Errorf("unable to load page %d: %w", pageNum, err)
	}
	defer page.Drop()

	img, err := page.Image(r.scale())
	if err != nil {
		return nil, fmt.Errorf("unable to render page %d: %w", pageNum, err)
	}
	return img, nil
}

// RenderPage converts a single zero-based page of a PDF file to an image
func (r *MuPDFRenderer) RenderPage(filename string, pageIndex int) (image.Image, error) {
	doc, err := r.ctx.OpenDocument(filename)
	if err != nil {
		return nil, err
	}
	defer doc.Drop()

	return r.renderPage(doc, pageIndex)
}

// PageCount returns the number of pages in the file
func (r *MuPDFRenderer) PageCount(filename string) (int, error) {
	doc, err := r.ctx.OpenDocument(filename)
	if err != nil {
		return 0, err
	}
	defer doc.Drop()

	return doc.CountPages()
}

// Outline returns the document outline
func (r *MuPDFRenderer) Outline(filename string) ([]mupdf.OutlineItem, error) {
	doc, err := r.ctx.OpenDocument(filename)
	if err != nil {
		return nil, err
	}
	defer doc.Drop()

	return doc.Outline()
}

// Name identifies the rendering backend
func (r *MuPDFRenderer) Name() string {
	return "mupdf"
}

// Close releases the native MuPDF context
func (r *MuPDFRenderer) Close() error {
	if r.ctx != nil {
		r.ctx.Drop()
		r.ctx = nil
	}
	return nil
}
