//go:build !mupdf || !cgo

package mupdf

import (
	"fmt"
	"image"
)

// Available reports whether this binary was built with MuPDF support.
func Available() bool {
	return false
}

// Context is an execution context for MuPDF operations. This build carries
// no MuPDF support, so every operation fails with ErrNotAvailable.
type Context struct{}

// NewContext fails: the binary was built without the mupdf tag.
func NewContext() (*Context, error) {
	return nil, fmt.Errorf("new context: %w", ErrNotAvailable)
}

// Drop releases the context. Safe to call on a nil context.
func (c *Context) Drop() {}

// Document is an open document handle.
type Document struct{}

// OpenDocument opens the document at path.
func (c *Context) OpenDocument(path string) (*Document, error) {
	return nil, fmt.Errorf("open document %q: %w", path, ErrNotAvailable)
}

// OpenDocumentFromMemory opens a document from a byte slice.
func (c *Context) OpenDocumentFromMemory(kind string, data []byte) (*Document, error) {
	return nil, fmt.Errorf("open %s document from memory: %w", kind, ErrNotAvailable)
}

// CountPages returns the number of pages.
func (d *Document) CountPages() (int, error) {
	return -1, fmt.Errorf("count pages: %w", ErrNotAvailable)
}

// LoadPage loads the zero-based page number.
func (d *Document) LoadPage(number int) (*Page, error) {
	return nil, fmt.Errorf("load page %d: %w", number, ErrNotAvailable)
}

// Outline returns the document outline flattened depth-first.
func (d *Document) Outline() ([]OutlineItem, error) {
	return nil, fmt.Errorf("load outline: %w", ErrNotAvailable)
}

// Drop releases the document.
func (d *Document) Drop() {}

// Page is a loaded page handle.
type Page struct{}

// Bounds returns the page size in points.
func (p *Page) Bounds() (width, height float64, err error) {
	return 0, 0, fmt.Errorf("page bounds: %w", ErrNotAvailable)
}

// Image renders the page to an RGB image.
func (p *Page) Image(scale float64) (image.Image, error) {
	return nil, fmt.Errorf("render page: %w", ErrNotAvailable)
}

// StructuredText extracts the page's text with layout.
func (p *Page) StructuredText(opts *STextOptions) (*STextPage, error) {
	return nil, fmt.Errorf("structured text: %w", ErrNotAvailable)
}

// Drop releases the page.
func (p *Page) Drop() {}

// STextPage is a structured text page handle.
type STextPage struct{}

// JSON exports the structured text in MuPDF's JSON block format.
func (s *STextPage) JSON() ([]byte, error) {
	return nil, fmt.Errorf("structured text json: %w", ErrNotAvailable)
}

// Text exports the structured text as plain text.
func (s *STextPage) Text() (string, error) {
	return "", fmt.Errorf("structured text: %w", ErrNotAvailable)
}

// Drop releases the structured text page.
func (s *STextPage) Drop() {}
