//go:build mupdf && cgo

package mupdf

/*
#cgo CFLAGS: -I/usr/include -I/usr/local/include
#cgo LDFLAGS: -lmupdf -lmupdf-third -lm
#include <stdlib.h>
#include "shim.h"
*/
import "C"

import (
	"fmt"
	"image"
	"sync"
	"unsafe"
)

// Available reports whether this binary was built with MuPDF support.
func Available() bool {
	return true
}

// Context is an execution context for MuPDF operations. Calls made through
// one Context are serialized; dropping it invalidates handles created from
// it, so drop documents and pages first.
type Context struct {
	mu  sync.Mutex
	ctx *C.fz_context
}

// NewContext creates a context with the standard document handlers
// registered.
func NewContext() (*Context, error) {
	ctx := C.mu_new_context()
	if ctx == nil {
		return nil, fmt.Errorf("new context: %w", ErrContext)
	}
	return &Context{ctx: ctx}, nil
}

// Drop releases the context. Safe to call on a nil or already dropped
// context.
func (c *Context) Drop() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctx != nil {
		C.fz_drop_context(c.ctx)
		c.ctx = nil
	}
}

// Document is an open document handle.
type Document struct {
	c   *Context
	doc *C.fz_document
	// backing memory for documents opened from a byte slice; MuPDF reads
	// it lazily, so it lives until the document is dropped
	data unsafe.Pointer
}

// OpenDocument opens the document at path, detecting the format from the
// file content.
func (c *Context) OpenDocument(path string) (*Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctx == nil {
		return nil, fmt.Errorf("open document %q: %w", path, ErrClosed)
	}
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))
	doc := C.mu_open_document(c.ctx, cpath)
	if doc == nil {
		return nil, fmt.Errorf("open document %q: %w", path, ErrOpenDocument)
	}
	return &Document{c: c, doc: doc}, nil
}

// OpenDocumentFromMemory opens a document from a byte slice. kind names the
// format the bytes are expected to hold, as a file extension or MIME type
// such as "pdf" or "application/pdf".
func (c *Context) OpenDocumentFromMemory(kind string, data []byte) (*Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctx == nil {
		return nil, fmt.Errorf("open %s document from memory: %w", kind, ErrClosed)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("open %s document from memory: %w", kind, ErrOpenDocument)
	}
	cdata := C.CBytes(data)
	stm := C.mu_open_memory(c.ctx, (*C.uchar)(cdata), C.size_t(len(data)))
	if stm == nil {
		C.free(cdata)
		return nil, fmt.Errorf("open %s document from memory: %w", kind, ErrOpenDocument)
	}
	ckind := C.CString(kind)
	doc := C.mu_open_document_with_stream(c.ctx, ckind, stm)
	C.free(unsafe.Pointer(ckind))
	// the document keeps its own stream reference
	C.fz_drop_stream(c.ctx, stm)
	if doc == nil {
		C.free(cdata)
		return nil, fmt.Errorf("open %s document from memory: %w", kind, ErrOpenDocument)
	}
	return &Document{c: c, doc: doc, data: cdata}, nil
}

// CountPages returns the number of pages. The native count is passed
// through unchanged and is never negative on success.
func (d *Document) CountPages() (int, error) {
	if d == nil || d.doc == nil {
		return -1, fmt.Errorf("count pages: %w", ErrClosed)
	}
	d.c.mu.Lock()
	defer d.c.mu.Unlock()
	if d.c.ctx == nil {
		return -1, fmt.Errorf("count pages: %w", ErrClosed)
	}
	count := int(C.mu_count_pages(d.c.ctx, d.doc))
	if count < 0 {
		return -1, fmt.Errorf("count pages: %w", ErrCountPages)
	}
	return count, nil
}

// LoadPage loads the zero-based page number.
func (d *Document) LoadPage(number int) (*Page, error) {
	if d == nil || d.doc == nil {
		return nil, fmt.Errorf("load page %d: %w", number, ErrClosed)
	}
	d.c.mu.Lock()
	defer d.c.mu.Unlock()
	if d.c.ctx == nil {
		return nil, fmt.Errorf("load page %d: %w", number, ErrClosed)
	}
	page := C.mu_load_page(d.c.ctx, d.doc, C.int(number))
	if page == nil {
		return nil, fmt.Errorf("load page %d: %w", number, ErrLoadPage)
	}
	return &Page{c: d.c, page: page}, nil
}

// Outline returns the document outline flattened depth-first. A document
// without an outline yields an empty slice: the native call reports a
// missing outline and a failed load the same way.
func (d *Document) Outline() ([]OutlineItem, error) {
	if d == nil || d.doc == nil {
		return nil, fmt.Errorf("load outline: %w", ErrClosed)
	}
	d.c.mu.Lock()
	defer d.c.mu.Unlock()
	if d.c.ctx == nil {
		return nil, fmt.Errorf("load outline: %w", ErrClosed)
	}
	outline := C.mu_load_outline(d.c.ctx, d.doc)
	if outline == nil {
		return []OutlineItem{}, nil
	}
	defer C.fz_drop_outline(d.c.ctx, outline)
	items := []OutlineItem{}
	d.walkOutline(outline, 0, &items)
	return items, nil
}

func (d *Document) walkOutline(node *C.fz_outline, depth int, items *[]OutlineItem) {
	for ; node != nil; node = node.next {
		*items = append(*items, OutlineItem{
			Title: goString(node.title),
			URI:   goString(node.uri),
			Page:  int(C.mu_outline_page_number(d.c.ctx, d.doc, node)),
			Depth: depth,
		})
		if node.down != nil {
			d.walkOutline(node.down, depth+1, items)
		}
	}
}

// Drop releases the document and any memory backing it. Drop pages loaded
// from it first.
func (d *Document) Drop() {
	if d == nil || d.doc == nil {
		return
	}
	d.c.mu.Lock()
	defer d.c.mu.Unlock()
	if d.c.ctx != nil {
		C.fz_drop_document(d.c.ctx, d.doc)
	}
	d.doc = nil
	if d.data != nil {
		C.free(d.data)
		d.data = nil
	}
}

// Page is a loaded page handle.
type Page struct {
	c    *Context
	page *C.fz_page
}

// Bounds returns the page size in points.
func (p *Page) Bounds() (width, height float64, err error) {
	if p == nil || p.page == nil {
		return 0, 0, fmt.Errorf("page bounds: %w", ErrClosed)
	}
	p.c.mu.Lock()
	defer p.c.mu.Unlock()
	if p.c.ctx == nil {
		return 0, 0, fmt.Errorf("page bounds: %w", ErrClosed)
	}
	var w, h C.float
	if C.mu_bound_page(p.c.ctx, p.page, &w, &h) != 0 {
		return 0, 0, fmt.Errorf("page bounds: %w", ErrRender)
	}
	return float64(w), float64(h), nil
}

// Image renders the page to an RGB image. scale is a zoom factor where 1.0
// is 72 dpi.
func (p *Page) Image(scale float64) (image.Image, error) {
	if p == nil || p.page == nil {
		return nil, fmt.Errorf("render page: %w", ErrClosed)
	}
	p.c.mu.Lock()
	defer p.c.mu.Unlock()
	if p.c.ctx == nil {
		return nil, fmt.Errorf("render page: %w", ErrClosed)
	}
	pix := C.mu_new_pixmap_from_page(p.c.ctx, p.page, C.float(scale))
	if pix == nil {
		return nil, fmt.Errorf("render page: %w", ErrRender)
	}
	defer C.fz_drop_pixmap(p.c.ctx, pix)

	w := int(C.fz_pixmap_width(p.c.ctx, pix))
	h := int(C.fz_pixmap_height(p.c.ctx, pix))
	stride := int(C.fz_pixmap_stride(p.c.ctx, pix))
	samples := C.GoBytes(unsafe.Pointer(C.fz_pixmap_samples(p.c.ctx, pix)), C.int(stride*h))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := samples[y*stride:]
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			dst[x*4+0] = src[x*3+0]
			dst[x*4+1] = src[x*3+1]
			dst[x*4+2] = src[x*3+2]
			dst[x*4+3] = 0xff
		}
	}
	return img, nil
}

// StructuredText extracts the page's text with layout. A nil opts uses the
// library defaults.
func (p *Page) StructuredText(opts *STextOptions) (*STextPage, error) {
	if p == nil || p.page == nil {
		return nil, fmt.Errorf("structured text: %w", ErrClosed)
	}
	p.c.mu.Lock()
	defer p.c.mu.Unlock()
	if p.c.ctx == nil {
		return nil, fmt.Errorf("structured text: %w", ErrClosed)
	}
	var copts *C.fz_stext_options
	if opts != nil {
		var o C.fz_stext_options
		o.flags = C.int(opts.flags())
		o.scale = C.float(opts.scale())
		copts = &o
	}
	text := C.mu_new_stext_page_from_page(p.c.ctx, p.page, copts)
	if text == nil {
		return nil, fmt.Errorf("structured text: %w", ErrStructuredText)
	}
	return &STextPage{c: p.c, text: text}, nil
}

// Drop releases the page handle.
func (p *Page) Drop() {
	if p == nil || p.page == nil {
		return
	}
	p.c.mu.Lock()
	defer p.c.mu.Unlock()
	if p.c.ctx != nil {
		C.fz_drop_page(p.c.ctx, p.page)
	}
	p.page = nil
}

func (o *STextOptions) flags() int {
	f := 0
	if o.PreserveLigatures {
		f |= int(C.FZ_STEXT_PRESERVE_LIGATURES)
	}
	if o.PreserveWhitespace {
		f |= int(C.FZ_STEXT_PRESERVE_WHITESPACE)
	}
	if o.PreserveImages {
		f |= int(C.FZ_STEXT_PRESERVE_IMAGES)
	}
	if o.InhibitSpaces {
		f |= int(C.FZ_STEXT_INHIBIT_SPACES)
	}
	if o.Dehyphenate {
		f |= int(C.FZ_STEXT_DEHYPHENATE)
	}
	return f
}

// STextPage is a structured text page handle.
type STextPage struct {
	c    *Context
	text *C.fz_stext_page
}

// JSON exports the structured text in MuPDF's JSON block format, decodable
// with ParseSTextJSON.
func (s *STextPage) JSON() ([]byte, error) {
	if s == nil || s.text == nil {
		return nil, fmt.Errorf("structured text json: %w", ErrClosed)
	}
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if s.c.ctx == nil {
		return nil, fmt.Errorf("structured text json: %w", ErrClosed)
	}
	str := C.mu_stext_page_to_json(s.c.ctx, s.text, 1)
	if str == nil {
		return nil, fmt.Errorf("structured text json: %w", ErrStructuredText)
	}
	defer C.free(unsafe.Pointer(str))
	return []byte(C.GoString(str)), nil
}

// Text exports the structured text as plain text.
func (s *STextPage) Text() (string, error) {
	if s == nil || s.text == nil {
		return "", fmt.Errorf("structured text: %w", ErrClosed)
	}
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if s.c.ctx == nil {
		return "", fmt.Errorf("structured text: %w", ErrClosed)
	}
	str := C.mu_stext_page_to_text(s.c.ctx, s.text)
	if str == nil {
		return "", fmt.Errorf("structured text: %w", ErrStructuredText)
	}
	defer C.free(unsafe.Pointer(str))
	return C.GoString(str), nil
}

// Drop releases the structured text page handle.
func (s *STextPage) Drop() {
	if s == nil || s.text == nil {
		return
	}
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if s.c.ctx != nil {
		C.fz_drop_stext_page(s.c.ctx, s.text)
	}
	s.text = nil
}

func goString(s *C.char) string {
	if s == nil {
		return ""
	}
	return C.GoString(s)
}
