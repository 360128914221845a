package pdfrenderer

import (
	"fmt"
	"image"
	"os"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/responses"
	"github.com/klippa-app/go-pdfium/webassembly"

	"github.com/folium-app/folium/mupdf"
)

// PDFiumRenderer implements PDF rendering using go-pdfium with WebAssembly (pure Go, no CGo)
type PDFiumRenderer struct {
	pool     pdfium.Pool
	instance pdfium.Pdfium
	dpi      int
}

// NewPDFiumRenderer creates a new PDFium-based PDF renderer using WebAssembly
func NewPDFiumRenderer(dpi int) (*PDFiumRenderer, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	// One worker is enough, rendering happens on a single goroutine
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  1,
		MaxTotal: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize PDFium WebAssembly: %w", err)
	}

	instance, err := pool.GetInstance(30 * time.Second)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("acquire PDFium instance: %w", err)
	}

	return &PDFiumRenderer{pool: pool, instance: instance, dpi: dpi}, nil
}

// openDocument reads a PDF into memory and opens it. The caller must invoke
// the returned close function once done with the document.
func (r *PDFiumRenderer) openDocument(filename string) (*responses.OpenDocument, func(), error) {
	pdfBytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to read PDF file: %w", err)
	}

	doc, err := r.instance.OpenDocument(&requests.OpenDocument{
		File: &pdfBytes,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open PDF document: %w", err)
	}

	closeDoc := func() {
		r.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
			Document: doc.Document,
		})
	}
	return doc, closeDoc, nil
}

// pageCount asks PDFium how many pages an open document has.
func (r *PDFiumRenderer) pageCount(doc *responses.OpenDocument) (int, error) {
	resp, err := r.instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: doc.Document,
	})
	if err != nil {
		return 0, fmt.Errorf("unable to get page count: %w", err)
	}
	return resp.PageCount, nil
}

// RenderPDF converts all pages of a PDF file to images using go-pdfium WebAssembly
func (r *PDFiumRenderer) RenderPDF(filename string) ([]image.Image, error) {
	doc, closeDoc, err := r.openDocument(filename)
	if err != nil {
		return nil, err
	}
	defer closeDoc()

	numPages, err := r.pageCount(doc)
	if err != nil {
		return nil, err
	}
	images := make([]image.Image, 0, numPages)

	for pageIndex := 0; pageIndex < numPages; pageIndex++ {
		img, err := r.renderPage(doc, pageIndex)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}

	return images, nil
}

func (r *PDFiumRenderer) renderPage(doc *responses.OpenDocument, pageIndex int) (image.Image, error) {
	pageRender, err := r.instance.RenderPageInDPI(&requests.RenderPageInDPI{
		DPI: r.dpi,
		Page: requests.Page{
			ByIndex: &requests.PageByIndex{
				Document: doc.Document,
				Index:    pageIndex,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to render page %d: %w", pageIndex, err)
	}

	// Extract the image, then release the WebAssembly buffer backing it
	img := pageRender.Result.Image
	pageRender.Cleanup()

	return img, nil
}

// RenderPage converts a single zero-based page of a PDF file to an image
func (r *PDFiumRenderer) RenderPage(filename string, pageIndex int) (image.Image, error) {
	doc, closeDoc, err := r.openDocument(filename)
	if err != nil {
		return nil, err
	}
	defer closeDoc()

	return r.renderPage(doc, pageIndex)
}

// PageCount returns the number of pages in the file
func (r *PDFiumRenderer) PageCount(filename string) (int, error) {
	doc, closeDoc, err := r.openDocument(filename)
	if err != nil {
		return 0, err
	}
	defer closeDoc()

	return r.pageCount(doc)
}

// Outline returns the document outline from the PDF bookmark tree
func (r *PDFiumRenderer) Outline(filename string) ([]mupdf.OutlineItem, error) {
	doc, closeDoc, err := r.openDocument(filename)
	if err != nil {
		return nil, err
	}
	defer closeDoc()

	bookmarks, err := r.instance.GetBookmarks(&requests.GetBookmarks{
		Document: doc.Document,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to get bookmarks: %w", err)
	}

	items := []mupdf.OutlineItem{}
	appendBookmarks(&items, bookmarks.Bookmarks, 0)
	return items, nil
}

func appendBookmarks(items *[]mupdf.OutlineItem, bookmarks []responses.GetBookmarksBookmark, depth int) {
	for _, bookmark := range bookmarks {
		item := mupdf.OutlineItem{
			Title: bookmark.Title,
			Page:  -1,
			Depth: depth,
		}
		if bookmark.DestInfo != nil {
			item.Page = bookmark.DestInfo.PageIndex
		} else if bookmark.ActionInfo != nil && bookmark.ActionInfo.DestInfo != nil {
			item.Page = bookmark.ActionInfo.DestInfo.PageIndex
		}
		if bookmark.ActionInfo != nil && bookmark.ActionInfo.URIPath != nil {
			item.URI = *bookmark.ActionInfo.URIPath
		}
		*items = append(*items, item)
		appendBookmarks(items, bookmark.Children, depth+1)
	}
}

// Name identifies the rendering backend
func (r *PDFiumRenderer) Name() string {
	return "pdfium"
}

// Close releases the worker pool and its WebAssembly instances.
func (r *PDFiumRenderer) Close() error {
	r.instance = nil
	if r.pool != nil {
		r.pool.Close()
		r.pool = nil
	}
	return nil
}
