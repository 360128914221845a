package main

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/ledongthuc/pdf"
)

// Sidecar service for PDF work the main server offloads: text layer
// extraction and rendering to a single image for OCR. The main server
// reaches it through PDF_SERVICE_URL.

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type extractTextResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

type toImageResponse struct {
	Image string `json:"image"` // base64 encoded PNG
	Error string `json:"error,omitempty"`
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8002"
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.BodyLimit("32M"))

	e.GET("/health", healthCheck)
	e.POST("/pdf/extract-text", extractTextHandler)
	e.POST("/pdf/to-image", toImageHandler)

	slog.Info("Starting PDF service", "port", port)
	if err := e.Start(":" + port); err != nil {
		slog.Error("PDF service stopped", "error", err)
		os.Exit(1)
	}
}

func healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "healthy", Service: "pdf-service"})
}

// readUpload pulls the named multipart file out of the request.
func readUpload(c echo.Context, field string) ([]byte, string, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, "", fmt.Errorf("no %s file provided", field)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, fileHeader.Filename, nil
}

func extractTextHandler(c echo.Context) error {
	pdfData, fileName, err := readUpload(c, "pdf")
	if err != nil {
		return c.JSON(http.StatusBadRequest, extractTextResponse{Error: err.Error()})
	}

	slog.Info("Extracting text", "fileName", fileName, "size", len(pdfData))
	text, err := extractText(pdfData)
	if err != nil {
		slog.Error("Text extraction failed", "fileName", fileName, "error", err)
		return c.JSON(http.StatusInternalServerError, extractTextResponse{Error: fmt.Sprintf("text extraction failed: %v", err)})
	}
	return c.JSON(http.StatusOK, extractTextResponse{Text: text})
}

func toImageHandler(c echo.Context) error {
	pdfData, fileName, err := readUpload(c, "pdf")
	if err != nil {
		return c.JSON(http.StatusBadRequest, toImageResponse{Error: err.Error()})
	}

	slog.Info("Rendering PDF to image", "fileName", fileName, "size", len(pdfData))
	encoded, err := convertToImage(pdfData)
	if err != nil {
		slog.Error("Image conversion failed", "fileName", fileName, "error", err)
		return c.JSON(http.StatusInternalServerError, toImageResponse{Error: fmt.Sprintf("image conversion failed: %v", err)})
	}
	return c.JSON(http.StatusOK, toImageResponse{Image: encoded})
}

// extractText reads the text layer with the pure Go parser. The parser
// panics on some malformed files, the recover turns that into an error.
func extractText(pdfData []byte) (fullText string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parse panic: %v", r)
		}
	}()

	pdfReader, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= pdfReader.NumPage(); pageNum++ {
		page := pdfReader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			slog.Warn("Skipping unreadable page", "page", pageNum, "error", err)
			continue
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

// convertToImage renders every page and stacks them into one tall PNG,
// sized down to 1024px wide for the OCR engine.
func convertToImage(pdfData []byte) (string, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer doc.Close()

	numPages := doc.NumPage()
	if numPages == 0 {
		return "", errors.New("pdf has no pages")
	}

	pages := make([]image.Image, 0, numPages)
	for pageNum := 0; pageNum < numPages; pageNum++ {
		img, err := doc.Image(pageNum)
		if err != nil {
			return "", fmt.Errorf("rendering page %d: %w", pageNum, err)
		}
		pages = append(pages, img)
	}

	combined := stitchPages(pages)
	resized := imaging.Resize(combined, 1024, 0, imaging.Lanczos)
	sharpened := imaging.Sharpen(resized, 0.5)

	var buf bytes.Buffer
	if err := png.Encode(&buf, sharpened); err != nil {
		return "", fmt.Errorf("encoding png: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// stitchPages stacks the page images vertically on a white canvas. Pages
// narrower than the widest one get white margins instead of transparency.
func stitchPages(pages []image.Image) image.Image {
	if len(pages) == 1 {
		return pages[0]
	}

	maxWidth, totalHeight := 0, 0
	for _, img := range pages {
		bounds := img.Bounds()
		totalHeight += bounds.Dy()
		if bounds.Dx() > maxWidth {
			maxWidth = bounds.Dx()
		}
	}

	combined := image.NewRGBA(image.Rect(0, 0, maxWidth, totalHeight))
	draw.Draw(combined, combined.Bounds(), image.White, image.Point{}, draw.Src)

	currentY := 0
	for _, img := range pages {
		bounds := img.Bounds()
		target := image.Rect(0, currentY, bounds.Dx(), currentY+bounds.Dy())
		draw.Draw(combined, target, img, bounds.Min, draw.Src)
		currentY += bounds.Dy()
	}
	return combined
}
