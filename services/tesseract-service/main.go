package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Sidecar service wrapping the tesseract CLI. The main server posts page
// images here through TESSERACT_SERVICE_URL when local OCR is unavailable.

type healthResponse struct {
	Status    string `json:"status"`
	Tesseract string `json:"tesseract"`
}

type ocrResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

type ocrService struct {
	tesseractPath string
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8001"
	}
	tesseractPath := os.Getenv("TESSERACT_PATH")
	if tesseractPath == "" {
		tesseractPath = "/usr/bin/tesseract"
	}
	if _, err := os.Stat(tesseractPath); err != nil {
		slog.Error("Tesseract not found", "path", tesseractPath, "error", err)
		os.Exit(1)
	}

	service := &ocrService{tesseractPath: tesseractPath}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.BodyLimit("32M"))

	e.GET("/health", service.healthCheck)
	e.POST("/ocr", service.handleOCR)

	slog.Info("Starting Tesseract OCR service", "port", port, "tesseract", tesseractPath)
	if err := e.Start(":" + port); err != nil {
		slog.Error("OCR service stopped", "error", err)
		os.Exit(1)
	}
}

func (s *ocrService) healthCheck(c echo.Context) error {
	output, err := exec.Command(s.tesseractPath, "--version").CombinedOutput()
	if err != nil {
		return c.JSON(http.StatusOK, healthResponse{Status: "healthy", Tesseract: fmt.Sprintf("error: %v", err)})
	}
	version, _, _ := strings.Cut(string(output), "\n")
	return c.JSON(http.StatusOK, healthResponse{Status: "healthy", Tesseract: version})
}

func (s *ocrService) handleOCR(c echo.Context) error {
	// The request ID ties the log lines of one OCR run together and
	// names its scratch directory.
	requestID := uuid.NewString()

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ocrResponse{Error: "no image file provided"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ocrResponse{Error: err.Error()})
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ocrResponse{Error: "failed to read image file"})
	}

	slog.Info("Processing OCR request", "requestID", requestID, "fileName", fileHeader.Filename, "size", len(imageData))
	text, err := s.runTesseract(requestID, imageData, fileHeader.Filename)
	if err != nil {
		slog.Error("OCR failed", "requestID", requestID, "error", err)
		return c.JSON(http.StatusInternalServerError, ocrResponse{Error: fmt.Sprintf("ocr failed: %v", err)})
	}
	slog.Info("OCR complete", "requestID", requestID, "chars", len(text))
	return c.JSON(http.StatusOK, ocrResponse{Text: text})
}

// runTesseract writes the image to scratch space, runs the CLI over it and
// reads back the text file tesseract produces.
func (s *ocrService) runTesseract(requestID string, imageData []byte, fileName string) (string, error) {
	tempDir, err := os.MkdirTemp("", "ocr-"+requestID+"-")
	if err != nil {
		return "", fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	ext := filepath.Ext(fileName)
	if ext == "" {
		ext = ".png"
	}
	inputPath := filepath.Join(tempDir, "input"+ext)
	if err := os.WriteFile(inputPath, imageData, 0644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}

	// Tesseract appends .txt to the output base itself.
	outputBase := filepath.Join(tempDir, "output")
	cmd := exec.Command(s.tesseractPath, inputPath, outputBase)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	textData, err := os.ReadFile(outputBase + ".txt")
	if err != nil {
		return "", fmt.Errorf("reading ocr output: %w", err)
	}
	return string(textData), nil
}
