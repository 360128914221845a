package engine

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// sidecarTimeout covers OCR runs on large scans.
const sidecarTimeout = 120 * time.Second

// ServiceClients talks to the optional OCR and PDF sidecar services.
type ServiceClients struct {
	TesseractURL string
	PDFURL       string
	HTTPClient   *http.Client
}

func NewServiceClients(tesseractURL, pdfURL string) *ServiceClients {
	return &ServiceClients{
		TesseractURL: tesseractURL,
		PDFURL:       pdfURL,
		HTTPClient:   &http.Client{Timeout: sidecarTimeout},
	}
}

// textServiceResponse is the shape both sidecars use for text endpoints
type textServiceResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

type imageServiceResponse struct {
	Image string `json:"image"` // base64 encoded PNG
	Error string `json:"error,omitempty"`
}

// multipartFileBody packages a local file as a multipart form body
func multipartFileBody(fieldName, filePath string) (*bytes.Buffer, string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", filePath, err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(fieldName, filepath.Base(filePath))
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("copy file data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}

// postFile uploads a local file as a multipart form to a service endpoint and
// decodes the JSON response into result.
func (sc *ServiceClients) postFile(url string, fieldName string, filePath string, result any) error {
	body, contentType, err := multipartFileBody(fieldName, filePath)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := sc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("call service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("service returned status %d: %s", resp.StatusCode, detail)
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// CallOCRService sends an image to the Tesseract sidecar and returns the text.
func (sc *ServiceClients) CallOCRService(imagePath string) (string, error) {
	var ocrResp textServiceResponse
	if err := sc.postFile(sc.TesseractURL+"/ocr", "image", imagePath, &ocrResp); err != nil {
		return "", err
	}
	if ocrResp.Error != "" {
		return "", fmt.Errorf("OCR service error: %s", ocrResp.Error)
	}
	return ocrResp.Text, nil
}

// CallPDFExtractText sends a PDF to the PDF sidecar and returns the text.
func (sc *ServiceClients) CallPDFExtractText(pdfPath string) (string, error) {
	var pdfResp textServiceResponse
	if err := sc.postFile(sc.PDFURL+"/pdf/extract-text", "pdf", pdfPath, &pdfResp); err != nil {
		return "", err
	}
	if pdfResp.Error != "" {
		return "", fmt.Errorf("PDF service error: %s", pdfResp.Error)
	}
	return pdfResp.Text, nil
}

// CallPDFToImage renders a PDF page through the sidecar and writes the
// returned PNG to disk.
func (sc *ServiceClients) CallPDFToImage(pdfPath string, outputImagePath string) error {
	var pdfResp imageServiceResponse
	if err := sc.postFile(sc.PDFURL+"/pdf/to-image", "pdf", pdfPath, &pdfResp); err != nil {
		return err
	}
	if pdfResp.Error != "" {
		return fmt.Errorf("PDF service error: %s", pdfResp.Error)
	}

	imageData, err := base64.StdEncoding.DecodeString(pdfResp.Image)
	if err != nil {
		return fmt.Errorf("decode base64 image: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outputImagePath), os.ModePerm); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(outputImagePath, imageData, 0644); err != nil {
		return fmt.Errorf("write image file: %w", err)
	}
	return nil
}
