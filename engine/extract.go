package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/ledongthuc/pdf"
)

// CommandExecutor runs external commands. Tests substitute a fake so the
// OCR path can run without a tesseract install.
type CommandExecutor interface {
	Run(name string, args ...string) (output string, err error)
}

type execCommandExecutor struct{}

func (execCommandExecutor) Run(name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	Logger.Debug("Command run was", "command", cmd.String())
	return buf.String(), err
}

// executor returns the configured command runner, defaulting to os/exec
func (h *ServerHandler) executor() CommandExecutor {
	if h.Exec == nil {
		h.Exec = execCommandExecutor{}
	}
	return h.Exec
}

// services returns the remote service clients, lazily built from the config
func (h *ServerHandler) services() *ServiceClients {
	if h.Services == nil {
		h.Services = NewServiceClients(
			h.ServerConfig.TesseractServiceURL,
			h.ServerConfig.PDFServiceURL)
	}
	return h.Services
}

// extractText extracts text from the document based on file type
func (h *ServerHandler) extractText(filePath string) (string, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".pdf":
		fullText, err := h.extractPDFText(filePath)
		if err != nil || fullText == "" {
			// Scanned documents carry no text layer, render and OCR them
			if err != nil {
				Logger.Info("PDF text extraction failed, sending to OCR", "filePath", filePath, "error", err)
			}
			ocrText, ocrErr := h.convertToImage(filePath)
			if ocrErr != nil {
				return "", fmt.Errorf("OCR processing failed: %w", ocrErr)
			}
			return ocrText, nil
		}
		return fullText, nil

	case ".tiff", ".jpg", ".jpeg", ".png":
		fullText, err := h.ocrProcessing(filePath)
		if err != nil {
			return "", fmt.Errorf("OCR processing failed: %w", err)
		}
		return fullText, nil

	case ".txt", ".rtf":
		// For text files, read content directly
		content, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("failed to read text file: %w", err)
		}
		return string(content), nil

	case ".doc", ".docx", ".odf":
		// These are not currently supported for text extraction
		return "", fmt.Errorf("text extraction not supported for %s files", filepath.Ext(filePath))

	default:
		return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(filePath))
	}
}

// extractPDFText pulls the text layer out of a PDF. The native binding is
// preferred when the binary carries it, then the pure Go parser, then a
// configured remote PDF service.
func (h *ServerHandler) extractPDFText(filePath string) (string, error) {
	if h.MuPDF != nil {
		fullText, err := h.mupdfText(filePath)
		if err == nil && fullText != "" {
			Logger.Info("Text processed from PDF with native renderer", "fileName", filepath.Base(filePath))
			return fullText, nil
		}
		if err != nil {
			Logger.Debug("Native text extraction failed, trying pure Go parser", "filePath", filePath, "error", err)
		}
	}

	fullText, err := pdfProcessing(filePath)
	if err == nil {
		return fullText, nil
	}

	if h.ServerConfig.PDFServiceURL != "" {
		remoteText, remoteErr := h.services().CallPDFExtractText(filePath)
		if remoteErr == nil && remoteText != "" {
			Logger.Info("Text processed from PDF by remote service", "fileName", filepath.Base(filePath))
			return remoteText, nil
		}
		if remoteErr != nil {
			Logger.Warn("Remote PDF text extraction failed", "filePath", filePath, "error", remoteErr)
		}
	}

	return "", err
}

// mupdfText reads the text layer page by page through the native binding
func (h *ServerHandler) mupdfText(filePath string) (string, error) {
	doc, err := h.MuPDF.OpenDocument(filePath)
	if err != nil {
		return "", err
	}
	defer doc.Drop()

	pageCount, err := doc.CountPages()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for pageNum := 0; pageNum < pageCount; pageNum++ {
		page, err := doc.LoadPage(pageNum)
		if err != nil {
			return "", err
		}
		stext, err := page.StructuredText(nil)
		if err != nil {
			page.Drop()
			return "", err
		}
		pageText, err := stext.Text()
		stext.Drop()
		page.Drop()
		if err != nil {
			return "", err
		}
		sb.WriteString(pageText)
		if !strings.HasSuffix(pageText, "\n") {
			sb.WriteString("\n")
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

// pdfProcessing extracts the text layer with the pure Go parser. The parser
// panics on some malformed files, the recover turns that into an error so
// the caller can fall back to OCR.
func pdfProcessing(file string) (fullText string, err error) {
	fileName := filepath.Base(file)
	defer func() {
		if r := recover(); r != nil {
			Logger.Error("PDF parser panicked", "fileName", fileName, "panic", r)
			fullText = ""
			err = fmt.Errorf("pdf parse panic: %v", r)
		}
	}()

	Logger.Debug("Working on current file", "fileName", fileName)
	pdfFile, result, err := pdf.Open(file)
	if err != nil {
		Logger.Error("Unable to open PDF", "fileName", fileName)
		return "", err
	}
	defer pdfFile.Close()

	var buf bytes.Buffer
	textReader, err := result.GetPlainText()
	if err != nil {
		Logger.Error("Unable to convert PDF to text", "fileName", fileName)
		return "", err
	}
	buf.ReadFrom(textReader)
	fullText = buf.String() //writing from the buffer to the string
	if fullText == "" {
		err = errors.New("PDF text result is empty")
		Logger.Info("PDF text result is empty, sending to OCR", "fileName", fileName)
		return "", err
	}
	Logger.Info("Text processed from PDF without OCR", "fileName", fileName)
	return fullText, nil
}

// convertToImage renders the PDF to a single tall PNG and runs OCR over it.
// A configured remote PDF service takes over the rendering when present.
func (h *ServerHandler) convertToImage(fileName string) (string, error) {
	var err error
	Logger.Info("Converting PDF to image for OCR", "fileName", fileName)

	// Create output image path
	imageName := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	imageName = filepath.Base(imageName + ".png")
	imageName = filepath.Join("temp", imageName)
	imageName, err = filepath.Abs(imageName)
	if err != nil {
		Logger.Error("Unable to build absolute path for temporary OCR image", "fileName", fileName, "error", err)
		return "", err
	}

	err = os.MkdirAll(filepath.Dir(imageName), os.ModePerm)
	if err != nil {
		Logger.Error("Unable to create temp folder for OCR image (permissions?)", "dir", filepath.Dir(imageName), "error", err)
		return "", err
	}

	fileName = filepath.Clean(fileName)
	imageName = filepath.Clean(imageName)
	Logger.Info("Creating temp image for OCR at", "imageName", imageName)

	// Check if file exists and is readable
	if _, err := os.Stat(fileName); err != nil {
		Logger.Error("Unable to access PDF file", "fileName", fileName, "error", err)
		return "", err
	}

	if h.ServerConfig.PDFServiceURL != "" {
		err = h.services().CallPDFToImage(fileName, imageName)
		if err != nil {
			Logger.Warn("Remote PDF render failed, rendering locally", "fileName", fileName, "error", err)
		} else {
			return h.ocrProcessing(imageName)
		}
	}

	renderer, err := h.getRenderer()
	if err != nil {
		return "", err
	}
	images, err := renderer.RenderPDF(fileName)
	if err != nil {
		Logger.Error("Unable to render PDF document", "fileName", fileName, "error", err)
		return "", err
	}
	if len(images) == 0 {
		err := fmt.Errorf("no pages could be rendered from PDF")
		Logger.Error("Failed to render any pages", "fileName", fileName)
		return "", err
	}

	combinedImage := stitchPages(images)

	// Resize to 1024px width while maintaining aspect ratio, sharpen
	// slightly so small glyphs survive the resample
	resizedImage := imaging.Resize(combinedImage, 1024, 0, imaging.Lanczos)
	processedImage := imaging.Sharpen(resizedImage, 1.0)

	outFile, err := os.Create(imageName)
	if err != nil {
		Logger.Error("Unable to create output image file", "imageName", imageName, "error", err)
		return "", err
	}
	defer outFile.Close()

	err = png.Encode(outFile, processedImage)
	if err != nil {
		Logger.Error("Unable to encode PNG image", "imageName", imageName, "error", err)
		return "", err
	}

	Logger.Info("Successfully converted PDF to image", "imageName", imageName)
	return h.ocrProcessing(imageName)
}

// stitchPages stacks page images vertically into one tall image
func stitchPages(images []image.Image) image.Image {
	if len(images) == 1 {
		return images[0]
	}
	totalHeight := 0
	maxWidth := 0
	for _, img := range images {
		bounds := img.Bounds()
		totalHeight += bounds.Dy()
		if bounds.Dx() > maxWidth {
			maxWidth = bounds.Dx()
		}
	}
	combined := imaging.New(maxWidth, totalHeight, color.White)
	currentY := 0
	for _, img := range images {
		combined = imaging.Paste(combined, img, image.Pt(0, currentY))
		currentY += img.Bounds().Dy()
	}
	return combined
}

// ocrProcessing runs OCR over an image file. A configured remote Tesseract
// service is preferred, then the local tesseract binary. Documents are
// stored even when OCR fails, so failures come back as empty text rather
// than errors.
func (h *ServerHandler) ocrProcessing(imageName string) (string, error) {
	if h.ServerConfig.TesseractServiceURL != "" {
		fullText, err := h.services().CallOCRService(imageName)
		if err == nil {
			return fullText, nil
		}
		Logger.Warn("Remote OCR service failed, trying local tesseract", "imageName", imageName, "error", err)
	}

	// Check if Tesseract is configured
	if h.ServerConfig.TesseractPath == "" {
		Logger.Info("Tesseract not configured, skipping OCR processing", "imageName", imageName)
		return "", nil
	}

	textFileName := filepath.Base(imageName)                                    //creating the path for the .txt that tesseract will output with the OCR results.
	textFileName = strings.TrimSuffix(textFileName, filepath.Ext(textFileName)) //just get the name, no extension
	fullpath := filepath.Join("temp", textFileName)
	fullpath, err := filepath.Abs(fullpath)
	if err != nil {
		Logger.Error("Unable to create full path for temp OCR file", "fullpath", fullpath)
	}
	textFileName = filepath.Clean(fullpath)
	if err := os.MkdirAll(filepath.Dir(textFileName), os.ModePerm); err != nil {
		Logger.Warn("Unable to create temp folder for OCR output, storing document without text", "dir", filepath.Dir(textFileName), "error", err)
		return "", nil
	}

	// tesseract appends .txt to the output name it is given
	output, err := h.executor().Run(h.ServerConfig.TesseractPath, imageName, textFileName)
	if err != nil {
		Logger.Warn("Tesseract encountered error when attempting to OCR image, storing document without text", "imageName", imageName, "detail", output)
		return "", nil
	}
	fileBytes, err := os.ReadFile(textFileName + ".txt")
	if err != nil {
		Logger.Warn("Unable to read OCR output file, storing document without text", "textFile", textFileName+".txt", "error", err)
		return "", nil
	}
	fullText := string(fileBytes)
	if fullText == "" {
		Logger.Info("OCR returned empty string, document may have no recognizable text", "imageName", imageName)
	}
	return fullText, nil
}

// documentPageData counts pages and reads the outline for a paged document.
// The count is -1 when the renderer cannot open the file and 0 for formats
// that are not paged. The outline comes back JSON encoded for storage,
// empty when the document has none.
func (h *ServerHandler) documentPageData(filePath string) (int, string) {
	if !strings.EqualFold(filepath.Ext(filePath), ".pdf") {
		return 0, ""
	}
	renderer, err := h.getRenderer()
	if err != nil {
		Logger.Warn("Renderer unavailable for page data", "filePath", filePath, "error", err)
		return -1, ""
	}
	pageCount, err := renderer.PageCount(filePath)
	if err != nil {
		Logger.Warn("Unable to count document pages", "filePath", filePath, "error", err)
		return -1, ""
	}
	outline, err := renderer.Outline(filePath)
	if err != nil {
		Logger.Warn("Unable to read document outline", "filePath", filePath, "error", err)
		return pageCount, ""
	}
	if len(outline) == 0 {
		return pageCount, ""
	}
	outlineJSON, err := json.Marshal(outline)
	if err != nil {
		Logger.Warn("Unable to encode document outline", "filePath", filePath, "error", err)
		return pageCount, ""
	}
	return pageCount, string(outlineJSON)
}
