package config

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Logger is the process-wide logger, set once by SetupServer or
// SetupFrontend before anything else runs.
var Logger *slog.Logger

// ServerConfig holds every knob the backend reads at startup.
type ServerConfig struct {
	ID                   int // row id when the config is persisted
	ListenAddrIP         string
	ListenAddrPort       string
	DatabaseType         string
	DatabaseHost         string
	DatabasePort         string
	DatabaseUser         string
	DatabasePassword     string
	DatabaseDbname       string
	DatabaseSslmode      string
	IngressPath          string
	IngressDelete        bool
	IngressMoveFolder    string
	IngressPreserve      bool
	DocumentPath         string
	NewDocumentFolder    string // absolute path to the new-document folder
	NewDocumentFolderRel string // the same folder relative to DocumentPath
	Renderer             string // pdf renderer backend: fitz, pdfium or mupdf
	RenderDPI            int
	WebUIPass            bool
	ClientUsername       string
	ClientPassword       string
	TesseractPath        string
	TesseractServiceURL  string
	PDFServiceURL        string
	UseReverseProxy      bool
	BaseURL              string
	IngressInterval      int
	FrontEndConfig
}

// FrontEndConfig holds the settings the web frontend needs.
type FrontEndConfig struct {
	NewDocumentNumber int
	ServerAPIURL      string
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}

func envInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}

// absPath turns a possibly relative path from the environment into an
// absolute slash-separated one. Abs only fails when the working directory
// is unreadable, so on error the input is returned as-is.
func absPath(logger *slog.Logger, path, what string) string {
	abs, err := filepath.Abs(filepath.ToSlash(path))
	if err != nil {
		logger.Error("Failed creating absolute path", "for", what, "path", path, "error", err)
		return path
	}
	return abs
}

// SetupServer loads the backend configuration from the environment and
// returns it together with the configured logger.
func SetupServer() (ServerConfig, *slog.Logger) {
	// Missing env files are fine, the defaults below cover everything
	_ = godotenv.Load(".env")
	_ = godotenv.Load("config.env")

	logger := setupLogging()
	Logger = logger

	cfg := ServerConfig{
		ListenAddrIP:   envString("SERVER_ADDR", ""),
		ListenAddrPort: envString("SERVER_PORT", "8000"),

		DatabaseType:     envString("DATABASE_TYPE", "postgres"),
		DatabaseHost:     envString("DATABASE_HOST", "localhost"),
		DatabasePort:     envString("DATABASE_PORT", "5432"),
		DatabaseUser:     envString("DATABASE_USER", "folium"),
		DatabasePassword: envString("DATABASE_PASSWORD", ""),
		DatabaseDbname:   envString("DATABASE_NAME", "folium"),
		DatabaseSslmode:  envString("DATABASE_SSLMODE", ""),

		IngressInterval: envInt("INGRESS_INTERVAL", 10),
		IngressPreserve: envBool("INGRESS_PRESERVE_STRUCTURE", true),
		IngressDelete:   envBool("INGRESS_DELETE", true),

		Renderer:  envString("RENDERER", "fitz"),
		RenderDPI: envInt("RENDER_DPI", 150),

		// Empty service URLs keep OCR and PDF processing in-process
		TesseractServiceURL: envString("TESSERACT_SERVICE_URL", ""),
		PDFServiceURL:       envString("PDF_SERVICE_URL", ""),

		WebUIPass:      envBool("WEB_UI_AUTH", false),
		ClientUsername: envString("WEB_UI_USER", "admin"),
		ClientPassword: envString("WEB_UI_PASSWORD", "Password1"),

		UseReverseProxy: envBool("PROXY_ENABLED", false),
		BaseURL:         envString("BASE_URL", "https://folium.domain.org"),

		FrontEndConfig: FrontEndConfig{
			NewDocumentNumber: envInt("NEW_DOCUMENT_COUNT", 5),
			ServerAPIURL:      envString("SERVER_API_URL", ""),
		},
	}
	logger.Info("Database configuration loaded", "type", cfg.DatabaseType)

	cfg.IngressPath = absPath(logger, envString("INGRESS_PATH", "ingress"), "ingress directory")

	// Processed ingress files are deleted by default; set a move folder to
	// keep them instead
	if moveFolder := envString("INGRESS_MOVE_FOLDER", ""); moveFolder != "" {
		cfg.IngressMoveFolder = absPath(logger, moveFolder, "ingress move folder")
		if !cfg.IngressDelete {
			os.MkdirAll(cfg.IngressMoveFolder, os.ModePerm)
		}
	}

	printStartupBanner(cfg)

	cfg.DocumentPath = absPath(logger, envString("DOCUMENT_PATH", "documents"), "document store")
	newDocumentPath := filepath.ToSlash(envString("NEW_DOCUMENT_FOLDER", "New"))
	cfg.NewDocumentFolderRel = newDocumentPath
	cfg.NewDocumentFolder = filepath.Join(cfg.DocumentPath, newDocumentPath)

	cfg.TesseractPath = locateTesseract(logger)

	if cfg.UseReverseProxy {
		logger.Info("Using Reverse Proxy", "baseURL", cfg.BaseURL)
	} else {
		logger.Info("Using relative URLs for API calls (frontend will use same host it was served from)")
	}

	logger.Info("About to setup database", "type", cfg.DatabaseType)

	return cfg, logger
}

// printStartupBanner writes the human-facing startup summary to stdout.
// Detailed progress goes to the logger instead.
func printStartupBanner(cfg ServerConfig) {
	fmt.Println("\n========================================")
	fmt.Println("   folium - Document Rendering Server")
	fmt.Println("========================================")
	fmt.Printf("Server will start on: %s:%s\n", cfg.ListenAddrIP, cfg.ListenAddrPort)
	if cfg.ListenAddrIP == "" {
		fmt.Println("(Listening on all network interfaces)")
		if ip, err := GetPreferredOutboundIP(); err == nil {
			fmt.Printf("Reachable at: http://%s:%s\n", ip, cfg.ListenAddrPort)
		}
	}
	fmt.Printf("Detailed logs: %s\n", envString("LOG_FILE", "folium.log"))
	fmt.Println("Initializing...")
}

// locateTesseract checks the configured tesseract binary exists. OCR is
// disabled by returning an empty path when it does not.
func locateTesseract(logger *slog.Logger) string {
	tesseractPath := envString("TESSERACT_PATH", "/usr/bin/tesseract")
	logger.Info("Checking tesseract executable path...")
	if err := checkExecutables(tesseractPath, logger); err != nil {
		logger.Warn("Tesseract executable not found, OCR will be disabled", "path", tesseractPath, "error", err)
		return ""
	}
	logger.Info("Tesseract found and validated, OCR enabled", "path", tesseractPath)
	return tesseractPath
}

// SetupFrontend loads configuration for the frontend-only server.
func SetupFrontend() (FrontEndConfig, *slog.Logger) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("config.env")
	_ = godotenv.Load("frontend.env")

	logger := setupLogging()
	Logger = logger

	frontendConfig := FrontEndConfig{
		NewDocumentNumber: envInt("NEW_DOCUMENT_COUNT", 5),
		ServerAPIURL:      envString("SERVER_API_URL", "http://localhost:8000"),
	}

	logger.Info("Frontend configuration loaded",
		"apiURL", frontendConfig.ServerAPIURL,
		"newDocumentCount", frontendConfig.NewDocumentNumber)

	return frontendConfig, logger
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func setupLogging() *slog.Logger {
	level, ok := logLevels[envString("LOG_LEVEL", "debug")]
	if !ok {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(logDestination(), &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// logDestination picks where log lines go. LOG_OUTPUT=stdout short-circuits,
// anything else appends to LOG_FILE, falling back to stdout when the file
// cannot be opened.
func logDestination() io.Writer {
	if envString("LOG_OUTPUT", "file") == "stdout" {
		return os.Stdout
	}

	logPath, err := filepath.Abs(filepath.ToSlash(envString("LOG_FILE", "folium.log")))
	if err != nil {
		fmt.Printf("Error creating log file path: %v\n", err)
		return os.Stdout
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		fmt.Printf("Failed to open log file: %v\n", err)
		return os.Stdout
	}
	fmt.Println("Logging to file: ", logPath)
	return logFile
}

// GetPreferredOutboundIP reports the local address the OS would route
// outbound traffic through. Dialing UDP sends no packets.
func GetPreferredOutboundIP() (net.IP, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return conn.LocalAddr().(*net.UDPAddr).IP, nil
}

// checkExecutables verifies an executable exists at the given path.
func checkExecutables(tesseractPath string, logger *slog.Logger) error {
	if _, err := os.Stat(tesseractPath); err != nil {
		logger.Error("Cannot find tesseract executable at location specified", "path", tesseractPath)
		return err
	}
	logger.Debug("Tesseract executable found", "path", tesseractPath)
	return nil
}
