package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/swaggo/swag"

	config "github.com/folium-app/folium/config"
	database "github.com/folium-app/folium/database"
	_ "github.com/folium-app/folium/docs"
	engine "github.com/folium-app/folium/engine"
	"github.com/folium-app/folium/engine/pdfrenderer"
)

// Logger is shared with every package that logs.
var Logger *slog.Logger

func injectGlobals(logger *slog.Logger) {
	Logger = logger
	database.Logger = Logger
	config.Logger = Logger
	engine.Logger = Logger
	pdfrenderer.Logger = Logger
}

// @title folium Backend API
// @version 1.0
// @description API for the folium document archive. Covers ingestion, storage and retrieval.
// @description Also exposes full-text search, page rendering, word clouds and background job tracking.

// @contact.name folium maintainers
// @contact.url https://github.com/folium-app/folium

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8000
// @BasePath /api
// @schemes http https

// @tag.name Documents
// @tag.description Document upload, move, delete and retrieval

// @tag.name Rendering
// @tag.description Page rendering and structured text extraction

// @tag.name Search
// @tag.description Full-text search over document contents

// @tag.name Folders
// @tag.description Folder browsing and creation

// @tag.name Admin
// @tag.description Ingestion, cleanup and server information

// @tag.name WordCloud
// @tag.description Word frequency statistics

// @tag.name Jobs
// @tag.description Background job tracking

// @tag.name Health
// @tag.description Service health check

func main() {
	port := flag.String("port", "8000", "Port to run backend server on")
	flag.Parse()

	printBackendBanner()

	serverConfig, logger := config.SetupServer()
	injectGlobals(logger)

	if serverConfig.DatabaseType == "ephemeral" {
		fmt.Println("🚀  EPHEMERAL DATABASE MODE")
		fmt.Println("• Database will be destroyed on exit")
		fmt.Println()
	}

	repo := database.NewRepository(serverConfig)
	defer repo.Close()

	// A fresh ephemeral database has no config row worth keeping
	if serverConfig.DatabaseType == "ephemeral" {
		database.WriteConfigToDB(serverConfig, repo)
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = jsonErrorHandler(e)

	serverHandler := engine.ServerHandler{DB: repo, Echo: e, ServerConfig: serverConfig}
	Logger.Info("Initializing backend services...")
	serverHandler.InitializeSchedules(repo)
	serverHandler.StartupChecks()
	if err := serverHandler.InitializeRenderer(); err != nil {
		Logger.Warn("Page rendering disabled", "error", err)
	}
	Logger.Info("Backend services initialized")

	// The frontend runs on a different origin in split deployments
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"}, // In production, specify your frontend URL
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "method=${method}, uri=${uri}, status=${status}, latency=${latency_human}\n",
	}))

	Logger.Info("Setting up API routes...")
	registerAPIRoutes(e, &serverHandler)

	// Document view routes serve the stored files directly, not JSON,
	// which is why they live outside /api/*
	serverHandler.AddDocumentViewRoutes()

	if *port != "8000" {
		serverConfig.ListenAddrPort = *port
	}

	addr := fmt.Sprintf("%s:%s", serverConfig.ListenAddrIP, serverConfig.ListenAddrPort)
	Logger.Info("Starting Backend API Server", "address", addr)
	fmt.Printf("\n✅  Backend API Server running on %s\n", addr)
	fmt.Printf("📡  API endpoints available at http://%s/api/\n", addr)
	fmt.Printf("🏥  Health check: http://%s/api/health\n\n", addr)

	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		Logger.Error("Server failed to start", "error", err)
		os.Exit(1)
	}
}

func printBackendBanner() {
	rule := strings.Repeat("=", 50)
	fmt.Println("\n" + rule)
	fmt.Println("🔧  folium Backend API Server")
	fmt.Println(rule)
	fmt.Println("• API-only mode (no frontend)")
	fmt.Println("• All endpoints under /api/*")
	fmt.Println("• CORS enabled for frontend access")
	fmt.Println(rule + "\n")
}

// jsonErrorHandler answers 404s with JSON. There is no HTML surface on
// the API-only server.
func jsonErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
		}
		if code != http.StatusNotFound {
			e.DefaultHTTPErrorHandler(err, c)
			return
		}
		c.JSON(http.StatusNotFound, map[string]string{
			"error":   "Not Found",
			"message": "The requested API endpoint does not exist",
			"path":    c.Request().URL.Path,
		})
	}
}

func registerAPIRoutes(e *echo.Echo, h *engine.ServerHandler) {
	// Documents
	e.GET("/api/documents/latest", h.GetLatestDocuments)
	e.GET("/api/documents/filesystem", h.GetDocumentFileSystem)
	e.GET("/api/document/:id", h.GetDocument)
	e.DELETE("/api/document/*", h.DeleteFile)
	e.PATCH("/api/document/move/*", h.MoveDocuments)
	e.POST("/api/document/upload", h.UploadDocuments)

	// Page rendering
	e.GET("/api/document/:id/pages", h.GetDocumentPages)
	e.GET("/api/document/:id/page/:page/image", h.GetDocumentPageImage)
	e.GET("/api/document/:id/page/:page/text", h.GetDocumentPageText)
	e.GET("/api/document/:id/outline", h.GetDocumentOutline)
	e.POST("/api/render/refresh", h.RunRenderRefresh)

	// Folders
	e.GET("/api/folder/:folder", h.GetFolder)
	e.POST("/api/folder/*", h.CreateFolder)

	// Search
	e.GET("/api/search", h.SearchDocuments)
	e.POST("/api/search/reindex", h.ReindexSearchDocuments)

	// Admin
	e.POST("/api/ingest", h.RunIngestNow)
	e.POST("/api/clean", h.CleanDatabase)
	e.GET("/api/about", h.GetAboutInfo)
	e.GET("/api/version", h.GetVersion)

	// Word cloud
	e.GET("/api/wordcloud", h.GetWordCloud)
	e.POST("/api/wordcloud/recalculate", h.RecalculateWordCloud)

	// Jobs
	e.GET("/api/jobs", h.GetRecentJobs)
	e.GET("/api/jobs/active", h.GetActiveJobs)
	e.GET("/api/jobs/:id", h.GetJob)

	// The generated OpenAPI spec, for consumers without the repo checked out
	e.GET("/api/openapi.json", func(c echo.Context) error {
		doc, err := swag.ReadDoc()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "spec not available")
		}
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, []byte(doc))
	})

	e.GET("/api/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": "folium Backend API",
		})
	})
}
