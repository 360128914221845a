package main

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	config "github.com/folium-app/folium/config"
	database "github.com/folium-app/folium/database"
	engine "github.com/folium-app/folium/engine"
	"github.com/folium-app/folium/engine/pdfrenderer"
	"github.com/folium-app/folium/webapp"
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

func main() {
	serverConfig, logger := config.SetupServer()
	injectGlobals(logger)

	if serverConfig.DatabaseType == "ephemeral" {
		printEphemeralNotice()
	}

	Logger.Info("Setting up database", "type", serverConfig.DatabaseType)
	db := database.NewRepository(serverConfig)
	defer db.Close()
	Logger.Info("Database setup complete")

	// Persist the effective config so schedules and the API read the same values
	database.WriteConfigToDB(serverConfig, db)

	e := echo.New()
	e.HTTPErrorHandler = notFoundAwareErrorHandler(e)

	serverHandler := engine.ServerHandler{DB: db, Echo: e, ServerConfig: serverConfig}
	Logger.Info("About to initialize schedules")
	serverHandler.InitializeSchedules(db)
	Logger.Info("Schedules initialized, about to run startup checks")
	serverHandler.StartupChecks()
	Logger.Info("Startup checks complete")
	if err := serverHandler.InitializeRenderer(); err != nil {
		Logger.Warn("Page rendering disabled", "error", err)
	}

	e.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig))
	if serverConfig.WebUIPass {
		Logger.Info("Web UI authentication enabled", "user", serverConfig.ClientUsername)
		e.Use(middleware.BasicAuth(basicAuthValidator(serverConfig)))
	}

	appHandler := webapp.Handler()
	registerWebUIRoutes(e, appHandler, serverConfig)
	registerAPIRoutes(e, &serverHandler)

	// Document view routes serve the stored files directly, not JSON
	serverHandler.AddDocumentViewRoutes()

	// The WASM app handles its own client-side routing, everything not
	// matched above lands there. Must be registered last.
	e.Any("/*", echo.WrapHandler(appHandler))

	if serverConfig.ListenAddrIP == "" {
		Logger.Info("No Ip Addr set, binding on ALL addresses")
	}
	startWithPortRetry(e, serverConfig.ListenAddrIP, serverConfig.ListenAddrPort)
}

func printEphemeralNotice() {
	rule := strings.Repeat("=", 50)
	fmt.Println("\n" + rule)
	fmt.Println("🚀  EPHEMERAL DATABASE MODE")
	fmt.Println(rule)
	fmt.Println("• Database will be destroyed on exit")
	fmt.Println("• Perfect for testing and development")
	fmt.Println("• No persistent data storage")
	fmt.Println(rule + "\n")
}

// notFoundAwareErrorHandler serves JSON 404s under /api/ and the custom
// 404 page everywhere else. All other errors go to the default handler.
func notFoundAwareErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
		}
		if code != http.StatusNotFound {
			e.DefaultHTTPErrorHandler(err, c)
			return
		}

		if strings.HasPrefix(c.Request().URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, map[string]string{
				"error":   "Not Found",
				"message": "The requested API endpoint does not exist",
				"path":    c.Request().URL.Path,
			})
			return
		}

		if _, statErr := os.Stat("public/built/404.html"); statErr == nil {
			c.File("public/built/404.html")
			return
		}

		// Inline fallback for when the built page is missing
		c.HTML(http.StatusNotFound, `<!DOCTYPE html>
<html>
<head><title>404 - Not Found</title></head>
<body style="font-family: sans-serif; text-align: center; padding: 50px;">
	<h1>404 - Page Not Found</h1>
	<p>The page you're looking for doesn't exist.</p>
	<a href="/" style="color: #3498db; text-decoration: none; font-size: 18px;">← Go to Home Page</a>
</body>
</html>`)
	}
}

func basicAuthValidator(cfg config.ServerConfig) middleware.BasicAuthValidator {
	return func(username, password string, c echo.Context) (bool, error) {
		userOK := subtle.ConstantTimeCompare([]byte(username), []byte(cfg.ClientUsername)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(password), []byte(cfg.ClientPassword)) == 1
		return userOK && passOK, nil
	}
}

// registerWebUIRoutes wires the go-app WASM shell and its static assets.
func registerWebUIRoutes(e *echo.Echo, appHandler http.Handler, cfg config.ServerConfig) {
	Logger.Info("Setting up go-app WASM UI")

	// go-app expects wasm_exec.js at the web root
	e.GET("/wasm_exec.js", func(c echo.Context) error {
		return c.File("web/wasm_exec.js")
	})

	e.GET("/app.js", echo.WrapHandler(appHandler))
	e.GET("/app.css", echo.WrapHandler(appHandler))
	e.GET("/manifest.webmanifest", echo.WrapHandler(appHandler))

	// Static assets built by `make wasm`
	e.Static("/web", "web")
	e.File("/webapp/webapp.css", "webapp/webapp.css")
	e.File("/webapp/wordcloud.css", "webapp/wordcloud.css")
	e.File("/favicon.ico", "public/built/favicon.ico")

	// The frontend reads its backend URL from this generated script
	e.GET("/config.js", func(c echo.Context) error {
		configJS := fmt.Sprintf(`
// folium Frontend Configuration
window.folium_config = {
    apiURL: "%s",
    newDocumentCount: %d
};
console.log("folium Config loaded:", window.folium_config);
`, cfg.ServerAPIURL, cfg.NewDocumentNumber)
		c.Response().Header().Set("Content-Type", "application/javascript")
		return c.String(http.StatusOK, configJS)
	})
}

// registerAPIRoutes wires every JSON endpoint under /api/*.
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

	e.GET("/api/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": "folium",
		})
	})
}

// startWithPortRetry starts the server, walking up through ports when the
// requested one is taken. Start blocks while serving, so a nil return
// means a clean shutdown.
func startWithPortRetry(e *echo.Echo, ip, port string) {
	const maxRetries = 5
	requested := port

	for attempt := 1; attempt <= maxRetries; attempt++ {
		addr := fmt.Sprintf("%s:%s", ip, port)
		Logger.Info("Attempting to start server", "address", addr, "attempt", attempt)

		err := e.Start(addr)
		if err == nil {
			return
		}
		if !isAddressInUse(err) {
			Logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}

		Logger.Warn("Port already in use, trying next port",
			"port", port,
			"attempt", attempt,
			"max_attempts", maxRetries)
		port = nextPort(port)
	}

	Logger.Error("Failed to find available port after maximum retries",
		"start_port", requested,
		"end_port", port,
		"max_retries", maxRetries)
	Logger.Error("Please reboot your computer to free up ports or manually stop conflicting processes")
	os.Exit(1)
}

func nextPort(port string) string {
	portNum, _ := strconv.Atoi(port)
	return strconv.Itoa(portNum + 1)
}

// isAddressInUse checks if the error is due to address already in use
func isAddressInUse(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "address already in use")
}
