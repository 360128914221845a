package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	config "github.com/folium-app/folium/config"
	"github.com/folium-app/folium/webapp"
)

// Logger is shared with every package that logs.
var Logger *slog.Logger

func main() {
	port := flag.String("port", "3000", "Port to run frontend server on")
	apiURL := flag.String("api", "", "Backend API URL (overrides config)")
	flag.Parse()

	printFrontendBanner()

	frontendConfig, logger := config.SetupFrontend()
	Logger = logger
	config.Logger = logger

	if *apiURL != "" {
		frontendConfig.ServerAPIURL = *apiURL
	}
	Logger.Info("Frontend server starting",
		"backendAPI", frontendConfig.ServerAPIURL,
		"port", *port)

	e := echo.New()
	e.HideBanner = true

	// Only static content is served here, CORS can stay wide open
	e.Use(middleware.CORS())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "method=${method}, uri=${uri}, status=${status}, latency=${latency_human}\n",
	}))

	Logger.Info("Setting up WASM application...")
	appHandler := webapp.Handler()
	registerShell(e, appHandler, frontendConfig)

	// API calls and document views are answered by the backend, everything
	// under those prefixes is proxied through
	backend := proxyTo(frontendConfig.ServerAPIURL)
	e.Group("/api", backend)
	e.Group("/document/view", backend)

	// The WASM app routes everything else client-side. Must be last.
	e.Any("/*", echo.WrapHandler(appHandler))

	addr := fmt.Sprintf(":%s", *port)
	Logger.Info("Starting Frontend Server", "address", addr, "backendAPI", frontendConfig.ServerAPIURL)
	fmt.Printf("\n✅  Frontend Server running on %s\n", addr)
	fmt.Printf("🎨  Open http://localhost:%s in your browser\n", *port)
	fmt.Printf("📡  API proxied to: %s\n\n", frontendConfig.ServerAPIURL)

	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		Logger.Error("Server failed to start", "error", err)
	}
}

func printFrontendBanner() {
	rule := strings.Repeat("=", 50)
	fmt.Println("\n" + rule)
	fmt.Println("🎨  folium Frontend Server")
	fmt.Println(rule)
	fmt.Println("• WASM application server")
	fmt.Println("• Proxies API calls to backend")
	fmt.Println(rule + "\n")
}

// registerShell wires the go-app shell, its static assets and the generated
// config script.
func registerShell(e *echo.Echo, appHandler http.Handler, cfg config.FrontEndConfig) {
	// go-app expects wasm_exec.js at the web root
	e.GET("/wasm_exec.js", func(c echo.Context) error {
		return c.File("web/wasm_exec.js")
	})

	e.GET("/app.js", echo.WrapHandler(appHandler))
	e.GET("/app.css", echo.WrapHandler(appHandler))
	e.GET("/manifest.webmanifest", echo.WrapHandler(appHandler))

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

// proxyTo forwards matched requests to the backend at rawURL. A bad URL is
// a configuration error, so it aborts startup.
func proxyTo(rawURL string) echo.MiddlewareFunc {
	target, err := url.Parse(rawURL)
	if err != nil {
		panic(fmt.Sprintf("bad backend URL %q: %v", rawURL, err))
	}
	return middleware.ProxyWithConfig(middleware.ProxyConfig{
		Balancer: middleware.NewRoundRobinBalancer([]*middleware.ProxyTarget{{URL: target}}),
	})
}
