package webapp

import (
	"encoding/json"
	"fmt"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// AboutInfo is the backend's self-description from the about endpoint.
type AboutInfo struct {
	Version        string `json:"version"`
	OCRConfigured  bool   `json:"ocrConfigured"`
	OCRPath        string `json:"ocrPath"`
	Renderer       string `json:"renderer"`
	RenderDPI      int    `json:"renderDPI"`
	NativeRenderer bool   `json:"nativeRenderer"`
	DatabaseType   string `json:"databaseType"`
	DatabaseHost   string `json:"databaseHost"`
	DatabasePort   string `json:"databasePort"`
	DatabaseName   string `json:"databaseName"`
	IngressPath    string `json:"ingressPath"`
	DocumentPath   string `json:"documentPath"`
}

// AboutPage shows version, database, OCR and rendering configuration.
type AboutPage struct {
	app.Compo

	info    AboutInfo
	loading bool
	error   string
}

func (a *AboutPage) OnMount(ctx app.Context) {
	a.loading = true
	fetchJSON(ctx, "/api/about", nil, func(status int, body string) {
		a.loading = false
		if status == 0 {
			a.error = "Network error"
			return
		}
		if err := json.Unmarshal([]byte(body), &a.info); err != nil {
			a.error = fmt.Sprintf("Failed to parse response: %v", err)
		}
	})
}

func (a *AboutPage) Render() app.UI {
	var body app.UI
	switch {
	case a.loading:
		body = app.Div().Class("loading").Text("Loading...")
	case a.error != "":
		body = app.Div().Class("error").Text("Error: " + a.error)
	default:
		body = a.renderSections()
	}

	return app.Div().Class("about-page").Body(
		app.H2().Text("About folium"),
		body,
	)
}

func (a *AboutPage) renderSections() app.UI {
	info := a.info

	ocrLines := []app.UI{configLine("OCR Status", ocrLabel(info.OCRConfigured))}
	if info.OCRConfigured {
		ocrLines = append(ocrLines, configLine("Tesseract Path", info.OCRPath))
	}

	return app.Div().Class("about-content").Body(
		aboutSection("Application Information",
			app.Div().Class("info-grid").Body(
				infoItem("Version", info.Version),
				infoItem("Database", databaseLabel(info.DatabaseType)),
				infoItem("OCR Status", ocrLabel(info.OCRConfigured)),
				infoItem("Renderer", rendererLabel(info.Renderer)),
			),
		),
		aboutSection("Database Configuration",
			app.Div().Class("config-details").Body(
				configLine("Database Type", databaseLabel(info.DatabaseType)),
				configLine("Host", info.DatabaseHost),
				configLine("Port", info.DatabasePort),
				configLine("Database Name", info.DatabaseName),
			),
		),
		aboutSection("OCR Configuration",
			app.Div().Class("config-details").Body(ocrLines...),
		),
		aboutSection("Page Rendering",
			app.Div().Class("config-details").Body(
				configLine("Renderer", rendererLabel(info.Renderer)),
				configLine("Render DPI", fmt.Sprintf("%d", info.RenderDPI)),
				configLine("Native Renderer", nativeRendererLabel(info.NativeRenderer)),
			),
		),
		aboutSection("Document Storage",
			app.Div().Class("config-details").Body(
				configLine("Document Storage Path", info.DocumentPath),
				configLine("Ingestion Folder", info.IngressPath),
			),
		),
		aboutSection("About folium",
			app.P().Text("folium is a document management system built with Go and WebAssembly."),
			app.P().Text("It provides document ingestion, OCR processing, full-text search, page rendering and document organization."),
		),
	)
}

func aboutSection(title string, body ...app.UI) app.UI {
	return app.Div().Class("about-section").Body(
		append([]app.UI{app.H3().Text(title)}, body...)...,
	)
}

func infoItem(label, value string) app.UI {
	return app.Div().Class("info-item").Body(
		app.Div().Class("info-label").Text(label),
		app.Div().Class("info-value").Text(value),
	)
}

func configLine(label, value string) app.UI {
	return app.P().Body(app.Strong().Text(label+": "), app.Text(value))
}

var databaseLabels = map[string]string{
	"postgres":    "PostgreSQL",
	"cockroachdb": "CockroachDB",
	"sqlite":      "SQLite",
	"ephemeral":   "PostgreSQL (Ephemeral)",
}

// databaseLabel maps a config database type to its display name. Unknown
// types show as is.
func databaseLabel(dbType string) string {
	if label, ok := databaseLabels[dbType]; ok {
		return label
	}
	return dbType
}

func ocrLabel(configured bool) string {
	if configured {
		return "Enabled"
	}
	return "Disabled"
}

func rendererLabel(renderer string) string {
	switch renderer {
	case "fitz":
		return "Fitz (go-fitz)"
	case "pdfium":
		return "PDFium"
	case "mupdf":
		return "MuPDF (native)"
	case "":
		return "Not configured"
	}
	return renderer
}

func nativeRendererLabel(available bool) string {
	if available {
		return "Available"
	}
	return "Not compiled in"
}
