package webapp

import (
	"net/http"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// RegisterRoutes points every UI path at the shell component. The WASM
// entrypoint calls this before app.RunWhenOnBrowser.
func RegisterRoutes() {
	for path := range pagesByPath {
		app.Route(path, func() app.Composer { return &App{} })
	}
}

// Handler builds the go-app handler serving the UI shell. Static assets
// (wasm_exec.js, app.wasm, stylesheets) come from the Echo routes wrapped
// around it.
func Handler() http.Handler {
	RegisterRoutes()
	app.RunWhenOnBrowser()

	return &app.Handler{
		Name:        "folium",
		Title:       "folium",
		Description: "Document management system with full text search and page rendering",
		Icon:        app.Icon{Default: "/favicon.ico"},
		Styles: []string{
			"/webapp/webapp.css",
			"/webapp/wordcloud.css",
		},
		Scripts: []string{
			"/config.js",
		},
		RawHeaders: []string{
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
		},
	}
}
