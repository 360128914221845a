package webapp

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// pagesByPath maps every UI route to its page constructor. Route
// registration and in-shell page selection both read from it.
var pagesByPath = map[string]func() app.UI{
	"/":          func() app.UI { return &HomePage{} },
	"/browse":    func() app.UI { return &BrowsePage{} },
	"/ingest":    func() app.UI { return &IngestPage{} },
	"/clean":     func() app.UI { return &CleanPage{} },
	"/search":    func() app.UI { return &SearchPage{} },
	"/wordcloud": func() app.UI { return &WordCloudPage{} },
	"/jobs":      func() app.UI { return &JobsPage{} },
	"/viewer":    func() app.UI { return &ViewerPage{} },
	"/about":     func() app.UI { return &AboutPage{} },
}

func pageForPath(path string) app.UI {
	if build, ok := pagesByPath[path]; ok {
		return build()
	}
	return &NotFoundPage{}
}

// App is the shell every route renders: navbar, sidebar and the page body.
type App struct {
	app.Compo
}

func (a *App) Render() app.UI {
	return app.Div().Class("app-container").Body(
		app.Header().Body(&NavBar{}),
		app.Div().Class("app-layout").Body(
			&Sidebar{},
			app.Main().Class("main-content").Body(
				app.Div().Class("content").Body(
					pageForPath(app.Window().URL().Path),
				),
			),
		),
	)
}
