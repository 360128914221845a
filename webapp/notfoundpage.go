package webapp

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// NotFoundPage is shown for paths the app does not route.
type NotFoundPage struct {
	app.Compo
}

func (p *NotFoundPage) Render() app.UI {
	return app.Div().Class("not-found-page").Body(
		app.Div().Class("not-found-container").Body(
			app.H1().Class("not-found-title").Text("404"),
			app.H2().Class("not-found-subtitle").Text("Page Not Found"),
			app.P().Class("not-found-message").
				Text("Nothing lives at this address. The link may be stale or the page has moved."),
			app.A().Href("/").Class("not-found-home-link").Text("🏠 Go to Home Page"),
		),
	)
}
