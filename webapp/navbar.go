package webapp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// Version info, settable at build time with -ldflags.
var (
	Version   = "dev"
	BuildDate = ""
)

var navbarLinks = []struct{ label, href string }{
	{"Home", "/"},
	{"Browse", "/browse"},
	{"Ingest", "/ingest"},
	{"Clean", "/clean"},
	{"Search", "/search"},
	{"Jobs", "/jobs"},
}

// NavBar is the top bar: hamburger toggle, brand with version info and the
// primary navigation links. It polls the active job count so long-running
// work stays visible from any page.
type NavBar struct {
	app.Compo

	activeJobs int
	ticker     *time.Ticker
}

func (n *NavBar) OnMount(ctx app.Context) {
	n.countActiveJobs(ctx)

	ctx.Async(func() {
		n.ticker = time.NewTicker(5 * time.Second)
		for range n.ticker.C {
			n.countActiveJobs(ctx)
		}
	})
}

func (n *NavBar) OnDismount() {
	if n.ticker != nil {
		n.ticker.Stop()
	}
}

func (n *NavBar) countActiveJobs(ctx app.Context) {
	fetchJSON(ctx, "/api/jobs/active", nil, func(status int, body string) {
		if status == 0 {
			// network error, keep the last known count
			return
		}
		count := 0
		if status >= 200 && status < 300 {
			var jobs []Job
			if err := json.Unmarshal([]byte(body), &jobs); err == nil {
				count = len(jobs)
			}
		}
		n.activeJobs = count
	})
}

func (n *NavBar) toggleSidebar(ctx app.Context, e app.Event) {
	var open bool
	ctx.LocalStorage().Get("sidebar-open", &open)
	ctx.LocalStorage().Set("sidebar-open", !open)
	ctx.Reload()
}

func (n *NavBar) versionInfo() string {
	date := BuildDate
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	info := Version + " | " + date
	switch {
	case n.activeJobs == 1:
		info += " | 1 active job"
	case n.activeJobs > 1:
		info += fmt.Sprintf(" | %d active jobs", n.activeJobs)
	}
	return info
}

func (n *NavBar) Render() app.UI {
	return app.Nav().Class("navbar").Body(
		app.Button().Class("hamburger-menu").ID("menu-toggle").
			OnClick(n.toggleSidebar).
			Body(
				app.Span().Class("hamburger-line"),
				app.Span().Class("hamburger-line"),
				app.Span().Class("hamburger-line"),
			),
		app.Div().Class("navbar-brand").Body(
			app.H1().Text("folium"),
			app.Span().Class("version-info").Text(n.versionInfo()),
		),
		app.Div().Class("navbar-menu").Body(
			app.Range(navbarLinks).Slice(func(i int) app.UI {
				link := navbarLinks[i]
				return app.A().Href(link.href).Class("navbar-item").Text(link.label)
			}),
		),
	)
}
