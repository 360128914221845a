package webapp

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

type sidebarLink struct {
	icon  string
	label string
	href  string
}

var sidebarLinks = []sidebarLink{
	{"🏠", "Home", "/"},
	{"📁", "Browse Documents", "/browse"},
	{"📥", "Ingest Now", "/ingest"},
	{"🧹", "Clean Database", "/clean"},
	{"🔍", "Search", "/search"},
	{"⚙️", "Jobs", "/jobs"},
	{"📊", "Word Cloud", "/wordcloud"},
	{"ℹ️", "About", "/about"},
}

// Sidebar is the collapsible navigation menu. The navbar toggles its state
// through local storage so it survives page reloads.
type Sidebar struct {
	app.Compo
	visible bool
}

func (s *Sidebar) OnMount(ctx app.Context) {
	ctx.LocalStorage().Get("sidebar-open", &s.visible)
}

func (s *Sidebar) OnNav(ctx app.Context) {
	ctx.LocalStorage().Get("sidebar-open", &s.visible)
}

func (s *Sidebar) Render() app.UI {
	class := "sidebar"
	if s.visible {
		class += " sidebar-open"
	}
	current := app.Window().URL().Path

	return app.Aside().Class(class).Body(
		app.Div().Class("sidebar-header").Body(app.H2().Text("Menu")),
		app.Nav().Class("sidebar-nav").Body(
			app.Range(sidebarLinks).Slice(func(i int) app.UI {
				link := sidebarLinks[i]
				itemClass := "sidebar-item"
				if current == link.href {
					itemClass += " sidebar-item-active"
				}
				return app.A().Href(link.href).Class(itemClass).Body(
					app.Span().Class("sidebar-icon").Text(link.icon),
					app.Span().Class("sidebar-label").Text(link.label),
				)
			}),
		),
	)
}
