package webapp

import (
	"encoding/json"
	"fmt"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// OutlineEntry is one row of a document's table of contents
type OutlineEntry struct {
	Title string `json:"title"`
	URI   string `json:"uri,omitempty"`
	Page  int    `json:"page"`
	Depth int    `json:"depth"`
}

// ViewerPage renders document pages server-side and shows them with
// outline navigation. The document is picked with ?id=<ulid>.
type ViewerPage struct {
	app.Compo
	docID       string
	docName     string
	pageCount   int
	currentPage int
	scale       float64
	outline     []OutlineEntry
	showOutline bool
	loading     bool
	error       string
}

// OnMount is called when the component is mounted
func (v *ViewerPage) OnMount(ctx app.Context) {
	v.scale = 1.0
	v.loading = true
	v.docID = ctx.Page().URL().Query().Get("id")

	if v.docID == "" {
		v.loading = false
		v.error = "No document selected. Open a document from the home or browse page."
		return
	}

	v.fetchPageInfo(ctx)
	v.fetchOutline(ctx)
}

// fetchPageInfo fetches the document name and page count
func (v *ViewerPage) fetchPageInfo(ctx app.Context) {
	fetchJSON(ctx, "/api/document/"+v.docID+"/pages", nil, func(status int, body string) {
		v.loading = false
		switch {
		case status == 0:
			v.error = "Network error: Could not connect to server"
		case status < 200 || status > 299:
			v.error = fmt.Sprintf("Failed to load document (status: %d)", status)
		default:
			var info struct {
				Name      string `json:"name"`
				PageCount int    `json:"pageCount"`
			}
			if err := json.Unmarshal([]byte(body), &info); err == nil {
				v.docName = info.Name
				v.pageCount = info.PageCount
			}
		}
	})
}

// fetchOutline fetches the document's table of contents. The viewer works
// without one, so every failure path just leaves the outline empty.
func (v *ViewerPage) fetchOutline(ctx app.Context) {
	fetchJSON(ctx, "/api/document/"+v.docID+"/outline", nil, func(status int, body string) {
		if status != 200 {
			return
		}
		var entries []OutlineEntry
		if err := json.Unmarshal([]byte(body), &entries); err == nil {
			v.outline = entries
		}
	})
}

// pageImageURL builds the render URL for the current page and zoom
func (v *ViewerPage) pageImageURL() string {
	return BuildAPIURL(fmt.Sprintf("/api/document/%s/page/%d/image?scale=%.2f",
		v.docID, v.currentPage, v.scale))
}

// Render renders the viewer page
func (v *ViewerPage) Render() app.UI {
	if v.loading {
		return app.Div().Class("viewer-page").Body(
			app.H2().Text("Document Viewer"),
			app.Div().Class("loading").Body(app.Text("Loading...")),
		)
	}

	if v.error != "" {
		return app.Div().Class("viewer-page").Body(
			app.H2().Text("Document Viewer"),
			app.Div().Class("error").Body(app.Text("Error: "+v.error)),
		)
	}

	if v.pageCount <= 0 {
		return app.Div().Class("viewer-page").Body(
			app.H2().Text(v.docName),
			app.Div().Class("info").Body(
				app.P().Text("This document has no rendered pages. It may not be a PDF, or the server was built without a renderer."),
			),
		)
	}

	return app.Div().Class("viewer-page").Body(
		app.H2().Text(v.docName),
		v.renderToolbar(),
		app.Div().Class("viewer-layout").Body(
			app.If(v.showOutline && len(v.outline) > 0, func() app.UI {
				return v.renderOutline()
			}),
			app.Div().Class("viewer-canvas").Body(
				app.Img().
					Class("viewer-page-image").
					Src(v.pageImageURL()).
					Alt(fmt.Sprintf("%s, page %d", v.docName, v.currentPage+1)),
			),
		),
	)
}

// renderToolbar renders page navigation and zoom controls
func (v *ViewerPage) renderToolbar() app.UI {
	var outlineToggle app.UI
	if len(v.outline) > 0 {
		label := "Show Outline"
		if v.showOutline {
			label = "Hide Outline"
		}
		outlineToggle = app.Button().
			Class("viewer-btn").
			OnClick(func(ctx app.Context, e app.Event) {
				v.showOutline = !v.showOutline
			}).
			Body(app.Text(label))
	}

	return app.Div().Class("viewer-toolbar").Body(
		app.Button().
			Class("viewer-btn").
			Disabled(v.currentPage <= 0).
			OnClick(v.onPageChange(v.currentPage-1)).
			Body(app.Text("← Previous")),
		app.Span().Class("viewer-page-info").Body(
			app.Text(fmt.Sprintf("Page %d of %d", v.currentPage+1, v.pageCount)),
		),
		app.Button().
			Class("viewer-btn").
			Disabled(v.currentPage >= v.pageCount-1).
			OnClick(v.onPageChange(v.currentPage+1)).
			Body(app.Text("Next →")),
		app.Button().
			Class("viewer-btn").
			Disabled(v.scale <= 0.5).
			OnClick(v.onZoom(1/1.25)).
			Body(app.Text("−")),
		app.Span().Class("viewer-zoom-info").Body(
			app.Text(fmt.Sprintf("%d%%", int(v.scale*100))),
		),
		app.Button().
			Class("viewer-btn").
			Disabled(v.scale >= 4.0).
			OnClick(v.onZoom(1.25)).
			Body(app.Text("+")),
		outlineToggle,
	)
}

// renderOutline renders the table of contents panel
func (v *ViewerPage) renderOutline() app.UI {
	return app.Div().Class("viewer-outline").Body(
		app.H3().Text("Contents"),
		app.Range(v.outline).Slice(func(i int) app.UI {
			entry := v.outline[i]
			class := "outline-entry"
			if entry.Page == v.currentPage {
				class += " outline-entry-active"
			}
			return app.Div().
				Class(class).
				Style("padding-left", fmt.Sprintf("%dpx", entry.Depth*16)).
				OnClick(func(ctx app.Context, e app.Event) {
					if entry.Page >= 0 && entry.Page < v.pageCount {
						v.currentPage = entry.Page
					}
				}).
				Body(app.Text(entry.Title))
		}),
	)
}

// onPageChange jumps to a page, clamped to the document's range
func (v *ViewerPage) onPageChange(page int) func(ctx app.Context, e app.Event) {
	return func(ctx app.Context, e app.Event) {
		if page < 0 {
			page = 0
		}
		if page > v.pageCount-1 {
			page = v.pageCount - 1
		}
		v.currentPage = page
	}
}

// onZoom multiplies the render scale, clamped between 50% and 400%
func (v *ViewerPage) onZoom(factor float64) func(ctx app.Context, e app.Event) {
	return func(ctx app.Context, e app.Event) {
		scale := v.scale * factor
		if scale < 0.5 {
			scale = 0.5
		}
		if scale > 4.0 {
			scale = 4.0
		}
		v.scale = scale
	}
}
