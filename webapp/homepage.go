package webapp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// Document is the API's document record. Field names follow the backend
// model, which keeps the keys capitalized on the wire.
type Document struct {
	ID           int    `json:"ID"`
	Name         string `json:"Name"`
	Path         string `json:"Path"`
	IngressTime  string `json:"IngressTime"`
	Folder       string `json:"Folder"`
	Hash         string `json:"Hash"`
	ULID         string `json:"ULID"`
	DocumentType string `json:"DocumentType"`
	FullText     string `json:"FullText"`
	PageCount    int    `json:"PageCount"`
	Outline      string `json:"Outline"`
	URL          string `json:"URL"`
}

// PaginatedResponse is the envelope of the latest documents endpoint.
type PaginatedResponse struct {
	Documents   []Document `json:"documents"`
	Page        int        `json:"page"`
	PageSize    int        `json:"pageSize"`
	TotalCount  int        `json:"totalCount"`
	TotalPages  int        `json:"totalPages"`
	HasNext     bool       `json:"hasNext"`
	HasPrevious bool       `json:"hasPrevious"`
}

// HomePage lists the most recently ingested documents, one page at a time.
type HomePage struct {
	app.Compo

	page    PaginatedResponse
	loading bool
	error   string
}

func (h *HomePage) OnMount(ctx app.Context) {
	h.page.Page = 1
	h.loadPage(ctx, 1)
}

func (h *HomePage) loadPage(ctx app.Context, page int) {
	h.loading = true
	h.error = ""

	fetchJSON(ctx, fmt.Sprintf("/api/documents/latest?page=%d", page), nil, func(status int, body string) {
		h.loading = false
		if status == 0 {
			h.error = "Network error"
			return
		}
		var resp PaginatedResponse
		if err := json.Unmarshal([]byte(body), &resp); err != nil {
			h.error = fmt.Sprintf("Failed to parse response: %v", err)
			return
		}
		h.page = resp
	})
}

func (h *HomePage) gotoPage(page int) func(ctx app.Context, e app.Event) {
	return func(ctx app.Context, e app.Event) {
		e.PreventDefault()
		h.loadPage(ctx, page)
	}
}

func (h *HomePage) Render() app.UI {
	var body app.UI
	switch {
	case h.loading:
		body = app.Div().Class("loading").Text("Loading...")
	case h.error != "":
		body = app.Div().Class("error").Text("Error: " + h.error)
	case len(h.page.Documents) == 0:
		body = app.Div().Class("no-results").Text("No documents found.")
	default:
		body = app.Div().Class("document-grid").Body(
			app.Range(h.page.Documents).Slice(func(i int) app.UI {
				return &DocumentCard{Document: h.page.Documents[i]}
			}),
		)
	}

	return app.Div().Class("home-page").Body(
		app.H2().Text("Latest Documents"),
		app.P().Class("page-info").Text(
			fmt.Sprintf("Showing page %d of %d (%d total documents)",
				h.page.Page, h.page.TotalPages, h.page.TotalCount),
		),
		body,
		h.renderPagination(),
	)
}

func (h *HomePage) renderPagination() app.UI {
	if h.page.TotalPages <= 1 {
		return app.Div()
	}

	return app.Div().Class("pagination").Body(
		app.Button().Class("pagination-btn").
			Disabled(!h.page.HasPrevious || h.loading).
			OnClick(h.gotoPage(h.page.Page-1)).
			Text("← Previous"),
		app.Span().Class("pagination-info").
			Text(fmt.Sprintf("Page %d of %d", h.page.Page, h.page.TotalPages)),
		app.Button().Class("pagination-btn").
			Disabled(!h.page.HasNext || h.loading).
			OnClick(h.gotoPage(h.page.Page+1)).
			Text("Next →"),
		app.Div().Class("pagination-jump").Body(
			app.Button().Class("pagination-btn-small").
				Disabled(h.page.Page == 1 || h.loading).
				OnClick(h.gotoPage(1)).
				Text("First"),
			app.Button().Class("pagination-btn-small").
				Disabled(h.page.Page == h.page.TotalPages || h.loading).
				OnClick(h.gotoPage(h.page.TotalPages)).
				Text("Last"),
		),
	)
}

// formatIngressTime turns the RFC3339 timestamp from the API into a short
// display form. The raw string is shown if parsing fails.
func formatIngressTime(raw string) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.Format("2006-01-02 15:04")
}

// DocumentCard is one tile in the document grid.
type DocumentCard struct {
	app.Compo
	Document Document
}

func (d *DocumentCard) Render() app.UI {
	doc := d.Document

	info := []app.UI{
		app.H3().Text(doc.Name),
		app.P().Class("document-date").Text("Ingested: " + formatIngressTime(doc.IngressTime)),
	}
	if doc.PageCount == 1 {
		info = append(info, app.P().Class("document-pages").Text("1 page"))
	} else if doc.PageCount > 1 {
		info = append(info, app.P().Class("document-pages").Text(fmt.Sprintf("%d pages", doc.PageCount)))
	}

	links := []app.UI{
		app.A().Href(doc.URL).Class("document-link").Target("_blank").Text("View Document"),
	}
	// The page viewer only works for documents the renderer could open.
	if doc.PageCount > 0 {
		links = append(links,
			app.A().Href("/viewer?id="+doc.ULID).Class("document-link").Text("Open in Viewer"))
	}
	info = append(info, app.Div().Class("document-links").Body(links...))

	return app.Div().Class("document-card").Body(
		app.Div().Class("document-icon").Text("📄"),
		app.Div().Class("document-info").Body(info...),
	)
}
