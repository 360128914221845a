package webapp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// searchRootID is the synthetic root node the search endpoint prepends to
// tie its results into a tree. It never gets rendered.
const searchRootID = "SearchResults"

// SearchPage runs full text queries against the document index.
type SearchPage struct {
	app.Compo

	term     string
	results  []FileTreeNode
	searched bool
	loading  bool
	error    string
}

func (s *SearchPage) OnMount(ctx app.Context) {
	// Word cloud links navigate here with the term in the query string.
	if term := ctx.Page().URL().Query().Get("term"); term != "" {
		s.term = term
		s.search(ctx)
	}
}

func (s *SearchPage) search(ctx app.Context) {
	if s.term == "" {
		s.error = "Please enter a search term"
		return
	}

	s.loading = true
	s.error = ""
	s.searched = false

	path := "/api/search?term=" + url.QueryEscape(s.term)
	fetchJSON(ctx, path, nil, func(status int, body string) {
		s.loading = false
		switch {
		case status == 0:
			s.error = "Network error"
		case status == http.StatusNoContent:
			s.results = nil
			s.searched = true
		default:
			var fs FileSystem
			if err := json.Unmarshal([]byte(body), &fs); err != nil {
				s.error = fmt.Sprintf("Failed to parse response: %v", err)
				return
			}
			s.results = stripSearchRoot(fs.FileSystem)
			s.searched = true
		}
	})
}

func stripSearchRoot(nodes []FileTreeNode) []FileTreeNode {
	out := make([]FileTreeNode, 0, len(nodes))
	for _, n := range nodes {
		if n.ID == searchRootID {
			continue
		}
		out = append(out, n)
	}
	return out
}

func (s *SearchPage) Render() app.UI {
	var body app.UI
	switch {
	case s.loading:
		body = app.Div().Class("loading").Text("Searching...")
	case s.error != "":
		body = app.Div().Class("error").Text("Error: " + s.error)
	case s.searched && len(s.results) == 0:
		body = app.Div().Class("no-results").Text("No results found for: " + s.term)
	case s.searched:
		body = app.Div().Class("search-results").Body(
			app.H3().Text(fmt.Sprintf("Found %d results", len(s.results))),
			app.Div().Class("result-list").Body(
				app.Range(s.results).Slice(func(i int) app.UI {
					return &SearchResultItem{Node: s.results[i]}
				}),
			),
		)
	}

	return app.Div().Class("search-page").Body(
		app.H2().Text("Search Documents"),
		app.Div().Class("search-form").Body(
			app.Input().Type("text").Class("search-input").
				Placeholder("Enter search term...").
				Value(s.term).
				OnInput(func(ctx app.Context, e app.Event) {
					s.term = ctx.JSSrc().Get("value").String()
				}).
				OnKeyDown(func(ctx app.Context, e app.Event) {
					if e.Get("key").String() == "Enter" {
						s.search(ctx)
					}
				}),
			app.Button().Class("search-button").Text("Search").
				OnClick(func(ctx app.Context, e app.Event) {
					s.search(ctx)
				}),
		),
		body,
	)
}

// SearchResultItem is one matched document row.
type SearchResultItem struct {
	app.Compo
	Node FileTreeNode
}

func (s *SearchResultItem) Render() app.UI {
	info := []app.UI{
		app.H4().Body(s.nameLink()),
		app.P().Class("result-path").Text(s.Node.FullPath),
	}
	if s.Node.Size > 0 {
		info = append(info, app.P().Class("result-size").Text("Size: "+formatBytes(s.Node.Size)))
	}
	if s.Node.ModDate != "" {
		info = append(info, app.P().Class("result-date").Text("Modified: "+s.Node.ModDate))
	}

	return app.Div().Class("search-result-item").Body(
		app.Div().Class("result-icon").Text("📄"),
		app.Div().Class("result-info").Body(info...),
	)
}

func (s *SearchResultItem) nameLink() app.UI {
	if s.Node.FileURL != "" {
		return app.A().Href(s.Node.FileURL).Target("_blank").Text(s.Node.Name)
	}
	return app.Text(s.Node.Name)
}
