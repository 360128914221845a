package webapp

import (
	"encoding/json"
	"fmt"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// FileTreeNode is a single entry in the flat node list produced by the
// filesystem and search endpoints.
type FileTreeNode struct {
	ID          string   `json:"id"`
	ULID        string   `json:"ulid"`
	Name        string   `json:"name"`
	Size        int64    `json:"size"`
	ModDate     string   `json:"modDate"`
	Openable    bool     `json:"openable"`
	ParentID    string   `json:"parentID"`
	IsDir       bool     `json:"isDir"`
	ChildrenIDs []string `json:"childrenIDs"`
	FullPath    string   `json:"fullPath"`
	FileURL     string   `json:"fileURL"`
}

// FileSystem is the envelope wrapping the node list.
type FileSystem struct {
	FileSystem []FileTreeNode `json:"fileSystem"`
	Error      string         `json:"error"`
}

// BrowsePage renders stored documents as a collapsible folder tree.
type BrowsePage struct {
	app.Compo

	nodes    []FileTreeNode
	byParent map[string][]int
	open     map[string]bool
	warning  string
	loading  bool
	error    string
}

func (b *BrowsePage) OnMount(ctx app.Context) {
	b.open = map[string]bool{}
	b.loading = true
	b.loadTree(ctx)
}

func (b *BrowsePage) loadTree(ctx app.Context) {
	fetchJSON(ctx, "/api/documents/filesystem", nil, func(status int, body string) {
		b.loading = false
		if status == 0 {
			b.error = "Network error"
			return
		}

		var fs FileSystem
		if err := json.Unmarshal([]byte(body), &fs); err != nil {
			b.error = fmt.Sprintf("Failed to parse response: %v", err)
			return
		}

		b.nodes = fs.FileSystem
		b.warning = fs.Error
		b.byParent = map[string][]int{}
		for i, node := range b.nodes {
			b.byParent[node.ParentID] = append(b.byParent[node.ParentID], i)
		}
		// The first node is the root folder, start with it expanded.
		if len(b.nodes) > 0 {
			b.open[b.nodes[0].ID] = true
		}
	})
}

func (b *BrowsePage) Render() app.UI {
	var body app.UI
	switch {
	case b.loading:
		body = app.Div().Class("loading").Text("Loading...")
	case b.error != "":
		body = app.Div().Class("error").Text("Error: " + b.error)
	case b.warning != "":
		body = app.Div().Class("warning").Text("Warning: " + b.warning)
	case len(b.nodes) > 0:
		body = app.Div().Class("file-tree").Body(b.renderNode(b.nodes[0], 0))
	default:
		body = app.Text("No documents found")
	}

	return app.Div().Class("browse-page").Body(
		app.H2().Text("Browse Documents"),
		body,
	)
}

func (b *BrowsePage) renderNode(node FileTreeNode, depth int) app.UI {
	row := []app.UI{
		app.Span().Class("tree-node-icon").Text(b.nodeIcon(node)).
			OnClick(func(ctx app.Context, e app.Event) {
				if node.IsDir {
					b.open[node.ID] = !b.open[node.ID]
				}
			}),
		app.Span().Class("tree-node-name").Body(b.nodeLabel(node)),
	}
	if !node.IsDir && node.Size > 0 {
		row = append(row, app.Span().Class("tree-node-size").
			Text(fmt.Sprintf(" (%s)", formatBytes(node.Size))))
	}

	parts := []app.UI{app.Div().Class("tree-node-content").Body(row...)}
	if node.IsDir && b.open[node.ID] {
		if kids := b.byParent[node.ID]; len(kids) > 0 {
			parts = append(parts, app.Div().Class("tree-node-children").Body(
				app.Range(kids).Slice(func(i int) app.UI {
					return b.renderNode(b.nodes[kids[i]], depth+1)
				}),
			))
		}
	}

	return app.Div().Class("tree-node").
		Style("padding-left", fmt.Sprintf("%dpx", depth*20)).
		Body(parts...)
}

func (b *BrowsePage) nodeIcon(node FileTreeNode) string {
	switch {
	case !node.IsDir:
		return "📄"
	case b.open[node.ID]:
		return "📂"
	default:
		return "📁"
	}
}

func (b *BrowsePage) nodeLabel(node FileTreeNode) app.UI {
	if !node.IsDir && node.FileURL != "" {
		return app.A().Href(node.FileURL).Target("_blank").Text(node.Name)
	}
	return app.Text(node.Name)
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	value := float64(n) / 1024
	for _, unit := range []string{"KB", "MB", "GB", "TB", "PB"} {
		if value < 1024 {
			return fmt.Sprintf("%.1f %s", value, unit)
		}
		value /= 1024
	}
	return fmt.Sprintf("%.1f EB", value)
}
