package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/folium-app/folium/database"
)

// fullFileSystem is the tree payload the frontend file browser consumes.
// Error carries a non-fatal warning alongside the tree.
type fullFileSystem struct {
	FileSystem []fileTreeStruct `json:"fileSystem"`
	Error      string           `json:"error"`
}

type fileTreeStruct struct {
	ID          string   `json:"id"`
	ULIDStr     string   `json:"ulid"`
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

// documentTree walks the document storage folder and builds the tree the
// browse page renders. Files found on disk without a database row are
// reported through the Error field but still included, so the browser
// shows everything that exists.
func documentTree(rootPath string, db database.Repository) (*fullFileSystem, error) {
	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, err
	}

	var tree fullFileSystem

	// Walk visits parents before children, so the parent's node is always
	// already in the slice when a child looks it up.
	parentIDOf := func(path string) string {
		dir := filepath.Dir(path)
		for _, node := range tree.FileSystem {
			if node.FullPath == dir {
				return node.ID
			}
		}
		return ""
	}

	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		node := fileTreeStruct{
			Name:     info.Name(),
			FullPath: path,
			ParentID: parentIDOf(path),
			Openable: true,
		}

		if info.IsDir() {
			dirULID, err := database.NewULID(time.Now())
			if err != nil {
				return err
			}
			node.ID = dirULID.String() + filepath.Base(path) //TODO, should I store the entire filesystem layout?  Most likely yes?
			node.IsDir = true
			children, err := childNames(path)
			if err != nil {
				return err
			}
			node.ChildrenIDs = children
		} else {
			node.Size = info.Size()
			node.ModDate = info.ModTime().String()

			document, err := database.FetchDocumentFromPath(path, db)
			if err != nil {
				tree.Error = fmt.Sprintf("Document found in directory without database entry, please investigate: %s", path)
			}
			node.FileURL = document.URL
			node.ID = document.ULID.String()
			node.ULIDStr = document.ULID.String()
		}

		tree.FileSystem = append(tree.FileSystem, node)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tree, nil
}

func childNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

// searchResultsTree packages search hits as a flat tree under a synthetic
// root folder, the shape the frontend's tree widget expects.
func searchResultsTree(documents []database.Document) ([]fileTreeStruct, error) {
	children := make([]fileTreeStruct, 0, len(documents))
	for _, document := range documents {
		documentInfo, err := os.Stat(document.Path)
		if err != nil {
			return nil, err
		}
		children = append(children, fileTreeStruct{
			ID:       document.ULID.String(),
			ULIDStr:  document.ULID.String(),
			Name:     document.Name,
			Size:     documentInfo.Size(),
			ModDate:  documentInfo.ModTime().String(),
			Openable: true,
			ParentID: "SearchResults",
			FullPath: document.Path,
			FileURL:  document.URL,
		})
	}

	names := make([]string, 0, len(children))
	for _, child := range children {
		names = append(names, child.Name)
	}
	root := fileTreeStruct{
		ID:          "SearchResults",
		Name:        "Search Results",
		Openable:    true,
		ModDate:     time.Now().String(),
		IsDir:       true,
		FullPath:    "null",
		ChildrenIDs: names,
	}
	return append([]fileTreeStruct{root}, children...), nil
}
