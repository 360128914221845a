package webapp

import (
	"testing"
)

// TestViewerPageInitialState tests the initial state of the viewer page
func TestViewerPageInitialState(t *testing.T) {
	page := &ViewerPage{}

	if page.docID != "" {
		t.Errorf("Initial docID should be empty, got %s", page.docID)
	}
	if page.currentPage != 0 {
		t.Errorf("Initial currentPage should be 0, got %d", page.currentPage)
	}
	if page.loading {
		t.Error("Initial loading should be false")
	}
	if page.showOutline {
		t.Error("Initial showOutline should be false")
	}
}

// TestViewerPageRenderStates tests that different states produce valid UI
func TestViewerPageRenderStates(t *testing.T) {
	t.Run("Loading state returns valid UI", func(t *testing.T) {
		page := &ViewerPage{
			loading: true,
		}
		ui := page.Render()

		if ui == nil {
			t.Error("Loading state should return non-nil UI")
		}
	})

	t.Run("Error state returns valid UI", func(t *testing.T) {
		page := &ViewerPage{
			loading: false,
			error:   "No document selected. Open a document from the home or browse page.",
		}
		ui := page.Render()

		if ui == nil {
			t.Error("Error state should return non-nil UI")
		}
	})

	t.Run("Document without pages returns valid UI", func(t *testing.T) {
		page := &ViewerPage{
			loading:   false,
			docID:     "01ABCDEFGHIJKLMNOPQRSTUVWX",
			docName:   "notes.txt",
			pageCount: 0,
		}
		ui := page.Render()

		if ui == nil {
			t.Error("Pageless state should return non-nil UI")
		}
	})

	t.Run("Success state returns valid UI", func(t *testing.T) {
		page := &ViewerPage{
			loading:     false,
			docID:       "01ABCDEFGHIJKLMNOPQRSTUVWX",
			docName:     "Invoice_2024.pdf",
			pageCount:   12,
			currentPage: 3,
			scale:       1.0,
		}
		ui := page.Render()

		if ui == nil {
			t.Error("Success state should return non-nil UI")
		}
	})

	t.Run("Success state with outline shown returns valid UI", func(t *testing.T) {
		page := &ViewerPage{
			loading:     false,
			docID:       "01ABCDEFGHIJKLMNOPQRSTUVWX",
			docName:     "Manual.pdf",
			pageCount:   40,
			currentPage: 0,
			scale:       1.0,
			showOutline: true,
			outline: []OutlineEntry{
				{Title: "Introduction", Page: 0, Depth: 0},
				{Title: "Installation", Page: 4, Depth: 0},
				{Title: "Requirements", Page: 5, Depth: 1},
				{Title: "Usage", Page: 12, Depth: 0},
			},
		}
		ui := page.Render()

		if ui == nil {
			t.Error("Outline state should return non-nil UI")
		}
	})
}

// TestPageImageURL tests the render URL construction
func TestPageImageURL(t *testing.T) {
	tests := []struct {
		name     string
		docID    string
		page     int
		scale    float64
		expected string
	}{
		{
			name:     "First page at default zoom",
			docID:    "01ABCDEFGHIJKLMNOPQRSTUVWX",
			page:     0,
			scale:    1.0,
			expected: "/api/document/01ABCDEFGHIJKLMNOPQRSTUVWX/page/0/image?scale=1.00",
		},
		{
			name:     "Later page zoomed in",
			docID:    "01ABCDEFGHIJKLMNOPQRSTUVWX",
			page:     7,
			scale:    2.5,
			expected: "/api/document/01ABCDEFGHIJKLMNOPQRSTUVWX/page/7/image?scale=2.50",
		},
		{
			name:     "Zoomed out",
			docID:    "01ABCDEFGHIJKLMNOPQRSTUVWX",
			page:     1,
			scale:    0.5,
			expected: "/api/document/01ABCDEFGHIJKLMNOPQRSTUVWX/page/1/image?scale=0.50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := &ViewerPage{
				docID:       tt.docID,
				currentPage: tt.page,
				scale:       tt.scale,
			}
			// Outside a browser BuildAPIURL returns relative URLs
			got := page.pageImageURL()
			if got != tt.expected {
				t.Errorf("pageImageURL() = %v, want %v", got, tt.expected)
			}
		})
	}
}

// TestOutlineEntryStruct tests the OutlineEntry data structure
func TestOutlineEntryStruct(t *testing.T) {
	entry := OutlineEntry{
		Title: "Chapter 3: Configuration",
		URI:   "#page=15",
		Page:  14,
		Depth: 1,
	}

	if entry.Title != "Chapter 3: Configuration" {
		t.Errorf("Title = %v, want Chapter 3: Configuration", entry.Title)
	}
	if entry.Page != 14 {
		t.Errorf("Page = %v, want 14", entry.Page)
	}
	if entry.Depth != 1 {
		t.Errorf("Depth = %v, want 1", entry.Depth)
	}
}

// TestViewerPageStateManagement tests viewer state flags
func TestViewerPageStateManagement(t *testing.T) {
	t.Run("Page bounds are respected in state", func(t *testing.T) {
		page := &ViewerPage{
			pageCount:   10,
			currentPage: 9,
		}

		if page.currentPage >= page.pageCount {
			t.Error("currentPage should stay below pageCount")
		}
	})

	t.Run("Outline hidden by default even when present", func(t *testing.T) {
		page := &ViewerPage{
			outline: []OutlineEntry{
				{Title: "Only chapter", Page: 0, Depth: 0},
			},
		}

		if page.showOutline {
			t.Error("Outline should start hidden")
		}
		if len(page.outline) != 1 {
			t.Errorf("Expected 1 outline entry, got %d", len(page.outline))
		}
	})
}
