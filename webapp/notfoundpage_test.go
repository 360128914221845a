package webapp

import (
	"testing"
)

func TestNotFoundPageRender(t *testing.T) {
	ui := (&NotFoundPage{}).Render()
	if ui == nil {
		t.Fatal("Render returned nil")
	}
}

func TestUnknownPathsFallBackToNotFound(t *testing.T) {
	for _, path := range []string{"/missing", "/jobs/", "/browse/extra"} {
		if _, ok := pageForPath(path).(*NotFoundPage); !ok {
			t.Errorf("pageForPath(%q) = %T, want *NotFoundPage", path, pageForPath(path))
		}
	}
}

func TestKnownPathsDoNotFallBack(t *testing.T) {
	for path := range pagesByPath {
		if _, ok := pageForPath(path).(*NotFoundPage); ok {
			t.Errorf("pageForPath(%q) fell back to NotFoundPage", path)
		}
	}
}
