package mupdf

import "errors"

// Sentinel errors reported by binding operations. The native exception
// detail (message, code) stops at the C boundary; callers match these with
// errors.Is.
var (
	// ErrNotAvailable is returned by every operation when the binary was
	// built without the mupdf build tag or without cgo.
	ErrNotAvailable = errors.New("mupdf: built without mupdf support")

	ErrContext        = errors.New("mupdf: cannot create context")
	ErrOpenDocument   = errors.New("mupdf: cannot open document")
	ErrCountPages     = errors.New("mupdf: cannot count pages")
	ErrLoadPage       = errors.New("mupdf: cannot load page")
	ErrStructuredText = errors.New("mupdf: cannot extract structured text")
	ErrRender         = errors.New("mupdf: cannot render page")

	// ErrClosed is returned when an operation is invoked on a nil or
	// already dropped handle.
	ErrClosed = errors.New("mupdf: use of dropped handle")
)
