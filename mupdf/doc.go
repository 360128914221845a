// Package mupdf binds the MuPDF rendering library.
//
// MuPDF signals failure by raising an internal exception, a longjmp that
// must never unwind across a cgo frame. Every operation therefore goes
// through a small C shim (shim.c) that catches the exception inside the
// call and reports failure through the return value: a NULL handle, or -1
// for the page count. This layer converts those sentinels into ordinary
// Go errors; the native error message is not carried across.
//
// The binding is opt-in. Build with -tags mupdf against a system MuPDF to
// get the real implementation; in default builds every operation returns
// ErrNotAvailable and Available reports false.
//
// Handles are owned by the caller and released with Drop. A Context
// serializes the native calls made through it; use one Context per
// goroutine. Handles must only be used with the Context that created
// them.
package mupdf
