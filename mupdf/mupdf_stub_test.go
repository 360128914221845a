//go:build !mupdf || !cgo

package mupdf

import (
	"errors"
	"testing"
)

func TestStubNotAvailable(t *testing.T) {
	if Available() {
		t.Fatal("Available must report false without the mupdf build tag")
	}

	if _, err := NewContext(); !errors.Is(err, ErrNotAvailable) {
		t.Errorf("Expected ErrNotAvailable from NewContext, got %v", err)
	}
}

func TestStubOperationsFail(t *testing.T) {
	var ctx Context
	if _, err := ctx.OpenDocument("some.pdf"); !errors.Is(err, ErrNotAvailable) {
		t.Errorf("Expected ErrNotAvailable from OpenDocument, got %v", err)
	}
	if _, err := ctx.OpenDocumentFromMemory("pdf", []byte("%PDF-1.4")); !errors.Is(err, ErrNotAvailable) {
		t.Errorf("Expected ErrNotAvailable from OpenDocumentFromMemory, got %v", err)
	}

	var doc Document
	if count, err := doc.CountPages(); count != -1 || !errors.Is(err, ErrNotAvailable) {
		t.Errorf("Expected (-1, ErrNotAvailable) from CountPages, got (%d, %v)", count, err)
	}
	if _, err := doc.LoadPage(0); !errors.Is(err, ErrNotAvailable) {
		t.Errorf("Expected ErrNotAvailable from LoadPage, got %v", err)
	}
	if _, err := doc.Outline(); !errors.Is(err, ErrNotAvailable) {
		t.Errorf("Expected ErrNotAvailable from Outline, got %v", err)
	}

	var page Page
	if _, err := page.StructuredText(nil); !errors.Is(err, ErrNotAvailable) {
		t.Errorf("Expected ErrNotAvailable from StructuredText, got %v", err)
	}
	if _, err := page.Image(1.0); !errors.Is(err, ErrNotAvailable) {
		t.Errorf("Expected ErrNotAvailable from Image, got %v", err)
	}

	var text STextPage
	if _, err := text.JSON(); !errors.Is(err, ErrNotAvailable) {
		t.Errorf("Expected ErrNotAvailable from JSON, got %v", err)
	}
}

func TestStubDropsAreSafe(t *testing.T) {
	// Drop must be callable on zero and nil values
	var ctx *Context
	ctx.Drop()
	(&Context{}).Drop()
	(&Document{}).Drop()
	(&Page{}).Drop()
	(&STextPage{}).Drop()
}
