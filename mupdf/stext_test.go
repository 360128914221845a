package mupdf

import (
	"strings"
	"testing"
)

const sampleSTextJSON = `{
  "blocks": [
    {
      "type": "text",
      "bbox": {"x": 72, "y": 63, "w": 168, "h": 24},
      "lines": [
        {
          "wmode": 0,
          "bbox": {"x": 72, "y": 63, "w": 168, "h": 24},
          "font": {"name": "Helvetica", "family": "sans-serif", "weight": "normal", "style": "normal", "size": 24},
          "x": 72, "y": 84,
          "text": "Hello, World!"
        },
        {
          "wmode": 0,
          "bbox": {"x": 72, "y": 95, "w": 120, "h": 24},
          "font": {"name": "Helvetica", "family": "sans-serif", "weight": "normal", "style": "normal", "size": 24},
          "x": 72, "y": 116,
          "text": "Second line"
        }
      ]
    },
    {
      "type": "image",
      "bbox": {"x": 0, "y": 200, "w": 612, "h": 100}
    }
  ]
}`

func TestParseSTextJSON(t *testing.T) {
	page, err := ParseSTextJSON([]byte(sampleSTextJSON))
	if err != nil {
		t.Fatalf("Failed to parse structured text JSON: %v", err)
	}

	if len(page.Blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d", len(page.Blocks))
	}

	text := page.Blocks[0]
	if text.Type != "text" || len(text.Lines) != 2 {
		t.Errorf("Expected text block with 2 lines, got type %q with %d lines", text.Type, len(text.Lines))
	}
	if text.Lines[0].Text != "Hello, World!" {
		t.Errorf("Unexpected first line text: %q", text.Lines[0].Text)
	}
	if text.Lines[0].Font.Name != "Helvetica" || text.Lines[0].Font.Size != 24 {
		t.Errorf("Unexpected font: %+v", text.Lines[0].Font)
	}
	if text.BBox.W != 168 {
		t.Errorf("Unexpected block bbox width: %g", text.BBox.W)
	}

	if page.Blocks[1].Type != "image" {
		t.Errorf("Expected image block, got %q", page.Blocks[1].Type)
	}
}

func TestParseSTextJSONInvalid(t *testing.T) {
	if _, err := ParseSTextJSON([]byte("{not json")); err == nil {
		t.Error("Expected an error for invalid JSON")
	}
}

func TestPlainText(t *testing.T) {
	page, err := ParseSTextJSON([]byte(sampleSTextJSON))
	if err != nil {
		t.Fatalf("Failed to parse structured text JSON: %v", err)
	}

	plain := page.PlainText()
	if !strings.Contains(plain, "Hello, World!") || !strings.Contains(plain, "Second line") {
		t.Errorf("PlainText missing expected lines: %q", plain)
	}
	if strings.Count(plain, "\n") != 2 {
		t.Errorf("Expected one newline per line, got %q", plain)
	}
}

func TestSTextOptionsScale(t *testing.T) {
	var opts *STextOptions
	if opts.scale() != 1 {
		t.Errorf("Expected nil options to scale 1, got %g", opts.scale())
	}
	if (&STextOptions{}).scale() != 1 {
		t.Errorf("Expected zero scale to default to 1")
	}
	if (&STextOptions{Scale: 2.5}).scale() != 2.5 {
		t.Errorf("Expected explicit scale to pass through")
	}
}
