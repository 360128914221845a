package mupdf

import (
	"encoding/json"
	"fmt"
	"strings"
)

// OutlineItem is one entry of a document outline, flattened depth-first.
// Page is the zero-based target page, or -1 when the destination cannot be
// resolved.
type OutlineItem struct {
	Title string `json:"title"`
	URI   string `json:"uri,omitempty"`
	Page  int    `json:"page"`
	Depth int    `json:"depth"`
}

// STextOptions control structured text extraction. The zero value uses the
// library defaults.
type STextOptions struct {
	PreserveLigatures  bool
	PreserveWhitespace bool
	PreserveImages     bool
	InhibitSpaces      bool
	Dehyphenate        bool

	// Scale multiplies the coordinates reported for blocks and lines.
	// Zero means 1.0.
	Scale float64
}

func (o *STextOptions) scale() float64 {
	if o == nil || o.Scale == 0 {
		return 1
	}
	return o.Scale
}

// STextBBox is a rectangle in scaled page coordinates.
type STextBBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// STextFont describes the font of a text line.
type STextFont struct {
	Name   string  `json:"name"`
	Family string  `json:"family"`
	Weight string  `json:"weight"`
	Style  string  `json:"style"`
	Size   float64 `json:"size"`
}

// STextLine is one extracted line of text.
type STextLine struct {
	WMode int       `json:"wmode"`
	BBox  STextBBox `json:"bbox"`
	Font  STextFont `json:"font"`
	X     float64   `json:"x"`
	Y     float64   `json:"y"`
	Text  string    `json:"text"`
}

// STextBlock is a text block or an image region on a page.
type STextBlock struct {
	Type  string      `json:"type"`
	BBox  STextBBox   `json:"bbox"`
	Lines []STextLine `json:"lines,omitempty"`
}

// STextPageData is the structured text of one page in the JSON block
// format produced by STextPage.JSON.
type STextPageData struct {
	Blocks []STextBlock `json:"blocks"`
}

// ParseSTextJSON decodes structured text JSON into its typed form.
func ParseSTextJSON(data []byte) (*STextPageData, error) {
	var page STextPageData
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("parse structured text: %w", err)
	}
	return &page, nil
}

// PlainText flattens the text blocks into newline separated lines, skipping
// image blocks.
func (p *STextPageData) PlainText() string {
	var sb strings.Builder
	for _, block := range p.Blocks {
		if block.Type != "text" {
			continue
		}
		for _, line := range block.Lines {
			sb.WriteString(line.Text)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
