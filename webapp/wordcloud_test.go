package webapp

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestWordFontSizeBounds(t *testing.T) {
	cases := []struct{ freq, min, max int }{
		{1, 1, 100},
		{100, 1, 100},
		{50, 1, 100},
		{0, 0, 100},
		{5, 3, 10},
	}
	for _, tc := range cases {
		size := wordFontSize(tc.freq, tc.min, tc.max)
		if size < 12.0 || size > 64.0 {
			t.Errorf("wordFontSize(%d, %d, %d) = %.2f, out of [12, 64]",
				tc.freq, tc.min, tc.max, size)
		}
	}
}

func TestWordFontSizeFlatDistribution(t *testing.T) {
	if size := wordFontSize(42, 42, 42); size != 38.0 {
		t.Errorf("equal min and max: got %.2f, want the 38.0 midpoint", size)
	}
}

func TestWordFontSizeDescends(t *testing.T) {
	freqs := []int{1000, 500, 250, 125, 62, 31, 15, 7, 3, 1}
	prev := 65.0
	for _, f := range freqs {
		size := wordFontSize(f, 1, 1000)
		if size > prev {
			t.Errorf("size for freq %d is %.2f, larger than previous %.2f", f, size, prev)
		}
		prev = size
	}

	spread := wordFontSize(1000, 1, 1000) - wordFontSize(1, 1, 1000)
	if spread < 20 {
		t.Errorf("size spread %.2f too narrow for a 1000x frequency ratio", spread)
	}
}

func TestHeatColorStops(t *testing.T) {
	cases := []struct {
		index int
		want  string
	}{
		{0, "oklch(0.65 0.15 240deg)"},
		{25, "oklch(0.65 0.15 200deg)"},
		{50, "oklch(0.65 0.15 140deg)"},
		{75, "oklch(0.65 0.15 90deg)"},
		{99, "oklch(0.65 0.15 32deg)"},
	}
	for _, tc := range cases {
		if got := heatColor(tc.index, 100); got != tc.want {
			t.Errorf("heatColor(%d, 100) = %q, want %q", tc.index, got, tc.want)
		}
	}
}

func TestHeatColorEdges(t *testing.T) {
	if got := heatColor(0, 0); got != "#3b82f6" {
		t.Errorf("zero total: got %q, want the fallback blue", got)
	}

	for _, tc := range []struct{ index, total int }{{-1, 100}, {150, 100}, {0, 1}} {
		got := heatColor(tc.index, tc.total)
		if !strings.HasPrefix(got, "oklch(") || !strings.HasSuffix(got, "deg)") {
			t.Errorf("heatColor(%d, %d) = %q, not an oklch color", tc.index, tc.total, got)
		}
	}

	if heatColor(0, 100) == heatColor(99, 100) {
		t.Error("first and last colors should differ")
	}
}

func TestWordCloudResponseDecoding(t *testing.T) {
	payload := `{
		"words": [{"word": "invoice", "frequency": 42}, {"word": "report", "frequency": 7}],
		"metadata": {"lastCalculation": "2026-08-01T10:00:00Z", "totalDocsProcessed": 12, "totalWordsIndexed": 480, "version": 3},
		"count": 2
	}`

	var resp WordCloudResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Words) != 2 || resp.Count != 2 {
		t.Fatalf("got %d words, count %d", len(resp.Words), resp.Count)
	}
	if resp.Words[0].Word != "invoice" || resp.Words[0].Frequency != 42 {
		t.Errorf("first word = %+v", resp.Words[0])
	}
	if resp.Metadata == nil || resp.Metadata.TotalDocsProcessed != 12 || resp.Metadata.Version != 3 {
		t.Errorf("metadata = %+v", resp.Metadata)
	}
}
