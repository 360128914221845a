package webapp

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// WordFrequency is one word with its corpus-wide count.
type WordFrequency struct {
	Word      string `json:"word"`
	Frequency int    `json:"frequency"`
}

// WordCloudMetadata describes the last recalculation run.
type WordCloudMetadata struct {
	LastCalculation    string `json:"lastCalculation"`
	TotalDocsProcessed int    `json:"totalDocsProcessed"`
	TotalWordsIndexed  int    `json:"totalWordsIndexed"`
	Version            int    `json:"version"`
}

// WordCloudResponse is the wordcloud endpoint envelope.
type WordCloudResponse struct {
	Words    []WordFrequency    `json:"words"`
	Metadata *WordCloudMetadata `json:"metadata"`
	Count    int                `json:"count"`
}

// WordCloudPage visualizes the most frequent words across all documents.
// Clicking a word jumps to the search page for it.
type WordCloudPage struct {
	app.Compo

	words    []WordFrequency
	metadata *WordCloudMetadata
	loading  bool
	error    string
}

func (w *WordCloudPage) OnMount(ctx app.Context) {
	w.load(ctx)
}

func (w *WordCloudPage) load(ctx app.Context) {
	w.loading = true
	w.error = ""

	fetchJSON(ctx, "/api/wordcloud?limit=100", nil, func(status int, body string) {
		w.loading = false
		switch {
		case status == 0:
			w.error = "Network error: Failed to fetch word cloud"
		case status < 200 || status > 299:
			w.error = fmt.Sprintf("HTTP error: %d", status)
		default:
			var resp WordCloudResponse
			if err := json.Unmarshal([]byte(body), &resp); err != nil {
				w.error = fmt.Sprintf("Failed to parse response: %v", err)
				return
			}
			w.words = resp.Words
			w.metadata = resp.Metadata
			sort.Slice(w.words, func(i, j int) bool {
				return w.words[i].Frequency > w.words[j].Frequency
			})
		}
	})
}

func (w *WordCloudPage) recalculate(ctx app.Context) {
	postJSON(ctx, "/api/wordcloud/recalculate", func(status int, body string) {
		if status == 0 {
			app.Window().Call("alert", "Failed to trigger recalculation")
			return
		}
		app.Window().Call("alert", "Word cloud recalculation started. This may take a few moments.")

		// Give the background job a moment before showing fresh data.
		go func() {
			time.Sleep(5 * time.Second)
			ctx.Dispatch(func(ctx app.Context) {
				w.load(ctx)
			})
		}()
	})
}

func (w *WordCloudPage) Render() app.UI {
	var body app.UI
	switch {
	case w.loading:
		body = app.Div().Class("loading").Body(
			app.P().Text("Loading word cloud..."),
		)
	case w.error != "":
		body = app.Div().Class("error").Body(
			app.P().Text("Error: "+w.error),
			app.Button().Class("retry-button").Text("Retry").
				OnClick(func(ctx app.Context, e app.Event) {
					w.load(ctx)
				}),
		)
	case len(w.words) == 0:
		body = app.Div().Class("no-data").Body(
			app.P().Text("No word cloud data available."),
			app.P().Text("Try ingesting some documents first."),
			app.Button().Class("recalculate-button").Text("Generate Word Cloud").
				OnClick(func(ctx app.Context, e app.Event) {
					w.recalculate(ctx)
				}),
		)
	default:
		body = app.Div().Class("wordcloud-container").Body(
			w.renderMetadata(),
			app.Div().Class("wordcloud").Body(w.renderWords()),
			app.Div().Class("wordcloud-actions").Body(
				app.Button().Class("refresh-button").Text("Refresh").
					OnClick(func(ctx app.Context, e app.Event) {
						w.load(ctx)
					}),
				app.Button().Class("recalculate-button").Text("Recalculate Word Cloud").
					OnClick(func(ctx app.Context, e app.Event) {
						w.recalculate(ctx)
					}),
			),
		)
	}

	return app.Div().Class("wordcloud-page").Body(
		app.Div().Class("page-header").Body(
			app.H2().Text("Word Cloud"),
			app.P().Class("page-description").
				Text("Visualization of the most frequent words across all documents"),
		),
		body,
	)
}

func (w *WordCloudPage) renderMetadata() app.UI {
	if w.metadata == nil {
		return app.Div()
	}

	lines := []app.UI{
		metadataLine("Total Documents: ", fmt.Sprintf("%d", w.metadata.TotalDocsProcessed)),
		metadataLine("Unique Words: ", fmt.Sprintf("%d", w.metadata.TotalWordsIndexed)),
	}
	if w.metadata.LastCalculation != "" {
		lines = append(lines, metadataLine("Last Updated: ", w.metadata.LastCalculation))
	}
	return app.Div().Class("wordcloud-metadata").Body(lines...)
}

func metadataLine(label, value string) app.UI {
	return app.P().Body(app.Text(label), app.Strong().Text(value))
}

func (w *WordCloudPage) renderWords() app.UI {
	if len(w.words) == 0 {
		return app.Div().Text("No words to display")
	}

	// words are sorted by frequency, so min and max sit at the ends
	maxFreq := w.words[0].Frequency
	minFreq := w.words[len(w.words)-1].Frequency

	return app.Div().Class("word-cloud-words").
		Style("text-align", "center").
		Style("line-height", "2").
		Body(app.Range(w.words).Slice(func(i int) app.UI {
			word := w.words[i]
			return app.Span().Class("word-cloud-item").
				Style("font-size", fmt.Sprintf("%.1fpx", wordFontSize(word.Frequency, minFreq, maxFreq))).
				Style("color", heatColor(i, len(w.words))).
				Style("margin", "5px 10px").
				Style("display", "inline-block").
				Style("cursor", "pointer").
				Title(fmt.Sprintf("%s: %d occurrences", word.Word, word.Frequency)).
				Text(word.Word).
				OnClick(func(ctx app.Context, e app.Event) {
					ctx.Navigate("/search?term=" + word.Word)
				})
		}))
}

// wordFontSize maps a frequency onto a 12px to 64px range. Log scaling keeps
// mid-frequency words readable when one word dominates the corpus.
func wordFontSize(freq, minFreq, maxFreq int) float64 {
	const minSize, maxSize = 12.0, 64.0
	if maxFreq == minFreq {
		return (minSize + maxSize) / 2
	}
	scale := math.Log(float64(freq-minFreq+1)) / math.Log(float64(maxFreq-minFreq+1))
	return minSize + scale*(maxSize-minSize)
}

// heatStops are the hue segments of the frequency heat map, hottest last:
// blue, cyan, green to yellow, yellow to red.
var heatStops = []struct{ start, end float64 }{
	{240, 200},
	{200, 140},
	{140, 90},
	{90, 30},
}

// heatColor picks an oklch color for the word at index out of total words.
// Lightness and chroma stay fixed so only the hue carries the ranking.
func heatColor(index, total int) string {
	if total <= 0 {
		return "#3b82f6"
	}

	position := float64(index) / float64(total)
	seg := int(position * 4)
	if seg < 0 {
		seg = 0
	}
	if seg > len(heatStops)-1 {
		seg = len(heatStops) - 1
	}

	t := (position - 0.25*float64(seg)) / 0.25
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	stop := heatStops[seg]
	hue := stop.start - t*(stop.start-stop.end)
	return fmt.Sprintf("oklch(%.2f %.2f %ddeg)", 0.65, 0.15, int(hue))
}
