package webapp

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// JobsPage lists background jobs with live progress. Auto-refresh polls the
// API every two seconds while enabled.
type JobsPage struct {
	app.Compo

	jobs        []Job
	loading     bool
	error       string
	autoRefresh bool
	ticker      *time.Ticker
}

func (j *JobsPage) OnMount(ctx app.Context) {
	j.autoRefresh = true
	j.load(ctx)

	ctx.Async(func() {
		j.ticker = time.NewTicker(2 * time.Second)
		for range j.ticker.C {
			if j.autoRefresh {
				j.load(ctx)
			}
		}
	})
}

func (j *JobsPage) OnDismount() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
}

// load refreshes the job list. It is also called from the ticker goroutine,
// so state writes go through Dispatch.
func (j *JobsPage) load(ctx app.Context) {
	ctx.Dispatch(func(app.Context) {
		j.loading = true
		j.error = ""
	})

	fetchJSON(ctx, "/api/jobs?limit=50", nil, func(status int, body string) {
		j.loading = false
		switch {
		case status == 0:
			j.error = "Network error: Could not connect to server"
		case status < 200 || status > 299:
			j.error = fmt.Sprintf("Failed to load jobs (status: %d)", status)
		default:
			var jobs []Job
			if err := json.Unmarshal([]byte(body), &jobs); err != nil {
				j.error = "Failed to parse jobs: " + err.Error()
				return
			}
			j.jobs = jobs
		}
	})
}

func (j *JobsPage) Render() app.UI {
	return app.Div().Class("jobs-page").Body(
		app.H2().Text("Background Jobs"),
		app.P().Text("View and monitor background jobs for document processing, cleanup, and other tasks."),

		app.Div().Class("jobs-controls").Body(
			app.Button().Class("btn-primary").
				Disabled(j.loading).
				Text("Refresh").
				OnClick(func(ctx app.Context, e app.Event) {
					j.load(ctx)
				}),
			app.Label().Class("auto-refresh-label").Body(
				app.Input().Type("checkbox").
					Checked(j.autoRefresh).
					OnChange(func(ctx app.Context, e app.Event) {
						j.autoRefresh = ctx.JSSrc().Get("checked").Bool()
					}),
				app.Text(" Auto-refresh"),
			),
		),

		j.renderJobs(),
	)
}

func (j *JobsPage) renderJobs() app.UI {
	switch {
	case j.loading && len(j.jobs) == 0:
		return app.Div().Class("loading").Text("Loading jobs...")
	case j.error != "":
		return app.Div().Class("error").Text("Error: " + j.error)
	case len(j.jobs) == 0:
		return app.Div().Class("info").Body(
			app.P().Text("No jobs found. Jobs are created when you trigger ingestion, cleanup, or other background operations."),
		)
	}

	return app.Div().Class("jobs-list").Body(
		app.Range(j.jobs).Slice(func(i int) app.UI {
			return j.renderJob(j.jobs[i])
		}),
	)
}

func (j *JobsPage) renderJob(job Job) app.UI {
	return app.Div().Class("job-card job-" + job.Status).Body(
		app.Div().Class("job-header").Body(
			app.Div().Class("job-type").Body(
				app.Strong().Text(jobTypeLabel(job.Type)),
				app.Span().Class("job-status-badge job-status-"+job.Status).Text(job.Status),
			),
			app.Div().Class("job-time").Text(formatTimestamp(job.CreatedAt)),
		),

		app.If(job.Status == "running", func() app.UI {
			return app.Div().Class("job-progress").Body(
				app.Div().Class("progress-bar").Body(
					app.Div().Class("progress-fill").
						Style("width", fmt.Sprintf("%d%%", job.Progress)),
				),
				app.Div().Class("progress-text").
					Text(fmt.Sprintf("%d%% - %s", job.Progress, job.CurrentStep)),
			)
		}),

		app.If(job.Message != "", func() app.UI {
			return app.Div().Class("job-message").Text(job.Message)
		}),

		app.If(job.Error != "", func() app.UI {
			return app.Div().Class("job-error").Body(
				app.Strong().Text("Error: "),
				app.Text(job.Error),
			)
		}),

		app.If(job.Result != "", func() app.UI {
			return app.Div().Class("job-result").Text(formatResult(job.Result))
		}),

		app.Div().Class("job-footer").Body(
			app.Div().Class("job-id").Text("ID: "+job.ID),
			app.If(job.CompletedAt != "", func() app.UI {
				return app.Div().Class("job-completed").
					Text("Completed: " + formatTimestamp(job.CompletedAt))
			}),
		),
	)
}

var jobTypeLabels = map[string]string{
	"ingestion":      "Document Ingestion",
	"cleanup":        "Database Cleanup",
	"wordcloud":      "Word Cloud Recalculation",
	"search_reindex": "Search Reindex",
	"render_refresh": "Render Refresh",
}

func jobTypeLabel(jobType string) string {
	if label, ok := jobTypeLabels[jobType]; ok {
		return label
	}
	if jobType == "" {
		return jobType
	}
	return strings.ToUpper(jobType[:1]) + jobType[1:]
}

// formatTimestamp renders an RFC3339 time as a relative phrase for recent
// values and a full date otherwise. Unparseable input comes back as is.
func formatTimestamp(raw string) string {
	if raw == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}

	since := time.Since(t)
	switch {
	case since < time.Minute:
		return "Just now"
	case since < time.Hour:
		return agoText(int(since.Minutes()), "minute")
	case since < 24*time.Hour:
		return agoText(int(since.Hours()), "hour")
	}
	return t.Format("Jan 2, 2006 at 3:04 PM")
}

func agoText(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

var resultFields = []struct {
	key      string
	label    string
	showZero bool
}{
	{"filesProcessed", "Processed", true},
	{"filesTotal", "Total", true},
	{"errors", "Errors", false},
	{"duplicates", "Duplicates", false},
	{"scanned", "Scanned", true},
	{"deleted", "Deleted", false},
	{"moved", "Moved", false},
	{"updated", "Updated", false},
	{"skipped", "Skipped", false},
}

// formatResult flattens a job's JSON result envelope into one display line.
// Payloads with no known counters come back untouched.
func formatResult(result string) string {
	var data map[string]any
	if err := json.Unmarshal([]byte(result), &data); err != nil {
		return result
	}

	var parts []string
	for _, field := range resultFields {
		v, ok := data[field.key].(float64)
		if !ok {
			continue
		}
		if !field.showZero && v == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %d", field.label, int64(v)))
	}
	if len(parts) == 0 {
		return result
	}
	return strings.Join(parts, ", ")
}
