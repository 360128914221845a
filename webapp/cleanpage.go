package webapp

import (
	"encoding/json"
	"fmt"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// jobStartResponse is what the admin trigger endpoints return.
type jobStartResponse struct {
	Message string `json:"message"`
	JobID   string `json:"jobId"`
}

// CleanPage triggers the database cleanup job: entries whose files vanished
// get removed, unknown files on disk move back to ingress for reprocessing.
type CleanPage struct {
	app.Compo

	running bool
	result  string
	error   string
	jobID   string
}

func (c *CleanPage) start(ctx app.Context, e app.Event) {
	c.running = true
	c.result = ""
	c.error = ""
	c.jobID = ""

	postJSON(ctx, "/api/clean", func(status int, body string) {
		c.running = false
		switch {
		case status == 0:
			c.error = "Network error: Could not connect to server"
		case status < 200 || status > 299:
			c.error = fmt.Sprintf("Cleanup failed with status: %d", status)
		default:
			var resp jobStartResponse
			if err := json.Unmarshal([]byte(body), &resp); err == nil && resp.Message != "" {
				c.result = resp.Message
			} else {
				c.result = "Database cleanup started"
			}
			c.jobID = resp.JobID
		}
	})
}

func (c *CleanPage) Render() app.UI {
	label := "Clean Database Now"
	if c.running {
		label = "Starting..."
	}

	return app.Div().Class("clean-page").Body(
		app.H2().Text("Database Cleanup"),
		app.P().Text("This tool will scan all documents in the database and verify that their files still exist on disk. Any database entries for missing files will be removed."),
		app.P().Text("It will also find documents in storage that are not in the database and move them to the ingress folder for reprocessing (including any .yaml metadata and .txt OCR files)."),

		app.Div().Class("warning").Body(
			app.P().Text("⚠️ Warning: This operation will permanently delete database entries for missing files. Make sure you have a backup if needed."),
		),

		app.Div().Class("clean-controls").Body(
			app.Button().Class("btn-danger").
				Disabled(c.running).
				Text(label).
				OnClick(c.start),
		),

		c.renderOutcome(),
	)
}

func (c *CleanPage) renderOutcome() app.UI {
	switch {
	case c.running:
		return app.Div().Class("loading").Text("Starting database cleanup...")
	case c.error != "":
		return app.Div().Class("error").Text("Error: " + c.error)
	case c.result != "":
		return app.Div().Class("success").Body(
			app.P().Text(c.result),
			app.P().Body(
				app.Text("Cleanup runs in the background. "),
				app.A().Href("/jobs").Text("Track progress on the Jobs page"),
			),
		)
	}
	return app.Div()
}
