package webapp

import (
	"encoding/json"
	"fmt"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// IngestPage kicks off a manual scan of the ingress folder.
type IngestPage struct {
	app.Compo

	running bool
	result  string
	error   string
	jobID   string
}

func (i *IngestPage) start(ctx app.Context, e app.Event) {
	i.running = true
	i.result = ""
	i.error = ""
	i.jobID = ""

	postJSON(ctx, "/api/ingest", func(status int, body string) {
		i.running = false
		if status == 0 {
			i.error = "Network error: Could not connect to server"
			return
		}
		if status < 200 || status > 299 {
			i.error = fmt.Sprintf("Ingestion failed with status: %d", status)
			return
		}

		i.result = "Ingestion started"
		var resp jobStartResponse
		if err := json.Unmarshal([]byte(body), &resp); err == nil {
			if resp.Message != "" {
				i.result = resp.Message
			}
			i.jobID = resp.JobID
		}
	})
}

func (i *IngestPage) Render() app.UI {
	label := "Run Ingestion Now"
	var status app.UI = app.Div()

	switch {
	case i.running:
		label = "Starting..."
		status = app.Div().Class("loading").Text("Starting ingestion...")
	case i.error != "":
		status = app.Div().Class("error").Text("Error: " + i.error)
	case i.result != "":
		status = app.Div().Class("success").Body(
			app.P().Text(i.result),
			app.P().Body(
				app.Text("Ingestion runs in the background. "),
				app.A().Href("/jobs").Text("Track progress on the Jobs page"),
			),
		)
	}

	return app.Div().Class("ingest-page").Body(
		app.H2().Text("Manual Ingestion"),
		app.P().Text("Click the button below to run the document ingestion process now. This will scan the ingress folder and import any new documents."),

		app.Div().Class("ingest-controls").Body(
			app.Button().Class("btn-primary").
				Disabled(i.running).
				Text(label).
				OnClick(i.start),
		),

		status,
	)
}
