package webapp

import (
	"net/http"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// Job mirrors the job rows returned by the jobs API. Timestamps stay as
// strings, formatting happens at render time.
type Job struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	Progress    int    `json:"progress"`
	CurrentStep string `json:"currentStep"`
	TotalSteps  int    `json:"totalSteps"`
	Message     string `json:"message"`
	Error       string `json:"error,omitempty"`
	Result      string `json:"result,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
	StartedAt   string `json:"startedAt,omitempty"`
	CompletedAt string `json:"completedAt,omitempty"`
}

// GetAPIBaseURL resolves the backend base URL. The frontend server injects
// window.folium_config when the API lives on another host; without it every
// call stays relative to the page origin.
func GetAPIBaseURL() string {
	if !app.IsClient {
		return ""
	}

	cfg := app.Window().Get("folium_config")
	if !cfg.Truthy() {
		return ""
	}
	raw := cfg.Get("apiURL")
	if !raw.Truthy() {
		return ""
	}

	base := raw.String()
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base
}

// BuildAPIURL prefixes path with the configured backend base URL.
func BuildAPIURL(path string) string {
	if base := GetAPIBaseURL(); base != "" {
		return base + path
	}
	return path
}

// fetchJSON runs a browser fetch against the API and hands the stringified
// JSON body to done on the UI goroutine. Status 0 means the request itself
// failed; 204 responses skip body parsing and deliver an empty string.
func fetchJSON(ctx app.Context, path string, opts map[string]any, done func(status int, body string)) {
	ctx.Async(func() {
		deliver := func(status int, body string) {
			ctx.Dispatch(func(app.Context) { done(status, body) })
		}

		fetchArgs := []any{BuildAPIURL(path)}
		if opts != nil {
			fetchArgs = append(fetchArgs, opts)
		}

		request := app.Window().Call("fetch", fetchArgs...)
		request.Call("then", app.FuncOf(func(this app.Value, args []app.Value) any {
			if len(args) == 0 {
				return nil
			}
			response := args[0]
			status := response.Get("status").Int()
			if status == http.StatusNoContent {
				deliver(status, "")
				return nil
			}

			parsed := response.Call("json")
			parsed.Call("then", app.FuncOf(func(this app.Value, args []app.Value) any {
				if len(args) == 0 {
					return nil
				}
				text := app.Window().Get("JSON").Call("stringify", args[0]).String()
				deliver(status, text)
				return nil
			}))
			parsed.Call("catch", app.FuncOf(func(this app.Value, args []app.Value) any {
				deliver(status, "")
				return nil
			}))
			return nil
		})).Call("catch", app.FuncOf(func(this app.Value, args []app.Value) any {
			deliver(0, "")
			return nil
		}))
	})
}

// postJSON is fetchJSON with the POST method set.
func postJSON(ctx app.Context, path string, done func(status int, body string)) {
	fetchJSON(ctx, path, map[string]any{"method": "POST"}, done)
}
