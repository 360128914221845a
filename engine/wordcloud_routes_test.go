package engine

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/folium-app/folium/database"
)

func TestGetWordCloud(t *testing.T) {
	serverHandler := newTestHandler(t)

	ingressFixture(t, serverHandler, "berries.txt",
		[]byte("strawberry strawberry strawberry rhubarb compote"))
	if err := serverHandler.DB.RecalculateAllWordFrequencies(); err != nil {
		t.Fatalf("Failed to recalculate word frequencies: %v", err)
	}

	e := serverHandler.Echo
	e.GET("/api/wordcloud", serverHandler.GetWordCloud)

	req := httptest.NewRequest(http.MethodGet, "/api/wordcloud", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d: %s", rec.Code, rec.Body.String())
	}
	var response struct {
		Words    []database.WordFrequency    `json:"words"`
		Metadata *database.WordCloudMetadata `json:"metadata"`
		Count    int                         `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.Count != len(response.Words) {
		t.Errorf("count = %d but %d words returned", response.Count, len(response.Words))
	}
	if response.Metadata == nil {
		t.Fatal("Response carries no metadata")
	}

	var strawberry *database.WordFrequency
	for i := range response.Words {
		if response.Words[i].Word == "strawberry" {
			strawberry = &response.Words[i]
			break
		}
	}
	if strawberry == nil {
		t.Fatalf("Word cloud %v does not contain strawberry", response.Words)
	}
	if strawberry.Frequency != 3 {
		t.Errorf("strawberry frequency = %d, want 3", strawberry.Frequency)
	}

	// The most frequent word sorts first
	if len(response.Words) > 0 && response.Words[0].Word != "strawberry" {
		t.Errorf("Top word = %q, want strawberry", response.Words[0].Word)
	}
}

func TestGetWordCloudEmpty(t *testing.T) {
	serverHandler := newTestHandler(t)

	e := serverHandler.Echo
	e.GET("/api/wordcloud", serverHandler.GetWordCloud)

	req := httptest.NewRequest(http.MethodGet, "/api/wordcloud", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d: %s", rec.Code, rec.Body.String())
	}
	var response struct {
		Words []database.WordFrequency `json:"words"`
		Count int                      `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.Count != 0 {
		t.Errorf("count = %d on an empty database, want 0", response.Count)
	}
}
