package engine

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/folium-app/folium/database"
)

// GetWordCloud returns the most frequent words for the word cloud view.
// @Summary Get word cloud data
// @Description Return the most frequent words across all documents
// @Tags WordCloud
// @Produce json
// @Param limit query int false "Maximum number of words (default 100, max 500)"
// @Success 200 {object} map[string]interface{} "Word frequencies"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /wordcloud [get]
func (h *ServerHandler) GetWordCloud(c echo.Context) error {
	limit := intQueryParam(c, "limit", 100, 1, 500)

	words, err := h.DB.GetTopWords(limit)
	if err != nil {
		Logger.Error("Word frequency query failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve word cloud data"})
	}
	// An empty cloud serializes as [], not null
	if words == nil {
		words = []database.WordFrequency{}
	}

	metadata, err := h.DB.GetWordCloudMetadata()
	if err != nil {
		Logger.Warn("Word cloud metadata read failed", "error", err)
		metadata = &database.WordCloudMetadata{}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"words":    words,
		"metadata": metadata,
		"count":    len(words),
	})
}

// RecalculateWordCloud rebuilds word frequencies in the background.
// @Summary Recalculate word cloud
// @Description Recalculate word frequencies across all documents. Runs in the background.
// @Tags WordCloud
// @Produce json
// @Success 200 {object} map[string]interface{} "Recalculation started"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /wordcloud/recalculate [post]
func (h *ServerHandler) RecalculateWordCloud(c echo.Context) error {
	Logger.Info("Word cloud recalculation requested over the API")

	go func() {
		if err := h.DB.RecalculateAllWordFrequencies(); err != nil {
			Logger.Error("Background word cloud recalculation failed", "error", err)
			return
		}
		Logger.Info("Word cloud recalculation finished")
	}()

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Word cloud recalculation started",
		"status":  "processing",
	})
}
