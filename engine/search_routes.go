package engine

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// SearchDocuments will take the search terms and search all documents using PostgreSQL full-text search
// @Summary Search documents
// @Description Search all documents using PostgreSQL full-text search
// @Tags Search
// @Accept json
// @Produce json
// @Param term query string true "Search term"
// @Success 200 {object} fullFileSystem "Search results"
// @Success 204 "No results found"
// @Failure 404 {string} string "Empty search term"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /search [get]
func (h *ServerHandler) SearchDocuments(c echo.Context) error {
	searchTerm := c.QueryParam("term")
	if searchTerm == "" {
		return c.JSON(http.StatusNotFound, "Empty search term")
	}

	Logger.Debug("Performing PostgreSQL full-text search", "searchTerm", searchTerm)
	documents, err := h.DB.SearchDocuments(searchTerm)
	if err != nil {
		Logger.Error("Search failed", "error", err)
		return c.JSON(http.StatusInternalServerError, err)
	}
	if len(documents) == 0 {
		Logger.Info("Search returned no results", "searchTerm", searchTerm)
		return c.JSON(http.StatusNoContent, nil)
	}

	results, err := searchResultsTree(documents)
	if err != nil {
		Logger.Error("Unable to convert search results to file tree", "error", err)
		return c.JSON(http.StatusNotFound, err)
	}
	return c.JSON(http.StatusOK, fullFileSystem{FileSystem: results})
}

// ReindexSearchDocuments reindexes all documents for full-text search
// @Summary Reindex search documents
// @Description Rebuild the full-text search index for all documents
// @Tags Search
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Reindex successful"
// @Failure 500 {object} map[string]interface{} "Reindex failed"
// @Router /search/reindex [post]
func (h *ServerHandler) ReindexSearchDocuments(c echo.Context) error {
	Logger.Info("Search reindex triggered via API")

	count, err := h.DB.ReindexSearchDocuments()
	if err != nil {
		Logger.Error("Reindex failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "Reindex failed",
			"message": err.Error(),
		})
	}

	Logger.Info("Search reindex completed", "documents", count)
	return c.JSON(http.StatusOK, echo.Map{
		"message":             "Search reindex completed successfully",
		"documents_reindexed": count,
	})
}
