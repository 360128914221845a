package engine

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"

	"github.com/folium-app/folium/database"
)

// intQueryParam reads an integer query parameter. Values that fail to parse
// or fall outside [min, max] yield the default; max 0 means unbounded.
func intQueryParam(c echo.Context, name string, def, min, max int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min || (max > 0 && n > max) {
		return def
	}
	return n
}

// GetJob fetches one background job.
// @Summary Get job by ID
// @Description Fetch a single background job by its ULID
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ULID"
// @Success 200 {object} map[string]interface{} "Job"
// @Failure 404 {object} map[string]interface{} "Job not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /jobs/{id} [get]
func (h *ServerHandler) GetJob(c echo.Context) error {
	jobID, err := ulid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid job ID format"})
	}

	job, err := h.DB.GetJob(jobID)
	if err != nil {
		Logger.Error("Job lookup failed", "jobID", c.Param("id"), "error", err)
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Job not found"})
	}

	return c.JSON(http.StatusOK, job)
}

// GetRecentJobs lists recent jobs, newest first.
// @Summary Get recent jobs
// @Description List recent background jobs, newest first
// @Tags Jobs
// @Produce json
// @Param limit query int false "Maximum number of jobs to return"
// @Param offset query int false "Number of jobs to skip"
// @Success 200 {array} map[string]interface{} "Jobs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /jobs [get]
func (h *ServerHandler) GetRecentJobs(c echo.Context) error {
	limit := intQueryParam(c, "limit", 20, 1, 100)
	offset := intQueryParam(c, "offset", 0, 0, 0)

	jobs, err := h.DB.GetRecentJobs(limit, offset)
	if err != nil {
		Logger.Error("Recent jobs query failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve jobs"})
	}
	return c.JSON(http.StatusOK, emptyIfNil(jobs))
}

// GetActiveJobs lists jobs that are pending or running.
// @Summary Get active jobs
// @Description List background jobs that are pending or running
// @Tags Jobs
// @Produce json
// @Success 200 {array} map[string]interface{} "Active jobs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /jobs/active [get]
func (h *ServerHandler) GetActiveJobs(c echo.Context) error {
	jobs, err := h.DB.GetActiveJobs()
	if err != nil {
		Logger.Error("Active jobs query failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve active jobs"})
	}
	return c.JSON(http.StatusOK, emptyIfNil(jobs))
}

// emptyIfNil keeps job lists serializing as [] instead of null.
func emptyIfNil(jobs []database.Job) []database.Job {
	if jobs == nil {
		return []database.Job{}
	}
	return jobs
}
