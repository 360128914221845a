package engine

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/folium-app/folium/database"
	"github.com/labstack/echo/v4"
)

// GetFolder fetches all the documents in the folder
// @Summary Get folder contents
// @Description Retrieve all documents in a specific folder
// @Tags Folders
// @Accept json
// @Produce json
// @Param folder path string true "Folder name"
// @Success 200 {array} database.Document "List of documents in folder"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /folder/{folder} [get]
func (h *ServerHandler) GetFolder(c echo.Context) error {
	folderContents, err := database.FetchFolder(c.Param("folder"), h.DB)
	if err != nil {
		Logger.Error("API GetFolder call failed", "error", err)
		return err
	}
	return c.JSON(http.StatusOK, folderContents)
}

// CreateFolder creates a folder in the document tree
// @Summary Create a new folder
// @Description Create a new folder in the document filesystem
// @Tags Folders
// @Accept json
// @Produce json
// @Param folder query string true "Folder name"
// @Param path query string true "Parent path"
// @Success 200 {string} string "Full folder path created"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /folder [post]
func (h *ServerHandler) CreateFolder(c echo.Context) error {
	params := c.QueryParams()
	fullFolder := filepath.Join(h.ServerConfig.DocumentPath, params.Get("path"), params.Get("folder"))
	fullFolder = filepath.Clean(fullFolder)
	if err := os.Mkdir(fullFolder, os.ModePerm); err != nil {
		Logger.Error("Unable to create directory", "error", err)
		return err
	}
	return c.JSON(http.StatusOK, fullFolder)
}
