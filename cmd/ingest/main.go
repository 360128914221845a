package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/labstack/echo/v4"

	config "github.com/folium-app/folium/config"
	database "github.com/folium-app/folium/database"
	engine "github.com/folium-app/folium/engine"
	"github.com/folium-app/folium/engine/pdfrenderer"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// injectGlobals injects all of our globals into their packages
func injectGlobals(logger *slog.Logger) {
	Logger = logger
	database.Logger = Logger
	config.Logger = Logger
	engine.Logger = Logger
	pdfrenderer.Logger = Logger
}

func main() {
	// Parse command-line flags
	dir := flag.String("dir", "", "Folder to ingest (defaults to the configured ingress path)")
	flag.Parse()

	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("📥  folium Batch Ingestion")
	fmt.Println(strings.Repeat("=", 50) + "\n")

	serverConfig, logger := config.SetupServer()
	injectGlobals(logger) //inject the logger into all of the packages

	// Override ingress path if specified via flag
	if *dir != "" {
		abs, err := filepath.Abs(*dir)
		if err != nil {
			Logger.Error("Invalid ingress folder", "dir", *dir, "error", err)
			os.Exit(1)
		}
		serverConfig.IngressPath = abs
	}

	if _, err := os.Stat(serverConfig.IngressPath); err != nil {
		Logger.Error("Ingress folder is not accessible", "path", serverConfig.IngressPath, "error", err)
		os.Exit(1)
	}

	// Setup document repository
	repo := database.NewRepository(serverConfig)
	defer repo.Close()

	// The ingestion steps read their config back out of the database
	database.WriteConfigToDB(serverConfig, repo)

	serverHandler := engine.ServerHandler{DB: repo, Echo: echo.New(), ServerConfig: serverConfig}
	if err := serverHandler.InitializeRenderer(); err != nil {
		Logger.Warn("Page rendering disabled, documents will be ingested without page data", "error", err)
	}

	// Scan for files the same way the scheduled ingress job does
	var ingressFiles []string
	err := filepath.Walk(serverConfig.IngressPath, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() && path != serverConfig.IngressPath {
			ingressFiles = append(ingressFiles, path)
		}
		return nil
	})
	if err != nil {
		Logger.Error("Error scanning ingress folder", "path", serverConfig.IngressPath, "error", err)
		os.Exit(1)
	}

	totalFiles := len(ingressFiles)
	if totalFiles == 0 {
		fmt.Printf("No files to ingest in %s\n", serverConfig.IngressPath)
		return
	}

	fmt.Printf("Ingesting %d file(s) from %s\n\n", totalFiles, serverConfig.IngressPath)

	// Track the run as a job so it shows up in the jobs UI next to scheduled runs
	job, err := repo.CreateJob(database.JobTypeIngestion, "Command-line ingestion")
	if err != nil {
		Logger.Error("Unable to create ingestion job", "error", err)
		os.Exit(1)
	}
	if err := repo.UpdateJobStatus(job.ID, database.JobStatusRunning, "Ingesting from command line"); err != nil {
		Logger.Error("Failed to update job status", "error", err)
	}

	bar := pb.StartNew(totalFiles)
	processed := 0
	duplicates := 0
	errorCount := 0

	for i, filePath := range ingressFiles {
		err := serverHandler.IngestDocumentWithSteps(filePath, repo, job.ID, i, totalFiles)
		switch {
		case err == nil:
			processed++
		case errors.Is(err, engine.ErrDuplicate):
			duplicates++
			processed++
		default:
			Logger.Error("Failed to ingest document", "filePath", filePath, "error", err)
			errorCount++
		}
		bar.Increment()
	}
	bar.Finish()

	// Word frequencies feed the word cloud, refresh them after a batch run
	if err := repo.RecalculateAllWordFrequencies(); err != nil {
		Logger.Error("Word cloud recalculation failed after ingestion", "error", err)
	}

	result := fmt.Sprintf(`{"filesProcessed": %d, "filesTotal": %d, "errors": %d, "duplicates": %d}`, processed, totalFiles, errorCount, duplicates)
	if err := repo.CompleteJob(job.ID, result); err != nil {
		Logger.Error("Failed to mark job as complete", "error", err)
	}

	fmt.Printf("\n✅  Ingested %d/%d file(s)", processed, totalFiles)
	if duplicates > 0 {
		fmt.Printf(", %d duplicate(s) skipped", duplicates)
	}
	if errorCount > 0 {
		fmt.Printf(", %d error(s)", errorCount)
	}
	fmt.Println()

	if errorCount > 0 {
		os.Exit(1)
	}
}
