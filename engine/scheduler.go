package engine

import (
	"fmt"

	"github.com/folium-app/folium/database"
	"github.com/robfig/cron/v3"
)

// InitializeSchedules starts the recurring ingress scan. The job also runs
// once right away so a restart picks up waiting files without delay.
func (h *ServerHandler) InitializeSchedules(db database.Repository) {
	cfg, err := database.FetchConfigFromDB(db)
	if err != nil {
		Logger.Error("Error reading config from database when initializing schedules", "error", err)
	}

	Logger.Info("Running ingress job at startup")
	go h.runIngressScan(db)

	scheduler := cron.New()
	// SkipIfStillRunning keeps a slow scan from stacking up behind itself.
	job := cron.NewChain(cron.SkipIfStillRunning(cron.DefaultLogger)).
		Then(cron.FuncJob(func() { h.runIngressScan(db) }))

	spec := fmt.Sprintf("@every %dm", cfg.IngressInterval)
	if _, err := scheduler.AddJob(spec, job); err != nil {
		Logger.Error("Failed to schedule ingress job", "spec", spec, "error", err)
		return
	}
	Logger.Info("Adding Ingress Job scheduler", "interval_minutes", cfg.IngressInterval)
	scheduler.Start()
}
