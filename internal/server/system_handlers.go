package server

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/jperaltad/tradesim/internal/database"
	"github.com/jperaltad/tradesim/internal/web"
)

// SystemHandlers contains handlers for system health endpoints
type SystemHandlers struct {
	db  *database.DB
	log zerolog.Logger
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(db *database.DB, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		db:  db,
		log: log.With().Str("handler", "system").Logger(),
	}
}

// HandleHealth reports process and database health
// GET /api/system/health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UnixMilli(),
	}

	if err := h.db.HealthCheck(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("Database health check failed")
		health["status"] = "degraded"
		health["database"] = err.Error()
	} else {
		health["database"] = "ok"
	}

	if cpuPercent, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		health["cpu_percent"] = cpuPercent[0]
	}
	if memStat, err := mem.VirtualMemory(); err == nil {
		health["memory_percent"] = memStat.UsedPercent
	}

	status := http.StatusOK
	if health["status"] != "ok" {
		status = http.StatusServiceUnavailable
	}
	web.WriteJSON(w, status, health)
}
