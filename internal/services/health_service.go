package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"myxpicks/internal/config"
	"myxpicks/internal/dataprocessing"
	"myxpicks/internal/infrastructure"
	ws "myxpicks/internal/websocket"
)

// Health statuses
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
)

// HubStatsProvider reports WebSocket hub counters.
type HubStatsProvider interface {
	Stats() ws.HubStats
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	paths     *config.Paths
	hub       HubStatsProvider
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                      `json:"status"`
	Timestamp time.Time                   `json:"timestamp"`
	Version   string                      `json:"version"`
	Runtime   infrastructure.RuntimeStats `json:"runtime"`
	Services  map[string]ServiceHealth    `json:"services"`
	WebSocket *ws.HubStats                `json:"websocket,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// VersionInfo describes the running build.
type VersionInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	StartTime string `json:"start_time"`
}

// NewHealthService creates a health service. hub may be nil when no
// WebSocket hub runs.
func NewHealthService(version string, paths *config.Paths, hub HubStatsProvider, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		paths:     paths,
		hub:       hub,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck reports overall health. The service is degraded, not down,
// while no snapshot has been published yet.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now().UTC(),
		Version:   hs.version,
		Runtime:   infrastructure.CollectRuntimeStats(hs.startTime),
		Services: map[string]ServiceHealth{
			"data":     hs.checkDataDir(),
			"snapshot": hs.checkSnapshot(),
		},
	}
	if hs.hub != nil {
		stats := hs.hub.Stats()
		status.WebSocket = &stats
	}

	for name, service := range status.Services {
		if service.Status != StatusReady {
			status.Status = StatusDegraded
			hs.logger.WarnContext(ctx, "Health check degraded",
				slog.String("service", name),
				slog.String("message", service.Message))
		}
	}
	return status
}

// Version returns version information
func (hs *HealthService) Version() VersionInfo {
	return VersionInfo{
		Name:      config.AppName,
		Version:   hs.version,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		StartTime: hs.startTime.UTC().Format(time.RFC3339),
	}
}

func (hs *HealthService) checkDataDir() ServiceHealth {
	info, err := os.Stat(hs.paths.DataDir)
	if err != nil {
		return ServiceHealth{Status: StatusNotReady, Message: fmt.Sprintf("data directory unavailable: %v", err)}
	}
	if !info.IsDir() {
		return ServiceHealth{Status: StatusNotReady, Message: "data path is not a directory"}
	}
	return ServiceHealth{Status: StatusReady}
}

func (hs *HealthService) checkSnapshot() ServiceHealth {
	snapshot, err := dataprocessing.ReadSnapshot(hs.paths.LatestJSON)
	if err != nil {
		return ServiceHealth{Status: StatusNotReady, Message: "no readable latest snapshot"}
	}
	return ServiceHealth{
		Status:  StatusReady,
		Message: fmt.Sprintf("%d picks updated %s", snapshot.TotalStocks, snapshot.UpdateTime),
	}
}
