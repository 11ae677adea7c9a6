package services

import (
	"context"
	"dancestudio_go/config"
	"dancestudio_go/database"
	"fmt"
	"runtime"
	"time"
)

const (
	overallStatusOK       = "ok"
	overallStatusDegraded = "degraded"
	overallStatusCritical = "critical"

	dependencyStatusUp       = "up"
	dependencyStatusDown     = "down"
	dependencyStatusDisabled = "disabled"

	defaultServiceName = "Dance Studio API"
	defaultVersion     = "1.0.0"
	defaultTimeout     = 1500 * time.Millisecond
)

// HealthService aggregates application health information.
type HealthService struct {
	serviceName string
	version     string
	startTime   time.Time
	timeout     time.Duration
}

// HealthReport is the JSON response for the health endpoint.
type HealthReport struct {
	Status        string             `json:"status"`
	Service       string             `json:"service"`
	Version       string             `json:"version"`
	Environment   string             `json:"environment"`
	Time          time.Time          `json:"time"`
	UptimeSeconds float64            `json:"uptime_seconds"`
	Dependencies  []DependencyStatus `json:"dependencies"`
	Goroutines    int                `json:"goroutines"`
}

// DependencyStatus captures the health of a single external dependency.
type DependencyStatus struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

func NewHealthService(serviceName, version string) *HealthService {
	if serviceName == "" {
		serviceName = defaultServiceName
	}
	if version == "" {
		version = defaultVersion
	}
	return &HealthService{
		serviceName: serviceName,
		version:     version,
		startTime:   time.Now(),
		timeout:     defaultTimeout,
	}
}

// GetHealthReport pings the database and Redis and assembles the report.
func (hs *HealthService) GetHealthReport() HealthReport {
	deps := []DependencyStatus{hs.checkDatabase(), hs.checkRedis()}

	status := overallStatusOK
	for _, dep := range deps {
		if dep.Status == dependencyStatusDown {
			if dep.Name == "database" {
				status = overallStatusCritical
			} else if status != overallStatusCritical {
				status = overallStatusDegraded
			}
		}
	}

	env := ""
	if config.AppConfig != nil {
		env = config.AppConfig.AppEnv
	}

	return HealthReport{
		Status:        status,
		Service:       hs.serviceName,
		Version:       hs.version,
		Environment:   env,
		Time:          time.Now(),
		UptimeSeconds: time.Since(hs.startTime).Seconds(),
		Dependencies:  deps,
		Goroutines:    runtime.NumGoroutine(),
	}
}

// HTTPStatusForOverall maps the overall status to an HTTP code.
func (hs *HealthService) HTTPStatusForOverall(status string) int {
	if status == overallStatusCritical {
		return 503
	}
	return 200
}

func (hs *HealthService) checkDatabase() DependencyStatus {
	dep := DependencyStatus{Name: "database", Status: dependencyStatusDown}
	if database.DB == nil {
		dep.Error = "not connected"
		return dep
	}
	sqlDB, err := database.DB.DB()
	if err != nil {
		dep.Error = err.Error()
		return dep
	}

	ctx, cancel := context.WithTimeout(context.Background(), hs.timeout)
	defer cancel()
	start := time.Now()
	if err := sqlDB.PingContext(ctx); err != nil {
		dep.Error = fmt.Sprintf("ping failed: %v", err)
		return dep
	}
	dep.Status = dependencyStatusUp
	dep.LatencyMs = time.Since(start).Milliseconds()
	return dep
}

func (hs *HealthService) checkRedis() DependencyStatus {
	dep := DependencyStatus{Name: "redis", Status: dependencyStatusDisabled}
	client := database.GetRedisClient()
	if client == nil {
		return dep
	}

	ctx, cancel := context.WithTimeout(context.Background(), hs.timeout)
	defer cancel()
	start := time.Now()
	if err := client.Ping(ctx).Err(); err != nil {
		dep.Status = dependencyStatusDown
		dep.Error = err.Error()
		return dep
	}
	dep.Status = dependencyStatusUp
	dep.LatencyMs = time.Since(start).Milliseconds()
	return dep
}
