package ginserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health statuses reported by the /health endpoint.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// HealthChecker probes one dependency and returns its status.
type HealthChecker func() CheckResult

// CheckResult is the outcome of a single health check.
type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// DatabaseCheck wraps a ping function into a HealthChecker.
func DatabaseCheck(ping func() error) HealthChecker {
	return func() CheckResult {
		start := time.Now()
		if err := ping(); err != nil {
			return CheckResult{
				Status:  StatusUnhealthy,
				Message: err.Error(),
				Latency: time.Since(start).String(),
			}
		}
		return CheckResult{Status: StatusHealthy, Latency: time.Since(start).String()}
	}
}

type healthResponse struct {
	Status  string                 `json:"status"`
	Service string                 `json:"service"`
	Version string                 `json:"version"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
}

func registerHealthRoutes(router *gin.Engine, opts Options) {
	router.GET("/health", healthHandler(opts))
	// Lightweight variant for load balancers.
	router.HEAD("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
}

func healthHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := healthResponse{
			Status:  StatusHealthy,
			Service: opts.ServiceName,
			Version: opts.ServiceVersion,
		}

		if len(opts.HealthChecks) > 0 {
			resp.Checks = make(map[string]CheckResult, len(opts.HealthChecks))
			for name, check := range opts.HealthChecks {
				result := check()
				resp.Checks[name] = result
				if result.Status == StatusUnhealthy {
					resp.Status = StatusUnhealthy
				}
			}
		}

		code := http.StatusOK
		if resp.Status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, resp)
	}
}
