// Package metrics defines the Prometheus instrumentation for the scan
// capture path.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ScansRecorded counts scan records handed to the buffer.
	ScansRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scan_tracker_scans_recorded_total",
		Help: "Scan records accepted into the persistence buffer.",
	})

	// ScansDropped counts scan records dropped because the buffer was full.
	ScansDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scan_tracker_scans_dropped_total",
		Help: "Scan records dropped due to a full persistence buffer.",
	})

	// ScansPersisted counts scan records written to the database.
	ScansPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scan_tracker_scans_persisted_total",
		Help: "Scan records successfully written to PostgreSQL.",
	})

	// GeoLookupFailures counts geolocation lookups that yielded no data.
	GeoLookupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scan_tracker_geo_lookup_failures_total",
		Help: "Geolocation lookups that failed or returned a non-success status.",
	})
)

// Handler returns the /metrics endpoint handler.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
