// Package geo resolves approximate locations for source addresses via an
// ip-api.com-style HTTP provider. Resolution is best-effort: every failure
// mode yields "no data" rather than an error.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/quicklinkhq/scan-tracker/internal/domain"
	"github.com/quicklinkhq/scan-tracker/internal/metrics"
	"github.com/quicklinkhq/scan-tracker/pkg/httpclient"
	"github.com/quicklinkhq/scan-tracker/pkg/logger"
)

// fields trims the provider response to what the scan record stores.
const fields = "status,message,countryCode,regionName,city,lat,lon"

// Resolver performs single-shot geolocation lookups with a bounded timeout.
type Resolver struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
	log      logger.Logger
}

// NewResolver creates a Resolver querying the given endpoint, e.g.
// "http://ip-api.com/json".
func NewResolver(endpoint string, timeout time.Duration, log logger.Logger) *Resolver {
	return &Resolver{
		endpoint: endpoint,
		timeout:  timeout,
		client:   httpclient.New(httpclient.Config{Timeout: timeout}),
		log:      log,
	}
}

// providerResponse mirrors the ip-api.com JSON shape.
type providerResponse struct {
	Status      string  `json:"status"`
	Message     string  `json:"message"`
	CountryCode string  `json:"countryCode"`
	RegionName  string  `json:"regionName"`
	City        string  `json:"city"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// Resolve returns the approximate location of addr, or nil when no data is
// available. It never returns an error: a failed lookup simply leaves the
// scan without geo enrichment. Private and loopback addresses short-circuit
// without a network call.
func (r *Resolver) Resolve(ctx context.Context, addr string) *domain.GeoInfo {
	if !isPublicAddress(addr) {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/%s?fields=%s", r.endpoint, addr, fields)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return r.noData("build geo request", err, addr)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return r.noData("geo request failed", err, addr)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return r.noData("geo provider status", fmt.Errorf("http %d", resp.StatusCode), addr)
	}

	var pr providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return r.noData("decode geo response", err, addr)
	}

	if pr.Status != "success" {
		return r.noData("geo lookup rejected", fmt.Errorf("status %q: %s", pr.Status, pr.Message), addr)
	}

	return &domain.GeoInfo{
		Country:   pr.CountryCode,
		Region:    pr.RegionName,
		City:      pr.City,
		Latitude:  pr.Lat,
		Longitude: pr.Lon,
	}
}

// noData records the failure on the operational channel and yields the
// single "no data" state.
func (r *Resolver) noData(msg string, err error, addr string) *domain.GeoInfo {
	metrics.GeoLookupFailures.Inc()
	r.log.Debug("Geo lookup yielded no data",
		logger.String("reason", msg),
		logger.Error(err),
		logger.String("source_address", addr),
	)
	return nil
}

// isPublicAddress reports whether addr is a routable address worth looking
// up. Empty, unparseable, loopback, private, and link-local addresses are
// not.
func isPublicAddress(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() {
		return false
	}
	if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return false
	}
	return true
}
