package geo_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/quicklinkhq/scan-tracker/internal/geo"
	"github.com/quicklinkhq/scan-tracker/pkg/logger"
)

func newProvider(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int64) {
	t.Helper()

	var calls atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(ts.Close)

	return ts, &calls
}

func TestResolve_Success(t *testing.T) {
	ts, _ := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/8.8.8.8") {
			t.Errorf("unexpected lookup path %q", r.URL.Path)
		}
		if fields := r.URL.Query().Get("fields"); !strings.Contains(fields, "countryCode") {
			t.Errorf("expected trimmed fields in query, got %q", fields)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "success",
			"countryCode": "US",
			"regionName": "California",
			"city": "Mountain View",
			"lat": 37.386,
			"lon": -122.0838
		}`))
	})

	r := geo.NewResolver(ts.URL, 2*time.Second, logger.NewNop())

	info := r.Resolve(context.Background(), "8.8.8.8")
	if info == nil {
		t.Fatal("expected geo info, got nil")
	}

	if info.Country != "US" {
		t.Errorf("country: got %q, want %q", info.Country, "US")
	}
	if info.Region != "California" {
		t.Errorf("region: got %q, want %q", info.Region, "California")
	}
	if info.City != "Mountain View" {
		t.Errorf("city: got %q, want %q", info.City, "Mountain View")
	}
	if info.Latitude != 37.386 {
		t.Errorf("latitude: got %v, want %v", info.Latitude, 37.386)
	}
	if info.Longitude != -122.0838 {
		t.Errorf("longitude: got %v, want %v", info.Longitude, -122.0838)
	}
}

func TestResolve_NonPublicAddressesSkipLookup(t *testing.T) {
	ts, calls := newProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r := geo.NewResolver(ts.URL, 2*time.Second, logger.NewNop())

	for _, addr := range []string{
		"",
		"not-an-ip",
		"127.0.0.1",
		"::1",
		"10.0.0.5",
		"192.168.1.10",
		"172.16.0.1",
		"169.254.1.1",
		"0.0.0.0",
	} {
		if info := r.Resolve(context.Background(), addr); info != nil {
			t.Errorf("Resolve(%q): expected nil, got %+v", addr, info)
		}
	}

	if n := calls.Load(); n != 0 {
		t.Errorf("expected no provider calls for non-public addresses, got %d", n)
	}
}

func TestResolve_ProviderRejection(t *testing.T) {
	ts, _ := newProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "fail", "message": "reserved range"}`))
	})

	r := geo.NewResolver(ts.URL, 2*time.Second, logger.NewNop())

	if info := r.Resolve(context.Background(), "203.0.113.7"); info != nil {
		t.Errorf("expected nil on provider rejection, got %+v", info)
	}
}

func TestResolve_ProviderError(t *testing.T) {
	ts, _ := newProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	r := geo.NewResolver(ts.URL, 2*time.Second, logger.NewNop())

	if info := r.Resolve(context.Background(), "203.0.113.7"); info != nil {
		t.Errorf("expected nil on provider error, got %+v", info)
	}
}

func TestResolve_MalformedResponse(t *testing.T) {
	ts, _ := newProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "success", "lat": "oops"`))
	})

	r := geo.NewResolver(ts.URL, 2*time.Second, logger.NewNop())

	if info := r.Resolve(context.Background(), "203.0.113.7"); info != nil {
		t.Errorf("expected nil on malformed response, got %+v", info)
	}
}

func TestResolve_Timeout(t *testing.T) {
	ts, _ := newProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"status": "success", "countryCode": "US"}`))
	})

	r := geo.NewResolver(ts.URL, 20*time.Millisecond, logger.NewNop())

	if info := r.Resolve(context.Background(), "203.0.113.7"); info != nil {
		t.Errorf("expected nil when the provider exceeds the timeout, got %+v", info)
	}
}
