// Package resolver implements the redirect-and-capture path: the
// authoritative link lookup, best-effort enrichment, and the detached
// hand-off of the scan record. The HTTP outcome is decided here before
// persistence settles.
package resolver

import (
	"context"
	"errors"
	"time"

	"github.com/quicklinkhq/scan-tracker/internal/domain"
	"github.com/quicklinkhq/scan-tracker/internal/metrics"
	"github.com/quicklinkhq/scan-tracker/internal/storage"
	"github.com/quicklinkhq/scan-tracker/internal/ua"
	"github.com/quicklinkhq/scan-tracker/pkg/logger"
)

// LinkFinder looks up a link record by its exact identifier.
type LinkFinder interface {
	FindByID(ctx context.Context, id string) (*domain.LinkRecord, error)
}

// GeoResolver resolves a source address to an approximate location, or nil.
type GeoResolver interface {
	Resolve(ctx context.Context, addr string) *domain.GeoInfo
}

// ScanSink accepts a scan record for detached persistence. Send must not
// block; it reports whether the record was accepted.
type ScanSink interface {
	Send(record domain.ScanRecord) bool
}

// RequestContext carries the request metadata captured verbatim into the
// scan record. Any field may be empty.
type RequestContext struct {
	SourceAddress      string
	RawClientSignature string
	Referrer           string
}

// Outcome is the resolved HTTP decision. Found false means not-found; the
// caller must not learn why.
type Outcome struct {
	Found          bool
	DestinationURL string
}

// Resolver sequences one resolution attempt per request.
type Resolver struct {
	links LinkFinder
	geo   GeoResolver
	scans ScanSink
	log   logger.Logger
}

// New creates a Resolver with the given collaborators.
func New(links LinkFinder, geo GeoResolver, scans ScanSink, log logger.Logger) *Resolver {
	return &Resolver{
		links: links,
		geo:   geo,
		scans: scans,
		log:   log,
	}
}

// Resolve performs a single lookup of id and, on success, builds one scan
// record and hands it off without awaiting persistence.
//
// Store errors are indistinguishable from not-found for the caller: they
// are logged here and surface as a not-found outcome. No scan record is
// built for an unknown identifier.
func (r *Resolver) Resolve(ctx context.Context, id string, req RequestContext) Outcome {
	link, err := r.links.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.log.Error("Link lookup failed",
				logger.Error(err),
				logger.String("link_id", id),
			)
		}
		return Outcome{}
	}

	// Capture the destination once. Both the redirect and the scan
	// record use this value, never a re-read.
	dest := link.DestinationURL
	if dest == "" {
		r.log.Warn("Link has empty destination", logger.String("link_id", id))
		return Outcome{}
	}

	// Geo lookup and signature parsing have no data dependency; the
	// parse runs while the lookup is in flight. Both are best-effort
	// and cannot change the outcome below.
	geoCh := make(chan *domain.GeoInfo, 1)
	go func() {
		geoCh <- r.geo.Resolve(ctx, req.SourceAddress)
	}()

	sig := ua.Parse(req.RawClientSignature)
	geoInfo := <-geoCh

	r.enqueue(domain.ScanRecord{
		LinkID:             link.ID,
		OccurredAt:         time.Now().UTC(),
		SourceAddress:      req.SourceAddress,
		RawClientSignature: req.RawClientSignature,
		Referrer:           req.Referrer,
		DestinationURL:     dest,
		Geo:                geoInfo,
		Client:             sig,
	})

	return Outcome{Found: true, DestinationURL: dest}
}

// enqueue hands the record to the sink. A full sink drops the record: scan
// capture is at-most-once and never delays or fails the redirect.
func (r *Resolver) enqueue(record domain.ScanRecord) {
	if !r.scans.Send(record) {
		metrics.ScansDropped.Inc()
		r.log.Warn("Scan buffer full, dropping scan record",
			logger.String("link_id", record.LinkID),
		)
		return
	}
	metrics.ScansRecorded.Inc()
}
