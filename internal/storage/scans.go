package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/quicklinkhq/scan-tracker/internal/domain"
	"github.com/quicklinkhq/scan-tracker/internal/metrics"
	"github.com/quicklinkhq/scan-tracker/pkg/logger"
)

const (
	// columnsPerRow is the number of columns inserted per scan event row.
	columnsPerRow = 18

	// insertBatchSize is the maximum number of rows per INSERT statement.
	insertBatchSize = 50

	// flushTimeout bounds each flush operation.
	flushTimeout = 5 * time.Second
)

// Buffer is a channel-based buffer decoupling scan persistence from the
// redirect path. Send never blocks; a full buffer drops the record.
type Buffer struct {
	records chan domain.ScanRecord
	closed  chan struct{}
	once    sync.Once
}

// NewBuffer creates a buffer with the given capacity.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{
		records: make(chan domain.ScanRecord, capacity),
		closed:  make(chan struct{}),
	}
}

// Send performs a non-blocking send of a record into the buffer.
// It returns false if the buffer is full.
func (b *Buffer) Send(record domain.ScanRecord) bool {
	select {
	case b.records <- record:
		return true
	default:
		return false
	}
}

// Len returns the number of records currently buffered.
func (b *Buffer) Len() int {
	return len(b.records)
}

// Close signals the buffer to stop accepting records.
// Safe to call multiple times.
func (b *Buffer) Close() {
	b.once.Do(func() {
		close(b.closed)
	})
}

// ScanStore drains the buffer and batch-inserts scan events into
// PostgreSQL. Insert failures are logged and the batch is dropped: scan
// capture is at-most-once and must never feed back into the redirect path.
type ScanStore struct {
	db             *sql.DB
	buffer         *Buffer
	log            logger.Logger
	flushInterval  time.Duration
	flushThreshold int
	wg             sync.WaitGroup
}

// NewScanStore creates a ScanStore reading from buffer.
func NewScanStore(
	db *sql.DB,
	buffer *Buffer,
	log logger.Logger,
	flushInterval time.Duration,
	flushThreshold int,
) *ScanStore {
	return &ScanStore{
		db:             db,
		buffer:         buffer,
		log:            log,
		flushInterval:  flushInterval,
		flushThreshold: flushThreshold,
	}
}

// Start launches the background flush goroutine.
func (s *ScanStore) Start() {
	s.wg.Add(1)
	go s.flushLoop()
}

// Stop closes the buffer, flushes what remains, and waits for the flush
// goroutine to finish.
func (s *ScanStore) Stop() {
	s.buffer.Close()
	s.wg.Wait()
}

// flushLoop accumulates records and flushes when the batch reaches
// flushThreshold or the interval ticker fires.
func (s *ScanStore) flushLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	batch := make([]domain.ScanRecord, 0, s.flushThreshold)

	for {
		select {
		case record := <-s.buffer.records:
			batch = append(batch, record)
			if len(batch) >= s.flushThreshold {
				s.flush(batch)
				batch = make([]domain.ScanRecord, 0, s.flushThreshold)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				s.flush(batch)
				batch = make([]domain.ScanRecord, 0, s.flushThreshold)
			}

		case <-s.buffer.closed:
			s.drain(&batch)
			if len(batch) > 0 {
				s.flush(batch)
			}
			return
		}
	}
}

// drain reads all remaining buffered records into the batch.
func (s *ScanStore) drain(batch *[]domain.ScanRecord) {
	for {
		select {
		case record := <-s.buffer.records:
			*batch = append(*batch, record)
		default:
			return
		}
	}
}

// flush writes a batch in chunks of insertBatchSize.
func (s *ScanStore) flush(batch []domain.ScanRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	for start := 0; start < len(batch); start += insertBatchSize {
		end := min(start+insertBatchSize, len(batch))

		if err := s.batchInsert(ctx, batch[start:end]); err != nil {
			s.log.Error("Failed to insert scan events",
				logger.Error(err),
				logger.Int("batch_size", end-start),
			)
			continue
		}
		metrics.ScansPersisted.Add(float64(end - start))
	}

	s.log.Debug("Flushed scan events", logger.Int("total", len(batch)))
}

// batchInsert executes a single multi-row INSERT for the given records.
func (s *ScanStore) batchInsert(ctx context.Context, records []domain.ScanRecord) error {
	if len(records) == 0 {
		return nil
	}

	args := make([]any, 0, len(records)*columnsPerRow)
	var sb strings.Builder

	sb.WriteString("INSERT INTO scan_events (link_id, occurred_at, source_address, " +
		"user_agent, referrer, destination_url, country, region, city, latitude, " +
		"longitude, browser_name, browser_version, os_name, os_version, device_type, " +
		"device_vendor, device_model) VALUES ")

	for i, r := range records {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeValueTuple(&sb, i)
		args = append(args, scanArgs(r)...)
	}

	if _, err := s.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("exec batch insert: %w", err)
	}

	return nil
}

// scanArgs flattens a record into insert arguments. Absent enrichment
// substructures and empty request metadata become SQL NULLs.
func scanArgs(r domain.ScanRecord) []any {
	args := []any{
		r.LinkID,
		r.OccurredAt,
		nullString(r.SourceAddress),
		nullString(r.RawClientSignature),
		nullString(r.Referrer),
		r.DestinationURL,
	}

	if r.Geo != nil {
		args = append(args,
			nullString(r.Geo.Country),
			nullString(r.Geo.Region),
			nullString(r.Geo.City),
			r.Geo.Latitude,
			r.Geo.Longitude,
		)
	} else {
		args = append(args, nil, nil, nil, nil, nil)
	}

	if r.Client != nil {
		args = append(args,
			nullString(r.Client.BrowserName),
			nullString(r.Client.BrowserVersion),
			nullString(r.Client.OSName),
			nullString(r.Client.OSVersion),
			nullString(r.Client.DeviceType),
			nullString(r.Client.DeviceVendor),
			nullString(r.Client.DeviceModel),
		)
	} else {
		args = append(args, nil, nil, nil, nil, nil, nil, nil)
	}

	return args
}

// nullString maps an empty string to SQL NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// writeValueTuple writes one ($n, ..., $n+17) placeholder tuple, offset by
// the row index.
func writeValueTuple(sb *strings.Builder, rowIndex int) {
	base := rowIndex * columnsPerRow

	sb.WriteByte('(')
	for col := 1; col <= columnsPerRow; col++ {
		if col > 1 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "$%d", base+col)
	}
	sb.WriteByte(')')
}
