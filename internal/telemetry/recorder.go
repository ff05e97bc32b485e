// Package telemetry implements the resolver-facing event pipeline: the
// per-query append path, the live aggregate counters, and the background
// flush of batched events into the persistent log tables.
//
// The resolution hot path must never wait on log persistence. RecordQuery
// and RecordError are therefore non-blocking sends into a bounded
// channel: when the buffer is full the event is dropped and accounted in
// a Prometheus counter instead of back-pressuring the resolver. A single
// goroutine drains the channel, applies the live counters, and batches
// rows for periodic insertion. Flush failures are logged and counted;
// they are never surfaced to the resolution path.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/akaris/go-dns-admin-backend/internal/domain"
	"github.com/akaris/go-dns-admin-backend/internal/repo"
)

var (
	// droppedEvents counts events discarded because the queue was full.
	droppedEvents = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "telemetry_events_dropped_total",
		Help: "Events dropped because the telemetry queue was full.",
	})

	// flushFailures counts failed batch writes to the event tables.
	flushFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "telemetry_flush_failures_total",
		Help: "Failed batch flushes of telemetry events to storage.",
	})

	// flushedRows counts rows successfully persisted.
	flushedRows = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "telemetry_rows_flushed_total",
		Help: "Event rows successfully flushed to storage.",
	})
)

func init() {
	prometheus.MustRegister(droppedEvents, flushFailures, flushedRows)
}

// message carries exactly one event through the queue.
type message struct {
	query *domain.QueryEvent
	err   *domain.ErrorEvent
}

// Recorder ingests per-query events, maintains the live counters, and
// flushes batches to the database. Construct with NewRecorder, then call
// Run (usually in its own goroutine) and Close on shutdown.
type Recorder struct {
	db            *gorm.DB
	flushInterval time.Duration

	events chan message
	quit   chan struct{}
	done   chan struct{}
	once   sync.Once

	mu       sync.Mutex
	counters domain.LiveCounters
}

// NewRecorder builds a Recorder with the given queue capacity and flush
// cadence. LiveSince is fixed at construction time.
func NewRecorder(db *gorm.DB, buffer int, flushInterval time.Duration) *Recorder {
	if buffer < 1 {
		buffer = 1
	}
	return &Recorder{
		db:            db,
		flushInterval: flushInterval,
		events:        make(chan message, buffer),
		quit:          make(chan struct{}),
		done:          make(chan struct{}),
		counters:      domain.LiveCounters{LiveSince: domain.NowMS()},
	}
}

// RecordQuery enqueues one resolved query. It never blocks: when the
// queue is full the event is dropped and counted. A zero timestamp is
// stamped with the current time.
func (r *Recorder) RecordQuery(ev domain.QueryEvent) {
	if ev.TS == 0 {
		ev.TS = domain.NowMS()
	}
	select {
	case r.events <- message{query: &ev}:
	default:
		droppedEvents.Inc()
	}
}

// RecordError enqueues one failed resolution attempt. Same non-blocking
// contract as RecordQuery.
func (r *Recorder) RecordError(ev domain.ErrorEvent) {
	if ev.TS == 0 {
		ev.TS = domain.NowMS()
	}
	select {
	case r.events <- message{err: &ev}:
	default:
		droppedEvents.Inc()
	}
}

// Snapshot returns a point-in-time copy of the live counters. All fields
// are read under one lock, so the returned set is internally consistent.
func (r *Recorder) Snapshot() domain.LiveCounters {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters
}

// Run drains the queue until Close is called: counters are applied as
// events arrive, batches are flushed every flushInterval and once more on
// shutdown. Run returns after the final flush.
func (r *Recorder) Run() {
	defer close(r.done)

	tick := time.NewTicker(r.flushInterval)
	defer tick.Stop()

	var queries []domain.QueryEvent
	var errs []domain.ErrorEvent

	for {
		select {
		case msg := <-r.events:
			r.apply(msg, &queries, &errs)
		case <-tick.C:
			r.flush(&queries, &errs)
		case <-r.quit:
			// Drain whatever was enqueued before Close, then flush.
			for {
				select {
				case msg := <-r.events:
					r.apply(msg, &queries, &errs)
				default:
					r.flush(&queries, &errs)
					return
				}
			}
		}
	}
}

// Close stops the recorder after a final drain and flush. Safe to call
// more than once; it returns when Run has exited.
func (r *Recorder) Close() {
	r.once.Do(func() { close(r.quit) })
	<-r.done
}

// apply updates the live counters for one event and stages it for the
// next flush.
func (r *Recorder) apply(msg message, queries *[]domain.QueryEvent, errs *[]domain.ErrorEvent) {
	r.mu.Lock()
	switch {
	case msg.query != nil:
		r.counters.Total++
		r.counters.SumDurationMS += uint64(msg.query.DurMS)
		if msg.query.Blocked {
			r.counters.Blocked++
		}
		if msg.query.CacheHit {
			r.counters.Cached++
		}
	case msg.err != nil:
		r.counters.Errors++
	}
	r.mu.Unlock()

	if msg.query != nil {
		*queries = append(*queries, *msg.query)
	}
	if msg.err != nil {
		*errs = append(*errs, *msg.err)
	}
}

// flush persists the staged batches. Batches are cleared either way:
// rows that failed to write are dropped and accounted, never retried.
func (r *Recorder) flush(queries *[]domain.QueryEvent, errs *[]domain.ErrorEvent) {
	ctx := context.Background()

	if n := len(*queries); n > 0 {
		if err := repo.InsertQueryEvents(ctx, r.db, *queries); err != nil {
			flushFailures.Inc()
			log.Error().Err(err).Int("rows", n).Msg("flush query events")
		} else {
			flushedRows.Add(float64(n))
		}
		*queries = (*queries)[:0]
	}

	if n := len(*errs); n > 0 {
		if err := repo.InsertErrorEvents(ctx, r.db, *errs); err != nil {
			flushFailures.Inc()
			log.Error().Err(err).Int("rows", n).Msg("flush error events")
		} else {
			flushedRows.Add(float64(n))
		}
		*errs = (*errs)[:0]
	}
}
