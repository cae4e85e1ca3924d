package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"

	"showsync/models"
)

const (
	// The fetch window reaches back 3 days so recently-aired episodes that
	// failed to send get another chance, and spans 15 days for lead time.
	windowPastDays = 3
	windowDays     = 15

	// Concurrency ceiling for in-flight timeline sends.
	maxConcurrentSends = 50
)

// ErrCycleRunning is returned when a sync cycle is triggered while a
// previous one is still in flight.
var ErrCycleRunning = errors.New("sync cycle already running")

// ScheduleSource fetches airing episodes for a date window.
type ScheduleSource interface {
	Schedule(ctx context.Context, start time.Time, days int) ([]models.ScheduleEntry, error)
}

// NotificationSink delivers a pin to every subscriber of the given topics.
type NotificationSink interface {
	SendSharedPin(ctx context.Context, topics []string, pin models.Pin) error
}

// PinLedger is the persistent record of pins already sent.
type PinLedger interface {
	AllPinIDs() (map[string]struct{}, error)
	UpsertPin(pin models.Pin, meta models.PinMetadata) error
}

// CycleStats summarizes one completed sync cycle.
type CycleStats struct {
	Fetched int
	Skipped int
	Sent    int
	Failed  int
}

// Service runs the schedule-to-timeline synchronization cycle: fetch the
// airing window, drop entries already recorded in the ledger, build pins,
// and fan them out to the timeline with bounded concurrency. A pin is
// recorded in the ledger if and only if its send succeeded.
type Service struct {
	source ScheduleSource
	sink   NotificationSink
	ledger PinLedger

	maxInFlight int
	debug       bool

	// Guards against overlapping cycles; a trigger that finds a cycle
	// still running is skipped, not queued.
	cycleMu sync.Mutex
}

// New creates a sync service with the default concurrency ceiling.
func New(source ScheduleSource, sink NotificationSink, ledger PinLedger) *Service {
	return &Service{
		source:      source,
		sink:        sink,
		ledger:      ledger,
		maxInFlight: maxConcurrentSends,
	}
}

// SetDebug enables per-item skip logging.
func (s *Service) SetDebug(debug bool) {
	s.debug = debug
}

type dispatchItem struct {
	pin    models.Pin
	topics []string
	meta   models.PinMetadata
}

// RunCycle executes one full synchronization cycle and returns once every
// dispatched item has reached a terminal outcome. A fetch or ledger-snapshot
// failure aborts the cycle with zero dispatches; per-item send failures are
// logged and absorbed. Returns ErrCycleRunning if a previous cycle has not
// finished.
func (s *Service) RunCycle(ctx context.Context) (CycleStats, error) {
	if !s.cycleMu.TryLock() {
		return CycleStats{}, ErrCycleRunning
	}
	defer s.cycleMu.Unlock()

	start := time.Now().AddDate(0, 0, -windowPastDays)

	entries, err := s.source.Schedule(ctx, start, windowDays)
	if err != nil {
		return CycleStats{}, fmt.Errorf("fetch schedule: %w", err)
	}

	// One ledger snapshot per cycle. Entries dispatched below are deduped
	// against it, not against mid-cycle writes; within a cycle each pin id
	// appears at most once by construction.
	sentIDs, err := s.ledger.AllPinIDs()
	if err != nil {
		return CycleStats{}, fmt.Errorf("load sent pin ids: %w", err)
	}

	stats := CycleStats{Fetched: len(entries)}

	batch := make(map[string]dispatchItem)
	for _, entry := range entries {
		pinID := PinID(entry.Episode.IDs.Trakt)

		if _, sent := sentIDs[pinID]; sent {
			if s.debug {
				log.Printf("[sync] pin %s already sent, skipping", pinID)
			}
			stats.Skipped++
			continue
		}

		// Keyed by pin id so a duplicated source row cannot produce two
		// concurrent sends for one episode.
		batch[pinID] = dispatchItem{
			pin:    BuildEpisodePin(entry),
			topics: []string{strconv.FormatInt(entry.Show.IDs.Trakt, 10)},
			meta:   models.PinMetadata{EpisodeID: entry.Episode.IDs.Trakt},
		}
	}

	sent, failed := s.dispatchAll(ctx, batch)
	stats.Sent = sent
	stats.Failed = failed

	log.Printf("[sync] cycle complete: fetched=%d skipped=%d sent=%d failed=%d",
		stats.Fetched, stats.Skipped, stats.Sent, stats.Failed)
	return stats, nil
}

// dispatchAll fans the batch out to the sink with bounded concurrency and
// waits for every item to finish. Failures are isolated per item: a failed
// send is logged, left out of the ledger, and never cancels its siblings.
func (s *Service) dispatchAll(ctx context.Context, batch map[string]dispatchItem) (sent, failed int) {
	var sentCount, failedCount atomic.Int64

	p := pool.New().WithMaxGoroutines(s.maxInFlight)
	for _, item := range batch {
		item := item
		p.Go(func() {
			if err := s.sink.SendSharedPin(ctx, item.topics, item.pin); err != nil {
				log.Printf("[sync] send failed for pin %s: %v", item.pin.ID, err)
				failedCount.Add(1)
				return
			}

			if err := s.ledger.UpsertPin(item.pin, item.meta); err != nil {
				// The send went out but was not recorded; the entry
				// reappears as new next cycle and the upsert makes the
				// re-send harmless.
				log.Printf("[sync] failed to record pin %s: %v", item.pin.ID, err)
				failedCount.Add(1)
				return
			}

			log.Printf("[sync] pin sent (id=%s, title=%q)", item.pin.ID, item.pin.Layout.Title)
			sentCount.Add(1)
		})
	}
	p.Wait()

	return int(sentCount.Load()), int(failedCount.Load())
}
