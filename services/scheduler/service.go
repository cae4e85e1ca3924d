package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	syncsvc "showsync/services/sync"
)

// dailySyncSpec fires once per day at 03:00:40 local time. The odd second
// offset keeps the run clear of on-the-minute load spikes at the APIs.
const dailySyncSpec = "40 0 3 * * *"

// SyncRunner runs one synchronization cycle.
type SyncRunner interface {
	RunCycle(ctx context.Context) (syncsvc.CycleStats, error)
}

// Service drives the sync engine: one eager cycle at startup, then one per
// day at a fixed wall-clock time. Cycle failures are logged and never
// escalate; the next trigger is independent of the previous cycle's outcome.
type Service struct {
	runner     SyncRunner
	runOnStart bool

	mu      sync.Mutex
	running bool
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewService creates a new scheduler service.
func NewService(runner SyncRunner, runOnStart bool) *Service {
	return &Service{
		runner:     runner,
		runOnStart: runOnStart,
	}
}

// Start arms the daily trigger and, when configured, kicks off an immediate
// first cycle in the background.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron = cron.New(cron.WithSeconds())
	if _, err := s.cron.AddFunc(dailySyncSpec, s.runCycle); err != nil {
		return err
	}

	if s.runOnStart {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runCycle()
		}()
	}

	s.cron.Start()
	s.running = true

	log.Println("[scheduler] started, next sync daily at 03:00:40")
	return nil
}

// Stop disarms the trigger and waits for any in-flight cycle, bounded by
// the given context.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.cancel()
	cronCtx := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-cronCtx.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[scheduler] stopped gracefully")
	case <-ctx.Done():
		log.Println("[scheduler] stopped (timeout waiting for cycle)")
	}

	s.running = false
	return nil
}

// runCycle executes one cycle, absorbing every failure mode: an overlapping
// trigger is skipped, anything else is logged and left for the next trigger.
func (s *Service) runCycle() {
	stats, err := s.runner.RunCycle(s.ctx)
	switch {
	case errors.Is(err, syncsvc.ErrCycleRunning):
		log.Println("[scheduler] previous sync cycle still running, skipping this trigger")
	case err != nil:
		log.Printf("[scheduler] sync cycle failed: %v", err)
	default:
		log.Printf("[scheduler] sync cycle finished (sent=%d failed=%d)", stats.Sent, stats.Failed)
	}
}
