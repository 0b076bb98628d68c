package jobs

import (
	"context"
	"log"
	"time"

	"pulse-market/internal/services"
)

// ResolutionRunner is the cycle the worker drives. Satisfied by
// services.ResolutionService.
type ResolutionRunner interface {
	RunCycle(ctx context.Context) services.CycleReport
}

// ResolutionWorker periodically runs one resolution cycle over the pending
// markets. Cycles never overlap: the next tick waits for the current cycle
// to finish.
type ResolutionWorker struct {
	runner   ResolutionRunner
	interval time.Duration
	stopChan chan struct{}
	done     chan struct{}
}

// NewResolutionWorker creates a new resolution worker job
func NewResolutionWorker(runner ResolutionRunner, interval time.Duration) *ResolutionWorker {
	return &ResolutionWorker{
		runner:   runner,
		interval: interval,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the resolution loop. It blocks until Stop is called; run it
// in its own goroutine. An in-flight cycle finishes before Start returns.
func (w *ResolutionWorker) Start() {
	log.Printf("[ResolutionWorker] Starting market resolution job (interval: %v)", w.interval)
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.runOnce()
		case <-w.stopChan:
			log.Println("[ResolutionWorker] Stopping market resolution job")
			return
		}
	}
}

// Stop signals the loop to exit and waits for the in-flight cycle.
func (w *ResolutionWorker) Stop() {
	close(w.stopChan)
	<-w.done
}

func (w *ResolutionWorker) runOnce() {
	start := time.Now()
	report := w.runner.RunCycle(context.Background())
	if report.Candidates == 0 {
		return
	}
	log.Printf("[ResolutionWorker] Cycle done in %v: %d candidates, %d resolved, %d already settled, %d failed",
		time.Since(start).Round(time.Millisecond),
		report.Candidates, report.Resolved, report.AlreadySettled, report.Failed)
}
