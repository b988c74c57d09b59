package worker

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/facility-triage/internal/observability"
)

// CycleRunner is the triage entry point the poller drives.
type CycleRunner interface {
	RunCycle(ctx context.Context) error
}

// CycleRunnerFunc adapts a function to CycleRunner.
type CycleRunnerFunc func(ctx context.Context) error

// RunCycle calls the wrapped function.
func (f CycleRunnerFunc) RunCycle(ctx context.Context) error {
	return f(ctx)
}

// Poller invokes the triage cycle on a fixed cadence. Ticks that arrive
// while a cycle is still in flight are coalesced: the tick is dropped and
// counted, never queued.
type Poller struct {
	runner   CycleRunner
	interval time.Duration
	logger   *zap.Logger
	metrics  *observability.Metrics
	inFlight atomic.Bool
}

// NewPoller constructs the poller.
func NewPoller(runner CycleRunner, interval time.Duration, logger *zap.Logger, metrics *observability.Metrics) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		runner:   runner,
		interval: interval,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run blocks until ctx is cancelled, firing one cycle per interval. The
// first cycle runs immediately.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("triage poller stopping")
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick starts one cycle unless a previous one is still in flight. A slow
// cycle overlapping a tick causes the tick to be dropped, not queued.
func (p *Poller) tick(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.metrics.RecordCycleSkipped()
		p.logger.Debug("triage cycle still in flight; skipping tick")
		return
	}
	go func() {
		defer p.inFlight.Store(false)
		if err := p.runner.RunCycle(ctx); err != nil {
			p.logger.Error("triage cycle failed", zap.Error(err))
		}
	}()
}
