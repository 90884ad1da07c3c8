package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrAlreadyScheduled = errors.New("periodic refresh already scheduled")
	ErrInvalidInterval  = errors.New("refresh interval must be positive")
)

// Triggerer is the part of the Dispatcher the Scheduler drives.
type Triggerer interface {
	Trigger(kind Kind) <-chan Outcome
}

// Scheduler owns the recurring refresh interval. A single periodic loop may
// be active at a time.
type Scheduler struct {
	logger   *zap.Logger
	target   Triggerer
	interval time.Duration

	mu      sync.Mutex
	stop    context.CancelFunc
	stopped chan struct{}
}

func NewScheduler(logger *zap.Logger, target Triggerer, interval time.Duration) *Scheduler {
	return &Scheduler{
		logger:   logger.Named("scheduler"),
		target:   target,
		interval: interval,
	}
}

// RunOnce triggers a single one-shot refresh.
func (s *Scheduler) RunOnce() <-chan Outcome {
	return s.target.Trigger(OneShot)
}

// RunPeriodic triggers a recurring refresh now and then on every interval
// until ctx is done or Stop is called.
func (s *Scheduler) RunPeriodic(ctx context.Context) error {
	if s.interval <= 0 {
		return ErrInvalidInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return ErrAlreadyScheduled
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.stop = cancel
	s.stopped = make(chan struct{})
	go s.loop(loopCtx, s.stopped)

	s.logger.Info("periodic refresh scheduled", zap.Duration("interval", s.interval))
	return nil
}

// Running reports whether a periodic loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

// Stop ends the periodic loop and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, stopped := s.stop, s.stopped
	s.stop, s.stopped = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-stopped
}

func (s *Scheduler) loop(ctx context.Context, stopped chan struct{}) {
	defer close(stopped)
	defer func() {
		s.mu.Lock()
		if s.stopped == stopped {
			s.stop, s.stopped = nil, nil
		}
		s.mu.Unlock()
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.target.Trigger(Recurring)
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("periodic refresh stopped")
			return
		case <-ticker.C:
			s.target.Trigger(Recurring)
		}
	}
}
