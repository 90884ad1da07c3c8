// Package jobs runs the background leaderboard refresh. The Dispatcher owns
// the single-flight execution of a job family; the Scheduler decides when
// jobs are triggered.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"social-leaderboard/backend-api/internal/metrics"
	"social-leaderboard/backend-api/internal/models"
	"social-leaderboard/backend-api/internal/sources"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// FamilyRefresh names the leaderboard refresh job.
const FamilyRefresh = "refresh-leaderboards"

// maxParallelFetches bounds the leaderboards fetched concurrently by one run.
const maxParallelFetches = 4

var ErrDispatcherClosed = errors.New("dispatcher is closed")

type Kind int

const (
	OneShot Kind = iota
	Recurring
)

func (k Kind) String() string {
	switch k {
	case OneShot:
		return "one-shot"
	case Recurring:
		return "recurring"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Lister returns the ids of the leaderboards a refresh should fetch.
type Lister interface {
	ListLeaderboards(ctx context.Context) ([]int64, error)
}

// Fetcher loads the current snapshot of one leaderboard.
type Fetcher interface {
	Fetch(ctx context.Context, leaderboardID int64) (*models.LeaderboardSnapshot, error)
}

// Outcome is delivered once per Trigger call. Callers that joined a running
// job receive the outcome of that job with Shared set.
type Outcome struct {
	RunID  string
	Err    error
	Shared bool
}

// Status describes the family's current state and its last finished run.
type Status struct {
	State        State
	LastRunID    string
	LastOutcome  string
	LastError    string
	LastFinished time.Time
}

type Options struct {
	Family  string
	Lister  Lister
	Fetcher Fetcher
	Store   *sources.Store
	Flag    *sources.SyncFlag
	Metrics *metrics.Metrics
}

// Dispatcher executes refresh jobs. At most one job per family runs at a
// time; triggers arriving while it runs are coalesced into it.
type Dispatcher struct {
	logger  *zap.Logger
	family  string
	lister  Lister
	fetcher Fetcher
	store   *sources.Store
	flag    *sources.SyncFlag
	metrics *metrics.Metrics

	group  singleflight.Group
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
	status Status
}

func NewDispatcher(logger *zap.Logger, opts Options) *Dispatcher {
	family := opts.Family
	if family == "" {
		family = FamilyRefresh
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		logger:  logger.Named("jobs"),
		family:  family,
		lister:  opts.Lister,
		fetcher: opts.Fetcher,
		store:   opts.Store,
		flag:    opts.Flag,
		metrics: opts.Metrics,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Trigger asks for a run of the family. It never blocks; the returned
// channel receives exactly one Outcome.
func (d *Dispatcher) Trigger(kind Kind) <-chan Outcome {
	out := make(chan Outcome, 1)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		out <- Outcome{Err: ErrDispatcherClosed}
		close(out)
		return out
	}
	d.wg.Add(1)
	d.mu.Unlock()

	var leader atomic.Bool
	results := d.group.DoChan(d.family, func() (interface{}, error) {
		leader.Store(true)
		return d.run(kind)
	})

	go func() {
		defer d.wg.Done()
		defer close(out)

		res := <-results
		runID, _ := res.Val.(string)
		joined := !leader.Load()
		if joined {
			d.metrics.JobCoalesced(d.family)
		}
		out <- Outcome{RunID: runID, Err: res.Err, Shared: joined}
	}()
	return out
}

// Status returns a copy of the family's status.
func (d *Dispatcher) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// Close cancels a running job and waits for every pending Trigger to
// receive its outcome. Later triggers fail with ErrDispatcherClosed.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()
}

func (d *Dispatcher) run(kind Kind) (interface{}, error) {
	runID := uuid.NewString()
	logger := d.logger.With(
		zap.String("run_id", runID),
		zap.String("family", d.family),
		zap.Stringer("kind", kind),
	)

	d.setState(Running)
	d.flag.Set(true)
	start := time.Now()
	defer func() {
		d.flag.Set(false)
		d.setState(Idle)
	}()

	logger.Debug("job started")

	snapshots, err := d.fetchAll(d.ctx)
	if err == nil {
		err = d.store.ReplaceAll(snapshots)
	}

	elapsed := time.Since(start)
	outcome := "succeeded"
	if err != nil {
		outcome = "failed"
		logger.Warn("refresh failed", zap.Error(err), zap.Duration("elapsed", elapsed))
	} else {
		logger.Info("refresh completed",
			zap.Int("leaderboards", len(snapshots)),
			zap.Duration("elapsed", elapsed),
		)
	}
	d.metrics.JobRun(d.family, outcome, elapsed)
	d.finish(runID, outcome, err)

	return runID, err
}

func (d *Dispatcher) fetchAll(ctx context.Context) ([]*models.LeaderboardSnapshot, error) {
	ids, err := d.lister.ListLeaderboards(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list leaderboards: %w", err)
	}

	snapshots := make([]*models.LeaderboardSnapshot, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetches)
	for i, id := range ids {
		g.Go(func() error {
			snap, err := d.fetcher.Fetch(gctx, id)
			if err != nil {
				return fmt.Errorf("failed to fetch leaderboard %d: %w", id, err)
			}
			snapshots[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (d *Dispatcher) setState(state State) {
	d.mu.Lock()
	d.status.State = state
	d.mu.Unlock()
}

func (d *Dispatcher) finish(runID, outcome string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status.LastRunID = runID
	d.status.LastOutcome = outcome
	d.status.LastError = ""
	if err != nil {
		d.status.LastError = err.Error()
	}
	d.status.LastFinished = time.Now()
}
