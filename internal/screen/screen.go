// Package screen turns the aggregated view state into what the leaderboard
// screen consumes: paginated members, the celebration signal, the view-more
// expansion and the taunt dialog.
package screen

import (
	"context"
	"errors"
	"sync"
	"time"

	"social-leaderboard/backend-api/internal/aggregator"
	"social-leaderboard/backend-api/internal/jobs"
	"social-leaderboard/backend-api/internal/metrics"
	"social-leaderboard/backend-api/internal/models"
	"social-leaderboard/backend-api/internal/rules"
	"social-leaderboard/backend-api/internal/sources"
	"social-leaderboard/backend-api/internal/stream"

	"go.uber.org/zap"
)

const (
	DefaultCelebrationWindow = 2 * time.Second
	DefaultViewMoreWindow    = 250 * time.Millisecond
)

var ErrSignedOut = errors.New("no account is signed in")

// Taunter sends a taunt to another member on behalf of the viewer.
type Taunter interface {
	Taunt(ctx context.Context, targetID int64) error
}

// Refresher starts a one-shot refresh.
type Refresher interface {
	RunOnce() <-chan jobs.Outcome
}

// State is everything the screen renders.
type State struct {
	View aggregator.ViewState
	// VisibleMembers is the list below the podium of the selected board.
	VisibleMembers []models.RankedMember
	Podium         []models.RankedMember
	Signal         models.Signal
	// ExpandedLeaderboard names the board whose view-more animation is
	// playing, or is empty.
	ExpandedLeaderboard string
	Dialog              Dialog
}

type Options struct {
	Aggregator        *aggregator.Aggregator
	Selection         *sources.Selection
	Taunter           Taunter
	Refresher         Refresher
	Metrics           *metrics.Metrics
	CelebrationWindow time.Duration
	ViewMoreWindow    time.Duration
}

type timer interface {
	Stop() bool
}

type afterFunc func(d time.Duration, f func()) timer

func realAfterFunc(d time.Duration, f func()) timer {
	return time.AfterFunc(d, f)
}

// restartable is a one-shot window that restarts instead of stacking.
type restartable struct {
	current timer
	gen     uint64
}

type Screen struct {
	logger    *zap.Logger
	agg       *aggregator.Aggregator
	selection *sources.Selection
	taunter   Taunter
	refresher Refresher
	metrics   *metrics.Metrics

	state *stream.Value[State]
	after afterFunc

	celebrationWindow time.Duration
	viewMoreWindow    time.Duration

	mu          sync.Mutex
	celebration restartable
	viewMore    restartable
	dialogGen   uint64

	sub       *stream.Subscription[aggregator.ViewState]
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

func New(logger *zap.Logger, opts Options) *Screen {
	return newScreen(logger, opts, realAfterFunc)
}

func newScreen(logger *zap.Logger, opts Options, after afterFunc) *Screen {
	if opts.CelebrationWindow <= 0 {
		opts.CelebrationWindow = DefaultCelebrationWindow
	}
	if opts.ViewMoreWindow <= 0 {
		opts.ViewMoreWindow = DefaultViewMoreWindow
	}

	initial := opts.Aggregator.Get()
	s := &Screen{
		logger:            logger.Named("screen"),
		agg:               opts.Aggregator,
		selection:         opts.Selection,
		taunter:           opts.Taunter,
		refresher:         opts.Refresher,
		metrics:           opts.Metrics,
		state:             stream.NewValue(withView(State{}, initial)),
		after:             after,
		celebrationWindow: opts.CelebrationWindow,
		viewMoreWindow:    opts.ViewMoreWindow,
		sub:               opts.Aggregator.Observe(),
		done:              make(chan struct{}),
		stopped:           make(chan struct{}),
	}
	go s.run()
	return s
}

// Get returns the latest screen state.
func (s *Screen) Get() State {
	return s.state.Get()
}

// Observe emits the current screen state followed by every change.
func (s *Screen) Observe() *stream.Subscription[State] {
	return s.state.Subscribe()
}

// SetSelection switches the viewed leaderboard. Ids that are not stored yet
// are accepted.
func (s *Screen) SetSelection(id int64) {
	s.selection.Set(id)
}

// RequestRefresh starts a one-shot refresh. The outcome may be ignored.
func (s *Screen) RequestRefresh() <-chan jobs.Outcome {
	return s.refresher.RunOnce()
}

// ExpandViewMore plays the view-more expansion for the selected board. It is
// a no-op while nothing is selected.
func (s *Screen) ExpandViewMore() {
	selected := s.state.Get().View.Selected
	if selected == nil {
		return
	}
	name := selected.Name
	s.restart(&s.viewMore, s.viewMoreWindow,
		func(st State) State { st.ExpandedLeaderboard = name; return st },
		func(st State) State { st.ExpandedLeaderboard = ""; return st },
	)
}

// DismissDialog closes the taunt dialog.
func (s *Screen) DismissDialog() {
	s.openDialog(nil)
}

// RequestTaunt checks the taunt rules against the selected leaderboard and,
// when permitted, sends the taunt. The dialog passes through Loading and
// ends in Success or Error; the final dialog is also returned.
func (s *Screen) RequestTaunt(ctx context.Context, targetID, targetPoints int64, targetName string) Dialog {
	gen := s.openDialog(DialogLoading{})

	result := s.taunt(ctx, targetID, targetPoints, targetName)
	s.settleDialog(gen, result)
	return result
}

func (s *Screen) taunt(ctx context.Context, targetID, targetPoints int64, targetName string) Dialog {
	view := s.state.Get().View
	if view.Account == nil {
		s.metrics.Taunt("denied")
		return deniedDialog(ErrSignedOut)
	}

	viewerPoints := rules.ViewerPoints(view.Selected, view.Account.ID)
	if err := rules.CheckTaunt(view.Account.ID, viewerPoints, targetID, targetPoints); err != nil {
		s.metrics.Taunt("denied")
		return deniedDialog(err)
	}

	if err := s.taunter.Taunt(ctx, targetID); err != nil {
		s.logger.Warn("taunt failed",
			zap.Int64("target_id", targetID),
			zap.Error(err),
		)
		s.metrics.Taunt("failed")
		return failureDialog(err)
	}

	s.metrics.Taunt("sent")
	return successDialog(targetName)
}

// Close stops the screen loop and any pending timers.
func (s *Screen) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		<-s.stopped
		s.sub.Close()

		s.mu.Lock()
		defer s.mu.Unlock()
		for _, w := range []*restartable{&s.celebration, &s.viewMore} {
			w.gen++
			if w.current != nil {
				w.current.Stop()
				w.current = nil
			}
		}
	})
}

func (s *Screen) run() {
	defer close(s.stopped)

	var lastSelected *models.LeaderboardSnapshot
	for {
		select {
		case <-s.done:
			return
		case view, ok := <-s.sub.C():
			if !ok {
				return
			}
			s.state.Update(func(st State) State { return withView(st, view) })

			if view.Selected == lastSelected {
				continue
			}
			lastSelected = view.Selected
			if view.Selected != nil && rules.ShouldCelebrate(view.Selected.Rank) {
				s.celebrate()
			}
		}
	}
}

func (s *Screen) celebrate() {
	s.restart(&s.celebration, s.celebrationWindow,
		func(st State) State { st.Signal = models.SignalCelebrate; return st },
		func(st State) State { st.Signal = models.SignalNone; return st },
	)
}

// restart applies begin now and end after d. A restart within the window
// cancels the previous end; a stale timer that already fired is ignored.
func (s *Screen) restart(w *restartable, d time.Duration, begin, end func(State) State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w.current != nil {
		w.current.Stop()
	}
	w.gen++
	gen := w.gen

	s.state.Update(begin)
	w.current = s.after(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if w.gen != gen {
			return
		}
		w.current = nil
		s.state.Update(end)
	})
}

// openDialog replaces the dialog and returns its generation.
func (s *Screen) openDialog(d Dialog) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialogGen++
	s.setDialog(d)
	return s.dialogGen
}

// settleDialog shows the result of the dialog opened as gen, unless it was
// dismissed or replaced since.
func (s *Screen) settleDialog(gen uint64, d Dialog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dialogGen != gen {
		return
	}
	s.setDialog(d)
}

func (s *Screen) setDialog(d Dialog) {
	s.state.Update(func(st State) State {
		st.Dialog = d
		return st
	})
}

func withView(st State, view aggregator.ViewState) State {
	st.View = view
	st.VisibleMembers = rules.VisibleMembers(view.Selected)
	st.Podium = rules.Podium(view.Selected)
	return st
}
