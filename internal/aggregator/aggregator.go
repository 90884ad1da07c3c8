// Package aggregator fans the four leaderboard sources into one view state.
//
// A single goroutine owns the latest value of every input. Each source event
// carries its new value, so a recomputation never reads one input fresh and
// another stale.
package aggregator

import (
	"sort"
	"sync"

	"social-leaderboard/backend-api/internal/models"
	"social-leaderboard/backend-api/internal/sources"
	"social-leaderboard/backend-api/internal/stream"

	"go.uber.org/zap"
)

// ViewState is the derived, read-only picture of a leaderboard session.
type ViewState struct {
	IsSyncing  bool
	SelectedID int64
	// Selected is nil while the store has no entry for SelectedID.
	Selected *models.LeaderboardSnapshot
	// All holds every stored snapshot ordered by id.
	All     []*models.LeaderboardSnapshot
	Account *models.Account
}

// Sources groups the inputs of an Aggregator.
type Sources struct {
	Account   *sources.AccountSource
	Store     *sources.Store
	Selection *sources.Selection
	Flag      *sources.SyncFlag
}

type inputs struct {
	account    *models.Account
	boards     models.LeaderboardMap
	selectedID int64
	syncing    bool
}

type Aggregator struct {
	logger *zap.Logger
	state  *stream.Value[ViewState]

	accountSub   *stream.Subscription[*models.Account]
	storeSub     *stream.Subscription[models.LeaderboardMap]
	selectionSub *stream.Subscription[int64]
	flagSub      *stream.Subscription[bool]

	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// New subscribes to every source and starts the fan-in loop. The initial
// state is computed from the sources' current values, so Get is meaningful
// immediately.
func New(logger *zap.Logger, src Sources) *Aggregator {
	in := inputs{
		account:    src.Account.Get(),
		boards:     src.Store.Get(),
		selectedID: src.Selection.Get(),
		syncing:    src.Flag.Get(),
	}
	a := &Aggregator{
		logger:       logger,
		state:        stream.NewValue(compute(in)),
		accountSub:   src.Account.Observe(),
		storeSub:     src.Store.Observe(),
		selectionSub: src.Selection.Observe(),
		flagSub:      src.Flag.Observe(),
		done:         make(chan struct{}),
		stopped:      make(chan struct{}),
	}
	go a.run(in)
	return a
}

// Get returns the latest view state without blocking.
func (a *Aggregator) Get() ViewState {
	return a.state.Get()
}

// Observe emits the current view state and then every recomputation.
func (a *Aggregator) Observe() *stream.Subscription[ViewState] {
	return a.state.Subscribe()
}

// Close stops the loop and releases the source subscriptions.
func (a *Aggregator) Close() {
	a.closeOnce.Do(func() {
		close(a.done)
		<-a.stopped
		a.accountSub.Close()
		a.storeSub.Close()
		a.selectionSub.Close()
		a.flagSub.Close()
	})
}

func (a *Aggregator) run(in inputs) {
	defer close(a.stopped)
	for {
		select {
		case <-a.done:
			return
		case acc, ok := <-a.accountSub.C():
			if !ok {
				return
			}
			in.account = acc
		case boards, ok := <-a.storeSub.C():
			if !ok {
				return
			}
			in.boards = boards
		case id, ok := <-a.selectionSub.C():
			if !ok {
				return
			}
			in.selectedID = id
		case syncing, ok := <-a.flagSub.C():
			if !ok {
				return
			}
			in.syncing = syncing
		}

		next := compute(in)
		a.state.Set(next)
		a.logger.Debug("view state recomputed",
			zap.Int64("selected_id", next.SelectedID),
			zap.Bool("selected_present", next.Selected != nil),
			zap.Int("leaderboards", len(next.All)),
			zap.Bool("syncing", next.IsSyncing),
		)
	}
}

func compute(in inputs) ViewState {
	all := make([]*models.LeaderboardSnapshot, 0, len(in.boards))
	for _, snap := range in.boards {
		all = append(all, snap)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	return ViewState{
		IsSyncing:  in.syncing,
		SelectedID: in.selectedID,
		Selected:   in.boards[in.selectedID],
		All:        all,
		Account:    in.account,
	}
}
