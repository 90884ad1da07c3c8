package session

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"social-leaderboard/backend-api/internal/aggregator"
	"social-leaderboard/backend-api/internal/jobs"
	"social-leaderboard/backend-api/internal/models"
	"social-leaderboard/backend-api/internal/screen"
	"social-leaderboard/backend-api/internal/services/account"
	"social-leaderboard/backend-api/internal/services/leaderboard"
	"social-leaderboard/backend-api/internal/services/taunt"
	"social-leaderboard/backend-api/internal/sources"
)

// Engine is the sync engine of one signed-in account: its four sources, the
// refresh dispatcher and scheduler, the aggregator and the screen.
type Engine struct {
	AccountID int64

	Account   *sources.AccountSource
	Store     *sources.Store
	Selection *sources.Selection
	Flag      *sources.SyncFlag

	Dispatcher *jobs.Dispatcher
	Scheduler  *jobs.Scheduler
	Aggregator *aggregator.Aggregator
	Screen     *screen.Screen

	accounts account.Service
	lastUsed atomic.Int64
}

// ReloadAccount replaces the account source with the stored account.
func (e *Engine) ReloadAccount(ctx context.Context) error {
	acc, err := e.accounts.GetAccount(ctx, e.AccountID)
	if err != nil {
		return fmt.Errorf("failed to reload account: %w", err)
	}
	e.Account.Set(acc)
	return nil
}

func (e *Engine) touch(now time.Time) {
	e.lastUsed.Store(now.UnixNano())
}

func (e *Engine) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, e.lastUsed.Load()))
}

func (e *Engine) close() {
	e.Scheduler.Stop()
	e.Dispatcher.Close()
	e.Screen.Close()
	e.Aggregator.Close()
}

// boardLister lists the leaderboards a refresh of one account covers.
type boardLister struct {
	boards    leaderboard.Service
	accountID int64
}

func (l boardLister) ListLeaderboards(ctx context.Context) ([]int64, error) {
	return l.boards.ListForAccount(ctx, l.accountID)
}

// boardFetcher fetches the page of each leaderboard that holds the viewer.
type boardFetcher struct {
	boards    leaderboard.Service
	accountID int64
}

func (f boardFetcher) Fetch(ctx context.Context, leaderboardID int64) (*models.LeaderboardSnapshot, error) {
	return f.boards.Fetch(ctx, f.accountID, leaderboardID, leaderboard.ViewerPage)
}

// tauntSender sends taunts from the session's account, tagged with the
// selected leaderboard when the store holds it and untagged otherwise.
type tauntSender struct {
	taunts    taunt.Service
	accountID int64
	selection *sources.Selection
	store     *sources.Store
}

func (s tauntSender) Taunt(ctx context.Context, targetID int64) error {
	_, err := s.taunts.Taunt(ctx, s.accountID, targetID, s.leaderboardTag())
	return err
}

func (s tauntSender) leaderboardTag() int64 {
	id := s.selection.Get()
	if _, ok := s.store.Lookup(id); !ok {
		return 0
	}
	return id
}
