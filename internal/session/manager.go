// Package session keeps one leaderboard sync engine per signed-in account.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"social-leaderboard/backend-api/internal/aggregator"
	"social-leaderboard/backend-api/internal/jobs"
	"social-leaderboard/backend-api/internal/metrics"
	"social-leaderboard/backend-api/internal/screen"
	"social-leaderboard/backend-api/internal/services/account"
	"social-leaderboard/backend-api/internal/services/leaderboard"
	"social-leaderboard/backend-api/internal/services/taunt"
	"social-leaderboard/backend-api/internal/sources"
	"social-leaderboard/backend-api/pkg/config"
	"social-leaderboard/backend-api/pkg/logging"

	"go.uber.org/zap"
)

var ErrManagerClosed = errors.New("session manager is closed")

type Services struct {
	Accounts     account.Service
	Leaderboards leaderboard.Service
	Taunts       taunt.Service
}

// Manager creates engines lazily on first use and tears them down after
// SessionIdleTimeout without use, or on Close.
type Manager struct {
	cfg      config.Config
	logger   *zap.Logger
	metrics  *metrics.Metrics
	services Services
	now      func() time.Time

	mu      sync.Mutex
	engines map[int64]*Engine
	closed  bool

	stopJanitor chan struct{}
	janitorDone chan struct{}
}

func NewManager(cfg config.Config, logger *zap.Logger, m *metrics.Metrics, services Services) *Manager {
	mgr := &Manager{
		cfg:         cfg,
		logger:      logger.Named("session"),
		metrics:     m,
		services:    services,
		now:         time.Now,
		engines:     make(map[int64]*Engine),
		stopJanitor: make(chan struct{}),
		janitorDone: make(chan struct{}),
	}

	interval := cfg.Leaderboard.SessionIdleTimeout / 2
	if interval <= 0 {
		mgr.logger.Warn("idle session eviction disabled",
			zap.Duration("idle_timeout", cfg.Leaderboard.SessionIdleTimeout),
		)
		close(mgr.janitorDone)
		return mgr
	}
	go mgr.janitor(interval)
	return mgr
}

// Get returns the engine of accountID, creating and starting it if needed.
func (m *Manager) Get(ctx context.Context, accountID int64) (*Engine, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerClosed
	}
	if e, ok := m.engines[accountID]; ok {
		e.touch(m.now())
		m.mu.Unlock()
		return e, nil
	}
	m.mu.Unlock()

	acc, err := m.services.Accounts.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrManagerClosed
	}
	if e, ok := m.engines[accountID]; ok {
		e.touch(m.now())
		return e, nil
	}

	e, err := m.build(accountID, sources.NewAccountSource(acc))
	if err != nil {
		return nil, err
	}
	e.touch(m.now())
	m.engines[accountID] = e
	m.metrics.SessionOpened()
	return e, nil
}

// Len reports how many engines are live.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.engines)
}

// EvictIdle closes engines unused for longer than the idle timeout and
// returns how many were closed.
func (m *Manager) EvictIdle() int {
	now := m.now()
	timeout := m.cfg.Leaderboard.SessionIdleTimeout

	m.mu.Lock()
	var idle []*Engine
	for id, e := range m.engines {
		if e.idleSince(now) > timeout {
			idle = append(idle, e)
			delete(m.engines, id)
		}
	}
	m.mu.Unlock()

	for _, e := range idle {
		m.closeEngine(e, "idle")
	}
	return len(idle)
}

// Close stops the janitor and every engine. Later Get calls fail.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	engines := m.engines
	m.engines = make(map[int64]*Engine)
	m.mu.Unlock()

	close(m.stopJanitor)
	<-m.janitorDone

	for _, e := range engines {
		m.closeEngine(e, "shutdown")
	}
}

func (m *Manager) build(accountID int64, accountSrc *sources.AccountSource) (*Engine, error) {
	lbCfg := m.cfg.Leaderboard
	logger := logging.ForAccount(m.logger, "engine", accountID)

	e := &Engine{
		AccountID: accountID,
		Account:   accountSrc,
		Store:     sources.NewStore(),
		Selection: sources.NewSelection(lbCfg.PrimaryID),
		Flag:      sources.NewSyncFlag(),
		accounts:  m.services.Accounts,
	}
	e.Dispatcher = jobs.NewDispatcher(logger, jobs.Options{
		Lister:  boardLister{boards: m.services.Leaderboards, accountID: accountID},
		Fetcher: boardFetcher{boards: m.services.Leaderboards, accountID: accountID},
		Store:   e.Store,
		Flag:    e.Flag,
		Metrics: m.metrics,
	})
	e.Scheduler = jobs.NewScheduler(logger, e.Dispatcher, lbCfg.RefreshInterval)
	e.Aggregator = aggregator.New(logger, aggregator.Sources{
		Account:   e.Account,
		Store:     e.Store,
		Selection: e.Selection,
		Flag:      e.Flag,
	})
	sender := tauntSender{
		taunts:    m.services.Taunts,
		accountID: accountID,
		selection: e.Selection,
		store:     e.Store,
	}
	e.Screen = screen.New(logger, screen.Options{
		Aggregator:        e.Aggregator,
		Selection:         e.Selection,
		Taunter:           sender,
		Refresher:         e.Scheduler,
		Metrics:           m.metrics,
		CelebrationWindow: lbCfg.CelebrationWindow,
		ViewMoreWindow:    lbCfg.ViewMoreWindow,
	})

	if err := e.Scheduler.RunPeriodic(context.Background()); err != nil {
		e.close()
		return nil, fmt.Errorf("failed to schedule refresh: %w", err)
	}

	logger.Info("session started", zap.Duration("refresh_interval", lbCfg.RefreshInterval))
	return e, nil
}

func (m *Manager) closeEngine(e *Engine, reason string) {
	e.close()
	m.metrics.SessionClosed()
	m.logger.Info("session closed",
		zap.Int64("account_id", e.AccountID),
		zap.String("reason", reason),
	)
}

func (m *Manager) janitor(interval time.Duration) {
	defer close(m.janitorDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopJanitor:
			return
		case <-ticker.C:
			if n := m.EvictIdle(); n > 0 {
				m.logger.Debug("evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}
