package taunt

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"social-leaderboard/backend-api/internal/db"
	"social-leaderboard/backend-api/internal/db/types"
	"social-leaderboard/backend-api/pkg/config"

	"go.uber.org/zap"
)

type tauntService struct {
	config  config.Config
	logger  *zap.Logger
	dbConn  db.DBTX
	queries *db.Queries
	now     func() types.Timestamp
}

func NewTauntService(cfg config.Config, logger *zap.Logger, dbConn db.DBTX) Service {
	return &tauntService{
		config:  cfg,
		logger:  logger,
		dbConn:  dbConn,
		queries: db.New(),
		now:     types.Now,
	}
}

func (s *tauntService) Taunt(ctx context.Context, fromID, toID, leaderboardID int64) (*db.Taunt, error) {
	if fromID == toID {
		return nil, ErrCannotTauntSelf
	}

	if _, err := s.queries.GetAccount(ctx, s.dbConn, toID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTargetNotFound
		}
		return nil, fmt.Errorf("failed to get taunt target: %w", err)
	}

	now := s.now()
	latest, err := s.queries.GetLatestTaunt(ctx, s.dbConn, &db.GetLatestTauntParams{
		FromAccountID: fromID,
		ToAccountID:   toID,
	})
	switch {
	case err == nil:
		if now.Sub(latest.CreatedAt.Time) < s.config.Taunt.Cooldown {
			return nil, ErrTauntCooldown
		}
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, fmt.Errorf("failed to get latest taunt: %w", err)
	}

	taunt, err := s.queries.CreateTaunt(ctx, s.dbConn, &db.CreateTauntParams{
		FromAccountID: fromID,
		ToAccountID:   toID,
		LeaderboardID: sql.NullInt64{Int64: leaderboardID, Valid: leaderboardID != 0},
		CreatedAt:     now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create taunt: %w", err)
	}

	s.logger.Info("taunt delivered",
		zap.Int64("from_account_id", fromID),
		zap.Int64("to_account_id", toID),
		zap.Int64("leaderboard_id", leaderboardID),
	)
	return taunt, nil
}

func (s *tauntService) ListReceived(ctx context.Context, accountID int64) ([]*db.ListReceivedTauntsRow, error) {
	taunts, err := s.queries.ListReceivedTaunts(ctx, s.dbConn, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list received taunts: %w", err)
	}
	return taunts, nil
}
