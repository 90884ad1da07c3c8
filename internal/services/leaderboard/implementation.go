package leaderboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"social-leaderboard/backend-api/internal/db"
	"social-leaderboard/backend-api/internal/models"
	"social-leaderboard/backend-api/pkg/config"

	"go.uber.org/zap"
)

type leaderboardService struct {
	config  config.Config
	logger  *zap.Logger
	dbConn  db.DBTX
	queries *db.Queries
}

func NewLeaderboardService(cfg config.Config, logger *zap.Logger, dbConn db.DBTX) Service {
	return &leaderboardService{
		config:  cfg,
		logger:  logger,
		dbConn:  dbConn,
		queries: db.New(),
	}
}

func (s *leaderboardService) Fetch(ctx context.Context, viewerID, leaderboardID int64, page int) (*models.LeaderboardSnapshot, error) {
	if page < 0 {
		return nil, ErrInvalidPage
	}

	board, err := s.queries.GetLeaderboard(ctx, s.dbConn, leaderboardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeaderboardNotFound
		}
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	var rank *models.ViewerRank
	row, err := s.queries.GetViewerRank(ctx, s.dbConn, &db.GetViewerRankParams{
		LeaderboardID: leaderboardID,
		AccountID:     viewerID,
	})
	switch {
	case err == nil:
		rank = &models.ViewerRank{Position: row.Position, Points: row.Points}
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, fmt.Errorf("failed to get viewer rank: %w", err)
	}

	pageSize := s.config.Leaderboard.PageSize
	if page == ViewerPage {
		page = 1
		if rank != nil {
			page = int((rank.Position-1)/int64(pageSize)) + 1
		}
	}

	rows, err := s.queries.ListLeaderboardMembers(ctx, s.dbConn, &db.ListLeaderboardMembersParams{
		LeaderboardID: leaderboardID,
		Limit:         int64(pageSize),
		Offset:        int64((page - 1) * pageSize),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list leaderboard members: %w", err)
	}

	members := make([]models.RankedMember, 0, len(rows))
	for _, r := range rows {
		members = append(members, models.RankedMember{
			AccountID:   r.AccountID,
			DisplayName: r.DisplayName,
			Points:      r.Points,
		})
	}

	s.logger.Debug("leaderboard fetched",
		zap.Int64("leaderboard_id", leaderboardID),
		zap.Int64("viewer_id", viewerID),
		zap.Int("page", page),
		zap.Int("members", len(members)),
	)

	return &models.LeaderboardSnapshot{
		ID:      board.LeaderboardID,
		Name:    board.Name,
		Page:    page,
		Members: members,
		Rank:    rank,
	}, nil
}

func (s *leaderboardService) ListForAccount(ctx context.Context, accountID int64) ([]int64, error) {
	ids, err := s.queries.ListAccountLeaderboardIDs(ctx, s.dbConn, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list account leaderboards: %w", err)
	}

	primary := s.config.Leaderboard.PrimaryID
	for _, id := range ids {
		if id == primary {
			return ids, nil
		}
	}
	ids = append(ids, primary)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
