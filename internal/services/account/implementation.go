package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"social-leaderboard/backend-api/internal/db"
	"social-leaderboard/backend-api/internal/models"
	"social-leaderboard/backend-api/pkg/config"

	"go.uber.org/zap"
)

type accountService struct {
	config  config.Config
	logger  *zap.Logger
	dbConn  db.DBTX
	queries *db.Queries
}

func NewAccountService(cfg config.Config, logger *zap.Logger, dbConn db.DBTX) Service {
	return &accountService{
		config:  cfg,
		logger:  logger,
		dbConn:  dbConn,
		queries: db.New(),
	}
}

func (s *accountService) GetAccount(ctx context.Context, accountID int64) (*models.Account, error) {
	row, err := s.queries.GetAccount(ctx, s.dbConn, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &models.Account{
		ID:          row.AccountID,
		DisplayName: row.DisplayName,
		RankPoints:  row.RankPoints,
	}, nil
}
