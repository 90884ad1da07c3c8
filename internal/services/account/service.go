package account

import (
	"context"
	"errors"

	"social-leaderboard/backend-api/internal/models"
)

var ErrAccountNotFound = errors.New("account not found")

type Service interface {
	GetAccount(ctx context.Context, accountID int64) (*models.Account, error)
}
