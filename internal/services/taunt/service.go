package taunt

import (
	"context"
	"errors"

	"social-leaderboard/backend-api/internal/db"
)

var (
	ErrCannotTauntSelf = errors.New("cannot taunt yourself")
	ErrTargetNotFound  = errors.New("taunt target not found")
	ErrTauntCooldown   = errors.New("you already taunted this member recently")
)

type Service interface {
	// Taunt records a taunt from one account to another. leaderboardID is
	// the board it was sent from, or 0.
	Taunt(ctx context.Context, fromID, toID, leaderboardID int64) (*db.Taunt, error)
	ListReceived(ctx context.Context, accountID int64) ([]*db.ListReceivedTauntsRow, error)
}
