package leaderboard

import (
	"context"
	"errors"

	"social-leaderboard/backend-api/internal/models"
)

// ViewerPage asks Fetch for the page that contains the viewer, or page 1
// when the viewer is not a member.
const ViewerPage = 0

var (
	ErrLeaderboardNotFound = errors.New("leaderboard not found")
	ErrInvalidPage         = errors.New("page must not be negative")
)

type Service interface {
	// Fetch returns one page of the leaderboard as seen by viewerID. The
	// viewer's rank is computed across the whole board.
	Fetch(ctx context.Context, viewerID, leaderboardID int64, page int) (*models.LeaderboardSnapshot, error)
	// ListForAccount returns the leaderboards the account belongs to,
	// always including the primary leaderboard.
	ListForAccount(ctx context.Context, accountID int64) ([]int64, error)
}
