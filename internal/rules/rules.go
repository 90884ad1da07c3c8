// Package rules holds the stateless leaderboard business rules.
package rules

import (
	"errors"

	"social-leaderboard/backend-api/internal/models"
)

const (
	// CelebrationMaxPosition is the lowest position that still celebrates.
	CelebrationMaxPosition = 10
	// PodiumSize is how many leading members page 1 renders separately.
	PodiumSize = 3
)

// Both denials show the viewer the same reason.
const tauntDeniedReason = "cannot taunt a member ranked at or above you"

var (
	ErrSelfTaunt        = errors.New(tauntDeniedReason)
	ErrTauntRankedAbove = errors.New(tauntDeniedReason)
)

// ShouldCelebrate reports whether the viewer's rank earns a celebration:
// a top-10 position with points on the board.
func ShouldCelebrate(rank *models.ViewerRank) bool {
	if rank == nil {
		return false
	}
	return rank.Position <= CelebrationMaxPosition && rank.Points > 0
}

// VisibleMembers returns the members listed below the podium. On page 1 the
// first PodiumSize members are dropped; other pages are returned whole.
func VisibleMembers(snapshot *models.LeaderboardSnapshot) []models.RankedMember {
	if snapshot == nil {
		return []models.RankedMember{}
	}
	if snapshot.Page != 1 {
		return snapshot.Members
	}
	if len(snapshot.Members) <= PodiumSize {
		return []models.RankedMember{}
	}
	return snapshot.Members[PodiumSize:]
}

// Podium returns the leading members of page 1, or nothing for other pages.
func Podium(snapshot *models.LeaderboardSnapshot) []models.RankedMember {
	if snapshot == nil || snapshot.Page != 1 {
		return []models.RankedMember{}
	}
	if len(snapshot.Members) <= PodiumSize {
		return snapshot.Members
	}
	return snapshot.Members[:PodiumSize]
}

// ViewerPoints looks the viewer up in the selected leaderboard. A viewer who
// is not listed has 0 points.
func ViewerPoints(snapshot *models.LeaderboardSnapshot, viewerID int64) int64 {
	if m, ok := snapshot.Member(viewerID); ok {
		return m.Points
	}
	return 0
}

// CheckTaunt decides whether the viewer may taunt the target. Self-taunts are
// refused before points are compared; otherwise the target must not have
// more points than the viewer. Equal points are allowed.
func CheckTaunt(viewerID, viewerPoints, targetID, targetPoints int64) error {
	if targetID == viewerID {
		return ErrSelfTaunt
	}
	if targetPoints > viewerPoints {
		return ErrTauntRankedAbove
	}
	return nil
}

// IsPermissionDenied reports whether err is one of the taunt rule refusals.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrSelfTaunt) || errors.Is(err, ErrTauntRankedAbove)
}
