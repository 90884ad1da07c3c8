// Package models holds the immutable values that flow between the leaderboard
// sources, the aggregator and the screen.
package models

// Account is the signed-in viewer. It is replaced wholesale on update.
type Account struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	RankPoints  int64  `json:"rank_points"`
}

// RankedMember is one row of a leaderboard.
type RankedMember struct {
	AccountID   int64  `json:"account_id"`
	DisplayName string `json:"display_name"`
	Points      int64  `json:"points"`
}

// ViewerRank is the viewer's own standing. Position is 1-based.
type ViewerRank struct {
	Position int64 `json:"position"`
	Points   int64 `json:"points"`
}

// LeaderboardSnapshot is one fetched page of a leaderboard. Members are
// ordered by descending points with ties in source insertion order. A
// snapshot is never mutated after it has been published.
type LeaderboardSnapshot struct {
	ID      int64          `json:"id"`
	Name    string         `json:"name"`
	Page    int            `json:"page"`
	Members []RankedMember `json:"members"`
	Rank    *ViewerRank    `json:"rank,omitempty"`
}

// Member returns the member with the given account id.
func (s *LeaderboardSnapshot) Member(accountID int64) (RankedMember, bool) {
	if s == nil {
		return RankedMember{}, false
	}
	for _, m := range s.Members {
		if m.AccountID == accountID {
			return m, true
		}
	}
	return RankedMember{}, false
}

// LeaderboardMap indexes snapshots by leaderboard id.
type LeaderboardMap map[int64]*LeaderboardSnapshot

// With returns a copy of m with id bound to snapshot. The receiver is left
// untouched so published maps stay immutable.
func (m LeaderboardMap) With(id int64, snapshot *LeaderboardSnapshot) LeaderboardMap {
	next := make(LeaderboardMap, len(m)+1)
	for k, v := range m {
		next[k] = v
	}
	next[id] = snapshot
	return next
}

// Signal is a short-lived UI cue.
type Signal string

const (
	SignalNone      Signal = ""
	SignalCelebrate Signal = "celebrate"
)
