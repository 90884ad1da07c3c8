package db

import (
	"database/sql"

	"social-leaderboard/backend-api/internal/db/types"
)

type Account struct {
	AccountID   int64           `json:"account_id"`
	Username    string          `json:"username"`
	DisplayName string          `json:"display_name"`
	RankPoints  int64           `json:"rank_points"`
	CreatedAt   types.Timestamp `json:"created_at"`
}

type Leaderboard struct {
	LeaderboardID int64           `json:"leaderboard_id"`
	Name          string          `json:"name"`
	CreatedAt     types.Timestamp `json:"created_at"`
}

type LeaderboardMemberRow struct {
	AccountID   int64  `json:"account_id"`
	DisplayName string `json:"display_name"`
	Points      int64  `json:"points"`
}

type ViewerRankRow struct {
	Position int64 `json:"position"`
	Points   int64 `json:"points"`
}

type Taunt struct {
	TauntID       int64           `json:"taunt_id"`
	FromAccountID int64           `json:"from_account_id"`
	ToAccountID   int64           `json:"to_account_id"`
	LeaderboardID sql.NullInt64   `json:"leaderboard_id"`
	CreatedAt     types.Timestamp `json:"created_at"`
}

type ListReceivedTauntsRow struct {
	TauntID         int64           `json:"taunt_id"`
	FromAccountID   int64           `json:"from_account_id"`
	FromDisplayName string          `json:"from_display_name"`
	LeaderboardID   sql.NullInt64   `json:"leaderboard_id"`
	CreatedAt       types.Timestamp `json:"created_at"`
}

type CreateAccountParams struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	RankPoints  int64  `json:"rank_points"`
}

type UpsertLeaderboardMemberParams struct {
	LeaderboardID int64 `json:"leaderboard_id"`
	AccountID     int64 `json:"account_id"`
	Points        int64 `json:"points"`
}

type ListLeaderboardMembersParams struct {
	LeaderboardID int64 `json:"leaderboard_id"`
	Limit         int64 `json:"limit"`
	Offset        int64 `json:"offset"`
}

type GetViewerRankParams struct {
	LeaderboardID int64 `json:"leaderboard_id"`
	AccountID     int64 `json:"account_id"`
}

type CreateTauntParams struct {
	FromAccountID int64           `json:"from_account_id"`
	ToAccountID   int64           `json:"to_account_id"`
	LeaderboardID sql.NullInt64   `json:"leaderboard_id"`
	CreatedAt     types.Timestamp `json:"created_at"`
}

type GetLatestTauntParams struct {
	FromAccountID int64 `json:"from_account_id"`
	ToAccountID   int64 `json:"to_account_id"`
}
