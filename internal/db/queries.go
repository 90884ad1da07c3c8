package db

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds the statements used by the services. Each method takes the
// connection to run on so callers can pass a transaction.
type Queries struct{}

func New() *Queries {
	return &Queries{}
}

const createAccount = `INSERT INTO accounts (username, display_name, rank_points) VALUES (?, ?, ?)
RETURNING account_id, username, display_name, rank_points, created_at`

func (q *Queries) CreateAccount(ctx context.Context, db DBTX, arg *CreateAccountParams) (*Account, error) {
	row := db.QueryRowContext(ctx, createAccount, arg.Username, arg.DisplayName, arg.RankPoints)
	var i Account
	err := row.Scan(&i.AccountID, &i.Username, &i.DisplayName, &i.RankPoints, &i.CreatedAt)
	return &i, err
}

const getAccount = `SELECT account_id, username, display_name, rank_points, created_at
FROM accounts WHERE account_id = ?`

func (q *Queries) GetAccount(ctx context.Context, db DBTX, accountID int64) (*Account, error) {
	row := db.QueryRowContext(ctx, getAccount, accountID)
	var i Account
	err := row.Scan(&i.AccountID, &i.Username, &i.DisplayName, &i.RankPoints, &i.CreatedAt)
	return &i, err
}

const createLeaderboard = `INSERT INTO leaderboards (name) VALUES (?)
RETURNING leaderboard_id, name, created_at`

func (q *Queries) CreateLeaderboard(ctx context.Context, db DBTX, name string) (*Leaderboard, error) {
	row := db.QueryRowContext(ctx, createLeaderboard, name)
	var i Leaderboard
	err := row.Scan(&i.LeaderboardID, &i.Name, &i.CreatedAt)
	return &i, err
}

const getLeaderboard = `SELECT leaderboard_id, name, created_at FROM leaderboards WHERE leaderboard_id = ?`

func (q *Queries) GetLeaderboard(ctx context.Context, db DBTX, leaderboardID int64) (*Leaderboard, error) {
	row := db.QueryRowContext(ctx, getLeaderboard, leaderboardID)
	var i Leaderboard
	err := row.Scan(&i.LeaderboardID, &i.Name, &i.CreatedAt)
	return &i, err
}

const upsertLeaderboardMember = `INSERT INTO leaderboard_members (leaderboard_id, account_id, points) VALUES (?, ?, ?)
ON CONFLICT (leaderboard_id, account_id) DO UPDATE SET points = excluded.points`

func (q *Queries) UpsertLeaderboardMember(ctx context.Context, db DBTX, arg *UpsertLeaderboardMemberParams) error {
	_, err := db.ExecContext(ctx, upsertLeaderboardMember, arg.LeaderboardID, arg.AccountID, arg.Points)
	return err
}

const listLeaderboardMembers = `SELECT m.account_id, a.display_name, m.points
FROM leaderboard_members m
JOIN accounts a ON a.account_id = m.account_id
WHERE m.leaderboard_id = ?
ORDER BY m.points DESC, m.rowid ASC
LIMIT ? OFFSET ?`

func (q *Queries) ListLeaderboardMembers(ctx context.Context, db DBTX, arg *ListLeaderboardMembersParams) ([]*LeaderboardMemberRow, error) {
	rows, err := db.QueryContext(ctx, listLeaderboardMembers, arg.LeaderboardID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*LeaderboardMemberRow{}
	for rows.Next() {
		var i LeaderboardMemberRow
		if err := rows.Scan(&i.AccountID, &i.DisplayName, &i.Points); err != nil {
			return nil, err
		}
		items = append(items, &i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Position counts members strictly ahead: more points, or equal points and
// an earlier insertion.
const getViewerRank = `SELECT
    (SELECT COUNT(*) FROM leaderboard_members o
     WHERE o.leaderboard_id = m.leaderboard_id
       AND (o.points > m.points OR (o.points = m.points AND o.rowid < m.rowid))) + 1 AS position,
    m.points
FROM leaderboard_members m
WHERE m.leaderboard_id = ? AND m.account_id = ?`

func (q *Queries) GetViewerRank(ctx context.Context, db DBTX, arg *GetViewerRankParams) (*ViewerRankRow, error) {
	row := db.QueryRowContext(ctx, getViewerRank, arg.LeaderboardID, arg.AccountID)
	var i ViewerRankRow
	err := row.Scan(&i.Position, &i.Points)
	return &i, err
}

const listAccountLeaderboardIDs = `SELECT leaderboard_id FROM leaderboard_members
WHERE account_id = ? ORDER BY leaderboard_id`

func (q *Queries) ListAccountLeaderboardIDs(ctx context.Context, db DBTX, accountID int64) ([]int64, error) {
	rows, err := db.QueryContext(ctx, listAccountLeaderboardIDs, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createTaunt = `INSERT INTO taunts (from_account_id, to_account_id, leaderboard_id, created_at) VALUES (?, ?, ?, ?)
RETURNING taunt_id, from_account_id, to_account_id, leaderboard_id, created_at`

func (q *Queries) CreateTaunt(ctx context.Context, db DBTX, arg *CreateTauntParams) (*Taunt, error) {
	row := db.QueryRowContext(ctx, createTaunt, arg.FromAccountID, arg.ToAccountID, arg.LeaderboardID, arg.CreatedAt)
	var i Taunt
	err := row.Scan(&i.TauntID, &i.FromAccountID, &i.ToAccountID, &i.LeaderboardID, &i.CreatedAt)
	return &i, err
}

const getLatestTaunt = `SELECT taunt_id, from_account_id, to_account_id, leaderboard_id, created_at
FROM taunts WHERE from_account_id = ? AND to_account_id = ?
ORDER BY created_at DESC, taunt_id DESC LIMIT 1`

func (q *Queries) GetLatestTaunt(ctx context.Context, db DBTX, arg *GetLatestTauntParams) (*Taunt, error) {
	row := db.QueryRowContext(ctx, getLatestTaunt, arg.FromAccountID, arg.ToAccountID)
	var i Taunt
	err := row.Scan(&i.TauntID, &i.FromAccountID, &i.ToAccountID, &i.LeaderboardID, &i.CreatedAt)
	return &i, err
}

const listReceivedTaunts = `SELECT t.taunt_id, t.from_account_id, a.display_name, t.leaderboard_id, t.created_at
FROM taunts t
JOIN accounts a ON a.account_id = t.from_account_id
WHERE t.to_account_id = ?
ORDER BY t.created_at DESC, t.taunt_id DESC`

func (q *Queries) ListReceivedTaunts(ctx context.Context, db DBTX, accountID int64) ([]*ListReceivedTauntsRow, error) {
	rows, err := db.QueryContext(ctx, listReceivedTaunts, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*ListReceivedTauntsRow{}
	for rows.Next() {
		var i ListReceivedTauntsRow
		if err := rows.Scan(&i.TauntID, &i.FromAccountID, &i.FromDisplayName, &i.LeaderboardID, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
