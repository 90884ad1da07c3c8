package testutils

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"social-leaderboard/backend-api/internal/db"
	"social-leaderboard/backend-api/internal/services/auth"
	"social-leaderboard/backend-api/pkg/config"

	"go.uber.org/zap/zaptest"
)

// PrimaryLeaderboardID is the leaderboard seeded by the migrations.
const PrimaryLeaderboardID int64 = 1

func GetTestConfig() config.Config {
	return config.Config{
		Database: config.DatabaseConfig{
			Path: ":memory:",
		},
		Server: config.ServerConfig{
			Host:              "localhost",
			Port:              8080,
			CORSAllowOrigins:  "*",
			RateLimitMax:      1000,
			RateLimitDuration: time.Minute,
		},
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			AccessExpiration: 15 * time.Minute,
		},
		Leaderboard: config.LeaderboardConfig{
			PrimaryID:          PrimaryLeaderboardID,
			PageSize:           50,
			RefreshInterval:    time.Hour,
			CelebrationWindow:  2 * time.Second,
			ViewMoreWindow:     250 * time.Millisecond,
			SessionIdleTimeout: time.Hour,
		},
		Taunt: config.TauntConfig{
			Cooldown: time.Hour,
		},
	}
}

// SetupTestDB opens a migrated in-memory database that is closed when the
// test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.OpenInMemory()
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := db.RunMigrationsQuiet(conn); err != nil {
		conn.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func CreateTestAccount(t *testing.T, conn *sql.DB, username string, rankPoints int64) int64 {
	t.Helper()
	acc, err := db.New().CreateAccount(context.Background(), conn, &db.CreateAccountParams{
		Username:    username,
		DisplayName: username,
		RankPoints:  rankPoints,
	})
	if err != nil {
		t.Fatalf("Failed to create account %s: %v", username, err)
	}
	return acc.AccountID
}

func CreateTestLeaderboard(t *testing.T, conn *sql.DB, name string) int64 {
	t.Helper()
	lb, err := db.New().CreateLeaderboard(context.Background(), conn, name)
	if err != nil {
		t.Fatalf("Failed to create leaderboard %s: %v", name, err)
	}
	return lb.LeaderboardID
}

// AddTestMember inserts or updates a membership. Members keep their first
// insertion order for ties.
func AddTestMember(t *testing.T, conn *sql.DB, leaderboardID, accountID, points int64) {
	t.Helper()
	err := db.New().UpsertLeaderboardMember(context.Background(), conn, &db.UpsertLeaderboardMemberParams{
		LeaderboardID: leaderboardID,
		AccountID:     accountID,
		Points:        points,
	})
	if err != nil {
		t.Fatalf("Failed to add member %d to leaderboard %d: %v", accountID, leaderboardID, err)
	}
}

func CreateTestAccessToken(t *testing.T, cfg config.Config, accountID int64) string {
	t.Helper()
	authSvc := auth.NewAuthService(cfg, zaptest.NewLogger(t))
	token, err := authSvc.GenerateAccessToken(accountID)
	if err != nil {
		t.Fatalf("Failed to generate access token: %v", err)
	}
	return token
}
