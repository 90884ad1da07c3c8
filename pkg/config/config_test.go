package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"DB_PATH", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME", "DB_CONN_MAX_IDLE_TIME",
		"SERVER_HOST", "SERVER_PORT", "SERVER_CORS_ALLOW_ORIGINS", "SERVER_RATE_LIMIT_MAX", "SERVER_RATE_LIMIT_DURATION",
		"JWT_SECRET", "JWT_ACCESS_EXPIRATION",
		"LEADERBOARD_PRIMARY_ID", "LEADERBOARD_PAGE_SIZE", "LEADERBOARD_REFRESH_INTERVAL",
		"LEADERBOARD_CELEBRATION_WINDOW", "LEADERBOARD_VIEW_MORE_WINDOW", "LEADERBOARD_SESSION_IDLE_TIMEOUT",
		"TAUNT_COOLDOWN",
	} {
		os.Unsetenv(key)
	}

	// Should fail because JWT_SECRET is required (no default)
	_, err := LoadConfig()
	if err == nil {
		t.Fatal("Expected error due to missing JWT_SECRET")
	}
	if err.Error() != "JWT_SECRET environment variable is required" {
		t.Fatalf("Unexpected error: %v", err)
	}

	t.Setenv("JWT_SECRET", "test-secret")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("Failed to load config with JWT_SECRET: %v", err)
	}

	if cfg.Database.Path != "./data.db" {
		t.Errorf("Default DB_PATH mismatch: got %s", cfg.Database.Path)
	}
	if cfg.Database.MaxOpenConns != 5 {
		t.Errorf("Default DB_MAX_OPEN_CONNS mismatch: got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Default SERVER_PORT mismatch: got %d", cfg.Server.Port)
	}
	if cfg.Server.RateLimitMax != 120 {
		t.Errorf("Default SERVER_RATE_LIMIT_MAX mismatch: got %d", cfg.Server.RateLimitMax)
	}
	if cfg.JWT.AccessExpiration != 15*time.Minute {
		t.Errorf("Default JWT_ACCESS_EXPIRATION mismatch: got %v", cfg.JWT.AccessExpiration)
	}
	if cfg.Leaderboard.PrimaryID != 1 {
		t.Errorf("Default LEADERBOARD_PRIMARY_ID mismatch: got %d", cfg.Leaderboard.PrimaryID)
	}
	if cfg.Leaderboard.PageSize != 50 {
		t.Errorf("Default LEADERBOARD_PAGE_SIZE mismatch: got %d", cfg.Leaderboard.PageSize)
	}
	if cfg.Leaderboard.RefreshInterval != 15*time.Minute {
		t.Errorf("Default LEADERBOARD_REFRESH_INTERVAL mismatch: got %v", cfg.Leaderboard.RefreshInterval)
	}
	if cfg.Leaderboard.CelebrationWindow != 2*time.Second {
		t.Errorf("Default LEADERBOARD_CELEBRATION_WINDOW mismatch: got %v", cfg.Leaderboard.CelebrationWindow)
	}
	if cfg.Leaderboard.ViewMoreWindow != 250*time.Millisecond {
		t.Errorf("Default LEADERBOARD_VIEW_MORE_WINDOW mismatch: got %v", cfg.Leaderboard.ViewMoreWindow)
	}
	if cfg.Leaderboard.SessionIdleTimeout != 30*time.Minute {
		t.Errorf("Default LEADERBOARD_SESSION_IDLE_TIMEOUT mismatch: got %v", cfg.Leaderboard.SessionIdleTimeout)
	}
	if cfg.Taunt.Cooldown != time.Hour {
		t.Errorf("Default TAUNT_COOLDOWN mismatch: got %v", cfg.Taunt.Cooldown)
	}
}

func TestLoadConfigEnvironmentOverride(t *testing.T) {
	t.Setenv("JWT_SECRET", "custom-secret")
	t.Setenv("DB_PATH", "/custom/path.db")
	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("LEADERBOARD_PRIMARY_ID", "7")
	t.Setenv("LEADERBOARD_PAGE_SIZE", "25")
	t.Setenv("LEADERBOARD_REFRESH_INTERVAL", "1m")
	t.Setenv("LEADERBOARD_CELEBRATION_WINDOW", "5s")
	t.Setenv("TAUNT_COOLDOWN", "10m")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("DB_PATH override mismatch: got %s", cfg.Database.Path)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("SERVER_PORT override mismatch: got %d", cfg.Server.Port)
	}
	if cfg.JWT.Secret != "custom-secret" {
		t.Errorf("JWT_SECRET override mismatch: got %s", cfg.JWT.Secret)
	}
	if cfg.Leaderboard.PrimaryID != 7 {
		t.Errorf("LEADERBOARD_PRIMARY_ID override mismatch: got %d", cfg.Leaderboard.PrimaryID)
	}
	if cfg.Leaderboard.PageSize != 25 {
		t.Errorf("LEADERBOARD_PAGE_SIZE override mismatch: got %d", cfg.Leaderboard.PageSize)
	}
	if cfg.Leaderboard.RefreshInterval != time.Minute {
		t.Errorf("LEADERBOARD_REFRESH_INTERVAL override mismatch: got %v", cfg.Leaderboard.RefreshInterval)
	}
	if cfg.Leaderboard.CelebrationWindow != 5*time.Second {
		t.Errorf("LEADERBOARD_CELEBRATION_WINDOW override mismatch: got %v", cfg.Leaderboard.CelebrationWindow)
	}
	if cfg.Taunt.Cooldown != 10*time.Minute {
		t.Errorf("TAUNT_COOLDOWN override mismatch: got %v", cfg.Taunt.Cooldown)
	}
}

func TestLoadConfigInvalidPageSize(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("LEADERBOARD_PAGE_SIZE", "0")

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("Expected error for non-positive page size")
	}
}

func TestLoadConfigRejectsNonPositiveDurations(t *testing.T) {
	for _, env := range []string{
		"LEADERBOARD_REFRESH_INTERVAL",
		"LEADERBOARD_CELEBRATION_WINDOW",
		"LEADERBOARD_VIEW_MORE_WINDOW",
		"LEADERBOARD_SESSION_IDLE_TIMEOUT",
	} {
		for _, value := range []string{"0s", "-1m"} {
			t.Run(env+"="+value, func(t *testing.T) {
				t.Setenv("JWT_SECRET", "secret")
				t.Setenv(env, value)

				_, err := LoadConfig()
				if err == nil {
					t.Fatalf("Expected error for %s=%s", env, value)
				}
				if err.Error() != env+" must be a positive duration" {
					t.Errorf("Unexpected error: %v", err)
				}
			})
		}
	}
}
