package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Database    DatabaseConfig
	Server      ServerConfig
	JWT         JWTConfig
	Leaderboard LeaderboardConfig
	Taunt       TauntConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host              string
	Port              int
	CORSAllowOrigins  string
	RateLimitMax      int
	RateLimitDuration time.Duration
}

// JWTConfig holds JWT token generation and validation settings.
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

// LeaderboardConfig holds the sync engine settings for leaderboard sessions.
type LeaderboardConfig struct {
	PrimaryID          int64
	PageSize           int
	RefreshInterval    time.Duration
	CelebrationWindow  time.Duration
	ViewMoreWindow     time.Duration
	SessionIdleTimeout time.Duration
}

// TauntConfig holds taunt delivery settings.
type TauntConfig struct {
	Cooldown time.Duration
}

// LoadConfig loads configuration from environment variables and defaults.
// Environment variables should be uppercase with underscores, e.g., DB_PATH.
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)
	bindEnv(v)
	v.AutomaticEnv()

	if err := validateRequired(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Path:            v.GetString("db_path"),
			MaxOpenConns:    v.GetInt("db_max_open_conns"),
			MaxIdleConns:    v.GetInt("db_max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("db_conn_max_lifetime"),
			ConnMaxIdleTime: v.GetDuration("db_conn_max_idle_time"),
		},
		Server: ServerConfig{
			Host:              v.GetString("server_host"),
			Port:              v.GetInt("server_port"),
			CORSAllowOrigins:  v.GetString("server_cors_allow_origins"),
			RateLimitMax:      v.GetInt("server_rate_limit_max"),
			RateLimitDuration: v.GetDuration("server_rate_limit_duration"),
		},
		JWT: JWTConfig{
			Secret:           v.GetString("jwt_secret"),
			AccessExpiration: v.GetDuration("jwt_access_expiration"),
		},
		Leaderboard: LeaderboardConfig{
			PrimaryID:          v.GetInt64("leaderboard_primary_id"),
			PageSize:           v.GetInt("leaderboard_page_size"),
			RefreshInterval:    v.GetDuration("leaderboard_refresh_interval"),
			CelebrationWindow:  v.GetDuration("leaderboard_celebration_window"),
			ViewMoreWindow:     v.GetDuration("leaderboard_view_more_window"),
			SessionIdleTimeout: v.GetDuration("leaderboard_session_idle_timeout"),
		},
		Taunt: TauntConfig{
			Cooldown: v.GetDuration("taunt_cooldown"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("db_path", "./data.db")
	v.SetDefault("db_max_open_conns", 5)
	v.SetDefault("db_max_idle_conns", 2)
	v.SetDefault("db_conn_max_lifetime", 5*time.Minute)
	v.SetDefault("db_conn_max_idle_time", 2*time.Minute)

	// Server defaults
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", 8080)
	v.SetDefault("server_cors_allow_origins", "*")
	v.SetDefault("server_rate_limit_max", 120)
	v.SetDefault("server_rate_limit_duration", time.Minute)

	// JWT defaults
	v.SetDefault("jwt_access_expiration", 15*time.Minute)

	// Leaderboard defaults
	v.SetDefault("leaderboard_primary_id", 1)
	v.SetDefault("leaderboard_page_size", 50)
	v.SetDefault("leaderboard_refresh_interval", 15*time.Minute)
	v.SetDefault("leaderboard_celebration_window", 2*time.Second)
	v.SetDefault("leaderboard_view_more_window", 250*time.Millisecond)
	v.SetDefault("leaderboard_session_idle_timeout", 30*time.Minute)

	// Taunt defaults
	v.SetDefault("taunt_cooldown", time.Hour)
}

func bindEnv(v *viper.Viper) {
	// Database
	_ = v.BindEnv("db_path", "DB_PATH")
	_ = v.BindEnv("db_max_open_conns", "DB_MAX_OPEN_CONNS")
	_ = v.BindEnv("db_max_idle_conns", "DB_MAX_IDLE_CONNS")
	_ = v.BindEnv("db_conn_max_lifetime", "DB_CONN_MAX_LIFETIME")
	_ = v.BindEnv("db_conn_max_idle_time", "DB_CONN_MAX_IDLE_TIME")

	// Server
	_ = v.BindEnv("server_host", "SERVER_HOST")
	_ = v.BindEnv("server_port", "SERVER_PORT")
	_ = v.BindEnv("server_cors_allow_origins", "SERVER_CORS_ALLOW_ORIGINS")
	_ = v.BindEnv("server_rate_limit_max", "SERVER_RATE_LIMIT_MAX")
	_ = v.BindEnv("server_rate_limit_duration", "SERVER_RATE_LIMIT_DURATION")

	// JWT
	_ = v.BindEnv("jwt_secret", "JWT_SECRET")
	_ = v.BindEnv("jwt_access_expiration", "JWT_ACCESS_EXPIRATION")

	// Leaderboard
	_ = v.BindEnv("leaderboard_primary_id", "LEADERBOARD_PRIMARY_ID")
	_ = v.BindEnv("leaderboard_page_size", "LEADERBOARD_PAGE_SIZE")
	_ = v.BindEnv("leaderboard_refresh_interval", "LEADERBOARD_REFRESH_INTERVAL")
	_ = v.BindEnv("leaderboard_celebration_window", "LEADERBOARD_CELEBRATION_WINDOW")
	_ = v.BindEnv("leaderboard_view_more_window", "LEADERBOARD_VIEW_MORE_WINDOW")
	_ = v.BindEnv("leaderboard_session_idle_timeout", "LEADERBOARD_SESSION_IDLE_TIMEOUT")

	// Taunt
	_ = v.BindEnv("taunt_cooldown", "TAUNT_COOLDOWN")
}

func validateRequired(v *viper.Viper) error {
	if v.GetString("jwt_secret") == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if v.GetInt("leaderboard_page_size") <= 0 {
		return fmt.Errorf("LEADERBOARD_PAGE_SIZE must be positive")
	}
	for _, d := range []struct{ key, env string }{
		{"leaderboard_refresh_interval", "LEADERBOARD_REFRESH_INTERVAL"},
		{"leaderboard_celebration_window", "LEADERBOARD_CELEBRATION_WINDOW"},
		{"leaderboard_view_more_window", "LEADERBOARD_VIEW_MORE_WINDOW"},
		{"leaderboard_session_idle_timeout", "LEADERBOARD_SESSION_IDLE_TIMEOUT"},
	} {
		if v.GetDuration(d.key) <= 0 {
			return fmt.Errorf("%s must be a positive duration", d.env)
		}
	}
	return nil
}
