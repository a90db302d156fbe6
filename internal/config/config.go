package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// minSecretKeyLength はトラッキング秘密鍵の最小長。
// SHA-1ダイジェストの総当たりを困難にするため十分な長さを要求する。
const minSecretKeyLength = 32

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Tracking
	TrackingSecretKey string

	// Auth
	HtpasswdFile string
	AdminUser    string
	AuthRealm    string

	// Display
	DisplayTimezone string

	// Rate Limit
	RateLimitGeneral  int
	RateLimitMutation int

	// Server
	ServerPort      string
	ShutdownTimeout time.Duration
}

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.envがあれば先に読み込む（既存の環境変数が優先）。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	// .envはローカル開発用。存在しなくてもエラーにしない。
	_ = godotenv.Load()

	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.TrackingSecretKey = os.Getenv("TRACKING_SECRET_KEY")
	if cfg.TrackingSecretKey == "" {
		missing = append(missing, "TRACKING_SECRET_KEY")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	if len(cfg.TrackingSecretKey) < minSecretKeyLength {
		return nil, fmt.Errorf("TRACKING_SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}

	// Optional fields with defaults
	cfg.HtpasswdFile = getEnvString("HTPASSWD_FILE", "./users.htpasswd")
	cfg.AdminUser = getEnvString("ADMIN_USER", "admin")
	cfg.AuthRealm = getEnvString("AUTH_REALM", "Secret Board")
	cfg.DisplayTimezone = getEnvString("DISPLAY_TIMEZONE", "Asia/Tokyo")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitMutation = getEnvInt("RATE_LIMIT_MUTATION", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8000")
	cfg.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second)

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
