package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string
	Env  string

	AppBaseURL string // where completed logins redirect
	APIBaseURL string // externally visible API base, used for the OAuth callback

	DatabaseFile  string
	PrivateKeyB58 string

	ProviderName       string
	OAuthClientID      string
	OAuthClientSecret  string
	OAuthAuthURL       string
	OAuthTokenURL      string
	OAuthUserInfoURL   string
	OAuthIDField       string
	OAuthUsernameField string

	AuthTimeout time.Duration // pending-auth cache TTL
	SessionTTL  time.Duration
	AdminTTL    time.Duration

	MaxAuthAttempts int // pending-auth cache capacity
	MaxSessions     int
	MaxAdminTokens  int

	TokenLengthBytes  int
	IDLengthBytes     int
	TemplateCacheSize int

	BackupDir          string
	BackupTmpDir       string
	BackupInterval     time.Duration
	BackupOnBatchClose bool
}

func Load() Config {
	cfg := Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		AppBaseURL: getEnv("APP_BASE_URL", "http://localhost:5000"),
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),

		DatabaseFile:  getEnv("DATABASE_FILE", "thingbox.db"),
		PrivateKeyB58: os.Getenv("PRIVATE_KEY_B58"),

		ProviderName:       getEnv("OAUTH_PROVIDER", "twitter"),
		OAuthClientID:      os.Getenv("OAUTH_CLIENT_ID"),
		OAuthClientSecret:  os.Getenv("OAUTH_CLIENT_SECRET"),
		OAuthAuthURL:       os.Getenv("OAUTH_AUTH_URL"),
		OAuthTokenURL:      os.Getenv("OAUTH_TOKEN_URL"),
		OAuthUserInfoURL:   os.Getenv("OAUTH_USERINFO_URL"),
		OAuthIDField:       getEnv("OAUTH_ID_FIELD", "id"),
		OAuthUsernameField: getEnv("OAUTH_USERNAME_FIELD", "username"),

		AuthTimeout: getEnvDuration("AUTH_TIMEOUT", 303*time.Second),
		SessionTTL:  getEnvDuration("SESSION_TTL", time.Hour),
		AdminTTL:    getEnvDuration("ADMIN_TTL", 15*time.Minute),

		MaxAuthAttempts: getEnvInt("MAX_CONCURRENT_AUTH_ATTEMPTS", 8192),
		MaxSessions:     getEnvInt("MAX_CONCURRENT_SESSIONS", 65536),
		MaxAdminTokens:  getEnvInt("MAX_ADMIN_TOKENS", 32),

		TokenLengthBytes:  getEnvInt("TOKEN_LENGTH_BYTES", 32),
		IDLengthBytes:     getEnvInt("ID_LENGTH_BYTES", 16),
		TemplateCacheSize: getEnvInt("TEMPLATE_CACHE_SIZE", 256),

		BackupDir:          os.Getenv("BACKUP_DIR"),
		BackupTmpDir:       os.Getenv("BACKUP_TMP_DIR"),
		BackupInterval:     getEnvDuration("BACKUP_INTERVAL", 0),
		BackupOnBatchClose: getEnvBool("BACKUP_ON_BATCH_CLOSE", false),
	}

	if cfg.PrivateKeyB58 == "" {
		slog.Error("PRIVATE_KEY_B58 must be set")
		os.Exit(1)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", v)
		return fallback
	}
	return n
}

// getEnvDuration accepts Go duration strings ("90s", "1h") and, for
// compatibility with the original deployment files, bare integer seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", v)
		return fallback
	}
	return d
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid boolean in environment, using default", "key", key, "value", v)
		return fallback
	}
	return b
}
