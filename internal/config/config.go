package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var AppEnv Config

type Config struct {
	Port   string
	AppEnv string

	MongoURI          string
	DBName            string
	MongoTransactions bool

	JWTSecret        string
	JWTRefreshSecret string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	EmailTokenTTL    time.Duration
	BaseURL          string
	GoogleClientIDs  []string

	SSLCommerzStoreID     string
	SSLCommerzStorePasswd string
	SSLCommerzBaseURL     string

	EmailHost string
	EmailPort string
	EmailUser string
	EmailPass string
	EmailFrom string

	PushProvider        string
	ExpoPushURL         string
	FirebaseCredentials string
	PushRetrySchedule   string
	PushMaxAttempts     int

	RedisAddr      string
	RedisPassword  string
	ReportCacheTTL time.Duration
}

// Load reads .env (when present) and the process environment into AppEnv.
func Load() {
	if err := godotenv.Load(); err != nil {
		zap.L().Info(".env not loaded", zap.Error(err))
	}
	AppEnv = FromEnv()
}

func FromEnv() Config {
	return Config{
		Port:   getEnvOrDefault("PORT", "3001"),
		AppEnv: getEnvOrDefault("APP_ENV", "production"),

		MongoURI:          getEnvOrDefault("MONGO_URI", ""),
		DBName:            getEnvOrDefault("DB_NAME", "repair"),
		MongoTransactions: getBoolEnv("MONGO_TRANSACTIONS", false),

		JWTSecret:        getEnvOrDefault("JWT_PRIVATE_KEY", ""),
		JWTRefreshSecret: getEnvOrDefault("JWT_REFRESH_PRIVATE_KEY", ""),
		AccessTokenTTL:   getDurationEnv("JWT_EXPIRATION_TIME", time.Hour),
		RefreshTokenTTL:  getDurationEnv("JWT_REFRESH_TOKEN_EXPIRATION_TIME", 30*24*time.Hour),
		EmailTokenTTL:    getDurationEnv("EMAIL_TOKEN_EXPIRATION_TIME", 20*time.Minute),
		BaseURL:          strings.TrimRight(getEnvOrDefault("URL", "http://localhost:3001"), "/"),
		GoogleClientIDs:  getListEnv("GOOGLE_CLIENT_IDS"),

		SSLCommerzStoreID:     getEnvOrDefault("SSLCOMMERZ_STORE_ID", ""),
		SSLCommerzStorePasswd: getEnvOrDefault("SSLCOMMERZ_STORE_PASSWD", ""),
		SSLCommerzBaseURL:     strings.TrimRight(getEnvOrDefault("SSLCOMMERZ_BASE_URL", "https://sandbox.sslcommerz.com"), "/"),

		EmailHost: getEnvOrDefault("EMAIL_HOST", ""),
		EmailPort: getEnvOrDefault("EMAIL_PORT", "465"),
		EmailUser: getEnvOrDefault("EMAIL_USER", ""),
		EmailPass: getEnvOrDefault("EMAIL_PASS", ""),
		EmailFrom: getEnvOrDefault("EMAIL_FROM", getEnvOrDefault("EMAIL_USER", "")),

		PushProvider:        strings.ToLower(getEnvOrDefault("PUSH_PROVIDER", "expo")),
		ExpoPushURL:         getEnvOrDefault("EXPO_PUSH_URL", "https://exp.host/--/api/v2/push/send"),
		FirebaseCredentials: getEnvOrDefault("FIREBASE_CREDENTIALS", ""),
		PushRetrySchedule:   getEnvOrDefault("PUSH_RETRY_SCHEDULE", "@every 1m"),
		PushMaxAttempts:     getIntEnv("PUSH_MAX_ATTEMPTS", 5),

		RedisAddr:      getEnvOrDefault("REDIS_ADDR", ""),
		RedisPassword:  getEnvOrDefault("REDIS_PASSWORD", ""),
		ReportCacheTTL: getDurationEnv("REPORT_CACHE_TTL", 30*time.Second),
	}
}

// Validate reports the first missing setting the process cannot start without.
func (c Config) Validate() error {
	required := []struct {
		key, value string
	}{
		{"JWT_PRIVATE_KEY", c.JWTSecret},
		{"JWT_REFRESH_PRIVATE_KEY", c.JWTRefreshSecret},
		{"MONGO_URI", c.MongoURI},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("FATAL ERROR: %s is not defined", r.key)
		}
	}
	if c.JWTSecret == c.JWTRefreshSecret {
		return fmt.Errorf("FATAL ERROR: JWT_REFRESH_PRIVATE_KEY must differ from JWT_PRIVATE_KEY")
	}
	switch c.PushProvider {
	case "expo":
	case "firebase":
		if c.FirebaseCredentials == "" {
			return fmt.Errorf("FATAL ERROR: FIREBASE_CREDENTIALS is required when PUSH_PROVIDER=firebase")
		}
	default:
		return fmt.Errorf("FATAL ERROR: unknown PUSH_PROVIDER %q", c.PushProvider)
	}
	return nil
}

func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv accepts Go durations ("15m") and the bare-seconds form ("3600").
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
		return parsed
	}
	if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
		return time.Duration(parsed) * time.Second
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
