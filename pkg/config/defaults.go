// Package config provides centralized default values for the site API
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

// getEnvSecret reads a credential without echoing it to the log
func getEnvSecret(key string) string {
	return os.Getenv(key)
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultValue
	}
	return SplitList(valStr)
}

// SplitList splits a comma separated value, dropping empty items
func SplitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	WebRoot            string

	// Origins
	SiteURL        string
	AllowedOrigins []string

	// Client identity
	TrustProxyHeaders bool

	// CSRF
	CSRFTokenTTL  time.Duration
	CSRFSingleUse bool

	// Rate limiting
	RateLimitMax    int
	RateLimitWindow time.Duration

	// Request guards
	MaxBodyChars        int
	MaxBodyBytes        int64
	MinUserAgentLength  int
	SanitizeMaxChars    int
	NotificationTimeout time.Duration

	// Keyed store
	StoreBackend       string
	RedisURL           string
	SQLitePath         string
	TursoDatabaseURL   string
	TursoAuthToken     string
	StoreSweepInterval time.Duration

	// Database Pool
	DBMaxOpenConns int
	DBMaxIdleConns int

	// Email
	EmailProvider string
	EmailHost     string
	EmailPort     int
	EmailUser     string
	EmailPass     string
	EmailFrom     string
	EmailTo       []string
	ResendAPIKey  string
	EmailTimezone string

	// Logging
	LogLevel   string
	LogJSON    bool
	LogToFile  bool
	LogDir     string
	GinRelease bool
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)
	WebRoot = getEnvString("WEB_ROOT", "")

	// Origins
	SiteURL = getEnvString("SITE_URL", getEnvString("NEXT_PUBLIC_SITE_URL", "http://localhost:3000"))
	AllowedOrigins = append([]string{SiteURL}, getEnvList("ALLOWED_ORIGINS", []string{
		"https://cosmetics.info",
		"https://www.cosmetics.info",
	})...)

	// Client identity
	TrustProxyHeaders = getEnvBool("TRUST_PROXY_HEADERS", false)

	// CSRF
	CSRFTokenTTL = getEnvDuration("CSRF_TOKEN_TTL", 15*time.Minute)
	CSRFSingleUse = getEnvBool("CSRF_SINGLE_USE", false)

	// Rate limiting
	RateLimitMax = getEnvInt("RATE_LIMIT_MAX", 5)
	RateLimitWindow = getEnvDuration("RATE_LIMIT_WINDOW", 15*time.Minute)

	// Request guards
	MaxBodyChars = getEnvInt("MAX_BODY_CHARS", 50000)
	MaxBodyBytes = int64(getEnvInt("MAX_BODY_BYTES", 1<<20))
	MinUserAgentLength = getEnvInt("MIN_USER_AGENT_LENGTH", 10)
	SanitizeMaxChars = getEnvInt("SANITIZE_MAX_CHARS", 10000)
	NotificationTimeout = getEnvDuration("NOTIFY_TIMEOUT", 10*time.Second)

	// Keyed store
	StoreBackend = strings.ToLower(getEnvString("STORE_BACKEND", "memory"))
	RedisURL = getEnvString("REDIS_URL", "redis://localhost:6379/0")
	SQLitePath = getEnvString("SQLITE_PATH", "data/yourcosmetics.db")
	TursoDatabaseURL = getEnvString("TURSO_DATABASE_URL", "")
	TursoAuthToken = getEnvSecret("TURSO_AUTH_TOKEN")
	StoreSweepInterval = getEnvDuration("STORE_SWEEP_INTERVAL", 5*time.Minute)

	// Database Pool
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)

	// Email
	EmailProvider = strings.ToLower(getEnvString("EMAIL_PROVIDER", "smtp"))
	EmailHost = getEnvString("EMAIL_HOST", "smtp.yandex.ru")
	EmailPort = getEnvInt("EMAIL_PORT", 465)
	EmailUser = getEnvString("EMAIL_USER", "")
	EmailPass = getEnvSecret("EMAIL_PASS")
	EmailFrom = getEnvString("EMAIL_FROM", EmailUser)
	EmailTo = getEnvList("EMAIL_TO", SplitList(EmailUser))
	ResendAPIKey = getEnvSecret("RESEND_API_KEY")
	EmailTimezone = getEnvString("EMAIL_TIMEZONE", "Europe/Moscow")

	// Logging
	LogLevel = getEnvString("LOG_LEVEL", "info")
	LogJSON = getEnvBool("LOG_JSON", true)
	LogToFile = getEnvBool("LOG_TO_FILE", false)
	LogDir = getEnvString("LOG_DIR", "logs")
	GinRelease = os.Getenv("GIN_MODE") == "release"
}
