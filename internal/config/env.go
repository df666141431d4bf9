package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string
	GinMode string

	DatabaseDSN string

	JWTSecret          string
	JWTExpiresIn       time.Duration
	JWTCookieName      string
	JWTCookieExpiresIn time.Duration
	CookieSecure       bool
	BcryptCost         int

	PageLimitDefault int
	PageLimitMax     int

	CORSAllowedOrigins []string

	LogLevel string
	LogDev   bool
	LogFile  string
}

// LoadEnv reads configuration from the process environment. A .env file in
// the working directory is loaded first when present; real environment
// variables take precedence over it.
func LoadEnv() Env {
	_ = godotenv.Load()

	return Env{
		AppAddr:            envString("APP_ADDR", ":8080"),
		GinMode:            envString("GIN_MODE", ""),
		DatabaseDSN:        envString("DB_DSN", "root:@tcp(127.0.0.1:3306)/natours"),
		JWTSecret:          envString("JWT_SECRET", ""),
		JWTExpiresIn:       envDuration("JWT_EXPIRES_IN", 90*24*time.Hour),
		JWTCookieName:      envString("JWT_COOKIE_NAME", "jwt"),
		JWTCookieExpiresIn: time.Duration(envInt("JWT_COOKIE_EXPIRES_IN", 90)) * 24 * time.Hour,
		CookieSecure:       envBool("COOKIE_SECURE", false),
		BcryptCost:         envInt("BCRYPT_COST", 12),
		PageLimitDefault:   envInt("PAGE_LIMIT_DEFAULT", 100),
		PageLimitMax:       envInt("PAGE_LIMIT_MAX", 1000),
		CORSAllowedOrigins: envList("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		}),
		LogLevel: envString("LOG_LEVEL", ""),
		LogDev:   envBool("LOG_DEV", false),
		LogFile:  envString("LOG_FILE", ""),
	}
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// envDuration accepts Go durations ("72h") and whole days ("90d").
func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if days, ok := strings.CutSuffix(v, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return def
		}
		return time.Duration(n) * 24 * time.Hour
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func envList(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	out := []string{}
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
