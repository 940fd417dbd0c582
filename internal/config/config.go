package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendFirebase = "firebase"
	BackendMongo    = "mongo"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

type Config struct {
	Environment string // ENV: production, development, etc.
	Port        string
	LogLevel    string

	// Sessions
	RedisURI     string // empty keeps sessions in process memory
	SessionTTL   time.Duration
	CookieSecure bool

	// Document store
	StoreBackend        string // firebase, mongo or memory
	FirebaseDatabaseURL string
	MongoURI            string
	MongoDatabase       string

	// Identity gateway
	IdentityBackend string // firebase or postgres
	FirebaseAPIKey  string
	PostgresURI     string
	JWTSecret       string
	TokenTTL        time.Duration

	QuoteTimeout   time.Duration
	AllowedOrigins []string
	AllowedHost    string // bare hostname; empty disables the host check

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:" + getEnv("PORT", "5000")}
	}

	return &Config{
		Environment:         env,
		Port:                getEnv("PORT", "5000"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		RedisURI:            getEnv("REDIS_URI", ""),
		SessionTTL:          getDurationEnv("SESSION_TTL", 7*24*time.Hour),
		CookieSecure:        getBoolEnv("COOKIE_SECURE", env == "production"),
		StoreBackend:        strings.ToLower(getEnv("STORE_BACKEND", BackendFirebase)),
		FirebaseDatabaseURL: getEnv("FIREBASE_DATABASE_URL", ""),
		MongoURI:            getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/journal")),
		MongoDatabase:       getEnv("MONGODB_DATABASE", ""),
		IdentityBackend:     strings.ToLower(getEnv("IDENTITY_BACKEND", BackendFirebase)),
		FirebaseAPIKey:      getEnv("FIREBASE_API_KEY", ""),
		PostgresURI:         getEnv("POSTGRES_URI", "postgres://localhost:5432/journal?sslmode=disable"),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		TokenTTL:            getDurationEnv("TOKEN_TTL", time.Hour),
		QuoteTimeout:        getDurationEnv("QUOTE_TIMEOUT", 5*time.Second),
		AllowedOrigins:      allowedOrigins,
		AllowedHost:         getEnv("ALLOWED_HOST", ""),
		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
	}
}

// Validate rejects backend combinations that cannot start.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendFirebase:
		if c.FirebaseDatabaseURL == "" {
			return errors.New("FIREBASE_DATABASE_URL is required when STORE_BACKEND=firebase")
		}
	case BackendMongo:
		if c.MongoURI == "" {
			return errors.New("MONGODB_URI is required when STORE_BACKEND=mongo")
		}
	case BackendMemory:
		if c.IsProduction() {
			return errors.New("STORE_BACKEND=memory is not allowed in production")
		}
	default:
		return errors.New("STORE_BACKEND must be one of: firebase, mongo, memory")
	}

	switch c.IdentityBackend {
	case BackendFirebase:
		if c.FirebaseAPIKey == "" {
			return errors.New("FIREBASE_API_KEY is required when IDENTITY_BACKEND=firebase")
		}
	case BackendPostgres:
		if c.PostgresURI == "" {
			return errors.New("POSTGRES_URI is required when IDENTITY_BACKEND=postgres")
		}
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is required when IDENTITY_BACKEND=postgres")
		}
	default:
		return errors.New("IDENTITY_BACKEND must be one of: firebase, postgres")
	}

	// Only self-issued tokens can be checked by the mongo and memory stores.
	if c.StoreBackend != BackendFirebase && c.IdentityBackend != BackendPostgres {
		return errors.New("STORE_BACKEND=" + c.StoreBackend + " requires IDENTITY_BACKEND=postgres")
	}

	if c.QuoteTimeout <= 0 {
		return errors.New("QUOTE_TIMEOUT must be positive")
	}
	return nil
}

// CloudinaryEnabled reports whether all Cloudinary credentials are present.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" && !containsOrigin(out, part) {
			out = append(out, part)
		}
	}
	return out
}

func containsOrigin(list []string, o string) bool {
	o = strings.TrimSpace(strings.ToLower(o))
	for _, v := range list {
		if strings.TrimSpace(strings.ToLower(v)) == o {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
