package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
)

// Identity providers accepted by AUTH_PROVIDER. An empty value selects
// shared-secret mode.
const (
	ProviderNone     = ""
	ProviderSupabase = "supabase"
	ProviderFirebase = "firebase"
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Snapshot  SnapshotConfig
	App       AppConfig
}

type ServerConfig struct {
	Port      string
	StaticDir string
}

type StorageConfig struct {
	Backend      string
	ProjectsFile string
	SQLitePath   string
}

type DatabaseConfig struct {
	DSN          string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	MaxOpenConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	Provider string

	SupabaseURL            string
	SupabaseAnonKey        string
	SupabaseServiceRoleKey string
	SupabaseJWTSecret      string

	FirebaseCredentialsPath string

	// AdminEmail narrows the provider role check to one identity.
	AdminEmail string

	// AdminToken is the shared secret. Empty means one is generated at startup.
	AdminToken    string
	AdminUsername string
	AdminPassword string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	Max    int
	Window time.Duration
}

// SnapshotConfig controls periodic JSON exports of the project collection.
// An empty Schedule disables them.
type SnapshotConfig struct {
	Schedule string
	Dir      string
	Keep     int
}

type AppConfig struct {
	Name        string
	Environment string
	LogLevel    string
	Version     string

	// DotEnvLoaded is false when no .env file was read.
	DotEnvLoaded bool
}

func (a AppConfig) IsProduction() bool  { return a.Environment == "production" }
func (a AppConfig) IsDevelopment() bool { return a.Environment == "development" }

var devOrigins = []string{
	"http://localhost:3001",
	"http://127.0.0.1:5500",
	"http://localhost:5500",
	"http://localhost:3000",
}

func Load() (*Config, error) {
	// Load .env file if it exists; logging is not set up yet, so the caller
	// reports a missing file from App.DotEnvLoaded.
	dotEnvErr := godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:      getEnv("PORT", "3001"),
			StaticDir: getEnv("STATIC_DIR", ""),
		},
		Storage: StorageConfig{
			Backend:      strings.ToLower(getEnv("STORAGE_BACKEND", "")),
			ProjectsFile: getEnv("PROJECTS_FILE", "data/projects.json"),
			SQLitePath:   getEnv("SQLITE_PATH", "data/projects.db"),
		},
		Database: DatabaseConfig{
			DSN:          getEnv("DB_DSN", getEnv("DATABASE_URL", "")),
			Host:         getEnv("DB_HOST", ""),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Name:         getEnv("DB_NAME", "portfolio"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			Provider:                strings.ToLower(getEnv("AUTH_PROVIDER", "")),
			SupabaseURL:             strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
			SupabaseAnonKey:         getEnv("SUPABASE_ANON_KEY", ""),
			SupabaseServiceRoleKey:  getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
			SupabaseJWTSecret:       getEnv("SUPABASE_JWT_SECRET", ""),
			FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			AdminEmail:              getEnv("ADMIN_EMAIL", ""),
			AdminToken:              getEnv("ADMIN_TOKEN", ""),
			AdminUsername:           getEnv("ADMIN_USERNAME", ""),
			AdminPassword:           getEnv("ADMIN_PASSWORD", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ORIGINS"),
		},
		RateLimit: RateLimitConfig{
			Max:    getEnvAsInt("RATE_LIMIT_MAX", 100),
			Window: getEnvAsDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		},
		Snapshot: SnapshotConfig{
			Schedule: getEnv("SNAPSHOT_SCHEDULE", ""),
			Dir:      getEnv("SNAPSHOT_DIR", "data/snapshots"),
			Keep:     getEnvAsInt("SNAPSHOT_KEEP", 7),
		},
		App: AppConfig{
			Name:         getEnv("SERVICE_NAME", "portfolio-backend"),
			Environment:  getEnv("APP_ENV", "development"),
			LogLevel:     getEnv("LOG_LEVEL", "info"),
			Version:      getEnv("APP_VERSION", "1.0.0"),
			DotEnvLoaded: dotEnvErr == nil,
		},
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults infers the storage backend and identity provider from which
// credentials are present when they were not named explicitly.
func (c *Config) applyDefaults() {
	if c.Storage.Backend == "" {
		if c.Database.DSN != "" || c.Database.Host != "" {
			c.Storage.Backend = BackendPostgres
		} else {
			c.Storage.Backend = BackendFile
		}
	}
	if c.Auth.Provider == ProviderNone && c.Auth.SupabaseURL != "" {
		c.Auth.Provider = ProviderSupabase
	}
	if len(c.CORS.AllowedOrigins) == 0 && !c.App.IsProduction() {
		c.CORS.AllowedOrigins = append([]string(nil), devOrigins...)
	}
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Storage.Backend {
	case BackendFile:
		if c.Storage.ProjectsFile == "" {
			return fmt.Errorf("PROJECTS_FILE is required for file storage")
		}
	case BackendPostgres:
		if c.Database.DSN == "" && c.Database.Host == "" {
			return fmt.Errorf("DB_DSN or DB_HOST is required for postgres storage")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required for redis storage")
		}
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for sqlite storage")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}

	switch c.Auth.Provider {
	case ProviderNone:
	case ProviderSupabase:
		if c.Auth.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL is required for supabase auth")
		}
		if c.Auth.SupabaseJWTSecret == "" && c.Auth.SupabaseAnonKey == "" {
			return fmt.Errorf("SUPABASE_ANON_KEY or SUPABASE_JWT_SECRET is required for supabase auth")
		}
	case ProviderFirebase:
		if c.Auth.FirebaseCredentialsPath == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required for firebase auth")
		}
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER %q", c.Auth.Provider)
	}

	if c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive")
	}

	if c.Snapshot.Schedule != "" && c.Snapshot.Dir == "" {
		return fmt.Errorf("SNAPSHOT_DIR is required when SNAPSHOT_SCHEDULE is set")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Int("default", defaultValue).Msg("invalid integer, using default")
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Dur("default", defaultValue).Msg("invalid duration, using default")
		return defaultValue
	}

	return value
}

func getEnvAsList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
