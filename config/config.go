package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers understood by OpenDatabase and the store package.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

// Refresh-token backends.
const (
	TokenStoreDefault = "store"
	TokenStoreRedis   = "redis"
)

// AppConfig holds environment driven configuration values.
// Secrets never have defaults inside code and must be provided via the config file or the environment.
type AppConfig struct {
	AppPort        string
	AllowedOrigins []string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Token signing
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	// Document store
	StoreDriver   string
	DatabaseURI   string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	SQLitePath    string
	MongoURI      string
	MongoDatabase string
	// Refresh-token index; "store" keeps tokens next to users, "redis" moves them to Redis
	TokenStore    string
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// fileConfig mirrors the grouped layout of config/config.json.
type fileConfig struct {
	App struct {
		AppPort        string   `json:"AppPort"`
		AllowedOrigins []string `json:"AllowedOrigins"`
		GinMode        string   `json:"GinMode"`
		GinPath        string   `json:"GinPath"`
	} `json:"app"`
	Auth struct {
		AccessTokenSecret  string `json:"AccessTokenSecret"`
		RefreshTokenSecret string `json:"RefreshTokenSecret"`
		AccessTokenTTL     string `json:"AccessTokenTTL"`
		RefreshTokenTTL    string `json:"RefreshTokenTTL"`
	} `json:"auth"`
	Store struct {
		Driver        string `json:"Driver"`
		DatabaseURI   string `json:"DatabaseURI"`
		DBHost        string `json:"DBHost"`
		DBPort        string `json:"DBPort"`
		DBUser        string `json:"DBUser"`
		DBPassword    string `json:"DBPassword"`
		DBName        string `json:"DBName"`
		SQLitePath    string `json:"SQLitePath"`
		MongoURI      string `json:"MongoURI"`
		MongoDatabase string `json:"MongoDatabase"`
		TokenStore    string `json:"TokenStore"`
	} `json:"store"`
	Redis struct {
		RedisHost     string `json:"RedisHost"`
		RedisPort     int    `json:"RedisPort"`
		RedisDB       int    `json:"RedisDB"`
		RedisPassword string `json:"RedisPassword"`
	} `json:"redis"`
	Log struct {
		Level      string `json:"Level"`
		Path       string `json:"Path"`
		MaxSizeMB  int    `json:"MaxSizeMB"`
		MaxBackups int    `json:"MaxBackups"`
		MaxAgeDays int    `json:"MaxAgeDays"`
		Compress   bool   `json:"Compress"`
	} `json:"log"`
}

// DefaultPath is where Load looks for the JSON config when no path is given.
var DefaultPath = filepath.Join("config", "config.json")

// Load reads configuration. Precedence: .env -> config json -> defaults -> environment overrides.
func Load(path string) (AppConfig, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	if path == "" {
		path = DefaultPath
	}

	var cfg AppConfig
	if err := loadJSONConfig(path, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("read %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := applyEnvOverrides(&cfg); err != nil {
		return AppConfig{}, err
	}

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate reports settings the server cannot start without.
func (c AppConfig) Validate() error {
	if c.AccessTokenSecret == "" {
		return errors.New("ACCESS_TOKEN_SECRET must be set")
	}
	if c.RefreshTokenSecret == "" {
		return errors.New("REFRESH_TOKEN_SECRET must be set")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	switch c.StoreDriver {
	case DriverMySQL, DriverPostgres, DriverSQLite, DriverMongo:
	default:
		return fmt.Errorf("unsupported store driver %q", c.StoreDriver)
	}
	switch c.TokenStore {
	case TokenStoreDefault, TokenStoreRedis:
	default:
		return fmt.Errorf("unsupported token store %q", c.TokenStore)
	}
	return nil
}

// RedisAddr returns host:port for the Redis client.
func (c AppConfig) RedisAddr() string {
	return c.RedisHost + ":" + strconv.Itoa(c.RedisPort)
}

// loadJSONConfig reads the JSON file into cfg if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil // silently ignore missing file
	}

	var fc fileConfig
	if err := json.Unmarshal(b, &fc); err != nil {
		return err
	}

	out.AppPort = fc.App.AppPort
	out.AllowedOrigins = fc.App.AllowedOrigins
	out.GinMode = fc.App.GinMode
	out.GinPath = fc.App.GinPath

	out.AccessTokenSecret = fc.Auth.AccessTokenSecret
	out.RefreshTokenSecret = fc.Auth.RefreshTokenSecret
	if fc.Auth.AccessTokenTTL != "" {
		if out.AccessTokenTTL, err = time.ParseDuration(fc.Auth.AccessTokenTTL); err != nil {
			return fmt.Errorf("auth.AccessTokenTTL: %w", err)
		}
	}
	if fc.Auth.RefreshTokenTTL != "" {
		if out.RefreshTokenTTL, err = time.ParseDuration(fc.Auth.RefreshTokenTTL); err != nil {
			return fmt.Errorf("auth.RefreshTokenTTL: %w", err)
		}
	}

	out.StoreDriver = strings.ToLower(fc.Store.Driver)
	out.DatabaseURI = fc.Store.DatabaseURI
	out.DBHost = fc.Store.DBHost
	out.DBPort = fc.Store.DBPort
	out.DBUser = fc.Store.DBUser
	out.DBPassword = fc.Store.DBPassword
	out.DBName = fc.Store.DBName
	out.SQLitePath = fc.Store.SQLitePath
	out.MongoURI = fc.Store.MongoURI
	out.MongoDatabase = fc.Store.MongoDatabase
	out.TokenStore = strings.ToLower(fc.Store.TokenStore)

	out.RedisHost = fc.Redis.RedisHost
	out.RedisPort = fc.Redis.RedisPort
	out.RedisDB = fc.Redis.RedisDB
	out.RedisPassword = fc.Redis.RedisPassword

	out.LogLevel = fc.Log.Level
	out.LogPath = fc.Log.Path
	out.LogMaxSizeMB = fc.Log.MaxSizeMB
	out.LogMaxBackups = fc.Log.MaxBackups
	out.LogMaxAgeDays = fc.Log.MaxAgeDays
	out.LogCompress = fc.Log.Compress
	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "3000"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.AccessTokenTTL == 0 {
		c.AccessTokenTTL = time.Hour
	}
	if c.RefreshTokenTTL == 0 {
		c.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	if c.StoreDriver == "" {
		c.StoreDriver = DriverSQLite
	}
	if c.SQLitePath == "" {
		c.SQLitePath = "data/postboard.db"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		switch c.StoreDriver {
		case DriverPostgres:
			c.DBPort = "5432"
		default:
			c.DBPort = "3306"
		}
	}
	if c.DBName == "" {
		c.DBName = "postboard"
	}
	if c.MongoURI == "" {
		c.MongoURI = "mongodb://127.0.0.1:27017"
	}
	if c.MongoDatabase == "" {
		c.MongoDatabase = "postboard"
	}
	if c.TokenStore == "" {
		c.TokenStore = TokenStoreDefault
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogPath == "" {
		c.LogPath = "logs/app.log"
	}
}

func applyEnvOverrides(c *AppConfig) error {
	if v := getEnv("APP_PORT", ""); v != "" {
		c.AppPort = v
	}
	if v := getEnv("GIN_MODE", ""); v != "" {
		c.GinMode = v
	}
	if v := getEnv("GIN_PATH", ""); v != "" {
		c.GinPath = v
	}
	c.AllowedOrigins = readListEnv("CORS_ALLOWED_ORIGINS", c.AllowedOrigins)

	if v := getEnv("ACCESS_TOKEN_SECRET", ""); v != "" {
		c.AccessTokenSecret = v
	}
	if v := getEnv("REFRESH_TOKEN_SECRET", ""); v != "" {
		c.RefreshTokenSecret = v
	}
	if err := durationEnv("ACCESS_TOKEN_TTL", &c.AccessTokenTTL); err != nil {
		return err
	}
	if err := durationEnv("REFRESH_TOKEN_TTL", &c.RefreshTokenTTL); err != nil {
		return err
	}

	if v := getEnv("STORE_DRIVER", ""); v != "" {
		c.StoreDriver = strings.ToLower(v)
	}
	if v := getEnv("DATABASE_URI", ""); v != "" {
		c.DatabaseURI = v
	}
	if v := getEnv("DB_HOST", ""); v != "" {
		c.DBHost = v
	}
	if v := getEnv("DB_PORT", ""); v != "" {
		c.DBPort = v
	}
	if v := getEnv("DB_USER", ""); v != "" {
		c.DBUser = v
	}
	if v := getEnv("DB_PASSWORD", ""); v != "" {
		c.DBPassword = v
	}
	if v := getEnv("DB_NAME", ""); v != "" {
		c.DBName = v
	}
	if v := getEnv("SQLITE_PATH", ""); v != "" {
		c.SQLitePath = v
	}
	if v := getEnv("MONGO_URI", ""); v != "" {
		c.MongoURI = v
	}
	if v := getEnv("MONGO_DATABASE", ""); v != "" {
		c.MongoDatabase = v
	}
	if v := getEnv("TOKEN_STORE", ""); v != "" {
		c.TokenStore = strings.ToLower(v)
	}

	if v := getEnv("REDIS_HOST", ""); v != "" {
		c.RedisHost = v
	}
	if err := intEnv("REDIS_PORT", &c.RedisPort); err != nil {
		return err
	}
	if err := intEnv("REDIS_DB", &c.RedisDB); err != nil {
		return err
	}
	if v := getEnv("REDIS_PASSWORD", ""); v != "" {
		c.RedisPassword = v
	}

	// Logging env overrides
	if v := getEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := getEnv("LOG_PATH", ""); v != "" {
		c.LogPath = v
	}
	if err := intEnv("LOG_MAX_SIZE_MB", &c.LogMaxSizeMB); err != nil {
		return err
	}
	if err := intEnv("LOG_MAX_BACKUPS", &c.LogMaxBackups); err != nil {
		return err
	}
	if err := intEnv("LOG_MAX_AGE_DAYS", &c.LogMaxAgeDays); err != nil {
		return err
	}
	if v := getEnv("LOG_COMPRESS", ""); v != "" {
		c.LogCompress = v == "true"
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func intEnv(key string, dst *int) error {
	v := getEnv(key, "")
	if v == "" {
		return nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid integer value for %s: %w", key, err)
	}
	*dst = i
	return nil
}

func durationEnv(key string, dst *time.Duration) error {
	v := getEnv(key, "")
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	*dst = d
	return nil
}

func readListEnv(key string, defaults []string) []string {
	if raw := os.Getenv(key); raw != "" {
		return splitAndTrim(raw)
	}
	return defaults
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
