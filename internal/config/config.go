package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers
const (
	DriverPlatform = "platform"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverS3       = "s3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logger   LoggerConfig   `yaml:"logger"`
	Store    StoreConfig    `yaml:"store"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Platform PlatformConfig `yaml:"platform"`
	JWT      JWTConfig      `yaml:"jwt"`
	S3       S3Config       `yaml:"s3"`
	Storage  StorageConfig  `yaml:"storage"`
	Presence PresenceConfig `yaml:"presence"`
	Jobs     JobsConfig     `yaml:"jobs"`
	CORS     CORSConfig     `yaml:"cors"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Mode            string        `yaml:"mode"`
	BasePath        string        `yaml:"base_path"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
}

// StoreConfig selects where entity records live.
type StoreConfig struct {
	Driver string `yaml:"driver"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	URL             string        `yaml:"url"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	SSLMode         string        `yaml:"ssl_mode"`
	Path            string        `yaml:"path"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// GetDSN returns the connection string for the configured driver.
func (d DatabaseConfig) GetDSN() string {
	if d.Driver == DriverSQLite {
		if d.Path == "" {
			return "file:signalforge.db?cache=shared"
		}
		return d.Path
	}
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Addr returns host:port for the redis server.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// PlatformConfig points at the hosted backend that owns entities, auth and jobs.
type PlatformConfig struct {
	BaseURL  string        `yaml:"base_url"`
	AppID    string        `yaml:"app_id"`
	APIKey   string        `yaml:"api_key"`
	LoginURL string        `yaml:"login_url"`
	Timeout  time.Duration `yaml:"timeout"`
	// JobTimeout bounds a single function invocation. Analysis jobs run longer than CRUD calls.
	JobTimeout time.Duration `yaml:"job_timeout"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

type StorageConfig struct {
	Driver      string        `yaml:"driver"`
	MaxFileSize int64         `yaml:"max_file_size"`
	TempTTL     time.Duration `yaml:"temp_ttl"`
}

type PresenceConfig struct {
	Backend           string        `yaml:"backend"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	PollInterval      time.Duration `yaml:"poll_interval"`
	ActiveWindow      time.Duration `yaml:"active_window"`
	IdleWindow        time.Duration `yaml:"idle_window"`
	CallTimeout       time.Duration `yaml:"call_timeout"`
}

type JobsConfig struct {
	Enabled            bool   `yaml:"enabled"`
	UploadCleanup      string `yaml:"upload_cleanup"`
	SubscriptionExpiry string `yaml:"subscription_expiry"`
	BusinessMetrics    string `yaml:"business_metrics"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns a configuration suitable for local development.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Mode:            "debug",
			BasePath:        "/api",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logger: LoggerConfig{Level: "info"},
		Store:  StoreConfig{Driver: DriverPlatform},
		Database: DatabaseConfig{
			Driver:          DriverPostgres,
			Host:            "localhost",
			Port:            5432,
			User:            "signalforge",
			Name:            "signalforge",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: 6379,
		},
		Platform: PlatformConfig{
			Timeout:    10 * time.Second,
			JobTimeout: 2 * time.Minute,
		},
		Storage: StorageConfig{
			Driver:      DriverPlatform,
			MaxFileSize: 512 << 20,
			TempTTL:     24 * time.Hour,
		},
		Presence: PresenceConfig{
			Backend:           "store",
			HeartbeatInterval: 5 * time.Second,
			PollInterval:      3 * time.Second,
			ActiveWindow:      30 * time.Second,
			IdleWindow:        2 * time.Minute,
			CallTimeout:       5 * time.Second,
		},
		Jobs: JobsConfig{
			Enabled:            true,
			UploadCleanup:      "@every 1h",
			SubscriptionExpiry: "0 3 * * *",
			BusinessMetrics:    "@every 1m",
		},
		CORS: CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

// Load reads the YAML file at path (missing file is not an error), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Port = port
	}
	if basePath := os.Getenv("SERVER_BASE_PATH"); basePath != "" {
		c.Server.BasePath = basePath
	}
	if env := os.Getenv("ENV"); env == "prod" || env == "production" {
		c.Server.Mode = "release"
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logger.Level = level
	}
	if driver := os.Getenv("STORE_DRIVER"); driver != "" {
		c.Store.Driver = driver
	}
	if driver := os.Getenv("DATABASE_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		c.Database.URL = dbURL
	}
	if path := os.Getenv("DATABASE_PATH"); path != "" {
		c.Database.Path = path
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}
	if redisHost := os.Getenv("REDIS_HOST"); redisHost != "" {
		c.Redis.Host = redisHost
	}
	if redisPort := os.Getenv("REDIS_PORT"); redisPort != "" {
		if p, err := strconv.Atoi(redisPort); err == nil {
			c.Redis.Port = p
		}
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		c.Redis.Password = redisPassword
	}
	if baseURL := os.Getenv("PLATFORM_BASE_URL"); baseURL != "" {
		c.Platform.BaseURL = baseURL
	}
	if appID := os.Getenv("PLATFORM_APP_ID"); appID != "" {
		c.Platform.AppID = appID
	}
	if apiKey := os.Getenv("PLATFORM_API_KEY"); apiKey != "" {
		c.Platform.APIKey = apiKey
	}
	if loginURL := os.Getenv("PLATFORM_LOGIN_URL"); loginURL != "" {
		c.Platform.LoginURL = loginURL
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.JWT.Secret = secret
	}
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		c.S3.Bucket = bucket
	}
	if region := os.Getenv("S3_REGION"); region != "" {
		c.S3.Region = region
	}
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		c.S3.Endpoint = endpoint
	}
	if accessKey := os.Getenv("S3_ACCESS_KEY"); accessKey != "" {
		c.S3.AccessKey = accessKey
	}
	if secretKey := os.Getenv("S3_SECRET_KEY"); secretKey != "" {
		c.S3.SecretKey = secretKey
	}
	if driver := os.Getenv("STORAGE_DRIVER"); driver != "" {
		c.Storage.Driver = driver
	}
	if backend := os.Getenv("PRESENCE_BACKEND"); backend != "" {
		c.Presence.Backend = backend
	}
	if d, ok := durationEnv("PRESENCE_HEARTBEAT_INTERVAL"); ok {
		c.Presence.HeartbeatInterval = d
	}
	if d, ok := durationEnv("PRESENCE_POLL_INTERVAL"); ok {
		c.Presence.PollInterval = d
	}
	if d, ok := durationEnv("PRESENCE_ACTIVE_WINDOW"); ok {
		c.Presence.ActiveWindow = d
	}
	if d, ok := durationEnv("PRESENCE_IDLE_WINDOW"); ok {
		c.Presence.IdleWindow = d
	}
	if enabled := os.Getenv("JOBS_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			c.Jobs.Enabled = b
		}
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		c.CORS.AllowedOrigins = strings.Split(origins, ",")
	}
}

func durationEnv(key string) (time.Duration, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}
	return d, true
}

// Validate checks driver names and the settings each driver depends on.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverPlatform:
		if c.Platform.BaseURL == "" {
			return fmt.Errorf("platform.base_url is required when store.driver is %q", DriverPlatform)
		}
	case DriverPostgres, DriverSQLite:
		c.Database.Driver = c.Store.Driver
	default:
		return fmt.Errorf("unsupported store.driver %q", c.Store.Driver)
	}

	switch c.Presence.Backend {
	case "store", DriverRedis:
	default:
		return fmt.Errorf("unsupported presence.backend %q", c.Presence.Backend)
	}

	switch c.Storage.Driver {
	case DriverPlatform:
		if c.Platform.BaseURL == "" {
			return fmt.Errorf("platform.base_url is required when storage.driver is %q", DriverPlatform)
		}
	case DriverS3:
		if c.S3.Bucket == "" || c.S3.Region == "" {
			return fmt.Errorf("s3.bucket and s3.region are required when storage.driver is %q", DriverS3)
		}
	default:
		return fmt.Errorf("unsupported storage.driver %q", c.Storage.Driver)
	}

	if c.Platform.BaseURL == "" && c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required when no platform is configured")
	}

	if c.Presence.ActiveWindow <= 0 || c.Presence.IdleWindow <= c.Presence.ActiveWindow {
		return fmt.Errorf("presence windows must satisfy 0 < active_window < idle_window")
	}
	if c.Presence.HeartbeatInterval <= 0 || c.Presence.PollInterval <= 0 {
		return fmt.Errorf("presence intervals must be positive")
	}
	return nil
}

// SelfHosted reports whether entity records are stored in the local database.
func (c *Config) SelfHosted() bool {
	return c.Store.Driver == DriverPostgres || c.Store.Driver == DriverSQLite
}
