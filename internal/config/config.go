package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Cache backends
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
}

// RedisConfig holds the projection cache connection
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// NATSConfig holds NATS JetStream configuration for state-change notifications
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	SubjectPrefix  string        `mapstructure:"subject_prefix"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
}

// Enabled reports whether notifications should be published
func (c *NATSConfig) Enabled() bool {
	return c.URL != ""
}

// LedgerConfig holds the ledger tunables
type LedgerConfig struct {
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	StaleAfter   time.Duration `mapstructure:"stale_after"`
	DriftEpsilon string        `mapstructure:"drift_epsilon"`
	CacheBackend string        `mapstructure:"cache_backend"`
}

// Epsilon parses the drift tolerance
func (c *LedgerConfig) Epsilon() (decimal.Decimal, error) {
	epsilon, err := decimal.NewFromString(c.DriftEpsilon)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid ledger.drift_epsilon %q: %w", c.DriftEpsilon, err)
	}
	return epsilon, nil
}

// WorkerConfig holds worker configuration
type WorkerConfig struct {
	WorkerPoolSize int `mapstructure:"pool_size"`
}

// RecalculationConfig holds configuration for the recalculation sweeper
type RecalculationConfig struct {
	Interval             time.Duration `mapstructure:"interval"` // zero runs a single cycle
	MaxRetries           uint64        `mapstructure:"max_retries"`
	RetryInitialInterval time.Duration `mapstructure:"retry_initial_interval"`
	RetryMaxInterval     time.Duration `mapstructure:"retry_max_interval"`
	Worker               WorkerConfig  `mapstructure:"worker"`
}

// RecalculatorConfig holds configuration for the ledger-recalculator program
type RecalculatorConfig struct {
	BaseConfig    `mapstructure:",squash"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	NATS          NATSConfig          `mapstructure:"nats"`
	Ledger        LedgerConfig        `mapstructure:"ledger"`
	Recalculation RecalculationConfig `mapstructure:"recalculation"`
}

// LoadRecalculatorConfig loads configuration for the ledger-recalculator program
func LoadRecalculatorConfig(configFile string, envPath string) (*RecalculatorConfig, error) {
	v := configureViper("ledger-recalculator", configFile, envPath)

	// Set defaults
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "contract-ledger")
	v.SetDefault("nats.stream_name", "CONTRACT_LEDGER")
	v.SetDefault("nats.subject_prefix", "contract-ledger")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.connection_name", "ledger-recalculator")
	v.SetDefault("ledger.cache_ttl", "5m")
	v.SetDefault("ledger.stale_after", "10m")
	v.SetDefault("ledger.drift_epsilon", "0.01")
	v.SetDefault("ledger.cache_backend", CacheBackendMemory)
	v.SetDefault("recalculation.interval", "0s")
	v.SetDefault("recalculation.max_retries", 3)
	v.SetDefault("recalculation.retry_initial_interval", "1s")
	v.SetDefault("recalculation.retry_max_interval", "30s")
	v.SetDefault("recalculation.worker.pool_size", 8)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use environment variables
	}

	var cfg RecalculatorConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *RecalculatorConfig) validate() error {
	if c.Database.Host == "" {
		return errors.New("database.host is required")
	}
	if c.Database.DBName == "" {
		return errors.New("database.dbname is required")
	}

	switch c.Ledger.CacheBackend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if c.Redis.Addr == "" {
			return errors.New("redis.addr is required for the redis cache backend")
		}
	default:
		return fmt.Errorf("unknown ledger.cache_backend %q", c.Ledger.CacheBackend)
	}

	if _, err := c.Ledger.Epsilon(); err != nil {
		return err
	}

	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("CONTRACT_LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables.
// Viper only maps env vars onto struct fields for keys it knows about.
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// Redis
		"redis.addr",
		"redis.password",
		"redis.db",
		"redis.key_prefix",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.subject_prefix",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		// Ledger
		"ledger.cache_ttl",
		"ledger.stale_after",
		"ledger.drift_epsilon",
		"ledger.cache_backend",
		// Recalculation
		"recalculation.interval",
		"recalculation.max_retries",
		"recalculation.retry_initial_interval",
		"recalculation.retry_max_interval",
		"recalculation.worker.pool_size",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		_ = godotenv.Overload(filepath.Join(envPath, envFile)) // later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
