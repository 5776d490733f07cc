package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/fx"
)

// Anvil environments. Each has its own rate limit.
const (
	EnvironmentDev  = "dev"
	EnvironmentProd = "prod"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Anvil     AnvilConfig     `mapstructure:"anvil"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Document  DocumentConfig  `mapstructure:"document"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Port    int    `mapstructure:"port"`
	Env     string `mapstructure:"env"`
	BaseURL string `mapstructure:"base_url"`
}

type AnvilConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	Environment  string        `mapstructure:"environment"` // "dev" or "prod"
	GraphQLURL   string        `mapstructure:"graphql_url"`
	RestURL      string        `mapstructure:"rest_url"`  // versioned REST API, .../api/v1
	PlainURL     string        `mapstructure:"plain_url"` // unversioned API, .../api
	Timeout      time.Duration `mapstructure:"timeout"`   // seconds
	RetriesLimit int           `mapstructure:"retries_limit"`
	WebhookURL   string        `mapstructure:"webhook_url"` // set on packets that have none
	WebhookToken string        `mapstructure:"webhook_token"`
}

// RateLimit allows Calls requests every Seconds seconds.
type RateLimit struct {
	Calls   int `mapstructure:"calls"`
	Seconds int `mapstructure:"seconds"`
}

type RateLimitConfig struct {
	Dev  RateLimit `mapstructure:"dev"`
	Prod RateLimit `mapstructure:"prod"`
}

// For returns the limit of the given Anvil environment.
func (r RateLimitConfig) For(environment string) RateLimit {
	if environment == EnvironmentProd {
		return r.Prod
	}
	return r.Dev
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Driver   string `mapstructure:"driver"` // "postgres" or "sqlite"
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"` // sqlite file
}

type RedisConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Host      string        `mapstructure:"host"`
	Port      int           `mapstructure:"port"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	PacketTTL time.Duration `mapstructure:"packet_ttl"` // hours
}

type DocumentConfig struct {
	BasePath       string `mapstructure:"base_path"`       // Base path for documents
	ReadyFolder    string `mapstructure:"ready_folder"`    // Folder for documents ready to send
	ProgressFolder string `mapstructure:"progress_folder"` // Folder for documents in a packet
	FinishFolder   string `mapstructure:"finish_folder"`   // Folder for signed document archives
	FileExtension  string `mapstructure:"file_extension"`  // File extension (default: .pdf)
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "anvil-esign")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.env", "development")
	v.SetDefault("app.base_url", "")

	v.SetDefault("anvil.api_key", "")
	v.SetDefault("anvil.environment", EnvironmentDev)
	v.SetDefault("anvil.graphql_url", "https://graphql.useanvil.com")
	v.SetDefault("anvil.rest_url", "https://app.useanvil.com/api/v1")
	v.SetDefault("anvil.plain_url", "https://app.useanvil.com/api")
	v.SetDefault("anvil.timeout", 60)
	v.SetDefault("anvil.retries_limit", 5)
	v.SetDefault("anvil.webhook_url", "")
	v.SetDefault("anvil.webhook_token", "")

	v.SetDefault("rate_limit.dev.calls", 2)
	v.SetDefault("rate_limit.dev.seconds", 1)
	v.SetDefault("rate_limit.prod.calls", 40)
	v.SetDefault("rate_limit.prod.seconds", 1)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "anvil_esign")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "anvil-esign.db")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.packet_ttl", 24*30)

	v.SetDefault("document.base_path", "documents")
	v.SetDefault("document.ready_folder", "ready")
	v.SetDefault("document.progress_folder", "progress")
	v.SetDefault("document.finish_folder", "finish")
	v.SetDefault("document.file_extension", ".pdf")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// NewConfig loads config.yaml from the working directory or ./config.
func NewConfig() (*Config, error) {
	return Load("")
}

// Load reads the configuration. An explicit path must exist; without one a
// missing config.yaml is fine and defaults plus environment variables are
// used. Environment variables override the file: anvil.api_key is read from
// ANVIL_API_KEY.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Convert to durations
	cfg.Anvil.Timeout = cfg.Anvil.Timeout * time.Second
	cfg.Redis.PacketTTL = cfg.Redis.PacketTTL * time.Hour

	if cfg.Anvil.Environment != EnvironmentProd {
		cfg.Anvil.Environment = EnvironmentDev
	}

	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

var Module = fx.Module("config",
	fx.Provide(NewConfig),
)
