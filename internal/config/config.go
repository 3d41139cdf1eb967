package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Config holds all bot configuration.
type Config struct {
	Discord  DiscordConfig  `yaml:"discord"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	HTTP     ServerConfig   `yaml:"http"`
	GRPC     ServerConfig   `yaml:"grpc"`
	Service  ServiceConfig  `yaml:"service"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DiscordConfig configures the chat transport. An empty token disables it.
type DiscordConfig struct {
	Token             string `yaml:"token"`
	IgnoreNonCommands bool   `yaml:"ignore_non_commands"`
}

// DatabaseConfig selects the ledger backend.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql
	Path   string `yaml:"path"`   // sqlite file
	DSN    string `yaml:"dsn"`    // mysql
}

// RedisConfig enables the shared duplicate-delivery guard when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	ClaimTTL string `yaml:"claim_ttl"`
}

// KafkaConfig enables the change-event feed when Brokers is not empty.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// ServerConfig is a listen address; empty disables the server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type ServiceConfig struct {
	CommandTimeout string `yaml:"command_timeout"`
	EventQueueSize int    `yaml:"event_queue_size"`
	EventWorkers   int    `yaml:"event_workers"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Discord: DiscordConfig{
			IgnoreNonCommands: true,
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			Path:   "raktar.db",
		},
		Redis: RedisConfig{
			ClaimTTL: "24h",
		},
		Kafka: KafkaConfig{
			Topic: "raktar.inventory",
		},
		HTTP: ServerConfig{Addr: ":8080"},
		GRPC: ServerConfig{Addr: ":50051"},
		Service: ServiceConfig{
			CommandTimeout: "5s",
			EventQueueSize: 1000,
			EventWorkers:   2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads the YAML file at path, then the .env file in the working
// directory, then environment variables. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		c.Discord.Token = token
	}
	if driver := os.Getenv("RAKTAR_DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if path := os.Getenv("RAKTAR_DB_PATH"); path != "" {
		c.Database.Path = path
	}
	if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c.Redis.Addr = addr
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		c.Kafka.Brokers = splitList(brokers)
	}
	if topic := os.Getenv("KAFKA_TOPIC"); topic != "" {
		c.Kafka.Topic = topic
	}
	if addr, ok := os.LookupEnv("HTTP_ADDR"); ok {
		c.HTTP.Addr = addr
	}
	if addr, ok := os.LookupEnv("GRPC_ADDR"); ok {
		c.GRPC.Addr = addr
	}
}

// Validate reports configuration that cannot work.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("database.path is required for sqlite")
		}
	case DriverMySQL:
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for mysql")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return errors.New("kafka.topic is required when brokers are set")
	}
	return nil
}

// GetCommandTimeout bounds every store call made for one command.
func (c *Config) GetCommandTimeout() time.Duration {
	d, err := time.ParseDuration(c.Service.CommandTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

func (c *Config) GetClaimTTL() time.Duration {
	d, err := time.ParseDuration(c.Redis.ClaimTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
