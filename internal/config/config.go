package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	serviceName = "blockchain-sync"
	envPrefix   = "NFT_SYNC"
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
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// NATSConfig holds NATS JetStream configuration
type NATSConfig struct {
	URL                 string        `mapstructure:"url"`
	StreamName          string        `mapstructure:"stream_name"`
	ConsumerName        string        `mapstructure:"consumer_name"`
	Subject             string        `mapstructure:"subject"`
	NotifySubjectPrefix string        `mapstructure:"notify_subject_prefix"`
	MaxReconnects       int           `mapstructure:"max_reconnects"`
	ReconnectWait       time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName      string        `mapstructure:"connection_name"`
	AckWait             time.Duration `mapstructure:"ack_wait"`
	MaxDeliver          int           `mapstructure:"max_deliver"`
}

// EthereumConfig holds chain RPC configuration
type EthereumConfig struct {
	RPCURL         string        `mapstructure:"rpc_url"`
	WebSocketURL   string        `mapstructure:"websocket_url"`
	StartBlock     uint64        `mapstructure:"start_block"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	LogPageSize    uint64        `mapstructure:"log_page_size"`
}

// DataAPIConfig holds GraphQL data API configuration
type DataAPIConfig struct {
	URL               string        `mapstructure:"url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// IPFSConfig holds IPFS gateway configuration
type IPFSConfig struct {
	Gateway string `mapstructure:"gateway"`
}

// MetadataConfig holds metadata fetcher configuration
type MetadataConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// WorkerConfig holds per event type worker queue configuration
type WorkerConfig struct {
	QueueSize int `mapstructure:"queue_size"`
	// RetryTransient bounds the retries of an event whose data API lookup keeps failing
	RetryTransient time.Duration `mapstructure:"retry_transient"`
}

// CursorConfig controls how often the block cursor is persisted
type CursorConfig struct {
	SaveEveryBlocks uint64        `mapstructure:"save_every_blocks"`
	SaveInterval    time.Duration `mapstructure:"save_interval"`
}

// SagaConfig holds saga resumer configuration
type SagaConfig struct {
	ResumeInterval time.Duration `mapstructure:"resume_interval"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	BatchSize      int           `mapstructure:"batch_size"`
}

// BlockchainSyncConfig holds configuration for blockchain-sync
type BlockchainSyncConfig struct {
	BaseConfig         `mapstructure:",squash"`
	Ethereum           EthereumConfig `mapstructure:"ethereum"`
	NetworkMappingPath string         `mapstructure:"network_mapping_path"`
	DataAPI            DataAPIConfig  `mapstructure:"dataapi"`
	IPFS               IPFSConfig     `mapstructure:"ipfs"`
	Metadata           MetadataConfig `mapstructure:"metadata"`
	Worker             WorkerConfig   `mapstructure:"worker"`
	Cursor             CursorConfig   `mapstructure:"cursor"`
	Saga               SagaConfig     `mapstructure:"saga"`
	Database           DatabaseConfig `mapstructure:"database"`
	NATS               NATSConfig     `mapstructure:"nats"`
}

// LoadBlockchainSyncConfig loads configuration for blockchain-sync
func LoadBlockchainSyncConfig(configFile string, envPath string) (*BlockchainSyncConfig, error) {
	v := configureViper(serviceName, configFile, envPath)

	// Set defaults
	v.SetDefault("ethereum.request_timeout", "30s")
	v.SetDefault("ethereum.log_page_size", 10000)
	v.SetDefault("network_mapping_path", "config/networkMapping.json")
	v.SetDefault("dataapi.timeout", "15s")
	v.SetDefault("dataapi.requests_per_second", 20)
	v.SetDefault("ipfs.gateway", "https://ipfs.io/ipfs/")
	v.SetDefault("metadata.timeout", "10s")
	v.SetDefault("worker.queue_size", 256)
	v.SetDefault("worker.retry_transient", "30s")
	v.SetDefault("cursor.save_every_blocks", 1)
	v.SetDefault("cursor.save_interval", "30s")
	v.SetDefault("saga.resume_interval", "1m")
	v.SetDefault("saga.max_attempts", 5)
	v.SetDefault("saga.batch_size", 50)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.stream_name", "MARKETPLACE_EVENTS")
	v.SetDefault("nats.consumer_name", serviceName)
	v.SetDefault("nats.subject", "marketplace.events.>")
	v.SetDefault("nats.notify_subject_prefix", "marketplace.synced")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.connection_name", serviceName)
	v.SetDefault("nats.ack_wait", "30s")
	v.SetDefault("nats.max_deliver", 5)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use environment variables
	}

	var cfg BlockchainSyncConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Ethereum.WebSocketURL == "" {
		cfg.Ethereum.WebSocketURL = cfg.Ethereum.RPCURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks required fields
func (c *BlockchainSyncConfig) Validate() error {
	if c.Ethereum.RPCURL == "" {
		return errors.New("ethereum.rpc_url is required")
	}
	if c.DataAPI.URL == "" {
		return errors.New("dataapi.url is required")
	}
	if c.NetworkMappingPath == "" {
		return errors.New("network_mapping_path is required")
	}
	if c.Worker.QueueSize <= 0 {
		return errors.New("worker.queue_size must be positive")
	}
	return nil
}

// DatabaseEnabled reports whether a database is configured
func (c *BlockchainSyncConfig) DatabaseEnabled() bool {
	return c.Database.Host != ""
}

// NATSEnabled reports whether NATS JetStream is configured
func (c *BlockchainSyncConfig) NATSEnabled() bool {
	return c.NATS.URL != ""
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindAllEnvVars(v)
	return v
}

// legacyEnvVars maps config keys to the variable names used by the original listener
var legacyEnvVars = map[string]string{
	"ethereum.rpc_url":     "LOCAL_BLOCKCHAIN_URL",
	"ethereum.start_block": "START_BLOCK",
	"dataapi.url":          "GRAPHQL_API_URL",
	"ipfs.gateway":         "IPFS_GATEWAY",
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		"network_mapping_path",
		// Ethereum
		"ethereum.rpc_url",
		"ethereum.websocket_url",
		"ethereum.start_block",
		"ethereum.request_timeout",
		"ethereum.log_page_size",
		// Data API
		"dataapi.url",
		"dataapi.timeout",
		"dataapi.requests_per_second",
		// Metadata
		"ipfs.gateway",
		"metadata.timeout",
		// Workers
		"worker.queue_size",
		"worker.retry_transient",
		"cursor.save_every_blocks",
		"cursor.save_interval",
		"saga.resume_interval",
		"saga.max_attempts",
		"saga.batch_size",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.auto_migrate",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.consumer_name",
		"nats.subject",
		"nats.notify_subject_prefix",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		"nats.ack_wait",
		"nats.max_deliver",
	}

	for _, key := range keys {
		envName := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if legacy, ok := legacyEnvVars[key]; ok {
			_ = v.BindEnv(key, envName, legacy)
			continue
		}
		_ = v.BindEnv(key, envName)
	}
}

// loadEnv loads environment variables from the env directory
func loadEnv(envPath string, service string) {
	// Shared base first, then local, then optional per-service local
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		_ = godotenv.Overload(filepath.Join(envPath, envFile))
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
