// Package config loads server configuration from an optional YAML file
// overlaid with REALMGOV_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"realmgov/pkg/domain"
	strutil "realmgov/pkg/platform/strings"
)

// EnvPrefix is the environment variable prefix. Nested sections add their
// own segment, e.g. REALMGOV_HTTP_ADDR or REALMGOV_STORE_BACKEND.
const EnvPrefix = "realmgov"

// Backend names for the pluggable stores.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendBadger   = "badger"
	BackendRedis    = "redis"
	BackendFile     = "file"
)

// Config is the complete server configuration.
type Config struct {
	HTTPAddr     string        `yaml:"httpAddr" envconfig:"HTTP_ADDR"`
	ProgramID    string        `yaml:"programId" envconfig:"PROGRAM_ID"`
	OpTimeout    time.Duration `yaml:"opTimeout" envconfig:"OP_TIMEOUT"`
	ShutdownWait time.Duration `yaml:"shutdownWait" envconfig:"SHUTDOWN_WAIT"`

	Log      LogConfig      `yaml:"log"`
	Store    StoreConfig    `yaml:"store"`
	Redis    RedisConfig    `yaml:"redis"`
	Oracle   OracleConfig   `yaml:"oracle"`
	Registry RegistryConfig `yaml:"registry"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Signer   SignerConfig   `yaml:"signer"`
	Custody  CustodyConfig  `yaml:"custody"`
}

type LogConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"`
}

// StoreConfig selects the Token Owner Record store and custody ledger.
type StoreConfig struct {
	Backend         string        `yaml:"backend" envconfig:"BACKEND"`
	DatabaseURL     string        `yaml:"databaseUrl" envconfig:"DATABASE_URL"`
	MaxOpenConns    int           `yaml:"maxOpenConns" envconfig:"MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"maxIdleConns" envconfig:"MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime" envconfig:"CONN_MAX_LIFETIME"`
	BadgerDir       string        `yaml:"badgerDir" envconfig:"BADGER_DIR"`
}

// RedisConfig configures the shared redis client (replay guard, vote holds).
type RedisConfig struct {
	URL          string        `yaml:"url" envconfig:"URL"`
	PoolSize     int           `yaml:"poolSize" envconfig:"POOL_SIZE"`
	MinIdleConns int           `yaml:"minIdleConns" envconfig:"MIN_IDLE_CONNS"`
	DialTimeout  time.Duration `yaml:"dialTimeout" envconfig:"DIAL_TIMEOUT"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"WRITE_TIMEOUT"`
}

// OracleConfig selects the vote-hold oracle and its circuit breaker. The
// memory backend is for development: nothing places holds in it, so every
// withdrawal passes the hold check. Validate refuses it with the postgres
// store.
type OracleConfig struct {
	Backend          string        `yaml:"backend" envconfig:"BACKEND"`
	FailureThreshold int           `yaml:"failureThreshold" envconfig:"FAILURE_THRESHOLD"`
	SuccessThreshold int           `yaml:"successThreshold" envconfig:"SUCCESS_THRESHOLD"`
	Cooldown         time.Duration `yaml:"cooldown" envconfig:"COOLDOWN"`
}

// RegistryConfig selects where realm configuration comes from.
type RegistryConfig struct {
	Backend  string        `yaml:"backend" envconfig:"BACKEND"`
	CacheTTL time.Duration `yaml:"cacheTtl" envconfig:"CACHE_TTL"`
	Realms   []RealmEntry  `yaml:"realms" ignored:"true"`
}

// RealmEntry declares one realm and its governing mints in the YAML file.
type RealmEntry struct {
	Realm string      `yaml:"realm"`
	Mints []MintEntry `yaml:"mints"`
}

type MintEntry struct {
	Mint      string `yaml:"mint"`
	Role      string `yaml:"role"`
	TokenType string `yaml:"tokenType"`
}

// KafkaConfig configures the audit outbox relay. Empty brokers disables it.
type KafkaConfig struct {
	Brokers      []string      `yaml:"brokers" envconfig:"BROKERS"`
	Topic        string        `yaml:"topic" envconfig:"TOPIC"`
	PollInterval time.Duration `yaml:"pollInterval" envconfig:"POLL_INTERVAL"`
	BatchSize    int           `yaml:"batchSize" envconfig:"BATCH_SIZE"`
}

// CustodyConfig seeds the custody ledger with mints and funded accounts.
// Postgres ledgers are seeded by the migrate command; in-process ledgers at
// startup.
type CustodyConfig struct {
	Mints    []CustodyMintEntry    `yaml:"mints" ignored:"true"`
	Accounts []CustodyAccountEntry `yaml:"accounts" ignored:"true"`
}

type CustodyMintEntry struct {
	Mint      string `yaml:"mint"`
	Authority string `yaml:"authority"`
}

type CustodyAccountEntry struct {
	Account   string `yaml:"account"`
	Mint      string `yaml:"mint"`
	Authority string `yaml:"authority"`
	Balance   uint64 `yaml:"balance"`
}

// SignerConfig bounds signer token lifetime.
type SignerConfig struct {
	MaxAge time.Duration `yaml:"maxAge" envconfig:"MAX_AGE"`
	Leeway time.Duration `yaml:"leeway" envconfig:"LEEWAY"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		HTTPAddr:     ":8080",
		ProgramID:    domain.DefaultProgramID,
		OpTimeout:    10 * time.Second,
		ShutdownWait: 15 * time.Second,
		Log:          LogConfig{Level: "info", Format: "json"},
		Store: StoreConfig{
			Backend:         BackendMemory,
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			BadgerDir:       ".realmgov/badger",
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Oracle: OracleConfig{
			Backend:          BackendMemory,
			FailureThreshold: 5,
			SuccessThreshold: 2,
			Cooldown:         5 * time.Second,
		},
		Registry: RegistryConfig{Backend: BackendFile, CacheTTL: time.Minute},
		Kafka: KafkaConfig{
			Topic:        "realmgov.audit",
			PollInterval: time.Second,
			BatchSize:    100,
		},
		Signer: SignerConfig{MaxAge: 5 * time.Minute, Leeway: 5 * time.Second},
	}
}

// Load starts from Default, overlays the YAML file at path (if non-empty)
// and then the environment, which wins over both.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		buf, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	cfg.Kafka.Brokers = strutil.DedupeAndTrim(cfg.Kafka.Brokers)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if _, err := domain.ParsePubkey(c.ProgramID); err != nil {
		return fmt.Errorf("program id: %w", err)
	}
	switch c.Store.Backend {
	case BackendMemory, BackendBadger:
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			return errors.New("store backend postgres requires REALMGOV_STORE_DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	switch c.Oracle.Backend {
	case BackendMemory:
		// Nothing feeds the in-process tracker, so it never reports a hold.
		if c.Store.Backend == BackendPostgres {
			return errors.New("oracle backend memory does not enforce vote holds; use redis with store backend postgres")
		}
	case BackendRedis:
		if c.Redis.URL == "" {
			return errors.New("oracle backend redis requires REALMGOV_REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown oracle backend %q", c.Oracle.Backend)
	}
	switch c.Registry.Backend {
	case BackendFile:
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			return errors.New("registry backend postgres requires REALMGOV_STORE_DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown registry backend %q", c.Registry.Backend)
	}
	if c.Signer.MaxAge <= 0 || c.Signer.MaxAge > 5*time.Minute {
		return errors.New("signer max age must be within (0, 5m]")
	}
	if c.OpTimeout <= 0 {
		return errors.New("operation timeout must be positive")
	}
	return nil
}
