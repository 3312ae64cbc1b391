package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Security   SecurityConfig   `mapstructure:"security"`
	Log        LogConfig        `mapstructure:"log"`
	Rates      RatesConfig      `mapstructure:"rates"`
	Reconciler ReconcilerConfig `mapstructure:"reconciler"`
	Networks   []NetworkConfig  `mapstructure:"networks"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Migrate         bool          `mapstructure:"migrate"` // apply the embedded schema on startup
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

// SecurityConfig selects the private key encryption scheme.
type SecurityConfig struct {
	Provider string `mapstructure:"provider"` // aes, xchacha
	Key      string `mapstructure:"key"`      // 32-byte hex-encoded key
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

type RatesConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"` // 0 disables the Redis rate cache
}

// ReconcilerConfig drives the background poller that checks pending invoices.
type ReconcilerConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Interval  time.Duration `mapstructure:"interval"`
	BatchSize int           `mapstructure:"batch_size"`
	Workers   int           `mapstructure:"workers"`
	LeaseTTL  time.Duration `mapstructure:"lease_ttl"`
}

// NetworkConfig describes one settlement network.
// Currency is the settlement crypto currency used for rate lookups (e.g. ETH, SOL).
type NetworkConfig struct {
	Name           string `mapstructure:"name"`
	Type           string `mapstructure:"type"` // evm, solana
	Currency       string `mapstructure:"currency"`
	RPCURL         string `mapstructure:"rpc_url"`
	ChainID        int64  `mapstructure:"chain_id"`
	LookbackBlocks uint64 `mapstructure:"lookback_blocks"` // evm: blocks scanned, solana: signatures inspected
	TokenDecimals  int32  `mapstructure:"token_decimals"`  // evm token invoices, 0 means 18
}

// Network returns the configuration of the named network.
func (c *Config) Network(name string) (NetworkConfig, bool) {
	for _, n := range c.Networks {
		if n.Name == name {
			return n, true
		}
	}
	return NetworkConfig{}, false
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: CPAY_.
// Nested keys use underscore: CPAY_DATABASE_HOST, CPAY_SECURITY_KEY, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "crypto_payments")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.migrate", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "crypto-payments")
	v.SetDefault("security.provider", "aes")
	v.SetDefault("security.key", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("rates.cache_ttl", "1m")
	v.SetDefault("reconciler.enabled", true)
	v.SetDefault("reconciler.interval", "30s")
	v.SetDefault("reconciler.batch_size", 100)
	v.SetDefault("reconciler.workers", 4)
	v.SetDefault("reconciler.lease_ttl", "2m")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("CPAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing config file is fine: defaults plus env vars can suffice.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	seen := make(map[string]bool, len(c.Networks))
	for i := range c.Networks {
		// Rate pairs are keyed by upper-case currency codes.
		c.Networks[i].Currency = strings.ToUpper(c.Networks[i].Currency)
		n := c.Networks[i]
		if n.Name == "" {
			return fmt.Errorf("network entry without name")
		}
		if seen[n.Name] {
			return fmt.Errorf("duplicate network %q", n.Name)
		}
		seen[n.Name] = true
		switch n.Type {
		case "evm", "solana":
		default:
			return fmt.Errorf("network %q: unknown type %q", n.Name, n.Type)
		}
	}
	return nil
}
