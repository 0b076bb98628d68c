package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Chain    ChainConfig
	Pyth     PythConfig
	Sponsor  SponsorConfig
	Worker   WorkerConfig
	App      AppConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port string
}

// ChainConfig holds Movement fullnode and contract settings
type ChainConfig struct {
	NodeURL       string
	PulseAddress  string
	SignerURL     string
	SignerAddress string
	SignerTimeout time.Duration
}

// PythConfig holds Hermes price service settings
type PythConfig struct {
	Endpoint string
	CacheTTL time.Duration
}

// SponsorConfig holds gas station settings
type SponsorConfig struct {
	Endpoint string
	APIKey   string
}

// WorkerConfig holds resolution worker settings
type WorkerConfig struct {
	Enabled  bool
	Interval time.Duration
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret string
	MinBet    uint64
	MaxBet    uint64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "pulse_market"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Chain: ChainConfig{
			NodeURL:       getEnv("MOVEMENT_NODE_URL", "https://testnet.bardock.movementnetwork.xyz/v1"),
			PulseAddress:  getEnv("PULSE_ADDRESS", ""),
			SignerURL:     getEnv("SIGNER_URL", ""),
			SignerAddress: getEnv("SIGNER_ADDRESS", ""),
			SignerTimeout: getDuration("SIGNER_TIMEOUT", 30*time.Second),
		},
		Pyth: PythConfig{
			Endpoint: getEnv("PYTH_ENDPOINT", "https://hermes.pyth.network"),
			CacheTTL: getDuration("PYTH_CACHE_TTL", time.Second),
		},
		Sponsor: SponsorConfig{
			Endpoint: getEnv("GAS_STATION_URL", ""),
			APIKey:   getEnv("GAS_STATION_API_KEY", ""),
		},
		Worker: WorkerConfig{
			Enabled:  getBool("RESOLVER_ENABLED", true),
			Interval: getDuration("RESOLVER_INTERVAL", 30*time.Second),
		},
		App: AppConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			MinBet:    getUint64("MIN_BET_OCTAS", 10_000_000),
			MaxBet:    getUint64("MAX_BET_OCTAS", 1_000_000_000),
		},
	}

	// Validate required fields
	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if config.Chain.PulseAddress == "" {
		return nil, fmt.Errorf("PULSE_ADDRESS is required")
	}

	if config.App.MinBet == 0 || config.App.MaxBet < config.App.MinBet {
		return nil, fmt.Errorf("invalid bet limits: min=%d max=%d", config.App.MinBet, config.App.MaxBet)
	}

	return config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getUint64(key string, defaultValue uint64) uint64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return n
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
