package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultNetwork    = "testnet"
	DefaultHorizonURL = "https://horizon-testnet.stellar.org"
)

// Config is built once at startup and passed explicitly to the components that need it.
// Treat it as read-only after Load.
type Config struct {
	Stellar  StellarConfig
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Assets   AssetsConfig
}

// StellarConfig identifies the ledger network the backend talks to
type StellarConfig struct {
	Network             string
	HorizonURL          string
	Passphrase          string
	PrizePoolContractId string
	HorizonTimeout      time.Duration
}

type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

type ServerConfig struct {
	Port            string
	Debug           bool
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type AuthConfig struct {
	JWTSecret     string
	JWTExpiration time.Duration
}

type AssetsConfig struct {
	File string
}

// Load reads an optional .env file followed by the process environment.
// Missing or malformed values fall back to defaults; NETWORK_PASSPHRASE has no default.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("unable to load .env file: %w", err)
	}

	return &Config{
		Stellar: StellarConfig{
			Network:             getEnvString("STELLAR_NETWORK", DefaultNetwork),
			HorizonURL:          getEnvString("HORIZON_URL", DefaultHorizonURL),
			Passphrase:          os.Getenv("NETWORK_PASSPHRASE"),
			PrizePoolContractId: os.Getenv("PRIZE_POOL_CONTRACT_ID"),
			HorizonTimeout:      getEnvDuration("HORIZON_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Path:            getEnvString("DATABASE_PATH", "stellarcade.db"),
			MaxOpenConns:    getEnvInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DATABASE_CONN_MAX_IDLE_TIME", 30*time.Second),
			PingTimeout:     getEnvDuration("DATABASE_PING_TIMEOUT", 5*time.Second),
		},
		Server: ServerConfig{
			Port:            getEnvString("PORT", "8080"),
			Debug:           getEnvBool("DEBUG", false),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:     os.Getenv("JWT_SECRET"),
			JWTExpiration: getEnvDuration("JWT_EXPIRATION", 24*time.Hour),
		},
		Assets: AssetsConfig{
			File: getEnvString("ASSETS_FILE", "assets.yaml"),
		},
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
