package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

// RewardConfig holds the point amounts granted per business event. The
// points core treats these as opaque numbers; only the order and rating
// flows consume them.
type RewardConfig struct {
	OrderPlaced     int64 `toml:"order_placed"`
	OrderDelivered  int64 `toml:"order_delivered"`
	RatingSubmitted int64 `toml:"rating_submitted"`

	// Points for placing an order are held pending for this long before
	// the settlement sweep applies them.
	OrderPlacedHold time.Duration `toml:"-"`
	// Pending order points lapse if not settled within this window.
	OrderPlacedExpiry time.Duration `toml:"-"`
}

// Config holds all application configuration.
type Config struct {
	// Database configuration
	DatabaseURL string

	// HTTP server
	ListenAddr string

	// Auth
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Settlement job
	SettlementInterval time.Duration

	// Loyalty rewards
	Rewards RewardConfig

	// Push notification fanout; disabled when empty
	AMQPUrl      string
	PushExchange string

	// Logging
	LogFile  string
	LogLevel string

	// Environment: "development", "production" or "test"
	Environment string
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance.
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables, with reward amounts
// optionally overridden from a TOML file.
func load() (*Config, error) {
	config := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		ListenAddr:  getEnv("LISTEN_ADDR", ":3000"),

		JWTSecret:       os.Getenv("JWT_SECRET"),
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,

		SettlementInterval: 10 * time.Minute,

		Rewards: RewardConfig{
			OrderPlaced:       50,
			OrderDelivered:    100,
			RatingSubmitted:   20,
			OrderPlacedHold:   24 * time.Hour,
			OrderPlacedExpiry: 30 * 24 * time.Hour,
		},

		AMQPUrl:      os.Getenv("AMQP_URL"),
		PushExchange: getEnv("PUSH_EXCHANGE", "gaznger.push"),

		LogFile:  os.Getenv("LOG_FILE"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if interval := os.Getenv("SETTLEMENT_INTERVAL_MINUTES"); interval != "" {
		if parsed, err := strconv.Atoi(interval); err == nil && parsed > 0 {
			config.SettlementInterval = time.Duration(parsed) * time.Minute
		}
	}
	if hold := os.Getenv("ORDER_POINTS_HOLD_HOURS"); hold != "" {
		if parsed, err := strconv.Atoi(hold); err == nil && parsed >= 0 {
			config.Rewards.OrderPlacedHold = time.Duration(parsed) * time.Hour
		}
	}

	// Reward amounts are business-configured; a TOML file wins over the
	// built-in defaults.
	if path := os.Getenv("REWARDS_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, &config.Rewards); err != nil {
			return nil, fmt.Errorf("failed to load rewards config %s: %w", path, err)
		}
	}

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required")
		}
	}

	return config, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
