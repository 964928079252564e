package util

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	AllowedOrigins          []string      `mapstructure:"ALLOWED_ORIGINS"`
	DatabaseURL             string        `mapstructure:"DATABASE_URL"`
	HTTPServerAddress       string        `mapstructure:"HTTP_SERVER_ADDRESS"`
	TokenSecretKey          string        `mapstructure:"TOKEN_SECRET_KEY"`
	AccessTokenDuration     time.Duration `mapstructure:"ACCESS_TOKEN_DURATION"`
	RedisServerAddress      string        `mapstructure:"REDIS_SERVER_ADDRESS"`
	NotificationSink        string        `mapstructure:"NOTIFICATION_SINK"`
	NotificationWebhookURL  string        `mapstructure:"NOTIFICATION_WEBHOOK_URL"`
	FirebaseCredentialsFile string        `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	BidSweepInterval        time.Duration `mapstructure:"BID_SWEEP_INTERVAL"`
	DefaultBidTTLMinutes    int64         `mapstructure:"DEFAULT_BID_TTL_MINUTES"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	// Set defaults for non-sensitive config
	viper.SetDefault("ALLOWED_ORIGINS", []string{"http://localhost:3000"})
	viper.SetDefault("HTTP_SERVER_ADDRESS", "0.0.0.0:8080")
	viper.SetDefault("ACCESS_TOKEN_DURATION", "24h")
	viper.SetDefault("NOTIFICATION_SINK", "webhook")
	viper.SetDefault("BID_SWEEP_INTERVAL", "1m")
	viper.SetDefault("DEFAULT_BID_TTL_MINUTES", 60)

	// Prefer environment variables over config file
	viper.AutomaticEnv()

	// Load config file
	viper.SetConfigFile(path)
	if err = viper.ReadInConfig(); err != nil {
		return
	}

	// Unmarshal config into struct
	err = viper.UnmarshalExact(&config)
	if err != nil {
		return
	}

	// Validate required configuration
	err = validateConfig(config)
	return
}

func validateConfig(config Config) error {
	if config.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if config.TokenSecretKey == "" {
		return fmt.Errorf("TOKEN_SECRET_KEY is required")
	}
	if config.RedisServerAddress == "" {
		return fmt.Errorf("REDIS_SERVER_ADDRESS is required")
	}
	switch config.NotificationSink {
	case "webhook":
		if config.NotificationWebhookURL == "" {
			return fmt.Errorf("NOTIFICATION_WEBHOOK_URL is required when NOTIFICATION_SINK is webhook")
		}
	case "firestore":
		if config.FirebaseCredentialsFile == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_FILE is required when NOTIFICATION_SINK is firestore")
		}
	case "none":
	default:
		return fmt.Errorf("NOTIFICATION_SINK must be one of webhook, firestore, none")
	}

	return nil
}
