package utils

import (
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Razorpay RazorpayConfig
	Queue    QueueConfig
	Payout   PayoutConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type RazorpayConfig struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
}

type QueueConfig struct {
	URL         string
	Exchange    string
	PayoutQueue string
	// Concurrency bounds the payout worker pool; MaxAttempts and
	// RetryBackoffSec shape the redelivery schedule before a job is
	// declared permanently failed.
	Concurrency     int
	MaxAttempts     int
	RetryBackoffSec int
}

type PayoutConfig struct {
	CommissionRatePct float64
	// AmountTolerance is the acceptable gap between the gateway captured
	// amount and the booking amount, in currency units
	AmountTolerance float64
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("AMQP_EXCHANGE", "academy.payments")
	viper.SetDefault("PAYOUT_QUEUE", "payout.create")
	viper.SetDefault("PAYOUT_CONCURRENCY", 2)
	viper.SetDefault("PAYOUT_MAX_ATTEMPTS", 5)
	viper.SetDefault("PAYOUT_RETRY_BACKOFF_SEC", 30)
	viper.SetDefault("COMMISSION_RATE_PCT", 10.0)
	viper.SetDefault("AMOUNT_TOLERANCE", 0.01)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Razorpay: RazorpayConfig{
			KeyID:         viper.GetString("RAZORPAY_KEY_ID"),
			KeySecret:     viper.GetString("RAZORPAY_KEY_SECRET"),
			WebhookSecret: viper.GetString("RAZORPAY_WEBHOOK_SECRET"),
		},
		Queue: QueueConfig{
			URL:             viper.GetString("AMQP_URL"),
			Exchange:        viper.GetString("AMQP_EXCHANGE"),
			PayoutQueue:     viper.GetString("PAYOUT_QUEUE"),
			Concurrency:     viper.GetInt("PAYOUT_CONCURRENCY"),
			MaxAttempts:     viper.GetInt("PAYOUT_MAX_ATTEMPTS"),
			RetryBackoffSec: viper.GetInt("PAYOUT_RETRY_BACKOFF_SEC"),
		},
		Payout: PayoutConfig{
			CommissionRatePct: viper.GetFloat64("COMMISSION_RATE_PCT"),
			AmountTolerance:   viper.GetFloat64("AMOUNT_TOLERANCE"),
		},
	}

	return config, nil
}
