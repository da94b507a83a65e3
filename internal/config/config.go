package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"

	"github.com/jasalink/service-booking/pkg/database"
)

// Config holds all configuration for the booking service.
type Config struct {
	Port    string
	AppEnv  string
	LogPath string

	DB database.PostgresConfig

	JWTSecret    string
	JWTAccessTTL time.Duration

	KafkaBrokers []string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Lead-time windows for the cancellation/reschedule policy.
	CancelLeadTime     time.Duration
	RescheduleLeadTime time.Duration
}

// Load reads configuration from the environment, with an optional .env file
// for local development.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")

	v.SetDefault("PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_PATH", "logs")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "bookings")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("KAFKA_BROKERS", []string{"localhost:9092"})
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CANCEL_LEAD_TIME", "2h")
	v.SetDefault("RESCHEDULE_LEAD_TIME", "4h")

	// Missing .env is fine; the environment is the source of truth.
	_ = v.ReadInConfig()
	v.AutomaticEnv()

	cfg := &Config{
		Port:    v.GetString("PORT"),
		AppEnv:  v.GetString("APP_ENV"),
		LogPath: v.GetString("LOG_PATH"),
		DB: database.PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		JWTSecret:          v.GetString("JWT_SECRET"),
		JWTAccessTTL:       v.GetDuration("JWT_ACCESS_TTL"),
		KafkaBrokers:       v.GetStringSlice("KAFKA_BROKERS"),
		RedisAddr:          v.GetString("REDIS_ADDR"),
		RedisPassword:      v.GetString("REDIS_PASSWORD"),
		RedisDB:            v.GetInt("REDIS_DB"),
		CancelLeadTime:     v.GetDuration("CANCEL_LEAD_TIME"),
		RescheduleLeadTime: v.GetDuration("RESCHEDULE_LEAD_TIME"),
	}

	if cfg.JWTSecret == "" && cfg.AppEnv != "development" {
		return nil, errors.New("JWT_SECRET is required outside development")
	}
	return cfg, nil
}
