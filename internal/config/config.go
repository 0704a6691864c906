package config

import (
	"time"

	"github.com/tripweave/service-booking/internal/platform/config"
)

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port            string
	AppEnv          string
	DBConfig        config.DatabaseConfig
	JWTConfig       config.JWTConfig
	KafkaConfig     config.KafkaConfig
	MailFromAddress string
	SweepInterval   time.Duration
	SweepStaleHours int
}

// Load reads configuration from environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("BOOKING")
	if err != nil {
		return nil, err
	}

	v.SetDefault("MAIL_FROM", "bookings@tripweave.io")
	v.SetDefault("SWEEP_INTERVAL_MINUTES", 10)
	v.SetDefault("SWEEP_STALE_HOURS", 3)

	return &ServiceConfig{
		Port:            config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:          config.GetAppEnv(v),
		DBConfig:        config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:       config.LoadJWTConfig(v),
		KafkaConfig:     config.LoadKafkaConfig(v),
		MailFromAddress: v.GetString("MAIL_FROM"),
		SweepInterval:   time.Duration(v.GetInt("SWEEP_INTERVAL_MINUTES")) * time.Minute,
		SweepStaleHours: v.GetInt("SWEEP_STALE_HOURS"),
	}, nil
}
