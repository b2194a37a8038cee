package config

import (
	"errors"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	DBURL        string `mapstructure:"DB_URL"`
	RedisAddr    string `mapstructure:"REDIS_ADDR"`
	MQTTBroker   string `mapstructure:"MQTT_BROKER"`
	MQTTClientID string `mapstructure:"MQTT_CLIENT_ID"`
	HTTPAddr     string `mapstructure:"HTTP_ADDR"`
	LogLevel     string `mapstructure:"LOG_LEVEL"`
	JWTSecret    string `mapstructure:"JWT_SECRET"`
	EvalCron     string `mapstructure:"EVAL_CRON"`
}

// LoadConfig reads configuration from file, .env, or env vars.
// A missing DB URL or JWT secret is fatal: tokens signed with a generated
// secret would be invalidated across restarts.
func LoadConfig() (*Config, error) {
	// .env is optional; real deployments set env vars directly
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig()

	viper.SetDefault("HTTP_ADDR", ":8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MQTT_CLIENT_ID", "energymon-backend")
	viper.SetDefault("EVAL_CRON", "@every 5m")

	cfg := &Config{
		DBURL:        viper.GetString("DB_URL"),
		RedisAddr:    viper.GetString("REDIS_ADDR"),
		MQTTBroker:   viper.GetString("MQTT_BROKER"),
		MQTTClientID: viper.GetString("MQTT_CLIENT_ID"),
		HTTPAddr:     viper.GetString("HTTP_ADDR"),
		LogLevel:     viper.GetString("LOG_LEVEL"),
		JWTSecret:    viper.GetString("JWT_SECRET"),
		EvalCron:     viper.GetString("EVAL_CRON"),
	}

	if cfg.DBURL == "" {
		return nil, errors.New("DB_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	return cfg, nil
}
