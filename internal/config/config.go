package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the grading API service.
type Config struct {
	AppName              string
	AppEnv               string
	AppPort              string
	DatabaseURL          string
	RedisURL             string
	NATSURL              string
	JWTSecret            string
	EventsChannel        string
	TranscriptCacheTTL   time.Duration
	GradeThreshold       float64
	AttendanceThreshold  int
	DecisionRateLimit    int
	DecisionRateInterval time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("LMS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "LMS Grading API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("events.channel", "lms.grading")
	v.SetDefault("transcript.cache_ttl", "2m")
	v.SetDefault("grade.threshold", 4.0)
	v.SetDefault("attendance.threshold", 75)
	v.SetDefault("decision.rate_limit", 30)
	v.SetDefault("decision.rate_interval", "1m")

	ttl, err := time.ParseDuration(v.GetString("transcript.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid transcript cache ttl: %w", err)
	}

	rateInterval, err := time.ParseDuration(v.GetString("decision.rate_interval"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid decision rate interval: %w", err)
	}

	cfg := Config{
		AppName:              v.GetString("app.name"),
		AppEnv:               v.GetString("app.env"),
		AppPort:              v.GetString("app.port"),
		DatabaseURL:          v.GetString("database.url"),
		RedisURL:             v.GetString("redis.url"),
		NATSURL:              v.GetString("nats.url"),
		JWTSecret:            v.GetString("jwt.secret"),
		EventsChannel:        v.GetString("events.channel"),
		TranscriptCacheTTL:   ttl,
		GradeThreshold:       v.GetFloat64("grade.threshold"),
		AttendanceThreshold:  v.GetInt("attendance.threshold"),
		DecisionRateLimit:    v.GetInt("decision.rate_limit"),
		DecisionRateInterval: rateInterval,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.GradeThreshold <= 0 {
		cfg.GradeThreshold = 4.0
	}
	if cfg.AttendanceThreshold <= 0 || cfg.AttendanceThreshold > 100 {
		cfg.AttendanceThreshold = 75
	}

	return cfg, nil
}
