package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	LogLevel               string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	ChannelBase            string
	JWTSecret              string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	UploadMaxSizeMB        int
	SendgridAPIKey         string
	MailFromAddress        string
	RollbarToken           string
	DashboardCacheTTL      time.Duration
	LeaderboardCacheTTL    time.Duration
	NotificationKeepAlive  time.Duration
	MatchThreshold         float64
	PomodoroMinutes        int
	PomodoroBreakMinutes   int
	VideoRoomBaseURL       string
	RateLimitMax           int
	RateLimitWindow        time.Duration
	SeedToken              string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// IsProduction reports whether the service runs in the production environment.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SPRINT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Sprint Connect API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.url", "sqlite://sprint_connect.db")
	v.SetDefault("channel.base", "sprint")
	v.SetDefault("cloudinary.folder", "sprint/resources")
	v.SetDefault("upload.max_size_mb", 10)
	v.SetDefault("mail.from", "no-reply@sprintconnect.app")
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("leaderboard.cache_ttl", "1m")
	v.SetDefault("notification.keepalive", "30s")
	v.SetDefault("matching.threshold", 0.4)
	v.SetDefault("pomodoro.minutes", 25)
	v.SetDefault("pomodoro.break_minutes", 5)
	v.SetDefault("video.base_url", "https://meet.jit.si")
	v.SetDefault("rate_limit.max", 60)
	v.SetDefault("rate_limit.window", "1m")

	durations := map[string]time.Duration{}
	for key, fallback := range map[string]time.Duration{
		"dashboard.cache_ttl":    5 * time.Minute,
		"leaderboard.cache_ttl":  time.Minute,
		"notification.keepalive": 30 * time.Second,
		"rate_limit.window":      time.Minute,
	} {
		raw := strings.TrimSpace(v.GetString(key))
		if raw == "" {
			durations[key] = fallback
			continue
		}
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", key, err)
		}
		durations[key] = parsed
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		LogLevel:               strings.ToLower(v.GetString("log.level")),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		ChannelBase:            v.GetString("channel.base"),
		JWTSecret:              v.GetString("jwt.secret"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		UploadMaxSizeMB:        v.GetInt("upload.max_size_mb"),
		SendgridAPIKey:         v.GetString("sendgrid.api_key"),
		MailFromAddress:        v.GetString("mail.from"),
		RollbarToken:           v.GetString("rollbar.token"),
		DashboardCacheTTL:      durations["dashboard.cache_ttl"],
		LeaderboardCacheTTL:    durations["leaderboard.cache_ttl"],
		NotificationKeepAlive:  durations["notification.keepalive"],
		MatchThreshold:         v.GetFloat64("matching.threshold"),
		PomodoroMinutes:        v.GetInt("pomodoro.minutes"),
		PomodoroBreakMinutes:   v.GetInt("pomodoro.break_minutes"),
		VideoRoomBaseURL:       strings.TrimRight(v.GetString("video.base_url"), "/"),
		RateLimitMax:           v.GetInt("rate_limit.max"),
		RateLimitWindow:        durations["rate_limit.window"],
		SeedToken:              v.GetString("seed.token"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.MatchThreshold < 0 || cfg.MatchThreshold > 1 {
		return Config{}, fmt.Errorf("matching threshold must be within [0,1], got %v", cfg.MatchThreshold)
	}

	if cfg.UploadMaxSizeMB <= 0 {
		cfg.UploadMaxSizeMB = 10
	}

	if cfg.PomodoroMinutes <= 0 {
		cfg.PomodoroMinutes = 25
	}

	if cfg.PomodoroBreakMinutes < 0 {
		cfg.PomodoroBreakMinutes = 5
	}

	return cfg, nil
}
