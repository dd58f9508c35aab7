package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the marketplace API.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	JWTSecret              string
	JWTRefreshSecret       string
	AccessTokenTTL         time.Duration
	RefreshTokenTTL        time.Duration
	OTPTTL                 time.Duration
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	UploadMaxMB            int
	ChatPageSize           int
	ChatCacheTTL           time.Duration
	TypingWindow           time.Duration
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
	v.SetEnvPrefix("JORHATX")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Jorhatx API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("access_token_ttl", "15m")
	v.SetDefault("refresh_token_ttl", "168h")
	v.SetDefault("otp_ttl", "10m")
	v.SetDefault("cloudinary.folder", "jorhatx/listings")
	v.SetDefault("upload_max_mb", 10)
	v.SetDefault("chat.page_size", 500)
	v.SetDefault("chat.cache_ttl", "30m")
	v.SetDefault("chat.typing_window", "3s")

	accessTTL, err := time.ParseDuration(v.GetString("access_token_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid access token ttl: %w", err)
	}

	refreshTTL, err := time.ParseDuration(v.GetString("refresh_token_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid refresh token ttl: %w", err)
	}

	otpTTL, err := time.ParseDuration(v.GetString("otp_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid otp ttl: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("chat.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid chat cache ttl: %w", err)
	}

	typingWindow, err := time.ParseDuration(v.GetString("chat.typing_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid typing window: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		JWTRefreshSecret:       v.GetString("jwt.refresh_secret"),
		AccessTokenTTL:         accessTTL,
		RefreshTokenTTL:        refreshTTL,
		OTPTTL:                 otpTTL,
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		UploadMaxMB:            v.GetInt("upload_max_mb"),
		ChatPageSize:           v.GetInt("chat.page_size"),
		ChatCacheTTL:           cacheTTL,
		TypingWindow:           typingWindow,
	}

	if cfg.JWTSecret == "" || cfg.JWTRefreshSecret == "" {
		return Config{}, fmt.Errorf("jwt secrets must be provided")
	}

	if cfg.UploadMaxMB <= 0 {
		cfg.UploadMaxMB = 10
	}

	if cfg.ChatPageSize <= 0 {
		cfg.ChatPageSize = 500
	}

	if cfg.TypingWindow <= 0 {
		cfg.TypingWindow = 3 * time.Second
	}

	return cfg, nil
}
