// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Telemetry exporters accepted by OTEL_EXPORTER.
const (
	ExporterNone     = "none"
	ExporterStdout   = "stdout"
	ExporterOTLPHTTP = "otlp-http"
	ExporterOTLPGRPC = "otlp-grpc"
)

var (
	// DefaultExpensePalette colours new expense categories in creation order.
	DefaultExpensePalette = []string{
		"#007180", "#4db6ac", "#80cbc4", "#009688",
		"#26a69a", "#00897b", "#b2dfdb", "#e0f2f1",
	}
	// DefaultIncomePalette colours new income categories in creation order.
	DefaultIncomePalette = []string{
		"#078834", "#10b981", "#059669", "#34d399", "#6ee7b7",
	}

	hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// Config holds all configuration for the application.
type Config struct {
	DatabaseURL string
	LogLevel    string
	LogFormat   string
	LogHashSalt string

	HTTPEnabled bool
	HTTPAddr    string
	APIToken    string

	TelegramBotToken     string
	WhitelistedUserIDs   []int64
	WhitelistedUsernames []string
	GeminiAPIKey         string
	GeminiModel          string

	DailyDigestEnabled bool
	DigestHour         int

	Timezone        string
	Location        *time.Location
	DefaultCurrency string
	ExpensePalette  []string
	IncomePalette   []string

	OTelExporter    string
	OTelServiceName string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		LogFormat:        os.Getenv("LOG_FORMAT"),
		LogHashSalt:      os.Getenv("LOG_HASH_SALT"),
		HTTPEnabled:      os.Getenv("HTTP_ENABLED") != "false",
		HTTPAddr:         envOr("HTTP_ADDR", ":8080"),
		APIToken:         os.Getenv("API_TOKEN"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      os.Getenv("GEMINI_MODEL"),
		DefaultCurrency:  strings.ToUpper(envOr("DEFAULT_CURRENCY", "IDR")),
		OTelExporter:     envOr("OTEL_EXPORTER", ExporterNone),
		OTelServiceName:  envOr("OTEL_SERVICE_NAME", "finflow"),
	}

	cfg.DailyDigestEnabled = os.Getenv("DAILY_DIGEST_ENABLED") == "true"
	cfg.DigestHour = 20
	if hourStr := os.Getenv("DIGEST_HOUR"); hourStr != "" {
		if h, err := strconv.Atoi(hourStr); err == nil && h >= 0 && h <= 23 {
			cfg.DigestHour = h
		}
	}

	cfg.Timezone = "Asia/Jakarta"
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		if _, err := time.LoadLocation(tz); err == nil {
			cfg.Timezone = tz
		}
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.UTC
		cfg.Timezone = "UTC"
	}
	cfg.Location = loc

	cfg.WhitelistedUserIDs = parseInt64List(os.Getenv("WHITELISTED_USER_IDS"))
	cfg.WhitelistedUsernames = parseUsernames(os.Getenv("WHITELISTED_USERNAMES"))

	var paletteErrs []string
	cfg.ExpensePalette, paletteErrs = parsePalette("EXPENSE_PALETTE", DefaultExpensePalette, paletteErrs)
	cfg.IncomePalette, paletteErrs = parsePalette("INCOME_PALETTE", DefaultIncomePalette, paletteErrs)

	if err := cfg.validate(paletteErrs); err != nil {
		return nil, err
	}

	return cfg, nil
}

// BotEnabled reports whether the Telegram front-end should start.
func (c *Config) BotEnabled() bool {
	return c.TelegramBotToken != ""
}

// validate checks that all required configuration is present.
func (c *Config) validate(extra []string) error {
	errs := slices.Clone(extra)

	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}

	if !c.HTTPEnabled && !c.BotEnabled() {
		errs = append(errs, "enable the HTTP API or set TELEGRAM_BOT_TOKEN")
	}

	if c.BotEnabled() && len(c.WhitelistedUserIDs) == 0 && len(c.WhitelistedUsernames) == 0 {
		errs = append(errs, "at least one whitelisted user (WHITELISTED_USER_IDS or WHITELISTED_USERNAMES) is required when the bot is enabled")
	}

	if len(c.DefaultCurrency) != 3 {
		errs = append(errs, "DEFAULT_CURRENCY must be a 3-letter code")
	}

	switch c.OTelExporter {
	case ExporterNone, ExporterStdout, ExporterOTLPHTTP, ExporterOTLPGRPC:
	default:
		errs = append(errs, fmt.Sprintf("OTEL_EXPORTER %q is not one of none, stdout, otlp-http, otlp-grpc", c.OTelExporter))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// IsUserWhitelisted checks if a Telegram user ID or username is in the whitelist.
// Returns true if either the user ID or username is whitelisted.
func (c *Config) IsUserWhitelisted(userID int64, username string) bool {
	if slices.Contains(c.WhitelistedUserIDs, userID) {
		return true
	}

	if username != "" {
		username = strings.TrimPrefix(username, "@")
		for _, whitelisted := range c.WhitelistedUsernames {
			if strings.EqualFold(whitelisted, username) {
				return true
			}
		}
	}

	return false
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseInt64List(raw string) []int64 {
	var ids []int64
	for idStr := range strings.SplitSeq(raw, ",") {
		idStr = strings.TrimSpace(idStr)
		if idStr == "" {
			continue
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func parseUsernames(raw string) []string {
	var names []string
	for username := range strings.SplitSeq(raw, ",") {
		username = strings.TrimSpace(username)
		if username == "" {
			continue
		}
		names = append(names, strings.TrimPrefix(username, "@"))
	}
	return names
}

func parsePalette(key string, fallback []string, errs []string) ([]string, []string) {
	raw := os.Getenv(key)
	if raw == "" {
		return slices.Clone(fallback), errs
	}

	var colors []string
	for color := range strings.SplitSeq(raw, ",") {
		color = strings.TrimSpace(color)
		if color == "" {
			continue
		}
		if !hexColor.MatchString(color) {
			errs = append(errs, fmt.Sprintf("%s contains invalid colour %q", key, color))
			continue
		}
		colors = append(colors, strings.ToLower(color))
	}
	if len(colors) == 0 {
		return slices.Clone(fallback), errs
	}
	return colors, errs
}
