package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// FileEnvVar names an optional YAML file layered under the environment
const FileEnvVar = "BOT_CONFIG_FILE"

// Config holds all configuration values for the bot
type Config struct {
	Discord  DiscordConfig  `koanf:"discord"`
	StatsAPI StatsAPIConfig `koanf:"statsapi"`
	HTTP     HTTPConfig     `koanf:"http"`
	Display  DisplayConfig  `koanf:"display"`
	Quote    QuoteConfig    `koanf:"quote"`
	Database DatabaseConfig `koanf:"database"`
	AWS      AWSConfig      `koanf:"aws"`
	Intent   IntentConfig   `koanf:"intent"`
	Announce AnnounceConfig `koanf:"announce"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Log      LogConfig      `koanf:"log"`
}

type DiscordConfig struct {
	Token  string `koanf:"token"`
	Prefix string `koanf:"prefix"`
}

type StatsAPIConfig struct {
	BaseURL string `koanf:"base_url"`
	Season  int    `koanf:"season"` // 0 means the current year
}

type HTTPConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

type DisplayConfig struct {
	UTCOffsetHours int `koanf:"utc_offset_hours"`
}

type QuoteConfig struct {
	URL string `koanf:"url"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

type AWSConfig struct {
	Region          string `koanf:"region"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
	LogTable        string `koanf:"log_table"`
}

type IntentConfig struct {
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`
	BaseURL string `koanf:"base_url"`
}

type AnnounceConfig struct {
	ChannelID      string `koanf:"channel_id"`
	Time           string `koanf:"time"` // HH:MM
	UTCOffsetHours int    `koanf:"utc_offset_hours"`
	Title          string `koanf:"title"`
}

type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

// envKeys maps environment variables onto config keys
var envKeys = map[string]string{
	"DISCORD_BOT_TOKEN":         "discord.token",
	"COMMAND_PREFIX":            "discord.prefix",
	"MLB_API_BASE_URL":          "statsapi.base_url",
	"MLB_SEASON":                "statsapi.season",
	"HTTP_TIMEOUT":              "http.timeout",
	"DISPLAY_UTC_OFFSET_HOURS":  "display.utc_offset_hours",
	"QUOTE_URL":                 "quote.url",
	"DATABASE_PATH":             "database.path",
	"AWS_REGION":                "aws.region",
	"AWS_ACCESS_KEY_ID":         "aws.access_key_id",
	"AWS_SECRET_ACCESS_KEY":     "aws.secret_access_key",
	"LOG_TABLE":                 "aws.log_table",
	"OPENAI_API_KEY":            "intent.api_key",
	"OPENAI_MODEL":              "intent.model",
	"OPENAI_BASE_URL":           "intent.base_url",
	"ANNOUNCE_CHANNEL_ID":       "announce.channel_id",
	"ANNOUNCE_TIME":             "announce.time",
	"ANNOUNCE_UTC_OFFSET_HOURS": "announce.utc_offset_hours",
	"ANNOUNCE_TITLE":            "announce.title",
	"METRICS_ADDR":              "metrics.addr",
	"LOG_LEVEL":                 "log.level",
}

// Default returns the configuration used when nothing overrides a key
func Default() *Config {
	return &Config{
		Discord:  DiscordConfig{Prefix: "!"},
		StatsAPI: StatsAPIConfig{BaseURL: "https://statsapi.mlb.com"},
		HTTP:     HTTPConfig{Timeout: 10 * time.Second},
		Display:  DisplayConfig{UTCOffsetHours: 8},
		Database: DatabaseConfig{Path: "./data/bot.db"},
		AWS:      AWSConfig{Region: "ap-northeast-1", LogTable: "mlb_bot_logs"},
		Intent:   IntentConfig{Model: "gpt-4o-mini"},
		Announce: AnnounceConfig{Time: "14:25", UTCOffsetHours: 8, Title: "Good night!"},
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads and validates the configuration for running the bot
func Load() (*Config, error) {
	cfg, err := LoadEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnv reads .env, the optional YAML file named by BOT_CONFIG_FILE and
// the environment, in increasing precedence. Nothing is validated.
func LoadEnv() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	return LoadFile(os.Getenv(FileEnvVar))
}

// LoadFile layers path (if non-empty) and the environment over Default
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return envKeys[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration contains valid values
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("DISCORD_BOT_TOKEN is required")
	}
	if c.Discord.Prefix == "" || strings.ContainsAny(c.Discord.Prefix, " \t\n") {
		return fmt.Errorf("invalid COMMAND_PREFIX %q", c.Discord.Prefix)
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Season() < 0 {
		return fmt.Errorf("MLB_SEASON must not be negative")
	}
	if err := validOffset(c.Display.UTCOffsetHours); err != nil {
		return fmt.Errorf("DISPLAY_UTC_OFFSET_HOURS: %w", err)
	}
	if err := validOffset(c.Announce.UTCOffsetHours); err != nil {
		return fmt.Errorf("ANNOUNCE_UTC_OFFSET_HOURS: %w", err)
	}
	if _, _, err := c.AnnounceClock(); err != nil {
		return err
	}
	return nil
}

// Season returns the configured season, 0 meaning the current year
func (c *Config) Season() int {
	return c.StatsAPI.Season
}

// DisplayLocation is the fixed zone used for "today" and rendered times
func (c *Config) DisplayLocation() *time.Location {
	return fixedZone(c.Display.UTCOffsetHours)
}

// AnnounceLocation is the fixed zone the announcement time is given in
func (c *Config) AnnounceLocation() *time.Location {
	return fixedZone(c.Announce.UTCOffsetHours)
}

// AnnounceClock parses announce.time
func (c *Config) AnnounceClock() (hour, minute int, err error) {
	t, err := time.Parse("15:04", c.Announce.Time)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid ANNOUNCE_TIME %q, expected HH:MM", c.Announce.Time)
	}
	return t.Hour(), t.Minute(), nil
}

// AnnounceEnabled reports whether a channel is configured
func (c *Config) AnnounceEnabled() bool {
	return c.Announce.ChannelID != ""
}

// DynamoEnabled reports whether command logs also go to DynamoDB
func (c *Config) DynamoEnabled() bool {
	return c.AWS.AccessKeyID != "" && c.AWS.SecretAccessKey != ""
}

// IntentEnabled reports whether mentions are routed through the chat model
func (c *Config) IntentEnabled() bool {
	return c.Intent.APIKey != ""
}

func validOffset(hours int) error {
	if hours < -12 || hours > 14 {
		return fmt.Errorf("offset %d out of range", hours)
	}
	return nil
}

func fixedZone(hours int) *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", hours), hours*60*60)
}
