package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override credentials from the config file.
const (
	EnvOpenAIToken = "OPENAI_API_TOKEN"
	EnvLastFMKey   = "LAST_FM_KEY"
	EnvADBSerial   = "SONGPUSH_ADB_SERIAL"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Output      OutputConfig      `toml:"output"`
	Suggest     SuggestConfig     `toml:"suggest"`
	Credentials CredentialsConfig `toml:"credentials"`
	Tools       ToolsConfig       `toml:"tools"`
	Database    DatabaseConfig    `toml:"database"`
	UI          UIConfig          `toml:"ui"`
	Log         LogConfig         `toml:"log"`
}

// OutputConfig controls where files land and how they are named.
type OutputConfig struct {
	LocalDir      string `toml:"local_dir"`
	DeviceDir     string `toml:"device_dir"`
	AudioFormat   string `toml:"audio_format"`
	AudioQuality  string `toml:"audio_quality"`
	MaxNameLength int    `toml:"max_name_length"`
	UniqueNames   bool   `toml:"unique_names"`
}

// SuggestConfig selects and tunes the similar-song provider.
type SuggestConfig struct {
	Provider       string  `toml:"provider"`
	Count          int     `toml:"count"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	RateLimit      float64 `toml:"rate_limit"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	OpenAI OpenAIConfig `toml:"openai"`
	LastFM LastFMConfig `toml:"lastfm"`
}

// OpenAIConfig contains completion API settings.
type OpenAIConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
}

// LastFMConfig contains Last.fm API settings.
type LastFMConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// ToolsConfig locates the external binaries.
type ToolsConfig struct {
	YtDlpPath              string `toml:"ytdlp_path"`
	ADBPath                string `toml:"adb_path"`
	ADBSerial              string `toml:"adb_serial"`
	DownloadTimeoutSeconds int    `toml:"download_timeout_seconds"`
	TransferTimeoutSeconds int    `toml:"transfer_timeout_seconds"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	PollIntervalMS int  `toml:"poll_interval_ms"`
	Notify         bool `toml:"notify"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks enumerated and numeric settings.
func (c *Config) Validate() error {
	switch c.Suggest.Provider {
	case "openai", "lastfm", "search", "none":
	default:
		return fmt.Errorf("%w: unknown suggest.provider %q", ErrInvalidConfig, c.Suggest.Provider)
	}

	if c.Suggest.Count < 0 {
		return fmt.Errorf("%w: suggest.count must not be negative", ErrInvalidConfig)
	}
	if c.Output.MaxNameLength < 0 {
		return fmt.Errorf("%w: output.max_name_length must not be negative", ErrInvalidConfig)
	}
	if c.UI.PollIntervalMS <= 0 {
		return fmt.Errorf("%w: ui.poll_interval_ms must be positive", ErrInvalidConfig)
	}
	return nil
}

// ApplyEnv loads a .env file from the working directory (if any) and lets
// environment variables override credentials.
func (c *Config) ApplyEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	if v := strings.TrimSpace(os.Getenv(EnvOpenAIToken)); v != "" {
		c.Credentials.OpenAI.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLastFMKey)); v != "" {
		c.Credentials.LastFM.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvADBSerial)); v != "" {
		c.Tools.ADBSerial = v
	}
	return nil
}

// PollInterval returns the UI pump period.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.UI.PollIntervalMS) * time.Millisecond
}

// SuggestTimeout returns the HTTP timeout for suggestion providers.
func (c *Config) SuggestTimeout() time.Duration {
	return seconds(c.Suggest.TimeoutSeconds)
}

// DownloadTimeout returns the download stage timeout, zero when unbounded.
func (c *Config) DownloadTimeout() time.Duration {
	return seconds(c.Tools.DownloadTimeoutSeconds)
}

// TransferTimeout returns the transfer stage timeout, zero when unbounded.
func (c *Config) TransferTimeout() time.Duration {
	return seconds(c.Tools.TransferTimeoutSeconds)
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}
