package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"slices"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	DefaultDurationThreshold = 10.0
	DefaultBitrate           = 320
	DefaultWorkers           = 4
	MaxWorkers               = 16
	DefaultSearchRate        = 5.0
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Download    DownloadConfig    `toml:"download"`
	Matching    MatchingConfig    `toml:"matching"`
	Playlists   PlaylistsConfig   `toml:"playlists"`
	Credentials CredentialsConfig `toml:"credentials"`
	Tools       ToolsConfig       `toml:"tools"`
	Database    DatabaseConfig    `toml:"database"`
}

// DownloadConfig controls where and how audio files are written.
type DownloadConfig struct {
	Root      string `toml:"root"`
	Container string `toml:"container"`
	Bitrate   int    `toml:"bitrate"`
	Workers   int    `toml:"workers"`
}

// MatchingConfig tunes the candidate classifier.
type MatchingConfig struct {
	DurationThreshold     float64 `toml:"duration_threshold"`
	AllowForbiddenWording bool    `toml:"allow_forbidden_wording"`
	SearchRate            float64 `toml:"search_rate"`
}

// PlaylistsConfig lists the Spotify playlist IDs to reconcile, in order.
type PlaylistsConfig struct {
	IDs []string `toml:"ids"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	YouTube YouTubeConfig `toml:"youtube"`
}

// SpotifyConfig contains Spotify API client credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// YouTubeConfig points at the YouTube Music search proxy.
type YouTubeConfig struct {
	ProxyURL string `toml:"proxy_url"`
}

// ToolsConfig names the external executables.
type ToolsConfig struct {
	FFmpeg string `toml:"ffmpeg"`
	YTDLP  string `toml:"ytdlp"`
}

// DatabaseConfig contains the optional run history database location.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
// Missing keys fall back to the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
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

// Normalize replaces out-of-range values with their defaults.
func (c *Config) Normalize() {
	if c.Matching.DurationThreshold <= 0 {
		c.Matching.DurationThreshold = DefaultDurationThreshold
	}
	if c.Matching.SearchRate <= 0 {
		c.Matching.SearchRate = DefaultSearchRate
	}
	if c.Download.Bitrate <= 0 || c.Download.Bitrate > DefaultBitrate {
		c.Download.Bitrate = DefaultBitrate
	}
	switch {
	case c.Download.Workers <= 0:
		c.Download.Workers = DefaultWorkers
	case c.Download.Workers > MaxWorkers:
		c.Download.Workers = MaxWorkers
	}
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = "ffmpeg"
	}
	if c.Tools.YTDLP == "" {
		c.Tools.YTDLP = "yt-dlp"
	}
}

// Validate reports configuration that must abort a run before any work starts.
func (c *Config) Validate() error {
	if !slices.Contains([]string{"mp3", "flac"}, c.Download.Container) {
		return fmt.Errorf("%w: unsupported audio container %q", ErrInvalidConfig, c.Download.Container)
	}
	if c.Download.Root == "" {
		return fmt.Errorf("%w: download root is empty", ErrInvalidConfig)
	}
	if c.Credentials.Spotify.ClientID == "" || c.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: %w: spotify client_id and client_secret are required", ErrInvalidConfig, ErrMissingCredentials)
	}
	if c.Credentials.YouTube.ProxyURL == "" {
		return fmt.Errorf("%w: youtube proxy_url is required", ErrInvalidConfig)
	}
	return nil
}

// SaveConfig rewrites the configuration file at path.
func SaveConfig(path string, c *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
