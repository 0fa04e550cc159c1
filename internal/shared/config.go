package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Server      ServerConfig      `toml:"server"`
	Limits      LimitsConfig      `toml:"limits"`
	Page        PageConfig        `toml:"page"`
}

// CredentialsConfig contains the Spotify application credentials and the long-lived refresh token.
type CredentialsConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RefreshToken string `toml:"refresh_token"`
	Scope        string `toml:"scope"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Public       bool   `toml:"public"`
	AccessSecret string `toml:"access_secret"`
}

// LimitsConfig contains inbound and outbound rate limit settings.
type LimitsConfig struct {
	WindowSeconds     int     `toml:"window_seconds"`
	MaxRequests       int     `toml:"max_requests"`
	UpstreamPerSecond float64 `toml:"upstream_per_second"`
}

// PageConfig contains settings for the HTML polling page.
type PageConfig struct {
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path, then applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.ApplyEnv()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
//
// Environment overrides are applied, so a credential-free config file still works in containerized deployments.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.ApplyEnv()
	return &config
}

// LoadEnvFile loads a .env file into the process environment if one exists at path.
func LoadEnvFile(path string) {
	if _, err := os.Stat(path); err == nil {
		_ = godotenv.Load(path)
	}
}

// ApplyEnv overrides config values from NOWPLAY_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("NOWPLAY_CLIENT_ID"); v != "" {
		c.Credentials.ClientID = v
	}
	if v := os.Getenv("NOWPLAY_CLIENT_SECRET"); v != "" {
		c.Credentials.ClientSecret = v
	}
	if v := os.Getenv("NOWPLAY_REFRESH_TOKEN"); v != "" {
		c.Credentials.RefreshToken = v
	}
	if v := os.Getenv("NOWPLAY_SCOPE"); v != "" {
		c.Credentials.Scope = v
	}
	if v := os.Getenv("NOWPLAY_ACCESS_SECRET"); v != "" {
		c.Server.AccessSecret = v
		c.Server.Public = false
	}
	if v := os.Getenv("NOWPLAY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

// ValidateCredentials checks that all three upstream credentials are present.
//
// Absence of any is a fatal startup condition for the relay.
func (c *Config) ValidateCredentials() error {
	if c.Credentials.ClientID == "" || c.Credentials.ClientID == "your_spotify_client_id" {
		return fmt.Errorf("%w: client_id", ErrMissingCredentials)
	}
	if c.Credentials.ClientSecret == "" || c.Credentials.ClientSecret == "your_spotify_client_secret" {
		return fmt.Errorf("%w: client_secret", ErrMissingCredentials)
	}
	if c.Credentials.RefreshToken == "" || c.Credentials.RefreshToken == "your_spotify_refresh_token" {
		return fmt.Errorf("%w: refresh_token", ErrMissingCredentials)
	}
	return nil
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
