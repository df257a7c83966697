package quill

import (
	"encoding/json"
	"os"
	"path/filepath"

	defaults "github.com/quill-vim/quill/default"
)

// Config represents the user's quill configuration.
type Config struct {
	Version int          `json:"version"`
	API     APIConfig    `json:"api"`
	Limits  LimitsConfig `json:"limits"`
}

// APIConfig holds settings for the generation API.
type APIConfig struct {
	// Endpoint is the generateContent URL of the service.
	Endpoint string `json:"endpoint"`
	// APIKey is the fallback credential; environment variables win.
	APIKey string `json:"api_key,omitempty"`
	// Transport selects how requests are issued: "http" (built-in
	// client) or "curl" (external process).
	Transport string `json:"transport,omitempty"`
	// CurlBinary is the executable used by the curl transport.
	CurlBinary string `json:"curl_binary,omitempty"`
	// TimeoutSeconds bounds one HTTP attempt; 0 means the built-in default.
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`
}

// LimitsConfig holds input size limits.
type LimitsConfig struct {
	// MaxInputLength is the byte cap applied to outgoing body text.
	// Longer input is truncated with a warning.
	MaxInputLength int `json:"max_input_length,omitempty"`
}

// Transport values accepted in APIConfig.Transport.
const (
	TransportHTTP = "http"
	TransportCurl = "curl"
)

// ConfigDir returns the config directory path.
// Resolution order: $QUILL_CONFIG_DIR > $XDG_CONFIG_HOME/quill > ~/.config/quill
func ConfigDir() string {
	if dir := os.Getenv("QUILL_CONFIG_DIR"); dir != "" {
		return dir
	}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "quill")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("/tmp", "quill-config")
	}
	return filepath.Join(home, ".config", "quill")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// PromptPath returns the custom default prompt file path.
func PromptPath() string {
	return filepath.Join(ConfigDir(), "prompt.md")
}

// PresetsPath returns the prompt presets file path.
func PresetsPath() string {
	return filepath.Join(ConfigDir(), "presets.toml")
}

// DefaultConfig returns the default configuration from the embedded default_config.json.
func DefaultConfig() *Config {
	var cfg Config
	if err := json.Unmarshal(defaults.DefaultConfigJSON, &cfg); err != nil {
		panic("quill: invalid embedded default_config.json: " + err.Error())
	}
	return &cfg
}

// LoadConfig loads config from disk or returns defaults if not found.
func LoadConfig() (*Config, error) {
	path := ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Apply defaults for missing fields
	defaults := DefaultConfig()
	if cfg.API.Endpoint == "" {
		cfg.API.Endpoint = defaults.API.Endpoint
	}
	if cfg.API.Transport == "" {
		cfg.API.Transport = defaults.API.Transport
	}
	if cfg.API.CurlBinary == "" {
		cfg.API.CurlBinary = defaults.API.CurlBinary
	}
	if cfg.API.TimeoutSeconds == 0 {
		cfg.API.TimeoutSeconds = defaults.API.TimeoutSeconds
	}
	if cfg.Limits.MaxInputLength == 0 {
		cfg.Limits.MaxInputLength = defaults.Limits.MaxInputLength
	}

	return &cfg, nil
}

// ValidateConfig checks configuration for potential issues and returns warnings.
func ValidateConfig(cfg *Config) []string {
	var warnings []string
	if cfg == nil {
		return warnings
	}
	if t := ResolveTransport(cfg); t != TransportHTTP && t != TransportCurl {
		warnings = append(warnings, "unknown transport "+t+"; falling back to http")
	}
	if cfg.Limits.MaxInputLength < 0 {
		warnings = append(warnings, "max_input_length is negative; input truncation disabled")
	}
	return warnings
}

// ResolveEndpoint returns the generation API endpoint URL.
// Priority: $QUILL_API_ENDPOINT env > config value.
func ResolveEndpoint(cfg *Config) string {
	if url := os.Getenv("QUILL_API_ENDPOINT"); url != "" {
		return url
	}
	if cfg != nil {
		return cfg.API.Endpoint
	}
	return ""
}

// ResolveAPIKey returns the generation API key.
// Priority: $QUILL_API_KEY env > $GEMINI_API_KEY env > config value.
// Callers read this at request time; an empty result means no request
// may be attempted.
func ResolveAPIKey(cfg *Config) string {
	if key := os.Getenv("QUILL_API_KEY"); key != "" {
		return key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	if cfg != nil {
		return cfg.API.APIKey
	}
	return ""
}

// ResolveTransport returns the transport name.
// Priority: $QUILL_TRANSPORT env > config value > "http".
func ResolveTransport(cfg *Config) string {
	if t := os.Getenv("QUILL_TRANSPORT"); t != "" {
		return t
	}
	if cfg != nil && cfg.API.Transport != "" {
		return cfg.API.Transport
	}
	return TransportHTTP
}
