// Package config provides configuration management for the OCI GenAI chat application.
// Configuration is assembled once at startup from defaults, an optional YAML file,
// and environment variables, then validated and passed to every component by value.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported credential sources.
const (
	AuthConfigFile        = "config_file"
	AuthInstancePrincipal = "instance_principal"
)

// DefaultEndpoint is the Chicago region inference endpoint.
const DefaultEndpoint = "https://inference.generativeai.us-chicago-1.oci.oraclecloud.com"

// Config represents the application configuration with all available options.
type Config struct {
	// Profile is the section of the OCI credential file to read.
	Profile string `yaml:"profile"`

	// ConfigPath is the location of the OCI credential file. A leading "~" is
	// expanded to the user's home directory.
	ConfigPath string `yaml:"config_path"`

	// Endpoint is the region-specific inference URL.
	Endpoint string `yaml:"endpoint"`

	// CompartmentID is the OCI compartment the calls are billed to.
	// This is required.
	CompartmentID string `yaml:"compartment_id"`

	// ModelID is the OCID or name of the on-demand model.
	// This is required.
	ModelID string `yaml:"model_id"`

	// AuthType selects where credentials come from: "config_file" or
	// "instance_principal".
	AuthType string `yaml:"auth_type"`

	// MaxTokens is the default maximum number of tokens to generate.
	MaxTokens int `yaml:"max_tokens"`

	// Temperature controls the randomness of the responses.
	// Range: 0.0 (deterministic) to 2.0 (very random). Default: 1.0
	Temperature float64 `yaml:"temperature"`

	// TopP controls nucleus sampling.
	// Range: 0.0 to 1.0. Default: 0.75
	TopP float64 `yaml:"top_p"`

	// FrequencyPenalty reduces repetition based on token frequency.
	// Range: -2.0 to 2.0. Default: 0.0
	FrequencyPenalty float64 `yaml:"frequency_penalty"`

	// PresencePenalty reduces repetition based on token presence.
	// Range: -2.0 to 2.0. Default: 0.0
	PresencePenalty float64 `yaml:"presence_penalty"`

	// TopK limits sampling to the K most likely tokens. 0 leaves it unset.
	TopK int `yaml:"top_k"`

	// ConnectTimeout bounds establishing the connection to the endpoint.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// ReadTimeout bounds waiting for the endpoint's response.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// ListenAddr is the address the web server binds to.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// New creates a new configuration with the defaults of the reference deployment.
func New() Config {
	return Config{
		Profile:          "DEFAULT",
		ConfigPath:       "~/.oci/config",
		Endpoint:         DefaultEndpoint,
		AuthType:         AuthConfigFile,
		MaxTokens:        600,
		Temperature:      1.0,
		TopP:             0.75,
		FrequencyPenalty: 0.0,
		PresencePenalty:  0.0,
		TopK:             0,
		ConnectTimeout:   10 * time.Second,
		ReadTimeout:      240 * time.Second,
		ListenAddr:       ":8080",
		LogLevel:         "info",
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if path
// is not empty), then environment overrides. The result is validated.
func Load(path string) (Config, error) {
	cfg := New()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	strs := map[string]*string{
		"PROFILE":        &c.Profile,
		"CONFIG_PATH":    &c.ConfigPath,
		"ENDPOINT":       &c.Endpoint,
		"COMPARTMENT_ID": &c.CompartmentID,
		"MODEL_ID":       &c.ModelID,
		"AUTH_TYPE":      &c.AuthType,
		"LISTEN_ADDR":    &c.ListenAddr,
		"LOG_LEVEL":      &c.LogLevel,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("MAX_TOKENS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MAX_TOKENS must be an integer, got %q", v)
		}
		c.MaxTokens = n
	}

	floats := map[string]*float64{
		"TEMPERATURE": &c.Temperature,
		"TOP_P":       &c.TopP,
	}
	for key, dst := range floats {
		if v, ok := lookup(key); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s must be a number, got %q", key, v)
			}
			*dst = f
		}
	}

	return nil
}

// Validate checks if the configuration is valid and returns an error if not.
func (c Config) Validate() error {
	if c.CompartmentID == "" {
		return errors.New("compartmentId is required and cannot be empty")
	}

	if c.ModelID == "" {
		return errors.New("modelId is required and cannot be empty")
	}

	if c.Endpoint == "" {
		return errors.New("endpoint is required and cannot be empty")
	}

	switch c.AuthType {
	case AuthConfigFile:
		if c.ConfigPath == "" || c.Profile == "" {
			return errors.New("configPath and profile are required for config_file auth")
		}
	case AuthInstancePrincipal:
	default:
		return fmt.Errorf("authType must be %q or %q, got %q", AuthConfigFile, AuthInstancePrincipal, c.AuthType)
	}

	if c.Temperature < 0.0 || c.Temperature > 2.0 {
		return fmt.Errorf("temperature must be between 0.0 and 2.0, got %f", c.Temperature)
	}

	if c.TopP < 0.0 || c.TopP > 1.0 {
		return fmt.Errorf("topP must be between 0.0 and 1.0, got %f", c.TopP)
	}

	if c.FrequencyPenalty < -2.0 || c.FrequencyPenalty > 2.0 {
		return fmt.Errorf("frequencyPenalty must be between -2.0 and 2.0, got %f", c.FrequencyPenalty)
	}

	if c.PresencePenalty < -2.0 || c.PresencePenalty > 2.0 {
		return fmt.Errorf("presencePenalty must be between -2.0 and 2.0, got %f", c.PresencePenalty)
	}

	if c.MaxTokens < 1 {
		return fmt.Errorf("maxTokens must be greater than 0, got %d", c.MaxTokens)
	}

	if c.TopK < 0 {
		return fmt.Errorf("topK must be non-negative, got %d", c.TopK)
	}

	if c.ConnectTimeout <= 0 || c.ReadTimeout <= 0 {
		return errors.New("connectTimeout and readTimeout must be positive")
	}

	return nil
}

// ExpandedConfigPath returns ConfigPath with a leading "~" replaced by the
// user's home directory.
func (c Config) ExpandedConfigPath() (string, error) {
	if c.ConfigPath != "~" && !strings.HasPrefix(c.ConfigPath, "~/") {
		return c.ConfigPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return home + strings.TrimPrefix(c.ConfigPath, "~"), nil
}
