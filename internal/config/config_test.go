package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := New()
	cfg.CompartmentID = "test-compartment-id"
	cfg.ModelID = "test-model-id"
	return cfg
}

func TestNew(t *testing.T) {
	cfg := New()

	assert.Equal(t, "DEFAULT", cfg.Profile)
	assert.Equal(t, "~/.oci/config", cfg.ConfigPath)
	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, AuthConfigFile, cfg.AuthType)
	assert.Equal(t, 600, cfg.MaxTokens)
	assert.Equal(t, 1.0, cfg.Temperature)
	assert.Equal(t, 0.75, cfg.TopP)
	assert.Equal(t, 0.0, cfg.FrequencyPenalty)
	assert.Equal(t, 0.0, cfg.PresencePenalty)
	assert.Equal(t, 0, cfg.TopK)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 240*time.Second, cfg.ReadTimeout)
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_MissingCompartmentID(t *testing.T) {
	cfg := validConfig()
	cfg.CompartmentID = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, "compartmentId is required and cannot be empty", err.Error())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing model", func(c *Config) { c.ModelID = "" }, "modelId"},
		{"missing endpoint", func(c *Config) { c.Endpoint = "" }, "endpoint"},
		{"unknown auth type", func(c *Config) { c.AuthType = "api_key" }, "authType"},
		{"missing profile", func(c *Config) { c.Profile = "" }, "profile"},
		{"temperature too low", func(c *Config) { c.Temperature = -1.0 }, "temperature"},
		{"temperature too high", func(c *Config) { c.Temperature = 2.5 }, "temperature"},
		{"topP too high", func(c *Config) { c.TopP = 1.5 }, "topP"},
		{"frequency penalty", func(c *Config) { c.FrequencyPenalty = 3.0 }, "frequencyPenalty"},
		{"presence penalty", func(c *Config) { c.PresencePenalty = -3.0 }, "presencePenalty"},
		{"max tokens", func(c *Config) { c.MaxTokens = 0 }, "maxTokens"},
		{"top k", func(c *Config) { c.TopK = -1 }, "topK"},
		{"timeouts", func(c *Config) { c.ReadTimeout = 0 }, "readTimeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_InstancePrincipalSkipsFileChecks(t *testing.T) {
	cfg := validConfig()
	cfg.AuthType = AuthInstancePrincipal
	cfg.ConfigPath = ""
	cfg.Profile = ""

	assert.NoError(t, cfg.Validate())
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PROFILE":        "CHICAGO",
		"CONFIG_PATH":    "/etc/oci/config",
		"ENDPOINT":       "https://example.test",
		"COMPARTMENT_ID": "ocid1.compartment.oc1..env",
		"MODEL_ID":       "ocid1.generativeaimodel.oc1..env",
		"MAX_TOKENS":     "128",
		"TEMPERATURE":    "0.2",
		"TOP_P":          "0.5",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := New()
	require.NoError(t, cfg.applyEnv(lookup))

	assert.Equal(t, "CHICAGO", cfg.Profile)
	assert.Equal(t, "/etc/oci/config", cfg.ConfigPath)
	assert.Equal(t, "https://example.test", cfg.Endpoint)
	assert.Equal(t, "ocid1.compartment.oc1..env", cfg.CompartmentID)
	assert.Equal(t, "ocid1.generativeaimodel.oc1..env", cfg.ModelID)
	assert.Equal(t, 128, cfg.MaxTokens)
	assert.Equal(t, 0.2, cfg.Temperature)
	assert.Equal(t, 0.5, cfg.TopP)
}

func TestApplyEnv_InvalidNumber(t *testing.T) {
	lookup := func(key string) (string, bool) {
		if key == "MAX_TOKENS" {
			return "many", true
		}
		return "", false
	}

	cfg := New()
	err := cfg.applyEnv(lookup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_TOKENS")
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ocichat.yaml")
	content := `compartment_id: "ocid1.compartment.oc1..file"
model_id: "ocid1.generativeaimodel.oc1..file"
profile: "FILE"
max_tokens: 300
read_timeout: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("PROFILE", "ENV")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ocid1.compartment.oc1..file", cfg.CompartmentID)
	assert.Equal(t, "ocid1.generativeaimodel.oc1..file", cfg.ModelID)
	assert.Equal(t, "ENV", cfg.Profile)
	assert.Equal(t, 300, cfg.MaxTokens)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidConfig(t *testing.T) {
	t.Setenv("COMPARTMENT_ID", "")
	t.Setenv("MODEL_ID", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestExpandedConfigPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := New()
	got, err := cfg.ExpandedConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".oci", "config"), got)

	cfg.ConfigPath = "/abs/config"
	got, err = cfg.ExpandedConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/abs/config", got)
}
