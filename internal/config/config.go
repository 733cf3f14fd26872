package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds application configuration
type Config struct {
	LLMProvider           string `json:"llm_provider"`            // "openai" or "vertex"
	OpenAIModel           string `json:"openai_model"`
	GoogleCloudProject    string `json:"google_cloud_project"`
	GoogleCloudLocation   string `json:"google_cloud_location"`
	GoogleCredentialsPath string `json:"google_credentials_path"`
	GmailCredentialsPath  string `json:"gmail_credentials_path"`
	GmailTokenPath        string `json:"gmail_token_path"`
	UploadsDir            string `json:"uploads_dir"`
	GeneratedResumesDir   string `json:"generated_resumes_dir"`
	FetchQuery            string `json:"fetch_query"`
	MaxResults            int64  `json:"max_results"`
	WorkerLimit           int    `json:"worker_limit"`
	Port                  string `json:"port"`
}

// DefaultConfig returns a new config with default values
func DefaultConfig() *Config {
	return &Config{
		LLMProvider:          "openai",
		OpenAIModel:          "gpt-4o",
		GoogleCloudLocation:  "us-central1",
		GmailCredentialsPath: "credentials.json",
		GmailTokenPath:       "token.json",
		UploadsDir:           "uploads",
		GeneratedResumesDir:  "generated_resumes",
		FetchQuery:           "subject:(job OR opportunity OR position) newer_than:7d",
		MaxResults:           10,
		WorkerLimit:          3,
		Port:                 "8080",
	}
}

// GetConfigPath returns the path to the configuration file
// On Windows: %APPDATA%/Recruitflow/config.json
// On Unix: ~/.config/recruitflow/config.json
func GetConfigPath() (string, error) {
	var configDir string

	if os.Getenv("APPDATA") != "" {
		// Windows
		configDir = filepath.Join(os.Getenv("APPDATA"), "Recruitflow")
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "recruitflow")
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.json"), nil
}

// Load loads configuration from the default config path
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadFrom(configPath)
}

// LoadFrom loads configuration from a specific path, falling back to defaults
// when the file does not exist. Environment variables override file values.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides lets environment variables win over the config file
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("RECRUITFLOW_LLM_PROVIDER"); v != "" {
		c.LLMProvider = v
	}
	if v := os.Getenv("RECRUITFLOW_OPENAI_MODEL"); v != "" {
		c.OpenAIModel = v
	}
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		c.GoogleCloudProject = v
	}
	if v := os.Getenv("GOOGLE_CLOUD_LOCATION"); v != "" {
		c.GoogleCloudLocation = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
}

// SaveTo saves the configuration to a specific path
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case "openai":
		if os.Getenv("OPENAI_API_KEY") == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable is required for the openai provider")
		}
	case "vertex":
		if c.GoogleCloudProject == "" {
			return fmt.Errorf("google_cloud_project is required for the vertex provider")
		}
	default:
		return fmt.Errorf("unknown llm_provider %q (want \"openai\" or \"vertex\")", c.LLMProvider)
	}

	if c.GmailCredentialsPath == "" {
		return fmt.Errorf("gmail_credentials_path is required")
	}

	if c.WorkerLimit < 1 {
		return fmt.Errorf("worker_limit must be at least 1")
	}

	return nil
}

// ApplyToEnv applies configuration values to environment variables
func (c *Config) ApplyToEnv() {
	if c.GoogleCloudProject != "" {
		os.Setenv("GOOGLE_CLOUD_PROJECT", c.GoogleCloudProject)
	}
	if c.GoogleCloudLocation != "" {
		os.Setenv("GOOGLE_CLOUD_LOCATION", c.GoogleCloudLocation)
	}
	if c.GoogleCredentialsPath != "" {
		os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", c.GoogleCredentialsPath)
	}
}
