package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Dataset location. DatasetPath is the directory holding the
	// TheScreener export; DatasetFile is the CSV inside it.
	DatasetPath string `json:"dataset_path"`
	DatasetFile string `json:"dataset_file"`
	// ReportsDir holds the per-stock PDF reports consumed by the
	// document-intelligence service.
	ReportsDir string `json:"reports_dir"`

	// LLM backend.
	LLMProvider    string `json:"llm_provider"`
	Model          string `json:"model"`
	BackendURL     string `json:"backend_url"`
	OpenAIAPIKey   string `json:"openai_api_key"`
	DeepSeekAPIKey string `json:"deepseek_api_key"`
	MaxTokens      int    `json:"max_tokens"`

	// Orchestration limits.
	MaxSteps         int `json:"max_steps"`
	HistoryWindow    int `json:"history_window"`
	ModelTimeoutSecs int `json:"model_timeout_secs"`

	// HTTP server.
	ServerHost string `json:"server_host"`
	ServerPort int    `json:"server_port"`

	// Optional live market data tool (Yahoo Finance quotes).
	OnlineTools bool `json:"online_tools"`

	// External document-intelligence service. Both must be set for
	// the document tool to be registered.
	DocIntelEndpoint string `json:"docintel_endpoint"`
	DocIntelAPIKey   string `json:"docintel_api_key"`

	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`
	Debug    bool   `json:"debug"`

	// Eino visual debug plugin.
	EinoDebugEnabled bool `json:"eino_debug_enabled"`
	EinoDebugPort    int  `json:"eino_debug_port"`
}

func DefaultConfig() *Config {
	cfg := &Config{
		DatasetFile: "2025-09-23_data_EN.csv",

		LLMProvider: "openai",
		Model:       "gpt-4o",
		BackendURL:  "https://api.openai.com/v1",
		MaxTokens:   1500,

		MaxSteps:         15,
		HistoryWindow:    6,
		ModelTimeoutSecs: 60,

		ServerHost: "0.0.0.0",
		ServerPort: 8080,

		OnlineTools: false,

		LogLevel: "info",
		Debug:    false,

		EinoDebugEnabled: false,
		EinoDebugPort:    52538,
	}

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg.loadFromEnv()

	return cfg
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("DATASET_PATH"); val != "" {
		c.DatasetPath = val
	}
	if val := os.Getenv("DATASET_FILE"); val != "" {
		c.DatasetFile = val
	}
	if val := os.Getenv("REPORTS_DIR"); val != "" {
		c.ReportsDir = val
	}

	if val := os.Getenv("LLM_PROVIDER"); val != "" {
		c.LLMProvider = val
	}
	if val := os.Getenv("LLM_MODEL"); val != "" {
		c.Model = val
	}
	if val := os.Getenv("BACKEND_URL"); val != "" {
		c.BackendURL = val
	}
	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		c.OpenAIAPIKey = val
	}
	if val := os.Getenv("DEEPSEEK_API_KEY"); val != "" {
		c.DeepSeekAPIKey = val
	}

	if val := os.Getenv("MAX_STEPS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxSteps = v
		}
	}
	if val := os.Getenv("MODEL_TIMEOUT_SECS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.ModelTimeoutSecs = v
		}
	}

	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.ServerHost = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.ServerPort = port
		}
	}

	if val := os.Getenv("ONLINE_TOOLS"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.OnlineTools = enabled
		}
	}

	if val := os.Getenv("DOCINTEL_ENDPOINT"); val != "" {
		c.DocIntelEndpoint = val
	}
	if val := os.Getenv("DOCINTEL_API_KEY"); val != "" {
		c.DocIntelAPIKey = val
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
	if val := os.Getenv("LOG_FILE"); val != "" {
		c.LogFile = val
	}
	if val := os.Getenv("SCREENERGO_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}

	if val := os.Getenv("EINO_DEBUG_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.EinoDebugEnabled = enabled
		}
	}
	if val := os.Getenv("EINO_DEBUG_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.EinoDebugPort = port
		}
	}
}

// DatasetCSV returns the full path of the snapshot CSV. An empty
// DatasetPath is allowed: the record store then reports the dataset as
// unavailable on every load instead of failing at startup.
func (c *Config) DatasetCSV() string {
	if strings.TrimSpace(c.DatasetPath) == "" {
		return ""
	}
	return filepath.Join(c.DatasetPath, c.DatasetFile)
}

// APIKey returns the key matching the configured provider.
func (c *Config) APIKey() string {
	if c.LLMProvider == "deepseek" {
		return c.DeepSeekAPIKey
	}
	return c.OpenAIAPIKey
}

func (c *Config) Validate() error {
	switch c.LLMProvider {
	case "openai", "deepseek":
	default:
		return fmt.Errorf("unsupported llm_provider %q", c.LLMProvider)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("max_steps must be positive, got %d", c.MaxSteps)
	}
	if c.HistoryWindow <= 0 {
		return fmt.Errorf("history_window must be positive, got %d", c.HistoryWindow)
	}
	if c.ModelTimeoutSecs <= 0 {
		return fmt.Errorf("model_timeout_secs must be positive, got %d", c.ModelTimeoutSecs)
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("server_port out of range: %d", c.ServerPort)
	}
	return nil
}
