package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds the application configuration
type Config struct {
	DatabasePath string `json:"database_path"`
	APIPort      string `json:"api_port"`
	LogLevel     string `json:"log_level"`
	DataDir      string `json:"data_dir"`
	CORSOrigins  string `json:"cors_origins"` // comma separated, * for all

	// Gmail API configuration
	GmailClientID     string `json:"gmail_client_id"`
	GmailClientSecret string `json:"gmail_client_secret"`
	GmailRedirectURI  string `json:"gmail_redirect_uri"`
	MaxEmailBatchSize int    `json:"max_email_batch_size"`

	// AI service configuration
	AIProvider string `json:"ai_provider"`
	AIAPIKey   string `json:"ai_api_key"`
	AIModel    string `json:"ai_model"`
	AIBaseURL  string `json:"ai_base_url"`

	// Email classification keyword lists, comma separated
	ReceiptKeywords string `json:"receipt_keywords"`
	JunkKeywords    string `json:"junk_keywords"`
	CriticalSenders string `json:"critical_senders"`
}

// Default configuration values
const (
	DefaultDatabasePath      = "data/kit_gmail.db"
	DefaultAPIPort           = "8080"
	DefaultLogLevel          = "INFO"
	DefaultDataDir           = "data"
	DefaultCORSOrigins       = "*"
	DefaultGmailRedirectURI  = "http://localhost:8080"
	DefaultMaxEmailBatchSize = 100
	DefaultAIProvider        = "anthropic"
	DefaultReceiptKeywords   = "receipt,invoice,order,purchase,payment"
	DefaultJunkKeywords      = "unsubscribe,promotion,deal,offer,sale"
	DefaultCriticalSenders   = "bank,insurance,government,tax"
)

// Load loads configuration from environment variables and config file
// Priority: Environment variables > Config file > Default values
func Load() (*Config, error) {
	cfg := &Config{
		DatabasePath:      DefaultDatabasePath,
		APIPort:           DefaultAPIPort,
		LogLevel:          DefaultLogLevel,
		DataDir:           DefaultDataDir,
		CORSOrigins:       DefaultCORSOrigins,
		GmailRedirectURI:  DefaultGmailRedirectURI,
		MaxEmailBatchSize: DefaultMaxEmailBatchSize,
		AIProvider:        DefaultAIProvider,
		ReceiptKeywords:   DefaultReceiptKeywords,
		JunkKeywords:      DefaultJunkKeywords,
		CriticalSenders:   DefaultCriticalSenders,
	}

	// Config file is optional
	if err := cfg.loadFromFile(); err != nil {
		return nil, err
	}

	// Override with environment variables
	cfg.loadFromEnv()

	return cfg, nil
}

// loadFromFile loads configuration from config.json file
func (c *Config) loadFromFile() error {
	configPaths := []string{
		"config.json",
		filepath.Join(c.DataDir, "config.json"),
	}

	for _, path := range configPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		return json.Unmarshal(data, c)
	}

	return nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if val := os.Getenv("KIT_GMAIL_DATABASE_PATH"); val != "" {
		c.DatabasePath = val
	}
	if val := os.Getenv("KIT_GMAIL_API_PORT"); val != "" {
		c.APIPort = val
	}
	if val := os.Getenv("KIT_GMAIL_LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
	if val := os.Getenv("KIT_GMAIL_DATA_DIR"); val != "" {
		c.DataDir = val
	}
	if val := os.Getenv("KIT_GMAIL_CORS_ORIGINS"); val != "" {
		c.CORSOrigins = val
	}
	if val := os.Getenv("KIT_GMAIL_CLIENT_ID"); val != "" {
		c.GmailClientID = val
	}
	if val := os.Getenv("KIT_GMAIL_CLIENT_SECRET"); val != "" {
		c.GmailClientSecret = val
	}
	if val := os.Getenv("KIT_GMAIL_REDIRECT_URI"); val != "" {
		c.GmailRedirectURI = val
	}
	if val := os.Getenv("KIT_GMAIL_AI_PROVIDER"); val != "" {
		c.AIProvider = val
	}
	if val := os.Getenv("KIT_GMAIL_AI_API_KEY"); val != "" {
		c.AIAPIKey = val
	}
	if val := os.Getenv("KIT_GMAIL_AI_MODEL"); val != "" {
		c.AIModel = val
	}
	if val := os.Getenv("KIT_GMAIL_AI_BASE_URL"); val != "" {
		c.AIBaseURL = val
	}
	if val := os.Getenv("KIT_GMAIL_RECEIPT_KEYWORDS"); val != "" {
		c.ReceiptKeywords = val
	}
	if val := os.Getenv("KIT_GMAIL_JUNK_KEYWORDS"); val != "" {
		c.JunkKeywords = val
	}
	if val := os.Getenv("KIT_GMAIL_CRITICAL_SENDERS"); val != "" {
		c.CriticalSenders = val
	}
}

// TokenPath returns the path of the cached Gmail OAuth token
func (c *Config) TokenPath() string {
	return filepath.Join(c.DataDir, "gmail_token.json")
}

// Save saves the current configuration to a file
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
