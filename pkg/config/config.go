package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	HH       HHConfig       `mapstructure:"hh"`
	AI       AIConfig       `mapstructure:"ai"`
	Database DatabaseConfig `mapstructure:"database"`
	Agent    AgentConfig    `mapstructure:"agent"`
}

type HHConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
	BaseURL      string `mapstructure:"base_url"`
	OAuthURL     string `mapstructure:"oauth_url"`
	UserAgent    string `mapstructure:"user_agent"`
}

type AIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

type DatabaseConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	SSLMode     string `mapstructure:"sslmode"`
	UseInMemory bool   `mapstructure:"use_in_memory"`
}

type AgentConfig struct {
	// Cap on search queries used per cycle.
	MaxQueries int `mapstructure:"max_queries"`
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		fmt.Sscanf(u.Port(), "%d", &port)
	}

	dbName := strings.TrimPrefix(u.Path, "/")

	return DatabaseConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   dbName,
		SSLMode:  "disable",
	}, nil
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "hh_agent")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.use_in_memory", false)
	v.SetDefault("hh.base_url", "https://api.hh.ru")
	v.SetDefault("hh.oauth_url", "https://hh.ru/oauth")
	v.SetDefault("hh.user_agent", "hh-agent/1.0 (job-search automation)")
	v.SetDefault("ai.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("ai.model", "openai/gpt-4o-mini")
	v.SetDefault("ai.max_tokens", 2000)
	v.SetDefault("ai.temperature", 0.3)
	v.SetDefault("agent.max_queries", 5)

	// Enable environment variable support
	v.AutomaticEnv()

	// The config file is optional; environment variables alone are enough.
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Check for DATABASE_URL environment variable
	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %v", err)
		}
		config.Database = dbConfig
	}

	// Get other environment variables
	if clientID := v.GetString("HH_CLIENT_ID"); clientID != "" {
		config.HH.ClientID = clientID
	}
	if clientSecret := v.GetString("HH_CLIENT_SECRET"); clientSecret != "" {
		config.HH.ClientSecret = clientSecret
	}
	if redirectURI := v.GetString("HH_REDIRECT_URI"); redirectURI != "" {
		config.HH.RedirectURI = redirectURI
	}
	if apiKey := v.GetString("OPENROUTER_API_KEY"); apiKey != "" {
		config.AI.APIKey = apiKey
	}
	if model := v.GetString("AI_MODEL"); model != "" {
		config.AI.Model = model
	}

	return &config, nil
}
