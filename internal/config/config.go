package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete assistant configuration
// The structure matches the config.yaml file and can be overridden by environment variables

type Config struct {
	Assist AssistConfig `json:"assist" mapstructure:"assist"`
}

// AssistConfig contains the main assistant configuration

type AssistConfig struct {
	Server  ServerConfig  `json:"server" mapstructure:"server"`
	Auth    AuthConfig    `json:"auth" mapstructure:"auth"`
	Audit   AuditConfig   `json:"audit" mapstructure:"audit"`
	Matcher MatcherConfig `json:"matcher" mapstructure:"matcher"`
	Drafter DrafterConfig `json:"drafter" mapstructure:"drafter"`
}

// ServerConfig contains server-specific configuration

type ServerConfig struct {
	Addr      string `json:"addr" mapstructure:"addr"`
	Timeout   string `json:"timeout" mapstructure:"timeout"`
	RateLimit int    `json:"rate_limit" mapstructure:"rate_limit"`
}

// AuthConfig contains authentication configuration

type AuthConfig struct {
	Token string `json:"token" mapstructure:"token"`
}

// AuditConfig controls the invocation audit trail

type AuditConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	DBPath  string `json:"db_path" mapstructure:"db_path"`
}

// MatcherConfig tunes clause selection

type MatcherConfig struct {
	TopK     int `json:"top_k" mapstructure:"top_k"`
	MinScore int `json:"min_score" mapstructure:"min_score"`
}

// DrafterConfig customizes drafted replies

type DrafterConfig struct {
	SignatureName string `json:"signature_name" mapstructure:"signature_name"`
}

// Load loads the configuration from file and environment variables
func Load() (*Config, error) {
	// Load .env first (ignore error if not present)
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.email-assist")
	viper.AutomaticEnv()
	viper.SetEnvPrefix("ASSIST")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found, using defaults")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Assist.Audit.DBPath = resolvePath(cfg.Assist.Audit.DBPath)
	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("ASSIST.SERVER.ADDR", ":8080")
	viper.SetDefault("ASSIST.SERVER.TIMEOUT", "30s")
	viper.SetDefault("ASSIST.SERVER.RATE_LIMIT", 100)

	viper.SetDefault("ASSIST.AUTH.TOKEN", "default-secret-token")

	viper.SetDefault("ASSIST.AUDIT.ENABLED", true)
	viper.SetDefault("ASSIST.AUDIT.DB_PATH", "/tmp/email_assist_audit.db")

	viper.SetDefault("ASSIST.MATCHER.TOP_K", 2)
	viper.SetDefault("ASSIST.MATCHER.MIN_SCORE", 1)

	viper.SetDefault("ASSIST.DRAFTER.SIGNATURE_NAME", "Your Legal Team")
}

// resolvePath resolves ~ to home directory and cleans the path
func resolvePath(p string) string {
	if p == "" {
		return p
	}
	if p[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	return filepath.Clean(p)
}
