// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, the environment overlay and env overrides.
func Load() (*Config, error) {
	v := viper.New()
	loadEnvFile()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".kbchat"))
	}

	return load(v, true)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	loadEnvFile()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return load(v, false)
}

func load(v *viper.Viper, readBase bool) (*Config, error) {
	// BACKEND_BASE_URL overrides backend.base_url
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	if readBase {
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading base config: %w", err)
			}
		}

		env := os.Getenv("APP_ENVIRONMENT")
		if env == "" {
			env = "development"
		}
		v.SetConfigName(fmt.Sprintf("config.%s", env))
		_ = v.MergeInConfig() // overlay is optional
	}

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// AutomaticEnv only resolves keys viper already knows about, so keys that
// may be absent from the yaml are registered here.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"backend.base_url",
		"backend.request_timeout",
		"session.store",
		"session.ttl",
		"session.redis.address",
		"session.redis.password",
		"session.redis.db",
		"logging.level",
		"logging.format",
		"logging.output",
		"metrics.enabled",
		"metrics.address",
	} {
		_ = v.BindEnv(key)
	}
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// Direct override if config values are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	if val := os.Getenv("KBCHAT_BACKEND"); val != "" {
		cfg.Backend.BaseURL = val
	}
	if cfg.Session.Redis.Address == "" {
		if val := os.Getenv("REDIS_URL"); val != "" {
			cfg.Session.Redis.Address = strings.TrimPrefix(val, "redis://")
		}
	}
	if cfg.Session.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Session.Redis.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "kbchat"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = "http://localhost:5000"
	}
	cfg.Backend.BaseURL = strings.TrimRight(cfg.Backend.BaseURL, "/")
	if cfg.Backend.KBViewBaseURL == "" {
		cfg.Backend.KBViewBaseURL = "https://resource.digital.thermofisher.com/kb/article.aspx?n="
	}
	if cfg.Backend.KBDownloadPath == "" {
		cfg.Backend.KBDownloadPath = "/download_kb?kb="
	}

	if cfg.Session.Store == "" {
		cfg.Session.Store = "memory"
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 7200
	}
	if cfg.Session.Redis.Address == "" {
		cfg.Session.Redis.Address = "localhost:6379"
	}

	if cfg.KBRender.Timeout == 0 {
		cfg.KBRender.Timeout = 20000
	}
	if cfg.KBRender.OutputDir == "" {
		cfg.KBRender.OutputDir = "."
	}

	if cfg.UI.WordWrap == 0 {
		cfg.UI.WordWrap = 80
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = "dark"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}

	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = ":9090"
	}

	if cfg.Actions == nil {
		cfg.Actions = map[string]ActionConfig{}
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if !strings.HasPrefix(cfg.Backend.BaseURL, "http://") && !strings.HasPrefix(cfg.Backend.BaseURL, "https://") {
		return fmt.Errorf("backend.base_url must be an http(s) URL, got %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.RequestTimeout < 0 {
		return fmt.Errorf("backend.request_timeout must not be negative")
	}

	switch cfg.Session.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("session.store must be memory or redis, got %q", cfg.Session.Store)
	}
	if cfg.Session.TTL < 0 {
		return fmt.Errorf("session.ttl must not be negative")
	}

	if cfg.KBRender.Timeout < 0 {
		return fmt.Errorf("kb_render.timeout must not be negative")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetSeconds converts seconds from config to time.Duration
func GetSeconds(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

// GetActionConfig retrieves action-specific configuration with fallback to defaults
func GetActionConfig(cfg *Config, action string) ActionConfig {
	if ac, exists := cfg.Actions[action]; exists {
		return ac
	}
	return ActionConfig{Enabled: true}
}

// IsActionEnabled checks if a specific action is enabled
func IsActionEnabled(cfg *Config, action string) bool {
	if ac, exists := cfg.Actions[action]; exists {
		return ac.Enabled
	}
	return true
}
