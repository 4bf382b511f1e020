// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Backend  BackendConfig           `mapstructure:"backend"`
	Session  SessionConfig           `mapstructure:"session"`
	KBRender KBRenderConfig          `mapstructure:"kb_render"`
	UI       UIConfig                `mapstructure:"ui"`
	Actions  map[string]ActionConfig `mapstructure:"actions"`
	Logging  LoggingConfig           `mapstructure:"logging"`
	Metrics  MetricsConfig           `mapstructure:"metrics"`
}

// --- Core App Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// BackendConfig points the client at the Q&A backend.
type BackendConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds, 0 = no timeout
	KBViewBaseURL  string `mapstructure:"kb_view_base_url"`
	KBDownloadPath string `mapstructure:"kb_download_path"`
}

// SessionConfig selects where conversation state lives between runs.
type SessionConfig struct {
	Store string      `mapstructure:"store"` // memory | redis
	TTL   int         `mapstructure:"ttl"`   // seconds
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// KBRenderConfig holds settings for local KB page to PDF rendering.
type KBRenderConfig struct {
	Timeout    int    `mapstructure:"timeout"` // milliseconds
	ChromePath string `mapstructure:"chrome_path"`
	NoSandbox  bool   `mapstructure:"no_sandbox"`
	OutputDir  string `mapstructure:"output_dir"`
}

type UIConfig struct {
	Markdown bool   `mapstructure:"markdown"`
	WordWrap int    `mapstructure:"word_wrap"`
	Theme    string `mapstructure:"theme"`
}

// ActionConfig holds the core settings applicable to every action.
type ActionConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Timeout int  `mapstructure:"timeout"` // milliseconds, 0 = no timeout
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// TTLDuration is the session lifetime; ttl is configured in seconds.
func (s SessionConfig) TTLDuration() time.Duration {
	return GetSeconds(s.TTL)
}

// UsesRedis reports whether sessions are persisted in Redis.
func (s SessionConfig) UsesRedis() bool {
	return s.Store == "redis"
}

// String hides the password when the config is logged.
func (r RedisConfig) String() string {
	pw := ""
	if r.Password != "" {
		pw = "****"
	}
	return fmt.Sprintf("redis://:%s@%s/%d", pw, r.Address, r.DB)
}
