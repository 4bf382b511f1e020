package reindexkb

import (
	"fmt"
	"time"

	"kb-chat/internal/common/config"
	"kb-chat/internal/models"
)

type Config struct {
	Enabled bool
	Timeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{Enabled: true}
}

func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}
	if ac, exists := appConfig.Actions[models.ActionReindexKB.String()]; exists {
		cfg.Enabled = ac.Enabled
		cfg.Timeout = config.GetDuration(ac.Timeout)
	}
	return cfg
}
