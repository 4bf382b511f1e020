package uploadfiles

import (
	"fmt"
	"time"

	"kb-chat/internal/common/config"
	"kb-chat/internal/models"
)

type Config struct {
	Enabled  bool
	Timeout  time.Duration
	MaxFiles int
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:  true,
		MaxFiles: 100,
	}
}

func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.MaxFiles <= 0 {
		return fmt.Errorf("max_files must be positive")
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
	if ac, exists := appConfig.Actions[models.ActionUploadFiles.String()]; exists {
		cfg.Enabled = ac.Enabled
		cfg.Timeout = config.GetDuration(ac.Timeout)
	}
	return cfg
}
