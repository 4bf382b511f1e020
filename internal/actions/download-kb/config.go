package downloadkb

import (
	"fmt"
	"time"

	"kb-chat/internal/common/config"
	"kb-chat/internal/models"
)

type Config struct {
	Enabled      bool
	Timeout      time.Duration
	OutputDir    string
	ViewBase     string
	DownloadBase string
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:   true,
		OutputDir: ".",
	}
}

func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
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
	if ac, exists := appConfig.Actions[models.ActionDownloadKB.String()]; exists {
		cfg.Enabled = ac.Enabled
		cfg.Timeout = config.GetDuration(ac.Timeout)
	}
	if appConfig.KBRender.OutputDir != "" {
		cfg.OutputDir = appConfig.KBRender.OutputDir
	}
	cfg.ViewBase = appConfig.Backend.KBViewBaseURL
	cfg.DownloadBase = appConfig.Backend.KBDownloadPath
	return cfg
}
