package backend

import (
	"time"

	"kb-chat/internal/common/config"
)

type Config struct {
	BaseURL string
	// Timeout of zero leaves requests unbounded; only ctx cancels them.
	Timeout time.Duration
}

func ConfigFrom(cfg *config.Config) Config {
	return Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: config.GetDuration(cfg.Backend.RequestTimeout),
	}
}
