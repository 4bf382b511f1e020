package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"kb-chat/internal/common/config"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	backendURL string
	logLevel   string
	sessionID  string
}

var rootCmd = &cobra.Command{
	Use:   "kbchat",
	Short: "Chat with your document knowledge base",
	Long: "kbchat asks questions against a retrieval-augmented Q&A backend,\n" +
		"shows deduplicated sources with KB article links, and manages uploads\n" +
		"and reindexing of the backend's document store.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.configPath, "config", "", "Path to a config file (default: configs/config.yaml)")
	f.StringVar(&rootFlags.backendURL, "backend", "", "Backend base URL, overrides backend.base_url")
	f.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	f.StringVar(&rootFlags.sessionID, "session", "", "Resume or create the session with this id")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(kbCmd)
	rootCmd.AddCommand(annotateCmd)
	rootCmd.Version = version
}

// loadConfig reads the config file and applies command line overrides.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if rootFlags.configPath != "" {
		cfg, err = config.LoadFromFile(rootFlags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if rootFlags.backendURL != "" {
		if !strings.HasPrefix(rootFlags.backendURL, "http://") && !strings.HasPrefix(rootFlags.backendURL, "https://") {
			return nil, fmt.Errorf("--backend must be an http(s) URL, got %q", rootFlags.backendURL)
		}
		cfg.Backend.BaseURL = strings.TrimRight(rootFlags.backendURL, "/")
	}
	if rootFlags.logLevel != "" {
		cfg.Logging.Level = rootFlags.logLevel
	}
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
