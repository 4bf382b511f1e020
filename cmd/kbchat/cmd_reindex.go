package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the backend's document index",
	Args:  cobra.NoArgs,
	RunE:  runReindex,
}

func runReindex(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, cfg, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	turn, err := a.svc.Reindex(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), turn.Text)
	if turn.IsError {
		return fmt.Errorf("reindex failed")
	}
	return nil
}
