package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [files...]",
	Short: "Upload files to the backend for indexing",
	Long:  "Upload files to the backend for indexing. Without arguments the\nfiles selected in the --session are uploaded.",
	RunE:  runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
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

	turn, err := a.svc.Upload(ctx, args...)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.renderer.Turn(turn))
	if turn.IsError {
		return fmt.Errorf("upload failed")
	}
	return nil
}
