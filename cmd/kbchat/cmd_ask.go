package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question",
	Long:  "Ask a single question. With --session the exchange is added to that\nsession's history, so follow-up questions keep their context.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
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

	turns, err := a.svc.Ask(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	reply := turns[len(turns)-1]
	fmt.Fprintln(out, a.renderer.Turn(reply))
	if rootFlags.sessionID == "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "session: %s\n", a.svc.Session().ID())
	}
	if reply.IsError {
		return fmt.Errorf("question failed")
	}
	return nil
}
