package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	downloadkb "kb-chat/internal/actions/download-kb"
	"kb-chat/internal/common/logger"
)

var kbFlags struct {
	render    bool
	outputDir string
}

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Work with knowledge-base articles",
}

var kbLinkCmd = &cobra.Command{
	Use:   "link <name|id>",
	Short: "Print the KB id and links found in a name",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runKBLink,
}

var kbDownloadCmd = &cobra.Command{
	Use:   "download <name|id>",
	Short: "Save a KB article as PDF",
	Long:  "Save a KB article as PDF, fetched from the backend or, with --render,\nprinted locally with headless Chrome.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runKBDownload,
}

func init() {
	f := kbDownloadCmd.Flags()
	f.BoolVar(&kbFlags.render, "render", false, "Render the article page locally instead of asking the backend")
	f.StringVarP(&kbFlags.outputDir, "output-dir", "o", "", "Directory for the PDF (default: kb_render.output_dir)")

	kbCmd.AddCommand(kbLinkCmd)
	kbCmd.AddCommand(kbDownloadCmd)
}

func runKBLink(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	h, err := downloadkb.NewHandler(downloadkb.HandlerOptions{AppConfig: cfg, Logger: logger.NewNoOpLogger()})
	if err != nil {
		return err
	}
	out, err := h.Execute(cmd.Context(), nil, &downloadkb.Input{
		Name: strings.Join(args, " "),
		Mode: downloadkb.ModeLink,
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "KB:       %s\n", out.KBID)
	fmt.Fprintf(w, "View:     %s\n", out.ViewURL)
	fmt.Fprintf(w, "Download: %s%s\n", cfg.Backend.BaseURL, out.DownloadURL)
	return nil
}

func runKBDownload(cmd *cobra.Command, args []string) error {
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

	mode := downloadkb.ModeBackend
	if kbFlags.render {
		mode = downloadkb.ModeRender
	}
	out, err := a.svc.DownloadKB(ctx, &downloadkb.Input{
		Name:      strings.Join(args, " "),
		Mode:      mode,
		OutputDir: kbFlags.outputDir,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out.Turn.Text)
	return nil
}
