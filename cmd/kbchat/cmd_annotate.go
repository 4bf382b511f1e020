package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"kb-chat/pkg/sources"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate [file.json]",
	Short: "Dedupe source records and attach KB links",
	Long: "Read a JSON array of source records (or a query response with a\n" +
		"\"sources\" field) from a file or stdin, and print the unique sources\n" +
		"with their KB ids and links as JSON.",
	Args: cobra.MaximumNArgs(1),
	RunE: runAnnotate,
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	records, err := readRecords(in)
	if err != nil {
		return err
	}

	annotator := sources.NewAnnotator(cfg.Backend.KBViewBaseURL, cfg.Backend.KBDownloadPath)
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(annotator.Annotate(records))
}

func readRecords(r io.Reader) ([]sources.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	var list []sources.Record
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var resp struct {
		Sources []sources.Record `json:"sources"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("input must be a JSON array of records or an object with \"sources\": %w", err)
	}
	return resp.Sources, nil
}
