package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/casedex/internal/model"
	"github.com/spf13/cobra"
)

var batchTimeout time.Duration

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Tag a list of documents in parallel",
	Long: `Batch extracts tags, date and location for every document named in a
list file (one path per line, # for comments) and prints the results as
JSON. Unlike scan it does not build indexes or apply tag overrides.

Example:
  casedex batch files.txt
  casedex batch files.txt --workers 8 > tags.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&workers, "workers", 0, "extraction workers (default from config)")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the extraction cache")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	env, err := newScanEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	banner("casedex batch")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", env.cfg.Scan.Workers)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	results, err := env.scanner.ExtractList(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	docs := make([]*model.Document, 0, len(results))
	failures := 0
	for _, r := range results {
		if r.Error != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Path, r.Error)
			continue
		}
		docs = append(docs, r.Document)
		fmt.Fprintf(os.Stderr, "✓ %s (%d tags, %s)\n", r.Path, len(r.Document.Tags), r.Document.Category)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(docs); err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d files\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", len(docs))
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failures)
	fmt.Fprintf(os.Stderr, "\n")

	if failures > 0 && len(docs) == 0 {
		return fmt.Errorf("all %d files failed", failures)
	}
	return nil
}
