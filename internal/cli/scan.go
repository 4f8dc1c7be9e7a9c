package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ppiankov/casedex/internal/archive"
	"github.com/ppiankov/casedex/internal/cache"
	"github.com/ppiankov/casedex/internal/catalog"
	"github.com/ppiankov/casedex/internal/model"
	"github.com/ppiankov/casedex/internal/store"
	"github.com/ppiankov/casedex/internal/trie"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	outAnalysis string
	outIndex    string
	noCache     bool
	useStore    bool
	workers     int
	scanTimeout time.Duration
)

var scanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "Tag every document in an archive and build the search index",
	Long: `Scan walks an archive directory and, for each PDF, markdown, text or
HTML document:
- assigns catalog tags from the filename and any readable body text
- extracts a date and a location
- picks a category from the highest-priority tag

It writes the full analysis (documents, tag/location/date indexes and
statistics) and a search index that 'casedex search' queries.

Manual tags can be added in tag_overrides.yaml at the archive root:
  Nnamdi_Okpala_Not_Homeless.pdf: [critical_evidence]

Example:
  casedex scan ./case-files
  casedex scan ./case-files --analysis out/tag_analysis.json --index out/search_index.json
  casedex scan ./case-files --store --workers 8`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&outAnalysis, "analysis", "", "analysis JSON path (default from config: tag_analysis.json)")
	scanCmd.Flags().StringVar(&outIndex, "index", "", "search index JSON path (default from config: search_index.json)")
	scanCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the extraction cache")
	scanCmd.Flags().BoolVar(&useStore, "store", false, "persist documents to the document store")
	scanCmd.Flags().IntVar(&workers, "workers", 0, "extraction workers (default from config)")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 10*time.Minute, "overall scan timeout")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), scanTimeout)
	defer cancel()

	env, err := newScanEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	root := args[0]
	banner("casedex scan")
	fmt.Fprintf(os.Stderr, "  Archive:      %s\n", root)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", env.cfg.Scan.Workers)
	fmt.Fprintf(os.Stderr, "  Cache:        %v\n", env.cfg.Cache.Enabled)
	fmt.Fprintf(os.Stderr, "  Store:        %v\n", env.cfg.Store.Enabled)
	fmt.Fprintf(os.Stderr, "\n")

	analysis, err := env.scanner.Scan(ctx, root)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if err := writeOutputs(env, analysis); err != nil {
		return err
	}
	printScanSummary(analysis)
	return nil
}

// scanEnv holds what scan and watch share: config, logger, catalog and a
// scanner wired to the cache and store
type scanEnv struct {
	cfg     *model.Config
	logger  *zap.Logger
	catalog *catalog.Catalog
	scanner *archive.Scanner
	store   *store.Store
}

func newScanEnv(cmd *cobra.Command) (*scanEnv, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("workers") {
		cfg.Scan.Workers = workers
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if useStore {
		cfg.Store.Enabled = true
	}
	if outAnalysis != "" {
		cfg.Output.AnalysisFile = outAnalysis
	}
	if outIndex != "" {
		cfg.Output.IndexFile = outIndex
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.LoadOrDefault(cfg.Catalog.Path)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	env := &scanEnv{cfg: cfg, logger: logger, catalog: cat}
	opts := []archive.Option{archive.WithLogger(logger)}

	if cfg.Cache.Enabled {
		c := cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		opts = append(opts, archive.WithCache(c, cfg.Cache.DiskTTL))
	}
	if cfg.Store.Enabled {
		st, err := store.Open(cfg.Store, logger)
		if err != nil {
			_ = logger.Sync()
			return nil, fmt.Errorf("open store: %w", err)
		}
		env.store = st
		opts = append(opts, archive.WithStore(st))
	}

	env.scanner = archive.NewScanner(cfg.Scan, cat, opts...)
	return env, nil
}

func (e *scanEnv) close() {
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.logger.Warn("close store", zap.Error(err))
		}
	}
	_ = e.logger.Sync()
}

// writeOutputs writes the analysis and the search index built from it
func writeOutputs(env *scanEnv, analysis *model.Analysis) error {
	for _, p := range []string{env.cfg.Output.AnalysisFile, env.cfg.Output.IndexFile} {
		if dir := filepath.Dir(p); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
		}
	}

	if err := archive.WriteAnalysis(analysis, env.cfg.Output.AnalysisFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ Wrote analysis: %s\n", env.cfg.Output.AnalysisFile)

	_, artifact, err := archive.BuildIndex(analysis, env.catalog)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	if err := trie.WriteArtifact(artifact, env.cfg.Output.IndexFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ Wrote search index: %s\n", env.cfg.Output.IndexFile)
	return nil
}

func printScanSummary(a *model.Analysis) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Documents:    %d\n", a.Statistics.TotalDocuments)
	fmt.Fprintf(os.Stderr, "  Tagged:       %d\n", a.Statistics.TaggedDocuments)
	fmt.Fprintf(os.Stderr, "  Unique tags:  %d\n", len(a.TagIndex))
	fmt.Fprintf(os.Stderr, "  Dated:        %d\n", a.Statistics.DatedDocuments)
	fmt.Fprintf(os.Stderr, "  Critical:     %d\n", a.Statistics.CriticalDocuments)
	if len(a.Errors) > 0 {
		fmt.Fprintf(os.Stderr, "  Skipped:      %d\n", len(a.Errors))
		for _, e := range a.Errors {
			fmt.Fprintf(os.Stderr, "    ✗ %s: %s\n", e.Input, e.Error)
		}
	}
	fmt.Fprintf(os.Stderr, "\n")
}

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Re-scan an archive whenever its documents change",
	Long: `Watch runs an initial scan, then re-scans and rewrites the analysis and
search index each time a document under the archive is added, edited,
renamed or removed. Bursts of changes are coalesced.

Example:
  casedex watch ./case-files`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&outAnalysis, "analysis", "", "analysis JSON path (default from config)")
	watchCmd.Flags().StringVar(&outIndex, "index", "", "search index JSON path (default from config)")
	watchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the extraction cache")
	watchCmd.Flags().BoolVar(&useStore, "store", false, "persist documents to the document store")
	watchCmd.Flags().IntVar(&workers, "workers", 0, "extraction workers (default from config)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := newScanEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	root := args[0]
	banner("casedex watch")

	analysis, err := env.scanner.Scan(ctx, root)
	if err != nil {
		return fmt.Errorf("initial scan failed: %w", err)
	}
	if err := writeOutputs(env, analysis); err != nil {
		return err
	}
	printScanSummary(analysis)

	w, err := archive.NewWatcher(root, env.scanner, env.cfg.Scan.WatchDebounce, func(a *model.Analysis, err error) {
		if err != nil {
			env.logger.Error("re-scan failed", zap.Error(err))
			return
		}
		if err := writeOutputs(env, a); err != nil {
			env.logger.Error("write outputs", zap.Error(err))
			return
		}
		printScanSummary(a)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl-C to stop)\n", root)
	return w.Run(ctx)
}
