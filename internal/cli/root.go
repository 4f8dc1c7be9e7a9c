package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/casedex/internal/logging"
	"github.com/ppiankov/casedex/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Version is set at build time with -ldflags
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "casedex",
	Short: "casedex - tag, index and cross-check a legal case archive",
	Long: `casedex scans a folder of case documents, tags each one from its filename
and text, and builds a searchable index over the tags.

It also checks hand-authored evidence → claim proof graphs for circular
reasoning, claims with no supporting evidence, and sources that contradict
what they support.

casedex does not judge whether a claim is legally sound.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "casedex %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.casedex/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("catalog", "", "tag catalog YAML (default: built-in)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("catalog.path", rootCmd.PersistentFlags().Lookup("catalog"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	setDefaults(model.DefaultConfig())

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads the config file and CASEDEX_* environment variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".casedex"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// CASEDEX_SCAN_WORKERS → scan.workers
	viper.SetEnvPrefix("CASEDEX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so env variables can override it
func setDefaults(d *model.Config) {
	viper.SetDefault("catalog.path", d.Catalog.Path)

	viper.SetDefault("scan.extensions", d.Scan.Extensions)
	viper.SetDefault("scan.overrides_file", d.Scan.OverridesFile)
	viper.SetDefault("scan.workers", d.Scan.Workers)
	viper.SetDefault("scan.reads_per_second", d.Scan.ReadsPerSecond)
	viper.SetDefault("scan.read_burst", d.Scan.ReadBurst)
	viper.SetDefault("scan.max_body_bytes", d.Scan.MaxBodyBytes)
	viper.SetDefault("scan.watch_debounce", d.Scan.WatchDebounce)

	viper.SetDefault("cache.enabled", d.Cache.Enabled)
	viper.SetDefault("cache.dir", d.Cache.Dir)
	viper.SetDefault("cache.memory_ttl", d.Cache.MemoryTTL)
	viper.SetDefault("cache.disk_ttl", d.Cache.DiskTTL)

	viper.SetDefault("store.enabled", d.Store.Enabled)
	viper.SetDefault("store.path", d.Store.Path)

	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.file", d.Log.File)
	viper.SetDefault("log.json", d.Log.JSON)

	viper.SetDefault("output.analysis_file", d.Output.AnalysisFile)
	viper.SetDefault("output.index_file", d.Output.IndexFile)
	viper.SetDefault("output.verbose", d.Output.Verbose)
}

// loadConfig merges defaults, config file, environment and flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Output.Verbose && cfg.Log.Level == "info" {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// newLogger builds the process logger; callers defer Sync
func newLogger(cfg *model.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	return logger.Named("casedex"), nil
}

func banner(title string) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  %s\n", title)
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
}
