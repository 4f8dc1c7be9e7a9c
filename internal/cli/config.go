package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/casedex/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage casedex configuration",
	Long: `Manage casedex configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (CASEDEX_*)
3. Config file (~/.casedex/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after merging defaults, config file, environment variables and flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n")
		}
		banner("Current Configuration")

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(yamlData))

		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Configuration hierarchy (highest to lowest priority):\n")
		fmt.Fprintf(os.Stderr, "  1. CLI flags\n")
		fmt.Fprintf(os.Stderr, "  2. Environment variables (CASEDEX_SCAN_WORKERS, CASEDEX_LOG_LEVEL, ...)\n")
		fmt.Fprintf(os.Stderr, "  3. Config file (~/.casedex/config.yaml)\n")
		fmt.Fprintf(os.Stderr, "  4. Defaults\n")
		fmt.Fprintf(os.Stderr, "\n")
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.casedex/config.yaml with every available option.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error finding home directory: %w", err)
		}

		configPath := filepath.Join(home, ".casedex", "config.yaml")
		if err := writeDefaultConfig(configPath); err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "✓ Created default configuration: %s\n", configPath)
		fmt.Fprintf(os.Stderr, "\nTo view the configuration:\n")
		fmt.Fprintf(os.Stderr, "  casedex config show\n")
		fmt.Fprintf(os.Stderr, "\nTo customize, edit the file with your preferred editor:\n")
		fmt.Fprintf(os.Stderr, "  $EDITOR %s\n\n", configPath)
		return nil
	},
}

const configHeader = `# casedex configuration
#
# Configuration hierarchy (highest to lowest priority):
#   1. CLI flags
#   2. Environment variables (CASEDEX_*, e.g. CASEDEX_SCAN_WORKERS=8)
#   3. This config file
#   4. Built-in defaults
#
# catalog.path may point at a YAML tag catalog replacing the built-in one.

`

// writeDefaultConfig writes the default configuration, refusing to
// overwrite an existing file
func writeDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s\nUse 'casedex config show' to view it, or delete it first to recreate", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	yamlData, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	data := append([]byte(configHeader), yamlData...)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing config: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
