package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gitmirror/astuto-sync/internal/core/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "astuto-sync",
	Short: "Mirror public GitHub issues into an Astuto feedback board",
	Long: `astuto-sync mirrors the issues of a public GitHub repository into an
Astuto feedback board. Each issue becomes a post carrying a back-link to the
originating issue; the back-link doubles as a dedup marker, so re-running a
sync never creates duplicates.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
}

// loadConfig resolves the config file (or falls back to environment variables)
// and validates the result.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config

	path := config.FindConfigPath(cfgFile)
	switch {
	case path != "":
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case cfgFile != "":
		return nil, fmt.Errorf("config file %s not found", cfgFile)
	default:
		cfg = config.LoadFromEnv()
	}

	if verbose {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
