// skillrouter routes natural-language agent requests to the best-matching
// skill command from a registered catalog, without loading every tool
// definition into the agent's context window.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"skillrouter/internal/config"
)

var (
	// Global flags.
	configPath   string
	manifestPath string
	verbose      bool

	// Loaded in PersistentPreRunE.
	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "skillrouter",
	Short: "Hybrid semantic+keyword router for agent skill commands",
	Long: `skillrouter resolves a natural-language request to the single
best-matching skill command out of a large catalog.

It fuses vector similarity, BM25 keyword relevance, action-verb affinity,
and learned feedback into one calibrated confidence score, with a bounded
LRU+TTL cache in front and a durable feedback table behind.

The catalog is supplied as a manifest produced by an external
skill-discovery process; skillrouter never parses skill packages itself.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Logging.Level = "debug"
			cfg.Logging.Development = true
		}
		logger, err = cfg.Logger()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config (defaults apply when omitted)")
	rootCmd.PersistentFlags().StringVarP(&manifestPath, "manifest", "m", "skills.yaml", "path to the tool manifest")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(catalogCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
