package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"skillrouter/internal/catalog"
	"skillrouter/internal/config"
	"skillrouter/internal/embedding"
	"skillrouter/internal/feedback"
	"skillrouter/internal/fusion"
	"skillrouter/internal/router"
)

var (
	explainTopN     int
	feedbackSuccess bool
	feedbackFailure bool
)

func init() {
	explainCmd.Flags().IntVarP(&explainTopN, "top", "n", 5, "number of candidates to explain")
	feedbackCmd.Flags().BoolVar(&feedbackSuccess, "success", false, "the routed tool handled the request")
	feedbackCmd.Flags().BoolVar(&feedbackFailure, "failure", false, "the routed tool did not handle the request")
}

var routeCmd = &cobra.Command{
	Use:   "route [query]",
	Short: "Route a query to the best-matching skill command",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, fb, err := buildRouter(cmd.Context())
		if err != nil {
			return err
		}
		defer fb.Close()

		res, err := rt.Route(cmd.Context(), joinArgs(args))
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var explainCmd = &cobra.Command{
	Use:   "explain [query]",
	Short: "Show the full score breakdown for the top candidates",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, fb, err := buildRouter(cmd.Context())
		if err != nil {
			return err
		}
		defer fb.Close()

		breakdowns, err := rt.Explain(cmd.Context(), joinArgs(args), explainTopN)
		if err != nil {
			return err
		}
		return printJSON(breakdowns)
	},
}

var feedbackCmd = &cobra.Command{
	Use:   "feedback [query] [tool-id]",
	Short: "Record the observed outcome of a routed tool execution",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if feedbackSuccess == feedbackFailure {
			return fmt.Errorf("exactly one of --success or --failure is required")
		}

		fb, err := feedback.Open(cfg.Feedback, logger)
		if err != nil {
			return err
		}
		defer fb.Close()

		score, err := fb.RecordFeedback(args[0], args[1], feedbackSuccess)
		if err != nil {
			return err
		}
		fmt.Printf("feedback recorded: %s -> %s, score %+.2f\n", catalog.NormalizeQuery(args[0]), args[1], score)
		return nil
	},
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the tool catalog built from the manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := buildCatalog(cmd.Context())
		if err != nil {
			return err
		}

		stats := cat.Stats()
		fmt.Printf("%d tools registered, %d vector-indexed\n\n", stats.Tools, stats.VectorIndexed)
		for _, rec := range cat.All() {
			marker := ""
			if rec.VectorIndexMissing {
				marker = " (keyword-only)"
			}
			fmt.Printf("  %-30s %s%s\n", rec.ID, rec.Description, marker)
		}
		return nil
	},
}

// buildCatalog loads the manifest and registers every tool.
func buildCatalog(ctx context.Context) (*catalog.Catalog, error) {
	manifest, err := config.LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	embCfg, err := cfg.EmbeddingConfig()
	if err != nil {
		return nil, err
	}
	embedder, err := embedding.NewProvider(embCfg, logger)
	if err != nil {
		return nil, err
	}

	cat := catalog.New(embedder, embCfg.Timeout, logger)
	for _, rec := range manifest.Tools {
		if err := cat.Register(ctx, rec); err != nil {
			logger.Warn("skipping invalid tool record",
				zap.String("tool", rec.ID),
				zap.Error(err))
		}
	}
	return cat, nil
}

// buildRouter wires the full routing stack from config + manifest.
func buildRouter(ctx context.Context) (*router.Router, *feedback.Store, error) {
	cat, err := buildCatalog(ctx)
	if err != nil {
		return nil, nil, err
	}

	fb, err := feedback.Open(cfg.Feedback, logger)
	if err != nil {
		return nil, nil, err
	}

	rcfg, err := cfg.RouterConfig()
	if err != nil {
		fb.Close()
		return nil, nil, err
	}

	embCfg, err := cfg.EmbeddingConfig()
	if err != nil {
		fb.Close()
		return nil, nil, err
	}
	embedder, err := embedding.NewProvider(embCfg, logger)
	if err != nil {
		fb.Close()
		return nil, nil, err
	}

	engine := fusion.New(cfg.Fusion, cfg.Verbs)
	return router.New(cat, engine, fb, embedder, rcfg, logger), fb, nil
}

func joinArgs(args []string) string {
	out := args[0]
	for _, a := range args[1:] {
		out += " " + a
	}
	return out
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
