package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/raseed-app/raseed/internal/insights"
	"github.com/raseed-app/raseed/internal/storage"
	"github.com/spf13/cobra"
)

// detectorAliases map short command-line names to payload type names.
var detectorAliases = map[string]string{
	"recurrence": insights.TypeRecurrence,
	"redundancy": insights.TypeRedundancy,
	"impulse":    insights.TypeImpulse,
	"waste":      insights.TypeWaste,
	"needwant":   insights.TypeNeedWant,
	"health":     insights.TypeHealthScore,
}

func insightsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights [detector]",
		Short: "Run insight detectors and print their payloads",
		Long: `Run one insight detector, or all of them, and print the resulting
JSON payload to stdout.

Detectors: recurrence, redundancy, impulse, waste, needwant, health.
With no argument every detector runs; a failing detector reports an
error entry without stopping the others.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInsights,
	}

	cmd.Flags().StringP("user", "u", "", "User ID to analyze (required)")
	cmd.Flags().IntP("days", "d", 0, "Lookback window in days (0 uses each detector's default)")
	cmd.Flags().Bool("no-cache", false, "Skip writing payloads to the insight cache")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runInsights(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	userID, _ := cmd.Flags().GetString("user")
	days, _ := cmd.Flags().GetInt("days")
	noCache, _ := cmd.Flags().GetBool("no-cache")

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	engine, err := newEngine(store)
	if err != nil {
		return err
	}

	var result any
	if len(args) == 1 {
		detector, ok := detectorAliases[strings.ToLower(args[0])]
		if !ok {
			return fmt.Errorf("unknown detector %q (valid: recurrence, redundancy, impulse, waste, needwant, health)", args[0])
		}
		payload, err := engine.Analyze(ctx, userID, detector, days)
		if err != nil {
			return err
		}
		result = payload

		if !noCache {
			cacheInsight(ctx, store, userID, detector, payload)
		}
	} else {
		all := engine.AnalyzeAll(ctx, userID)
		result = all

		if !noCache {
			for detector, payload := range all {
				if _, failed := payload.(map[string]string); failed {
					continue
				}
				cacheInsight(ctx, store, userID, detector, payload)
			}
		}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	return nil
}

// cacheInsight persists a payload to the insight cache. Cache failures
// are logged, not fatal: the payload was already produced.
func cacheInsight(ctx context.Context, store *storage.SQLiteStorage, userID, detector string, payload any) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("failed to encode insight for caching", "detector", detector, "error", err)
		return
	}
	if err := store.SaveInsight(ctx, userID, detector, encoded); err != nil {
		slog.Warn("failed to cache insight", "detector", detector, "error", err)
	}
}
