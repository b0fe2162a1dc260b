package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute and persist the financial health score",
		Long: `Compute the composite financial health score for a user and persist
it to their profile.

The stored score only changes when the newly computed one differs by at
least one point, so repeated runs on unchanged data don't churn the
database.`,
		RunE: runScore,
	}

	cmd.Flags().StringP("user", "u", "", "User ID to score (required)")
	cmd.Flags().IntP("days", "d", 0, "Lookback window in days (0 uses the default)")
	cmd.Flags().Bool("dry-run", false, "Compute without persisting the score")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	userID, _ := cmd.Flags().GetString("user")
	days, _ := cmd.Flags().GetInt("days")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

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

	payload, err := engine.AnalyzeHealth(ctx, userID, days)
	if err != nil {
		return err
	}

	if dryRun {
		slog.Info("Dry run mode - score not persisted", "score", payload.Score)
	} else {
		updated, err := store.UpdateHealthScore(ctx, userID, payload.Score)
		if err != nil {
			return fmt.Errorf("failed to persist health score: %w", err)
		}
		if updated {
			slog.Info("Health score updated", "user", userID, "score", payload.Score)
		} else {
			slog.Info("Health score unchanged, skipping write", "user", userID, "score", payload.Score)
		}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(payload); err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	return nil
}
