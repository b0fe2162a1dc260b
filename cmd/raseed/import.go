package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/raseed-app/raseed/internal/normalize"
	"github.com/raseed-app/raseed/internal/service"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import receipt documents from a JSON file",
		Long: `Import raw receipt documents into the local database.

The file must contain a JSON array of receipt objects. Field names are
tolerant of extractor drift (vendor/store/store_name and so on);
documents without an id get one assigned. Re-importing the same file is
idempotent.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().StringP("user", "u", "", "User ID to import receipts for (required)")
	cmd.Flags().Bool("dry-run", false, "Show what would be imported without saving")
	_ = cmd.MarkFlagRequired("user")

	_ = viper.BindPFlag("import.dry_run", cmd.Flags().Lookup("dry-run"))

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	userID, _ := cmd.Flags().GetString("user")

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	var records []service.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to parse input file: %w", err)
	}
	if len(records) == 0 {
		slog.Info("No receipts found in input file")
		return nil
	}

	// Assign ids and the user before validation so re-imports dedupe.
	for _, raw := range records {
		if _, ok := raw["id"].(string); !ok {
			raw["id"] = uuid.NewString()
		}
		raw["user_id"] = userID
	}

	_, stats := normalize.Batch(records)
	slog.Info("Parsed receipt documents",
		"total", stats.Total,
		"usable", stats.Usable,
		"missing_timestamp", stats.MissingTime,
		"missing_vendor", stats.MissingVendor,
		"with_problems", stats.Problems)

	if viper.GetBool("import.dry_run") {
		slog.Warn("Dry run mode - not saving to database")
		return nil
	}

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	bar := progressbar.NewOptions(len(records),
		progressbar.OptionSetDescription("Importing receipts"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	const batchSize = 100
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := store.SaveReceipts(ctx, userID, records[i:end]); err != nil {
			return fmt.Errorf("failed to save receipts: %w", err)
		}
		_ = bar.Add(end - i)
	}
	_ = bar.Finish()

	count, err := store.ReceiptCount(ctx, userID)
	if err != nil {
		return err
	}
	slog.Info("✅ Import complete", "imported", len(records), "total_stored", count)

	return nil
}
