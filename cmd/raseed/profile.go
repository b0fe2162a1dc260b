package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/raseed-app/raseed/internal/model"
	"github.com/spf13/cobra"
)

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage user profiles",
	}

	cmd.AddCommand(profileShowCmd())
	cmd.AddCommand(profileSetCmd())

	return cmd
}

func profileShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a user's profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			userID, _ := cmd.Flags().GetString("user")

			store, err := openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			profile, err := store.GetProfile(ctx, userID)
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(profile)
		},
	}

	cmd.Flags().StringP("user", "u", "", "User ID (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func profileSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update a user's profile settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			userID, _ := cmd.Flags().GetString("user")
			budget, _ := cmd.Flags().GetFloat64("budget")
			savings, _ := cmd.Flags().GetFloat64("savings-pct")
			sensitivity, _ := cmd.Flags().GetFloat64("price-sensitivity")

			store, err := openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			profile := &model.UserProfile{
				UserID:           userID,
				BudgetMonthly:    budget,
				SavingsPct:       savings,
				PriceSensitivity: sensitivity,
			}
			if err := store.SaveProfile(ctx, profile); err != nil {
				return err
			}

			slog.Info("Profile saved",
				"user", userID,
				"budget_monthly", budget,
				"savings_pct", savings,
				"price_sensitivity", sensitivity)
			return nil
		},
	}

	cmd.Flags().StringP("user", "u", "", "User ID (required)")
	cmd.Flags().Float64("budget", 0, "Monthly budget")
	cmd.Flags().Float64("savings-pct", 0, "Savings percentage of income")
	cmd.Flags().Float64("price-sensitivity", 0.5, "Price sensitivity between 0 and 1")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
