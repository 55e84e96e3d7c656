package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jkrumboe/wizard-tracker-sub001/internal/model"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/services/recalc"
)

// newRecalculateCmd creates the recalculate command
func newRecalculateCmd() *cobra.Command {
	var (
		dryRun   bool
		gameType string
	)

	cmd := &cobra.Command{
		Use:   "recalculate",
		Short: "Rebuild all ratings by replaying the historical game corpus",
		Long: `Replays every finished game in chronological order to rebuild
ratings from a zero state. Run this after scoring rule changes or
identity merges. With --dry-run, deltas are computed but nothing is
reset or persisted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			app, err := newApp(logger)
			if err != nil {
				return err
			}

			opts := recalc.Options{
				DryRun:   dryRun,
				GameType: model.GameType(gameType),
				OnProgress: func(processed, total int) {
					if processed%100 == 0 || processed == total {
						fmt.Fprintf(cmd.OutOrStdout(), "processed %d/%d games\n", processed, total)
					}
				},
			}

			summary, err := app.RecalcService.RecalculateAll(cmd.Context(), opts)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"done: %d games processed, %d player updates, %d skipped, %d errors\n",
				summary.GamesProcessed, summary.PlayerUpdates, summary.Skipped, len(summary.Errors))
			for _, msg := range summary.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", msg)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute deltas without persisting")
	cmd.Flags().StringVar(&gameType, "game-type", "", "Restrict to one game type")

	return cmd
}
