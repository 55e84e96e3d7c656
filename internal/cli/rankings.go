package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jkrumboe/wizard-tracker-sub001/internal/model"
)

// newRankingsCmd creates the rankings command
func newRankingsCmd() *cobra.Command {
	var (
		page     int
		limit    int
		minGames int
	)

	cmd := &cobra.Command{
		Use:   "rankings <game-type>",
		Short: "Print the leaderboard for a game type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			app, err := newApp(logger)
			if err != nil {
				return err
			}

			result, err := app.RankingsService.GetRankings(
				cmd.Context(), model.GameType(args[0]), page, limit, minGames)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RANK\tPLAYER\tRATING\tPEAK\tGAMES\tSTREAK")
			for _, entry := range result.Rankings {
				fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%+d\n",
					entry.Rank, entry.DisplayName, entry.Rating, entry.Peak,
					entry.GamesPlayed, entry.Streak)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d (%d players)\n",
				result.Pagination.Page, result.Pagination.TotalPages, result.Pagination.Total)

			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 20, "Players per page")
	cmd.Flags().IntVar(&minGames, "min-games", 0, "Minimum games played to rank")

	return cmd
}
