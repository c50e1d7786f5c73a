package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/PoluyanbIch/tabibot/internal/leaderboard"
)

func newLeaderboardCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, closeLog, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			board, err := leaderboard.Open(cmd.Context(), cfg.Leaderboard, logger)
			if err != nil {
				return fmt.Errorf("open leaderboard: %w", err)
			}
			defer board.Close()

			entries, err := board.Top(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read leaderboard: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No results recorded yet")
				return nil
			}
			fmt.Fprintln(out, renderLeaderboard(entries))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of entries to show (0 for all)")
	return cmd
}

func renderLeaderboard(entries []leaderboard.Entry) string {
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			e.DisplayName(),
			e.Mode,
			fmt.Sprintf("%d/%d", e.Score, e.Total),
			fmt.Sprintf("%d%%", e.Percentage),
			e.RecordedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return tableSpec{
		columns: []column{
			{header: "#", align: alignRight},
			{header: "Player", wrap: 20},
			{header: "Mode"},
			{header: "Score", align: alignRight},
			{header: "Accuracy", align: alignRight},
			{header: "Recorded"},
		},
	}.render(rows)
}
