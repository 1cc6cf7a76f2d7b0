package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jtrevag/lfg-discord-bot/config"
	"github.com/jtrevag/lfg-discord-bot/infra/store"
)

var (
	minGames int
	topN     int
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Print the active league standings",
	RunE:  runLeaderboard,
}

func init() {
	leaderboardCmd.Flags().IntVar(&minGames, "min-games", 1, "minimum games played to rank")
	leaderboardCmd.Flags().IntVar(&topN, "top", 0, "limit output to the top N players")
	rootCmd.AddCommand(leaderboardCmd)
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	ctx := cmd.Context()
	league, err := st.ActiveLeague(ctx)
	if err != nil {
		return err
	}
	board, err := st.Leaderboard(ctx, league.ID, minGames, topN)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s standings\n", league.Name)
	if len(board) == 0 {
		fmt.Fprintln(out, "no ranked players yet")
		return nil
	}
	for i, ps := range board {
		fmt.Fprintf(out, "%2d. %s  %d-%d (%.1f%%)\n",
			i+1, st.DisplayName(ps.Player), ps.GamesWon, ps.GamesPlayed-ps.GamesWon, ps.WinRate)
	}
	return nil
}
