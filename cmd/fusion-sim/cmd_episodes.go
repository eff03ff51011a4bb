package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/lixenwraith/fusion-sim/core"
	"github.com/spf13/cobra"
)

func newEpisodesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "episodes",
		Short: "List recorded episodes",
		Long: `List episodes from the episode store.

By default the highest scoring episodes are shown; --recent lists the newest
instead and --outcome filters by how the episode ended.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			top, _ := cmd.Flags().GetInt("top")
			recent, _ := cmd.Flags().GetBool("recent")
			outcome, _ := cmd.Flags().GetString("outcome")
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			st, err := openStore(cfg.Store)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()
			var episodes []core.EpisodeSummary
			switch {
			case outcome != "":
				episodes, err = st.EpisodesByOutcome(ctx, core.Outcome(outcome), top)
			case recent:
				episodes, err = st.RecentEpisodes(ctx, top)
			default:
				episodes, err = st.TopEpisodes(ctx, top)
			}
			if err != nil {
				return fmt.Errorf("listing episodes: %w", err)
			}

			total, err := st.CountEpisodes(ctx)
			if err != nil {
				return fmt.Errorf("counting episodes: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"episodes": episodes,
					"total":    total,
				})
			}
			printEpisodes(cmd.OutOrStdout(), episodes, total)
			return nil
		},
	}

	cmd.Flags().Int("top", 10, "Number of episodes to list")
	cmd.Flags().Bool("recent", false, "List newest episodes instead of best")
	cmd.Flags().String("outcome", "", "Only list episodes with this outcome")
	return cmd
}

func printEpisodes(w io.Writer, episodes []core.EpisodeSummary, total int) {
	if len(episodes) == 0 {
		fmt.Fprintf(w, "No episodes recorded (%d total).\n", total)
		return
	}
	fmt.Fprintf(w, "%-8s %-12s %10s %10s %8s %6s %10s  %s\n",
		"EPISODE", "OUTCOME", "SCORE", "ENERGY", "FUSIONS", "PEAK", "DURATION", "STARTED")
	for _, s := range episodes {
		fmt.Fprintf(w, "%-8d %-12s %10.1f %10.1f %8d %6d %10s  %s\n",
			s.Episode, s.Outcome, s.Score, s.TotalEnergyMeV, s.TotalFusions, s.PeakFusionRate,
			s.Duration.Round(time.Millisecond), s.StartedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "%d of %d episodes\n", len(episodes), total)
}
