package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/lixenwraith/fusion-sim/genetic"
	"github.com/lixenwraith/fusion-sim/logging"
	"github.com/lixenwraith/fusion-sim/tuning"
	"github.com/spf13/cobra"
)

func newTuneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tune",
		Short: "Search temperature and confinement for the best episode score",
		Long: `Tune runs a genetic search over temperature and confinement.

Each candidate is scored by the mean score of headless episodes seeded from the
configured seed. Other settings are taken from the configuration unchanged.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			generations, _ := cmd.Flags().GetInt("generations")
			population, _ := cmd.Flags().GetInt("population")
			ticks, _ := cmd.Flags().GetInt("ticks")
			episodes, _ := cmd.Flags().GetInt("episodes")
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())

			gcfg := genetic.DefaultConfig()
			gcfg.MaxIterations = generations
			gcfg.PoolSize = population

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			res, err := tuning.Tune(ctx, tuning.Config{
				Base:     cfg.EngineConfig(),
				Ticks:    ticks,
				Episodes: episodes,
				Genetic:  gcfg,
				Logger:   logger,
			})
			if err != nil && len(res.History) == 0 {
				return err
			}
			if err != nil {
				logger.Warn("tuning interrupted, reporting best so far", "error", err)
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printTuneResult(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().Int("generations", 8, "Number of generations to evolve")
	cmd.Flags().Int("population", 16, "Candidates per generation")
	cmd.Flags().Int("ticks", 600, "Ticks per evaluation episode")
	cmd.Flags().Int("episodes", 2, "Seeds averaged per candidate")
	return cmd
}

func printTuneResult(w io.Writer, res tuning.Result) {
	for _, g := range res.History {
		fmt.Fprintf(w, "generation %2d: best %8.1f  avg %8.1f  worst %8.1f\n",
			g.Generation, g.BestScore, g.AverageScore, g.WorstScore)
	}
	fmt.Fprintf(w, "best: temperature %.1f confinement %.3f score %.1f (baseline %.1f)\n",
		res.Settings.Temperature, res.Settings.Confinement, res.Score, res.Baseline)
}
