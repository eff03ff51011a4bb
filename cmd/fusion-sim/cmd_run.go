package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/engine"
	"github.com/lixenwraith/fusion-sim/event"
	"github.com/lixenwraith/fusion-sim/parameter"
	"github.com/spf13/cobra"
)

// runResult is the JSON document printed by a headless run
type runResult struct {
	Seed      uint64                 `json:"seed"`
	Ticks     int                    `json:"ticks"`
	Consults  int                    `json:"consults"`
	Episodes  []core.EpisodeSummary  `json:"episodes"`
	Telemetry core.TelemetrySnapshot `json:"telemetry"`
	Counters  core.Counters          `json:"counters"`
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a headless simulation and print episode summaries",
		Long: `Run drives the simulation on a simulated clock for a fixed number of ticks.

The same seed and settings always produce the same episodes. When an advisor
is configured it is consulted on its interval of simulated time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ticks, _ := cmd.Flags().GetInt("ticks")
			jsonOut, _ := cmd.Flags().GetBool("json")
			if ticks <= 0 {
				return fmt.Errorf("--ticks must be positive, got %d", ticks)
			}

			opts := appOptions{Clock: engine.NewManualClock(time.Now().UTC())}
			if cmd.Flags().Changed("seed") {
				seed, _ := cmd.Flags().GetUint64("seed")
				opts.Seed = &seed
			}

			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := runHeadless(cmd.Context(), a, ticks)
			if err != nil {
				return err
			}
			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printRunResult(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().Int("ticks", 1000, "Number of physics ticks to run")
	cmd.Flags().Uint64("seed", 0, "Override the configured seed")
	return cmd
}

// runHeadless steps the controller tick by tick and collects every finished episode
// The run stops early when the wall fails
func runHeadless(ctx context.Context, a *app, ticks int) (runResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	res := runResult{Seed: a.cfg.Simulation.Seed, Episodes: []core.EpisodeSummary{}}

	a.router.Register(event.HandlerFunc{
		Types: []event.EventType{event.EventEpisodeEnd},
		Fn: func(ev event.SimEvent) {
			if s, ok := ev.Payload.(*core.EpisodeSummary); ok {
				res.Episodes = append(res.Episodes, *s)
			}
		},
	})

	clock, _ := a.clock.(*engine.ManualClock)
	var sched *engine.Scheduler
	consultEvery := 0
	if a.advisor != nil && a.cfg.Advisor.Interval > 0 {
		sched = a.newScheduler()
		consultEvery = int(a.cfg.Advisor.Interval / parameter.TickInterval)
		if consultEvery < 1 {
			consultEvery = 1
		}
	}

	a.ctrl.Start(true)
	for i := 0; i < ticks; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if clock != nil {
			clock.Advance(parameter.TickInterval)
		}
		a.ctrl.Advance(parameter.TickInterval)
		res.Ticks++
		a.router.Dispatch()
		if a.ctrl.State() != engine.StateRunning {
			break
		}

		if sched != nil && res.Ticks%consultEvery == 0 {
			if _, err := sched.Consult(ctx); err != nil {
				a.logger.Warn("advisory consult failed", "error", err)
			}
			res.Consults++
		}
	}
	a.ctrl.Stop()
	a.router.Dispatch()

	snap := a.ctrl.Snapshot()
	res.Telemetry = snap.Telemetry
	res.Counters = snap.Counters
	return res, nil
}

func printRunResult(w io.Writer, res runResult) {
	fmt.Fprintf(w, "seed %d, %d ticks, %d advisory consults\n", res.Seed, res.Ticks, res.Consults)
	for _, s := range res.Episodes {
		fmt.Fprintf(w, "episode %d: %-12s score %8.1f  energy %8.1f MeV  fusions %5d  peak %3d  %s\n",
			s.Episode, s.Outcome, s.Score, s.TotalEnergyMeV, s.TotalFusions, s.PeakFusionRate,
			s.Duration.Round(time.Millisecond))
	}
	t := res.Telemetry
	fmt.Fprintf(w, "final: T=%.1f C=%.3f Q=%.3f q=%.3f lawson=%.3f wall=%.1f\n",
		t.Temperature, t.Confinement, t.QFactor, t.SafetyFactor, t.LawsonRatio, res.Counters.WallIntegrity)
}
