package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/lixenwraith/fusion-sim/render"
	"github.com/spf13/cobra"
)

// consoleLogFile receives logs while the terminal is owned by the console
const consoleLogFile = "console.log"

func newConsoleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "console",
		Short: "Run the simulation in an interactive terminal view",
		Long: `Console renders the plasma density map and telemetry panel in the terminal.

Keys: space start/stop, r reset, t/T temperature, c/C confinement,
m reaction mode, p physics mode, a mute, q quit.
Logs are written to console.log in the decision directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.Logging.DecisionDir, 0700); err != nil {
				return fmt.Errorf("creating log directory: %w", err)
			}
			logFile, err := os.OpenFile(filepath.Join(cfg.Logging.DecisionDir, consoleLogFile),
				os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
			if err != nil {
				return fmt.Errorf("opening console log: %w", err)
			}
			defer logFile.Close()

			a, err := newApp(cmd, appOptions{LogWriter: logFile})
			if err != nil {
				return err
			}
			defer a.Close()

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("creating screen: %w", err)
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			opts := render.ConsoleOptions{Router: a.router, Logger: a.logger}
			if sm := a.startAudio(); sm != nil {
				defer sm.Cleanup()
				opts.Muter = sm
			}

			sched := a.newScheduler()
			sched.Start()
			defer sched.Stop()

			return render.NewConsole(screen, a.ctrl, opts).Run(ctx)
		},
	}
	return cmd
}
