package main

import (
	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/mcpserver"
	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the simulation as MCP tools over stdio",
		Long: `Run an MCP server on stdin/stdout exposing the simulation as tools:
fusion_state, fusion_telemetry, fusion_adjust, fusion_restart and fusion_episodes.

The simulation runs in real time while the server is connected.
Logs go to stderr so stdout stays reserved for the protocol.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			autostart, _ := cmd.Flags().GetBool("start")

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			sched := a.newScheduler()
			sched.Start()
			defer sched.Stop()

			core.Go(func() { a.dispatchLoop(ctx) })

			if autostart {
				a.ctrl.Start(false)
			}

			srv := mcpserver.New(a.ctrl, mcpserver.Config{
				Name:     "fusion-sim",
				Version:  version,
				Episodes: a.store,
				Logger:   a.logger,
			})
			return srv.Run(ctx)
		},
	}

	cmd.Flags().Bool("start", true, "Start an episode immediately")
	return cmd
}
