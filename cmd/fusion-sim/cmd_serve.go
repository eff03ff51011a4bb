package main

import (
	"github.com/lixenwraith/fusion-sim/audio"
	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the simulation in real time behind the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			addr := a.cfg.Server.Addr
			if cmd.Flags().Changed("addr") {
				addr, _ = cmd.Flags().GetString("addr")
			}
			autostart, _ := cmd.Flags().GetBool("start")

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			if sm := a.startAudio(); sm != nil {
				defer sm.Cleanup()
			}

			sched := a.newScheduler()
			sched.Start()
			defer sched.Stop()

			core.Go(func() { a.dispatchLoop(ctx) })

			if autostart {
				a.ctrl.Start(false)
			}

			srv := server.New(a.ctrl, server.Options{
				Episodes:  a.store,
				Consulter: sched,
				Registry:  a.registry,
				Logger:    a.logger,
				Mode:      a.cfg.Server.Mode,
			})
			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (overrides config)")
	cmd.Flags().Bool("start", false, "Start an episode immediately")
	return cmd
}

// startAudio initializes the speaker when audio is enabled and routes events to it
// Returns nil when audio is disabled or unavailable
func (a *app) startAudio() *audio.SoundManager {
	if !a.cfg.Audio.Enabled {
		return nil
	}
	sm := audio.NewSoundManager(a.cfg.Audio.Volume, a.registry)
	if err := sm.Initialize(); err != nil {
		a.logger.Warn("audio unavailable", "error", err)
		return nil
	}
	audio.Listen(a.router, sm)
	return sm
}
