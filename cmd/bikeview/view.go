package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/bikeview/engine"
	"github.com/Carmen-Shannon/bikeview/engine/camera"
	"github.com/Carmen-Shannon/bikeview/engine/renderer"
	"github.com/Carmen-Shannon/bikeview/engine/window"
	"github.com/Carmen-Shannon/bikeview/overlay"
	"github.com/Carmen-Shannon/bikeview/viewer"
	"github.com/spf13/cobra"
)

const tickRate = 60

func newViewCommand(a *app) *cobra.Command {
	var (
		headless  bool
		noOverlay bool
		addr      string
	)
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Open the viewer",
		Long: `Open the viewer in a window, or run it headless and watch it through the overlay page.

The overlay serves a page with the labels and the info panel at http://<addr>/ and streams
frame snapshots over a websocket at /ws.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Overlay.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runView(ctx, headless, !noOverlay)
		},
	}
	cmd.Flags().BoolVar(&headless, "headless", false, "Run without a window, using the null renderer")
	cmd.Flags().BoolVar(&noOverlay, "no-overlay", false, "Do not serve the overlay page")
	cmd.Flags().StringVar(&addr, "addr", "", "Overlay listen address (overrides the config)")
	return cmd
}

func (a *app) runView(ctx context.Context, headless, serveOverlay bool) error {
	eng, err := a.newEngine(headless)
	if err != nil {
		return err
	}

	var srv overlay.Server
	opts := []viewer.ViewerBuilderOption{
		viewer.WithConfig(a.cfg),
		viewer.WithLogger(a.logger),
		viewer.WithOnFailure(func(error) {
			// A headless session has nothing left to show.
			if headless && !serveOverlay {
				eng.Quit()
			}
		}),
	}
	if serveOverlay {
		opts = append(opts, viewer.WithPublisher(func(s viewer.Snapshot) { srv.Publish(s) }, a.cfg.Overlay.PublishInterval()))
	}

	v, err := viewer.New(eng, a.catalog, opts...)
	if err != nil {
		return err
	}

	if serveOverlay {
		srv = overlay.NewServer(v, overlay.WithAddr(a.cfg.Overlay.Addr), overlay.WithLogger(a.logger))
		go func() {
			if err := srv.ListenAndServe(ctx); err != nil {
				a.logger.Error("overlay stopped", slog.String("error", err.Error()))
			}
		}()
		defer srv.Close()
	}

	if err := v.Run(ctx); err != nil {
		return err
	}
	return v.Err()
}

// newEngine wires the window, renderer and camera.
func (a *app) newEngine(headless bool) (engine.Engine, error) {
	w, h := a.cfg.Window.Width, a.cfg.Window.Height
	cam := camera.NewCamera(
		camera.WithFov(a.cfg.Camera.FovRadians()),
		camera.WithAspect(float32(w)/float32(h)),
		camera.WithNear(a.cfg.Camera.Near),
		camera.WithFar(a.cfg.Camera.Far),
	)
	opts := []engine.EngineBuilderOption{
		engine.WithLogger(a.logger),
		engine.WithProfiling(a.profile),
		engine.WithTickRate(tickRate),
		engine.WithCamera(cam),
		engine.WithClearColor(a.cfg.Colors.Clear),
	}

	if headless {
		r, err := renderer.NewRenderer(renderer.BackendTypeNull, nil, renderer.WithSize(w, h))
		if err != nil {
			return nil, err
		}
		a.logger.Info("running headless", slog.Int("width", w), slog.Int("height", h))
		return engine.NewEngine(append(opts, engine.WithRenderer(r), engine.WithSize(w, h))...), nil
	}

	win, err := window.NewWindow(
		window.WithTitle(a.cfg.Window.Title),
		window.WithSize(w, h),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	present := renderer.PresentModeUncapped
	if a.cfg.Window.VSync {
		present = renderer.PresentModeVSync
	}
	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, win, renderer.WithPresentMode(present))
	if err != nil {
		_ = win.Close()
		return nil, err
	}
	return engine.NewEngine(append(opts, engine.WithWindow(win), engine.WithRenderer(r))...), nil
}
