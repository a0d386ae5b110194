package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/Carmen-Shannon/bikeview/engine/camera"
	"github.com/Carmen-Shannon/bikeview/parts"
	"github.com/Carmen-Shannon/bikeview/viewer"
	"github.com/spf13/cobra"
)

func newProjectCommand(a *app) *cobra.Command {
	var (
		width, height int
		asJSON        bool
		all           bool
	)
	cmd := &cobra.Command{
		Use:   "project <model.glb|model.gltf>",
		Short: "Print label positions at the resting camera pose",
		Long: `Bind a model and print where each part label lands once the intro has finished,
with the opacity the crowding pass gives it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if width <= 0 || height <= 0 {
				return fmt.Errorf("viewport %dx%d must be positive", width, height)
			}
			root, err := a.loadModel(args[0])
			if err != nil {
				return err
			}

			c := a.cfg.Camera
			rest, target := c.RestPosition(), c.Target()
			cam := camera.NewCamera(
				camera.WithPosition(rest[0], rest[1], rest[2]),
				camera.WithTarget(target[0], target[1], target[2]),
				camera.WithFov(c.FovRadians()),
				camera.WithNear(c.Near),
				camera.WithFar(c.Far),
			)
			labels, _ := viewer.ProjectOnce(root, a.catalog, parts.Environment{Baseline: a.cfg.Colors.Baseline}, cam, width, height)
			if !all {
				visible := labels[:0]
				for _, l := range labels {
					if l.Visible {
						visible = append(visible, l)
					}
				}
				labels = visible
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(labels)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PART\tX\tY\tOPACITY\tVISIBLE")
			for _, l := range labels {
				fmt.Fprintf(tw, "%s\t%.1f\t%.1f\t%.2f\t%t\n", l.Name, l.X, l.Y, l.Opacity, l.Visible)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&width, "width", 1280, "Viewport width in pixels")
	cmd.Flags().IntVar(&height, "height", 720, "Viewport height in pixels")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print labels as JSON")
	cmd.Flags().BoolVar(&all, "all", false, "Include labels of parts that did not bind")
	return cmd
}
