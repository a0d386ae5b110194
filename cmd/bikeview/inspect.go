package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Carmen-Shannon/bikeview/engine/loader"
	"github.com/Carmen-Shannon/bikeview/engine/scene"
	"github.com/Carmen-Shannon/bikeview/parts"
	"github.com/spf13/cobra"
)

func newInspectCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <model.glb|model.gltf>",
		Short: "Print the node tree of a model with part matches",
		Long: `Print every node of a model with the part it binds to.

Nodes without a material are never bound. The summary lists catalog parts that no node
claims; their labels stay hidden in the viewer.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := a.loadModel(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			matches := parts.Inspect(root, a.catalog)
			for _, m := range matches {
				line := strings.Repeat("  ", m.Depth) + m.Name + " [" + m.Kind.String() + "]"
				switch {
				case m.Part != "":
					line += " -> " + m.Part
				case !m.Eligible:
					line += " (no material)"
				}
				fmt.Fprintln(out, line)
			}

			report := parts.Bind(root, a.catalog, parts.NewStateTable(a.catalog), parts.Environment{Baseline: a.cfg.Colors.Baseline})
			fmt.Fprintf(out, "\n%d nodes, %d eligible, %d matched, %d unmatched\n",
				len(matches), report.Eligible, report.Matched, report.Unmatched)
			if unbound := report.Unbound(a.catalog); len(unbound) > 0 {
				fmt.Fprintf(out, "parts without nodes: %s\n", strings.Join(unbound, ", "))
			}
			return nil
		},
	}
}

// loadModel decodes a glTF or GLB file.
func (a *app) loadModel(path string) (*scene.Node, error) {
	l := loader.NewLoader(loader.BackendTypeGLTF, loader.WithLogger(a.logger))
	defer l.Close()

	root, err := l.Load(path)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("loaded model", slog.String("path", path))
	return root, nil
}
