package selection

import (
	"log/slog"

	"github.com/Carmen-Shannon/bikeview/common"
	"github.com/Carmen-Shannon/bikeview/engine/scene"
)

// MachineBuilderOption is a functional option for configuring a Machine.
type MachineBuilderOption func(*machine)

// WithColors sets the highlight color of the viewed part and the baseline of uncolored nodes.
//
// Parameters:
//   - highlight: color of the viewed part's nodes
//   - baseline: color of nodes without a catalog color
//
// Returns:
//   - MachineBuilderOption: a function that applies the colors to a machine
func WithColors(highlight, baseline common.Color) MachineBuilderOption {
	return func(m *machine) {
		m.highlight = highlight
		m.baseline = baseline
	}
}

// WithModel attaches a bound model from the start.
func WithModel(root *scene.Node) MachineBuilderOption {
	return func(m *machine) {
		m.root = root
	}
}

// WithOnChange registers a callback invoked with the new state after every transition.
// The callback runs without the machine's lock held.
func WithOnChange(fn func(Snapshot)) MachineBuilderOption {
	return func(m *machine) {
		m.onChange = fn
	}
}

// WithLogger sets the logger transitions are reported to.
func WithLogger(logger *slog.Logger) MachineBuilderOption {
	return func(m *machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}
