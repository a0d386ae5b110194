package intro

import (
	"log/slog"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// SequencerBuilderOption is a functional option for configuring a Sequencer.
type SequencerBuilderOption func(*sequencer)

// WithPath sets the start and resting camera positions and the point the camera faces.
//
// Parameters:
//   - from: the camera position when the move starts
//   - to: the resting camera position
//   - lookAt: the point the camera faces throughout the move
//
// Returns:
//   - SequencerBuilderOption: a function that applies the path to a sequencer
func WithPath(from, to, lookAt mgl32.Vec3) SequencerBuilderOption {
	return func(s *sequencer) {
		s.from, s.to, s.lookAt = from, to, lookAt
	}
}

// WithTiming sets the wait before the move and its length.
//
// Parameters:
//   - delay: time from Start until the camera moves
//   - duration: length of the move
//
// Returns:
//   - SequencerBuilderOption: a function that applies the timing to a sequencer
func WithTiming(delay, duration time.Duration) SequencerBuilderOption {
	return func(s *sequencer) {
		if delay >= 0 {
			s.delay = delay
		}
		if duration >= 0 {
			s.duration = duration
		}
	}
}

// WithLogger sets the logger phase changes are reported to.
func WithLogger(logger *slog.Logger) SequencerBuilderOption {
	return func(s *sequencer) {
		if logger != nil {
			s.logger = logger
		}
	}
}
