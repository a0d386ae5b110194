package viewer

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/bikeview/config"
)

// ViewerBuilderOption is a functional option for configuring a Viewer via New.
type ViewerBuilderOption func(*viewer)

// WithConfig sets the viewer configuration. Defaults to config.Default().
func WithConfig(cfg config.Config) ViewerBuilderOption {
	return func(v *viewer) {
		v.cfg = cfg
	}
}

// WithBundleSource replaces the asynchronous asset loader.
//
// Parameters:
//   - source: starts a load and delivers one result
//
// Returns:
//   - ViewerBuilderOption: a function that applies the source to a viewer
func WithBundleSource(source BundleSource) ViewerBuilderOption {
	return func(v *viewer) {
		v.source = source
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) ViewerBuilderOption {
	return func(v *viewer) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithClock replaces time.Now for the intro and publishing.
func WithClock(now func() time.Time) ViewerBuilderOption {
	return func(v *viewer) {
		if now != nil {
			v.now = now
		}
	}
}

// WithPublisher registers a sink for frame snapshots, called at most once per interval.
//
// Parameters:
//   - publish: the sink, called on the frame loop goroutine
//   - interval: minimum time between calls, zero uses the configured overlay rate
//
// Returns:
//   - ViewerBuilderOption: a function that applies the publisher to a viewer
func WithPublisher(publish func(Snapshot), interval time.Duration) ViewerBuilderOption {
	return func(v *viewer) {
		v.publish = publish
		v.interval = interval
	}
}

// WithOnFailure registers a callback invoked exactly once if loading fails.
func WithOnFailure(fn func(error)) ViewerBuilderOption {
	return func(v *viewer) {
		v.onFailure = fn
	}
}
