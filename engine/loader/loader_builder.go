package loader

import (
	"log/slog"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/bikeview/engine/scene"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithWorkerPool is an option builder that shares an existing worker pool with the Loader.
// The Loader does not stop a pool it did not create.
//
// Parameters:
//   - pool: the worker pool
//
// Returns:
//   - LoaderBuilderOption: a function that applies the pool option to a loader
func WithWorkerPool(pool worker.DynamicWorkerPool) LoaderBuilderOption {
	return func(l *loader) {
		l.pool = pool
	}
}

// WithWorkers is an option builder that sets the size of the pool the Loader creates.
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n < 1 {
			n = 1
		}
		l.workers = n
	}
}

// WithLogger is an option builder that sets the structured logger.
func WithLogger(logger *slog.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithModel is an option builder that pre-populates the model cache with a model.
//
// Parameters:
//   - key: the cache key for the model
//   - root: the model's root node
//
// Returns:
//   - LoaderBuilderOption: a function that applies the model option to a loader
func WithModel(key string, root *scene.Node) LoaderBuilderOption {
	return func(l *loader) {
		l.modelCache[key] = root
	}
}
