package loader

import (
	"io"

	"github.com/Carmen-Shannon/bikeview/engine/scene"
)

// loaderBackend is implemented by each model file format.
type loaderBackend interface {
	// Load imports a model file into a node hierarchy.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *scene.Node: the root group of the model
	//   - error: error if loading fails
	Load(path string) (*scene.Node, error)

	// LoadReader imports a model from a reader stream.
	//
	// Parameters:
	//   - r: the reader providing model data
	//   - isBinary: true for the binary container variant of the format
	//   - name: name for the root group
	//
	// Returns:
	//   - *scene.Node: the root group of the model
	//   - error: error if loading fails
	LoadReader(r io.Reader, isBinary bool, name string) (*scene.Node, error)
}
