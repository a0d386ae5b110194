package loader

import (
	"io"

	"github.com/Carmen-Shannon/bikeview/engine/scene"
)

// gltfLoaderBackendImpl is the loaderBackend for glTF and GLB files.
type gltfLoaderBackendImpl struct {
	importer gltfImporter
}

var _ loaderBackend = &gltfLoaderBackendImpl{}

func newGLTFLoaderBackend() loaderBackend {
	return &gltfLoaderBackendImpl{
		importer: newGLTFImporter(),
	}
}

func (b *gltfLoaderBackendImpl) Load(path string) (*scene.Node, error) {
	return b.importer.Import(path)
}

func (b *gltfLoaderBackendImpl) LoadReader(r io.Reader, isBinary bool, name string) (*scene.Node, error) {
	return b.importer.ImportReader(r, isBinary, name)
}
