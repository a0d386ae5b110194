package loader

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/bikeview/common"
	"github.com/Carmen-Shannon/bikeview/engine/scene"
)

// ErrUnsupportedFormat is returned when no backend handles a file extension.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// AssetError reports which asset of a load failed.
type AssetError struct {
	Path string
	Err  error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *AssetError) Unwrap() error {
	return e.Err
}

// TextureSpec names a 2D texture to load with its sampling parameters.
type TextureSpec struct {
	Name   string
	Path   string
	Wrap   common.WrapMode
	Repeat [2]float32
}

// CubeSpec names a cube map whose faces live in Dir as px, nx, py, ny, pz, nz plus Ext.
type CubeSpec struct {
	Name    string
	Dir     string
	Ext     string
	Mapping common.CubeMapping
}

// Bundle lists every asset that must load together before a model can be shown.
type Bundle struct {
	ModelPath string
	Textures  []TextureSpec
	CubeMaps  []CubeSpec
}

// BundleResult is delivered exactly once per LoadBundleAsync call.
type BundleResult struct {
	Model    *scene.Node
	Textures map[string]*common.Texture
	CubeMaps map[string]*common.CubeTexture
	// Err is the first failure, an *AssetError naming the asset. Nothing else is valid when set.
	Err error
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	modelCache map[string]*scene.Node
	backend    loaderBackend

	pool     worker.DynamicWorkerPool
	ownsPool bool
	workers  int
	nextTask int
	logger   *slog.Logger
}

// Loader loads models and textures and caches models by path.
// Blocking loads run on the caller's goroutine; the Async variants run on a worker pool and
// report through a channel that receives exactly one value.
type Loader interface {
	// Load imports a model file and caches the result.
	// If the model is already cached the cached hierarchy is returned; callers that mutate it
	// share those mutations.
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - *scene.Node: the model's root group
	//   - error: ErrUnsupportedFormat for unknown extensions, or the parse error
	Load(path string) (*scene.Node, error)

	// LoadReader imports a model from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key and root name for the loaded model
	//   - r: the reader providing model data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - *scene.Node: the model's root group
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, isGLB bool) (*scene.Node, error)

	// LoadTexture reads and validates a 2D texture.
	//
	// Parameters:
	//   - spec: the texture path and sampling parameters
	//
	// Returns:
	//   - *common.Texture: the texture with its encoded bytes and dimensions
	//   - error: error if the file cannot be read or decoded
	LoadTexture(spec TextureSpec) (*common.Texture, error)

	// LoadCubeTexture reads and validates the six faces of a cube map, decoding faces in parallel.
	//
	// Parameters:
	//   - spec: the face directory, extension and mapping
	//
	// Returns:
	//   - *common.CubeTexture: the cube map
	//   - error: error naming the first face that failed
	LoadCubeTexture(spec CubeSpec) (*common.CubeTexture, error)

	// LoadBundleAsync loads a model with its textures and cube maps on the worker pool.
	// It never blocks on decoding; the returned channel receives exactly one result.
	//
	// Parameters:
	//   - b: the assets to load
	//
	// Returns:
	//   - <-chan BundleResult: buffered channel receiving the single result
	LoadBundleAsync(b Bundle) <-chan BundleResult

	// Get retrieves a cached model by name. Returns nil if not found.
	Get(name string) *scene.Node

	// Models returns a snapshot of the model cache keyed by name.
	Models() map[string]*scene.Node

	// Close stops the worker pool when the loader created it.
	Close()
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		modelCache: make(map[string]*scene.Node),
		workers:    4,
		logger:     slog.Default(),
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}

	if l.pool == nil {
		l.pool = worker.NewDynamicWorkerPool(l.workers, 64, 1*time.Second)
		l.ownsPool = true
	}
	return l
}

func (l *loader) Load(path string) (*scene.Node, error) {
	if cached := l.Get(path); cached != nil {
		return cached, nil
	}

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	root, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	l.logger.Debug("model imported", "path", path, "nodes", countNodes(root), "elapsed", time.Since(start))

	l.mu.Lock()
	l.modelCache[path] = root
	l.mu.Unlock()
	return root, nil
}

func (l *loader) LoadReader(name string, r io.Reader, isGLB bool) (*scene.Node, error) {
	if cached := l.Get(name); cached != nil {
		return cached, nil
	}

	root, err := l.backend.LoadReader(r, isGLB, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}

	l.mu.Lock()
	l.modelCache[name] = root
	l.mu.Unlock()
	return root, nil
}

func (l *loader) LoadTexture(spec TextureSpec) (*common.Texture, error) {
	data, err := os.ReadFile(spec.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read texture %s: %w", spec.Path, err)
	}

	tex := &common.Texture{
		Name:   common.Coalesce(spec.Name, filepath.Base(spec.Path)),
		Path:   spec.Path,
		Data:   data,
		WrapS:  spec.Wrap,
		WrapT:  spec.Wrap,
		Repeat: spec.Repeat,
	}
	if tex.Repeat == [2]float32{} {
		tex.Repeat = [2]float32{1, 1}
	}
	if _, _, _, err := tex.Decode(); err != nil {
		return nil, err
	}
	return tex, nil
}

func (l *loader) LoadCubeTexture(spec CubeSpec) (*common.CubeTexture, error) {
	type faceResult struct {
		face int
		tex  *common.Texture
		err  error
	}

	results := make(chan faceResult, len(common.CubeFaceNames))
	for i, name := range common.CubeFaceNames {
		path := filepath.Join(spec.Dir, name+spec.Ext)
		face := i
		l.submit(func() {
			tex, err := l.LoadTexture(TextureSpec{Name: name, Path: path, Wrap: common.WrapClamp})
			results <- faceResult{face: face, tex: tex, err: err}
		}, func(err error) {
			results <- faceResult{face: face, err: err}
		})
	}

	cube := &common.CubeTexture{Mapping: spec.Mapping}
	var firstErr error
	for range common.CubeFaceNames {
		r := <-results
		if r.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("cube face %s: %w", common.CubeFaceNames[r.face], r.err)
			}
			continue
		}
		cube.Faces[r.face] = r.tex
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return cube, nil
}

func (l *loader) LoadBundleAsync(b Bundle) <-chan BundleResult {
	out := make(chan BundleResult, 1)

	type assetResult struct {
		name  string
		path  string
		model *scene.Node
		tex   *common.Texture
		cube  *common.CubeTexture
		err   error
	}

	pending := 1 + len(b.Textures)
	results := make(chan assetResult, pending+len(b.CubeMaps))

	l.submit(func() {
		root, err := l.Load(b.ModelPath)
		results <- assetResult{path: b.ModelPath, model: root, err: err}
	}, func(err error) {
		results <- assetResult{path: b.ModelPath, err: err}
	})

	for _, spec := range b.Textures {
		spec := spec
		l.submit(func() {
			tex, err := l.LoadTexture(spec)
			results <- assetResult{name: spec.Name, path: spec.Path, tex: tex, err: err}
		}, func(err error) {
			results <- assetResult{name: spec.Name, path: spec.Path, err: err}
		})
	}

	// Cube faces fan out on the pool themselves, so each cube map is collected on its own
	// goroutine instead of holding a worker while its faces wait for one.
	for _, spec := range b.CubeMaps {
		spec := spec
		pending++
		go func() {
			cube, err := l.LoadCubeTexture(spec)
			results <- assetResult{name: spec.Name, path: spec.Dir, cube: cube, err: err}
		}()
	}

	go func() {
		res := BundleResult{
			Textures: make(map[string]*common.Texture),
			CubeMaps: make(map[string]*common.CubeTexture),
		}
		for i := 0; i < pending; i++ {
			r := <-results
			switch {
			case r.err != nil:
				if res.Err == nil {
					res.Err = &AssetError{Path: r.path, Err: r.err}
				}
			case r.model != nil:
				res.Model = r.model
			case r.tex != nil:
				res.Textures[r.name] = r.tex
			case r.cube != nil:
				res.CubeMaps[r.name] = r.cube
			}
		}
		if res.Err != nil {
			res = BundleResult{Err: res.Err}
		}
		out <- res
	}()

	return out
}

func (l *loader) Get(name string) *scene.Node {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[name]
}

func (l *loader) Models() map[string]*scene.Node {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]*scene.Node, len(l.modelCache))
	for k, v := range l.modelCache {
		result[k] = v
	}
	return result
}

func (l *loader) Close() {
	if l.ownsPool {
		l.pool.Stop()
	}
}

// submit runs fn on the worker pool. A panic inside fn is converted into an error and passed
// to onPanic so that the waiting collector always receives a result.
func (l *loader) submit(fn func(), onPanic func(error)) {
	l.mu.Lock()
	id := l.nextTask
	l.nextTask++
	l.mu.Unlock()

	l.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			defer func() {
				if r := recover(); r != nil {
					l.logger.Error("loader task panicked", "task", id, "panic", r)
					onPanic(fmt.Errorf("panic: %v", r))
				}
			}()
			fn()
			return nil, nil
		},
	})
}

// resolveBackend selects an appropriate loader backend based on the file extension.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gltf", ".glb":
		return l.backend, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func countNodes(root *scene.Node) int {
	n := 0
	root.Traverse(func(*scene.Node) { n++ })
	return n
}
