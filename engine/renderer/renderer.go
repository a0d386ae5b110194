package renderer

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/Carmen-Shannon/bikeview/common"
	"github.com/Carmen-Shannon/bikeview/engine/light"
	"github.com/Carmen-Shannon/bikeview/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrNoSurface is returned when the WGPU backend is requested without a surface source.
var ErrNoSurface = errors.New("renderer: no surface to render to")

// minProxyExtent keeps flat bounds (a floor plane) from producing a singular model matrix.
const minProxyExtent = 1e-4

// SurfaceSource is anything that can hand out a WebGPU surface and report its pixel size.
// window.Window satisfies it.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// FrameStats summarizes the last finished frame.
type FrameStats struct {
	Frames    uint64
	Scenes    int
	Instances int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	width  int
	height int

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount

	inFrame bool
	current FrameStats
	stats   FrameStats
}

// Renderer draws scenes through a pluggable backend.
// Every visible mesh node with a material is drawn as a box spanning its bounding box,
// tinted by the material and lit by the scene's lights, with the scene's fog applied.
type Renderer interface {
	// Resize reconfigures the surface for a new pixel size. Non-positive sizes are ignored.
	//
	// Parameters:
	//   - width: new width in pixels
	//   - height: new height in pixels
	Resize(width, height int)

	// Size returns the configured surface size in pixels.
	Size() (width, height int)

	// SetPresentMode selects vsync or uncapped presentation.
	SetPresentMode(mode PresentMode)

	// BeginFrame starts a frame cleared to the given color.
	//
	// Parameters:
	//   - clear: the background color
	//
	// Returns:
	//   - error: an error if the frame could not be started
	BeginFrame(clear common.Color) error

	// DrawScene queues every drawable node of a scene for the current frame.
	//
	// Parameters:
	//   - s: the scene to draw
	//   - viewProjection: the camera's view-projection matrix
	//   - eye: the camera position, used for fog distance
	//
	// Returns:
	//   - int: the number of instances queued
	DrawScene(s scene.Scene, viewProjection mgl32.Mat4, eye mgl32.Vec3) int

	// EndFrame encodes and submits the frame.
	EndFrame()

	// Present shows the finished frame.
	Present()

	// Stats returns the statistics of the last finished frame.
	Stats() FrameStats

	// Release frees every GPU resource.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer for the given backend.
// The WGPU backend requires a surface source. The null backend ignores it and uses WithSize.
//
// Parameters:
//   - backendType: the type of rendering backend to use
//   - surface: the surface source, may be nil for BackendTypeNull
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the configured renderer
//   - error: an error if the backend could not be initialized
func NewRenderer(backendType RendererBackendType, surface SurfaceSource, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
		width:       1,
		height:      1,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch {
	case r.backend != nil:
	case backendType == BackendTypeNull:
		r.backend = NewNullRendererBackend()
	default:
		if surface == nil {
			return nil, ErrNoSurface
		}
		b, err := newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
		if err != nil {
			return nil, fmt.Errorf("failed to create wgpu backend: %w", err)
		}
		r.backend = b
		r.width, r.height = surface.Width(), surface.Height()
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.backend.ConfigureSurface(r.width, r.height)
	return r, nil
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = width, height
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.SetPresentMode(mode)
	r.backend.ConfigureSurface(r.width, r.height)
}

func (r *renderer) BeginFrame(clear common.Color) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.backend.BeginFrame(clear); err != nil {
		return err
	}
	r.inFrame = true
	r.current = FrameStats{Frames: r.stats.Frames}
	return nil
}

func (r *renderer) DrawScene(s scene.Scene, viewProjection mgl32.Mat4, eye mgl32.Vec3) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.inFrame || s == nil {
		return 0
	}

	instances := CollectInstances(s)
	r.backend.Submit(Batch{
		Frame:     BuildFrameUniform(s, viewProjection, eye),
		Instances: instances,
	})
	r.current.Scenes++
	r.current.Instances += len(instances)
	return len(instances)
}

func (r *renderer) EndFrame() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.inFrame {
		return
	}
	r.backend.EndFrame()
	r.inFrame = false
	r.current.Frames++
	r.stats = r.current
}

func (r *renderer) Present() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.Present()
}

func (r *renderer) Stats() FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.Release()
}

// BuildFrameUniform packs the camera, fog and first MaxFrameLights enabled lights of a scene.
// Light radiance is divided by π to match a Lambertian BRDF.
//
// Parameters:
//   - s: the scene supplying fog and lights
//   - viewProjection: the camera's view-projection matrix
//   - eye: the camera position
//
// Returns:
//   - GPUFrameUniform: the packed uniform
func BuildFrameUniform(s scene.Scene, viewProjection mgl32.Mat4, eye mgl32.Vec3) GPUFrameUniform {
	var u GPUFrameUniform
	u.ViewProjection = viewProjection
	u.Eye = [4]float32{eye[0], eye[1], eye[2], 1}

	if fog := s.Fog(); fog != nil {
		u.FogColor = [4]float32{fog.Color.R, fog.Color.G, fog.Color.B, fog.Near}
		u.FogParams[0] = fog.Far
		u.FogParams[1] = 1
	}

	n := 0
	for _, l := range s.Lights() {
		if n == MaxFrameLights {
			break
		}
		if !l.Enabled() {
			continue
		}
		u.Lights[n] = gpuLight(l)
		n++
	}
	u.FogParams[2] = float32(n)
	return u
}

func gpuLight(l light.Light) GPULight {
	d := l.Direction()
	c := l.Color()
	k := l.Intensity() / math.Pi
	return GPULight{
		Direction: [4]float32{d[0], d[1], d[2], 0},
		Color:     [4]float32{c.R * k, c.G * k, c.B * k, 1},
	}
}

// CollectInstances walks a scene and returns one proxy box per visible mesh node that carries a material.
// Invisible nodes hide their whole subtree. Fully transparent materials and empty bounds are skipped.
//
// Parameters:
//   - s: the scene to walk
//
// Returns:
//   - []GPUInstance: the instances in traversal order
func CollectInstances(s scene.Scene) []GPUInstance {
	var out []GPUInstance
	var walk func(n *scene.Node, parent mgl32.Mat4)
	walk = func(n *scene.Node, parent mgl32.Mat4) {
		if !n.Visible() {
			return
		}
		world := parent.Mul4(n.LocalMatrix())
		if inst, ok := proxyInstance(n, world); ok {
			out = append(out, inst)
		}
		for _, c := range n.Children() {
			walk(c, world)
		}
	}
	for _, root := range s.Children() {
		walk(root, mgl32.Ident4())
	}
	return out
}

func proxyInstance(n *scene.Node, world mgl32.Mat4) (GPUInstance, bool) {
	if n.IsGroup() || !n.HasMaterial() {
		return GPUInstance{}, false
	}
	mat := n.Material()
	opacity := float32(1)
	if mat.Transparent() {
		opacity = mat.Opacity()
	}
	if opacity <= 0 {
		return GPUInstance{}, false
	}

	b := n.Bounds()
	center, ok := b.Center()
	if !ok {
		return GPUInstance{}, false
	}
	size := b.Max.Sub(b.Min)
	for i := range size {
		size[i] = float32(math.Max(float64(size[i]), minProxyExtent))
	}

	model := world.Mul4(mgl32.Translate3D(center[0], center[1], center[2])).Mul4(mgl32.Scale3D(size[0], size[1], size[2]))
	c := mat.Color()
	e := mat.Emissive()
	return GPUInstance{
		Model:    model,
		Color:    c.RGBA(opacity),
		Emissive: e.RGBA(0),
	}, true
}
