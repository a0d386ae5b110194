package renderer

import "github.com/Carmen-Shannon/bikeview/common"

// RendererBackendType identifies the backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeNull records draw batches without touching a GPU. Used for headless runs and tests.
	BackendTypeNull
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// Batch is one scene's worth of draw data within a frame.
type Batch struct {
	Frame     GPUFrameUniform
	Instances []GPUInstance
}

// RendererBackend is the API-specific half of the Renderer.
// A frame is BeginFrame, any number of Submit calls, EndFrame, then Present.
type RendererBackend interface {
	// ConfigureSurface (re)creates size-dependent resources.
	//
	// Parameters:
	//   - width: surface width in pixels
	//   - height: surface height in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode selects vsync or uncapped presentation. Takes effect at the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// BeginFrame starts a frame cleared to the given color.
	//
	// Parameters:
	//   - clear: the background color
	//
	// Returns:
	//   - error: an error if the surface texture could not be acquired
	BeginFrame(clear common.Color) error

	// Submit queues a batch for the current frame. Batches draw in submission order.
	Submit(batch Batch)

	// EndFrame encodes every queued batch and submits the command buffer.
	EndFrame()

	// Present shows the finished frame.
	Present()

	// Release frees every resource held by the backend.
	Release()
}
