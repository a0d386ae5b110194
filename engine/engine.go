package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/bikeview/common"
	"github.com/Carmen-Shannon/bikeview/engine/camera"
	"github.com/Carmen-Shannon/bikeview/engine/profiler"
	"github.com/Carmen-Shannon/bikeview/engine/renderer"
	"github.com/Carmen-Shannon/bikeview/engine/scene"
	"github.com/Carmen-Shannon/bikeview/engine/window"
)

// actionQueueSize bounds how many actions can wait for the next frame.
const actionQueueSize = 256

// engine implements the Engine interface.
// Everything in a frame runs on the goroutine that calls Run (or Frame).
type engine struct {
	mu *sync.Mutex

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window   window.Window
	renderer renderer.Renderer
	camera   camera.Camera
	logger   *slog.Logger

	profiler         *profiler.Profiler
	profilingEnabled bool

	tickRate         time.Duration // headless frame interval
	renderFrameLimit time.Duration // minimum frame duration with a window; 0 = uncapped

	updateCallback func(deltaTime float32)
	renderCallback func(deltaTime float32)

	actions       chan func()
	pendingResize *[2]int
	width         int
	height        int

	scenes     map[int]scene.Scene
	clearColor common.Color

	now       func() time.Time
	lastFrame time.Time
	frames    uint64
}

// Engine is the main entry point for the engine.
// It runs a single-threaded cooperative frame loop: queued actions, queued resize,
// the update callback, scene rendering in z-order, then the render callback.
type Engine interface {
	// Window returns the underlying window, or nil when running headless.
	Window() window.Window

	// Renderer returns the renderer, or nil if none was configured.
	Renderer() renderer.Renderer

	// Camera returns the camera used to render every scene, or nil if none was configured.
	Camera() camera.Camera

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the headless frame rate in frames per second.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetUpdateCallback registers the function called each frame before rendering.
	// Use this for loading, animation and camera control.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetUpdateCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called each frame after rendering.
	// Use this for work that needs the final camera of the frame, such as screen-space projection.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional frame rate cap for windowed runs.
	// Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddScene registers a scene at the given z-index key.
	// Scenes are rendered in ascending key order.
	//
	// Parameters:
	//   - key: the z-index determining render order (lower renders first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given z-index key.
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given z-index key, or nil.
	//
	// Parameters:
	//   - key: the z-index of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	Scenes() map[int]scene.Scene

	// Post queues an action to run at the start of the next frame. Safe from any goroutine.
	//
	// Parameters:
	//   - action: the function to run on the frame goroutine
	//
	// Returns:
	//   - bool: false if the queue is full and the action was dropped
	Post(action func()) bool

	// Resize queues a viewport size change, applied at the start of the next frame.
	// Only the latest size queued between two frames is applied. Safe from any goroutine.
	//
	// Parameters:
	//   - width: new width in pixels
	//   - height: new height in pixels
	Resize(width, height int)

	// Size returns the viewport size applied by the last frame.
	Size() (width, height int)

	// Frame runs one iteration of the frame loop.
	Frame()

	// Frames returns how many frames have run.
	Frames() uint64

	// Run drives the frame loop until the window closes, Quit is called or ctx is done.
	// With a window this must be called from the main goroutine.
	//
	// Parameters:
	//   - ctx: cancels a headless run
	//
	// Returns:
	//   - error: ctx.Err() if the context ended the run, nil otherwise
	Run(ctx context.Context) error

	// Quit signals the loop to stop. Safe to call multiple times.
	Quit()

	// Done is closed once Quit has been called.
	Done() <-chan struct{}
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// The viewport size starts at the window size when a window is given.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:          &sync.Mutex{},
		quitChannel: make(chan struct{}),
		logger:      slog.Default(),
		tickRate:    time.Second / 60,
		actions:     make(chan func(), actionQueueSize),
		scenes:      make(map[int]scene.Scene),
		now:         time.Now,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}

	if e.window != nil {
		e.width, e.height = e.window.Width(), e.window.Height()
		e.window.SetResizeCallback(e.Resize)
	}
	if e.camera != nil && e.width > 0 && e.height > 0 {
		e.camera.SetAspect(float32(e.width) / float32(e.height))
	}

	e.lastFrame = e.now()
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Run(ctx context.Context) error {
	if e.window != nil {
		e.window.SetUpdateCallback(func() {
			select {
			case <-ctx.Done():
				e.signalQuit()
			default:
			}
			e.Frame()
		})
		e.window.ProcessMessages()
		e.signalQuit()
		_ = e.window.Close()
		return ctx.Err()
	}

	e.mu.Lock()
	rate := e.tickRate
	e.mu.Unlock()
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.signalQuit()
			return ctx.Err()
		case <-e.quitChannel:
			return nil
		case <-ticker.C:
			e.Frame()
		}
	}
}

// Quit signals the loop to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

func (e *engine) Done() <-chan struct{} {
	return e.quitChannel
}

// signalQuit closes the quit channel and asks the window to close.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) Frame() {
	select {
	case <-e.quitChannel:
		if e.window != nil && e.window.IsRunning() {
			_ = e.window.Close()
		}
		return
	default:
	}

	// Recover from panics inside the frame to avoid crashing the whole process.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("frame loop recovered from panic", slog.String("panic", fmt.Sprint(r)))
			e.signalQuit()
		}
	}()

	start := e.now()
	dt := float32(start.Sub(e.lastFrame).Seconds())
	e.lastFrame = start

	e.drainActions()
	e.applyResize()

	e.mu.Lock()
	update, render := e.updateCallback, e.renderCallback
	e.mu.Unlock()

	if update != nil {
		update(dt)
	}

	e.renderScenes()

	if render != nil {
		render(dt)
	}

	e.mu.Lock()
	e.frames++
	profiling := e.profilingEnabled
	limit := e.renderFrameLimit
	e.mu.Unlock()

	if profiling {
		e.profiler.Tick()
	}

	// Frame rate limiting
	if limit > 0 && e.window != nil {
		if remaining := limit - e.now().Sub(start); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

// drainActions runs every action queued before this frame started.
func (e *engine) drainActions() {
	for n := len(e.actions); n > 0; n-- {
		select {
		case action := <-e.actions:
			action()
		default:
			return
		}
	}
}

// applyResize applies the latest queued size to the camera aspect and the renderer surface.
func (e *engine) applyResize() {
	e.mu.Lock()
	pending := e.pendingResize
	e.pendingResize = nil
	e.mu.Unlock()
	if pending == nil {
		return
	}

	width, height := pending[0], pending[1]
	e.mu.Lock()
	e.width, e.height = width, height
	e.mu.Unlock()

	// A minimized window reports 0x0, the surface and aspect keep their last valid values.
	if width <= 0 || height <= 0 {
		return
	}
	if e.camera != nil {
		e.camera.SetAspect(float32(width) / float32(height))
	}
	if e.renderer != nil {
		e.renderer.Resize(width, height)
	}
}

// renderScenes draws every active scene in ascending z-index order within one frame.
func (e *engine) renderScenes() {
	if e.renderer == nil || e.camera == nil {
		return
	}

	e.mu.Lock()
	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	active := make([]scene.Scene, 0, len(keys))
	for _, k := range keys {
		if s := e.scenes[k]; s.Active() {
			active = append(active, s)
		}
	}
	clearColor := e.clearColor
	width, height := e.width, e.height
	e.mu.Unlock()

	if len(active) == 0 || width <= 0 || height <= 0 {
		return
	}

	if err := e.renderer.BeginFrame(clearColor); err != nil {
		e.logger.Debug("skipping frame", slog.String("error", err.Error()))
		return
	}
	vp := e.camera.ViewProjectionMatrix()
	eye := e.camera.Position()
	for _, s := range active {
		e.renderer.DrawScene(s, vp, eye)
	}
	e.renderer.EndFrame()
	e.renderer.Present()
}

func (e *engine) Post(action func()) bool {
	if action == nil {
		return true
	}
	select {
	case e.actions <- action:
		return true
	default:
		return false
	}
}

func (e *engine) Resize(width, height int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pendingResize = &[2]int{width, height}
}

func (e *engine) Size() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.width, e.height
}

func (e *engine) Frames() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

// SetTickRate sets the headless frame rate. Takes effect at the next Run.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickRate = time.Duration(float64(time.Second) / fps)
}

func (e *engine) SetUpdateCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.updateCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional frame rate cap.
// Pass 0 to uncap the loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[int]scene.Scene, len(e.scenes))
	for k, s := range e.scenes {
		out[k] = s
	}
	return out
}
