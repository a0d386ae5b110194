package engine

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/Carmen-Shannon/bikeview/common"
	"github.com/Carmen-Shannon/bikeview/engine/camera"
	"github.com/Carmen-Shannon/bikeview/engine/renderer"
	"github.com/Carmen-Shannon/bikeview/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHeadless(t *testing.T, opts ...EngineBuilderOption) (Engine, *renderer.NullRendererBackend) {
	t.Helper()
	backend := renderer.NewNullRendererBackend()
	r, err := renderer.NewRenderer(renderer.BackendTypeNull, nil, renderer.WithBackend(backend), renderer.WithSize(800, 600))
	require.NoError(t, err)

	base := []EngineBuilderOption{
		WithRenderer(r),
		WithCamera(camera.NewCamera()),
		WithSize(800, 600),
	}
	return NewEngine(append(base, opts...)...), backend
}

func TestFrameOrder(t *testing.T) {
	e, backend := newHeadless(t)
	var order []string

	e.SetUpdateCallback(func(float32) {
		order = append(order, "update")
		finished, _ := backend.Frames()
		assert.Equal(t, 0, finished, "update runs before the scenes are drawn")
	})
	e.SetRenderCallback(func(float32) {
		order = append(order, "render")
		finished, _ := backend.Frames()
		assert.Equal(t, 1, finished)
	})
	e.AddScene(0, scene.NewScene())
	require.True(t, e.Post(func() { order = append(order, "action") }))

	e.Frame()
	assert.Equal(t, []string{"action", "update", "render"}, order)
	assert.Equal(t, uint64(1), e.Frames())
}

func TestScenesRenderInKeyOrder(t *testing.T) {
	e, backend := newHeadless(t, WithClearColor(common.Hex(0x101010)))
	floor := scene.NewScene(scene.WithFog(scene.Fog{Near: 9, Far: 10}))
	main := scene.NewScene(scene.WithFog(scene.Fog{Near: 1, Far: 2}))
	inactive := scene.NewScene(scene.WithActive(false))
	e.AddScene(1, floor)
	e.AddScene(0, main)
	e.AddScene(2, inactive)

	e.Frame()

	clearColor, batches := backend.LastFrame()
	assert.Equal(t, common.Hex(0x101010), clearColor)
	require.Len(t, batches, 2)
	assert.Equal(t, float32(1), batches[0].Frame.FogColor[3])
	assert.Equal(t, float32(9), batches[1].Frame.FogColor[3])
}

func TestResizeIsQueuedUntilNextFrame(t *testing.T) {
	e, backend := newHeadless(t)
	cam := e.Camera()
	assert.InDelta(t, 800.0/600.0, cam.Aspect(), 1e-6)

	e.Resize(1000, 500)
	e.Resize(1600, 900)
	w, _ := e.Size()
	assert.Equal(t, 800, w, "not applied before the frame")

	e.Frame()
	w, h := e.Size()
	assert.Equal(t, 1600, w)
	assert.Equal(t, 900, h)
	assert.InDelta(t, 1600.0/900.0, cam.Aspect(), 1e-6)
	bw, bh := backend.Size()
	assert.Equal(t, 1600, bw)
	assert.Equal(t, 900, bh)

	e.Resize(0, 0)
	e.Frame()
	assert.InDelta(t, 1600.0/900.0, cam.Aspect(), 1e-6, "zero size keeps the last aspect")
}

func TestPanicInFrameQuits(t *testing.T) {
	var buf bytes.Buffer
	e, _ := newHeadless(t, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	e.SetUpdateCallback(func(float32) { panic("boom") })

	assert.NotPanics(t, e.Frame)
	select {
	case <-e.Done():
	default:
		t.Fatal("engine did not quit after a panic")
	}
	assert.Contains(t, buf.String(), "boom")

	e.SetUpdateCallback(nil)
	e.Frame()
	assert.Equal(t, uint64(0), e.Frames(), "frames stop after quit")
}

func TestRunHeadlessStopsOnQuit(t *testing.T) {
	e, _ := newHeadless(t, WithTickRate(1000))
	frames := 0
	e.SetUpdateCallback(func(float32) {
		frames++
		if frames == 3 {
			e.Quit()
		}
	})

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, 3, frames)
}

func TestRunHeadlessStopsOnContext(t *testing.T) {
	e, _ := newHeadless(t, WithTickRate(1000))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := e.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, e.Frames(), uint64(0))
}

func TestPostDropsWhenFull(t *testing.T) {
	e, _ := newHeadless(t)
	for range actionQueueSize {
		require.True(t, e.Post(func() {}))
	}
	assert.False(t, e.Post(func() {}))
}
