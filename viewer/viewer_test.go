package viewer

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/bikeview/common"
	"github.com/Carmen-Shannon/bikeview/engine"
	"github.com/Carmen-Shannon/bikeview/engine/camera"
	"github.com/Carmen-Shannon/bikeview/engine/loader"
	"github.com/Carmen-Shannon/bikeview/engine/renderer"
	"github.com/Carmen-Shannon/bikeview/engine/renderer/material"
	"github.com/Carmen-Shannon/bikeview/engine/scene"
	"github.com/Carmen-Shannon/bikeview/intro"
	"github.com/Carmen-Shannon/bikeview/parts"
	"github.com/Carmen-Shannon/bikeview/selection"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type harness struct {
	v       *viewer
	engine  engine.Engine
	backend *renderer.NullRendererBackend
	clock   *testClock
	results chan loader.BundleResult
	bundles []loader.Bundle
	logs    *bytes.Buffer
}

func newHarness(t *testing.T, opts ...ViewerBuilderOption) *harness {
	t.Helper()
	h := &harness{
		clock:   &testClock{t: time.Unix(1700000000, 0)},
		results: make(chan loader.BundleResult, 1),
		logs:    &bytes.Buffer{},
		backend: renderer.NewNullRendererBackend(),
	}
	r, err := renderer.NewRenderer(renderer.BackendTypeNull, nil, renderer.WithBackend(h.backend), renderer.WithSize(800, 600))
	require.NoError(t, err)

	h.engine = engine.NewEngine(
		engine.WithRenderer(r),
		engine.WithCamera(camera.NewCamera()),
		engine.WithSize(800, 600),
		engine.WithClock(h.clock.now),
	)

	base := []ViewerBuilderOption{
		WithBundleSource(func(b loader.Bundle) <-chan loader.BundleResult {
			h.bundles = append(h.bundles, b)
			return h.results
		}),
		WithClock(h.clock.now),
		WithLogger(slog.New(slog.NewTextHandler(h.logs, nil))),
	}
	v, err := New(h.engine, parts.DefaultCatalog(), append(base, opts...)...)
	require.NoError(t, err)
	h.v = v.(*viewer)
	return h
}

// testModel is centered on the default look-at point so the frame label lands mid-screen.
func testModel() *scene.Node {
	mesh := func(name string, c mgl32.Vec3) *scene.Node {
		h := mgl32.Vec3{0.05, 0.05, 0.05}
		return scene.NewMesh(name, material.NewMaterial(), scene.NewBounds(c.Sub(h), c.Add(h)))
	}
	return scene.NewGroup("Scene",
		mesh("frame", mgl32.Vec3{0, 0.5, -0.3}),
		scene.NewGroup("chain", mesh("link", mgl32.Vec3{0.3, 0.3, -0.3})),
		mesh("frontTire", mgl32.Vec3{-0.3, 0.3, -0.3}),
		mesh("bolt", mgl32.Vec3{0, 0, 0}),
	)
}

func (h *harness) load(t *testing.T) {
	t.Helper()
	require.NoError(t, h.v.Load())
	h.results <- loader.BundleResult{
		Model:    testModel(),
		Textures: map[string]*common.Texture{floorTextureName: {Name: "floor"}},
		CubeMaps: map[string]*common.CubeTexture{reflectionName: {}},
	}
	h.engine.Frame()
	require.Equal(t, StatusReady, h.v.Status())
}

// finishIntro runs frames until the camera reaches its resting pose.
func (h *harness) finishIntro(t *testing.T) {
	t.Helper()
	h.clock.advance(3 * time.Second)
	h.engine.Frame()
	require.Equal(t, intro.Enabled, h.v.Intro().Phase())
}

func (h *harness) label(t *testing.T, id string) Label {
	t.Helper()
	for _, l := range h.v.Snapshot().Labels {
		if l.ID == id {
			return l
		}
	}
	t.Fatalf("no label %q", id)
	return Label{}
}

func TestLoadRequestsBundle(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.v.Load())
	assert.ErrorIs(t, h.v.Load(), ErrAlreadyLoading)

	require.Len(t, h.bundles, 1)
	b := h.bundles[0]
	assert.Equal(t, "models/B.glb", b.ModelPath)
	require.Len(t, b.Textures, 1)
	assert.Equal(t, common.WrapRepeat, b.Textures[0].Wrap)
	assert.Equal(t, [2]float32{50, 50}, b.Textures[0].Repeat)
	require.Len(t, b.CubeMaps, 2)
	assert.Equal(t, common.CubeRefraction, b.CubeMaps[1].Mapping)
	assert.Contains(t, h.logs.String(), "loading model")
}

func TestNothingProjectsWhileLoading(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.v.Load())

	h.engine.Frame()
	snap := h.v.Snapshot()
	assert.Equal(t, "loading", snap.Status)
	assert.Empty(t, snap.Labels)
	assert.Equal(t, "disabled", snap.Intro)
	assert.Equal(t, mgl32.Vec3{1, 1.5, 0}, h.engine.Camera().Position())
}

func TestLoadBindsAndStartsIntro(t *testing.T) {
	h := newHarness(t)
	h.load(t)

	report := h.v.Report()
	assert.Equal(t, 4, report.Eligible)
	assert.Equal(t, 3, report.Matched)

	main := h.v.Scenes().Main.Children()
	require.Len(t, main, 1)
	assert.Equal(t, "Scene", main[0].Name())
	assert.Len(t, h.v.Scenes().Floor.Children(), 2, "transparent copy and floor")

	assert.Equal(t, intro.Disabled, h.v.Intro().Phase())
	assert.False(t, h.v.Controls().Enabled())
	frame := h.label(t, "Frame")
	assert.True(t, frame.Display)
	assert.True(t, frame.Visible)
	assert.Zero(t, frame.Opacity, "labels stay transparent until the camera moves")
	assert.False(t, h.label(t, "Saddle").Visible)

	h.clock.advance(1500 * time.Millisecond)
	h.engine.Frame()
	assert.Equal(t, intro.Animating, h.v.Intro().Phase())
	assert.InDelta(t, 0.25, h.label(t, "Frame").Opacity, 1e-5)
	assert.True(t, mgl32.Vec3{1, 1.3, -0.25}.ApproxEqual(h.engine.Camera().Position()))

	h.finishIntro(t)
	assert.True(t, h.v.Controls().Enabled())
	st, _ := h.v.table.Get("Frame")
	assert.Equal(t, st.Opacity, h.label(t, "Frame").Opacity)
	assert.GreaterOrEqual(t, st.Opacity, float32(0.1))
	assert.InDelta(t, max(st.NearestDistance/100, 0.1), st.Opacity, 1e-6)
}

func TestFrameLabelIsCenteredAtRest(t *testing.T) {
	h := newHarness(t)
	h.load(t)
	h.finishIntro(t)
	h.engine.Frame()

	frame := h.label(t, "Frame")
	assert.InDelta(t, 400, frame.X, 0.5)
	assert.InDelta(t, 300, frame.Y, 0.5)
}

func TestResizeScalesLabelsWithoutRestartingIntro(t *testing.T) {
	h := newHarness(t)
	h.load(t)
	h.clock.advance(1500 * time.Millisecond)
	h.engine.Frame()
	require.Equal(t, intro.Animating, h.v.Intro().Phase())

	h.engine.Resize(1600, 1200)
	h.engine.Frame()
	assert.Equal(t, intro.Animating, h.v.Intro().Phase())
	assert.InDelta(t, 0.25, h.v.Intro().Progress(), 1e-5)

	h.finishIntro(t)
	h.engine.Frame()
	big := h.label(t, "Chain")

	h.engine.Resize(800, 600)
	h.engine.Frame()
	small := h.label(t, "Chain")

	assert.InDelta(t, small.X*2, big.X, 0.5)
	assert.InDelta(t, small.Y*2, big.Y, 0.5)
	snap := h.v.Snapshot()
	assert.Equal(t, 800, snap.Width)
	assert.Equal(t, "enabled", snap.Intro)
}

func TestLoadFailureIsReportedOnce(t *testing.T) {
	var failures []error
	h := newHarness(t, WithOnFailure(func(err error) { failures = append(failures, err) }))
	require.NoError(t, h.v.Load())

	h.results <- loader.BundleResult{Err: &loader.AssetError{Path: "models/B.glb", Err: io.ErrUnexpectedEOF}}
	h.engine.Frame()
	h.clock.advance(5 * time.Second)
	h.engine.Frame()
	h.engine.Frame()

	assert.Equal(t, StatusFailed, h.v.Status())
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], ErrLoadFailure)
	assert.ErrorIs(t, h.v.Err(), io.ErrUnexpectedEOF)

	var lf *LoadFailure
	require.ErrorAs(t, h.v.Err(), &lf)
	assert.Equal(t, "models/B.glb", lf.Asset)

	snap := h.v.Snapshot()
	assert.Equal(t, "failed", snap.Status)
	assert.Contains(t, snap.Error, "models/B.glb")
	assert.Empty(t, snap.Labels)
	assert.Equal(t, 1, strings.Count(h.logs.String(), "failed to load model"))
	assert.Equal(t, intro.Disabled, h.v.Intro().Phase())
	assert.Empty(t, h.v.Scenes().Main.Children())

	st, _ := h.v.table.Get("Frame")
	assert.False(t, st.Bound)
	assert.NoError(t, h.v.SelectLabel("Frame"))
	h.engine.Frame()
	assert.Equal(t, selection.Idle, h.v.Selection().Phase(), "no selection without a model")
}

func TestActionsRunOnTheFrameLoop(t *testing.T) {
	h := newHarness(t)
	h.load(t)

	require.NoError(t, h.v.SelectLabel("Frame"))
	assert.Equal(t, selection.Idle, h.v.Selection().Phase(), "queued until the next frame")
	h.engine.Frame()

	snap := h.v.Snapshot()
	assert.True(t, snap.Panel.Open)
	assert.Equal(t, "Frame", snap.Panel.Name)
	assert.True(t, h.label(t, "Frame").Selected)
	model := h.v.Scenes().Main.Children()[0]
	assert.Equal(t, parts.DefaultHighlight, model.Find("frame").Material().Color())

	assert.ErrorIs(t, h.v.SelectLabel("Bell"), selection.ErrUnknownPart)

	require.NoError(t, h.v.SelectUpgrade())
	require.NoError(t, h.v.CloseInfoPanel())
	h.engine.Frame()
	snap = h.v.Snapshot()
	assert.False(t, snap.Panel.Open)
	assert.Equal(t, "upgrade", snap.Panel.Mode)
	assert.Equal(t, parts.DefaultBaseline, model.Find("frame").Material().Color())

	require.NoError(t, h.v.SelectRepair())
	h.engine.Frame()
	assert.Equal(t, "repair", h.v.Snapshot().Panel.Mode)
}

func TestClickSelectsLabelAndDragDoesNot(t *testing.T) {
	h := newHarness(t)
	h.load(t)
	h.finishIntro(t)
	h.engine.Frame()
	frame := h.label(t, "Frame")
	x, y := int32(frame.X), int32(frame.Y)

	h.v.mouseDown(0, x, y)
	h.engine.Frame()
	assert.Equal(t, "grabbing", h.v.Snapshot().Cursor)
	h.v.mouseUp(0, x+1, y)
	assert.Equal(t, selection.Viewing, h.v.Selection().Phase())
	assert.Equal(t, "Frame", h.v.Selection().Viewed().Name)

	h.v.keyDown(common.KeyEsc)
	assert.Equal(t, selection.Idle, h.v.Selection().Phase())

	h.v.mouseDown(0, x, y)
	h.v.mouseMove(x+40, y)
	h.v.mouseMove(x, y)
	h.v.mouseUp(0, x, y)
	assert.Equal(t, selection.Idle, h.v.Selection().Phase(), "a drag is not a click")
	h.engine.Frame()
	assert.Equal(t, "grab", h.v.Snapshot().Cursor)

	h.v.mouseDown(1, x, y)
	h.v.mouseUp(1, x, y)
	assert.Equal(t, selection.Idle, h.v.Selection().Phase(), "only the left button selects")
}

func TestKeysSwitchServiceMode(t *testing.T) {
	h := newHarness(t)
	h.v.keyDown(common.KeyU)
	assert.Equal(t, selection.ModeUpgrade, h.v.Selection().Mode())
	h.v.keyDown(common.KeyR)
	assert.Equal(t, selection.ModeRepair, h.v.Selection().Mode())

	h.v.keyDown(common.KeyQ)
	select {
	case <-h.engine.Done():
	default:
		t.Fatal("Q did not quit")
	}
}

func TestPublisherIsThrottled(t *testing.T) {
	var published []Snapshot
	h := newHarness(t, WithPublisher(func(s Snapshot) { published = append(published, s) }, 100*time.Millisecond))

	h.engine.Frame()
	h.clock.advance(10 * time.Millisecond)
	h.engine.Frame()
	h.clock.advance(100 * time.Millisecond)
	h.engine.Frame()

	require.Len(t, published, 2)
	assert.Less(t, published[0].Frame, published[1].Frame)
}

func TestNewRequiresCamera(t *testing.T) {
	_, err := New(engine.NewEngine(), nil)
	assert.ErrorIs(t, err, ErrNoCamera)
}

func TestProjectOnce(t *testing.T) {
	cam := camera.NewCamera(camera.WithPosition(1, 0.7, -1), camera.WithTarget(0, 0.5, -0.3))
	labels, report := ProjectOnce(testModel(), parts.DefaultCatalog(), parts.Environment{Baseline: parts.DefaultBaseline}, cam, 800, 600)

	assert.Equal(t, 3, report.Matched)
	require.Len(t, labels, 18)
	assert.Equal(t, "Frame", labels[0].ID)
	assert.True(t, labels[0].Visible)
	assert.InDelta(t, 400, labels[0].X, 0.5)
	assert.InDelta(t, 300, labels[0].Y, 0.5)
	assert.GreaterOrEqual(t, labels[0].Opacity, float32(0.1))

	for _, l := range labels {
		if l.ID == "Saddle" {
			assert.False(t, l.Visible)
		}
	}
}

func TestTransparentClone(t *testing.T) {
	model := testModel()
	clone := TransparentClone(model)

	clone.Eligible(func(n *scene.Node) {
		m := n.Material()
		assert.Equal(t, material.KindBasic, m.Kind(), n.Name())
		assert.True(t, m.Transparent())
		assert.Zero(t, m.Opacity())
		assert.True(t, n.CastShadow())
		assert.True(t, n.ReceiveShadow())
	})
	assert.Equal(t, material.KindLambert, model.Find("frame").Material().Kind(), "the original keeps its materials")
}

func TestFloorPlane(t *testing.T) {
	tex := &common.Texture{Name: "floor"}
	floor := FloorPlane(tex)

	assert.Equal(t, common.WrapRepeat, tex.WrapS)
	assert.Equal(t, [2]float32{50, 50}, tex.Repeat)
	assert.Same(t, tex, floor.Material().Map())
	assert.True(t, floor.ReceiveShadow())
	assert.False(t, floor.CastShadow())

	b := floor.WorldBounds()
	assert.InDelta(t, -50, b.Min[0], 1e-3)
	assert.InDelta(t, 50, b.Max[2], 1e-3)
	assert.InDelta(t, -0.01, b.Min[1], 1e-3)
}

func TestScenesLights(t *testing.T) {
	s := NewScenes()
	assert.Len(t, s.Main.Lights(), 4)
	require.Len(t, s.Floor.Lights(), 1)
	assert.NotNil(t, s.Floor.Lights()[0].Shadow())
	require.NotNil(t, s.Floor.Fog())
	assert.Equal(t, float32(5), s.Floor.Fog().Far)
	assert.Nil(t, s.Main.Fog())
}
