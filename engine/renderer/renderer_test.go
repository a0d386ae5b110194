package renderer

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/bikeview/common"
	"github.com/Carmen-Shannon/bikeview/engine/light"
	"github.com/Carmen-Shannon/bikeview/engine/renderer/material"
	"github.com/Carmen-Shannon/bikeview/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScene() scene.Scene {
	frame := scene.NewMesh("Frame", material.NewMaterial(material.WithColor(common.Hex(0x222222))),
		scene.NewBounds(mgl32.Vec3{-1, 0, -1}, mgl32.Vec3{1, 2, 1}))
	hidden := scene.NewMesh("Hidden", material.NewMaterial(), scene.NewBounds(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}))
	hidden.SetVisible(false)
	ghost := scene.NewMesh("Ghost", material.NewMaterial(material.WithTransparent(0)), scene.NewBounds(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}))
	bare := scene.NewMesh("Bare", nil, scene.NewBounds(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}))

	root := scene.NewGroup("bike", frame, hidden, ghost, bare)
	root.SetPosition(mgl32.Vec3{0, 1, 0})

	return scene.NewScene(
		scene.WithNodes(root),
		scene.WithFog(scene.Fog{Color: common.Hex(0x000000), Near: 2, Far: 5}),
		scene.WithLights(
			light.NewLight(light.LightTypeDirectional, light.WithPosition(1, 1, 0), light.WithColor(common.Hex(0x555555)), light.WithIntensity(6)),
			light.NewLight(light.LightTypeDirectional, light.WithEnabled(false)),
		),
	)
}

func TestCollectInstancesSkipsUndrawable(t *testing.T) {
	instances := CollectInstances(testScene())
	require.Len(t, instances, 1)

	model := mgl32.Mat4(instances[0].Model)
	// Box center (0,1,0) in node space, lifted by the group to (0,2,0), scaled to 2x2x2.
	center := model.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	assert.True(t, center.ApproxEqual(mgl32.Vec3{0, 2, 0}), "got %v", center)
	corner := model.Mul4x1(mgl32.Vec4{0.5, 0.5, 0.5, 1}).Vec3()
	assert.True(t, corner.ApproxEqual(mgl32.Vec3{1, 3, 1}), "got %v", corner)
	assert.InDelta(t, float32(0x22)/255, instances[0].Color[0], 1e-6)
	assert.Equal(t, float32(1), instances[0].Color[3])
}

func TestCollectInstancesFlatBounds(t *testing.T) {
	floor := scene.NewMesh("floor", material.NewMaterial(), scene.NewBounds(mgl32.Vec3{-50, 0, -50}, mgl32.Vec3{50, 0, 50}))
	instances := CollectInstances(scene.NewScene(scene.WithNodes(floor)))
	require.Len(t, instances, 1)
	assert.InDelta(t, minProxyExtent, instances[0].Model[5], 1e-9)
}

func TestBuildFrameUniform(t *testing.T) {
	vp := mgl32.Ident4()
	u := BuildFrameUniform(testScene(), vp, mgl32.Vec3{1, 0.7, -1})

	assert.Equal(t, [4]float32{0, 0, 0, 2}, u.FogColor)
	assert.Equal(t, float32(5), u.FogParams[0])
	assert.Equal(t, float32(1), u.FogParams[1])
	assert.Equal(t, float32(1), u.FogParams[2], "disabled lights are not packed")

	// Light at (1,1,0) aimed at the origin travels along -(1,1,0)/√2.
	d := mgl32.Vec3{u.Lights[0].Direction[0], u.Lights[0].Direction[1], u.Lights[0].Direction[2]}
	assert.True(t, d.ApproxEqual(mgl32.Vec3{-1, -1, 0}.Normalize()), "got %v", d)
	assert.InDelta(t, float32(0x55)/255*6/math.Pi, u.Lights[0].Color[0], 1e-5)
}

func TestFrameUniformMarshalLayout(t *testing.T) {
	u := GPUFrameUniform{}
	u.FogParams[0] = 5
	u.Lights[3].Color[2] = 0.25
	buf := u.Marshal()

	require.Len(t, buf, frameUniformSize)
	assert.Equal(t, float32(5), math.Float32frombits(binary.LittleEndian.Uint32(buf[96:])))
	assert.Equal(t, float32(0.25), math.Float32frombits(binary.LittleEndian.Uint32(buf[frameUniformSize-8:])))
	assert.LessOrEqual(t, frameUniformSize, frameUniformStride)
}

func TestUnitBoxMesh(t *testing.T) {
	assert.Len(t, unitBoxVertices(), 24*6)
	indices := unitBoxIndices()
	assert.Len(t, indices, 36)
	for _, i := range indices {
		assert.Less(t, i, uint32(24))
	}
}

func TestRendererFrameWithNullBackend(t *testing.T) {
	backend := NewNullRendererBackend()
	r, err := NewRenderer(BackendTypeNull, nil, WithBackend(backend), WithSize(800, 600))
	require.NoError(t, err)

	w, h := backend.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)

	assert.Equal(t, 0, r.DrawScene(testScene(), mgl32.Ident4(), mgl32.Vec3{}), "draws outside a frame are dropped")

	require.NoError(t, r.BeginFrame(common.Hex(0x000000)))
	assert.Equal(t, 1, r.DrawScene(testScene(), mgl32.Ident4(), mgl32.Vec3{}))
	assert.Equal(t, 0, r.DrawScene(scene.NewScene(), mgl32.Ident4(), mgl32.Vec3{}))
	r.EndFrame()
	r.Present()

	stats := r.Stats()
	assert.Equal(t, uint64(1), stats.Frames)
	assert.Equal(t, 2, stats.Scenes)
	assert.Equal(t, 1, stats.Instances)

	_, batches := backend.LastFrame()
	assert.Len(t, batches, 2)
	finished, presented := backend.Frames()
	assert.Equal(t, 1, finished)
	assert.Equal(t, 1, presented)

	r.Resize(0, 100)
	w, _ = r.Size()
	assert.Equal(t, 800, w)
	r.Resize(1600, 1200)
	w, h = r.Size()
	assert.Equal(t, 1600, w)
	assert.Equal(t, 1200, h)
}

func TestNewRendererRequiresSurface(t *testing.T) {
	_, err := NewRenderer(BackendTypeWGPU, nil)
	assert.ErrorIs(t, err, ErrNoSurface)
}
