package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerspectiveDepthRange(t *testing.T) {
	proj := Perspective(mgl32.DegToRad(45), 16.0/9.0, 0.1, 1000)

	near, ok := ProjectToNDC(proj, mgl32.Vec3{0, 0, -0.1})
	require.True(t, ok)
	assert.InDelta(t, 0, near.Z(), 1e-4)

	far, ok := ProjectToNDC(proj, mgl32.Vec3{0, 0, -1000})
	require.True(t, ok)
	assert.InDelta(t, 1, far.Z(), 1e-4)
}

func TestLookAtCenterProjectsToOrigin(t *testing.T) {
	eye := mgl32.Vec3{1, 1.5, 0}
	target := mgl32.Vec3{0, 0.5, -0.3}
	vp := Perspective(mgl32.DegToRad(45), 1, 0.1, 1000).Mul4(LookAt(eye, target, mgl32.Vec3{0, 1, 0}))

	ndc, ok := ProjectToNDC(vp, target)
	require.True(t, ok)
	assert.InDelta(t, 0, ndc.X(), 1e-5)
	assert.InDelta(t, 0, ndc.Y(), 1e-5)
}

func TestLookAtDegenerateIsIdentity(t *testing.T) {
	p := mgl32.Vec3{1, 2, 3}
	assert.Equal(t, mgl32.Ident4(), LookAt(p, p, mgl32.Vec3{0, 1, 0}))
}

func TestProjectToNDCRejectsZeroW(t *testing.T) {
	var zero mgl32.Mat4
	_, ok := ProjectToNDC(zero, mgl32.Vec3{1, 2, 3})
	assert.False(t, ok)
}

func TestLerp3(t *testing.T) {
	from := mgl32.Vec3{1, 1.5, 0}
	to := mgl32.Vec3{1, 0.7, -1}

	assert.Equal(t, from, Lerp3(from, to, 0))
	assert.True(t, to.ApproxEqual(Lerp3(from, to, 1)))
	assert.True(t, mgl32.Vec3{1, 1.1, -0.5}.ApproxEqualThreshold(Lerp3(from, to, 0.5), 1e-6))
}

func TestFinite3(t *testing.T) {
	assert.True(t, Finite3(mgl32.Vec3{1, 2, 3}))
	assert.False(t, Finite3(mgl32.Vec3{float32(math.NaN()), 0, 0}))
	assert.False(t, Finite3(mgl32.Vec3{0, float32(math.Inf(1)), 0}))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, float32(0), Clamp(-1, 0, 1))
	assert.Equal(t, float32(1), Clamp(2, 0, 1))
	assert.Equal(t, float32(0.5), Clamp(0.5, 0, 1))
}
