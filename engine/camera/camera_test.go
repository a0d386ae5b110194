package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCameraProjectsTargetToCenter(t *testing.T) {
	cam := NewCamera(
		WithPosition(1, 0.7, -1),
		WithTarget(0, 0.5, -0.3),
		WithAspect(800.0/600.0),
	)

	ndc, ok := cam.Project(mgl32.Vec3{0, 0.5, -0.3})
	require.True(t, ok)
	assert.InDelta(t, 0, ndc.X(), 1e-5)
	assert.InDelta(t, 0, ndc.Y(), 1e-5)
	assert.True(t, ndc.Z() > 0 && ndc.Z() < 1, "depth %v outside WebGPU clip range", ndc.Z())
}

func TestCameraDefaults(t *testing.T) {
	cam := NewCamera()
	assert.InDelta(t, math.Pi/4, cam.Fov(), 1e-6)
	assert.Equal(t, float32(0.1), cam.Near())
	assert.Equal(t, float32(1000), cam.Far())
	assert.Equal(t, float32(1), cam.Aspect())
}

func TestCameraSetAspectIgnoresInvalid(t *testing.T) {
	cam := NewCamera(WithAspect(2))
	cam.SetAspect(0)
	cam.SetAspect(-1)
	cam.SetAspect(float32(math.Inf(1)))
	assert.Equal(t, float32(2), cam.Aspect())

	before := cam.ProjectionMatrix()
	cam.SetAspect(1)
	assert.NotEqual(t, before, cam.ProjectionMatrix())
}

func TestCameraCoincidentEyeAndTarget(t *testing.T) {
	cam := NewCamera(WithPosition(0, 0, 0), WithTarget(0, 0, 0))
	assert.Equal(t, mgl32.Ident4(), cam.ViewMatrix())
}

func TestOrbitControllerDisabledIgnoresInput(t *testing.T) {
	cam := NewCamera(WithPosition(1, 0.7, -1), WithTarget(0, 0.5, -0.3))
	oc := NewOrbitController(cam, WithOrbitTarget(mgl32.Vec3{0, 0.5, -0.3}))

	oc.Rotate(100, 50, 600)
	oc.Dolly(3)
	assert.False(t, oc.Update())
	assert.Equal(t, mgl32.Vec3{1, 0.7, -1}, cam.Position())
}

func TestOrbitControllerKeepsRestingPose(t *testing.T) {
	target := mgl32.Vec3{0, 0.5, -0.3}
	cam := NewCamera(WithPosition(1, 0.7, -1), WithTarget(0, 0.5, -0.3))
	oc := NewOrbitController(cam,
		WithOrbitTarget(target),
		WithDistanceBounds(0, 2),
		WithPolarBounds(0, math.Pi/2-0.1),
		WithEnabled(true),
	)

	oc.Update()
	assert.True(t, cam.Position().ApproxEqualThreshold(mgl32.Vec3{1, 0.7, -1}, 1e-4), "got %v", cam.Position())
	assert.Equal(t, target, cam.Target())
}

func TestOrbitControllerClampsDistance(t *testing.T) {
	target := mgl32.Vec3{0, 0, 0}
	cam := NewCamera(WithPosition(0, 0, 1))
	oc := NewOrbitController(cam,
		WithOrbitTarget(target),
		WithDistanceBounds(0.5, 2),
		WithDamping(false, 60, 0, 0),
		WithEnabled(true),
	)

	oc.Dolly(-100)
	oc.Update()
	assert.InDelta(t, 2, cam.Position().Sub(target).Len(), 1e-4)

	oc.Dolly(100)
	oc.Update()
	assert.InDelta(t, 0.5, cam.Position().Sub(target).Len(), 1e-4)
}

func TestOrbitControllerClampsPolarAngle(t *testing.T) {
	maxPolar := float32(math.Pi/2 - 0.1)
	cam := NewCamera(WithPosition(0, 1, 1))
	oc := NewOrbitController(cam,
		WithPolarBounds(0, maxPolar),
		WithDamping(false, 60, 0, 0),
		WithEnabled(true),
	)

	// Dragging up lowers the camera toward and past the horizon.
	oc.Rotate(0, -600, 600)
	oc.Update()

	pos := cam.Position()
	polar := math.Acos(float64(pos.Y() / pos.Len()))
	assert.InDelta(t, float64(maxPolar), polar, 1e-4)
	assert.Greater(t, pos.Y(), float32(0))
}

func TestOrbitControllerDampingConverges(t *testing.T) {
	cam := NewCamera(WithPosition(0, 0, 1))
	oc := NewOrbitController(cam, WithEnabled(true))

	oc.Rotate(150, 0, 600)
	require.True(t, oc.Update())
	first := cam.Position()
	for range 600 {
		oc.Update()
	}
	final := cam.Position()

	assert.False(t, first.ApproxEqualThreshold(final, 1e-3), "damped motion should not land in one step")
	// A quarter turn to the left around +Y from +Z lands on -X.
	assert.True(t, final.ApproxEqualThreshold(mgl32.Vec3{-1, 0, 0}, 1e-3), "got %v", final)
}

func TestOrbitControllerPicksUpExternalMoves(t *testing.T) {
	cam := NewCamera(WithPosition(0, 0, 1))
	oc := NewOrbitController(cam, WithDamping(false, 60, 0, 0), WithEnabled(true))
	oc.Update()

	cam.SetPosition(mgl32.Vec3{0, 0, 1.5})
	oc.Update()
	assert.True(t, cam.Position().ApproxEqualThreshold(mgl32.Vec3{0, 0, 1.5}, 1e-5))
}
