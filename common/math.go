package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Perspective creates a right-handed perspective projection matrix with WebGPU clip-space depth [0, 1].
// mgl32.Perspective targets the OpenGL [-1, 1] depth range, which the wgpu surface would clip.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the projection matrix (column-major)
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))
	if aspect == 0 {
		aspect = 1
	}

	var out mgl32.Mat4
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	return out
}

// LookAt creates a view matrix that positions and orients the camera.
// If eye and center coincide the identity matrix is returned instead of NaNs.
//
// Parameters:
//   - eye: camera position in world space
//   - center: target point the camera looks at
//   - up: up vector defining camera orientation (typically 0,1,0)
//
// Returns:
//   - mgl32.Mat4: the view matrix (column-major)
func LookAt(eye, center, up mgl32.Vec3) mgl32.Mat4 {
	if eye.Sub(center).LenSqr() == 0 {
		return mgl32.Ident4()
	}
	return mgl32.LookAtV(eye, center, up)
}

// ProjectToNDC transforms a world-space point by a view-projection matrix and performs the perspective divide.
//
// Parameters:
//   - viewProjection: the combined view-projection matrix
//   - p: the world-space point
//
// Returns:
//   - mgl32.Vec3: normalized device coordinates
//   - bool: false when w is zero or the result is not finite
func ProjectToNDC(viewProjection mgl32.Mat4, p mgl32.Vec3) (mgl32.Vec3, bool) {
	clip := viewProjection.Mul4x1(p.Vec4(1))
	if clip[3] == 0 {
		return mgl32.Vec3{}, false
	}
	ndc := clip.Vec3().Mul(1 / clip[3])
	return ndc, Finite3(ndc)
}

// Lerp3 linearly interpolates between two points.
//
// Parameters:
//   - from: the start point (t = 0)
//   - to: the end point (t = 1)
//   - t: interpolation factor, not clamped
//
// Returns:
//   - mgl32.Vec3: the interpolated point
func Lerp3(from, to mgl32.Vec3, t float32) mgl32.Vec3 {
	return from.Add(to.Sub(from).Mul(t))
}

// Finite3 reports whether every component of v is a finite number.
//
// Parameters:
//   - v: the vector to check
//
// Returns:
//   - bool: true if no component is NaN or infinite
func Finite3(v mgl32.Vec3) bool {
	for _, c := range v {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// Clamp restricts v to the closed range [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
