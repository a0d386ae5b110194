package camera

import "github.com/go-gl/mathgl/mgl32"

// OrbitControllerOption is a functional option for configuring an OrbitController.
type OrbitControllerOption func(*orbitControllerImpl)

// WithEnabled sets the initial enabled state.
//
// Parameters:
//   - enabled: true to react to input immediately
//
// Returns:
//   - OrbitControllerOption: option function to apply
func WithEnabled(enabled bool) OrbitControllerOption {
	return func(oc *orbitControllerImpl) {
		oc.enabled = enabled
	}
}

// WithOrbitTarget sets the orbit center.
//
// Parameters:
//   - target: the point to orbit around
//
// Returns:
//   - OrbitControllerOption: option function to apply
func WithOrbitTarget(target mgl32.Vec3) OrbitControllerOption {
	return func(oc *orbitControllerImpl) {
		oc.target = target
	}
}

// WithDistanceBounds sets the min and max camera-to-target distance.
//
// Parameters:
//   - min: the minimum distance, at least 0
//   - max: the maximum distance, at least min
//
// Returns:
//   - OrbitControllerOption: option function to apply
func WithDistanceBounds(min, max float32) OrbitControllerOption {
	return func(oc *orbitControllerImpl) {
		if min < 0 {
			min = 0
		}
		if max < min {
			max = min
		}
		oc.minDistance = min
		oc.maxDistance = max
	}
}

// WithPolarBounds sets the min and max polar angle in radians, measured from +Y.
func WithPolarBounds(min, max float32) OrbitControllerOption {
	return func(oc *orbitControllerImpl) {
		oc.minPolarAngle = min
		oc.maxPolarAngle = max
	}
}

// WithRotateSpeed scales drag rotation.
func WithRotateSpeed(speed float32) OrbitControllerOption {
	return func(oc *orbitControllerImpl) {
		oc.rotateSpeed = speed
	}
}

// WithZoomSpeed scales wheel dolly.
func WithZoomSpeed(speed float32) OrbitControllerOption {
	return func(oc *orbitControllerImpl) {
		oc.zoomSpeed = speed
	}
}

// WithDamping configures the spring that smooths motion.
// Passing enabled=false makes Update jump straight to the goal.
//
// Parameters:
//   - enabled: whether motion is damped
//   - fps: the expected Update rate
//   - angularFrequency: spring stiffness, higher settles faster
//   - dampingRatio: 1 for critical damping, below 1 overshoots
//
// Returns:
//   - OrbitControllerOption: option function to apply
func WithDamping(enabled bool, fps int, angularFrequency, dampingRatio float64) OrbitControllerOption {
	return func(oc *orbitControllerImpl) {
		oc.damping = enabled
		if fps > 0 {
			oc.fps = fps
		}
		if angularFrequency > 0 {
			oc.angularFrequency = angularFrequency
		}
		if dampingRatio > 0 {
			oc.dampingRatio = dampingRatio
		}
	}
}
