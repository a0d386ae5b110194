package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/bikeview/common"
	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl32"
)

// polarEpsilon keeps the polar angle off the poles, where the look-at basis degenerates.
const polarEpsilon = 1e-6

// orbitControllerImpl orbits a Camera around a target in spherical coordinates.
// The camera's position is re-read at every Update, so code that moves the camera
// while the controller is disabled (an intro animation, for example) is picked up
// without an explicit sync.
type orbitControllerImpl struct {
	mu     *sync.Mutex
	camera Camera

	enabled bool
	target  mgl32.Vec3

	minDistance   float32
	maxDistance   float32
	minPolarAngle float32
	maxPolarAngle float32

	rotateSpeed float32
	zoomSpeed   float32

	damping          bool
	fps              int
	angularFrequency float64
	dampingRatio     float64
	spring           harmonica.Spring

	// goal spherical coordinates and the damped values chasing them
	goal    spherical
	current spherical
	vel     spherical
	synced  bool
	written mgl32.Vec3
}

// spherical holds an offset from the orbit target.
// theta is the azimuth around +Y measured from +Z, phi the polar angle from +Y.
type spherical struct {
	radius float64
	theta  float64
	phi    float64
}

// OrbitController rotates and dollies a camera around a target point.
// Input is accumulated through Rotate and Dolly and applied by Update once per frame.
// Thread-safe for concurrent access.
type OrbitController interface {
	// Enabled reports whether the controller reacts to input and moves the camera.
	Enabled() bool

	// SetEnabled turns the controller on or off. Enabling resynchronizes with the camera's current position.
	//
	// Parameters:
	//   - enabled: the new state
	SetEnabled(enabled bool)

	// Target returns the orbit center.
	Target() mgl32.Vec3

	// SetTarget moves the orbit center.
	//
	// Parameters:
	//   - target: the new orbit center
	SetTarget(target mgl32.Vec3)

	// DistanceBounds returns the min and max camera-to-target distance.
	DistanceBounds() (min, max float32)

	// SetDistanceBounds sets the camera-to-target distance clamp.
	SetDistanceBounds(min, max float32)

	// PolarBounds returns the min and max polar angle in radians, measured from +Y.
	PolarBounds() (min, max float32)

	// SetPolarBounds sets the polar angle clamp in radians.
	SetPolarBounds(min, max float32)

	// Rotate queues a drag of dx, dy pixels on a viewport of the given height.
	// A full-height vertical drag rotates by a full turn, as does a horizontal drag of the same length.
	// Ignored while disabled.
	//
	// Parameters:
	//   - dx: horizontal drag in pixels
	//   - dy: vertical drag in pixels
	//   - viewportHeight: the viewport height in pixels
	Rotate(dx, dy, viewportHeight float32)

	// Dolly queues a zoom of the given number of wheel steps. Positive steps move closer.
	// Ignored while disabled.
	//
	// Parameters:
	//   - steps: scroll wheel steps
	Dolly(steps float32)

	// SyncFromCamera discards queued motion and adopts the camera's current position as the goal.
	SyncFromCamera()

	// Update applies queued motion and clamps, then moves the camera.
	// Does nothing while disabled.
	//
	// Returns:
	//   - bool: true if the camera moved
	Update() bool
}

var _ OrbitController = &orbitControllerImpl{}

// NewOrbitController creates a new OrbitController driving the given camera.
// The controller starts disabled, orbiting the camera's current target, with damping enabled.
//
// Parameters:
//   - cam: the camera to drive
//   - options: functional options to configure the controller
//
// Returns:
//   - OrbitController: the newly created controller
func NewOrbitController(cam Camera, options ...OrbitControllerOption) OrbitController {
	oc := &orbitControllerImpl{
		mu:               &sync.Mutex{},
		camera:           cam,
		target:           cam.Target(),
		minDistance:      0,
		maxDistance:      float32(math.Inf(1)),
		minPolarAngle:    0,
		maxPolarAngle:    math.Pi,
		rotateSpeed:      1.0,
		zoomSpeed:        1.0,
		damping:          true,
		fps:              60,
		angularFrequency: 6.0,
		dampingRatio:     1.0,
	}

	for _, option := range options {
		option(oc)
	}

	oc.spring = harmonica.NewSpring(harmonica.FPS(oc.fps), oc.angularFrequency, oc.dampingRatio)
	return oc
}

func (oc *orbitControllerImpl) Enabled() bool {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.enabled
}

func (oc *orbitControllerImpl) SetEnabled(enabled bool) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	if enabled && !oc.enabled {
		oc.synced = false
	}
	oc.enabled = enabled
}

func (oc *orbitControllerImpl) Target() mgl32.Vec3 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.target
}

func (oc *orbitControllerImpl) SetTarget(target mgl32.Vec3) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.target = target
	oc.synced = false
}

func (oc *orbitControllerImpl) DistanceBounds() (float32, float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.minDistance, oc.maxDistance
}

func (oc *orbitControllerImpl) SetDistanceBounds(min, max float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	if min < 0 {
		min = 0
	}
	if max < min {
		max = min
	}
	oc.minDistance = min
	oc.maxDistance = max
}

func (oc *orbitControllerImpl) PolarBounds() (float32, float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.minPolarAngle, oc.maxPolarAngle
}

func (oc *orbitControllerImpl) SetPolarBounds(min, max float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	min = common.Clamp(min, 0, math.Pi)
	max = common.Clamp(max, min, math.Pi)
	oc.minPolarAngle = min
	oc.maxPolarAngle = max
}

func (oc *orbitControllerImpl) Rotate(dx, dy, viewportHeight float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	if !oc.enabled || viewportHeight <= 0 {
		return
	}
	oc.syncLocked()

	turn := 2 * math.Pi / float64(viewportHeight) * float64(oc.rotateSpeed)
	oc.goal.theta -= float64(dx) * turn
	oc.goal.phi -= float64(dy) * turn
	oc.clampGoal()
}

func (oc *orbitControllerImpl) Dolly(steps float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	if !oc.enabled || steps == 0 {
		return
	}
	oc.syncLocked()

	oc.goal.radius *= math.Pow(0.95, float64(steps)*float64(oc.zoomSpeed))
	oc.clampGoal()
}

func (oc *orbitControllerImpl) SyncFromCamera() {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.synced = false
	oc.syncLocked()
}

func (oc *orbitControllerImpl) Update() bool {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	if !oc.enabled {
		return false
	}
	oc.syncLocked()
	oc.clampGoal()

	if oc.damping {
		oc.current.radius, oc.vel.radius = oc.spring.Update(oc.current.radius, oc.vel.radius, oc.goal.radius)
		oc.current.theta, oc.vel.theta = oc.spring.Update(oc.current.theta, oc.vel.theta, oc.goal.theta)
		oc.current.phi, oc.vel.phi = oc.spring.Update(oc.current.phi, oc.vel.phi, oc.goal.phi)
	} else {
		oc.current = oc.goal
	}

	// The spring may overshoot, the clamps hold on the applied values too.
	oc.current.radius = clamp64(oc.current.radius, float64(oc.minDistance), float64(oc.maxDistance))
	oc.current.phi = clamp64(oc.current.phi, oc.minPhi(), oc.maxPhi())

	pos := oc.target.Add(oc.current.offset())
	moved := !pos.ApproxEqualThreshold(oc.written, 1e-6)
	oc.written = pos
	oc.camera.SetPosition(pos)
	oc.camera.LookAt(oc.target)
	return moved
}

// syncLocked adopts the camera position when the controller has not written it last.
// Caller must hold the mutex.
func (oc *orbitControllerImpl) syncLocked() {
	pos := oc.camera.Position()
	if oc.synced && pos.ApproxEqualThreshold(oc.written, 1e-6) {
		return
	}

	s := toSpherical(pos.Sub(oc.target))
	oc.goal = s
	oc.current = s
	oc.vel = spherical{}
	oc.written = pos
	oc.synced = true
}

// clampGoal applies the distance and polar clamps to the goal.
// Caller must hold the mutex.
func (oc *orbitControllerImpl) clampGoal() {
	oc.goal.radius = clamp64(oc.goal.radius, float64(oc.minDistance), float64(oc.maxDistance))
	oc.goal.phi = clamp64(oc.goal.phi, oc.minPhi(), oc.maxPhi())
}

func (oc *orbitControllerImpl) minPhi() float64 {
	return math.Max(float64(oc.minPolarAngle), polarEpsilon)
}

func (oc *orbitControllerImpl) maxPhi() float64 {
	return math.Min(float64(oc.maxPolarAngle), math.Pi-polarEpsilon)
}

func toSpherical(offset mgl32.Vec3) spherical {
	r := float64(offset.Len())
	if r == 0 {
		return spherical{phi: math.Pi / 2}
	}
	return spherical{
		radius: r,
		theta:  math.Atan2(float64(offset[0]), float64(offset[2])),
		phi:    math.Acos(clamp64(float64(offset[1])/r, -1, 1)),
	}
}

func (s spherical) offset() mgl32.Vec3 {
	sinPhi := math.Sin(s.phi)
	return mgl32.Vec3{
		float32(s.radius * sinPhi * math.Sin(s.theta)),
		float32(s.radius * math.Cos(s.phi)),
		float32(s.radius * sinPhi * math.Cos(s.theta)),
	}
}

func clamp64(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
