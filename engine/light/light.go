package light

import (
	"github.com/Carmen-Shannon/bikeview/common"
	"github.com/go-gl/mathgl/mgl32"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeDirectional represents a light that shines from its position toward a target
	// with parallel rays and no distance attenuation.
	LightTypeDirectional LightType = iota

	// LightTypePoint represents a light that emits in all directions from a position.
	LightTypePoint
)

func (t LightType) String() string {
	if t == LightTypePoint {
		return "point"
	}
	return "directional"
}

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	lightType LightType
	position  mgl32.Vec3
	target    mgl32.Vec3
	color     common.Color
	intensity float32
	enabled   bool
	shadow    *Shadow
}

// Light defines the interface for a light source in a scene.
// Type-specific properties (the target of a directional light) are ignored when not applicable.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type
	Type() LightType

	// Position returns the world-space position of the light.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Target returns the point a directional light is aimed at.
	//
	// Returns:
	//   - mgl32.Vec3: the target
	Target() mgl32.Vec3

	// Direction returns the normalized direction from the position toward the target.
	// A light positioned on its target shines straight down.
	//
	// Returns:
	//   - mgl32.Vec3: the unit direction
	Direction() mgl32.Vec3

	// Color returns the light color.
	Color() common.Color

	// Intensity returns the scalar intensity multiplier for the light.
	Intensity() float32

	// Enabled returns whether this light contributes to rendering.
	Enabled() bool

	// Shadow returns the shadow parameters, or nil when the light casts no shadows.
	//
	// Returns:
	//   - *Shadow: the shadow configuration or nil
	Shadow() *Shadow

	// SetPosition sets the world-space position of the light.
	//
	// Parameters:
	//   - p: the new position
	SetPosition(p mgl32.Vec3)

	// SetEnabled enables or disables the light.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with sensible defaults and
// any provided options applied.
//
// Parameters:
//   - lightType: the kind of light to create
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType: lightType,
		position:  mgl32.Vec3{0, 1, 0},
		color:     common.Color{R: 1, G: 1, B: 1},
		intensity: 1.0,
		enabled:   true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() mgl32.Vec3 {
	return l.position
}

func (l *lightImpl) Target() mgl32.Vec3 {
	return l.target
}

func (l *lightImpl) Direction() mgl32.Vec3 {
	d := l.target.Sub(l.position)
	if d.Len() == 0 {
		return mgl32.Vec3{0, -1, 0}
	}
	return d.Normalize()
}

func (l *lightImpl) Color() common.Color {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) Shadow() *Shadow {
	return l.shadow
}

func (l *lightImpl) SetPosition(p mgl32.Vec3) {
	l.position = p
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}
