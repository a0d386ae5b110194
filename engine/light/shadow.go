package light

// ShadowMapResolution is the default width and height in texels of a shadow depth texture.
const ShadowMapResolution = 2048

// DefaultShadowRadius is the default blur radius of soft (VSM) shadows.
const DefaultShadowRadius float32 = 15

// DefaultShadowBlurSamples is the default number of blur taps for soft shadows.
const DefaultShadowBlurSamples = 25

// DefaultShadowNormalBias pushes the shadow lookup along the surface normal to avoid acne.
const DefaultShadowNormalBias float32 = 0.02

// DefaultShadowNear and DefaultShadowFar bound the depth range of the shadow camera.
const (
	DefaultShadowNear float32 = 0.5
	DefaultShadowFar  float32 = 10
)

// DefaultShadowHalfExtent is the half-size of the shadow camera frustum on each side.
const DefaultShadowHalfExtent float32 = 10

// Shadow holds the shadow map parameters of a light.
type Shadow struct {
	Radius      float32
	BlurSamples int
	NormalBias  float32
	MapSize     int
	Near, Far   float32
	// Left, Right, Top, Bottom are the shadow camera bounds.
	Left, Right, Top, Bottom float32
}

// DefaultShadow returns the soft shadow configuration used by the viewer's point light.
//
// Returns:
//   - Shadow: the default shadow parameters
func DefaultShadow() Shadow {
	return Shadow{
		Radius:      DefaultShadowRadius,
		BlurSamples: DefaultShadowBlurSamples,
		NormalBias:  DefaultShadowNormalBias,
		MapSize:     ShadowMapResolution,
		Near:        DefaultShadowNear,
		Far:         DefaultShadowFar,
		Left:        -DefaultShadowHalfExtent,
		Right:       DefaultShadowHalfExtent,
		Top:         DefaultShadowHalfExtent,
		Bottom:      -DefaultShadowHalfExtent,
	}
}
