package material

import (
	"github.com/Carmen-Shannon/bikeview/common"
)

// Kind selects the shading model of a material.
type Kind int

const (
	// KindLambert is a diffuse material that can multiply an environment map over its color.
	KindLambert Kind = iota
	// KindPhysical is a metalness/roughness material.
	KindPhysical
	// KindBasic is an unlit material.
	KindBasic
)

func (k Kind) String() string {
	switch k {
	case KindPhysical:
		return "physical"
	case KindBasic:
		return "basic"
	default:
		return "lambert"
	}
}

// Combine selects how an environment map is blended with the surface color.
type Combine int

const (
	CombineMultiply Combine = iota
	CombineMix
	CombineAdd
)

// material is the implementation of the Material interface.
type material struct {
	name         string
	kind         Kind
	color        common.Color
	emissive     common.Color
	metalness    float32
	roughness    float32
	reflectivity float32
	combine      Combine
	envMap       *common.CubeTexture
	colorMap     *common.Texture
	transparent  bool
	opacity      float32
}

// Material describes the surface appearance of a mesh node.
//
// Shading parameters are fixed at construction. The color is mutable because part
// selection recolors meshes in place, and the environment map can be dropped or
// swapped when a node falls back to its baseline appearance.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Kind retrieves the shading model.
	//
	// Returns:
	//   - Kind: the shading model
	Kind() Kind

	// Color retrieves the diffuse color.
	//
	// Returns:
	//   - common.Color: the diffuse color
	Color() common.Color

	// SetColor replaces the diffuse color.
	//
	// Parameters:
	//   - c: the new color
	SetColor(c common.Color)

	// Emissive retrieves the emissive color.
	Emissive() common.Color

	// Metalness retrieves the metalness factor (0.0 = dielectric, 1.0 = metal).
	Metalness() float32

	// Roughness retrieves the roughness factor (0.0 = smooth, 1.0 = rough).
	Roughness() float32

	// Reflectivity retrieves how strongly the environment map contributes.
	Reflectivity() float32

	// Combine retrieves the environment blend operation.
	Combine() Combine

	// EnvMap retrieves the environment cube map, or nil if none is set.
	//
	// Returns:
	//   - *common.CubeTexture: the environment map, or nil
	EnvMap() *common.CubeTexture

	// SetEnvMap replaces the environment cube map. Passing nil removes it.
	//
	// Parameters:
	//   - env: the environment map, or nil
	SetEnvMap(env *common.CubeTexture)

	// Map retrieves the color texture, or nil if none is set.
	Map() *common.Texture

	// Transparent reports whether the material is blended with what is behind it.
	Transparent() bool

	// Opacity retrieves the alpha used when Transparent is true.
	Opacity() float32

	// Clone returns an independent copy of the material. Textures are shared.
	//
	// Returns:
	//   - Material: the copy
	Clone() Material
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
// Defaults to a white Lambert material with roughness 1 and full opacity.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		kind:         KindLambert,
		color:        common.Color{R: 1, G: 1, B: 1},
		roughness:    1.0,
		reflectivity: 1.0,
		opacity:      1.0,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Kind() Kind {
	return m.kind
}

func (m *material) Color() common.Color {
	return m.color
}

func (m *material) SetColor(c common.Color) {
	m.color = c
}

func (m *material) Emissive() common.Color {
	return m.emissive
}

func (m *material) Metalness() float32 {
	return m.metalness
}

func (m *material) Roughness() float32 {
	return m.roughness
}

func (m *material) Reflectivity() float32 {
	return m.reflectivity
}

func (m *material) Combine() Combine {
	return m.combine
}

func (m *material) EnvMap() *common.CubeTexture {
	return m.envMap
}

func (m *material) SetEnvMap(env *common.CubeTexture) {
	m.envMap = env
}

func (m *material) Map() *common.Texture {
	return m.colorMap
}

func (m *material) Transparent() bool {
	return m.transparent
}

func (m *material) Opacity() float32 {
	return m.opacity
}

func (m *material) Clone() Material {
	c := *m
	return &c
}
