package material

import (
	"github.com/Carmen-Shannon/bikeview/common"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithKind is an option builder that sets the shading model.
//
// Parameters:
//   - kind: the shading model
//
// Returns:
//   - MaterialBuilderOption: a function that applies the kind option to a material
func WithKind(kind Kind) MaterialBuilderOption {
	return func(m *material) {
		m.kind = kind
	}
}

// WithColor is an option builder that sets the diffuse color of the material.
//
// Parameters:
//   - c: the diffuse color
//
// Returns:
//   - MaterialBuilderOption: a function that applies the color option to a material
func WithColor(c common.Color) MaterialBuilderOption {
	return func(m *material) {
		m.color = c
	}
}

// WithEmissive is an option builder that sets the emissive color of the material.
func WithEmissive(c common.Color) MaterialBuilderOption {
	return func(m *material) {
		m.emissive = c
	}
}

// WithMetalness is an option builder that sets the metalness factor of the material.
//
// Parameters:
//   - metalness: the metalness factor (0.0 = dielectric, 1.0 = metal)
//
// Returns:
//   - MaterialBuilderOption: a function that applies the metalness option to a material
func WithMetalness(metalness float32) MaterialBuilderOption {
	return func(m *material) {
		m.metalness = metalness
	}
}

// WithRoughness is an option builder that sets the roughness factor of the material.
//
// Parameters:
//   - roughness: the roughness factor (0.0 = smooth, 1.0 = rough)
//
// Returns:
//   - MaterialBuilderOption: a function that applies the roughness option to a material
func WithRoughness(roughness float32) MaterialBuilderOption {
	return func(m *material) {
		m.roughness = roughness
	}
}

// WithReflectivity is an option builder that sets the environment map contribution.
func WithReflectivity(reflectivity float32) MaterialBuilderOption {
	return func(m *material) {
		m.reflectivity = reflectivity
	}
}

// WithCombine is an option builder that sets how the environment map is blended with the color.
func WithCombine(op Combine) MaterialBuilderOption {
	return func(m *material) {
		m.combine = op
	}
}

// WithEnvMap is an option builder that attaches an environment cube map.
//
// Parameters:
//   - env: the environment map
//
// Returns:
//   - MaterialBuilderOption: a function that applies the environment map option to a material
func WithEnvMap(env *common.CubeTexture) MaterialBuilderOption {
	return func(m *material) {
		m.envMap = env
	}
}

// WithMap is an option builder that attaches a color texture.
func WithMap(tex *common.Texture) MaterialBuilderOption {
	return func(m *material) {
		m.colorMap = tex
	}
}

// WithTransparent is an option builder that enables blending at the given opacity.
//
// Parameters:
//   - opacity: the alpha value in [0, 1]
//
// Returns:
//   - MaterialBuilderOption: a function that applies the transparency option to a material
func WithTransparent(opacity float32) MaterialBuilderOption {
	return func(m *material) {
		m.transparent = true
		m.opacity = common.Clamp(opacity, 0, 1)
	}
}
