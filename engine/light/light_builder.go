package light

import (
	"github.com/Carmen-Shannon/bikeview/common"
	"github.com/go-gl/mathgl/mgl32"
)

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithPosition is an option builder that sets the world-space position of the light.
//
// Parameters:
//   - x: the x position component
//   - y: the y position component
//   - z: the z position component
//
// Returns:
//   - LightBuilderOption: a function that applies the position option to a lightImpl
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = mgl32.Vec3{x, y, z}
	}
}

// WithTarget is an option builder that sets the point a directional light aims at.
//
// Parameters:
//   - x: the x target component
//   - y: the y target component
//   - z: the z target component
//
// Returns:
//   - LightBuilderOption: a function that applies the target option to a lightImpl
func WithTarget(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.target = mgl32.Vec3{x, y, z}
	}
}

// WithColor is an option builder that sets the color of the light.
//
// Parameters:
//   - c: the light color
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a lightImpl
func WithColor(c common.Color) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = c
	}
}

// WithIntensity is an option builder that sets the scalar intensity multiplier.
//
// Parameters:
//   - intensity: the intensity value
//
// Returns:
//   - LightBuilderOption: a function that applies the intensity option to a lightImpl
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = intensity
	}
}

// WithEnabled is an option builder that sets whether the light is enabled.
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}

// WithShadow is an option builder that makes the light cast shadows with the given parameters.
//
// Parameters:
//   - s: the shadow configuration (copied)
//
// Returns:
//   - LightBuilderOption: a function that applies the shadow option to a lightImpl
func WithShadow(s Shadow) LightBuilderOption {
	return func(l *lightImpl) {
		l.shadow = &s
	}
}
