package scene

import (
	"github.com/Carmen-Shannon/bikeview/engine/light"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithSceneName sets the scene's identifier.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSceneName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithActive sets whether the scene is active for rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithNodes adds initial top-level nodes to the scene.
func WithNodes(nodes ...*Node) SceneBuilderOption {
	return func(s *scene) {
		s.nodes = append(s.nodes, nodes...)
	}
}

// WithLights adds initial lights to the scene.
//
// Parameters:
//   - lights: the lights to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLights(lights ...light.Light) SceneBuilderOption {
	return func(s *scene) {
		s.lights = append(s.lights, lights...)
	}
}

// WithFog sets the scene fog.
func WithFog(f Fog) SceneBuilderOption {
	return func(s *scene) {
		s.fog = &f
	}
}
