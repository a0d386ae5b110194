package scene

import (
	"sync"

	"github.com/Carmen-Shannon/bikeview/common"
	"github.com/Carmen-Shannon/bikeview/engine/light"
)

// Fog fades geometry toward a color between a near and far distance from the camera.
type Fog struct {
	Color     common.Color
	Near, Far float32
}

// Scene holds the top-level nodes, lights and fog of one render layer.
// Scenes can be toggled via the Active flag. Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Add attaches top-level nodes to the scene.
	//
	// Parameters:
	//   - nodes: the nodes to attach
	Add(nodes ...*Node)

	// Remove detaches a top-level node from the scene.
	//
	// Parameters:
	//   - node: the node to detach
	Remove(node *Node)

	// Children returns a snapshot of the top-level nodes in insertion order.
	//
	// Returns:
	//   - []*Node: the top-level nodes
	Children() []*Node

	// FirstGroup returns the first top-level node whose kind is Group.
	//
	// Returns:
	//   - *Node: the group, or nil if the scene holds none yet
	FirstGroup() *Node

	// Traverse visits every node of every top-level subtree depth-first.
	//
	// Parameters:
	//   - fn: the visitor
	Traverse(fn func(*Node))

	// Count returns the number of nodes in the scene, including descendants.
	Count() int

	// Clear removes all nodes from the scene. Lights and fog are kept.
	Clear()

	// AddLight adds a light source to the scene.
	//
	// Parameters:
	//   - l: the Light to add
	AddLight(l light.Light)

	// RemoveLight removes a light source from the scene by reference.
	//
	// Parameters:
	//   - l: the Light to remove
	RemoveLight(l light.Light)

	// Lights returns all lights currently registered in the scene.
	//
	// Returns:
	//   - []light.Light: the scene's light list
	Lights() []light.Light

	// Fog returns the scene fog, or nil when the scene has none.
	Fog() *Fog

	// SetFog replaces the scene fog. Passing nil removes it.
	SetFog(f *Fog)
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	nodes  []*Node
	lights []light.Light
	fog    *Fog
}

var _ Scene = &scene{}

// NewScene creates a new active Scene configured with the provided options.
//
// Parameters:
//   - options: variadic list of SceneBuilderOption functions to configure the scene
//
// Returns:
//   - Scene: the new scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:     &sync.RWMutex{},
		active: true,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Add(nodes ...*Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if n.parent != nil {
			n.parent.Remove(n)
		}
		s.nodes = append(s.nodes, n)
	}
}

func (s *scene) Remove(node *Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.nodes {
		if n == node {
			s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
			return
		}
	}
}

func (s *scene) Children() []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

func (s *scene) FirstGroup() *Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.nodes {
		if n.IsGroup() {
			return n
		}
	}
	return nil
}

func (s *scene) Traverse(fn func(*Node)) {
	for _, n := range s.Children() {
		n.Traverse(fn)
	}
}

func (s *scene) Count() int {
	count := 0
	s.Traverse(func(*Node) { count++ })
	return count
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = nil
}

func (s *scene) AddLight(l light.Light) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = append(s.lights, l)
}

func (s *scene) RemoveLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.lights {
		if existing == l {
			s.lights = append(s.lights[:i], s.lights[i+1:]...)
			return
		}
	}
}

func (s *scene) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]light.Light, len(s.lights))
	copy(out, s.lights)
	return out
}

func (s *scene) Fog() *Fog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fog
}

func (s *scene) SetFog(f *Fog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fog = f
}
