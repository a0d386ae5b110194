package scene

import (
	"github.com/Carmen-Shannon/bikeview/common"
	"github.com/Carmen-Shannon/bikeview/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// NodeKind distinguishes grouping nodes from renderable mesh nodes.
type NodeKind int

const (
	// KindMesh is a renderable node. It usually carries a material and local geometry bounds.
	KindMesh NodeKind = iota
	// KindGroup is a grouping node with no geometry of its own.
	KindGroup
)

func (k NodeKind) String() string {
	if k == KindGroup {
		return "group"
	}
	return "mesh"
}

// Node is an element of a scene hierarchy: either a Group that holds children or a Mesh
// with an optional material and local bounds. The parent link is non-owning.
//
// Nodes are not safe for concurrent mutation; they belong to the frame loop once added to a scene.
type Node struct {
	name     string
	kind     NodeKind
	parent   *Node
	children []*Node
	mat      material.Material

	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3
	matrix   *mgl32.Mat4

	bounds        Bounds
	visible       bool
	castShadow    bool
	receiveShadow bool
}

// NewNode creates a new Node with an identity transform, configured with the provided options.
//
// Parameters:
//   - options: variadic list of NodeBuilderOption functions to configure the node
//
// Returns:
//   - *Node: the new node
func NewNode(options ...NodeBuilderOption) *Node {
	n := &Node{
		kind:     KindMesh,
		rotation: mgl32.QuatIdent(),
		scale:    mgl32.Vec3{1, 1, 1},
		visible:  true,
	}
	for _, opt := range options {
		opt(n)
	}
	return n
}

// NewGroup creates a grouping node holding the given children.
func NewGroup(name string, children ...*Node) *Node {
	return NewNode(WithName(name), WithKind(KindGroup), WithChildren(children...))
}

// NewMesh creates a mesh node with a material and local bounds.
func NewMesh(name string, mat material.Material, bounds Bounds) *Node {
	return NewNode(WithName(name), WithMaterial(mat), WithBounds(bounds))
}

// Name returns the node's name.
func (n *Node) Name() string {
	return n.name
}

// SetName renames the node.
func (n *Node) SetName(name string) {
	n.name = name
}

// Kind returns whether the node is a group or a mesh.
func (n *Node) Kind() NodeKind {
	return n.kind
}

// IsGroup reports whether the node is a grouping node.
func (n *Node) IsGroup() bool {
	return n.kind == KindGroup
}

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// ParentName returns the parent's name, or the empty string when the node has no parent.
func (n *Node) ParentName() string {
	if n.parent == nil {
		return ""
	}
	return n.parent.name
}

// Children returns the node's direct children. The slice must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// Add attaches children to the node, detaching each from its previous parent first.
//
// Parameters:
//   - children: the nodes to attach
func (n *Node) Add(children ...*Node) {
	for _, c := range children {
		if c == nil || c == n {
			continue
		}
		if c.parent != nil {
			c.parent.Remove(c)
		}
		c.parent = n
		n.children = append(n.children, c)
	}
}

// Remove detaches a direct child. It is a no-op when child is not a child of n.
func (n *Node) Remove(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Material returns the node's material, or nil.
func (n *Node) Material() material.Material {
	return n.mat
}

// SetMaterial replaces the node's material.
func (n *Node) SetMaterial(m material.Material) {
	n.mat = m
}

// HasMaterial reports whether the node carries a renderable material.
func (n *Node) HasMaterial() bool {
	return n.mat != nil
}

// Position returns the local translation.
func (n *Node) Position() mgl32.Vec3 {
	return n.position
}

// SetPosition sets the local translation. It clears any explicit local matrix.
func (n *Node) SetPosition(p mgl32.Vec3) {
	n.position = p
	n.matrix = nil
}

// Rotation returns the local rotation.
func (n *Node) Rotation() mgl32.Quat {
	return n.rotation
}

// SetRotation sets the local rotation. It clears any explicit local matrix.
func (n *Node) SetRotation(q mgl32.Quat) {
	n.rotation = q
	n.matrix = nil
}

// Scale returns the local scale.
func (n *Node) Scale() mgl32.Vec3 {
	return n.scale
}

// SetScale sets the local scale. It clears any explicit local matrix.
func (n *Node) SetScale(s mgl32.Vec3) {
	n.scale = s
	n.matrix = nil
}

// SetMatrix sets an explicit local matrix that overrides translation, rotation and scale.
func (n *Node) SetMatrix(m mgl32.Mat4) {
	n.matrix = &m
}

// Bounds returns the local geometry bounds of this node alone.
func (n *Node) Bounds() Bounds {
	return n.bounds
}

// SetBounds replaces the local geometry bounds.
func (n *Node) SetBounds(b Bounds) {
	n.bounds = b
}

// Visible reports whether the node is rendered.
func (n *Node) Visible() bool {
	return n.visible
}

// SetVisible shows or hides the node.
func (n *Node) SetVisible(v bool) {
	n.visible = v
}

// CastShadow reports whether the node renders into shadow maps.
func (n *Node) CastShadow() bool {
	return n.castShadow
}

// ReceiveShadow reports whether the node samples shadow maps.
func (n *Node) ReceiveShadow() bool {
	return n.receiveShadow
}

// SetShadows sets the cast and receive shadow flags.
func (n *Node) SetShadows(cast, receive bool) {
	n.castShadow = cast
	n.receiveShadow = receive
}

// LocalMatrix returns the node's transform relative to its parent.
//
// Returns:
//   - mgl32.Mat4: the explicit matrix if one was set, otherwise translation * rotation * scale
func (n *Node) LocalMatrix() mgl32.Mat4 {
	if n.matrix != nil {
		return *n.matrix
	}
	return mgl32.Translate3D(n.position[0], n.position[1], n.position[2]).
		Mul4(n.rotation.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(n.scale[0], n.scale[1], n.scale[2]))
}

// WorldMatrix returns the node's transform relative to the root of its hierarchy.
func (n *Node) WorldMatrix() mgl32.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

// WorldBounds returns the world-space box enclosing this node and all of its descendants.
func (n *Node) WorldBounds() Bounds {
	var out Bounds
	n.worldBounds(n.parentWorld(), &out)
	return out
}

func (n *Node) parentWorld() mgl32.Mat4 {
	if n.parent == nil {
		return mgl32.Ident4()
	}
	return n.parent.WorldMatrix()
}

func (n *Node) worldBounds(parent mgl32.Mat4, out *Bounds) {
	world := parent.Mul4(n.LocalMatrix())
	*out = out.Union(n.bounds.Transform(world))
	for _, c := range n.children {
		c.worldBounds(world, out)
	}
}

// WorldOwnBoundsCenter returns the world-space center of this node's own geometry bounds.
// Descendants do not contribute.
//
// Returns:
//   - mgl32.Vec3: the world-space center
//   - bool: false when the node has no geometry or the result is not finite
func (n *Node) WorldOwnBoundsCenter() (mgl32.Vec3, bool) {
	c, ok := n.bounds.Transform(n.WorldMatrix()).Center()
	if !ok || !common.Finite3(c) {
		return mgl32.Vec3{}, false
	}
	return c, true
}

// Traverse visits the node and every descendant depth-first, parents before children.
//
// Parameters:
//   - fn: the visitor
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

// Eligible visits every node in the subtree that carries a material, in depth-first order.
// Group children are reached through the same walk, so each materialed node is visited once.
//
// Parameters:
//   - fn: the visitor
func (n *Node) Eligible(fn func(*Node)) {
	n.Traverse(func(node *Node) {
		if node.HasMaterial() {
			fn(node)
		}
	})
}

// Find returns the first node in the subtree with the given name, or nil.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Traverse(func(node *Node) {
		if found == nil && node.name == name {
			found = node
		}
	})
	return found
}

// Clone returns a deep copy of the subtree. Materials are shared with the original;
// the clone's root has no parent.
//
// Returns:
//   - *Node: the copied subtree
func (n *Node) Clone() *Node {
	c := *n
	c.parent = nil
	c.children = nil
	if n.matrix != nil {
		m := *n.matrix
		c.matrix = &m
	}
	for _, child := range n.children {
		cc := child.Clone()
		cc.parent = &c
		c.children = append(c.children, cc)
	}
	return &c
}
