package scene

import (
	"github.com/Carmen-Shannon/bikeview/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// NodeBuilderOption is a functional option for configuring a Node.
// Use the With* functions to create options.
type NodeBuilderOption func(n *Node)

// WithName sets the node's name.
//
// Parameters:
//   - name: the node name
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithName(name string) NodeBuilderOption {
	return func(n *Node) {
		n.name = name
	}
}

// WithKind sets whether the node is a group or a mesh.
func WithKind(kind NodeKind) NodeBuilderOption {
	return func(n *Node) {
		n.kind = kind
	}
}

// WithMaterial attaches a material to the node.
//
// Parameters:
//   - m: the material
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithMaterial(m material.Material) NodeBuilderOption {
	return func(n *Node) {
		n.mat = m
	}
}

// WithBounds sets the node's local geometry bounds.
func WithBounds(b Bounds) NodeBuilderOption {
	return func(n *Node) {
		n.bounds = b
	}
}

// WithPosition sets the local translation.
//
// Parameters:
//   - x, y, z: translation components
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithPosition(x, y, z float32) NodeBuilderOption {
	return func(n *Node) {
		n.position = mgl32.Vec3{x, y, z}
	}
}

// WithRotation sets the local rotation quaternion.
func WithRotation(q mgl32.Quat) NodeBuilderOption {
	return func(n *Node) {
		n.rotation = q
	}
}

// WithEuler sets the local rotation from XYZ Euler angles in radians.
//
// Parameters:
//   - x, y, z: rotation about each axis in radians
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithEuler(x, y, z float32) NodeBuilderOption {
	return func(n *Node) {
		n.rotation = mgl32.AnglesToQuat(x, y, z, mgl32.XYZ)
	}
}

// WithScale sets the local scale.
func WithScale(x, y, z float32) NodeBuilderOption {
	return func(n *Node) {
		n.scale = mgl32.Vec3{x, y, z}
	}
}

// WithMatrix sets an explicit local matrix, overriding translation, rotation and scale.
//
// Parameters:
//   - m: the column-major local matrix
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithMatrix(m mgl32.Mat4) NodeBuilderOption {
	return func(n *Node) {
		n.matrix = &m
	}
}

// WithShadows sets the cast and receive shadow flags.
func WithShadows(cast, receive bool) NodeBuilderOption {
	return func(n *Node) {
		n.castShadow = cast
		n.receiveShadow = receive
	}
}

// WithChildren attaches children to the node.
//
// Parameters:
//   - children: the child nodes
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithChildren(children ...*Node) NodeBuilderOption {
	return func(n *Node) {
		n.Add(children...)
	}
}
