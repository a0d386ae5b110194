package scene

import (
	"github.com/Carmen-Shannon/bikeview/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Bounds is an axis-aligned bounding box. The zero value is empty.
type Bounds struct {
	Min, Max mgl32.Vec3
	valid    bool
}

// NewBounds creates a box spanning min and max.
//
// Parameters:
//   - min: the lower corner
//   - max: the upper corner
//
// Returns:
//   - Bounds: the box, empty when any component of min exceeds max or is not finite
func NewBounds(min, max mgl32.Vec3) Bounds {
	if !common.Finite3(min) || !common.Finite3(max) {
		return Bounds{}
	}
	for i := 0; i < 3; i++ {
		if min[i] > max[i] {
			return Bounds{}
		}
	}
	return Bounds{Min: min, Max: max, valid: true}
}

// BoundsFromPoints creates the smallest box containing every point.
// Non-finite points are ignored.
func BoundsFromPoints(points ...mgl32.Vec3) Bounds {
	var b Bounds
	for _, p := range points {
		b = b.ExpandByPoint(p)
	}
	return b
}

// IsEmpty reports whether the box contains no points.
func (b Bounds) IsEmpty() bool {
	return !b.valid
}

// ExpandByPoint returns the box grown to include p.
func (b Bounds) ExpandByPoint(p mgl32.Vec3) Bounds {
	if !common.Finite3(p) {
		return b
	}
	if !b.valid {
		return Bounds{Min: p, Max: p, valid: true}
	}
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
	return b
}

// Union returns the smallest box containing both boxes.
func (b Bounds) Union(o Bounds) Bounds {
	if o.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return o
	}
	return b.ExpandByPoint(o.Min).ExpandByPoint(o.Max)
}

// Center returns the midpoint of the box.
//
// Returns:
//   - mgl32.Vec3: the center
//   - bool: false when the box is empty
func (b Bounds) Center() (mgl32.Vec3, bool) {
	if b.IsEmpty() {
		return mgl32.Vec3{}, false
	}
	return b.Min.Add(b.Max).Mul(0.5), true
}

// Transform returns the axis-aligned box enclosing the eight corners of b transformed by m.
//
// Parameters:
//   - m: the affine transform to apply
//
// Returns:
//   - Bounds: the transformed box
func (b Bounds) Transform(m mgl32.Mat4) Bounds {
	if b.IsEmpty() {
		return b
	}
	var out Bounds
	for i := 0; i < 8; i++ {
		corner := mgl32.Vec3{b.Min[0], b.Min[1], b.Min[2]}
		if i&1 != 0 {
			corner[0] = b.Max[0]
		}
		if i&2 != 0 {
			corner[1] = b.Max[1]
		}
		if i&4 != 0 {
			corner[2] = b.Max[2]
		}
		out = out.ExpandByPoint(mgl32.TransformCoordinate(corner, m))
	}
	return out
}
