package scene

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/bikeview/engine/light"
	"github.com/Carmen-Shannon/bikeview/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitBox() Bounds {
	return NewBounds(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})
}

func TestParentNameOfRootIsEmpty(t *testing.T) {
	root := NewMesh("orphan", material.NewMaterial(), unitBox())
	assert.Equal(t, "", root.ParentName())

	g := NewGroup("frame", root)
	assert.Equal(t, "frame", root.ParentName())
	assert.Same(t, g, root.Parent())
}

func TestAddReparents(t *testing.T) {
	child := NewMesh("c", nil, Bounds{})
	a := NewGroup("a", child)
	b := NewGroup("b")

	b.Add(child)
	assert.Empty(t, a.Children())
	require.Len(t, b.Children(), 1)
	assert.Equal(t, "b", child.ParentName())
}

func TestEligibleVisitsEachMaterialedNodeOnce(t *testing.T) {
	mat := material.NewMaterial()
	leafA := NewMesh("a", mat, unitBox())
	leafB := NewMesh("b", mat, unitBox())
	bare := NewMesh("bare", nil, unitBox())
	inner := NewGroup("inner", leafB, bare)
	root := NewGroup("root", leafA, inner)

	var names []string
	root.Eligible(func(n *Node) { names = append(names, n.Name()) })
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestWorldOwnBoundsCenterAppliesHierarchy(t *testing.T) {
	leaf := NewNode(WithName("leaf"), WithMaterial(material.NewMaterial()), WithBounds(unitBox()), WithPosition(0, 2, 0))
	group := NewNode(WithName("g"), WithKind(KindGroup), WithPosition(3, 0, 0), WithScale(2, 2, 2), WithChildren(leaf))

	c, ok := leaf.WorldOwnBoundsCenter()
	require.True(t, ok)
	assert.True(t, mgl32.Vec3{3, 4, 0}.ApproxEqual(c), "got %v", c)

	_, ok = group.WorldOwnBoundsCenter()
	assert.False(t, ok, "a group has no geometry of its own")

	gc, ok := group.WorldBounds().Center()
	require.True(t, ok)
	assert.True(t, c.ApproxEqual(gc))
}

func TestWorldOwnBoundsCenterIgnoresChildMeshes(t *testing.T) {
	mat := material.NewMaterial()
	seat := NewNode(WithName("seat"), WithMaterial(mat), WithBounds(unitBox()), WithPosition(1.5, 0, 0))
	frame := NewNode(WithName("frame"), WithMaterial(mat), WithBounds(unitBox()), WithPosition(0, 1, 0), WithChildren(seat))

	c, ok := frame.WorldOwnBoundsCenter()
	require.True(t, ok)
	assert.True(t, mgl32.Vec3{0, 1, 0}.ApproxEqual(c), "got %v", c)

	sc, ok := seat.WorldOwnBoundsCenter()
	require.True(t, ok)
	assert.True(t, mgl32.Vec3{1.5, 1, 0}.ApproxEqual(sc), "got %v", sc)

	whole, ok := frame.WorldBounds().Center()
	require.True(t, ok)
	assert.InDelta(t, 0.75, whole.X(), 1e-5)
}

func TestWorldOwnBoundsCenterDegenerate(t *testing.T) {
	empty := NewMesh("empty", material.NewMaterial(), Bounds{})
	_, ok := empty.WorldOwnBoundsCenter()
	assert.False(t, ok)

	nan := float32(math.NaN())
	assert.True(t, NewBounds(mgl32.Vec3{nan, 0, 0}, mgl32.Vec3{1, 1, 1}).IsEmpty())
	assert.True(t, NewBounds(mgl32.Vec3{2, 0, 0}, mgl32.Vec3{1, 1, 1}).IsEmpty())
}

func TestRotatedBoundsStayAxisAligned(t *testing.T) {
	floor := NewNode(WithBounds(NewBounds(mgl32.Vec3{-50, -50, 0}, mgl32.Vec3{50, 50, 0})), WithEuler(-math.Pi/2, 0, 0))
	b := floor.WorldBounds()
	assert.InDelta(t, 0, b.Max.Y()-b.Min.Y(), 1e-4)
	assert.InDelta(t, 100, b.Max.Z()-b.Min.Z(), 1e-3)
}

func TestCloneIsIndependent(t *testing.T) {
	mat := material.NewMaterial()
	leaf := NewMesh("leaf", mat, unitBox())
	root := NewGroup("root", leaf)

	clone := root.Clone()
	require.Len(t, clone.Children(), 1)
	cl := clone.Children()[0]
	assert.Same(t, clone, cl.Parent())
	assert.NotSame(t, leaf, cl)
	assert.Same(t, mat, cl.Material())

	cl.SetMaterial(material.NewMaterial(material.WithKind(material.KindBasic)))
	assert.Same(t, mat, leaf.Material())
	assert.Nil(t, clone.Parent())
}

func TestSceneFirstGroup(t *testing.T) {
	s := NewScene(WithSceneName("main"))
	assert.Nil(t, s.FirstGroup())

	s.Add(NewMesh("floor", material.NewMaterial(), unitBox()))
	assert.Nil(t, s.FirstGroup())

	g := NewGroup("bike", NewMesh("chain", material.NewMaterial(), unitBox()))
	s.Add(g, NewGroup("other"))
	assert.Same(t, g, s.FirstGroup())
	assert.Equal(t, 4, s.Count())

	s.Clear()
	assert.Nil(t, s.FirstGroup())
}

func TestSceneLightsAndFog(t *testing.T) {
	l := light.NewLight(light.LightTypePoint)
	s := NewScene(WithLights(l), WithFog(Fog{Near: 2, Far: 5}))

	require.Len(t, s.Lights(), 1)
	assert.Equal(t, float32(5), s.Fog().Far)

	s.RemoveLight(l)
	assert.Empty(t, s.Lights())
	s.SetFog(nil)
	assert.Nil(t, s.Fog())
}
