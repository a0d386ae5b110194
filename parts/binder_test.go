package parts

import (
	"testing"

	"github.com/Carmen-Shannon/bikeview/common"
	"github.com/Carmen-Shannon/bikeview/engine/renderer/material"
	"github.com/Carmen-Shannon/bikeview/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bikeTree builds a small model: frame, a chain group with two links, a tire,
// an unmatched bolt and a node without a material.
func bikeTree() *scene.Node {
	mesh := func(name string) *scene.Node {
		return scene.NewMesh(name, material.NewMaterial(), scene.Bounds{})
	}
	bike := scene.NewGroup("bike",
		mesh("frame"),
		scene.NewGroup("chain", mesh("chain_0"), mesh("chain_1")),
		mesh("frontTire"),
		mesh("bolt"),
		scene.NewMesh("socket", nil, scene.Bounds{}),
	)
	return scene.NewGroup("Scene", bike)
}

func testEnv() Environment {
	return Environment{Reflection: &common.CubeTexture{}, Baseline: DefaultBaseline}
}

func TestBind(t *testing.T) {
	c := DefaultCatalog()
	table := NewStateTable(c)
	env := testEnv()
	root := bikeTree()

	report := Bind(root, c, table, env)
	assert.Equal(t, 5, report.Eligible)
	assert.Equal(t, 4, report.Matched)
	assert.Equal(t, 1, report.Unmatched)
	assert.Equal(t, map[string]int{"Frame": 1, "Chain": 2, "Tires": 1}, report.Nodes)
	assert.Len(t, report.Unbound(c), 15)

	frame := root.Find("frame").Material()
	assert.Equal(t, material.KindLambert, frame.Kind())
	assert.Equal(t, DefaultBaseline, frame.Color())
	assert.Equal(t, common.Hex(0xaaaaaa), frame.Emissive())
	assert.InDelta(t, 0.92, frame.Reflectivity(), 1e-6)
	assert.Equal(t, material.CombineMultiply, frame.Combine())
	assert.Same(t, env.Reflection, frame.EnvMap())

	assert.Equal(t, common.Hex(0xaaaaaa), root.Find("chain_1").Material().Color())

	tire := root.Find("frontTire").Material()
	assert.Equal(t, material.KindPhysical, tire.Kind())
	assert.Equal(t, common.Hex(0x080808), tire.Color())
	assert.Zero(t, tire.Metalness())
	assert.InDelta(t, 0.7, tire.Roughness(), 1e-6)
	assert.Nil(t, tire.EnvMap())

	bolt := root.Find("bolt").Material()
	assert.Equal(t, material.KindLambert, bolt.Kind())
	assert.Equal(t, DefaultBaseline, bolt.Color())
	assert.Nil(t, bolt.EnvMap())

	assert.Nil(t, root.Find("socket").Material())

	s, _ := table.Get("Chain")
	assert.True(t, s.Bound)
	assert.True(t, s.Display)
	s, _ = table.Get("Saddle")
	assert.False(t, s.Bound)
	assert.False(t, s.Display)
}

func TestBindFrameAndChainCatalog(t *testing.T) {
	gray := common.Hex(0x808080)
	c, err := NewCatalog(
		PartSpec{Name: "Frame", PrimaryMatchName: "frame"},
		PartSpec{Name: "Chain", PrimaryMatchName: "chain", HighlightColor: &gray},
	)
	require.NoError(t, err)
	table := NewStateTable(c)

	mesh := func(name string) *scene.Node {
		return scene.NewMesh(name, material.NewMaterial(), scene.Bounds{})
	}
	chain := mesh("chain")
	frameMesh := mesh("Frame_mesh_01")
	root := scene.NewGroup("Scene", scene.NewGroup("bike", chain, scene.NewGroup("frame", frameMesh)))

	report := Bind(root, c, table, testEnv())
	assert.Equal(t, 2, report.Matched)
	assert.Equal(t, map[string]int{"Frame": 1, "Chain": 1}, report.Nodes)

	assert.Equal(t, gray, chain.Material().Color())
	s, _ := table.Get("Chain")
	assert.True(t, s.Bound)
	assert.True(t, s.Display)

	assert.Equal(t, "Frame", MatchNode(frameMesh, c).ID())
	s, _ = table.Get("Frame")
	assert.True(t, s.Bound)
	assert.True(t, s.Display)
}

func TestBindIsIdempotent(t *testing.T) {
	c := DefaultCatalog()
	env := testEnv()
	root := bikeTree()
	table := NewStateTable(c)

	first := Bind(root, c, table, env)
	snapshot := table.Snapshot()
	type look struct {
		kind  material.Kind
		color common.Color
		env   *common.CubeTexture
	}
	looks := func() map[string]look {
		out := make(map[string]look)
		root.Eligible(func(n *scene.Node) {
			m := n.Material()
			out[n.Name()] = look{m.Kind(), m.Color(), m.EnvMap()}
		})
		return out
	}
	before := looks()

	second := Bind(root, c, table, env)
	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, table.Snapshot())
	assert.Equal(t, before, looks())
}

func TestBindNilRoot(t *testing.T) {
	report := Bind(nil, DefaultCatalog(), nil, testEnv())
	assert.Zero(t, report.Eligible)
}

func TestRecolor(t *testing.T) {
	c := DefaultCatalog()
	root := bikeTree()
	Bind(root, c, nil, testEnv())
	red := DefaultHighlight

	n := Recolor(root, c, c.Get("Chain"), red, DefaultBaseline)
	require.Equal(t, 2, n)
	assert.Equal(t, red, root.Find("chain_0").Material().Color())
	assert.Equal(t, red, root.Find("chain_1").Material().Color())
	assert.Equal(t, DefaultBaseline, root.Find("frame").Material().Color())
	assert.Equal(t, common.Hex(0x080808), root.Find("frontTire").Material().Color())

	assert.Zero(t, Recolor(root, c, nil, red, DefaultBaseline))
	assert.Equal(t, common.Hex(0xaaaaaa), root.Find("chain_0").Material().Color())
}
