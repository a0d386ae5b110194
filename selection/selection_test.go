package selection

import (
	"testing"

	"github.com/Carmen-Shannon/bikeview/common"
	"github.com/Carmen-Shannon/bikeview/engine/renderer/material"
	"github.com/Carmen-Shannon/bikeview/engine/scene"
	"github.com/Carmen-Shannon/bikeview/parts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	catalog *parts.Catalog
	table   *parts.StateTable
	root    *scene.Node
	machine Machine
	changes []Snapshot
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{catalog: parts.DefaultCatalog()}
	f.table = parts.NewStateTable(f.catalog)

	mesh := func(name string) *scene.Node {
		return scene.NewMesh(name, material.NewMaterial(), scene.Bounds{})
	}
	f.root = scene.NewGroup("Scene", scene.NewGroup("bike",
		mesh("frame"),
		scene.NewGroup("chain", mesh("chain_0")),
		mesh("bolt"),
	))
	parts.Bind(f.root, f.catalog, f.table, parts.Environment{Baseline: parts.DefaultBaseline})

	f.machine = NewMachine(f.catalog, f.table,
		WithModel(f.root),
		WithOnChange(func(s Snapshot) { f.changes = append(f.changes, s) }),
	)
	return f
}

func (f *fixture) color(name string) common.Color {
	return f.root.Find(name).Material().Color()
}

func TestInitialState(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, Idle, f.machine.Phase())
	assert.False(t, f.machine.PanelOpen())
	assert.True(t, f.machine.LabelsVisible())
	assert.Equal(t, ModeRepair, f.machine.Mode())
	assert.Equal(t, Info{}, f.machine.Info())
	assert.Nil(t, f.machine.Viewed())
}

func TestSelectSameLabelTwiceReturnsToIdle(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.machine.SelectLabel("Frame"))
	assert.Equal(t, Viewing, f.machine.Phase())
	assert.True(t, f.machine.PanelOpen())
	assert.Equal(t, "Frame", f.machine.Info().Name)
	assert.Equal(t, parts.DefaultHighlight, f.color("frame"))

	require.NoError(t, f.machine.SelectLabel("Frame"))
	assert.Equal(t, Idle, f.machine.Phase())
	assert.False(t, f.machine.PanelOpen())
	assert.Equal(t, parts.DefaultBaseline, f.color("frame"))
	require.Len(t, f.changes, 2)
	assert.Equal(t, "Frame", f.changes[0].Part)
	assert.Equal(t, Idle, f.changes[1].Phase)
}

func TestSelectOtherLabelSwitchesPart(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.machine.SelectLabel("Frame"))
	require.NoError(t, f.machine.SelectLabel("Chain"))

	assert.Equal(t, Viewing, f.machine.Phase())
	assert.Equal(t, "Chain", f.machine.Viewed().Name)
	assert.Equal(t, parts.DefaultHighlight, f.color("chain_0"))
	assert.Equal(t, parts.DefaultBaseline, f.color("frame"))
	assert.Equal(t, parts.DefaultBaseline, f.color("bolt"))
}

func TestCloseInfoPanel(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.machine.SelectLabel("Chain"))

	f.machine.CloseInfoPanel()
	assert.Equal(t, Idle, f.machine.Phase())
	assert.Equal(t, common.Hex(0xaaaaaa), f.color("chain_0"))

	f.machine.CloseInfoPanel()
	assert.Equal(t, Idle, f.machine.Phase())
}

func TestIdleShowsEveryLabel(t *testing.T) {
	f := newFixture(t)
	f.table.Update("Frame", func(s *parts.PartState) { s.Display = false })
	assert.False(t, f.machine.LabelsVisible())

	require.NoError(t, f.machine.SelectLabel("Chain"))
	assert.False(t, f.machine.LabelsVisible(), "viewing shows nothing new")

	f.machine.CloseInfoPanel()
	assert.True(t, f.machine.LabelsVisible())
	for _, e := range f.table.Snapshot() {
		assert.True(t, e.State.Display, e.ID)
	}
}

func TestUnknownPart(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.machine.SelectLabel("Bell"), ErrUnknownPart)
	assert.Equal(t, Idle, f.machine.Phase())
	assert.Empty(t, f.changes)
}

func TestServiceModePersistsAcrossSelections(t *testing.T) {
	f := newFixture(t)
	f.machine.SelectUpgrade()
	require.NoError(t, f.machine.SelectLabel("Frame"))
	require.NoError(t, f.machine.SelectLabel("Chain"))
	f.machine.CloseInfoPanel()
	assert.Equal(t, ModeUpgrade, f.machine.Mode())

	f.machine.SelectRepair()
	assert.Equal(t, ModeRepair, f.machine.Snapshot().Mode)
	assert.Equal(t, "repair", ModeRepair.String())
	assert.Equal(t, "upgrade", ModeUpgrade.String())
}

func TestWithoutModelStillTransitions(t *testing.T) {
	c := parts.DefaultCatalog()
	m := NewMachine(c, parts.NewStateTable(c))
	require.NoError(t, m.SelectLabel("Saddle"))
	assert.Equal(t, "The saddle is the cushion of the bike that you sit on.", m.Info().Description)
}
