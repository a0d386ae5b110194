package selection

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/bikeview/common"
	"github.com/Carmen-Shannon/bikeview/engine/scene"
	"github.com/Carmen-Shannon/bikeview/parts"
)

// ErrUnknownPart is returned when a selection names a part the catalog does not declare.
var ErrUnknownPart = errors.New("unknown part")

// Phase is the state of the selection machine.
type Phase int

const (
	// Idle shows no info panel.
	Idle Phase = iota
	// Viewing shows the info panel of one part.
	Viewing
)

func (p Phase) String() string {
	if p == Viewing {
		return "viewing"
	}
	return "idle"
}

// ServiceMode is the Repair/Upgrade choice in the info panel. It survives selection changes.
type ServiceMode int

const (
	ModeRepair ServiceMode = iota
	ModeUpgrade
)

func (m ServiceMode) String() string {
	if m == ModeUpgrade {
		return "upgrade"
	}
	return "repair"
}

// Info is what the info panel shows for the viewed part.
type Info struct {
	Name        string
	Description string
}

// Snapshot is a copy of the machine's observable state.
type Snapshot struct {
	Phase         Phase
	Part          string
	PanelOpen     bool
	LabelsVisible bool
	Mode          ServiceMode
	Info          Info
}

// machine is the implementation of the Machine interface.
type machine struct {
	mu *sync.Mutex

	catalog *parts.Catalog
	table   *parts.StateTable
	root    *scene.Node
	logger  *slog.Logger

	highlight common.Color
	baseline  common.Color

	phase  Phase
	viewed *parts.PartSpec
	mode   ServiceMode

	onChange func(Snapshot)
}

// Machine tracks which part the user is viewing and keeps the model colors in step with it.
//
// Every transition recolors the model: nodes of the viewed part take the highlight color
// and every other node returns to its catalog color or baseline. Returning to Idle shows
// every label again; viewing a part hides none.
type Machine interface {
	// SelectLabel toggles a part: selecting the viewed part returns to Idle, any other part
	// is viewed instead.
	//
	// Parameters:
	//   - id: the part ID
	//
	// Returns:
	//   - error: ErrUnknownPart if the catalog does not declare id
	SelectLabel(id string) error

	// CloseInfoPanel returns to Idle from any state.
	CloseInfoPanel()

	// SelectRepair switches the service mode to Repair.
	SelectRepair()

	// SelectUpgrade switches the service mode to Upgrade.
	SelectUpgrade()

	// SetModel attaches the bound model that transitions recolor. Passing nil detaches it.
	//
	// Parameters:
	//   - root: the model root
	SetModel(root *scene.Node)

	// Phase returns the current phase.
	Phase() Phase

	// Viewed returns the viewed part, or nil while Idle.
	Viewed() *parts.PartSpec

	// PanelOpen reports whether the info panel is shown.
	PanelOpen() bool

	// LabelsVisible reports whether every bound part's label is displayed.
	LabelsVisible() bool

	// Mode returns the service mode.
	Mode() ServiceMode

	// Info returns the panel contents, empty while Idle.
	Info() Info

	// Snapshot returns a copy of the observable state.
	Snapshot() Snapshot
}

var _ Machine = &machine{}

// NewMachine creates an Idle machine in Repair mode.
//
// Parameters:
//   - catalog: the part catalog
//   - table: the label state table that Idle transitions show
//   - options: functional options
//
// Returns:
//   - Machine: the machine
func NewMachine(catalog *parts.Catalog, table *parts.StateTable, options ...MachineBuilderOption) Machine {
	m := &machine{
		mu:        &sync.Mutex{},
		catalog:   catalog,
		table:     table,
		logger:    slog.Default(),
		highlight: parts.DefaultHighlight,
		baseline:  parts.DefaultBaseline,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *machine) SelectLabel(id string) error {
	part := m.catalog.Get(id)
	if part == nil {
		return fmt.Errorf("%w: %q", ErrUnknownPart, id)
	}

	m.mu.Lock()
	if m.phase == Viewing && m.viewed == part {
		m.toIdleLocked()
	} else {
		m.phase = Viewing
		m.viewed = part
		m.recolorLocked()
	}
	snap, cb := m.snapshotLocked(), m.onChange
	m.mu.Unlock()

	m.logger.Debug("selection changed", slog.String("phase", snap.Phase.String()), slog.String("part", snap.Part))
	if cb != nil {
		cb(snap)
	}
	return nil
}

func (m *machine) CloseInfoPanel() {
	m.mu.Lock()
	m.toIdleLocked()
	snap, cb := m.snapshotLocked(), m.onChange
	m.mu.Unlock()

	m.logger.Debug("info panel closed")
	if cb != nil {
		cb(snap)
	}
}

func (m *machine) SelectRepair() {
	m.setMode(ModeRepair)
}

func (m *machine) SelectUpgrade() {
	m.setMode(ModeUpgrade)
}

func (m *machine) setMode(mode ServiceMode) {
	m.mu.Lock()
	changed := m.mode != mode
	m.mode = mode
	snap, cb := m.snapshotLocked(), m.onChange
	m.mu.Unlock()

	if changed && cb != nil {
		cb(snap)
	}
}

// toIdleLocked leaves the panel closed, shows every label and restores the resting colors.
func (m *machine) toIdleLocked() {
	m.phase = Idle
	m.viewed = nil
	if m.table != nil {
		m.table.ShowAll()
	}
	m.recolorLocked()
}

func (m *machine) recolorLocked() {
	if m.root == nil {
		return
	}
	parts.Recolor(m.root, m.catalog, m.viewed, m.highlight, m.baseline)
}

func (m *machine) SetModel(root *scene.Node) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.root = root
}

func (m *machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

func (m *machine) Viewed() *parts.PartSpec {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewed
}

func (m *machine) PanelOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase == Viewing
}

func (m *machine) LabelsVisible() bool {
	return m.labelsVisible()
}

func (m *machine) labelsVisible() bool {
	if m.table == nil {
		return false
	}
	visible := true
	m.table.Each(func(_ string, s *parts.PartState) {
		if s.Bound && !s.Display {
			visible = false
		}
	})
	return visible
}

func (m *machine) Mode() ServiceMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

func (m *machine) Info() Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.infoLocked()
}

func (m *machine) infoLocked() Info {
	if m.viewed == nil {
		return Info{}
	}
	return Info{Name: m.viewed.Name, Description: m.viewed.Description}
}

func (m *machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *machine) snapshotLocked() Snapshot {
	s := Snapshot{
		Phase:         m.phase,
		PanelOpen:     m.phase == Viewing,
		LabelsVisible: m.labelsVisible(),
		Mode:          m.mode,
		Info:          m.infoLocked(),
	}
	if m.viewed != nil {
		s.Part = m.viewed.ID()
	}
	return s
}
