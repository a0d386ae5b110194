package parts

import (
	"sync"
)

// PartState is the per-frame presentation state of one part's label.
type PartState struct {
	// Display reports whether the label is shown.
	Display bool
	// Opacity is the label alpha. It is not clamped above 1.
	Opacity float32
	// ScreenX and ScreenY are the label anchor in pixels from the top-left corner.
	ScreenX, ScreenY float32
	// Projected is set when the anchor was computed in the current frame.
	Projected bool
	// NearestDistance is the pixel distance to the closest other projected label.
	NearestDistance float32
	// Bound is set once the part has matched at least one node.
	Bound bool
}

// StateEntry pairs a part ID with a copy of its state.
type StateEntry struct {
	ID    string
	State PartState
}

// StateTable holds the PartState of every catalog part, keyed by part ID.
// Entries are created for every part up front and are never removed.
type StateTable struct {
	mu     *sync.RWMutex
	order  []string
	states map[string]*PartState
}

// NewStateTable creates a table with one hidden, unbound entry per catalog part.
//
// Parameters:
//   - catalog: the catalog the table tracks
//
// Returns:
//   - *StateTable: the table
func NewStateTable(catalog *Catalog) *StateTable {
	t := &StateTable{
		mu:     &sync.RWMutex{},
		states: make(map[string]*PartState),
	}
	if catalog == nil {
		return t
	}
	for _, id := range catalog.IDs() {
		t.order = append(t.order, id)
		t.states[id] = &PartState{}
	}
	return t
}

// Get returns a copy of a part's state.
func (t *StateTable) Get(id string) (PartState, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.states[id]
	if !ok {
		return PartState{}, false
	}
	return *s, true
}

// Update applies fn to a part's state. Unknown IDs are ignored.
//
// Parameters:
//   - id: the part ID
//   - fn: the mutation
//
// Returns:
//   - bool: false if the ID is unknown
func (t *StateTable) Update(id string, fn func(*PartState)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.states[id]
	if !ok {
		return false
	}
	fn(s)
	return true
}

// Each applies fn to every state in catalog order.
func (t *StateTable) Each(fn func(id string, s *PartState)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range t.order {
		fn(id, t.states[id])
	}
}

// ClearProjected resets the this-frame flag on every part.
func (t *StateTable) ClearProjected() {
	t.Each(func(_ string, s *PartState) {
		s.Projected = false
	})
}

// ShowAll sets Display on every part.
func (t *StateTable) ShowAll() {
	t.Each(func(_ string, s *PartState) {
		s.Display = true
	})
}

// SetOpacity sets the same opacity on every part.
func (t *StateTable) SetOpacity(opacity float32) {
	t.Each(func(_ string, s *PartState) {
		s.Opacity = opacity
	})
}

// Snapshot copies every entry in catalog order.
func (t *StateTable) Snapshot() []StateEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]StateEntry, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, StateEntry{ID: id, State: *t.states[id]})
	}
	return out
}

// Len returns the number of entries.
func (t *StateTable) Len() int {
	return len(t.order)
}
