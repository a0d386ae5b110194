package tween

import (
	"sync"
	"time"
)

// Group pumps a set of tweens from a single clock.
// Finished and cancelled tweens are dropped on the next Update.
type Group struct {
	mu     sync.Mutex
	tweens []Tween
}

// NewGroup creates an empty Group.
func NewGroup() *Group {
	return &Group{}
}

// Add registers a tween with the group.
func (g *Group) Add(t Tween) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tweens = append(g.tweens, t)
}

// Update advances every tween to now.
//
// Parameters:
//   - now: the current time
//
// Returns:
//   - int: the number of tweens still pending after this update
func (g *Group) Update(now time.Time) int {
	g.mu.Lock()
	pending := make([]Tween, len(g.tweens))
	copy(pending, g.tweens)
	g.mu.Unlock()

	// Updated outside the lock, a completion callback may Add a follow-up tween.
	alive := make(map[Tween]bool, len(pending))
	for _, t := range pending {
		t.Update(now)
		alive[t] = t.Pending()
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	kept := g.tweens[:0]
	for i, t := range g.tweens {
		if i >= len(pending) || alive[t] {
			kept = append(kept, t)
		}
	}
	g.tweens = kept
	return len(g.tweens)
}

// Len returns the number of tweens in the group.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.tweens)
}

// Clear cancels and removes every tween.
func (g *Group) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, t := range g.tweens {
		t.Cancel()
	}
	g.tweens = nil
}
