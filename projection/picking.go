package projection

import (
	"github.com/Carmen-Shannon/bikeview/parts"
)

// DefaultPickRadius is how close in pixels a click must land to a label anchor.
const DefaultPickRadius = 24

// Pick returns the displayed, projected label closest to (x, y) within radius.
//
// Parameters:
//   - table: the label state table
//   - x: click x in pixels
//   - y: click y in pixels
//   - radius: maximum distance in pixels
//
// Returns:
//   - string: the part ID
//   - bool: false when no label is in reach
func Pick(table *parts.StateTable, x, y, radius float32) (string, bool) {
	bestID := ""
	bestSq := radius * radius
	found := false
	table.Each(func(id string, s *parts.PartState) {
		if !s.Projected || !s.Display {
			return
		}
		dx, dy := s.ScreenX-x, s.ScreenY-y
		if d := dx*dx + dy*dy; d <= bestSq {
			bestID, bestSq, found = id, d, true
		}
	})
	return bestID, found
}
