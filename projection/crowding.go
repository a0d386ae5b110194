package projection

import (
	"math"

	"github.com/Carmen-Shannon/bikeview/parts"
)

const (
	// crowdingScale is the pixel distance at which a label reaches full opacity.
	crowdingScale = 100
	// MinOpacity is the opacity of a label with a neighbour on top of it.
	MinOpacity = 0.1
)

// CrowdingOpacity maps a nearest-neighbour pixel distance to a label opacity.
// The result is not clamped above, so distant labels exceed 1.
func CrowdingOpacity(distance float32) float32 {
	return max(distance/crowdingScale, MinOpacity)
}

// ResolveCrowding sets NearestDistance and Opacity on every part projected this frame.
// Only parts projected this frame are compared; a part with no projected neighbour gets
// distance 0. Parts not projected this frame are left untouched.
//
// Parameters:
//   - table: the label state table after a projection pass
//
// Returns:
//   - int: the number of parts resolved
func ResolveCrowding(table *parts.StateTable) int {
	type anchor struct {
		id   string
		x, y float32
	}
	var anchors []anchor
	table.Each(func(id string, s *parts.PartState) {
		if s.Projected {
			anchors = append(anchors, anchor{id, s.ScreenX, s.ScreenY})
		}
	})

	nearest := make([]float32, len(anchors))
	for i, a := range anchors {
		best := float32(-1)
		for j, b := range anchors {
			if i == j {
				continue
			}
			d := float32(math.Hypot(float64(a.x-b.x), float64(a.y-b.y)))
			if best < 0 || d < best {
				best = d
			}
		}
		nearest[i] = max(best, 0)
	}

	for i, a := range anchors {
		d := nearest[i]
		table.Update(a.id, func(s *parts.PartState) {
			s.NearestDistance = d
			s.Opacity = CrowdingOpacity(d)
		})
	}
	return len(anchors)
}
