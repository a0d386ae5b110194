package projection

import (
	"log/slog"

	"github.com/Carmen-Shannon/bikeview/common"
	"github.com/Carmen-Shannon/bikeview/engine/scene"
	"github.com/Carmen-Shannon/bikeview/parts"
	"github.com/go-gl/mathgl/mgl32"
)

// ViewProjector is the part of a camera the projector needs.
type ViewProjector interface {
	ViewProjectionMatrix() mgl32.Mat4
}

// Stats reports what one projection pass did.
type Stats struct {
	// Nodes is the number of matched nodes projected.
	Nodes int
	// Degenerate counts matched nodes skipped for empty or non-finite bounds.
	Degenerate int
	// Deferred is set when the viewport was empty and nothing was projected.
	Deferred bool
}

// projector is the implementation of the Projector interface.
type projector struct {
	catalog *parts.Catalog
	table   *parts.StateTable
	logger  *slog.Logger
}

// Projector computes the screen anchor of every part label each frame.
type Projector interface {
	// Project clears every part's this-frame flag, then projects the world bounding-box
	// center plus the part offset of every matched node under the first group of the scene.
	// Pixels are measured from the top-left corner of a width x height viewport.
	// When several nodes match one part the last one visited wins.
	//
	// Parameters:
	//   - s: the main scene
	//   - cam: the camera whose view-projection is used
	//   - width: viewport width in pixels
	//   - height: viewport height in pixels
	//
	// Returns:
	//   - Stats: counts for this pass
	Project(s scene.Scene, cam ViewProjector, width, height int) Stats
}

var _ Projector = &projector{}

// NewProjector creates a Projector that writes into table.
//
// Parameters:
//   - catalog: the part catalog nodes are matched against
//   - table: the label state table
//   - logger: receives debug output for skipped nodes, nil for slog.Default()
//
// Returns:
//   - Projector: the projector
func NewProjector(catalog *parts.Catalog, table *parts.StateTable, logger *slog.Logger) Projector {
	if logger == nil {
		logger = slog.Default()
	}
	return &projector{catalog: catalog, table: table, logger: logger}
}

func (p *projector) Project(s scene.Scene, cam ViewProjector, width, height int) Stats {
	var stats Stats
	p.table.ClearProjected()

	if width <= 0 || height <= 0 {
		stats.Deferred = true
		return stats
	}
	if s == nil || cam == nil {
		return stats
	}
	group := s.FirstGroup()
	if group == nil {
		return stats
	}

	vp := cam.ViewProjectionMatrix()
	halfW, halfH := float32(width)/2, float32(height)/2

	group.Eligible(func(n *scene.Node) {
		part := parts.Match(n.Name(), n.ParentName(), p.catalog)
		if part == nil {
			return
		}
		x, y, ok := Anchor(n, part.Offset, vp, halfW, halfH)
		if !ok {
			stats.Degenerate++
			p.logger.Debug("skipping degenerate node", slog.String("node", n.Name()), slog.String("part", part.ID()))
			return
		}
		stats.Nodes++
		p.table.Update(part.ID(), func(st *parts.PartState) {
			st.ScreenX, st.ScreenY = x, y
			st.Projected = true
		})
	})
	return stats
}

// Anchor projects the world center of a node's own bounding box plus offset to pixel coordinates.
// Child nodes do not move the anchor.
//
// Parameters:
//   - n: the node
//   - offset: world-space offset added to the center
//   - vp: the view-projection matrix
//   - halfW: half the viewport width
//   - halfH: half the viewport height
//
// Returns:
//   - float32: x in pixels from the left edge
//   - float32: y in pixels from the top edge
//   - bool: false when the bounds are empty or the projection is not finite
func Anchor(n *scene.Node, offset mgl32.Vec3, vp mgl32.Mat4, halfW, halfH float32) (float32, float32, bool) {
	center, ok := n.WorldOwnBoundsCenter()
	if !ok {
		return 0, 0, false
	}
	return ToScreen(center.Add(offset), vp, halfW, halfH)
}

// ToScreen projects a world point to pixel coordinates, y growing downward.
func ToScreen(p mgl32.Vec3, vp mgl32.Mat4, halfW, halfH float32) (float32, float32, bool) {
	if !common.Finite3(p) {
		return 0, 0, false
	}
	ndc, ok := common.ProjectToNDC(vp, p)
	if !ok {
		return 0, 0, false
	}
	return ndc[0]*halfW + halfW, -ndc[1]*halfH + halfH, true
}
