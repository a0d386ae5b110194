package parts

import (
	"github.com/Carmen-Shannon/bikeview/engine/scene"
)

// NodeMatch describes one node of a model and the part it binds to.
type NodeMatch struct {
	Depth    int
	Name     string
	Parent   string
	Kind     scene.NodeKind
	Eligible bool
	// Part is the matched part ID, empty for unmatched or ineligible nodes.
	Part string
}

// Inspect lists every node under root depth-first with its match result.
//
// Parameters:
//   - root: the model root
//   - catalog: the part catalog
//
// Returns:
//   - []NodeMatch: one entry per node, parents before children
func Inspect(root *scene.Node, catalog *Catalog) []NodeMatch {
	var out []NodeMatch
	var walk func(n *scene.Node, depth int)
	walk = func(n *scene.Node, depth int) {
		m := NodeMatch{
			Depth:    depth,
			Name:     n.Name(),
			Parent:   n.ParentName(),
			Kind:     n.Kind(),
			Eligible: n.HasMaterial(),
		}
		if p := MatchNode(n, catalog); p != nil {
			m.Part = p.ID()
		}
		out = append(out, m)
		for _, c := range n.Children() {
			walk(c, depth+1)
		}
	}
	if root != nil {
		walk(root, 0)
	}
	return out
}
