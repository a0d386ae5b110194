package parts

import (
	"strings"

	"github.com/Carmen-Shannon/bikeview/engine/scene"
)

// Match finds the first part in declaration order that claims a node.
// A part claims a node when its object name equals the node name, its substring occurs in the
// lowercased node name, its object name equals the parent name, or its substring occurs in the
// lowercased parent name. Exact comparisons are case-sensitive.
//
// Parameters:
//   - name: the node name
//   - parentName: the parent node name, empty for a root
//   - catalog: the catalog to search
//
// Returns:
//   - *PartSpec: the matching part, or nil
func Match(name, parentName string, catalog *Catalog) *PartSpec {
	if catalog == nil {
		return nil
	}
	lowerName := strings.ToLower(name)
	lowerParent := strings.ToLower(parentName)

	for i := range catalog.parts {
		p := &catalog.parts[i]
		if p.matches(name, lowerName, parentName, lowerParent) {
			return p
		}
	}
	return nil
}

// MatchNode matches a node by its own name and its parent's name.
// Nodes without a material are not eligible and never match.
//
// Parameters:
//   - n: the node
//   - catalog: the catalog to search
//
// Returns:
//   - *PartSpec: the matching part, or nil
func MatchNode(n *scene.Node, catalog *Catalog) *PartSpec {
	if n == nil || !n.HasMaterial() {
		return nil
	}
	return Match(n.Name(), n.ParentName(), catalog)
}

// Claims reports whether this part alone would match a node, regardless of declaration order.
//
// Parameters:
//   - name: the node name
//   - parentName: the parent node name
//
// Returns:
//   - bool: true if any of the four match rules applies
func (p *PartSpec) Claims(name, parentName string) bool {
	return p.matches(name, strings.ToLower(name), parentName, strings.ToLower(parentName))
}

func (p *PartSpec) matches(name, lowerName, parentName, lowerParent string) bool {
	sub := strings.ToLower(p.SubstringMatch)

	if p.PrimaryMatchName != "" && name == p.PrimaryMatchName {
		return true
	}
	if sub != "" && strings.Contains(lowerName, sub) {
		return true
	}
	if p.PrimaryMatchName != "" && parentName == p.PrimaryMatchName {
		return true
	}
	return sub != "" && strings.Contains(lowerParent, sub)
}
