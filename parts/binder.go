package parts

import (
	"github.com/Carmen-Shannon/bikeview/common"
	"github.com/Carmen-Shannon/bikeview/engine/renderer/material"
	"github.com/Carmen-Shannon/bikeview/engine/scene"
)

// Environment holds what the binder needs besides the catalog.
type Environment struct {
	// Reflection is the cube map applied to reflective part materials. May be nil.
	Reflection *common.CubeTexture
	// Baseline is the color of nodes without a catalog color.
	Baseline common.Color
}

// Report summarizes a Bind pass.
type Report struct {
	Eligible  int
	Matched   int
	Unmatched int
	// Nodes counts matched nodes per part ID. Parts that matched nothing are absent.
	Nodes map[string]int
}

// Unbound lists catalog parts that matched no node, in declaration order.
func (r Report) Unbound(catalog *Catalog) []string {
	var out []string
	for _, id := range catalog.IDs() {
		if r.Nodes[id] == 0 {
			out = append(out, id)
		}
	}
	return out
}

const (
	matteRoughness      = 0.7
	reflectiveEmissive  = 0xaaaaaa
	reflectiveIntensity = 0.92
)

// Bind assigns a material to every eligible node under root and marks matched parts as bound
// and displayed. Running it again on the same tree yields the same materials and state.
//
// Matte parts get a physical material with no environment map. Other matched parts get a
// reflective Lambert material using env.Reflection. Unmatched nodes get the reflective
// material at the baseline color without an environment map.
//
// Parameters:
//   - root: the model root
//   - catalog: the part catalog
//   - table: the state table to update, may be nil
//   - env: environment map and baseline color
//
// Returns:
//   - Report: match counts
func Bind(root *scene.Node, catalog *Catalog, table *StateTable, env Environment) Report {
	report := Report{Nodes: make(map[string]int)}
	if root == nil {
		return report
	}

	root.Eligible(func(n *scene.Node) {
		report.Eligible++
		part := Match(n.Name(), n.ParentName(), catalog)
		n.SetMaterial(materialFor(n.Name(), part, env))

		if part == nil {
			report.Unmatched++
			return
		}
		report.Matched++
		report.Nodes[part.ID()]++
		if table != nil {
			table.Update(part.ID(), func(s *PartState) {
				s.Bound = true
				s.Display = true
			})
		}
	})
	return report
}

func materialFor(name string, part *PartSpec, env Environment) material.Material {
	col := part.Color(env.Baseline)

	if part != nil && part.IsMatte {
		return material.NewMaterial(
			material.WithName(name),
			material.WithKind(material.KindPhysical),
			material.WithColor(col),
			material.WithMetalness(0),
			material.WithRoughness(matteRoughness),
		)
	}

	opts := []material.MaterialBuilderOption{
		material.WithName(name),
		material.WithKind(material.KindLambert),
		material.WithColor(col),
		material.WithEmissive(common.Hex(reflectiveEmissive)),
		material.WithReflectivity(reflectiveIntensity),
		material.WithCombine(material.CombineMultiply),
	}
	if part != nil {
		opts = append(opts, material.WithEnvMap(env.Reflection))
	}
	return material.NewMaterial(opts...)
}

// Recolor sets the color of every eligible node under root. Nodes claimed by highlighted get
// highlight, even when an earlier part wins the match for them. Every other node returns to
// the color of its own part or baseline.
//
// Parameters:
//   - root: the model root
//   - catalog: the part catalog
//   - highlighted: the part to highlight, or nil for none
//   - highlight: the highlight color
//   - baseline: the color of nodes without a catalog color
//
// Returns:
//   - int: the number of highlighted nodes
func Recolor(root *scene.Node, catalog *Catalog, highlighted *PartSpec, highlight, baseline common.Color) int {
	if root == nil {
		return 0
	}
	count := 0
	root.Eligible(func(n *scene.Node) {
		if highlighted != nil && highlighted.Claims(n.Name(), n.ParentName()) {
			n.Material().SetColor(highlight)
			count++
			return
		}
		n.Material().SetColor(Match(n.Name(), n.ParentName(), catalog).Color(baseline))
	})
	return count
}
