package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Carmen-Shannon/bikeview/common"
	"github.com/Carmen-Shannon/bikeview/engine/renderer/material"
	"github.com/Carmen-Shannon/bikeview/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// reservedNameChars are stripped from node names so that names stay usable as lookup keys.
	reservedNameChars = regexp.MustCompile(`[\[\]\.:/]`)
	whitespace        = regexp.MustCompile(`\s`)
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct{}

// gltfImporter turns a parsed glTF document into a scene node hierarchy.
//
// Naming follows the common web viewer conventions so that names authored in DCC tools survive:
// a node with a single-primitive mesh becomes one Mesh node carrying the node's name, a node whose
// mesh has several primitives becomes a Group of Mesh children named "<mesh>_<i>", and every
// other node becomes a Group. Names are sanitized and made unique.
type gltfImporter interface {
	// Import loads a glTF/GLB file and builds its node hierarchy.
	//
	// Parameters:
	//   - path: the file path to the glTF or GLB file
	//
	// Returns:
	//   - *scene.Node: a Group holding the default scene
	//   - error: error if import fails
	Import(path string) (*scene.Node, error)

	// ImportReader loads a glTF document from a reader and builds its node hierarchy.
	//
	// Parameters:
	//   - r: the reader providing glTF/GLB data
	//   - isGLB: true if the reader provides GLB binary data, false for glTF JSON
	//   - name: name for the root group when the document does not name its scene
	//
	// Returns:
	//   - *scene.Node: a Group holding the default scene
	//   - error: error if import fails
	ImportReader(r io.Reader, isGLB bool, name string) (*scene.Node, error)
}

var _ gltfImporter = &gltfImporterImpl{}

func newGLTFImporter() gltfImporter {
	return &gltfImporterImpl{}
}

func (imp *gltfImporterImpl) Import(path string) (*scene.Node, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return imp.build(parser, name)
}

func (imp *gltfImporterImpl) ImportReader(r io.Reader, isGLB bool, name string) (*scene.Node, error) {
	parser := newGLTFParser()
	if err := parser.ParseReader(r, isGLB, ""); err != nil {
		return nil, fmt.Errorf("failed to parse from reader: %w", err)
	}
	return imp.build(parser, name)
}

// gltfBuild holds the per-import state of one hierarchy construction.
type gltfBuild struct {
	parser    gltfParser
	doc       *gltfDocument
	materials map[int]material.Material
	textures  map[int]*common.Texture
	names     map[string]int
	visiting  map[int]bool
}

func (imp *gltfImporterImpl) build(parser gltfParser, fallbackName string) (*scene.Node, error) {
	doc := parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document after parsing")
	}

	b := &gltfBuild{
		parser:    parser,
		doc:       doc,
		materials: make(map[int]material.Material),
		textures:  make(map[int]*common.Texture),
		names:     make(map[string]int),
		visiting:  make(map[int]bool),
	}

	roots, sceneName := b.sceneRoots()
	root := scene.NewGroup(common.Coalesce(sceneName, fallbackName))
	for _, idx := range roots {
		n, err := b.node(idx)
		if err != nil {
			return nil, err
		}
		root.Add(n)
	}
	return root, nil
}

// sceneRoots returns the root node indices of the default scene. Documents without scenes
// fall back to every node that is nobody's child.
func (b *gltfBuild) sceneRoots() ([]int, string) {
	if len(b.doc.Scenes) > 0 {
		idx := 0
		if b.doc.Scene != nil && *b.doc.Scene >= 0 && *b.doc.Scene < len(b.doc.Scenes) {
			idx = *b.doc.Scene
		}
		return b.doc.Scenes[idx].Nodes, b.doc.Scenes[idx].Name
	}

	isChild := make(map[int]bool)
	for _, n := range b.doc.Nodes {
		for _, c := range n.Children {
			isChild[c] = true
		}
	}
	var roots []int
	for i := range b.doc.Nodes {
		if !isChild[i] {
			roots = append(roots, i)
		}
	}
	return roots, ""
}

func (b *gltfBuild) node(idx int) (*scene.Node, error) {
	if idx < 0 || idx >= len(b.doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", idx)
	}
	if b.visiting[idx] {
		return nil, fmt.Errorf("node %d is part of a cycle", idx)
	}
	b.visiting[idx] = true
	defer delete(b.visiting, idx)

	def := b.doc.Nodes[idx]
	name := b.uniqueName(def.Name)

	var n *scene.Node
	if def.Mesh != nil {
		var err error
		n, err = b.mesh(*def.Mesh, name)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", name, err)
		}
	} else {
		n = scene.NewGroup(name)
	}
	applyTransform(n, def)

	for _, c := range def.Children {
		child, err := b.node(c)
		if err != nil {
			return nil, err
		}
		n.Add(child)
	}
	return n, nil
}

func applyTransform(n *scene.Node, def gltfNode) {
	if def.Matrix != nil {
		n.SetMatrix(mgl32.Mat4(*def.Matrix))
		return
	}
	if t := def.Translation; t != nil {
		n.SetPosition(mgl32.Vec3{t[0], t[1], t[2]})
	}
	if r := def.Rotation; r != nil {
		n.SetRotation(mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}})
	}
	if s := def.Scale; s != nil {
		n.SetScale(mgl32.Vec3{s[0], s[1], s[2]})
	}
}

func (b *gltfBuild) mesh(meshIdx int, nodeName string) (*scene.Node, error) {
	if meshIdx < 0 || meshIdx >= len(b.doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", meshIdx)
	}
	def := b.doc.Meshes[meshIdx]

	leaves := make([]*scene.Node, 0, len(def.Primitives))
	for i, prim := range def.Primitives {
		bounds, err := b.primitiveBounds(prim)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: %w", meshIdx, i, err)
		}
		mat, err := b.material(prim.Material)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: %w", meshIdx, i, err)
		}
		leaves = append(leaves, scene.NewMesh("", mat, bounds))
	}

	if len(leaves) == 1 {
		leaves[0].SetName(nodeName)
		return leaves[0], nil
	}

	meshName := common.Coalesce(sanitizeName(def.Name), fmt.Sprintf("mesh_%d", meshIdx))
	for i, leaf := range leaves {
		leaf.SetName(fmt.Sprintf("%s_%d", meshName, i))
	}
	return scene.NewGroup(nodeName, leaves...), nil
}

// primitiveBounds uses the POSITION accessor's declared min/max, reading the vertices only
// when the exporter omitted them.
func (b *gltfBuild) primitiveBounds(prim gltfPrimitive) (scene.Bounds, error) {
	idx, ok := prim.Attributes[gltfAttributePosition]
	if !ok {
		return scene.Bounds{}, nil
	}
	if idx < 0 || idx >= len(b.doc.Accessors) {
		return scene.Bounds{}, fmt.Errorf("POSITION accessor %d out of range", idx)
	}

	acc := b.doc.Accessors[idx]
	if len(acc.Min) == 3 && len(acc.Max) == 3 {
		return scene.NewBounds(
			mgl32.Vec3{acc.Min[0], acc.Min[1], acc.Min[2]},
			mgl32.Vec3{acc.Max[0], acc.Max[1], acc.Max[2]},
		), nil
	}

	positions, err := b.parser.ReadVec3Accessor(idx)
	if err != nil {
		return scene.Bounds{}, err
	}
	var bounds scene.Bounds
	for _, p := range positions {
		bounds = bounds.ExpandByPoint(mgl32.Vec3(p))
	}
	return bounds, nil
}

// material converts a glTF material, sharing one instance per material index.
func (b *gltfBuild) material(idx *int) (material.Material, error) {
	if idx == nil {
		return material.NewMaterial(material.WithKind(material.KindPhysical)), nil
	}
	if m, ok := b.materials[*idx]; ok {
		return m, nil
	}
	if *idx < 0 || *idx >= len(b.doc.Materials) {
		return nil, fmt.Errorf("material index %d out of range", *idx)
	}

	def := b.doc.Materials[*idx]
	opts := []material.MaterialBuilderOption{
		material.WithName(def.Name),
		material.WithKind(material.KindPhysical),
		material.WithMetalness(1),
		material.WithRoughness(1),
	}
	if pbr := def.PbrMetallicRoughness; pbr != nil {
		if f := pbr.BaseColorFactor; f != nil {
			opts = append(opts, material.WithColor(common.Color{R: f[0], G: f[1], B: f[2]}))
			if def.AlphaMode == "BLEND" {
				opts = append(opts, material.WithTransparent(f[3]))
			}
		}
		if pbr.MetallicFactor != nil {
			opts = append(opts, material.WithMetalness(*pbr.MetallicFactor))
		}
		if pbr.RoughnessFactor != nil {
			opts = append(opts, material.WithRoughness(*pbr.RoughnessFactor))
		}
		if pbr.BaseColorTexture != nil {
			tex, err := b.texture(pbr.BaseColorTexture.Index)
			if err != nil {
				return nil, err
			}
			opts = append(opts, material.WithMap(tex))
		}
	}
	if e := def.EmissiveFactor; e != nil {
		opts = append(opts, material.WithEmissive(common.Color{R: e[0], G: e[1], B: e[2]}))
	}

	m := material.NewMaterial(opts...)
	b.materials[*idx] = m
	return m, nil
}

func (b *gltfBuild) texture(idx int) (*common.Texture, error) {
	if t, ok := b.textures[idx]; ok {
		return t, nil
	}
	if idx < 0 || idx >= len(b.doc.Textures) {
		return nil, fmt.Errorf("texture index %d out of range", idx)
	}
	def := b.doc.Textures[idx]
	if def.Source == nil {
		return nil, fmt.Errorf("texture %d has no image source", idx)
	}

	data, path, err := b.parser.ImageBytes(*def.Source)
	if err != nil {
		return nil, err
	}
	img := b.doc.Images[*def.Source]
	tex := &common.Texture{
		Name:     img.Name,
		Path:     path,
		Data:     data,
		MimeType: img.MimeType,
		WrapS:    common.WrapRepeat,
		WrapT:    common.WrapRepeat,
		Repeat:   [2]float32{1, 1},
	}
	if def.Sampler != nil && *def.Sampler >= 0 && *def.Sampler < len(b.doc.Samplers) {
		s := b.doc.Samplers[*def.Sampler]
		tex.WrapS = wrapMode(s.WrapS)
		tex.WrapT = wrapMode(s.WrapT)
	}
	b.textures[idx] = tex
	return tex, nil
}

func wrapMode(v *int) common.WrapMode {
	if v == nil {
		return common.WrapRepeat
	}
	switch *v {
	case gltfWrapClampToEdge:
		return common.WrapClamp
	case gltfWrapMirroredRepeat:
		return common.WrapMirror
	default:
		return common.WrapRepeat
	}
}

// sanitizeName replaces whitespace with underscores and strips characters reserved in property paths.
func sanitizeName(name string) string {
	return reservedNameChars.ReplaceAllString(whitespace.ReplaceAllString(name, "_"), "")
}

// uniqueName sanitizes a node name and suffixes repeats with "_<n>".
func (b *gltfBuild) uniqueName(raw string) string {
	if raw == "" {
		return ""
	}
	name := sanitizeName(raw)
	count, seen := b.names[name]
	b.names[name] = count + 1
	if !seen {
		return name
	}
	return fmt.Sprintf("%s_%d", name, count)
}
