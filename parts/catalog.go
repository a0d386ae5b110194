package parts

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/bikeview/common"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrEmptyCatalog is returned when a catalog declares no parts.
	ErrEmptyCatalog = errors.New("catalog declares no parts")
	// ErrDuplicatePart is returned when two parts share a name.
	ErrDuplicatePart = errors.New("duplicate part name")
	// ErrInvalidColor is returned when a highlight color cannot be parsed.
	ErrInvalidColor = common.ErrInvalidColor
	// ErrInvalidPart is returned when a part has no name or nothing to match on.
	ErrInvalidPart = errors.New("invalid part")
)

// DefaultBaseline is the color of every node that has no catalog color of its own.
var DefaultBaseline = common.Hex(0x222222)

// DefaultHighlight is the color of the nodes of the part being viewed.
var DefaultHighlight = common.Hex(0xff0000)

// PartSpec declares one logical part of the model and how to find its mesh nodes.
// The name doubles as the part ID.
type PartSpec struct {
	Name             string
	PrimaryMatchName string
	SubstringMatch   string
	HighlightColor   *common.Color
	Offset           mgl32.Vec3
	Description      string
	IsMatte          bool
}

// ID returns the key the part is tracked under.
func (p *PartSpec) ID() string {
	return p.Name
}

// Color returns the catalog color of the part, or baseline when it declares none.
// A nil part yields baseline too, which is the color of unmatched nodes.
//
// Parameters:
//   - baseline: the fallback color
//
// Returns:
//   - common.Color: the color nodes of this part rest at
func (p *PartSpec) Color(baseline common.Color) common.Color {
	if p == nil || p.HighlightColor == nil {
		return baseline
	}
	return *p.HighlightColor
}

// Catalog is an ordered, immutable list of parts. Declaration order decides matching ties.
type Catalog struct {
	parts []PartSpec
	index map[string]int
}

// NewCatalog validates the parts and builds a Catalog from them.
//
// Parameters:
//   - specs: the parts in declaration order
//
// Returns:
//   - *Catalog: the catalog
//   - error: ErrEmptyCatalog, ErrDuplicatePart or ErrInvalidPart
func NewCatalog(specs ...PartSpec) (*Catalog, error) {
	if len(specs) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		parts: make([]PartSpec, len(specs)),
		index: make(map[string]int, len(specs)),
	}
	for i, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("%w: part %d has no name", ErrInvalidPart, i)
		}
		if spec.PrimaryMatchName == "" && spec.SubstringMatch == "" {
			return nil, fmt.Errorf("%w: %q has neither an object name nor a substring", ErrInvalidPart, spec.Name)
		}
		if _, ok := c.index[spec.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePart, spec.Name)
		}
		if spec.HighlightColor != nil {
			col := *spec.HighlightColor
			spec.HighlightColor = &col
		}
		c.parts[i] = spec
		c.index[spec.Name] = i
	}
	return c, nil
}

// Len returns the number of parts.
func (c *Catalog) Len() int {
	return len(c.parts)
}

// Parts returns the parts in declaration order.
// The pointers stay valid for the lifetime of the catalog and must not be modified.
func (c *Catalog) Parts() []*PartSpec {
	out := make([]*PartSpec, len(c.parts))
	for i := range c.parts {
		out[i] = &c.parts[i]
	}
	return out
}

// Get returns the part with the given ID, or nil.
func (c *Catalog) Get(id string) *PartSpec {
	i, ok := c.index[id]
	if !ok {
		return nil
	}
	return &c.parts[i]
}

// IDs returns every part ID in declaration order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.parts))
	for i := range c.parts {
		out[i] = c.parts[i].Name
	}
	return out
}
