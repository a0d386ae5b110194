package parts

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Carmen-Shannon/bikeview/common"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

// yamlCatalog is the on-disk layout of a catalog file.
type yamlCatalog struct {
	Parts []yamlPart `yaml:"parts"`
}

type yamlPart struct {
	Name        string      `yaml:"name"`
	ObjectName  string      `yaml:"object_name,omitempty"`
	ObjectFind  string      `yaml:"object_find,omitempty"`
	Color       string      `yaml:"color,omitempty"`
	Offset      *yamlOffset `yaml:"offset,omitempty"`
	Description string      `yaml:"description,omitempty"`
	Matte       bool        `yaml:"matte,omitempty"`
}

type yamlOffset struct {
	X float32 `yaml:"x,omitempty"`
	Y float32 `yaml:"y,omitempty"`
	Z float32 `yaml:"z,omitempty"`
}

// DefaultCatalog returns the built-in bicycle catalog.
// It panics if the embedded file is invalid, which the package tests rule out.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(bytes.NewReader(defaultCatalogYAML))
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// LoadCatalog reads a YAML catalog file.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - *Catalog: the parsed catalog
//   - error: error if the file cannot be read or is invalid
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	c, err := ParseCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog decodes a YAML catalog. Unknown keys are rejected.
//
// Parameters:
//   - r: the YAML source
//
// Returns:
//   - *Catalog: the parsed catalog
//   - error: a decode error, ErrInvalidColor, or any NewCatalog validation error
func ParseCatalog(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc yamlCatalog
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyCatalog
		}
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	specs := make([]PartSpec, 0, len(doc.Parts))
	for _, p := range doc.Parts {
		spec := PartSpec{
			Name:             p.Name,
			PrimaryMatchName: p.ObjectName,
			SubstringMatch:   p.ObjectFind,
			Description:      p.Description,
			IsMatte:          p.Matte,
		}
		if p.Color != "" {
			col, err := common.ParseColor(p.Color)
			if err != nil {
				return nil, fmt.Errorf("part %q: %w", p.Name, err)
			}
			spec.HighlightColor = &col
		}
		if p.Offset != nil {
			spec.Offset = mgl32.Vec3{p.Offset.X, p.Offset.Y, p.Offset.Z}
		}
		specs = append(specs, spec)
	}
	return NewCatalog(specs...)
}

// WriteYAML encodes the catalog in the same layout ParseCatalog reads.
//
// Parameters:
//   - w: the destination
//
// Returns:
//   - error: error if encoding fails
func (c *Catalog) WriteYAML(w io.Writer) error {
	doc := yamlCatalog{Parts: make([]yamlPart, 0, len(c.parts))}
	for _, p := range c.parts {
		yp := yamlPart{
			Name:        p.Name,
			ObjectName:  p.PrimaryMatchName,
			ObjectFind:  p.SubstringMatch,
			Description: p.Description,
			Matte:       p.IsMatte,
		}
		if p.HighlightColor != nil {
			yp.Color = p.HighlightColor.String()
		}
		if p.Offset != (mgl32.Vec3{}) {
			yp.Offset = &yamlOffset{X: p.Offset[0], Y: p.Offset[1], Z: p.Offset[2]}
		}
		doc.Parts = append(doc.Parts, yp)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	return enc.Close()
}
