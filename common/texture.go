// package common contains plain data types and math helpers shared by the engine and the viewer packages.
package common

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmptyTexture is returned when a texture has neither embedded data nor a path.
var ErrEmptyTexture = errors.New("texture has neither data nor path")

// WrapMode selects how texture coordinates outside [0, 1] are resolved.
type WrapMode int

const (
	WrapClamp WrapMode = iota
	WrapRepeat
	WrapMirror
)

// Texture holds the source of an image used by a material plus its sampling parameters.
// For embedded textures (GLB) Data holds the encoded bytes, otherwise Path points at a file on disk.
type Texture struct {
	// Name is an identifier for this texture (e.g., "floor", "baseColor").
	Name string

	// Path is the file path for external textures (empty for embedded).
	Path string

	// Data contains encoded image bytes for embedded textures.
	Data []byte

	// MimeType indicates the image format (e.g., "image/png", "image/jpeg").
	MimeType string

	// WrapS and WrapT are the horizontal and vertical wrap modes.
	WrapS, WrapT WrapMode

	// Repeat is the number of times the texture tiles across the surface on each axis.
	Repeat [2]float32

	// Width and Height are populated after Decode.
	Width, Height int
}

// Decode decodes the texture to raw RGBA pixel data.
// PNG, JPEG, BMP, TIFF and WebP sources are supported.
//
// Returns:
//   - []byte: raw RGBA pixel data (4 bytes per pixel, row-major order)
//   - uint32: texture width in pixels
//   - uint32: texture height in pixels
//   - error: error if decoding fails
func (t *Texture) Decode() ([]byte, uint32, uint32, error) {
	if t == nil {
		return nil, 0, 0, fmt.Errorf("texture is nil")
	}

	var img image.Image
	var err error

	if len(t.Data) > 0 {
		img, _, err = image.Decode(bytes.NewReader(t.Data))
		if err != nil {
			return nil, 0, 0, fmt.Errorf("failed to decode embedded image: %w", err)
		}
	} else if t.Path != "" {
		file, fileErr := os.Open(t.Path)
		if fileErr != nil {
			return nil, 0, 0, fmt.Errorf("failed to open texture file %s: %w", t.Path, fileErr)
		}
		defer file.Close()

		img, _, err = image.Decode(file)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("failed to decode texture file %s: %w", t.Path, err)
		}
	} else {
		return nil, 0, 0, ErrEmptyTexture
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	t.Width = bounds.Dx()
	t.Height = bounds.Dy()

	return rgba.Pix, uint32(t.Width), uint32(t.Height), nil
}

// CubeFace names one face of a cube map in the +X, -X, +Y, -Y, +Z, -Z order.
type CubeFace int

const (
	CubePosX CubeFace = iota
	CubeNegX
	CubePosY
	CubeNegY
	CubePosZ
	CubeNegZ
)

// CubeFaceNames are the file stems of the six faces, in CubeFace order.
var CubeFaceNames = [6]string{"px", "nx", "py", "ny", "pz", "nz"}

// CubeMapping selects whether a cube texture is sampled by reflection or refraction.
type CubeMapping int

const (
	CubeReflection CubeMapping = iota
	CubeRefraction
)

func (m CubeMapping) String() string {
	if m == CubeRefraction {
		return "refraction"
	}
	return "reflection"
}

// CubeTexture is an environment map built from six face images.
type CubeTexture struct {
	Faces   [6]*Texture
	Mapping CubeMapping
}

// Decode decodes every face. All faces must share the same dimensions.
//
// Returns:
//   - [6][]byte: RGBA pixels per face
//   - uint32: face width
//   - uint32: face height
//   - error: error if any face fails to decode or sizes differ
func (c *CubeTexture) Decode() ([6][]byte, uint32, uint32, error) {
	var out [6][]byte
	var w, h uint32
	if c == nil {
		return out, 0, 0, fmt.Errorf("cube texture is nil")
	}
	for i, face := range c.Faces {
		pix, fw, fh, err := face.Decode()
		if err != nil {
			return out, 0, 0, fmt.Errorf("cube face %s: %w", CubeFaceNames[i], err)
		}
		if i == 0 {
			w, h = fw, fh
		} else if fw != w || fh != h {
			return out, 0, 0, fmt.Errorf("cube face %s is %dx%d, expected %dx%d", CubeFaceNames[i], fw, fh, w, h)
		}
		out[i] = pix
	}
	return out, w, h, nil
}
