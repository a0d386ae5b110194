package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestTextureDecodeEmbedded(t *testing.T) {
	tex := &Texture{Data: encodePNG(t, 2, 3, color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff})}

	pix, w, h, err := tex.Decode()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), w)
	assert.Equal(t, uint32(3), h)
	assert.Len(t, pix, 2*3*4)
	assert.Equal(t, []byte{0x33, 0x33, 0x33, 0xff}, pix[:4])
	assert.Equal(t, 2, tex.Width)
}

func TestTextureDecodeEmpty(t *testing.T) {
	_, _, _, err := (&Texture{}).Decode()
	assert.ErrorIs(t, err, ErrEmptyTexture)
}

func TestCubeTextureSizeMismatch(t *testing.T) {
	cube := &CubeTexture{}
	for i := range cube.Faces {
		size := 2
		if i == int(CubeNegZ) {
			size = 4
		}
		cube.Faces[i] = &Texture{Data: encodePNG(t, size, size, color.White)}
	}

	_, _, _, err := cube.Decode()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nz")
}

func TestCubeTextureDecode(t *testing.T) {
	cube := &CubeTexture{Mapping: CubeRefraction}
	for i := range cube.Faces {
		cube.Faces[i] = &Texture{Data: encodePNG(t, 1, 1, color.Black)}
	}

	faces, w, h, err := cube.Decode()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), w)
	assert.Equal(t, uint32(1), h)
	for _, f := range faces {
		assert.Len(t, f, 4)
	}
	assert.Equal(t, "refraction", cube.Mapping.String())
}
