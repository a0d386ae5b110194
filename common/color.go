package common

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidColor is returned when a hex color string cannot be parsed.
var ErrInvalidColor = errors.New("invalid hex color")

// Color is a linear RGB color with components in [0, 1].
// It marshals to and from "#rrggbb" text so it can be used directly in YAML and TOML documents.
type Color struct {
	R, G, B float32
}

// Hex builds a Color from a packed 0xRRGGBB value.
// Bits above the low 24 are discarded, so 0x080808080808 yields the same color as 0x080808.
//
// Parameters:
//   - hex: the packed color value
//
// Returns:
//   - Color: the decoded color
func Hex(hex uint64) Color {
	v := uint32(hex)
	return Color{
		R: float32((v>>16)&0xff) / 255,
		G: float32((v>>8)&0xff) / 255,
		B: float32(v&0xff) / 255,
	}
}

// ParseColor parses "#rrggbb", "rrggbb" or "0xrrggbb".
//
// Parameters:
//   - s: the color string
//
// Returns:
//   - Color: the parsed color
//   - error: ErrInvalidColor wrapped with the offending input
func ParseColor(s string) (Color, error) {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimPrefix(trimmed, "#")
	trimmed = strings.TrimPrefix(strings.TrimPrefix(trimmed, "0x"), "0X")
	if len(trimmed) != 6 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(trimmed, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return Hex(v), nil
}

// Uint32 packs the color back into 0xRRGGBB form.
func (c Color) Uint32() uint32 {
	return uint32(channel(c.R))<<16 | uint32(channel(c.G))<<8 | uint32(channel(c.B))
}

// String formats the color as "#rrggbb".
func (c Color) String() string {
	return fmt.Sprintf("#%06x", c.Uint32())
}

// RGBA returns the color as an RGBA array with the given alpha.
func (c Color) RGBA(alpha float32) [4]float32 {
	return [4]float32{c.R, c.G, c.B, alpha}
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func channel(v float32) uint8 {
	v = Clamp(v, 0, 1)
	return uint8(v*255 + 0.5)
}
