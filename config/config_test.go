package config

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/bikeview/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, mgl32.Vec3{1, 1.5, 0}, cfg.Camera.StartPosition())
	assert.Equal(t, mgl32.Vec3{1, 0.7, -1}, cfg.Camera.RestPosition())
	assert.Equal(t, mgl32.Vec3{0, 0.5, -0.3}, cfg.Camera.Target())
	assert.InDelta(t, math.Pi/4, cfg.Camera.FovRadians(), 1e-6)
	assert.Equal(t, time.Second, cfg.Intro.Delay())
	assert.Equal(t, 2*time.Second, cfg.Intro.Duration())
	assert.InDelta(t, math.Pi/2-0.1, cfg.Controls.MaxPolarAngle, 1e-6)
	assert.Equal(t, common.Hex(0x222222), cfg.Colors.Baseline)
}

func TestDecodeOverlaysDefaults(t *testing.T) {
	src := `
[window]
width = 1600

[camera]
rest = [2.0, 1.0, -2.0]

[colors]
highlight = "#00ff00"
`
	cfg, err := Decode(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 1600, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height, "unset keys keep their default")
	assert.Equal(t, [3]float32{2, 1, -2}, cfg.Camera.Rest)
	assert.Equal(t, common.Hex(0x00ff00), cfg.Colors.Highlight)
	assert.Equal(t, common.Hex(0x222222), cfg.Colors.Baseline)
}

func TestDecodeRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":   "[window]\ncolour = 1\n",
		"bad color":     "[colors]\nbaseline = \"#12\"\n",
		"zero duration": "[intro]\nduration_ms = 0\n",
		"negative size": "[window]\nheight = -1\n",
		"near past far": "[camera]\nnear = 10.0\nfar = 1.0\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(src))
			assert.Error(t, err)
		})
	}
}

func TestValidateWrapsSentinel(t *testing.T) {
	cfg := Default()
	cfg.Camera.Fov = 0
	cfg.Overlay.PublishHz = 0

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "fov")
	assert.Contains(t, err.Error(), "publish_hz")
}

func TestLoadAndWrite(t *testing.T) {
	cfg := Default()
	cfg.Intro.DelayMS = 250
	cfg.Assets.Catalog = "parts.yaml"

	var buf bytes.Buffer
	require.NoError(t, cfg.Write(&buf))

	path := filepath.Join(t.TempDir(), "bikeview.toml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, loaded.Intro.Delay())
	assert.Equal(t, "parts.yaml", loaded.Assets.Catalog)
	assert.Equal(t, cfg.Colors, loaded.Colors)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestPublishInterval(t *testing.T) {
	assert.Equal(t, 50*time.Millisecond, OverlayConfig{PublishHz: 20}.PublishInterval())
}
