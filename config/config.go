// Package config holds the viewer settings. Every field defaults to the value the viewer
// was designed around; a TOML file only needs the keys it changes.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/Carmen-Shannon/bikeview/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig is returned by Validate and Load when a setting is out of range.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the full viewer configuration.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Assets   AssetsConfig   `toml:"assets"`
	Camera   CameraConfig   `toml:"camera"`
	Intro    IntroConfig    `toml:"intro"`
	Controls ControlsConfig `toml:"controls"`
	Overlay  OverlayConfig  `toml:"overlay"`
	Colors   ColorsConfig   `toml:"colors"`
}

type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	VSync  bool   `toml:"vsync"`
}

type AssetsConfig struct {
	Model        string `toml:"model"`
	FloorTexture string `toml:"floor_texture"`
	EnvMapDir    string `toml:"env_map_dir"`
	EnvMapExt    string `toml:"env_map_ext"`
	// Catalog is a YAML part catalog. Empty selects the built-in one.
	Catalog string `toml:"catalog"`
}

type CameraConfig struct {
	// Fov is the vertical field of view in degrees.
	Fov    float32    `toml:"fov"`
	Near   float32    `toml:"near"`
	Far    float32    `toml:"far"`
	Start  [3]float32 `toml:"start"`
	Rest   [3]float32 `toml:"rest"`
	LookAt [3]float32 `toml:"look_at"`
}

type IntroConfig struct {
	DelayMS    int `toml:"delay_ms"`
	DurationMS int `toml:"duration_ms"`
}

type ControlsConfig struct {
	MaxDistance   float32 `toml:"max_distance"`
	MaxPolarAngle float32 `toml:"max_polar_angle"`
	Damping       bool    `toml:"damping"`
}

type OverlayConfig struct {
	// Addr is the listen address of the label overlay. Empty disables it.
	Addr      string  `toml:"addr"`
	PublishHz float64 `toml:"publish_hz"`
}

type ColorsConfig struct {
	Baseline  common.Color `toml:"baseline"`
	Highlight common.Color `toml:"highlight"`
	Clear     common.Color `toml:"clear"`
}

// Default returns the configuration the viewer ships with.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:  "bikeview",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Assets: AssetsConfig{
			Model:        "models/B.glb",
			FloorTexture: "assets/images/floor.jpg",
			EnvMapDir:    "assets/images/envMap",
			EnvMapExt:    ".jpg",
		},
		Camera: CameraConfig{
			Fov:    45,
			Near:   0.1,
			Far:    1000,
			Start:  [3]float32{1, 1.5, 0},
			Rest:   [3]float32{1, 0.7, -1},
			LookAt: [3]float32{0, 0.5, -0.3},
		},
		Intro: IntroConfig{
			DelayMS:    1000,
			DurationMS: 2000,
		},
		Controls: ControlsConfig{
			MaxDistance:   2,
			MaxPolarAngle: math.Pi/2 - 0.1,
			Damping:       true,
		},
		Overlay: OverlayConfig{
			Addr:      "127.0.0.1:8089",
			PublishHz: 30,
		},
		Colors: ColorsConfig{
			Baseline:  common.Hex(0x222222),
			Highlight: common.Hex(0xff0000),
			Clear:     common.Hex(0x000000),
		},
	}
}

// Load reads a TOML file over Default and validates the result.
//
// Parameters:
//   - path: the config file
//
// Returns:
//   - Config: the merged configuration
//   - error: a read, decode or validation error
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads TOML over Default and validates the result. Unknown keys are rejected.
//
// Parameters:
//   - r: the TOML source
//
// Returns:
//   - Config: the merged configuration
//   - error: a decode or validation error
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Write encodes the configuration as TOML.
func (c Config) Write(w io.Writer) error {
	enc := toml.NewEncoder(w)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Validate rejects sizes, durations and camera settings the viewer cannot run with.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	check(c.Window.Width > 0 && c.Window.Height > 0, "window size %dx%d", c.Window.Width, c.Window.Height)
	check(c.Camera.Fov > 0 && c.Camera.Fov < 180, "camera fov %v", c.Camera.Fov)
	check(c.Camera.Near > 0 && c.Camera.Far > c.Camera.Near, "camera near %v far %v", c.Camera.Near, c.Camera.Far)
	check(c.Intro.DelayMS >= 0, "intro delay_ms %d", c.Intro.DelayMS)
	check(c.Intro.DurationMS > 0, "intro duration_ms %d", c.Intro.DurationMS)
	check(c.Controls.MaxDistance > 0, "controls max_distance %v", c.Controls.MaxDistance)
	check(c.Controls.MaxPolarAngle > 0 && c.Controls.MaxPolarAngle <= math.Pi, "controls max_polar_angle %v", c.Controls.MaxPolarAngle)
	check(c.Overlay.PublishHz > 0, "overlay publish_hz %v", c.Overlay.PublishHz)
	check(c.Assets.Model != "", "assets model is empty")

	return errors.Join(errs...)
}

// FovRadians returns the vertical field of view in radians.
func (c CameraConfig) FovRadians() float32 {
	return mgl32.DegToRad(c.Fov)
}

// StartPosition returns Start as a vector.
func (c CameraConfig) StartPosition() mgl32.Vec3 { return mgl32.Vec3(c.Start) }

// RestPosition returns Rest as a vector.
func (c CameraConfig) RestPosition() mgl32.Vec3 { return mgl32.Vec3(c.Rest) }

// Target returns LookAt as a vector.
func (c CameraConfig) Target() mgl32.Vec3 { return mgl32.Vec3(c.LookAt) }

// Delay returns the intro delay.
func (c IntroConfig) Delay() time.Duration {
	return time.Duration(c.DelayMS) * time.Millisecond
}

// Duration returns the intro length.
func (c IntroConfig) Duration() time.Duration {
	return time.Duration(c.DurationMS) * time.Millisecond
}

// PublishInterval returns the time between overlay snapshots.
func (c OverlayConfig) PublishInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.PublishHz)
}
