package viewer

import (
	"math"

	"github.com/Carmen-Shannon/bikeview/common"
	"github.com/Carmen-Shannon/bikeview/engine/light"
	"github.com/Carmen-Shannon/bikeview/engine/renderer/material"
	"github.com/Carmen-Shannon/bikeview/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// Scene keys in the engine, drawn in ascending order.
const (
	MainSceneKey  = 0
	FloorSceneKey = 1
)

const (
	floorSize       = 100
	floorRepeat     = 50
	floorHeight     = -0.01
	fogNear         = 2
	fogFar          = 5
	keyIntensity    = 6
	pointIntensity  = 3
	pointLightY     = 3.5
	floorRoughness  = 0.5
	floorReflective = 0.9
)

// Scenes are the two scenes the viewer draws: the model with its key lights, then the floor
// with fog, a shadow-casting point light and an invisible copy of the model for shadows.
type Scenes struct {
	Main  scene.Scene
	Floor scene.Scene
}

// NewScenes creates both scenes with their lights. The model and floor are added once loaded.
//
// Returns:
//   - Scenes: the empty scenes
func NewScenes() Scenes {
	return Scenes{
		Main: scene.NewScene(
			scene.WithSceneName("main"),
			scene.WithLights(KeyLights()...),
		),
		Floor: scene.NewScene(
			scene.WithSceneName("floor"),
			scene.WithFog(scene.Fog{Color: common.Hex(0x000000), Near: fogNear, Far: fogFar}),
			scene.WithLights(FloorLight()),
		),
	}
}

// KeyLights returns the four directional lights of the main scene, all aimed at the origin.
func KeyLights() []light.Light {
	dir := func(col uint64, x, y, z float32) light.Light {
		return light.NewLight(light.LightTypeDirectional,
			light.WithPosition(x, y, z),
			light.WithTarget(0, 0, 0),
			light.WithColor(common.Hex(col)),
			light.WithIntensity(keyIntensity),
		)
	}
	return []light.Light{
		dir(0x555555, 1, 1, 0),  // left
		dir(0x555555, -1, 1, 0), // right
		dir(0x222222, 0, 1, 0),  // top
		dir(0x222222, 0, -1, 0), // bottom
	}
}

// FloorLight returns the point light above the model. It only lights the floor scene.
func FloorLight() light.Light {
	return light.NewLight(light.LightTypePoint,
		light.WithPosition(0, pointLightY, 0),
		light.WithColor(common.Hex(0x666666)),
		light.WithIntensity(pointIntensity),
		light.WithShadow(light.DefaultShadow()),
	)
}

// FloorPlane builds the textured floor just below the model, lying in the XZ plane.
//
// Parameters:
//   - tex: the floor texture, may be nil
//
// Returns:
//   - *scene.Node: the floor node
func FloorPlane(tex *common.Texture) *scene.Node {
	half := float32(floorSize) / 2
	opts := []material.MaterialBuilderOption{
		material.WithName("floor"),
		material.WithKind(material.KindPhysical),
		material.WithColor(common.Hex(0x333333)),
		material.WithEmissive(common.Hex(0x000000)),
		material.WithReflectivity(floorReflective),
		material.WithRoughness(floorRoughness),
	}
	if tex != nil {
		tex.WrapS, tex.WrapT = common.WrapRepeat, common.WrapRepeat
		tex.Repeat = [2]float32{floorRepeat, floorRepeat}
		opts = append(opts, material.WithMap(tex))
	}

	return scene.NewNode(
		scene.WithName("floor"),
		scene.WithMaterial(material.NewMaterial(opts...)),
		scene.WithBounds(scene.NewBounds(mgl32.Vec3{-half, -half, 0}, mgl32.Vec3{half, half, 0})),
		scene.WithPosition(0, floorHeight, 0),
		scene.WithEuler(-math.Pi/2, 0, 0),
		scene.WithShadows(false, true),
	)
}

// TransparentClone copies the model for the floor scene. Every materialed node gets an
// invisible basic material and both shadow flags, so the copy only shows up as shadows.
//
// Parameters:
//   - root: the model root
//
// Returns:
//   - *scene.Node: the copy
func TransparentClone(root *scene.Node) *scene.Node {
	clone := root.Clone()
	clone.Eligible(func(n *scene.Node) {
		n.SetMaterial(material.NewMaterial(
			material.WithName(n.Name()),
			material.WithKind(material.KindBasic),
			material.WithTransparent(0),
		))
		n.SetShadows(true, true)
	})
	return clone
}

// AddModel places the model in the main scene and its transparent copy and the floor in the
// floor scene.
//
// Parameters:
//   - root: the bound model root
//   - floorTexture: the floor texture, may be nil
func (s Scenes) AddModel(root *scene.Node, floorTexture *common.Texture) {
	s.Main.Add(root)
	s.Floor.Add(TransparentClone(root), FloorPlane(floorTexture))
}
