package viewer

import (
	"github.com/Carmen-Shannon/bikeview/engine/camera"
	"github.com/Carmen-Shannon/bikeview/engine/scene"
	"github.com/Carmen-Shannon/bikeview/parts"
	"github.com/Carmen-Shannon/bikeview/projection"
)

// ProjectOnce binds a model and computes every label as it would appear after the intro,
// from the camera's current pose on a width x height viewport.
//
// Parameters:
//   - root: the model root
//   - catalog: the part catalog
//   - env: binding environment
//   - cam: the camera, already positioned
//   - width: viewport width in pixels
//   - height: viewport height in pixels
//
// Returns:
//   - []Label: one label per catalog part
//   - parts.Report: the binding report
func ProjectOnce(root *scene.Node, catalog *parts.Catalog, env parts.Environment, cam camera.Camera, width, height int) ([]Label, parts.Report) {
	table := parts.NewStateTable(catalog)
	report := parts.Bind(root, catalog, table, env)

	if width > 0 && height > 0 {
		cam.SetAspect(float32(width) / float32(height))
	}
	s := scene.NewScene(scene.WithNodes(root))
	projection.NewProjector(catalog, table, nil).Project(s, cam, width, height)
	projection.ResolveCrowding(table)
	return buildLabels(catalog, table, ""), report
}
