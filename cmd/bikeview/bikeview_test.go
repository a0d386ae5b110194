package main

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/bikeview/config"
	"github.com/Carmen-Shannon/bikeview/parts"
	"github.com/Carmen-Shannon/bikeview/viewer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeModel writes a glTF with a frame at the default look-at point, a saddle above it and an
// untextured group.
func writeModel(t *testing.T) string {
	t.Helper()

	var buf bytes.Buffer
	for _, f := range []float32{-0.05, -0.05, 0, 0.05, -0.05, 0, 0, 0.05, 0} {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, math.Float32bits(f)))
	}
	doc := map[string]any{
		"asset":  map[string]any{"version": "2.0"},
		"scene":  0,
		"scenes": []any{map[string]any{"nodes": []int{0}}},
		"nodes": []any{
			map[string]any{"name": "bike", "children": []int{1, 2}},
			map[string]any{"name": "frame", "mesh": 0, "translation": []float32{0, 0.5, -0.3}},
			map[string]any{"name": "saddle", "mesh": 0, "translation": []float32{0, 0.8, -0.3}},
		},
		"meshes": []any{
			map[string]any{"primitives": []any{map[string]any{"attributes": map[string]int{"POSITION": 0}}}},
		},
		"accessors": []any{
			map[string]any{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3",
				"min": []float32{-0.05, -0.05, 0}, "max": []float32{0.05, 0.05, 0}},
		},
		"bufferViews": []any{map[string]any{"buffer": 0, "byteLength": 36}},
		"buffers": []any{map[string]any{
			"uri":        "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
			"byteLength": buf.Len(),
		}},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "B.gltf")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	return out.String(), err
}

func TestPartsListsCatalog(t *testing.T) {
	out, err := execute(t, "parts")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 19)
	assert.Contains(t, lines[0], "PART")
	assert.True(t, strings.HasPrefix(lines[1], "Frame"))
	assert.Contains(t, out, "#080808 (matte)")
	assert.Contains(t, out, "Brake Disks")
}

func TestPartsYAMLRoundTrips(t *testing.T) {
	out, err := execute(t, "parts", "--yaml")
	require.NoError(t, err)

	c, err := parts.ParseCatalog(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, parts.DefaultCatalog().IDs(), c.IDs())
}

func TestCatalogFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("parts:\n  - name: Bell\n    object_name: bell\n"), 0o644))

	out, err := execute(t, "--catalog", path, "parts")
	require.NoError(t, err)
	assert.Contains(t, out, "Bell")
	assert.NotContains(t, out, "Frame")
}

func TestInspect(t *testing.T) {
	out, err := execute(t, "inspect", writeModel(t))
	require.NoError(t, err)

	assert.Contains(t, out, "  bike [group]")
	assert.Contains(t, out, "frame [mesh] -> Frame")
	assert.Contains(t, out, "saddle [mesh] -> Saddle")
	assert.Contains(t, out, "2 eligible, 2 matched, 0 unmatched")
	assert.Contains(t, out, "parts without nodes: Handlebar")
}

func TestProjectJSON(t *testing.T) {
	out, err := execute(t, "project", "--json", writeModel(t))
	require.NoError(t, err)

	var labels []viewer.Label
	require.NoError(t, json.Unmarshal([]byte(out), &labels))
	require.Len(t, labels, 2)

	assert.Equal(t, "Frame", labels[0].ID)
	assert.InDelta(t, 640, labels[0].X, 0.5)
	assert.InDelta(t, 360, labels[0].Y, 0.5)
	assert.Equal(t, "Saddle", labels[1].ID)
	assert.Less(t, labels[1].Y, labels[0].Y, "the saddle sits above the frame")
}

func TestProjectAllIncludesUnboundParts(t *testing.T) {
	out, err := execute(t, "project", "--all", "--width", "800", "--height", "600", writeModel(t))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 19)
	assert.Contains(t, out, "false")
}

func TestProjectRejectsEmptyViewport(t *testing.T) {
	_, err := execute(t, "project", "--width", "0", writeModel(t))
	assert.ErrorContains(t, err, "viewport")
}

func TestMissingModel(t *testing.T) {
	_, err := execute(t, "inspect", filepath.Join(t.TempDir(), "missing.glb"))
	assert.Error(t, err)
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := execute(t, "--log-level", "loud", "parts")
	assert.ErrorContains(t, err, "log-level")
}

func TestInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bikeview.toml")
	require.NoError(t, os.WriteFile(path, []byte("[intro]\nduration_ms = -5\n"), 0o644))

	_, err := execute(t, "--config", path, "parts")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
