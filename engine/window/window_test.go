package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCursorNames(t *testing.T) {
	assert.Equal(t, "default", CursorDefault.String())
	assert.Equal(t, "grab", CursorGrab.String())
	assert.Equal(t, "grabbing", CursorGrabbing.String())
}

func TestBuilderOptions(t *testing.T) {
	w := &engineWindow{width: 1280, height: 720}
	WithSize(800, 0)(w)
	WithSizeLimits(320, 240, 1920, 1080)(w)
	WithTitle("bike")(w)

	assert.Equal(t, 800, w.width)
	assert.Equal(t, 720, w.height)
	assert.Equal(t, 1920, w.maxWidth)
	assert.Equal(t, 240, w.minHeight)
	assert.Equal(t, "bike", w.title)
}
