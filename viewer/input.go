package viewer

import (
	"github.com/Carmen-Shannon/bikeview/common"
	"github.com/Carmen-Shannon/bikeview/engine/window"
	"github.com/Carmen-Shannon/bikeview/projection"
)

// dragThreshold is how far in pixels the pointer may move before a press stops being a click.
const dragThreshold = 4

// inputState tracks an in-progress drag. It is only touched on the frame loop goroutine.
type inputState struct {
	cursor   window.Cursor
	dragging bool
	moved    bool
	pressX   int32
	pressY   int32
	lastX    int32
	lastY    int32
}

// attachInput routes window input to the viewer.
func (v *viewer) attachInput(w window.Window) {
	w.SetMouseDownCallback(v.mouseDown)
	w.SetMouseUpCallback(v.mouseUp)
	w.SetMouseMoveCallback(v.mouseMove)
	w.SetScrollCallback(v.scroll)
	w.SetKeyDownCallback(v.keyDown)
	v.setCursor(window.CursorGrab)
}

// mouseDown starts a drag with the left button.
func (v *viewer) mouseDown(button uint32, x, y int32) {
	if button != common.MouseLeft {
		return
	}
	v.mu.Lock()
	v.input.dragging = true
	v.input.moved = false
	v.input.pressX, v.input.pressY = x, y
	v.input.lastX, v.input.lastY = x, y
	v.mu.Unlock()
	v.setCursor(window.CursorGrabbing)
}

// mouseMove orbits the camera while dragging.
func (v *viewer) mouseMove(x, y int32) {
	v.mu.Lock()
	if !v.input.dragging {
		v.mu.Unlock()
		return
	}
	dx, dy := x-v.input.lastX, y-v.input.lastY
	v.input.lastX, v.input.lastY = x, y
	if abs32(x-v.input.pressX) > dragThreshold || abs32(y-v.input.pressY) > dragThreshold {
		v.input.moved = true
	}
	v.mu.Unlock()

	_, height := v.engine.Size()
	if v.controls.Enabled() && height > 0 {
		v.controls.Rotate(float32(dx), float32(dy), float32(height))
	}
}

// mouseUp ends a drag. A press that did not move selects the label under the pointer.
func (v *viewer) mouseUp(button uint32, x, y int32) {
	if button != common.MouseLeft {
		return
	}
	v.mu.Lock()
	wasDragging := v.input.dragging
	click := wasDragging && !v.input.moved
	v.input.dragging = false
	v.mu.Unlock()
	if !wasDragging {
		return
	}
	v.setCursor(window.CursorGrab)

	if !click || v.Status() != StatusReady {
		return
	}
	if id, ok := projection.Pick(v.table, float32(x), float32(y), projection.DefaultPickRadius); ok {
		if err := v.machine.SelectLabel(id); err != nil {
			v.logger.Warn("select label", "error", err)
		}
	}
}

// scroll dollies the camera. Positive deltas move closer.
func (v *viewer) scroll(delta float32) {
	if v.controls.Enabled() {
		v.controls.Dolly(delta)
	}
}

// keyDown handles keyboard shortcuts: Esc closes the panel, R and U pick the service mode,
// Q quits.
func (v *viewer) keyDown(keyCode uint32) {
	switch keyCode {
	case common.KeyEsc:
		v.machine.CloseInfoPanel()
	case common.KeyR:
		v.machine.SelectRepair()
	case common.KeyU:
		v.machine.SelectUpgrade()
	case common.KeyQ:
		v.engine.Quit()
	}
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
