package viewer

import (
	"github.com/Carmen-Shannon/bikeview/parts"
	"github.com/Carmen-Shannon/bikeview/selection"
)

// Status is the load state of the viewer.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "loading"
	}
}

// Label is one part label as the presentation layer draws it.
type Label struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	X           float32 `json:"x"`
	Y           float32 `json:"y"`
	Opacity     float32 `json:"opacity"`
	Display     bool    `json:"display"`
	Visible     bool    `json:"visible"`
	Selected    bool    `json:"selected"`
	Description string  `json:"-"`
}

// Panel is the info panel state.
type Panel struct {
	Open        bool   `json:"open"`
	Part        string `json:"part,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Mode        string `json:"mode"`
}

// Snapshot is everything the presentation layer needs for one frame.
type Snapshot struct {
	Frame         uint64  `json:"frame"`
	Status        string  `json:"status"`
	Error         string  `json:"error,omitempty"`
	Intro         string  `json:"intro"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	Cursor        string  `json:"cursor"`
	LabelsVisible bool    `json:"labels_visible"`
	Panel         Panel   `json:"panel"`
	Labels        []Label `json:"labels"`
}

// buildLabels turns the state table into labels. A label is visible when it is displayed and
// was projected this frame, so labels of parts that never bound stay hidden.
func buildLabels(catalog *parts.Catalog, table *parts.StateTable, viewed string) []Label {
	entries := table.Snapshot()
	out := make([]Label, 0, len(entries))
	for _, e := range entries {
		l := Label{
			ID:       e.ID,
			Name:     e.ID,
			X:        e.State.ScreenX,
			Y:        e.State.ScreenY,
			Opacity:  e.State.Opacity,
			Display:  e.State.Display,
			Visible:  e.State.Display && e.State.Projected,
			Selected: e.ID == viewed,
		}
		if p := catalog.Get(e.ID); p != nil {
			l.Name = p.Name
			l.Description = p.Description
		}
		out = append(out, l)
	}
	return out
}

func panelFrom(s selection.Snapshot) Panel {
	return Panel{
		Open:        s.PanelOpen,
		Part:        s.Part,
		Name:        s.Info.Name,
		Description: s.Info.Description,
		Mode:        s.Mode.String(),
	}
}
