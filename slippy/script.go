package slippy

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/phanxgames/willowmap"
)

// scriptStep is a single gesture in a script.
type scriptStep struct {
	Action   string  `json:"action"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	Lat      float64 `json:"lat,omitempty"`
	Lng      float64 `json:"lng,omitempty"`
	Zoom     float64 `json:"zoom,omitempty"`
	Duration float32 `json:"duration,omitempty"`
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`
	Frames   int     `json:"frames,omitempty"`
}

type script struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptRunner replays map gestures one step per frame, for demos and
// automated visual checks.
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	drag      *dragState
	done      bool
}

// dragState spreads a drag step over several frames.
type dragState struct {
	step      willowmap.Point
	remaining int
}

// LoadScript parses a JSON gesture script:
//
//	{"steps": [
//		{"action": "view", "lat": 48.85, "lng": 2.35, "zoom": 12},
//		{"action": "drag", "x": -200, "y": 0, "frames": 10},
//		{"action": "zoom", "lat": 48.85, "lng": 2.35, "zoom": 14, "duration": 0.25},
//		{"action": "wait", "frames": 30},
//		{"action": "pan", "x": 50, "y": 50},
//		{"action": "resize", "width": 1024, "height": 768}
//	]}
func LoadScript(jsonData []byte) (*ScriptRunner, error) {
	var s script
	if err := json.Unmarshal(jsonData, &s); err != nil {
		return nil, fmt.Errorf("parse map script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, errors.New("parse map script: no steps")
	}
	for i, st := range s.Steps {
		switch st.Action {
		case "view", "fly", "drag", "zoom", "wait", "pan", "resize":
		default:
			return nil, fmt.Errorf("parse map script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &ScriptRunner{steps: s.Steps}, nil
}

// Done reports whether every step has run.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// Step advances the script by one frame. Call it once per Update, before
// Map.Update.
func (r *ScriptRunner) Step(m *Map) error {
	if r.done {
		return nil
	}
	if r.drag != nil {
		return r.stepDrag(m)
	}
	// Let animations finish before the next gesture.
	if m.AnimatingZoom() {
		return nil
	}
	if r.waitCount > 0 {
		r.waitCount--
		return nil
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return nil
	}

	st := r.steps[r.cursor]
	r.cursor++

	var err error
	ll := willowmap.LatLng{Lat: st.Lat, Lng: st.Lng}
	switch st.Action {
	case "view":
		err = m.SetView(ll, st.Zoom)
	case "fly":
		err = m.FlyTo(ll, st.Zoom)
	case "zoom":
		err = m.ZoomTo(ll, st.Zoom, st.Duration)
	case "pan":
		err = m.PanBy(willowmap.Pt(st.X, st.Y))
	case "resize":
		err = m.Resize(st.Width, st.Height)
	case "drag":
		frames := max(st.Frames, 1)
		r.drag = &dragState{step: willowmap.Pt(st.X, st.Y).Mul(1 / float64(frames)), remaining: frames}
		err = r.stepDrag(m)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && r.drag == nil && !m.AnimatingZoom() {
		r.done = true
	}
	return err
}

func (r *ScriptRunner) stepDrag(m *Map) error {
	err := m.DragBy(r.drag.step)
	r.drag.remaining--
	if r.drag.remaining > 0 {
		return err
	}
	r.drag = nil
	return errors.Join(err, m.EndDrag())
}
