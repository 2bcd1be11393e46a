package slippy

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/phanxgames/willowmap"
)

var paris = willowmap.LatLng{Lat: 48.8566, Lng: 2.3522}

type markerLayer struct {
	draws  int
	events []willowmap.EventType
	marker *willowmap.Node
}

func (l *markerLayer) draw(u *willowmap.Utils, e willowmap.Event) error {
	l.draws++
	l.events = append(l.events, e.Type)
	if l.marker == nil {
		p := u.LatLngToLayerPoint(paris)
		l.marker = willowmap.NewCircle("paris", 5, willowmap.ColorWhite)
		l.marker.SetPosition(p.X, p.Y)
		u.Root().AddChild(l.marker)
	}
	l.marker.Radius = 5 / u.Scale()
	if Rounding() {
		return errors.New("rounding on inside the draw func")
	}
	return nil
}

func mountOverlay(t *testing.T, m *Map, mod func(*willowmap.Options)) (*willowmap.Overlay, *markerLayer) {
	t.Helper()
	opts := willowmap.DefaultOptions()
	opts.Logger = log.New(io.Discard)
	if mod != nil {
		mod(&opts)
	}
	l := &markerLayer{}
	o := willowmap.New(l.draw, nil, opts)
	if o == nil {
		t.Fatal("New returned nil")
	}
	if err := m.AddLayer(o); err != nil {
		t.Fatal(err)
	}
	return o, l
}

func TestOverlayPaddedSurface(t *testing.T) {
	m := testMap()
	if err := m.SetView(willowmap.LatLng{}, 10); err != nil {
		t.Fatal(err)
	}
	o, _ := mountOverlay(t, m, nil)

	if got := o.Container().Position(); got != willowmap.Pt(-80, -60) {
		t.Errorf("surface position = %v, want (-80,-60)", got)
	}
	if w, h := o.Renderer().Size(); w != 960 || h != 720 {
		t.Errorf("surface = %dx%d, want 960x720", w, h)
	}
	if !m.OverlayPane().(*Pane).Contains(o.Container()) {
		t.Error("container not in the overlay pane")
	}

	start := o.Transform()
	if err := m.SetView(willowmap.LatLng{Lat: 1, Lng: 1}, 10); err != nil {
		t.Fatal(err)
	}
	if o.Transform() == start {
		t.Error("moving the center did not change the transform")
	}
	if err := m.SetView(willowmap.LatLng{}, 10); err != nil {
		t.Fatal(err)
	}
	if o.Transform() != start {
		t.Errorf("Transform = %v, want %v", o.Transform(), start)
	}
}

func TestOverlayPanBackIsExact(t *testing.T) {
	m := testMap()
	if err := m.SetView(willowmap.LatLng{}, 3); err != nil {
		t.Fatal(err)
	}
	o, _ := mountOverlay(t, m, nil)
	start := o.Transform()

	if err := m.PanBy(willowmap.Pt(100, 50)); err != nil {
		t.Fatal(err)
	}
	if o.Transform() == start {
		t.Error("pan did not change the transform")
	}
	if err := m.PanBy(willowmap.Pt(-100, -50)); err != nil {
		t.Fatal(err)
	}
	if o.Transform() != start {
		t.Errorf("Transform = %v, want %v", o.Transform(), start)
	}
}

func TestOverlayMarkerStaysRegistered(t *testing.T) {
	m := testMap()
	o, l := mountOverlay(t, m, nil)

	views := []struct {
		center willowmap.LatLng
		zoom   float64
	}{
		{paris, 5},
		{paris, 9},
		{willowmap.LatLng{Lat: 50, Lng: 5}, 11.5},
		{willowmap.LatLng{Lat: 40, Lng: -3}, 3.25},
		{paris, 16},
	}
	for _, v := range views {
		if err := m.SetView(v.center, v.zoom); err != nil {
			t.Fatal(err)
		}
		if err := m.PanBy(willowmap.Pt(33, -17)); err != nil {
			t.Fatal(err)
		}

		tr := o.Transform()
		got := tr.Apply(willowmap.Pt(l.marker.X, l.marker.Y))
		want := m.Project(paris, v.zoom).Sub(o.Viewport().TopLeft(m))
		if math.Abs(got.X-want.X) > 0.5 || math.Abs(got.Y-want.Y) > 0.5 {
			t.Errorf("zoom %v: marker at %v on the surface, want %v", v.zoom, got, want)
		}
		if !Rounding() {
			t.Fatal("rounding left off")
		}
	}
}

func TestOverlayZoomAnimation(t *testing.T) {
	m := testMap()
	o, l := mountOverlay(t, m, nil)
	draws := l.draws

	if err := m.ZoomIn(0.25); err != nil {
		t.Fatal(err)
	}
	if err := m.Update(1.0 / 60); err != nil {
		t.Fatal(err)
	}
	if _, scale := o.Container().Transform(); scale <= 1 {
		t.Errorf("container scale during zoom-in = %v, want > 1", scale)
	}
	for m.AnimatingZoom() {
		if err := m.Update(1.0 / 60); err != nil {
			t.Fatal(err)
		}
	}
	if l.draws != draws+1 {
		t.Errorf("draws = %d, want one layout after the animation", l.draws-draws)
	}
	if l.events[len(l.events)-1] != willowmap.EventMoveEnd {
		t.Errorf("last layout on %v, want moveend", l.events[len(l.events)-1])
	}
	if _, scale := o.Container().Transform(); scale != 1 {
		t.Errorf("container scale after the animation = %v, want 1", scale)
	}
	if got := o.Utils().Scale(); math.Abs(got-math.Exp2(3-9)) > 1e-12 {
		t.Errorf("root scale = %v, want 2^-6", got)
	}
}

func TestOverlayRecenterDuringZoomAnimation(t *testing.T) {
	m := testMap()
	o, l := mountOverlay(t, m, nil)

	if err := m.ZoomIn(1); err != nil {
		t.Fatal(err)
	}
	if err := m.Update(0.1); err != nil {
		t.Fatal(err)
	}
	if _, scale := o.Container().Transform(); scale <= 1 {
		t.Fatalf("container scale during zoom-in = %v, want > 1", scale)
	}
	draws := l.draws

	if err := m.SetView(willowmap.LatLng{Lat: 10, Lng: 10}, m.Zoom()); err != nil {
		t.Fatal(err)
	}
	if l.draws != draws+1 {
		t.Errorf("draws after recentring = %d, want 1", l.draws-draws)
	}
	if _, scale := o.Container().Transform(); scale != 1 {
		t.Errorf("container scale after recentring = %v, want 1", scale)
	}

	if err := m.PanBy(willowmap.Pt(40, 0)); err != nil {
		t.Fatal(err)
	}
	if l.draws != draws+2 {
		t.Errorf("draws after pan = %d, want 2", l.draws-draws)
	}
}

func TestOverlayDoubleBuffering(t *testing.T) {
	m := testMap()
	o, l := mountOverlay(t, m, func(opts *willowmap.Options) { opts.DoubleBuffering = true })

	if l.draws != 0 || m.PendingFrames() != 1 {
		t.Fatalf("draws, pending = %d, %d; want the layout deferred to a frame", l.draws, m.PendingFrames())
	}
	for range 2 {
		if err := m.PanBy(willowmap.Pt(20, 0)); err != nil {
			t.Fatal(err)
		}
	}
	if m.PendingFrames() != 1 {
		t.Errorf("PendingFrames = %d, want superseded frames coalesced", m.PendingFrames())
	}
	if err := m.Update(1.0 / 60); err != nil {
		t.Fatal(err)
	}
	if l.draws != 1 {
		t.Errorf("draws = %d, want 1", l.draws)
	}
	if !o.Renderer().View().Visible {
		t.Error("drawn surface not visible")
	}

	m.RemoveLayer(o)
	if err := m.PanBy(willowmap.Pt(5, 5)); err != nil {
		t.Fatal(err)
	}
	if m.PendingFrames() != 0 {
		t.Errorf("PendingFrames = %d after removal", m.PendingFrames())
	}
	if m.OverlayPane().(*Pane).Len() != 0 {
		t.Error("container left in the pane")
	}
	o.Dispose()
}

func TestOverlayDoubleBufferedFrameDuringZoom(t *testing.T) {
	m := testMap()
	o, l := mountOverlay(t, m, func(opts *willowmap.Options) { opts.DoubleBuffering = true })
	if err := m.Update(1.0 / 60); err != nil {
		t.Fatal(err)
	}
	if err := m.PanBy(willowmap.Pt(20, 0)); err != nil {
		t.Fatal(err)
	}
	if err := m.ZoomIn(1); err != nil {
		t.Fatal(err)
	}
	// The zoom steps before the pending frame runs in the same tick.
	if err := m.Update(0.1); err != nil {
		t.Fatal(err)
	}
	if l.draws != 2 {
		t.Fatalf("draws = %d, want the pan's frame presented", l.draws)
	}
	if _, scale := o.Container().Transform(); scale <= 1 {
		t.Errorf("container scale after the flip = %v, want the zoom-in scale", scale)
	}
}

func TestOverlayRedrawPayload(t *testing.T) {
	m := testMap()
	o, l := mountOverlay(t, m, nil)
	if err := o.Render(42); err != nil {
		t.Fatal(err)
	}
	if l.events[len(l.events)-1] != willowmap.EventRedraw {
		t.Errorf("last event = %v, want redraw", l.events[len(l.events)-1])
	}
}
