package willowmap

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/charmbracelet/log"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertPoint(t *testing.T, name string, got, want Point) {
	t.Helper()
	if math.Abs(got.X-want.X) > epsilon || math.Abs(got.Y-want.Y) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

// --- fake host map ---

// fakeMap is a spherical-mercator map with Leaflet's layer bookkeeping: the
// pixel origin only moves on setView, pans move the pane.
type fakeMap struct {
	zoom             float64
	minZoom, maxZoom float64
	size             Point
	pixelOrigin      Point
	panePos          Point
	rounding         bool
	roundingCalls    int

	pane fakePane

	nextFrame FrameID
	frames    map[FrameID]func() error
	order     []FrameID
}

func newFakeMap(center LatLng, zoom float64) *fakeMap {
	m := &fakeMap{
		minZoom:  0,
		maxZoom:  18,
		size:     Pt(800, 600),
		rounding: true,
		frames:   make(map[FrameID]func() error),
	}
	m.setView(center, zoom)
	return m
}

func (m *fakeMap) Project(ll LatLng, zoom float64) Point {
	scale := 256 * math.Pow(2, zoom)
	lat := math.Max(math.Min(ll.Lat, 85.0511287798), -85.0511287798) * math.Pi / 180
	x := (ll.Lng + 180) / 360
	y := 0.5 - math.Log(math.Tan(math.Pi/4+lat/2))/(2*math.Pi)
	return Pt(x*scale, y*scale)
}

func (m *fakeMap) Unproject(p Point, zoom float64) LatLng {
	scale := 256 * math.Pow(2, zoom)
	lng := p.X/scale*360 - 180
	n := math.Pi * (1 - 2*p.Y/scale)
	lat := math.Atan(math.Sinh(n)) * 180 / math.Pi
	return LatLng{Lat: lat, Lng: lng}
}

func (m *fakeMap) ZoomScale(to, from float64) float64 { return math.Pow(2, to-from) }
func (m *fakeMap) Zoom() float64                      { return m.zoom }
func (m *fakeMap) MinZoom() float64                   { return m.minZoom }
func (m *fakeMap) MaxZoom() float64                   { return m.maxZoom }
func (m *fakeMap) Size() Point                        { return m.size }
func (m *fakeMap) PixelOrigin() Point                 { return m.pixelOrigin }
func (m *fakeMap) OverlayPane() Pane                  { return &m.pane }

func (m *fakeMap) Center() LatLng {
	return m.Unproject(m.pixelOrigin.Add(m.size.Mul(0.5)).Sub(m.panePos), m.zoom)
}

func (m *fakeMap) ContainerPointToLayerPoint(p Point) Point {
	return p.Sub(m.panePos)
}

func (m *fakeMap) LatLngToLayerPoint(ll LatLng) Point {
	p := m.Project(ll, m.zoom)
	if m.rounding {
		p = p.Round()
	}
	return p.Sub(m.pixelOrigin)
}

func (m *fakeMap) SetRounding(enabled bool) bool {
	m.roundingCalls++
	prev := m.rounding
	m.rounding = enabled
	return prev
}

func (m *fakeMap) RequestFrame(fn func() error) FrameID {
	m.nextFrame++
	m.frames[m.nextFrame] = fn
	m.order = append(m.order, m.nextFrame)
	return m.nextFrame
}

func (m *fakeMap) CancelFrame(id FrameID) {
	delete(m.frames, id)
}

// runFrames runs every frame scheduled so far, as a display tick would.
func (m *fakeMap) runFrames() error {
	order := m.order
	m.order = nil
	var errs []error
	for _, id := range order {
		fn, ok := m.frames[id]
		if !ok {
			continue
		}
		delete(m.frames, id)
		errs = append(errs, fn())
	}
	return errors.Join(errs...)
}

func (m *fakeMap) setView(center LatLng, zoom float64) {
	m.zoom = zoom
	m.panePos = Point{}
	m.pixelOrigin = m.Project(center, zoom).Sub(m.size.Mul(0.5)).Round()
}

// panBy moves the view by offset container pixels without a view reset.
func (m *fakeMap) panBy(offset Point) {
	m.panePos = m.panePos.Sub(offset)
}

type fakePane struct {
	elements []Element
}

func (p *fakePane) Append(el Element) { p.elements = append(p.elements, el) }

func (p *fakePane) Remove(el Element) {
	for i, e := range p.elements {
		if e == el {
			p.elements = append(p.elements[:i], p.elements[i+1:]...)
			return
		}
	}
}

// --- fake renderers ---

type fakeRenderer struct {
	view     View
	w, h     int
	resizes  int
	renders  int
	flushes  int
	flushErr error
	disposed bool
	// visibleAtRender records the view's visibility when Render ran.
	visibleAtRender []bool
}

func (r *fakeRenderer) Resize(w, h int) {
	r.w, r.h = w, h
	r.view.Width, r.view.Height = w, h
	r.resizes++
}

func (r *fakeRenderer) Size() (int, int) { return r.w, r.h }

func (r *fakeRenderer) Render(root *Node) error {
	updateWorldTransform(root, identityTransform, 1, false)
	r.renders++
	r.visibleAtRender = append(r.visibleAtRender, r.view.Visible)
	return nil
}

func (r *fakeRenderer) Flush() error {
	r.flushes++
	return r.flushErr
}

func (r *fakeRenderer) View() *View { return &r.view }
func (r *fakeRenderer) GPU() bool   { return true }
func (r *fakeRenderer) Dispose()    { r.disposed = true }

type fakeFactory struct {
	unsupported bool
	cfgs        []RendererConfig
	renderers   []*fakeRenderer
}

func (f *fakeFactory) Supported(RendererConfig) bool { return !f.unsupported }

func (f *fakeFactory) NewRenderer(cfg RendererConfig) Renderer {
	r := &fakeRenderer{view: View{resolution: cfg.resolution()}}
	f.cfgs = append(f.cfgs, cfg)
	f.renderers = append(f.renderers, r)
	return r
}

// visibleCount returns how many of the factory's views are visible.
func (f *fakeFactory) visibleCount() int {
	n := 0
	for _, r := range f.renderers {
		if r.view.Visible {
			n++
		}
	}
	return n
}

// --- overlay fixture ---

type drawRecorder struct {
	events []Event
	err    error
	scales []float64
}

func (d *drawRecorder) draw(u *Utils, e Event) error {
	d.events = append(d.events, e)
	d.scales = append(d.scales, u.Scale())
	return d.err
}

func testOptions(f *fakeFactory) Options {
	opts := DefaultOptions()
	opts.Renderers = f
	opts.Logger = log.New(io.Discard)
	return opts
}

func newTestOverlay(t *testing.T, opts Options) (*Overlay, *drawRecorder) {
	t.Helper()
	d := &drawRecorder{}
	o := New(d.draw, nil, opts)
	if o == nil {
		t.Fatal("New returned nil")
	}
	return o, d
}
