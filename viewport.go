package willowmap

// Viewport is the map view an overlay surface was last laid out for.
// PixelBounds is the visible container expanded by the padding fraction on
// every side, in layer space, with integer corners.
type Viewport struct {
	PixelBounds Bounds
	Center      LatLng
	Zoom        float64
}

// TopLeft returns the absolute projected point of the surface's top-left
// corner, given the map's current pixel origin.
func (v Viewport) TopLeft(m Map) Point {
	return m.PixelOrigin().Add(v.PixelBounds.Min)
}

type trackerState uint8

const (
	stateUnmounted trackerState = iota
	stateMounted
	stateAnimatingZoom
)

func (s trackerState) String() string {
	switch s {
	case stateMounted:
		return "mounted"
	case stateAnimatingZoom:
		return "animating-zoom"
	default:
		return "unmounted"
	}
}

// tracker follows the host map's view and decides which events lead to a
// full layout and which only move the already rendered surface.
type tracker struct {
	state    trackerState
	padding  float64
	frame    ReferenceFrame
	hasFrame bool
	viewport Viewport
	measured bool

	// target of the latest zoomanim, while animating
	animCenter LatLng
	animZoom   float64
}

// mount captures the reference frame on the first mount only and measures
// the current view.
func (t *tracker) mount(m Map, projectionZoom float64) {
	if !t.hasFrame {
		t.frame = newReferenceFrame(m, LatLng{}, projectionZoom)
		t.hasFrame = true
	}
	t.state = stateMounted
	t.measured = false
}

func (t *tracker) unmount() {
	t.state = stateUnmounted
}

// settle recomputes the viewport wholesale. It reports false while a zoom
// animation is in flight and a layout already exists, since resizing the
// surface mid-gesture would flash.
func (t *tracker) settle(m Map) (Viewport, bool) {
	if t.state == stateAnimatingZoom {
		if a, ok := m.(ZoomAnimator); ok && !a.AnimatingZoom() {
			t.state = stateMounted
		}
	}
	if t.state == stateAnimatingZoom && t.measured {
		return t.viewport, false
	}
	t.viewport = measureViewport(m, t.padding)
	t.measured = true
	return t.viewport, true
}

// zoomEnd leaves the animating state; the layout itself happens on the
// moveend that follows.
func (t *tracker) zoomEnd() {
	if t.state == stateAnimatingZoom {
		t.state = stateMounted
	}
}

// animate returns the container transform that keeps the last rendered frame
// registered with a view at center/zoom.
func (t *tracker) animate(m Map, center LatLng, zoom float64) (offset Point, scale float64) {
	if t.state == stateMounted {
		t.state = stateAnimatingZoom
	}
	t.animCenter, t.animZoom = center, zoom
	return t.containerTransform(m, center, zoom)
}

// animating reports the transform of the animation in flight, if any.
func (t *tracker) animating(m Map) (offset Point, scale float64, ok bool) {
	if t.state != stateAnimatingZoom {
		return Point{}, 1, false
	}
	offset, scale = t.containerTransform(m, t.animCenter, t.animZoom)
	return offset, scale, true
}

// containerTransform scales the surface about the padded view's center and
// shifts it by the distance the center moves at the target zoom.
func (t *tracker) containerTransform(m Map, center LatLng, zoom float64) (Point, float64) {
	scale := m.ZoomScale(zoom, t.viewport.Zoom)
	position := t.viewport.PixelBounds.Min
	viewHalf := m.Size().Mul(0.5 + t.padding)
	currentCenter := m.Project(t.viewport.Center, zoom)
	destCenter := m.Project(center, zoom)
	centerOffset := destCenter.Sub(currentCenter)
	offset := viewHalf.Mul(-scale).Add(position).Add(viewHalf).Sub(centerOffset)
	return offset, scale
}

func measureViewport(m Map, padding float64) Viewport {
	size := m.Size()
	topLeft := m.ContainerPointToLayerPoint(size.Mul(-padding)).Round()
	bottomRight := topLeft.Add(size.Mul(1 + 2*padding)).Round()
	return Viewport{
		PixelBounds: Bounds{Min: topLeft, Max: bottomRight},
		Center:      m.Center(),
		Zoom:        m.Zoom(),
	}
}

// needsResize reports whether r's surface differs from size in either
// dimension.
func needsResize(r Renderer, size Point) bool {
	w, h := r.Size()
	return w != int(size.X) || h != int(size.Y)
}
