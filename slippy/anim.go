package slippy

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/willowmap"
)

// zoomAnim interpolates the view from one center/zoom to another. The map's
// settled center and zoom keep their old values until the animation ends.
type zoomAnim struct {
	tween      *gween.Tween
	from, to   willowmap.LatLng
	fromZ, toZ float64
	center     willowmap.LatLng
	zoom       float64
}

// ZoomTo animates the view to center at zoom over duration seconds. Each
// Update emits an EventZoomAnim with the animation's current center and zoom;
// the last one settles the view like SetView. A duration of zero or less, or
// an unchanged zoom, jumps directly.
func (m *Map) ZoomTo(center willowmap.LatLng, zoom float64, duration float32) error {
	zoom = m.clampZoom(zoom)
	if duration <= 0 || zoom == m.zoom {
		return m.SetView(center, zoom)
	}
	m.anim = &zoomAnim{
		tween:  gween.New(0, 1, duration, ease.OutCubic),
		from:   m.center,
		to:     center,
		fromZ:  m.zoom,
		toZ:    zoom,
		center: m.center,
		zoom:   m.zoom,
	}
	return nil
}

// ZoomIn animates one zoom level in around the current center.
func (m *Map) ZoomIn(duration float32) error {
	return m.ZoomTo(m.center, m.zoom+1, duration)
}

// ZoomOut animates one zoom level out around the current center.
func (m *Map) ZoomOut(duration float32) error {
	return m.ZoomTo(m.center, m.zoom-1, duration)
}

// AnimatingZoom reports whether a zoom animation is in flight.
func (m *Map) AnimatingZoom() bool {
	return m.anim != nil
}

// dropAnim abandons the running animation and reports whether there was one.
func (m *Map) dropAnim() bool {
	if m.anim == nil {
		return false
	}
	m.anim = nil
	m.log.Debug("zoom animation abandoned")
	return true
}

func (m *Map) stepZoom(dt float32) error {
	a := m.anim
	v, done := a.tween.Update(dt)
	if done {
		m.anim = nil
		return m.SetView(a.to, a.toZ)
	}
	t := float64(v)
	a.zoom = a.fromZ + (a.toZ-a.fromZ)*t
	a.center = willowmap.LatLng{
		Lat: a.from.Lat + (a.to.Lat-a.from.Lat)*t,
		Lng: a.from.Lng + (a.to.Lng-a.from.Lng)*t,
	}
	return m.fire(willowmap.Event{Type: willowmap.EventZoomAnim, Center: a.center, Zoom: a.zoom})
}
