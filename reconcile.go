package willowmap

import "math"

// defaultUnboundedZoomSpan is added to the minimum zoom to pick a projection
// zoom when the map has no maximum zoom.
const defaultUnboundedZoomSpan = 8

// ReferenceFrame is the fixed coordinate space the scene graph is built in:
// layer pixels of the map at ProjectionZoom, anchored on Origin. It is captured
// once when the overlay first mounts and never changes afterwards.
type ReferenceFrame struct {
	Origin         LatLng
	ProjectionZoom float64
	// InitialShift is Origin projected at ProjectionZoom.
	InitialShift Point
}

// Transform is the scale and offset applied to the scene root so that layer
// points at the projection zoom land where the map draws them now. Shift is
// relative to the top-left corner of the overlay surface.
type Transform struct {
	Scale float64
	Shift Point
}

// DefaultProjectionZoom returns the midpoint of the map's zoom range, or
// MinZoom+8 when the range has no upper bound.
func DefaultProjectionZoom(m Map) float64 {
	lo, hi := m.MinZoom(), m.MaxZoom()
	if math.IsInf(hi, 1) {
		return lo + defaultUnboundedZoomSpan
	}
	return (lo + hi) / 2
}

func newReferenceFrame(m Map, origin LatLng, zoom float64) ReferenceFrame {
	defer suppressRounding(m).release()
	return ReferenceFrame{
		Origin:         origin,
		ProjectionZoom: zoom,
		InitialShift:   m.Project(origin, zoom),
	}
}

// reconcile computes the transform for a surface whose top-left corner sits at
// the absolute projected point topLeft when the map is at zoom. Callers hold
// the rounding guard.
func (f ReferenceFrame) reconcile(m Map, zoom float64, topLeft Point) Transform {
	if zoom == f.ProjectionZoom {
		return Transform{Scale: 1, Shift: topLeft.Neg()}
	}
	scale := m.ZoomScale(zoom, f.ProjectionZoom)
	shift := m.Project(f.Origin, zoom).Sub(f.InitialShift.Mul(scale)).Sub(topLeft)
	return Transform{Scale: scale, Shift: shift}
}

// Apply maps a layer point at the projection zoom to surface pixels.
func (t Transform) Apply(p Point) Point {
	return p.Mul(t.Scale).Add(t.Shift)
}
