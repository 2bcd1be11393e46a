package willowmap

import (
	"math"
	"testing"
)

var testPlaces = []LatLng{
	{Lat: 0, Lng: 0},
	{Lat: 48.8566, Lng: 2.3522},
	{Lat: -33.8688, Lng: 151.2093},
	{Lat: 64.1466, Lng: -21.9426},
	{Lat: -54.8019, Lng: -68.303},
	{Lat: 35.6762, Lng: 139.6503},
}

// --- DefaultProjectionZoom ---

func TestDefaultProjectionZoomMidpoint(t *testing.T) {
	m := newFakeMap(LatLng{}, 2)
	m.minZoom, m.maxZoom = 2, 18
	assertNear(t, "projection zoom", DefaultProjectionZoom(m), 10)
}

func TestDefaultProjectionZoomUnbounded(t *testing.T) {
	m := newFakeMap(LatLng{}, 2)
	m.minZoom, m.maxZoom = 3, math.Inf(1)
	assertNear(t, "projection zoom", DefaultProjectionZoom(m), 3+defaultUnboundedZoomSpan)
}

// --- reconcile ---

func TestReconcileAtProjectionZoomIsExact(t *testing.T) {
	m := newFakeMap(LatLng{Lat: 48.8566, Lng: 2.3522}, 9)
	f := newReferenceFrame(m, LatLng{}, 9)
	topLeft := Pt(132441, 90188)

	got := f.reconcile(m, 9, topLeft)
	if got.Scale != 1 {
		t.Errorf("Scale = %v, want exactly 1", got.Scale)
	}
	if got.Shift != topLeft.Neg() {
		t.Errorf("Shift = %v, want exactly %v", got.Shift, topLeft.Neg())
	}
}

func TestReconcileRegistersLayerPoints(t *testing.T) {
	const projectionZoom = 9
	m := newFakeMap(LatLng{}, 0)
	f := newReferenceFrame(m, LatLng{}, projectionZoom)

	for z := 0.0; z <= 18; z += 0.25 {
		for _, center := range testPlaces {
			m.setView(center, z)
			vp := measureViewport(m, DefaultPadding)
			topLeft := vp.TopLeft(m)
			tr := f.reconcile(m, z, topLeft)

			for _, ll := range testPlaces {
				got := tr.Apply(m.Project(ll, projectionZoom))
				want := m.Project(ll, z).Sub(topLeft)
				if math.Abs(got.X-want.X) > 0.5 || math.Abs(got.Y-want.Y) > 0.5 {
					t.Fatalf("zoom %v center %v: %v lands at %v, want %v", z, center, ll, got, want)
				}
			}
		}
	}
}

func TestReconcileIdempotent(t *testing.T) {
	m := newFakeMap(LatLng{Lat: 10, Lng: 20}, 6.5)
	f := newReferenceFrame(m, LatLng{}, 9)
	topLeft := measureViewport(m, DefaultPadding).TopLeft(m)

	a := f.reconcile(m, 6.5, topLeft)
	b := f.reconcile(m, 6.5, topLeft)
	if a != b {
		t.Errorf("reconcile not idempotent: %v then %v", a, b)
	}
}

func TestReconcileScale(t *testing.T) {
	m := newFakeMap(LatLng{}, 0)
	f := newReferenceFrame(m, LatLng{}, 9)
	assertNear(t, "scale at 10", f.reconcile(m, 10, Point{}).Scale, 2)
	assertNear(t, "scale at 7", f.reconcile(m, 7, Point{}).Scale, 0.25)
}

func TestNewReferenceFrameRestoresRounding(t *testing.T) {
	m := newFakeMap(LatLng{}, 0)
	f := newReferenceFrame(m, LatLng{Lat: 1, Lng: 1}, 9)
	if !m.rounding {
		t.Error("rounding left off after capturing the frame")
	}
	assertPoint(t, "InitialShift", f.InitialShift, m.Project(LatLng{Lat: 1, Lng: 1}, 9))
}

func TestTransformApply(t *testing.T) {
	tr := Transform{Scale: 2, Shift: Pt(-10, 5)}
	assertPoint(t, "Apply", tr.Apply(Pt(3, 4)), Pt(-4, 13))
}
