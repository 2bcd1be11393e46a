package slippy

import (
	"math"
	"testing"

	"github.com/phanxgames/willowmap"
)

const epsilon = 1e-9

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestEPSG3857Scale(t *testing.T) {
	c := EPSG3857{}
	tests := []struct {
		zoom, want float64
	}{
		{0, 256},
		{1, 512},
		{2.5, 256 * math.Exp2(2.5)},
	}
	for _, tt := range tests {
		if got := c.Scale(tt.zoom); !approxEqual(got, tt.want, epsilon) {
			t.Errorf("Scale(%v) = %v, want %v", tt.zoom, got, tt.want)
		}
	}
	if got := (EPSG3857{TileSize: 512}).Scale(0); got != 512 {
		t.Errorf("Scale with 512 px tiles = %v, want 512", got)
	}
}

func TestEPSG3857ProjectKnownPoints(t *testing.T) {
	c := EPSG3857{TileSize: DefaultTileSize}
	tests := []struct {
		name string
		ll   willowmap.LatLng
		want willowmap.Point
	}{
		{"null island", willowmap.LatLng{}, willowmap.Pt(128, 128)},
		{"antimeridian west", willowmap.LatLng{Lng: -180}, willowmap.Pt(0, 128)},
		{"antimeridian east", willowmap.LatLng{Lng: 180}, willowmap.Pt(256, 128)},
		{"north edge", willowmap.LatLng{Lat: maxLatitude}, willowmap.Pt(128, 0)},
		{"clamped pole", willowmap.LatLng{Lat: -90}, willowmap.Pt(128, 256)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Project(tt.ll, 0)
			if !approxEqual(got.X, tt.want.X, 1e-6) || !approxEqual(got.Y, tt.want.Y, 1e-6) {
				t.Errorf("Project = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEPSG3857RoundTrip(t *testing.T) {
	c := EPSG3857{}
	for _, zoom := range []float64{0, 3.7, 12, 18} {
		for _, ll := range []willowmap.LatLng{
			{Lat: 48.8566, Lng: 2.3522},
			{Lat: -33.8688, Lng: 151.2093},
			{Lat: 70.5, Lng: -160.25},
		} {
			got := c.Unproject(c.Project(ll, zoom), zoom)
			if !approxEqual(got.Lat, ll.Lat, 1e-9) || !approxEqual(got.Lng, ll.Lng, 1e-9) {
				t.Errorf("zoom %v: round trip of %v = %v", zoom, ll, got)
			}
		}
	}
}

func TestEPSG3857ScalesLinearlyWithZoom(t *testing.T) {
	c := EPSG3857{}
	ll := willowmap.LatLng{Lat: 35.6762, Lng: 139.6503}
	a := c.Project(ll, 4)
	b := c.Project(ll, 6)
	if !approxEqual(b.X, a.X*4, 1e-9) || !approxEqual(b.Y, a.Y*4, 1e-9) {
		t.Errorf("Project at z6 = %v, want 4x %v", b, a)
	}
}
