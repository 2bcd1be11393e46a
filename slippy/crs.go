package slippy

import (
	"math"

	"github.com/phanxgames/willowmap"
)

const (
	earthRadius = 6378137.0
	// maxLatitude is the latitude at which the square Web Mercator world ends.
	maxLatitude = 85.0511287798
	// DefaultTileSize is the pixel size of a tile at an integer zoom.
	DefaultTileSize = 256
)

// CRS converts between geographic coordinates and absolute pixel coordinates
// at a zoom level.
type CRS interface {
	Project(ll willowmap.LatLng, zoom float64) willowmap.Point
	Unproject(p willowmap.Point, zoom float64) willowmap.LatLng
	// Scale returns the world size in pixels at zoom.
	Scale(zoom float64) float64
}

// EPSG3857 is the spherical Web Mercator CRS used by common tile servers.
// The world spans TileSize x 2^zoom pixels with (0, 0) at the north-west
// corner.
type EPSG3857 struct {
	TileSize float64
}

// Scale implements CRS.
func (c EPSG3857) Scale(zoom float64) float64 {
	return c.tileSize() * math.Exp2(zoom)
}

func (c EPSG3857) tileSize() float64 {
	if c.TileSize <= 0 {
		return DefaultTileSize
	}
	return c.TileSize
}

// Project implements CRS.
func (c EPSG3857) Project(ll willowmap.LatLng, zoom float64) willowmap.Point {
	lat := math.Max(math.Min(ll.Lat, maxLatitude), -maxLatitude)
	x := earthRadius * ll.Lng * math.Pi / 180
	sin := math.Sin(lat * math.Pi / 180)
	y := earthRadius * math.Log((1+sin)/(1-sin)) / 2

	k := 0.5 / (math.Pi * earthRadius)
	s := c.Scale(zoom)
	return willowmap.Point{X: s * (k*x + 0.5), Y: s * (-k*y + 0.5)}
}

// Unproject implements CRS.
func (c EPSG3857) Unproject(p willowmap.Point, zoom float64) willowmap.LatLng {
	k := 0.5 / (math.Pi * earthRadius)
	s := c.Scale(zoom)
	x := (p.X/s - 0.5) / k
	y := (p.Y/s - 0.5) / -k
	return willowmap.LatLng{
		Lat: (2*math.Atan(math.Exp(y/earthRadius)) - math.Pi/2) * 180 / math.Pi,
		Lng: x * 180 / math.Pi / earthRadius,
	}
}
