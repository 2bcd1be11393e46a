package willowmap

import (
	"image/color"
	"math"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default fill for shape nodes.
var ColorWhite = Color{1, 1, 1, 1}

// Point is a 2D point or offset in pixel space. Depending on context it is a
// container point (relative to the map's top-left corner), a layer point
// (relative to the map's pixel origin) or an absolute projected point.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Mul returns p scaled by k.
func (p Point) Mul(k float64) Point {
	return Point{p.X * k, p.Y * k}
}

// Neg returns -p.
func (p Point) Neg() Point {
	return Point{-p.X, -p.Y}
}

// Round rounds both coordinates to the nearest integer, half away from zero.
func (p Point) Round() Point {
	return Point{math.Round(p.X), math.Round(p.Y)}
}

// LatLng is a geographic coordinate in degrees.
type LatLng struct {
	Lat, Lng float64
}

// Bounds is an axis-aligned pixel rectangle spanning [Min, Max].
type Bounds struct {
	Min, Max Point
}

// Size returns the width and height of the bounds as a Point.
func (b Bounds) Size() Point {
	return b.Max.Sub(b.Min)
}

// Empty reports whether b has no area.
func (b Bounds) Empty() bool {
	return b.Max.X <= b.Min.X || b.Max.Y <= b.Min.Y
}

// toRGBA converts a Color to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
