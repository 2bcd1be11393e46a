package slippy

import (
	"sync/atomic"

	"github.com/phanxgames/willowmap"
)

// roundingOff is the process-wide switch for pixel rounding of layer points.
// Stored inverted so the zero value means rounding on.
var roundingOff atomic.Bool

// SetRounding turns rounding of layer points on or off for every map in the
// process and returns the previous setting.
func SetRounding(enabled bool) (prev bool) {
	return !roundingOff.Swap(!enabled)
}

// Rounding reports whether layer points are rounded to whole pixels.
func Rounding() bool {
	return !roundingOff.Load()
}

func round(p willowmap.Point) willowmap.Point {
	if roundingOff.Load() {
		return p
	}
	return p.Round()
}
