package willowmap

import "github.com/hajimehoshi/ebiten/v2"

// Map is the host map an overlay attaches to. The slippy package provides an
// implementation; any tile map exposing the same operations can host an
// overlay.
type Map interface {
	// Project converts a geographic point to absolute pixel coordinates at zoom.
	Project(ll LatLng, zoom float64) Point
	// Unproject is the inverse of Project.
	Unproject(p Point, zoom float64) LatLng
	// ZoomScale returns the ratio of pixel densities between two zoom levels.
	ZoomScale(toZoom, fromZoom float64) float64

	Center() LatLng
	Zoom() float64
	MinZoom() float64
	// MaxZoom may be +Inf when the map has no upper bound.
	MaxZoom() float64
	// Size is the visible container size in pixels.
	Size() Point
	// PixelOrigin is the absolute projected point of the layer-space origin.
	PixelOrigin() Point
	ContainerPointToLayerPoint(p Point) Point
	LatLngToLayerPoint(ll LatLng) Point

	// OverlayPane is the layer elements are mounted into.
	OverlayPane() Pane

	// SetRounding switches the map's pixel rounding on or off and returns the
	// previous setting. The setting is shared by every map in the process.
	SetRounding(enabled bool) (prev bool)

	// RequestFrame schedules fn to run on the next display refresh tick.
	RequestFrame(fn func() error) FrameID
	// CancelFrame drops a frame scheduled by RequestFrame. Unknown or already
	// run IDs are ignored.
	CancelFrame(id FrameID)
}

// ZoomAnimator is implemented by hosts that can report whether a zoom
// animation is running. The overlay uses it to leave its animating state when
// the host drops an animation without announcing a zoom end.
type ZoomAnimator interface {
	AnimatingZoom() bool
}

// FrameID identifies a callback scheduled with Map.RequestFrame. Zero is never
// a valid ID.
type FrameID uint64

// Pane is a mount point for drawable elements, drawn in layer space.
type Pane interface {
	Append(el Element)
	Remove(el Element)
}

// Element is something a Pane can draw. geo maps the element's layer-space
// coordinates to the destination image.
type Element interface {
	DrawElement(dst *ebiten.Image, geo ebiten.GeoM)
}

// Layer is the plugin contract between a host map and something it renders.
type Layer interface {
	// Mount is called when the layer is added to m.
	Mount(m Map) error
	// Unmount is called when the layer is removed from its map.
	Unmount()
	// HandleEvent receives every viewport event the map emits while mounted.
	HandleEvent(e Event) error
	// Render redraws the layer's content without a viewport change.
	Render(payload any) error
}

// EventType identifies a kind of map event.
type EventType uint8

const (
	EventMove      EventType = iota // fires continuously while the map pans
	EventMoveEnd                    // fires when a pan or zoom settles
	EventZoom                       // fires continuously while the zoom changes
	EventZoomAnim                   // fires per frame of an animated zoom with the animation's center and zoom
	EventZoomEnd                    // fires when a zoom change settles
	EventViewReset                  // fires when the view jumps without animation (fly, hard reset)
	EventResize                     // fires when the map container changes size
	EventRedraw                     // emitted by Overlay.Redraw for caller-driven scene updates
	EventAdd                        // emitted by an overlay for its first layout after mounting
)

var eventNames = [...]string{
	EventMove:      "move",
	EventMoveEnd:   "moveend",
	EventZoom:      "zoom",
	EventZoomAnim:  "zoomanim",
	EventZoomEnd:   "zoomend",
	EventViewReset: "viewreset",
	EventResize:    "resize",
	EventRedraw:    "redraw",
	EventAdd:       "add",
}

func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// Event is a map event. Center and Zoom are set for EventZoomAnim (the
// animation's current target) and for settle events (the map's view once
// settled). Payload carries caller data for EventRedraw.
type Event struct {
	Type    EventType
	Center  LatLng
	Zoom    float64
	Payload any
}
