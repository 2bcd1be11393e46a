// Package slippy is a tile-map viewport for Ebitengine that hosts willowmap
// overlays. It keeps Leaflet-style coordinate spaces: absolute pixels of the
// projected world, layer points relative to a pixel origin that is re-chosen
// on every view reset, and container points relative to the top-left corner
// of the map on screen.
//
// A Map does not load tiles; it draws a tile grid as a backdrop.
package slippy

import (
	"errors"
	"image/color"
	"math"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/phanxgames/willowmap"
)

// NoMaxZoom marks a map without an upper zoom bound.
var NoMaxZoom = math.Inf(1)

// Config configures a Map.
type Config struct {
	Width, Height int
	Center        willowmap.LatLng
	Zoom          float64
	MinZoom       float64
	// MaxZoom may be NoMaxZoom.
	MaxZoom float64
	// CRS defaults to EPSG3857 with 256 px tiles.
	CRS CRS

	Background color.Color
	GridColor  color.Color
	Logger     *log.Logger
}

// DefaultConfig returns an 800x600 map of the whole world.
func DefaultConfig() Config {
	return Config{
		Width:      800,
		Height:     600,
		Zoom:       2,
		MinZoom:    0,
		MaxZoom:    18,
		Background: color.RGBA{0xdd, 0xe6, 0xee, 0xff},
		GridColor:  color.RGBA{0xb8, 0xc4, 0xd0, 0xff},
	}
}

// Map is a pannable, zoomable map viewport. It is not safe for concurrent
// use; drive it from the Ebitengine game loop.
type Map struct {
	cfg Config
	crs CRS
	log *log.Logger

	center      willowmap.LatLng
	zoom        float64
	size        willowmap.Point
	pixelOrigin willowmap.Point
	// panePos is the container-space offset of layer space; it changes as the
	// map pans and returns to zero on every view reset.
	panePos willowmap.Point

	pane     *Pane
	layers   []willowmap.Layer
	handlers map[willowmap.EventType][]handlerEntry
	nextID   int

	frames    []frame
	nextFrame willowmap.FrameID

	anim     *zoomAnim
	dragging bool
}

var (
	_ willowmap.Map          = (*Map)(nil)
	_ willowmap.ZoomAnimator = (*Map)(nil)
)

type handlerEntry struct {
	id int
	fn func(willowmap.Event) error
}

type frame struct {
	id willowmap.FrameID
	fn func() error
}

// New creates a map showing cfg.Center at cfg.Zoom.
func New(cfg Config) *Map {
	if cfg.CRS == nil {
		cfg.CRS = EPSG3857{TileSize: DefaultTileSize}
	}
	if cfg.MaxZoom < cfg.MinZoom {
		cfg.MaxZoom = cfg.MinZoom
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("slippy")
	}
	m := &Map{
		cfg:      cfg,
		crs:      cfg.CRS,
		log:      logger,
		size:     willowmap.Pt(float64(cfg.Width), float64(cfg.Height)),
		pane:     &Pane{},
		handlers: make(map[willowmap.EventType][]handlerEntry),
	}
	m.resetView(cfg.Center, m.clampZoom(cfg.Zoom))
	return m
}

// --- willowmap.Map ---

// Project implements willowmap.Map.
func (m *Map) Project(ll willowmap.LatLng, zoom float64) willowmap.Point {
	return m.crs.Project(ll, zoom)
}

// Unproject implements willowmap.Map.
func (m *Map) Unproject(p willowmap.Point, zoom float64) willowmap.LatLng {
	return m.crs.Unproject(p, zoom)
}

// ZoomScale implements willowmap.Map.
func (m *Map) ZoomScale(toZoom, fromZoom float64) float64 {
	return m.crs.Scale(toZoom) / m.crs.Scale(fromZoom)
}

// Center returns the geographic point at the middle of the map.
func (m *Map) Center() willowmap.LatLng {
	return m.center
}

// Zoom returns the settled zoom; it does not change during a zoom animation.
func (m *Map) Zoom() float64 {
	return m.zoom
}

func (m *Map) MinZoom() float64 { return m.cfg.MinZoom }
func (m *Map) MaxZoom() float64 { return m.cfg.MaxZoom }

// Size returns the map's size on screen.
func (m *Map) Size() willowmap.Point {
	return m.size
}

// PixelOrigin implements willowmap.Map.
func (m *Map) PixelOrigin() willowmap.Point {
	return m.pixelOrigin
}

// ContainerPointToLayerPoint implements willowmap.Map.
func (m *Map) ContainerPointToLayerPoint(p willowmap.Point) willowmap.Point {
	return p.Sub(m.panePos)
}

// LayerPointToContainerPoint is the inverse of ContainerPointToLayerPoint.
func (m *Map) LayerPointToContainerPoint(p willowmap.Point) willowmap.Point {
	return p.Add(m.panePos)
}

// LatLngToLayerPoint implements willowmap.Map. The projected point is rounded
// to whole pixels unless rounding is switched off.
func (m *Map) LatLngToLayerPoint(ll willowmap.LatLng) willowmap.Point {
	return round(m.Project(ll, m.zoom)).Sub(m.pixelOrigin)
}

// LayerPointToLatLng is the inverse of LatLngToLayerPoint.
func (m *Map) LayerPointToLatLng(p willowmap.Point) willowmap.LatLng {
	return m.Unproject(p.Add(m.pixelOrigin), m.zoom)
}

// ContainerPointToLatLng returns the geographic point under a screen position.
func (m *Map) ContainerPointToLatLng(p willowmap.Point) willowmap.LatLng {
	return m.LayerPointToLatLng(m.ContainerPointToLayerPoint(p))
}

// OverlayPane implements willowmap.Map.
func (m *Map) OverlayPane() willowmap.Pane {
	return m.pane
}

// SetRounding implements willowmap.Map; see the package-level SetRounding.
func (m *Map) SetRounding(enabled bool) bool {
	return SetRounding(enabled)
}

// RequestFrame implements willowmap.Map. Callbacks run at the start of the
// next Update, in request order.
func (m *Map) RequestFrame(fn func() error) willowmap.FrameID {
	m.nextFrame++
	m.frames = append(m.frames, frame{id: m.nextFrame, fn: fn})
	return m.nextFrame
}

// CancelFrame implements willowmap.Map.
func (m *Map) CancelFrame(id willowmap.FrameID) {
	for i, f := range m.frames {
		if f.id == id {
			m.frames = append(m.frames[:i], m.frames[i+1:]...)
			return
		}
	}
}

// PendingFrames returns the number of frame callbacks waiting to run.
func (m *Map) PendingFrames() int {
	return len(m.frames)
}

// --- Layers and events ---

// AddLayer mounts l and routes every map event to it until RemoveLayer.
// Adding a layer twice is a no-op.
func (m *Map) AddLayer(l willowmap.Layer) error {
	if m.HasLayer(l) {
		return nil
	}
	m.layers = append(m.layers, l)
	if err := l.Mount(m); err != nil {
		m.removeLayer(l)
		return err
	}
	return nil
}

// RemoveLayer unmounts l. No-op if l is not on the map.
func (m *Map) RemoveLayer(l willowmap.Layer) {
	if m.removeLayer(l) {
		l.Unmount()
	}
}

// HasLayer reports whether l is on the map.
func (m *Map) HasLayer(l willowmap.Layer) bool {
	for _, x := range m.layers {
		if x == l {
			return true
		}
	}
	return false
}

func (m *Map) removeLayer(l willowmap.Layer) bool {
	for i, x := range m.layers {
		if x == l {
			m.layers = append(m.layers[:i], m.layers[i+1:]...)
			return true
		}
	}
	return false
}

// On registers fn for events of type t and returns a handle for Off.
func (m *Map) On(t willowmap.EventType, fn func(willowmap.Event) error) int {
	m.nextID++
	m.handlers[t] = append(m.handlers[t], handlerEntry{id: m.nextID, fn: fn})
	return m.nextID
}

// Off removes a handler registered with On.
func (m *Map) Off(t willowmap.EventType, id int) {
	hs := m.handlers[t]
	for i, h := range hs {
		if h.id == id {
			m.handlers[t] = append(hs[:i], hs[i+1:]...)
			return
		}
	}
}

// fire delivers e to every layer and then to the handlers. Every receiver
// runs even when an earlier one fails; failures are joined.
func (m *Map) fire(e willowmap.Event) error {
	var errs []error
	for _, l := range append([]willowmap.Layer(nil), m.layers...) {
		if err := l.HandleEvent(e); err != nil {
			errs = append(errs, err)
		}
	}
	for _, h := range append([]handlerEntry(nil), m.handlers[e.Type]...) {
		if err := h.fn(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Map) settled(t willowmap.EventType) willowmap.Event {
	return willowmap.Event{Type: t, Center: m.center, Zoom: m.zoom}
}

// --- View changes ---

func (m *Map) clampZoom(z float64) float64 {
	return math.Max(m.cfg.MinZoom, math.Min(z, m.cfg.MaxZoom))
}

// resetView recentres layer space on center at zoom.
func (m *Map) resetView(center willowmap.LatLng, zoom float64) {
	m.center = center
	m.zoom = zoom
	m.panePos = willowmap.Point{}
	m.pixelOrigin = m.Project(center, zoom).Sub(m.size.Mul(0.5)).Round()
}

// SetView jumps to center at zoom without animation. Layer space is reset,
// so returning to an earlier view reproduces its layer coordinates exactly.
// A running zoom animation is abandoned and ends with a zoomend even when
// the settled zoom is unchanged.
func (m *Map) SetView(center willowmap.LatLng, zoom float64) error {
	abandoned := m.dropAnim()
	zoom = m.clampZoom(zoom)
	zoomChanged := zoom != m.zoom
	m.resetView(center, zoom)
	m.log.Debug("view reset", "lat", center.Lat, "lng", center.Lng, "zoom", zoom)

	var errs []error
	if zoomChanged {
		errs = append(errs, m.fire(m.settled(willowmap.EventZoom)))
	}
	errs = append(errs, m.fire(m.settled(willowmap.EventMove)))
	if zoomChanged || abandoned {
		errs = append(errs, m.fire(m.settled(willowmap.EventZoomEnd)))
	}
	errs = append(errs, m.fire(m.settled(willowmap.EventMoveEnd)))
	return errors.Join(errs...)
}

// FlyTo jumps to center at zoom and announces it as a view reset.
func (m *Map) FlyTo(center willowmap.LatLng, zoom float64) error {
	abandoned := m.dropAnim()
	m.resetView(center, m.clampZoom(zoom))
	var errs []error
	if abandoned {
		errs = append(errs, m.fire(m.settled(willowmap.EventZoomEnd)))
	}
	errs = append(errs, m.fire(m.settled(willowmap.EventViewReset)))
	return errors.Join(errs...)
}

// PanBy moves the view by offset pixels and settles.
func (m *Map) PanBy(offset willowmap.Point) error {
	if err := m.DragBy(offset.Neg()); err != nil {
		return err
	}
	return m.EndDrag()
}

// DragBy moves the map content by delta pixels, as a pointer drag does,
// emitting a move event. Call EndDrag when the gesture finishes.
func (m *Map) DragBy(delta willowmap.Point) error {
	m.dragging = true
	m.panePos = m.panePos.Add(delta.Round())
	m.center = m.ContainerPointToLatLng(m.size.Mul(0.5))
	return m.fire(m.settled(willowmap.EventMove))
}

// EndDrag settles a drag started with DragBy.
func (m *Map) EndDrag() error {
	if !m.dragging {
		return nil
	}
	m.dragging = false
	return m.fire(m.settled(willowmap.EventMoveEnd))
}

// Resize changes the on-screen size of the map, keeping layer space.
func (m *Map) Resize(w, h int) error {
	m.size = willowmap.Pt(float64(w), float64(h))
	m.center = m.ContainerPointToLatLng(m.size.Mul(0.5))
	return errors.Join(
		m.fire(m.settled(willowmap.EventResize)),
		m.fire(m.settled(willowmap.EventMoveEnd)),
	)
}

// --- Loop ---

// Update advances a zoom animation by dt seconds and runs the frame
// callbacks requested before this call. Errors from callbacks are joined.
func (m *Map) Update(dt float32) error {
	var errs []error
	if m.anim != nil {
		errs = append(errs, m.stepZoom(dt))
	}
	frames := m.frames
	m.frames = nil
	for _, f := range frames {
		errs = append(errs, f.fn())
	}
	return errors.Join(errs...)
}

// Draw draws the tile grid and every mounted element onto screen.
func (m *Map) Draw(screen *ebiten.Image) {
	if m.cfg.Background != nil {
		screen.Fill(m.cfg.Background)
	}
	center, zoom := m.center, m.zoom
	if m.anim != nil {
		center, zoom = m.anim.center, m.anim.zoom
	}
	m.drawGrid(screen, center, zoom)

	var geo ebiten.GeoM
	geo.Translate(m.panePos.X, m.panePos.Y)
	m.pane.draw(screen, geo)
}

// drawGrid strokes the tile boundaries of the view at center/zoom.
func (m *Map) drawGrid(dst *ebiten.Image, center willowmap.LatLng, zoom float64) {
	if m.cfg.GridColor == nil {
		return
	}
	span := m.crs.Scale(zoom) / math.Exp2(math.Floor(zoom))
	if span < 8 {
		return
	}
	topLeft := m.Project(center, zoom).Sub(m.size.Mul(0.5))
	x0 := math.Ceil(topLeft.X/span)*span - topLeft.X
	y0 := math.Ceil(topLeft.Y/span)*span - topLeft.Y
	w, h := float32(m.size.X), float32(m.size.Y)
	for x := x0; x < m.size.X; x += span {
		vector.StrokeLine(dst, float32(x), 0, float32(x), h, 1, m.cfg.GridColor, false)
	}
	for y := y0; y < m.size.Y; y += span {
		vector.StrokeLine(dst, 0, float32(y), w, float32(y), 1, m.cfg.GridColor, false)
	}
}
