package willowmap

// Utils is handed to the draw func. Its projections work in the overlay's
// layer space: absolute pixels at the frozen projection zoom.
type Utils struct {
	o *Overlay
}

// LatLngToLayerPoint projects ll into layer space.
func (u *Utils) LatLngToLayerPoint(ll LatLng) Point {
	return u.LatLngToLayerPointAt(ll, u.o.tracker.frame.ProjectionZoom)
}

// LatLngToLayerPointAt projects ll at an explicit zoom.
func (u *Utils) LatLngToLayerPointAt(ll LatLng, zoom float64) Point {
	return u.o.m.Project(ll, zoom)
}

// LayerPointToLatLng is the inverse of LatLngToLayerPoint.
func (u *Utils) LayerPointToLatLng(p Point) LatLng {
	return u.LayerPointToLatLngAt(p, u.o.tracker.frame.ProjectionZoom)
}

// LayerPointToLatLngAt unprojects p at an explicit zoom.
func (u *Utils) LayerPointToLatLngAt(p Point, zoom float64) LatLng {
	return u.o.m.Unproject(p, zoom)
}

// Scale returns the root scale of the current layout. Divide sizes by it to
// keep markers a constant size on screen.
func (u *Utils) Scale() float64 {
	return u.o.transform.Scale
}

// ScaleAt returns the root scale the overlay would use at zoom.
func (u *Utils) ScaleAt(zoom float64) float64 {
	return u.o.m.ZoomScale(zoom, u.o.tracker.frame.ProjectionZoom)
}

// ProjectionZoom returns the frozen zoom level of the layer space.
func (u *Utils) ProjectionZoom() float64 {
	return u.o.tracker.frame.ProjectionZoom
}

// Renderer returns the renderer being drawn into.
func (u *Utils) Renderer() Renderer {
	return u.o.sched.renderer
}

// Root returns the scene-graph root.
func (u *Utils) Root() *Node {
	return u.o.root
}

// Map returns the host map.
func (u *Utils) Map() Map {
	return u.o.m
}

// Container returns the element mounted in the map's pane.
func (u *Utils) Container() *Container {
	return u.o.sched.container
}
