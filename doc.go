// Package willowmap draws a retained-mode 2D scene graph as a layer of an
// interactive slippy map, and keeps it registered with the map's tiles while
// the map pans, zooms and resizes.
//
// The scene is built once in a fixed reference frame: layer pixels of the map
// at a frozen projection zoom. Afterwards the overlay never rebuilds geometry
// for view changes. It only recomputes a scale and shift for the root node
// and moves its surface, so a scene of thousands of markers stays cheap to
// follow.
//
// # Quick start
//
// Create an overlay with a draw func and add it to a host map. The draw func
// places nodes using [Utils.LatLngToLayerPoint] and may restyle them on every
// call, for example to keep markers a constant size on screen:
//
//	o := willowmap.New(func(u *willowmap.Utils, e willowmap.Event) error {
//		root := u.Root()
//		if root.NumChildren() == 0 {
//			p := u.LatLngToLayerPoint(willowmap.LatLng{Lat: 48.85, Lng: 2.35})
//			dot := willowmap.NewCircle("paris", 6, willowmap.Color{R: 1, A: 1})
//			dot.SetPosition(p.X, p.Y)
//			root.AddChild(dot)
//		}
//		for _, n := range root.Children() {
//			n.Radius = 6 / u.Scale()
//		}
//		return nil
//	}, nil, willowmap.DefaultOptions())
//	if o == nil {
//		// no renderer can draw in this environment
//	}
//	err := m.AddLayer(o) // m is a *slippy.Map
//
// Any host implementing [Map] works; package slippy provides an Ebitengine
// one with a Web Mercator projection, zoom animations and scripted gestures.
//
// # Coordinate spaces
//
// Absolute points are projected pixels at some zoom. Layer points are
// absolute points minus the map's pixel origin, which the host rounds and
// only changes on a view reset. Container points are relative to the map's
// visible top-left corner. The overlay surface covers the visible container
// plus [Options.Padding] on each side, expressed in layer space.
//
// # Rendering
//
// Two renderers ship with the package: an Ebitengine GPU renderer and a gg
// software canvas renderer selected by [Options.ForceCanvas]. With
// [Options.DoubleBuffering] layouts draw into a hidden surface on the host's
// next frame and are swapped in afterwards, which hides the redraw during
// pans. Callers can supply their own [RendererFactory].
//
// # Configuration
//
// [Options] can be built in code or loaded from TOML with [LoadConfig]. The
// overlay logs through charmbracelet/log; pass [Options.Logger] to route or
// filter its output.
package willowmap
