package willowmap

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
)

// DrawFunc is called whenever the overlay lays out or is asked to redraw. It
// receives the overlay utilities and the event that caused the draw, and
// typically adds, moves or restyles nodes under u.Root(). The overlay renders
// the root after DrawFunc returns nil. Host pixel rounding is off while
// DrawFunc runs.
type DrawFunc func(u *Utils, e Event) error

// Overlay renders a scene graph in registration with a host map. The scene is
// built once in layer pixels at a frozen projection zoom; as the map pans and
// zooms the overlay only rescales and repositions the root node and moves its
// surface.
//
// Overlay implements Layer; attach it with the host's layer API (for example
// slippy.Map.AddLayer) and detach it the same way.
type Overlay struct {
	draw  DrawFunc
	root  *Node
	opts  Options
	log   *log.Logger
	utils *Utils

	m         Map
	tracker   tracker
	sched     scheduler
	transform Transform
}

var _ Layer = (*Overlay)(nil)

// New creates an overlay that draws with draw into root. A nil root gets a
// fresh container. New panics if draw is nil or opts fail validation, and
// returns nil when the renderer factory cannot draw in this environment.
func New(draw DrawFunc, root *Node, opts Options) *Overlay {
	if draw == nil {
		panic("willowmap: nil draw func")
	}
	if err := opts.Validate(); err != nil {
		panic(err.Error())
	}
	if opts.Renderers == nil {
		opts.Renderers = AutoRenderers{}
	}
	if !opts.Renderers.Supported(opts.rendererConfig()) {
		return nil
	}
	if root == nil {
		root = NewContainer("overlay")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default().WithPrefix("willowmap")
	}
	logger := opts.Logger
	if opts.DoubleBuffering && opts.ForceCanvas {
		logger.Warn("double buffering needs a GPU renderer; disabled")
		opts.DoubleBuffering = false
	}
	o := &Overlay{
		draw: draw,
		root: root,
		opts: opts,
		log:  logger,
	}
	o.tracker.padding = opts.Padding
	o.utils = &Utils{o: o}
	return o
}

// Mount implements Layer. Surfaces are created on the first mount and reused
// afterwards; the reference frame is captured once for the overlay's lifetime.
func (o *Overlay) Mount(m Map) error {
	if m == nil {
		return ErrNilMap
	}
	if o.sched.container == nil {
		o.sched.init(o.opts.Renderers, o.opts.rendererConfig(), o.opts.DoubleBuffering)
	}
	m.OverlayPane().Append(o.sched.container)
	o.m = m

	zoom := o.tracker.frame.ProjectionZoom
	if !o.tracker.hasFrame {
		zoom = DefaultProjectionZoom(m)
		if o.opts.ProjectionZoom != nil {
			zoom = o.opts.ProjectionZoom(m)
		}
	}
	o.tracker.mount(m, zoom)
	o.log.Debug("mounted", "projectionZoom", zoom, "doubleBuffering", o.sched.double)
	return o.update(Event{Type: EventAdd, Center: m.Center(), Zoom: m.Zoom()})
}

// Unmount implements Layer. It abandons a pending frame and removes the
// surface from the pane. Surfaces are kept so that mounting again is cheap;
// call Dispose to release them.
func (o *Overlay) Unmount() {
	if o.m == nil {
		return
	}
	o.cancelPending()
	o.m.OverlayPane().Remove(o.sched.container)
	o.tracker.unmount()
	o.m = nil
	o.log.Debug("unmounted")
}

// HandleEvent implements Layer.
func (o *Overlay) HandleEvent(e Event) error {
	if o.m == nil {
		return nil
	}
	switch e.Type {
	case EventZoomAnim:
		offset, scale := o.tracker.animate(o.m, e.Center, e.Zoom)
		o.sched.container.SetTransform(offset, scale)
	case EventZoom:
		if o.tracker.measured {
			offset, scale := o.tracker.containerTransform(o.m, o.m.Center(), o.m.Zoom())
			o.sched.container.SetTransform(offset, scale)
		}
	case EventZoomEnd:
		o.tracker.zoomEnd()
	case EventMove:
		if o.opts.ShouldRedrawOnMove != nil && o.opts.ShouldRedrawOnMove(e) {
			return o.update(e)
		}
	case EventMoveEnd:
		return o.update(e)
	case EventViewReset:
		o.tracker.zoomEnd()
		return o.update(e)
	}
	return nil
}

// Render implements Layer; it is Redraw.
func (o *Overlay) Render(payload any) error {
	return o.Redraw(payload)
}

// Redraw calls the draw func again with the current transform and renders,
// without measuring the view. Use it for scene changes unrelated to the
// viewport, such as a data refresh. The event passed to the draw func is an
// EventRedraw carrying payload.
func (o *Overlay) Redraw(payload any) error {
	if o.m == nil {
		return ErrNotAttached
	}
	r := o.sched.renderer
	e := Event{Type: EventRedraw, Center: o.tracker.viewport.Center, Zoom: o.tracker.viewport.Zoom, Payload: payload}
	if o.transform.Scale == 0 {
		// The first layout is still waiting for its frame.
		o.transform = o.reconcile(o.tracker.viewport)
	}
	err := o.drawInto(r, o.transform, e)
	return errors.Join(err, flush(r))
}

// Dispose releases the overlay's surfaces. The root node is left untouched.
// The overlay must be unmounted first.
func (o *Overlay) Dispose() {
	if o.m != nil {
		o.Unmount()
	}
	if o.sched.renderer != nil {
		o.sched.renderer.Dispose()
	}
	if o.sched.aux != nil {
		o.sched.aux.Dispose()
	}
	o.sched = scheduler{}
}

// update is the settle path: measure the view, then lay out.
func (o *Overlay) update(e Event) error {
	vp, ok := o.tracker.settle(o.m)
	if !ok {
		o.log.Debug("layout skipped during zoom animation", "event", e.Type)
		return nil
	}
	return o.schedule(vp, e)
}

// layout reconciles the transform for vp and draws into r.
func (o *Overlay) layout(r Renderer, vp Viewport, e Event) error {
	o.transform = o.reconcile(vp)
	return o.drawInto(r, o.transform, e)
}

func (o *Overlay) reconcile(vp Viewport) Transform {
	defer suppressRounding(o.m).release()
	return o.tracker.frame.reconcile(o.m, vp.Zoom, vp.TopLeft(o.m))
}

// drawInto applies t to the root, runs the draw func and renders into r. The
// rounding guard is released even if the draw func panics.
func (o *Overlay) drawInto(r Renderer, t Transform, e Event) error {
	defer suppressRounding(o.m).release()
	o.root.SetScale(t.Scale, t.Scale)
	o.root.SetPosition(t.Shift.X, t.Shift.Y)
	if err := o.draw(o.utils, e); err != nil {
		return fmt.Errorf("willowmap: draw on %s: %w", e.Type, err)
	}
	return r.Render(o.root)
}

// Root returns the scene-graph root the overlay renders.
func (o *Overlay) Root() *Node {
	return o.root
}

// Map returns the map the overlay is mounted on, or nil.
func (o *Overlay) Map() Map {
	return o.m
}

// Renderer returns the renderer that receives the next layout, or nil
// before the first mount.
func (o *Overlay) Renderer() Renderer {
	return o.sched.renderer
}

// Container returns the element mounted in the map's pane, or nil before the
// first mount.
func (o *Overlay) Container() *Container {
	return o.sched.container
}

// Transform returns the transform applied by the most recent layout.
func (o *Overlay) Transform() Transform {
	return o.transform
}

// Viewport returns the view measured by the most recent layout.
func (o *Overlay) Viewport() Viewport {
	return o.tracker.viewport
}

// Frame returns the reference frame; it is zero until the first mount.
func (o *Overlay) Frame() ReferenceFrame {
	return o.tracker.frame
}

// Utils returns the utilities passed to the draw func.
func (o *Overlay) Utils() *Utils {
	return o.utils
}
