package willowmap

import (
	"errors"
	"fmt"
)

// scheduler owns the overlay's surfaces. In single-buffer mode every layout
// draws straight into the one visible surface. In double-buffer mode layouts
// alternate between two surfaces: the hidden one is drawn on the next frame
// and only then made visible.
type scheduler struct {
	double    bool
	renderer  Renderer // receives the next layout
	aux       Renderer // the other surface in double-buffer mode
	container *Container
	pending   FrameID
}

func (s *scheduler) init(f RendererFactory, cfg RendererConfig, double bool) {
	s.double = double
	s.renderer = f.NewRenderer(cfg)
	s.renderer.View().Visible = true
	views := []*View{s.renderer.View()}
	if double {
		s.aux = f.NewRenderer(cfg)
		s.aux.View().Visible = false
		views = append(views, s.aux.View())
	}
	s.container = newContainer(views...)
}

// schedule lays out vp. Single-buffer layouts complete before it returns;
// double-buffer layouts run on the map's next frame.
func (o *Overlay) schedule(vp Viewport, e Event) (err error) {
	s := &o.sched
	if !s.double {
		o.resize(s.renderer, vp)
		defer func() {
			err = errors.Join(err, flush(s.renderer))
			o.place(vp)
		}()
		return o.layout(s.renderer, vp, e)
	}

	// A layout still waiting for its frame already swapped in the hidden
	// surface; the newer one takes over that frame instead of swapping back
	// onto the visible surface.
	if s.pending != 0 {
		o.m.CancelFrame(s.pending)
		s.pending = 0
		o.log.Debug("superseded pending frame", "event", e.Type)
	} else {
		s.renderer, s.aux = s.aux, s.renderer
	}
	o.resize(s.renderer, vp)

	active, hidden := s.renderer, s.aux
	s.pending = o.m.RequestFrame(func() error {
		s.pending = 0
		if o.m == nil {
			return nil
		}
		return o.present(active, hidden, vp, e)
	})
	return nil
}

// present draws into the hidden surface and flips visibility once the draw
// has reached it. The flip also happens when the draw callback fails or
// panics, so exactly one surface stays visible.
func (o *Overlay) present(active, hidden Renderer, vp Viewport, e Event) (err error) {
	defer func() {
		err = errors.Join(err, flush(active))
		active.View().Visible = true
		hidden.View().Visible = false
		o.place(vp)
	}()
	return o.layout(active, vp, e)
}

// place moves the container onto vp. A zoom animation that started after vp
// was measured keeps scaling the new surface.
func (o *Overlay) place(vp Viewport) {
	c := o.sched.container
	c.SetPosition(vp.PixelBounds.Min)
	if offset, scale, ok := o.tracker.animating(o.m); ok {
		c.SetTransform(offset, scale)
	}
}

func flush(r Renderer) error {
	if err := r.Flush(); err != nil {
		return fmt.Errorf("willowmap: flush: %w", err)
	}
	return nil
}

// cancelPending abandons a frame that has not run yet.
func (o *Overlay) cancelPending() {
	if o.sched.pending == 0 {
		return
	}
	o.m.CancelFrame(o.sched.pending)
	o.sched.pending = 0
	o.log.Debug("cancelled pending frame")
}

func (o *Overlay) resize(r Renderer, vp Viewport) {
	size := vp.PixelBounds.Size()
	if !needsResize(r, size) {
		return
	}
	r.Resize(int(size.X), int(size.Y))
	o.log.Debug("resized surface", "width", size.X, "height", size.Y, "gpu", r.GPU())
}
