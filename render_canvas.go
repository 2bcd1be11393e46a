package willowmap

import (
	"image"
	"image/draw"

	"github.com/gogpu/gg"
	"github.com/hajimehoshi/ebiten/v2"
)

// canvasRenderer rasterizes on the CPU with gg and uploads the result into
// an Ebitengine image for compositing. Sprite nodes are not drawn.
type canvasRenderer struct {
	cfg  RendererConfig
	dc   *gg.Context
	view View
	w, h int
}

func newCanvasRenderer(cfg RendererConfig) *canvasRenderer {
	return &canvasRenderer{cfg: cfg, view: View{resolution: cfg.resolution()}}
}

func (r *canvasRenderer) Resize(w, h int) {
	pw, ph, eff := backingSize(w, h, r.cfg.resolution())
	switch {
	case r.dc == nil:
		r.dc = gg.NewContext(pw, ph)
	case r.cfg.PreserveDrawingBuffer:
		if err := r.dc.FlushGPU(); err != nil {
			r.cfg.logger().Error("canvas flush before resize", "err", err)
		}
		prev := r.dc.Image()
		dst := image.NewRGBA(image.Rect(0, 0, pw, ph))
		draw.Draw(dst, prev.Bounds(), prev, image.Point{}, draw.Src)
		r.closeContext()
		r.dc = gg.NewContextForImage(dst)
	default:
		if err := r.dc.Resize(pw, ph); err != nil {
			r.cfg.logger().Warn("canvas resize, reallocating", "err", err)
			r.closeContext()
			r.dc = gg.NewContext(pw, ph)
		}
	}
	r.view.resolution = eff
	r.view.Width, r.view.Height = w, h
	r.w, r.h = w, h
	r.upload()
}

func (r *canvasRenderer) Size() (int, int) {
	return r.w, r.h
}

func (r *canvasRenderer) Render(root *Node) error {
	if r.dc == nil || root == nil {
		return nil
	}
	if r.cfg.ClearBeforeRender {
		r.dc.Clear()
	}
	res := r.view.resolution
	base := [6]float64{res, 0, 0, res, 0, 0}
	var err error
	walkVisible(root, func(n *Node) {
		if err != nil {
			return
		}
		m := multiplyAffine(base, n.worldTransform)
		r.dc.SetTransform(gg.Matrix{A: m[0], B: m[2], C: m[4], D: m[1], E: m[3], F: m[5]})
		switch n.Type {
		case NodeTypeCircle:
			r.dc.DrawCircle(0, 0, n.Radius)
		case NodeTypeRect:
			r.dc.DrawRectangle(0, 0, n.Width, n.Height)
		default:
			return
		}
		c := n.Color
		r.dc.SetRGBA(c.R, c.G, c.B, c.A*n.worldAlpha)
		err = r.dc.Fill()
	})
	r.dc.Identity()
	return err
}

// upload copies the canvas pixels into the view image, reallocating the
// image only when the backing size changed.
func (r *canvasRenderer) upload() {
	pm := r.dc.ResizeTarget()
	pw, ph := pm.Width(), pm.Height()
	if img := r.view.image; img == nil || img.Bounds().Dx() != pw || img.Bounds().Dy() != ph {
		if img != nil {
			img.Deallocate()
		}
		r.view.image = ebiten.NewImage(pw, ph)
	}
	r.view.image.WritePixels(pm.Data())
}

// Flush finishes pending accelerator work and publishes the pixels to the view.
func (r *canvasRenderer) Flush() error {
	if r.dc == nil {
		return nil
	}
	if err := r.dc.FlushGPU(); err != nil {
		return err
	}
	r.upload()
	return nil
}

func (r *canvasRenderer) View() *View {
	return &r.view
}

func (r *canvasRenderer) GPU() bool {
	return false
}

func (r *canvasRenderer) Dispose() {
	if r.dc != nil {
		r.closeContext()
		r.dc = nil
	}
	if r.view.image != nil {
		r.view.image.Deallocate()
		r.view.image = nil
	}
	r.w, r.h = 0, 0
}

func (r *canvasRenderer) closeContext() {
	if err := r.dc.Close(); err != nil {
		r.cfg.logger().Error("canvas close", "err", err)
	}
}
