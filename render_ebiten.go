package willowmap

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// maxSurfaceSize caps either side of a backing image. Surfaces that would be
// larger at the requested resolution get a lower effective resolution.
const maxSurfaceSize = 8192

// whitePixel backs solid rectangles, scaled to size with GeoM.
var whitePixel *ebiten.Image

func init() {
	whitePixel = ebiten.NewImage(1, 1)
	whitePixel.Fill(ColorWhite.toRGBA())
}

// ebitenRenderer draws into an offscreen *ebiten.Image.
type ebitenRenderer struct {
	cfg  RendererConfig
	view View
	w, h int
}

func newEbitenRenderer(cfg RendererConfig) *ebitenRenderer {
	return &ebitenRenderer{cfg: cfg, view: View{resolution: cfg.resolution()}}
}

// backingSize returns the physical size and effective resolution for a
// logical size, lowering the resolution when the image would exceed
// maxSurfaceSize.
func backingSize(w, h int, res float64) (pw, ph int, eff float64) {
	w, h = max(w, 1), max(h, 1)
	eff = res
	if limit := float64(maxSurfaceSize) / float64(max(w, h)); eff > limit {
		eff = limit
	}
	pw = max(int(math.Ceil(float64(w)*eff)), 1)
	ph = max(int(math.Ceil(float64(h)*eff)), 1)
	return pw, ph, eff
}

func (r *ebitenRenderer) Resize(w, h int) {
	pw, ph, eff := backingSize(w, h, r.cfg.resolution())
	img := ebiten.NewImage(pw, ph)
	old := r.view.image
	if old != nil {
		if r.cfg.PreserveDrawingBuffer {
			img.DrawImage(old, nil)
		}
		old.Deallocate()
	}
	r.view.image = img
	r.view.resolution = eff
	r.view.Width, r.view.Height = w, h
	r.w, r.h = w, h
}

func (r *ebitenRenderer) Size() (int, int) {
	return r.w, r.h
}

func (r *ebitenRenderer) Render(root *Node) error {
	dst := r.view.image
	if dst == nil || root == nil {
		return nil
	}
	if r.cfg.ClearBeforeRender {
		dst.Clear()
	}
	res := r.view.resolution
	base := [6]float64{res, 0, 0, res, 0, 0}
	walkVisible(root, func(n *Node) {
		m := multiplyAffine(base, n.worldTransform)
		switch n.Type {
		case NodeTypeCircle:
			cx, cy := transformPoint(m, 0, 0)
			rad := n.Radius * math.Sqrt(math.Abs(m[0]*m[3]-m[1]*m[2]))
			c := n.Color
			c.A *= n.worldAlpha
			vector.DrawFilledCircle(dst, float32(cx), float32(cy), float32(rad), c.toRGBA(), true)
		case NodeTypeRect:
			drawImageAffine(dst, whitePixel, m, n.Width, n.Height, n.Color, n.worldAlpha)
		case NodeTypeSprite:
			if n.Image != nil {
				drawImageAffine(dst, n.Image, m, 1, 1, n.Color, n.worldAlpha)
			}
		}
	})
	return nil
}

// drawImageAffine draws src scaled by (sx, sy) and then transformed by m.
func drawImageAffine(dst, src *ebiten.Image, m [6]float64, sx, sy float64, c Color, alpha float64) {
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(sx, sy)
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(0, 1, m[2])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 0, m[1])
	g.SetElement(1, 1, m[3])
	g.SetElement(1, 2, m[5])
	op.GeoM.Concat(g)
	a := c.A * alpha
	op.ColorScale.Scale(float32(c.R*a), float32(c.G*a), float32(c.B*a), float32(a))
	dst.DrawImage(src, &op)
}

// Flush is a no-op: Ebitengine submits queued draw commands when the frame
// ends, and the overlay flips views within that same frame.
func (r *ebitenRenderer) Flush() error { return nil }

func (r *ebitenRenderer) View() *View {
	return &r.view
}

func (r *ebitenRenderer) GPU() bool {
	return true
}

func (r *ebitenRenderer) Dispose() {
	if r.view.image != nil {
		r.view.image.Deallocate()
		r.view.image = nil
	}
	r.w, r.h = 0, 0
}
