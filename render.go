package willowmap

import (
	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
)

// Renderer draws a scene graph into an offscreen surface exposed as a View.
type Renderer interface {
	// Resize reallocates the surface to w x h logical pixels.
	Resize(w, h int)
	// Size returns the logical size of the last Resize, or 0, 0 before any.
	Size() (w, h int)
	// Render draws root into the surface.
	Render(root *Node) error
	// Flush blocks until queued drawing has reached the surface.
	Flush() error
	// View is the drawable element composited by the overlay container.
	View() *View
	// GPU reports whether the renderer draws on the GPU.
	GPU() bool
	// Dispose releases the surface.
	Dispose()
}

// RendererConfig configures renderers created by a RendererFactory.
type RendererConfig struct {
	// Resolution is the device pixel ratio. Zero means 1.
	Resolution float64
	// ForceCanvas selects the software canvas renderer instead of the GPU one.
	ForceCanvas bool
	// PreserveDrawingBuffer keeps the previous pixels when the surface is
	// reallocated by Resize.
	PreserveDrawingBuffer bool
	// ClearBeforeRender clears the surface at the start of every Render.
	ClearBeforeRender bool
	// Logger receives errors a renderer cannot return, such as failures while
	// releasing a surface. Nil means the default charm logger.
	Logger *log.Logger
}

func (c RendererConfig) logger() *log.Logger {
	if c.Logger == nil {
		return log.Default()
	}
	return c.Logger
}

func (c RendererConfig) resolution() float64 {
	if c.Resolution <= 0 {
		return 1
	}
	return c.Resolution
}

// RendererFactory creates the renderers an overlay draws with.
type RendererFactory interface {
	// Supported reports whether the environment can draw at all with cfg.
	Supported(cfg RendererConfig) bool
	NewRenderer(cfg RendererConfig) Renderer
}

// AutoRenderers picks the Ebitengine GPU renderer, or the gg canvas renderer
// when ForceCanvas is set.
type AutoRenderers struct{}

// Supported implements RendererFactory. Both backends run in-process, so
// every configuration is supported.
func (AutoRenderers) Supported(RendererConfig) bool { return true }

// NewRenderer implements RendererFactory.
func (AutoRenderers) NewRenderer(cfg RendererConfig) Renderer {
	if cfg.ForceCanvas {
		return newCanvasRenderer(cfg)
	}
	return newEbitenRenderer(cfg)
}

// View is a renderer's drawable surface: the backing image plus the logical
// size and visibility the container composites it with.
type View struct {
	Width, Height int
	Visible       bool

	image      *ebiten.Image
	resolution float64
}

// Image returns the backing image, or nil before the first resize.
func (v *View) Image() *ebiten.Image {
	return v.image
}

// Resolution returns the effective device pixel ratio of the backing image.
func (v *View) Resolution() float64 {
	return v.resolution
}

// Container is the element an overlay mounts into the map's pane. It holds
// the renderer views and carries the layer-space position of the surface,
// plus a transient scale used while the map animates a zoom.
type Container struct {
	views    []*View
	position Point
	offset   Point
	scale    float64
}

func newContainer(views ...*View) *Container {
	return &Container{views: views, scale: 1}
}

// SetPosition places the surface's top-left corner at p and drops any
// animation transform.
func (c *Container) SetPosition(p Point) {
	c.position = p
	c.offset = p
	c.scale = 1
}

// SetTransform applies an animation transform: the surface is drawn scaled by
// scale with its top-left corner at offset.
func (c *Container) SetTransform(offset Point, scale float64) {
	c.offset = offset
	c.scale = scale
}

// Position returns the settled top-left corner in layer space.
func (c *Container) Position() Point {
	return c.position
}

// Transform returns the offset and scale the container is drawn with.
func (c *Container) Transform() (offset Point, scale float64) {
	return c.offset, c.scale
}

// DrawElement implements Element.
func (c *Container) DrawElement(dst *ebiten.Image, geo ebiten.GeoM) {
	for _, v := range c.views {
		if !v.Visible || v.image == nil {
			continue
		}
		var op ebiten.DrawImageOptions
		k := c.scale / v.resolution
		op.GeoM.Scale(k, k)
		op.GeoM.Translate(c.offset.X, c.offset.Y)
		op.GeoM.Concat(geo)
		op.Filter = ebiten.FilterLinear
		dst.DrawImage(v.image, &op)
	}
}
