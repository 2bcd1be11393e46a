package willowmap

import (
	"fmt"
	"math"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

const (
	// DefaultPadding pre-renders 10% of the view size beyond every edge.
	DefaultPadding = 0.1
	// DefaultResolution is the device pixel ratio used when none is given.
	DefaultResolution = 1.0
)

// Options configures an Overlay. Start from DefaultOptions and override
// fields; the zero value disables clearing between renders.
type Options struct {
	// Padding is the fraction of the view size pre-rendered beyond each edge,
	// so short pans do not reveal unrendered area before moveend.
	Padding float64
	// ForceCanvas uses the gg software renderer instead of the GPU one.
	ForceCanvas bool
	// Resolution is the device pixel ratio of the surfaces. Zero means 1.
	Resolution float64
	// DoubleBuffering draws every layout into a hidden surface and swaps it in
	// on the next frame. GPU renderers only; ignored with ForceCanvas.
	DoubleBuffering bool
	// ProjectionZoom chooses the zoom level the scene graph is built at.
	// Nil means DefaultProjectionZoom.
	ProjectionZoom func(m Map) float64
	// ShouldRedrawOnMove decides whether a continuous pan event triggers a
	// full layout. Nil means never; layouts then happen on moveend only.
	ShouldRedrawOnMove func(e Event) bool
	// PreserveDrawingBuffer keeps surface pixels across resizes. Always on
	// with DoubleBuffering.
	PreserveDrawingBuffer bool
	// ClearBeforeRender clears the surface before the scene is drawn.
	ClearBeforeRender bool

	// Renderers creates the surfaces. Nil means AutoRenderers.
	Renderers RendererFactory
	// Logger receives debug diagnostics. Nil means the default charm logger.
	Logger *log.Logger
}

// DefaultOptions returns the options an overlay uses when none are given.
func DefaultOptions() Options {
	return Options{
		Padding:           DefaultPadding,
		Resolution:        DefaultResolution,
		ClearBeforeRender: true,
	}
}

// Validate reports the first option that cannot be used.
func (o Options) Validate() error {
	if o.Padding < 0 || math.IsNaN(o.Padding) || math.IsInf(o.Padding, 0) {
		return fmt.Errorf("%w: padding %v", ErrInvalidOption, o.Padding)
	}
	if o.Resolution < 0 || math.IsNaN(o.Resolution) || math.IsInf(o.Resolution, 0) {
		return fmt.Errorf("%w: resolution %v", ErrInvalidOption, o.Resolution)
	}
	return nil
}

func (o Options) rendererConfig() RendererConfig {
	return RendererConfig{
		Resolution:            o.Resolution,
		ForceCanvas:           o.ForceCanvas,
		PreserveDrawingBuffer: o.PreserveDrawingBuffer || o.DoubleBuffering,
		ClearBeforeRender:     o.ClearBeforeRender,
		Logger:                o.Logger,
	}
}

// Config is the file form of the data-only Options. Pointer fields keep the
// default when absent from the file.
type Config struct {
	Padding               *float64 `toml:"padding"`
	ForceCanvas           bool     `toml:"force_canvas"`
	Resolution            *float64 `toml:"resolution"`
	DoubleBuffering       bool     `toml:"double_buffering"`
	PreserveDrawingBuffer bool     `toml:"preserve_drawing_buffer"`
	ClearBeforeRender     *bool    `toml:"clear_before_render"`
	// ProjectionZoom pins the projection zoom instead of deriving it from the
	// map's zoom range.
	ProjectionZoom *float64 `toml:"projection_zoom"`
	// RedrawOnMove lays out on every pan event instead of only on moveend.
	RedrawOnMove bool `toml:"redraw_on_move"`
}

// Options applies c on top of DefaultOptions.
func (c Config) Options() Options {
	o := DefaultOptions()
	if c.Padding != nil {
		o.Padding = *c.Padding
	}
	if c.Resolution != nil {
		o.Resolution = *c.Resolution
	}
	if c.ClearBeforeRender != nil {
		o.ClearBeforeRender = *c.ClearBeforeRender
	}
	o.ForceCanvas = c.ForceCanvas
	o.DoubleBuffering = c.DoubleBuffering
	o.PreserveDrawingBuffer = c.PreserveDrawingBuffer
	if c.ProjectionZoom != nil {
		z := *c.ProjectionZoom
		o.ProjectionZoom = func(Map) float64 { return z }
	}
	if c.RedrawOnMove {
		o.ShouldRedrawOnMove = func(Event) bool { return true }
	}
	return o
}

// ParseConfig decodes TOML overlay settings into validated Options.
func ParseConfig(data []byte) (Options, error) {
	var c Config
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return Options{}, fmt.Errorf("parse overlay config: %w", err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return Options{}, fmt.Errorf("parse overlay config: %w: unknown key %q", ErrInvalidOption, undec[0].String())
	}
	o := c.Options()
	if err := o.Validate(); err != nil {
		return Options{}, fmt.Errorf("parse overlay config: %w", err)
	}
	return o, nil
}

// LoadConfig reads and parses a TOML overlay config file.
func LoadConfig(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("load overlay config: %w", err)
	}
	return ParseConfig(data)
}
