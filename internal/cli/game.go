package cli

import (
	"errors"

	charmlog "github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/phanxgames/willowmap"
	"github.com/phanxgames/willowmap/slippy"
)

const (
	markerRadius = 6 // screen pixels
	zoomDuration = 0.25
	panStep      = 64
)

type city struct {
	name string
	at   willowmap.LatLng
}

var cities = []city{
	{"Paris", willowmap.LatLng{Lat: 48.8566, Lng: 2.3522}},
	{"London", willowmap.LatLng{Lat: 51.5074, Lng: -0.1278}},
	{"Berlin", willowmap.LatLng{Lat: 52.52, Lng: 13.405}},
	{"Madrid", willowmap.LatLng{Lat: 40.4168, Lng: -3.7038}},
	{"Rome", willowmap.LatLng{Lat: 41.9028, Lng: 12.4964}},
	{"New York", willowmap.LatLng{Lat: 40.7128, Lng: -74.006}},
	{"Tokyo", willowmap.LatLng{Lat: 35.6762, Lng: 139.6503}},
	{"Sydney", willowmap.LatLng{Lat: -33.8688, Lng: 151.2093}},
}

// game adapts a slippy map with one overlay to ebiten.Game.
type game struct {
	m       *slippy.Map
	overlay *willowmap.Overlay
	script  *slippy.ScriptRunner
	log     *charmlog.Logger

	w, h     int
	dragging bool
	lastX    int
	lastY    int
}

func newGame(m *slippy.Map, opts willowmap.Options, logger *charmlog.Logger) (*game, error) {
	o := willowmap.New(drawMarkers, nil, opts)
	if o == nil {
		return nil, errors.New("no renderer available in this environment")
	}
	if err := m.AddLayer(o); err != nil {
		return nil, err
	}
	size := m.Size()
	return &game{m: m, overlay: o, log: logger, w: int(size.X), h: int(size.Y)}, nil
}

// drawMarkers places one circle per city the first time it runs, then keeps
// the markers a constant size on screen by undoing the root scale.
func drawMarkers(u *willowmap.Utils, e willowmap.Event) error {
	root := u.Root()
	if root.NumChildren() == 0 {
		for _, c := range cities {
			p := u.LatLngToLayerPoint(c.at)
			n := willowmap.NewCircle(c.name, markerRadius, willowmap.Color{R: 0.9, G: 0.3, B: 0.2, A: 0.9})
			n.SetPosition(p.X, p.Y)
			n.UserData = c
			root.AddChild(n)
		}
	}
	r := markerRadius / u.Scale()
	for _, n := range root.Children() {
		n.Radius = r
	}
	return nil
}

func (g *game) Update() error {
	if g.script != nil && !g.script.Done() {
		if err := g.script.Step(g.m); err != nil {
			return err
		}
	} else if err := g.handleInput(); err != nil {
		return err
	}
	if err := g.m.Update(1 / float32(ebiten.TPS())); err != nil {
		g.log.Error("frame failed", "err", err)
	}
	return nil
}

func (g *game) handleInput() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if g.m.AnimatingZoom() {
		return nil
	}

	var err error
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyKPAdd):
		err = g.m.ZoomIn(zoomDuration)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract):
		err = g.m.ZoomOut(zoomDuration)
	case inpututil.IsKeyJustPressed(ebiten.KeyLeft):
		err = g.m.PanBy(willowmap.Pt(-panStep, 0))
	case inpututil.IsKeyJustPressed(ebiten.KeyRight):
		err = g.m.PanBy(willowmap.Pt(panStep, 0))
	case inpututil.IsKeyJustPressed(ebiten.KeyUp):
		err = g.m.PanBy(willowmap.Pt(0, -panStep))
	case inpututil.IsKeyJustPressed(ebiten.KeyDown):
		err = g.m.PanBy(willowmap.Pt(0, panStep))
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		err = g.overlay.Redraw(nil)
	}
	if err != nil {
		g.log.Error("gesture failed", "err", err)
	}

	x, y := ebiten.CursorPosition()
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.dragging = true
	case g.dragging && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		if dx, dy := x-g.lastX, y-g.lastY; dx != 0 || dy != 0 {
			err = g.m.DragBy(willowmap.Pt(float64(dx), float64(dy)))
		}
	case g.dragging:
		g.dragging = false
		err = g.m.EndDrag()
	}
	g.lastX, g.lastY = x, y
	if err != nil {
		g.log.Error("drag failed", "err", err)
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.m.Draw(screen)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.w || outsideHeight != g.h {
		g.w, g.h = outsideWidth, outsideHeight
		if err := g.m.Resize(outsideWidth, outsideHeight); err != nil {
			g.log.Error("resize failed", "err", err)
		}
	}
	return g.w, g.h
}
