package slippy

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/willowmap"
)

// Pane holds mounted elements in layer space and draws them in mount order.
type Pane struct {
	elements []willowmap.Element
}

var _ willowmap.Pane = (*Pane)(nil)

// Append mounts el on top. Appending a mounted element moves it to the top.
func (p *Pane) Append(el willowmap.Element) {
	p.Remove(el)
	p.elements = append(p.elements, el)
}

// Remove unmounts el. No-op if el is not mounted.
func (p *Pane) Remove(el willowmap.Element) {
	for i, e := range p.elements {
		if e == el {
			p.elements = append(p.elements[:i], p.elements[i+1:]...)
			return
		}
	}
}

// Contains reports whether el is mounted.
func (p *Pane) Contains(el willowmap.Element) bool {
	for _, e := range p.elements {
		if e == el {
			return true
		}
	}
	return false
}

// Len returns the number of mounted elements.
func (p *Pane) Len() int {
	return len(p.elements)
}

func (p *Pane) draw(dst *ebiten.Image, geo ebiten.GeoM) {
	for _, e := range p.elements {
		e.DrawElement(dst, geo)
	}
}
