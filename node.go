package willowmap

import (
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
)

// NodeType distinguishes rendering behavior for a Node.
type NodeType uint8

const (
	NodeTypeContainer NodeType = iota // group node with no visual output
	NodeTypeCircle                    // filled circle centered on the node origin
	NodeTypeRect                      // filled rectangle with its top-left at the node origin
	NodeTypeSprite                    // draws Image with its top-left at the node origin
)

// Node is the scene-graph element an overlay renders. The overlay receives the
// root node from the caller, drives the root's scale and position to keep the
// scene registered with the map, and never disposes it.
//
// Coordinates of children are expressed in the overlay's layer space, i.e.
// pixels at the frozen projection zoom (see Utils.LatLngToLayerPoint).
type Node struct {
	Name string
	Type NodeType

	Parent   *Node
	children []*Node

	// Transform (local)
	X, Y     float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64

	worldTransform [6]float64
	worldAlpha     float64
	transformDirty bool

	Alpha   float64
	Visible bool

	// Shape fields (NodeTypeCircle, NodeTypeRect)
	Color         Color
	Radius        float64
	Width, Height float64

	// Sprite field (NodeTypeSprite)
	Image *ebiten.Image

	// UserData is arbitrary caller data, typically the feature a marker stands for.
	UserData any
}

func nodeDefaults(n *Node) {
	n.ScaleX = 1
	n.ScaleY = 1
	n.Alpha = 1
	n.Color = ColorWhite
	n.Visible = true
	n.transformDirty = true
}

// NewContainer creates a container node with no visual representation.
func NewContainer(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeContainer}
	nodeDefaults(n)
	return n
}

// NewCircle creates a filled circle of the given radius.
func NewCircle(name string, radius float64, c Color) *Node {
	n := &Node{Name: name, Type: NodeTypeCircle}
	nodeDefaults(n)
	n.Radius = radius
	n.Color = c
	return n
}

// NewRect creates a filled rectangle.
func NewRect(name string, w, h float64, c Color) *Node {
	n := &Node{Name: name, Type: NodeTypeRect}
	nodeDefaults(n)
	n.Width, n.Height = w, h
	n.Color = c
	return n
}

// NewSprite creates a node that draws img. The canvas renderer does not draw
// sprites; only the GPU renderer does.
func NewSprite(name string, img *ebiten.Image) *Node {
	n := &Node{Name: name, Type: NodeTypeSprite, Image: img}
	nodeDefaults(n)
	return n
}

// AddChild appends child to n, detaching it from any previous parent. Draw
// funcs typically call it once per marker on the first layout and restyle the
// children afterwards. It panics if child is nil or an ancestor of n.
func (n *Node) AddChild(child *Node) {
	switch {
	case child == nil:
		panic("willowmap: AddChild: nil node")
	case n.hasAncestor(child):
		panic("willowmap: AddChild: " + child.Name + " is an ancestor of " + n.Name)
	}
	if child.Parent != nil {
		child.Parent.detach(child)
	}
	child.Parent = n
	child.transformDirty = true
	n.children = append(n.children, child)
}

// RemoveChild detaches child from n. It panics if n is not child's parent.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("willowmap: RemoveChild: " + child.Name + " is not a child of " + n.Name)
	}
	n.detach(child)
}

// RemoveFromParent detaches n from its parent, if any.
func (n *Node) RemoveFromParent() {
	if n.Parent != nil {
		n.Parent.detach(n)
	}
}

// RemoveChildren detaches every child of n, for draw funcs that rebuild the
// scene on a data refresh.
func (n *Node) RemoveChildren() {
	for _, child := range n.children {
		child.Parent = nil
		child.transformDirty = true
	}
	clear(n.children)
	n.children = n.children[:0]
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// hasAncestor reports whether a is n or one of its parents.
func (n *Node) hasAncestor(a *Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == a {
			return true
		}
	}
	return false
}

// detach unlinks child from n. A dirty child recomputes its whole subtree on
// the next render.
func (n *Node) detach(child *Node) {
	if i := slices.Index(n.children, child); i >= 0 {
		n.children = slices.Delete(n.children, i, i+1)
	}
	child.Parent = nil
	child.transformDirty = true
}
