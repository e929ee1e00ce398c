package atlas

// nodeID addresses a node in a Packer's arena.
type nodeID int32

// node is one free-space region of the packing tree. A leaf has children == 0;
// a split node's two children sit next to each other in the arena, at
// children and children+1. The root is always node 0, so 0 is never a child.
type node struct {
	area     Rect
	children nodeID
}

// Packer is a binary-split free-space tree covering a square of side size.
// Each successful insertion places the rectangle at the origin corner of the
// first leaf that can hold it, then splits that leaf into the strip to the
// right of the rectangle and the full-width strip below it.
//
// Placed rectangles are never removed. To try a different size, create a new
// Packer.
type Packer struct {
	size  int
	nodes []node
}

// NewPacker creates an empty packer for a size x size square.
func NewPacker(size int) *Packer {
	p := &Packer{size: size}
	p.nodes = append(p.nodes, node{area: Rect{0, 0, size, size}})
	return p
}

// Size returns the side length of the packing square.
func (p *Packer) Size() int {
	return p.size
}

// Insert places a rectangle of the given size. It returns false when no free
// region can hold it; the tree is left unchanged in that case.
func (p *Packer) Insert(s Size) (Rect, bool) {
	if s.Width < 0 || s.Height < 0 {
		return Rect{}, false
	}
	return p.insert(0, s)
}

func (p *Packer) insert(id nodeID, s Size) (Rect, bool) {
	n := p.nodes[id]
	if n.children != 0 {
		if r, ok := p.insert(n.children, s); ok {
			return r, true
		}
		return p.insert(n.children+1, s)
	}

	a := n.area
	if s.Width > a.Width() || s.Height > a.Height() {
		return Rect{}, false
	}

	// p.nodes may be reallocated by append; only index it afterwards.
	first := nodeID(len(p.nodes))
	p.nodes = append(p.nodes,
		node{area: Rect{a.X0 + s.Width, a.Y0, a.X1, a.Y0 + s.Height}},
		node{area: Rect{a.X0, a.Y0 + s.Height, a.X1, a.Y1}},
	)
	p.nodes[id].children = first

	return Rect{a.X0, a.Y0, a.X0 + s.Width, a.Y0 + s.Height}, true
}

// FreeRegions returns the leaf regions that still have a non-zero area, in
// tree order.
func (p *Packer) FreeRegions() []Rect {
	var free []Rect
	p.walkLeaves(0, func(r Rect) {
		if !r.Empty() {
			free = append(free, r)
		}
	})
	return free
}

func (p *Packer) walkLeaves(id nodeID, fn func(Rect)) {
	n := p.nodes[id]
	if n.children == 0 {
		fn(n.area)
		return
	}
	p.walkLeaves(n.children, fn)
	p.walkLeaves(n.children+1, fn)
}
