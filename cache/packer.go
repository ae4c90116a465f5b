package cache

import "sort"

// NodeID identifies a packed region within a Packer. The zero NodeID
// is reserved as invalid.
type NodeID uint32

// Packer places rectangular sub-images in a fixed-size atlas.
// Implementations must support unpacking individual regions so that
// eviction frees reusable space.
type Packer interface {
	// Pack reserves a width x height region. It returns the region's
	// node identifier and pixel origin, or ok=false when no space is
	// available.
	Pack(width, height int) (id NodeID, x, y int, ok bool)

	// Unpack releases a previously packed region. It returns false
	// when id does not refer to a live region.
	Unpack(id NodeID) bool

	// CollectGarbage coalesces freed space. Called after a batch of
	// unpacks, before retrying a failed pack.
	CollectGarbage()
}

// ---------------------------------------------------------------------------
// Shelf packer
// ---------------------------------------------------------------------------

// shelfPadding is the pixel border around each packed region, so
// bilinear sampling never bleeds between neighbors.
const shelfPadding = 1

type shelfSegment struct {
	x, width int
}

type shelf struct {
	y, height int
	free      []shelfSegment
}

type shelfNode struct {
	shelf         int
	x, y          int
	width, height int
	inUse         bool
}

// ShelfPacker is a shelf-based Packer: rows of similar height are
// carved from the atlas top-down, and each shelf tracks its free
// horizontal segments so unpacked regions can be reused in place.
type ShelfPacker struct {
	width, height int
	nextY         int
	shelves       []shelf
	nodes         []shelfNode
	freeNodes     []NodeID
}

// NewShelfPacker returns a packer for a width x height atlas.
func NewShelfPacker(width, height int) *ShelfPacker {
	return &ShelfPacker{width: width, height: height}
}

// Pack reserves a region, padding included, on the first shelf that
// fits; a new shelf is opened when none does.
func (p *ShelfPacker) Pack(width, height int) (NodeID, int, int, bool) {
	w := width + 2*shelfPadding
	h := height + 2*shelfPadding
	if w > p.width || h > p.height {
		return 0, 0, 0, false
	}

	for si := range p.shelves {
		sh := &p.shelves[si]
		// A shelf is suitable when the region fits and wastes less
		// than half the shelf height.
		if h > sh.height || h*2 < sh.height {
			continue
		}
		for fi, seg := range sh.free {
			if seg.width < w {
				continue
			}
			sh.free[fi] = shelfSegment{x: seg.x + w, width: seg.width - w}
			if sh.free[fi].width == 0 {
				sh.free = append(sh.free[:fi], sh.free[fi+1:]...)
			}
			return p.alloc(si, seg.x, sh.y, w, h)
		}
	}

	if p.nextY+h > p.height {
		return 0, 0, 0, false
	}
	p.shelves = append(p.shelves, shelf{y: p.nextY, height: h})
	si := len(p.shelves) - 1
	p.nextY += h
	sh := &p.shelves[si]
	if w < p.width {
		sh.free = append(sh.free, shelfSegment{x: w, width: p.width - w})
	}
	return p.alloc(si, 0, sh.y, w, h)
}

func (p *ShelfPacker) alloc(si, x, y, w, h int) (NodeID, int, int, bool) {
	var id NodeID
	if n := len(p.freeNodes); n > 0 {
		id = p.freeNodes[n-1]
		p.freeNodes = p.freeNodes[:n-1]
	} else {
		p.nodes = append(p.nodes, shelfNode{})
		id = NodeID(len(p.nodes))
	}
	p.nodes[id-1] = shelfNode{shelf: si, x: x, y: y, width: w, height: h, inUse: true}
	return id, x + shelfPadding, y + shelfPadding, true
}

// Unpack returns a region's horizontal span to its shelf's free list.
func (p *ShelfPacker) Unpack(id NodeID) bool {
	if id == 0 || int(id) > len(p.nodes) {
		return false
	}
	n := &p.nodes[id-1]
	if !n.inUse {
		return false
	}
	n.inUse = false
	sh := &p.shelves[n.shelf]
	sh.free = append(sh.free, shelfSegment{x: n.x, width: n.width})
	p.freeNodes = append(p.freeNodes, id)
	return true
}

// CollectGarbage merges adjacent free segments on every shelf and
// reclaims fully empty trailing shelves.
func (p *ShelfPacker) CollectGarbage() {
	for si := range p.shelves {
		sh := &p.shelves[si]
		if len(sh.free) < 2 {
			continue
		}
		sort.Slice(sh.free, func(a, b int) bool { return sh.free[a].x < sh.free[b].x })
		merged := sh.free[:1]
		for _, seg := range sh.free[1:] {
			last := &merged[len(merged)-1]
			if last.x+last.width == seg.x {
				last.width += seg.width
			} else {
				merged = append(merged, seg)
			}
		}
		sh.free = merged
	}
	for len(p.shelves) > 0 {
		sh := &p.shelves[len(p.shelves)-1]
		if len(sh.free) != 1 || sh.free[0].x != 0 || sh.free[0].width != p.width {
			break
		}
		p.nextY = sh.y
		p.shelves = p.shelves[:len(p.shelves)-1]
	}
}
