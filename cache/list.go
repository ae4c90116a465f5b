package cache

import (
	"fmt"

	"github.com/gogpu/stage"
)

// entryID indexes the entry slab. noEntry is the nil link.
type entryID int32

const noEntry entryID = -1

// links is one intrusive doubly-linked list membership.
type links struct {
	prev, next entryID
}

func newLinks() links { return links{prev: noEntry, next: noEntry} }

// entry is one cached texture: a loaded or loading bitmap or glyph,
// its recency-list memberships, and its atlas placement when packed.
// Entries live in a slab and are addressed by index, so list surgery
// is pointer-free and reuse never reallocates.
type entry struct {
	bitmap  stage.BitmapID
	glyph   GlyphKey
	isGlyph bool

	tex     stage.Texture
	loading bool
	memory  int64

	// pinned entries (the solid fill) are exempt from every purge.
	pinned bool

	// lastFrame is the frame counter value at the most recent use.
	lastFrame uint32

	packed                     bool
	node                       NodeID
	packX, packY, packW, packH int

	globalLink links
	packedLink links
}

// list is an intrusive LRU list over the slab: head is most recently
// used, tail is eviction order. sel chooses which membership of an
// entry the list operates on.
type list struct {
	head, tail entryID
	sel        func(*entry) *links
}

func newList(sel func(*entry) *links) list {
	return list{head: noEntry, tail: noEntry, sel: sel}
}

// insertHead links e at the head. e must be unlinked.
func (l *list) insertHead(slab []entry, e entryID) {
	ln := l.sel(&slab[e])
	if ln.prev != noEntry || ln.next != noEntry || l.head == e {
		panic(fmt.Sprintf("cache: inserting linked entry %d", e))
	}
	ln.next = l.head
	if l.head != noEntry {
		l.sel(&slab[l.head]).prev = e
	}
	l.head = e
	if l.tail == noEntry {
		l.tail = e
	}
}

// unlink removes e from the list. e must be linked.
func (l *list) unlink(slab []entry, e entryID) {
	ln := l.sel(&slab[e])
	if ln.prev != noEntry {
		l.sel(&slab[ln.prev]).next = ln.next
	} else {
		if l.head != e {
			panic(fmt.Sprintf("cache: unlinking entry %d not on list", e))
		}
		l.head = ln.next
	}
	if ln.next != noEntry {
		l.sel(&slab[ln.next]).prev = ln.prev
	} else {
		l.tail = ln.prev
	}
	*ln = newLinks()
}

// moveToHead marks e most recently used.
func (l *list) moveToHead(slab []entry, e entryID) {
	if l.head == e {
		return
	}
	l.unlink(slab, e)
	l.insertHead(slab, e)
}
