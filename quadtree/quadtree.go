// Package quadtree implements a region quadtree used as the obstacle index.
//
// A leaf splits into four equal quadrants once it holds more objects than the
// configured capacity, down to a maximum level. Removals collapse any subtree
// whose object count falls back to the capacity, so the shape of the tree
// depends only on the set of stored regions.
package quadtree

import (
	"github.com/pthm-cable/quadstar/components"
)

// Quadrant order used for children.
const (
	NorthWest = iota
	NorthEast
	SouthWest
	SouthEast
)

// Node is a read-only view of a tree node returned by queries.
// Objects aliases the tree's storage and must not be modified; it is only
// valid until the next mutation.
type Node struct {
	Level   int
	Bounds  components.Region
	Objects []components.Region
}

// Tree is a region quadtree over a fixed bounding rectangle.
type Tree struct {
	root     *node
	capacity int
	maxLevel int
}

type node struct {
	level    int
	bounds   components.Region
	objects  []components.Region
	children *[4]*node
	count    int // objects stored in this subtree
}

// New creates an empty tree covering bounds. A leaf splits once it holds more
// than capacity objects, unless it is already at maxLevel.
func New(bounds components.Region, capacity, maxLevel int) *Tree {
	if capacity < 1 {
		capacity = 1
	}
	if maxLevel < 0 {
		maxLevel = 0
	}
	return &Tree{
		root:     &node{bounds: bounds},
		capacity: capacity,
		maxLevel: maxLevel,
	}
}

// Bounds returns the region covered by the tree.
func (t *Tree) Bounds() components.Region {
	return t.root.bounds
}

// Capacity returns the per-node object threshold.
func (t *Tree) Capacity() int {
	return t.capacity
}

// MaxLevel returns the deepest level a node can reach.
func (t *Tree) MaxLevel() int {
	return t.maxLevel
}

// Len returns the number of stored regions.
func (t *Tree) Len() int {
	return t.root.count
}

// Insert stores r. It returns false if r lies outside the tree bounds or an
// identical region is already stored.
func (t *Tree) Insert(r components.Region) bool {
	if !t.root.bounds.Contains(r) || t.Contains(r) {
		return false
	}
	t.root.insert(r, t.capacity, t.maxLevel)
	return true
}

// Contains reports whether an identical region is stored.
func (t *Tree) Contains(r components.Region) bool {
	n := t.root.find(r)
	for _, o := range n.objects {
		if o == r {
			return true
		}
	}
	return false
}

// Remove deletes the stored region equal to r, locating it by position.
func (t *Tree) Remove(r components.Region) bool {
	if !t.root.bounds.Contains(r) {
		return false
	}
	return t.root.remove(r, t.capacity)
}

// RemoveObject deletes a previously inserted region wherever it currently sits
// in the hierarchy, without relying on positional descent.
func (t *Tree) RemoveObject(r components.Region) bool {
	return t.root.removeAnywhere(r, t.capacity)
}

// ObjectNode returns the deepest node whose bounds cover r, with the objects
// stored at that node. Regions outside the tree resolve to the root.
func (t *Tree) ObjectNode(r components.Region) Node {
	n := t.root
	if t.root.bounds.Contains(r) {
		n = t.root.find(r)
	}
	return Node{Level: n.level, Bounds: n.bounds, Objects: n.objects}
}

// Leaves calls fn for every leaf in depth-first quadrant order.
func (t *Tree) Leaves(fn func(Node)) {
	t.root.leaves(fn)
}

// Clone returns a deep copy of the tree.
func (t *Tree) Clone() *Tree {
	return &Tree{
		root:     t.root.clone(),
		capacity: t.capacity,
		maxLevel: t.maxLevel,
	}
}

// childIndex returns the quadrant that fully contains r, or -1 if r straddles
// a split line.
func (n *node) childIndex(r components.Region) int {
	midX := n.bounds.X + n.bounds.Width/2
	midY := n.bounds.Y + n.bounds.Height/2

	west := r.X+r.Width <= midX
	east := r.X >= midX
	north := r.Y+r.Height <= midY
	south := r.Y >= midY

	switch {
	case north && west:
		return NorthWest
	case north && east:
		return NorthEast
	case south && west:
		return SouthWest
	case south && east:
		return SouthEast
	}
	return -1
}

// find descends to the deepest node covering r.
func (n *node) find(r components.Region) *node {
	for n.children != nil {
		i := n.childIndex(r)
		if i < 0 {
			break
		}
		n = n.children[i]
	}
	return n
}

func (n *node) insert(r components.Region, capacity, maxLevel int) {
	n.count++
	if n.children != nil {
		if i := n.childIndex(r); i >= 0 {
			n.children[i].insert(r, capacity, maxLevel)
			return
		}
		n.objects = append(n.objects, r)
		return
	}

	n.objects = append(n.objects, r)
	if len(n.objects) > capacity && n.level < maxLevel && n.bounds.Width > 1 && n.bounds.Height > 1 {
		n.split(capacity, maxLevel)
	}
}

func (n *node) split(capacity, maxLevel int) {
	b := n.bounds
	hw, hh := b.Width/2, b.Height/2
	level := n.level + 1

	n.children = &[4]*node{
		NorthWest: {level: level, bounds: components.Region{X: b.X, Y: b.Y, Width: hw, Height: hh}},
		NorthEast: {level: level, bounds: components.Region{X: b.X + hw, Y: b.Y, Width: b.Width - hw, Height: hh}},
		SouthWest: {level: level, bounds: components.Region{X: b.X, Y: b.Y + hh, Width: hw, Height: b.Height - hh}},
		SouthEast: {level: level, bounds: components.Region{X: b.X + hw, Y: b.Y + hh, Width: b.Width - hw, Height: b.Height - hh}},
	}

	// Redistribute everything that fits a quadrant; straddlers stay here.
	kept := n.objects[:0]
	for _, o := range n.objects {
		if i := n.childIndex(o); i >= 0 {
			n.children[i].insert(o, capacity, maxLevel)
			continue
		}
		kept = append(kept, o)
	}
	n.objects = kept
}

func (n *node) remove(r components.Region, capacity int) bool {
	if n.children != nil {
		if i := n.childIndex(r); i >= 0 {
			if !n.children[i].remove(r, capacity) {
				return false
			}
			n.count--
			n.collapse(capacity)
			return true
		}
	}
	if !n.dropObject(r) {
		return false
	}
	n.count--
	n.collapse(capacity)
	return true
}

func (n *node) removeAnywhere(r components.Region, capacity int) bool {
	if n.dropObject(r) {
		n.count--
		n.collapse(capacity)
		return true
	}
	if n.children == nil {
		return false
	}
	for _, c := range n.children {
		if c.count > 0 && c.removeAnywhere(r, capacity) {
			n.count--
			n.collapse(capacity)
			return true
		}
	}
	return false
}

func (n *node) dropObject(r components.Region) bool {
	for i, o := range n.objects {
		if o == r {
			n.objects = append(n.objects[:i], n.objects[i+1:]...)
			return true
		}
	}
	return false
}

// collapse folds the subtree back into a leaf once it no longer exceeds
// capacity.
func (n *node) collapse(capacity int) {
	if n.children == nil || n.count > capacity {
		return
	}
	for _, c := range n.children {
		n.objects = c.gather(n.objects)
	}
	n.children = nil
}

func (n *node) gather(dst []components.Region) []components.Region {
	dst = append(dst, n.objects...)
	if n.children != nil {
		for _, c := range n.children {
			dst = c.gather(dst)
		}
	}
	return dst
}

func (n *node) leaves(fn func(Node)) {
	if n.children == nil {
		fn(Node{Level: n.level, Bounds: n.bounds, Objects: n.objects})
		return
	}
	for _, c := range n.children {
		c.leaves(fn)
	}
}

func (n *node) clone() *node {
	c := &node{
		level:  n.level,
		bounds: n.bounds,
		count:  n.count,
	}
	if len(n.objects) > 0 {
		c.objects = append([]components.Region(nil), n.objects...)
	}
	if n.children != nil {
		c.children = &[4]*node{}
		for i, child := range n.children {
			c.children[i] = child.clone()
		}
	}
	return c
}
