// Package spatial implements a dynamic bounding volume tree: a binary tree of
// axis-aligned boxes, one leaf per item, kept height-balanced as items are
// inserted, moved and removed.
//
// Nodes live in a slice and refer to each other by index. Freed nodes are chained
// through their parent field and reused before the slice grows.
package spatial

import (
	"errors"
	"fmt"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/physics"
)

const nullNode = -1

// ErrCorrupt is returned by Validate when a structural invariant does not hold
var ErrCorrupt = errors.New("spatial: tree corrupt")

type node[T comparable] struct {
	parent int
	left   int
	right  int
	height int
	bounds physics.BoundingBox
	item   T
}

func (n *node[T]) isLeaf() bool {
	return n.left == nullNode
}

// Tree is a dynamic AABB tree keyed by item. It is not safe for concurrent use,
// and callbacks passed to Query or RayCast must not mutate the tree.
type Tree[T comparable] struct {
	nodes  []node[T]
	root   int
	free   int
	leaves map[T]int
}

// NewTree creates an empty tree
func NewTree[T comparable]() *Tree[T] {
	return &Tree[T]{
		root:   nullNode,
		free:   nullNode,
		leaves: make(map[T]int),
	}
}

// Len returns the number of items in the tree
func (t *Tree[T]) Len() int {
	return len(t.leaves)
}

// Height returns the height of the root, 0 for an empty tree or a single leaf
func (t *Tree[T]) Height() int {
	if t.root == nullNode {
		return 0
	}
	return t.nodes[t.root].height
}

// Contains reports whether item is in the tree
func (t *Tree[T]) Contains(item T) bool {
	_, ok := t.leaves[item]
	return ok
}

// Bounds returns the stored (padded) bounds of item
func (t *Tree[T]) Bounds(item T) (physics.BoundingBox, bool) {
	leaf, ok := t.leaves[item]
	if !ok {
		return physics.BoundingBox{}, false
	}
	return t.nodes[leaf].bounds, true
}

// Insert adds item with the given bounds, replacing any previous entry for it
func (t *Tree[T]) Insert(item T, bounds physics.BoundingBox) {
	if leaf, ok := t.leaves[item]; ok {
		t.removeLeaf(leaf)
		t.nodes[leaf].bounds = bounds
		t.insertLeaf(leaf)
		return
	}

	leaf := t.allocate()
	t.nodes[leaf].bounds = bounds
	t.nodes[leaf].item = item
	t.leaves[item] = leaf
	t.insertLeaf(leaf)
}

// Remove deletes item from the tree and reports whether it was present
func (t *Tree[T]) Remove(item T) bool {
	leaf, ok := t.leaves[item]
	if !ok {
		return false
	}
	t.removeLeaf(leaf)
	t.release(leaf)
	delete(t.leaves, item)
	return true
}

// Move refreshes the bounds of item. When exact still fits inside the stored
// bounds nothing changes and Move returns false. Otherwise the leaf is reinserted
// with fat as its new bounds. Untracked items are inserted.
func (t *Tree[T]) Move(item T, exact, fat physics.BoundingBox) bool {
	leaf, ok := t.leaves[item]
	if !ok {
		t.Insert(item, fat)
		return true
	}
	if t.nodes[leaf].bounds.ContainsBox(exact) {
		return false
	}

	t.removeLeaf(leaf)
	t.nodes[leaf].bounds = fat
	t.insertLeaf(leaf)
	return true
}

// Clear removes every item
func (t *Tree[T]) Clear() {
	t.nodes = t.nodes[:0]
	t.root = nullNode
	t.free = nullNode
	t.leaves = make(map[T]int)
}

// Query calls cb for every item whose bounds overlap box. Returning true from cb
// stops the search.
func (t *Tree[T]) Query(box physics.BoundingBox, cb func(item T) bool) {
	t.search(func(b physics.BoundingBox) bool { return b.Overlaps(box) }, cb)
}

// RayCast calls cb for every item whose bounds the ray enters within maxDistance.
// Returning true from cb stops the search.
func (t *Tree[T]) RayCast(ray physics.Ray, maxDistance float64, cb func(item T) bool) {
	t.search(func(b physics.BoundingBox) bool { return b.RayCast(ray, maxDistance) }, cb)
}

func (t *Tree[T]) search(hit func(physics.BoundingBox) bool, cb func(item T) bool) {
	if t.root == nullNode {
		return
	}

	stack := make([]int, 0, 32)
	stack = append(stack, t.root)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &t.nodes[id]
		if !hit(n.bounds) {
			continue
		}
		if n.isLeaf() {
			if cb(n.item) {
				return
			}
			continue
		}
		stack = append(stack, n.left, n.right)
	}
}

// Walk visits every node depth first, parents before children
func (t *Tree[T]) Walk(fn func(bounds physics.BoundingBox, height int, leaf bool)) {
	if t.root == nullNode {
		return
	}
	var visit func(id int)
	visit = func(id int) {
		n := &t.nodes[id]
		fn(n.bounds, n.height, n.isLeaf())
		if !n.isLeaf() {
			visit(n.left)
			visit(n.right)
		}
	}
	visit(t.root)
}

func (t *Tree[T]) allocate() int {
	if t.free != nullNode {
		id := t.free
		t.free = t.nodes[id].parent
		t.nodes[id] = node[T]{parent: nullNode, left: nullNode, right: nullNode}
		return id
	}
	t.nodes = append(t.nodes, node[T]{parent: nullNode, left: nullNode, right: nullNode})
	return len(t.nodes) - 1
}

func (t *Tree[T]) release(id int) {
	var zero T
	t.nodes[id] = node[T]{parent: t.free, left: nullNode, right: nullNode, height: -1, item: zero}
	t.free = id
}

// insertLeaf descends from the root toward the child whose bounds grow the least
// when combined with the leaf, pairs the leaf with the leaf it lands on, and
// rebalances on the way back up.
func (t *Tree[T]) insertLeaf(leaf int) {
	t.nodes[leaf].parent = nullNode
	t.nodes[leaf].left = nullNode
	t.nodes[leaf].right = nullNode
	t.nodes[leaf].height = 0

	if t.root == nullNode {
		t.root = leaf
		return
	}

	bounds := t.nodes[leaf].bounds
	sibling := t.root
	for !t.nodes[sibling].isLeaf() {
		left := t.nodes[sibling].left
		right := t.nodes[sibling].right
		if t.descentCost(left, bounds) < t.descentCost(right, bounds) {
			sibling = left
		} else {
			sibling = right
		}
	}

	oldParent := t.nodes[sibling].parent
	parent := t.allocate()
	t.nodes[parent].parent = oldParent
	t.nodes[parent].left = sibling
	t.nodes[parent].right = leaf
	t.nodes[parent].bounds = bounds.Combine(t.nodes[sibling].bounds)
	t.nodes[parent].height = t.nodes[sibling].height + 1
	t.nodes[sibling].parent = parent
	t.nodes[leaf].parent = parent

	if oldParent == nullNode {
		t.root = parent
	} else {
		t.replaceChild(oldParent, sibling, parent)
	}

	t.refit(t.nodes[leaf].parent)
}

// descentCost is the perimeter a subtree gains by absorbing bounds
func (t *Tree[T]) descentCost(id int, bounds physics.BoundingBox) float64 {
	current := t.nodes[id].bounds
	grown := current.Combine(bounds).Perimeter()
	if t.nodes[id].isLeaf() {
		return grown
	}
	return grown - current.Perimeter()
}

func (t *Tree[T]) removeLeaf(leaf int) {
	if leaf == t.root {
		t.root = nullNode
		return
	}

	parent := t.nodes[leaf].parent
	grandParent := t.nodes[parent].parent
	sibling := t.nodes[parent].left
	if sibling == leaf {
		sibling = t.nodes[parent].right
	}

	t.nodes[leaf].parent = nullNode
	if grandParent == nullNode {
		t.root = sibling
		t.nodes[sibling].parent = nullNode
		t.release(parent)
		return
	}

	t.replaceChild(grandParent, parent, sibling)
	t.nodes[sibling].parent = grandParent
	t.release(parent)
	t.refit(grandParent)
}

// refit walks from id to the root, rebalancing each node and recomputing its
// bounds and height from its children
func (t *Tree[T]) refit(id int) {
	for id != nullNode {
		id = t.balance(id)

		n := &t.nodes[id]
		left := &t.nodes[n.left]
		right := &t.nodes[n.right]
		n.height = 1 + max(left.height, right.height)
		n.bounds = left.bounds.Combine(right.bounds)

		id = n.parent
	}
}

func (t *Tree[T]) replaceChild(parent, old, replacement int) {
	switch {
	case t.nodes[parent].left == old:
		t.nodes[parent].left = replacement
	case t.nodes[parent].right == old:
		t.nodes[parent].right = replacement
	default:
		panic(fmt.Sprintf("spatial: node %d is not a child of %d", old, parent))
	}
}

// balance rotates the taller child of a up when the child heights differ by more
// than one, and returns the index now at a's position.
func (t *Tree[T]) balance(a int) int {
	if t.nodes[a].isLeaf() {
		return a
	}

	b := t.nodes[a].left
	c := t.nodes[a].right
	if b == nullNode || c == nullNode {
		panic(fmt.Sprintf("spatial: internal node %d is missing a child", a))
	}

	diff := t.nodes[c].height - t.nodes[b].height
	switch {
	case diff > 1:
		return t.rotateUp(a, c)
	case diff < -1:
		return t.rotateUp(a, b)
	default:
		return a
	}
}

// rotateUp promotes the tall child of a into a's place. Of the tall child's two
// children, the taller stays with it and the shorter moves down under a beside
// a's short child.
func (t *Tree[T]) rotateUp(a, tall int) int {
	f := t.nodes[tall].left
	g := t.nodes[tall].right
	if f == nullNode || g == nullNode {
		panic(fmt.Sprintf("spatial: internal node %d is missing a child", tall))
	}

	parent := t.nodes[a].parent
	t.nodes[tall].parent = parent
	t.nodes[a].parent = tall
	if parent == nullNode {
		t.root = tall
	} else {
		t.replaceChild(parent, a, tall)
	}

	keep, move := f, g
	if t.nodes[g].height > t.nodes[f].height {
		keep, move = g, f
	}

	// a keeps its short child on the same side and takes the tall child's slot
	// for the moved grandchild.
	if t.nodes[a].left == tall {
		t.nodes[a].left = move
	} else {
		t.nodes[a].right = move
	}
	t.nodes[move].parent = a

	t.nodes[tall].left = a
	t.nodes[tall].right = keep

	t.nodes[a].bounds = t.nodes[t.nodes[a].left].bounds.Combine(t.nodes[t.nodes[a].right].bounds)
	t.nodes[a].height = 1 + max(t.nodes[t.nodes[a].left].height, t.nodes[t.nodes[a].right].height)
	t.nodes[tall].bounds = t.nodes[a].bounds.Combine(t.nodes[keep].bounds)
	t.nodes[tall].height = 1 + max(t.nodes[a].height, t.nodes[keep].height)

	return tall
}

// Validate checks parent links, cached bounds and heights, the balance factor of
// every internal node, and that the free list and leaf index agree with the nodes.
func (t *Tree[T]) Validate() error {
	if t.root == nullNode {
		if len(t.leaves) != 0 {
			return fmt.Errorf("%w: empty tree indexes %d leaves", ErrCorrupt, len(t.leaves))
		}
		return nil
	}
	if t.nodes[t.root].parent != nullNode {
		return fmt.Errorf("%w: root has a parent", ErrCorrupt)
	}

	leaves := 0
	reachable := 0
	var check func(id int) error
	check = func(id int) error {
		reachable++
		n := &t.nodes[id]
		if n.isLeaf() {
			leaves++
			if n.right != nullNode {
				return fmt.Errorf("%w: leaf %d has a right child", ErrCorrupt, id)
			}
			if n.height != 0 {
				return fmt.Errorf("%w: leaf %d has height %d", ErrCorrupt, id, n.height)
			}
			if got, ok := t.leaves[n.item]; !ok || got != id {
				return fmt.Errorf("%w: leaf %d is not indexed", ErrCorrupt, id)
			}
			return nil
		}

		if n.right == nullNode {
			return fmt.Errorf("%w: internal node %d is missing a child", ErrCorrupt, id)
		}
		left := &t.nodes[n.left]
		right := &t.nodes[n.right]
		if left.parent != id || right.parent != id {
			return fmt.Errorf("%w: children of %d do not point back to it", ErrCorrupt, id)
		}
		if want := 1 + max(left.height, right.height); n.height != want {
			return fmt.Errorf("%w: node %d height %d, expected %d", ErrCorrupt, id, n.height, want)
		}
		if diff := right.height - left.height; diff > 1 || diff < -1 {
			return fmt.Errorf("%w: node %d is unbalanced by %d", ErrCorrupt, id, diff)
		}
		if want := left.bounds.Combine(right.bounds); n.bounds != want {
			return fmt.Errorf("%w: node %d bounds %v, expected %v", ErrCorrupt, id, n.bounds, want)
		}
		if err := check(n.left); err != nil {
			return err
		}
		return check(n.right)
	}
	if err := check(t.root); err != nil {
		return err
	}

	if leaves != len(t.leaves) {
		return fmt.Errorf("%w: %d reachable leaves, %d indexed", ErrCorrupt, leaves, len(t.leaves))
	}

	freeCount := 0
	for id := t.free; id != nullNode; id = t.nodes[id].parent {
		freeCount++
		if freeCount > len(t.nodes) {
			return fmt.Errorf("%w: free list has a cycle", ErrCorrupt)
		}
	}
	if reachable+freeCount != len(t.nodes) {
		return fmt.Errorf("%w: %d reachable and %d free of %d nodes", ErrCorrupt, reachable, freeCount, len(t.nodes))
	}
	return nil
}
