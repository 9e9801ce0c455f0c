package hyperoctree

import (
	"slices"
)

// Cursor is a mutable traversal handle over a tree. It knows where it stands (a node or a leaf),
// which child of its parent it is, the child indices of all its ancestors and its index along
// every axis as if the current level were a uniform grid of 1<<Level() cells per axis.
//
// A cursor does not own the tree. Its grid indices are meaningless once the tree is subdivided
// through another cursor.
type Cursor struct {
	tree *cellTree
	// index in the node store, or in the leaf parent table when isLeaf is set.
	index      int
	childIndex int
	isLeaf     bool
	found      bool
	// child index of every ancestor, root first.
	history []int
	grid    [3]int
}

func newCursor(tree *cellTree) *Cursor {
	return &Cursor{tree: tree}
}

// LeafID returns the id of the leaf under the cursor, usable as an index in leaf attribute arrays.
func (c *Cursor) LeafID() int {
	if !c.isLeaf {
		panic("pre: is_leaf")
	}
	return c.index
}

// IsLeaf tells whether the cursor is on a leaf.
func (c *Cursor) IsLeaf() bool {
	return c.isLeaf
}

// IsRoot tells whether the cursor is on the root, be it a leaf or a node.
func (c *Cursor) IsRoot() bool {
	return (c.isLeaf && c.index == 0 && c.tree.numberOfLeaves() == 1) || (!c.isLeaf && c.index == 1)
}

// Level returns the depth of the cursor, 0 at the root.
func (c *Cursor) Level() int {
	return len(c.history)
}

// ChildIndex returns the position of the current node among the children of its parent.
func (c *Cursor) ChildIndex() int {
	return c.childIndex
}

// IsTerminalNode tells whether the cursor is on a node whose children are all leaves.
func (c *Cursor) IsTerminalNode() bool {
	if c.isLeaf {
		return false
	}
	all := c.tree.allLeaves()
	return c.tree.nodes[c.index].leafFlags&all == all
}

// ToRoot moves the cursor to the root.
func (c *Cursor) ToRoot() {
	c.history = c.history[:0]
	c.isLeaf = c.tree.numberOfLeaves() == 1
	if c.isLeaf {
		c.index = 0
	} else {
		c.index = 1
	}
	c.childIndex = 0
	c.grid = [3]int{}
}

// ToParent moves the cursor to the parent of the current node.
func (c *Cursor) ToParent() {
	if c.IsRoot() {
		panic("pre: not_root")
	}
	if c.isLeaf {
		c.index = int(c.tree.leafParent[c.index])
	} else {
		c.index = int(c.tree.nodes[c.index].parent)
	}
	c.isLeaf = false
	last := len(c.history) - 1
	c.childIndex = c.history[last]
	c.history = c.history[:last]
	for d := 0; d < c.tree.dim; d++ {
		c.grid[d] >>= 1
	}
}

// ToChild moves the cursor to its child number child. Bit d of child selects the lower (0) or
// upper (1) half of the current node along axis d.
func (c *Cursor) ToChild(child int) {
	if c.isLeaf {
		panic("pre: not_leaf")
	}
	if child < 0 || child >= c.tree.childCount() {
		panic("pre: valid_child")
	}
	n := &c.tree.nodes[c.index]
	c.history = append(c.history, c.childIndex)
	c.childIndex = child
	c.index = int(n.children[child])
	c.isLeaf = n.isChildLeaf(child)
	for d := 0; d < c.tree.dim; d++ {
		c.grid[d] = c.grid[d]<<1 | (child>>uint(d))&1
	}
}

// ToSameNode moves the cursor to the position of other, which must walk the same tree.
func (c *Cursor) ToSameNode(other *Cursor) {
	if !c.SameTree(other) {
		panic("pre: same_hyperoctree")
	}
	c.index = other.index
	c.childIndex = other.childIndex
	c.isLeaf = other.isLeaf
	c.history = append(c.history[:0], other.history...)
	c.grid = other.grid
}

// Equal tells whether both cursors stand at the same position with the same history.
func (c *Cursor) Equal(other *Cursor) bool {
	if !c.SameTree(other) {
		panic("pre: same_hyperoctree")
	}
	return c.index == other.index &&
		c.childIndex == other.childIndex &&
		c.isLeaf == other.isLeaf &&
		slices.Equal(c.history, other.history) &&
		c.grid == other.grid
}

// Clone returns an independent cursor standing at the same position.
func (c *Cursor) Clone() *Cursor {
	result := newCursor(c.tree)
	result.ToSameNode(c)
	result.found = c.found
	return result
}

// SameTree tells whether both cursors walk the same tree.
func (c *Cursor) SameTree(other *Cursor) bool {
	return other != nil && c.tree == other.tree
}

// GridIndex returns the index of the current node along axis d.
func (c *Cursor) GridIndex(d int) int {
	if d < 0 || d >= c.tree.dim {
		panic("pre: valid_range")
	}
	return c.grid[d]
}

// GridIndices returns the index of the current node along every axis. Axes beyond the dimension
// of the tree are always 0.
func (c *Cursor) GridIndices() [3]int {
	return c.grid
}

// ChildrenCount returns the number of children of every node.
func (c *Cursor) ChildrenCount() int {
	return c.tree.childCount()
}

// Dimension returns the dimension of the tree walked by the cursor.
func (c *Cursor) Dimension() int {
	return c.tree.dim
}

// MoveToNode moves the cursor to the node at the given grid indices and level. When the tree
// is not refined that deep, the cursor stops on the deepest leaf containing the requested node
// and MoveToNode returns false. Only the first Dimension() indices are read.
func (c *Cursor) MoveToNode(indices []int, level int) bool {
	if level < 0 {
		panic("pre: valid_level")
	}
	if len(indices) < c.tree.dim {
		panic("pre: valid_size")
	}
	c.ToRoot()
	current := 0
	for !c.isLeaf && current < level {
		shift := uint(level - 1 - current)
		child := 0
		for d := c.tree.dim - 1; d >= 0; d-- {
			child = child<<1 | (indices[d]>>shift)&1
		}
		c.ToChild(child)
		current++
	}
	c.found = current == level
	return c.found
}

// Found reports whether the last MoveToNode reached the requested level.
func (c *Cursor) Found() bool {
	return c.found
}
