package hyperoctree

import (
	"fmt"
	"io"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/hyperoctree/leafdata"
)

// Tree is a hyperoctree dataset: the tree topology for one dimension, its geometric extent and
// the attribute store addressed by leaf id.
type Tree struct {
	dimension int
	origin    r3.Vector
	size      r3.Vector

	cells    *cellTree
	leafData *leafdata.Store

	// tmpChild is the scratch cursor of the tree's own enumerator.
	tmpChild *Cursor
	enum     *Enumerator

	dual    *DualGrid
	dualKey dualKey
}

// NewTree returns a tree of the given dimension made of a single leaf spanning the unit cube
// anchored at the origin.
func NewTree(dimension int) (*Tree, error) {
	if !validDimension(dimension) {
		return nil, errors.Wrapf(ErrInvalidDimension, "got %d", dimension)
	}
	t := &Tree{
		dimension: dimension,
		origin:    r3.Vector{},
		size:      r3.Vector{X: 1, Y: 1, Z: 1},
		cells:     newCellTree(dimension),
		leafData:  leafdata.NewStore(),
	}
	t.resetScratch()
	return t, nil
}

func (t *Tree) resetScratch() {
	t.tmpChild = newCursor(t.cells)
	t.enum = &Enumerator{tree: t, tmp: t.tmpChild}
}

// Initialize restores the default state: a 3D tree with a single leaf over the unit cube at the
// origin and no leaf attributes.
func (t *Tree) Initialize() {
	t.dimension = 3
	t.cells = newCellTree(3)
	t.origin = r3.Vector{}
	t.size = r3.Vector{X: 1, Y: 1, Z: 1}
	t.leafData = leafdata.NewStore()
	t.resetScratch()
}

// Dimension returns 1 for a binary tree, 2 for a quadtree and 3 for an octree.
func (t *Tree) Dimension() int {
	return t.dimension
}

// SetDimension changes the dimension of the tree. When it differs from the current one, the
// topology is discarded and replaced by a single leaf, and cursors created before become stale.
func (t *Tree) SetDimension(dim int) {
	if !validDimension(dim) {
		panic("pre: valid_dim")
	}
	if dim == t.dimension {
		return
	}
	t.dimension = dim
	t.cells = newCellTree(dim)
	t.resetScratch()
}

// Origin returns the lower corner of the domain.
func (t *Tree) Origin() r3.Vector {
	return t.origin
}

// SetOrigin sets the lower corner of the domain.
func (t *Tree) SetOrigin(origin r3.Vector) {
	t.origin = origin
}

// Size returns the extent of the domain along each axis.
func (t *Tree) Size() r3.Vector {
	return t.size
}

// SetSize sets the extent of the domain along each axis.
func (t *Tree) SetSize(size r3.Vector) {
	t.size = size
}

// NumberOfLeaves returns the number of leaves, which is also the number of leaf attribute tuples.
func (t *Tree) NumberOfLeaves() int {
	return t.cells.numberOfLeaves()
}

// NumberOfLevels returns the number of levels, at least 1.
func (t *Tree) NumberOfLevels() int {
	return t.cells.numberOfLevels()
}

// LeavesPerLevel returns a copy of the number of leaves at each level.
func (t *Tree) LeavesPerLevel() []int {
	return append([]int(nil), t.cells.levels...)
}

// NumberOfNodes returns the number of internal nodes.
func (t *Tree) NumberOfNodes() int {
	return len(t.cells.nodes) - 1
}

// NewCellCursor returns a cursor over the leaves of the tree. Call ToRoot before using it.
func (t *Tree) NewCellCursor() *Cursor {
	return newCursor(t.cells)
}

// Subdivide turns the leaf under the cursor into a node with 1<<Dimension() leaf children. The
// subdivided leaf id is kept by child 0 and the other children get the next free ids. The cursor
// is left on the new node.
func (t *Tree) Subdivide(leaf *Cursor) {
	if leaf == nil || leaf.tree != t.cells {
		panic("pre: leaf_exists")
	}
	t.cells.subdivide(leaf)
}

// Collapse would merge the leaf children of the terminal node under the cursor back into a
// single leaf. Leaf ids are never renumbered, so this is not supported.
func (t *Tree) Collapse(node *Cursor) error {
	if node == nil || node.tree != t.cells {
		panic("pre: node_exists")
	}
	if node.IsLeaf() {
		panic("pre: node_is_node")
	}
	if !node.IsTerminalNode() {
		panic("pre: children_are_leaves")
	}
	return ErrCollapseNotSupported
}

// LeafData returns the attribute store addressed by leaf id.
func (t *Tree) LeafData() *leafdata.Store {
	return t.leafData
}

// SetLeafData replaces the attribute store addressed by leaf id.
func (t *Tree) SetLeafData(store *leafdata.Store) {
	if store == nil {
		panic("pre: attributes_exist")
	}
	t.leafData = store
}

// ShallowCopyStructure makes t share the topology and geometry of other. Both trees must then be
// treated as read-only.
func (t *Tree) ShallowCopyStructure(other *Tree) {
	t.dimension = other.dimension
	t.origin = other.origin
	t.size = other.size
	t.cells = other.cells
	t.resetScratch()
}

// DeepCopy returns an independent copy of the tree and its leaf attributes.
func (t *Tree) DeepCopy() *Tree {
	result := &Tree{
		dimension: t.dimension,
		origin:    t.origin,
		size:      t.size,
		cells:     t.cells.clone(),
		leafData:  t.leafData.Copy(),
	}
	result.resetScratch()
	return result
}

// Walk visits every leaf in pre-order, children in increasing child index. The cursor handed to
// fn must not be kept nor moved. Walk stops early when fn returns false.
func (t *Tree) Walk(fn func(leaf *Cursor) bool) {
	c := t.NewCellCursor()
	c.ToRoot()
	walkLeaves(c, fn)
}

func walkLeaves(c *Cursor, fn func(*Cursor) bool) bool {
	if c.IsLeaf() {
		return fn(c)
	}
	for i := 0; i < c.ChildrenCount(); i++ {
		c.ToChild(i)
		more := walkLeaves(c, fn)
		c.ToParent()
		if !more {
			return false
		}
	}
	return true
}

// Enumerator returns the enumerator sharing the tree's scratch cursor. It must not be used from
// several goroutines, see NewEnumerator.
func (t *Tree) Enumerator() *Enumerator {
	return t.enum
}

// NewEnumerator returns an enumerator with its own scratch cursor, for concurrent read-only use.
func (t *Tree) NewEnumerator() *Enumerator {
	return &Enumerator{tree: t, tmp: t.NewCellCursor()}
}

// Dump writes the geometry and the raw node store of the tree.
func (t *Tree) Dump(w io.Writer) {
	fmt.Fprintf(w, "Dimension: %d\n", t.dimension)
	fmt.Fprintf(w, "Size: %v,%v,%v\n", t.size.X, t.size.Y, t.size.Z)
	fmt.Fprintf(w, "Origin: %v,%v,%v\n", t.origin.X, t.origin.Y, t.origin.Z)
	t.cells.dump(w)
}
