package hyperoctree

import (
	"github.com/golang/geo/r3"
)

// DualGrid is the dual view of a tree: one point per leaf, and one cell per grid vertex that is
// shared by 1<<Dimension() leaves. Vertices on the domain boundary get no cell.
type DualGrid struct {
	// LeafCenters holds the point of every leaf, indexed by leaf id. Centers are pushed onto the
	// domain boundary for leaves touching it, so that the dual grid covers the same bounds as the
	// tree.
	LeafCenters []r3.Vector
	// CornerLeafIDs holds, for every dual cell, the ids of the leaves around its vertex. Entry i
	// is the leaf on the lower (bit d of i clear) or upper side of the vertex along axis d. A leaf
	// coarser than its neighbors appears several times.
	CornerLeafIDs [][]int
}

// NumberOfCells returns the number of dual cells.
func (dg *DualGrid) NumberOfCells() int {
	return len(dg.CornerLeafIDs)
}

type dualKey struct {
	cells        *cellTree
	leaves       int
	origin, size r3.Vector
}

// traversalStep tells where a cursor of a 2^D neighborhood comes from when the neighborhood
// moves down to one of its children: which cursor of the parent neighborhood, and which of its
// children.
type traversalStep struct {
	parent, child int
}

// newDualTraversalTable builds the table moving a 2^D neighborhood down the tree. The entry for
// (child, cursor) is at child<<dim + cursor.
func newDualTraversalTable(dim int) []traversalStep {
	n := 1 << dim
	table := make([]traversalStep, n*n)
	for child := 0; child < n; child++ {
		for cursor := 0; cursor < n; cursor++ {
			var step traversalStep
			for d := 0; d < dim; d++ {
				sum := (cursor>>d)&1 + (child>>d)&1
				step.parent |= (sum >> 1) << d
				step.child |= (sum & 1) << d
			}
			table[n*child+cursor] = step
		}
	}
	return table
}

var dualTraversalTables = [4][]traversalStep{
	1: newDualTraversalTable(1),
	2: newDualTraversalTable(2),
	3: newDualTraversalTable(3),
}

// lightCursor is a copyable cursor without history. The zero value stands outside the domain
// and behaves as a leaf.
type lightCursor struct {
	valid  bool
	isLeaf bool
	index  int
	level  int
}

func (lc lightCursor) leaf() bool {
	return !lc.valid || lc.isLeaf
}

func (lc lightCursor) toChild(ct *cellTree, child int) lightCursor {
	if lc.leaf() {
		return lc
	}
	n := &ct.nodes[lc.index]
	return lightCursor{
		valid:  true,
		isLeaf: n.isChildLeaf(child),
		index:  int(n.children[child]),
		level:  lc.level + 1,
	}
}

type dualBuilder struct {
	tree  *Tree
	table []traversalStep
	grid  *DualGrid
}

// DualGrid returns the dual grid of the tree. It is computed on first use and kept until the
// tree is subdivided or moved. Like Enumerator, it must not be called from several goroutines.
func (t *Tree) DualGrid() *DualGrid {
	key := dualKey{cells: t.cells, leaves: t.NumberOfLeaves(), origin: t.origin, size: t.size}
	if t.dual != nil && t.dualKey == key {
		return t.dual
	}
	b := &dualBuilder{
		tree:  t,
		table: dualTraversalTables[t.dimension],
		grid:  &DualGrid{LeafCenters: make([]r3.Vector, t.NumberOfLeaves())},
	}
	hood := make([]lightCursor, 1<<t.dimension)
	hood[0] = lightCursor{valid: true, isLeaf: t.NumberOfLeaves() == 1}
	if !hood[0].isLeaf {
		hood[0].index = 1
	}
	b.traverse(hood, [3]int{}, 0)
	t.dual, t.dualKey = b.grid, key
	return t.dual
}

// traverse walks the neighborhood whose cursor 0 is the lower corner cell at level. Cursor i is
// the neighbor offset by bit d of i along axis d.
func (b *dualBuilder) traverse(hood []lightCursor, xyz [3]int, level int) {
	n := len(hood)
	var toTraverse [maxChildren]bool
	divide := false
	if !hood[0].leaf() {
		divide = true
		for child := 0; child < n; child++ {
			toTraverse[child] = true
		}
	} else {
		if hood[0].level == level {
			b.grid.LeafCenters[hood[0].index] = b.center(hood, xyz, level)
		}
		// A refined neighbor only matters to the children of cursor 0 touching it.
		for neighbor := 1; neighbor < n; neighbor++ {
			if hood[neighbor].leaf() {
				continue
			}
			divide = true
			for child := 0; child < n; child++ {
				if child&neighbor == neighbor {
					toTraverse[child] = true
				}
			}
		}
	}

	if !divide {
		b.corner(hood)
		return
	}
	ct := b.tree.cells
	next := make([]lightCursor, n)
	for child := 0; child < n; child++ {
		if !toTraverse[child] {
			continue
		}
		var childXYZ [3]int
		for d := 0; d < 3; d++ {
			childXYZ[d] = xyz[d]<<1 | (child>>d)&1
		}
		for cursor := 0; cursor < n; cursor++ {
			step := b.table[n*child+cursor]
			next[cursor] = hood[step.parent].toChild(ct, step.child)
		}
		b.traverse(next, childXYZ, level+1)
	}
}

func (b *dualBuilder) center(hood []lightCursor, xyz [3]int, level int) r3.Vector {
	t := b.tree
	p := t.origin
	cells := float64(int(1) << uint(level))
	for d := 0; d < t.dimension; d++ {
		o := component(t.origin, d)
		switch {
		case xyz[d] == 0:
		case !hood[1<<d].valid:
			setComponent(&p, d, o+component(t.size, d))
		default:
			setComponent(&p, d, o+(float64(xyz[d])+0.5)*component(t.size, d)/cells)
		}
	}
	return p
}

// corner records the dual cell of the vertex at the center of a neighborhood made of leaves.
func (b *dualBuilder) corner(hood []lightCursor) {
	ids := make([]int, len(hood))
	for i, lc := range hood {
		if !lc.valid {
			return
		}
		ids[i] = lc.index
	}
	b.grid.CornerLeafIDs = append(b.grid.CornerLeafIDs, ids)
}
