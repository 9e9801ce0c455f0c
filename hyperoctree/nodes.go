package hyperoctree

import (
	"fmt"
	"io"
)

// maxChildren is the number of child slots of the widest supported node (an octree node).
const maxChildren = 8

// node is an internal node of the tree. Bit i of leafFlags tells whether children[i] is an index
// in the leaf parent table (bit set) or in the node store (bit clear). Only the first 1<<dim
// slots are used.
type node struct {
	parent    int32
	leafFlags uint8
	children  [maxChildren]int32
}

func (n *node) isChildLeaf(i int) bool {
	return (n.leafFlags>>uint(i))&1 == 1
}

// cellTree is the compact storage of a tree: a flat node store and a flat leaf parent table,
// both growing by append only. Node 0 is a sentinel whose first child is the root. The root is
// leaf 0 while the tree has a single leaf and node 1 afterwards.
type cellTree struct {
	dim        int
	nodes      []node
	leafParent []int32
	// leaves per level, its length is the number of levels.
	levels []int
}

func newCellTree(dim int) *cellTree {
	ct := &cellTree{dim: dim}
	ct.allocateRoot()
	return ct
}

func (ct *cellTree) childCount() int {
	return 1 << ct.dim
}

// allLeaves is the leaf flag mask with one bit set per child.
func (ct *cellTree) allLeaves() uint8 {
	return uint8(int(1)<<ct.childCount() - 1)
}

// allocateRoot restores the single-leaf state: the whole domain is leaf 0 at level 0.
func (ct *cellTree) allocateRoot() {
	ct.nodes = append(ct.nodes[:0], node{parent: 0, leafFlags: ct.allLeaves()})
	ct.leafParent = append(ct.leafParent[:0], 0)
	ct.levels = append(ct.levels[:0], 1)
}

func (ct *cellTree) appendNode() int {
	ct.nodes = append(ct.nodes, node{})
	return len(ct.nodes) - 1
}

func (ct *cellTree) appendLeaf() int {
	ct.leafParent = append(ct.leafParent, 0)
	return len(ct.leafParent) - 1
}

func (ct *cellTree) numberOfLeaves() int {
	return len(ct.leafParent)
}

func (ct *cellTree) numberOfLevels() int {
	return len(ct.levels)
}

// subdivide turns the leaf under c into a node with 1<<dim fresh leaves. The subdivided leaf keeps
// its id as child 0, the other children get ids appended at the end of the leaf table. The cursor
// is left on the new node.
func (ct *cellTree) subdivide(c *Cursor) {
	if !c.isLeaf {
		panic("pre: is_a_leaf")
	}
	leafID := c.index
	level := len(c.history)
	children := ct.childCount()

	nodeIndex := ct.appendNode()
	parentIndex := ct.leafParent[leafID]
	n := &ct.nodes[nodeIndex]
	n.parent = parentIndex
	n.leafFlags = ct.allLeaves()

	parent := &ct.nodes[parentIndex]
	if parent.children[c.childIndex] != int32(leafID) {
		panic("check: matching_child")
	}
	parent.leafFlags ^= 1 << uint(c.childIndex)
	parent.children[c.childIndex] = int32(nodeIndex)

	n.children[0] = int32(leafID)
	ct.leafParent[leafID] = int32(nodeIndex)
	for i := 1; i < children; i++ {
		id := ct.appendLeaf()
		n.children[i] = int32(id)
		ct.leafParent[id] = int32(nodeIndex)
	}

	ct.levels[level]--
	if level+1 == len(ct.levels) {
		ct.levels = append(ct.levels, 0)
	}
	ct.levels[level+1] += children

	c.isLeaf = false
	c.index = nodeIndex
}

func (ct *cellTree) clone() *cellTree {
	return &cellTree{
		dim:        ct.dim,
		nodes:      append([]node(nil), ct.nodes...),
		leafParent: append([]int32(nil), ct.leafParent...),
		levels:     append([]int(nil), ct.levels...),
	}
}

func (ct *cellTree) dump(w io.Writer) {
	fmt.Fprintf(w, "Nodes=%d\n", len(ct.nodes))
	for i := range ct.nodes {
		n := &ct.nodes[i]
		fmt.Fprintf(w, "  [%d] Parent=%d LeafFlags=%0*b Children=%v\n",
			i, n.parent, ct.childCount(), n.leafFlags, n.children[:ct.childCount()])
	}
	fmt.Fprintf(w, "LeafParent=%d %v\n", len(ct.leafParent), ct.leafParent)
	fmt.Fprintf(w, "LeavesPerLevel=%v\n", ct.levels)
}
