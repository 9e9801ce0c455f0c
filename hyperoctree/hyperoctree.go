// Package hyperoctree implements an N-dimensional spatial subdivision tree (binary tree in 1D,
// quadtree in 2D, octree in 3D) used as the topological backbone of an adaptively refined
// dataset. Leaves are addressed by dense integer ids which double as indices into leaf
// attribute arrays, and the tree is navigated exclusively through cursors.
//
// A Tree is built by a single owner calling Subdivide, then shared read-only. Several cursors
// may walk the same read-only tree at once, including from different goroutines, as long as no
// goroutine calls Subdivide or Collapse during that window. The tree does not enforce this.
package hyperoctree

import (
	"github.com/pkg/errors"
)

// Tokens of the pre-order topology stream. Each position of the tree visited in pre-order emits
// exactly one token.
const (
	NodeToken = uint8(iota)
	LeafToken
)

// CellType describes the shape of a leaf for a given dimension.
type CellType uint8

// Leaf shapes: a segment in 1D, an axis-aligned rectangle in 2D and an axis-aligned box in 3D.
const (
	CellLine = CellType(iota + 1)
	CellPixel
	CellVoxel
)

// MaxDecodeLevels bounds the depth of trees rebuilt from untrusted topology streams. Point ids
// are computed on a (2^(levels-1)+1)^3 grid, which must fit in an int64.
const MaxDecodeLevels = 21

var (
	// ErrCollapseNotSupported is returned by Collapse. Resolution limiting builds a new tree instead.
	ErrCollapseNotSupported = errors.New("collapsing a terminal node is not supported, build a new tree instead")
	// ErrInvalidDimension is returned when a dimension outside [1,3] is requested.
	ErrInvalidDimension = errors.New("dimension must be 1, 2 or 3")
	// ErrMalformedTopology is returned when a topology token stream cannot describe a tree.
	ErrMalformedTopology = errors.New("malformed topology")
)

// String returns a human readable name of the cell type.
func (ct CellType) String() string {
	switch ct {
	case CellLine:
		return "line"
	case CellPixel:
		return "pixel"
	case CellVoxel:
		return "voxel"
	}
	return "unknown"
}

func validDimension(dim int) bool {
	return dim >= 1 && dim <= 3
}
