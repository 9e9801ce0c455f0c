package hyperoctree

import (
	"github.com/golang/geo/r3"
)

func component(v r3.Vector, d int) float64 {
	switch d {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func setComponent(v *r3.Vector, d int, value float64) {
	switch d {
	case 0:
		v.X = value
	case 1:
		v.Y = value
	default:
		v.Z = value
	}
}

// Resolution returns the number of points per axis of the finest grid of the tree,
// 2^(NumberOfLevels()-1)+1.
func (t *Tree) Resolution() int64 {
	return int64(1)<<uint(t.NumberOfLevels()-1) + 1
}

// PointID returns the canonical id of the point at the given indices of the finest grid.
func (t *Tree) PointID(ijk [3]int) int64 {
	res := t.Resolution()
	return (int64(ijk[2])*res+int64(ijk[1]))*res + int64(ijk[0])
}

// PointCoordinates returns the world and parametric coordinates of the point at the given
// indices of the finest grid.
func (t *Tree) PointCoordinates(ijk [3]int) (pt, pcoords r3.Vector) {
	ratio := 1.0 / float64(t.Resolution()-1)
	for d := 0; d < 3; d++ {
		p := float64(ijk[d]) * ratio
		setComponent(&pcoords, d, p)
		setComponent(&pt, d, p*component(t.size, d)+component(t.origin, d))
	}
	return pt, pcoords
}

// CellPointRange returns the finest grid point indices of the lower and upper corners of the
// cell under the cursor.
func (t *Tree) CellPointRange(c *Cursor) (lo, hi [3]int) {
	shift := uint(t.NumberOfLevels() - 1 - c.Level())
	for d := 0; d < t.dimension; d++ {
		lo[d] = c.grid[d] << shift
		hi[d] = (c.grid[d] + 1) << shift
	}
	return lo, hi
}

// Bounds returns the lower and upper corners of the domain. Along axes beyond the dimension
// of the tree, both corners equal the origin.
func (t *Tree) Bounds() (lo, hi r3.Vector) {
	lo = t.origin
	hi = t.origin
	for d := 0; d < t.dimension; d++ {
		setComponent(&hi, d, component(t.origin, d)+component(t.size, d))
	}
	return lo, hi
}

// LeafBounds returns the lower and upper corners of the cell under the cursor.
func (t *Tree) LeafBounds(c *Cursor) (lo, hi r3.Vector) {
	lo = t.origin
	hi = t.origin
	cells := float64(int(1) << uint(c.Level()))
	for d := 0; d < t.dimension; d++ {
		step := component(t.size, d) / cells
		o := component(t.origin, d)
		setComponent(&lo, d, o+float64(c.grid[d])*step)
		setComponent(&hi, d, o+float64(c.grid[d]+1)*step)
	}
	return lo, hi
}

// LeafCenter returns the center of the cell under the cursor.
func (t *Tree) LeafCenter(c *Cursor) r3.Vector {
	lo, hi := t.LeafBounds(c)
	return lo.Add(hi).Mul(0.5)
}

// FindLeaf returns the id of the leaf containing x. Points on the upper boundary belong to the
// last cell. It returns false when x is outside the domain.
func (t *Tree) FindLeaf(x r3.Vector) (int, bool) {
	lo, hi := t.Bounds()
	for d := 0; d < t.dimension; d++ {
		v := component(x, d)
		if v < component(lo, d) || v > component(hi, d) {
			return -1, false
		}
	}
	c := t.NewCellCursor()
	c.ToRoot()
	origin := t.origin
	size := t.size
	for !c.IsLeaf() {
		child := 0
		for d := 0; d < t.dimension; d++ {
			half := component(size, d) * 0.5
			setComponent(&size, d, half)
			mid := component(origin, d) + half
			if component(x, d) >= mid {
				child |= 1 << uint(d)
				setComponent(&origin, d, mid)
			}
		}
		c.ToChild(child)
	}
	return c.LeafID(), true
}

// CellType returns the shape of the leaves.
func (t *Tree) CellType() CellType {
	return CellType(t.dimension)
}

// MaxCellSize returns the number of corners of a leaf.
func (t *Tree) MaxCellSize() int {
	return 1 << uint(t.dimension)
}

// MaxNumberOfPoints returns the number of points of a subtree rooted at level when all of its
// leaves are at the last level, i.e. the number of points of a uniform grid.
func (t *Tree) MaxNumberOfPoints(level int) int64 {
	t.checkLevel(level)
	segment := int64(1)<<uint(t.NumberOfLevels()-level-1) + 1
	result := segment
	for i := 1; i < t.dimension; i++ {
		result *= segment
	}
	return result
}

// MaxNumberOfPointsOnBoundary returns the number of points on the boundary (faces in 3D, edges
// in 2D) of a subtree rooted at level when all of its leaves are at the last level.
func (t *Tree) MaxNumberOfPointsOnBoundary(level int) int64 {
	if t.dimension != 2 && t.dimension != 3 {
		panic("pre: 2d_or_3d")
	}
	t.checkLevel(level)
	segment := int64(1)<<uint(t.NumberOfLevels()-level-1) + 1
	if t.dimension == 2 {
		return (segment - 1) << 2
	}
	result := (segment * segment) << 1
	if segment > 2 {
		result += ((segment - 1) * (segment - 2)) << 2
	}
	return result
}

// MaxNumberOfCellsOnBoundary returns the number of cells around a cell of level when all the
// leaves are at the last level.
func (t *Tree) MaxNumberOfCellsOnBoundary(level int) int64 {
	t.checkLevel(level)
	segment := int64(1) << uint(t.NumberOfLevels()-1-level)
	switch t.dimension {
	case 1:
		return 2
	case 2:
		return segment<<2 + 4
	default:
		return (segment+2)*segment*6 + 8
	}
}

func (t *Tree) checkLevel(level int) {
	if level < 0 || level >= t.NumberOfLevels() {
		panic("pre: positive_level")
	}
}

// PointRecord is a point of the finest grid of a tree.
type PointRecord struct {
	ID      int64
	Coord   r3.Vector
	PCoords r3.Vector
	Indices [3]int
}

// PointRecordAt returns the point at the given indices of the finest grid.
func (t *Tree) PointRecordAt(ijk [3]int) PointRecord {
	pt, pcoords := t.PointCoordinates(ijk)
	return PointRecord{ID: t.PointID(ijk), Coord: pt, PCoords: pcoords, Indices: ijk}
}
