// Package tessellate turns the leaves of a hyperoctree into a crack-free cell set: every leaf is
// described by its corners plus the points that finer neighbors put on its boundary, and all
// points are welded by their canonical id.
package tessellate

import (
	"context"

	"github.com/golang/geo/r3"
	"go.uber.org/atomic"

	"go.viam.com/hyperoctree/grabber"
	"go.viam.com/hyperoctree/hyperoctree"
	"go.viam.com/hyperoctree/logging"
	"go.viam.com/hyperoctree/utils"
)

// Point is a welded output point.
type Point struct {
	ID      int64
	Coord   r3.Vector
	Indices [3]int
}

// Result is the tessellation of a tree.
type Result struct {
	Points []Point
	// Cells holds, for the leaf LeafIDs[i], the indices in Points of its boundary points. In 2D
	// they form a counter-clockwise polygon, in 1D a segment. In 3D the 8 corners come first,
	// followed by the hanging points of the faces and edges.
	Cells   [][]int
	LeafIDs []int
	// HangingPoints counts the cell points beyond the corners of their leaf, over all cells.
	HangingPoints int
}

// NumberOfHangingPoints returns the number of cell points beyond the corners of their leaf.
func (r *Result) NumberOfHangingPoints(dim int) int {
	n := 0
	for _, cell := range r.Cells {
		n += len(cell) - 1<<dim
	}
	return n
}

// collector gathers the boundary points of one leaf at a time. Each worker owns one.
type collector struct {
	tree     *hyperoctree.Tree
	enum     *hyperoctree.Enumerator
	triangle *grabber.Triangulator
	polygon  *grabber.Polygon
}

func newCollector(tree *hyperoctree.Tree) *collector {
	col := &collector{tree: tree, enum: tree.NewEnumerator()}
	switch tree.Dimension() {
	case 3:
		col.triangle = grabber.NewTriangulator()
		col.triangle.SetDimension(3)
	case 2:
		col.polygon = grabber.NewPolygon()
		col.polygon.SetDimension(2)
	}
	return col
}

func (col *collector) corner(lo, hi [3]int, bits int) [3]int {
	var ijk [3]int
	for d := 0; d < col.tree.Dimension(); d++ {
		if (bits>>d)&1 == 1 {
			ijk[d] = hi[d]
		} else {
			ijk[d] = lo[d]
		}
	}
	return ijk
}

func (col *collector) collect(leaf *hyperoctree.Cursor) []grabber.Vertex {
	switch col.tree.Dimension() {
	case 3:
		return col.collect3D(leaf)
	case 2:
		return col.collect2D(leaf)
	default:
		lo, hi := col.tree.CellPointRange(leaf)
		vertices := make([]grabber.Vertex, 0, 2)
		for _, ijk := range [][3]int{lo, hi} {
			rec := col.tree.PointRecordAt(ijk)
			vertices = append(vertices, grabber.Vertex{ID: rec.ID, Coord: rec.Coord, PCoords: rec.PCoords, Indices: ijk})
		}
		return vertices
	}
}

func (col *collector) collect3D(leaf *hyperoctree.Cursor) []grabber.Vertex {
	g := col.triangle
	g.InitPointInsertion()
	lo, hi := col.tree.CellPointRange(leaf)
	for bits := 0; bits < 8; bits++ {
		ijk := col.corner(lo, hi, bits)
		rec := col.tree.PointRecordAt(ijk)
		g.InsertPointWithMerge(rec.ID, rec.Coord, rec.PCoords, ijk)
	}
	if !leaf.IsRoot() {
		level := leaf.Level()
		childIndex := leaf.ChildIndex()
		col.enum.PointsOnSiblingFaces(leaf, g)
		var outward [3]bool
		for axis := 0; axis < 3; axis++ {
			outward[axis] = (childIndex>>axis)&1 == 1
		}
		col.enum.PointsOnParentFaces(outward, level, leaf, g)
		for axis := 0; axis < 3; axis++ {
			for k := 0; k < 2; k++ {
				for j := 0; j < 2; j++ {
					col.enum.PointsOnParentEdge(leaf, level, axis, k, j, g)
				}
			}
		}
	}
	return append([]grabber.Vertex(nil), g.Points()...)
}

// quadWalk lists the counter-clockwise boundary of a quadtree leaf: corner bits followed by the
// edge leaving that corner.
var quadWalk = [4][2]int{
	{0, 2},
	{1, 1},
	{3, 3},
	{2, 0},
}

func (col *collector) collect2D(leaf *hyperoctree.Cursor) []grabber.Vertex {
	g := col.polygon
	g.InitPointInsertion()
	lo, hi := col.tree.CellPointRange(leaf)
	level := leaf.Level()
	for _, step := range quadWalk {
		ijk := col.corner(lo, hi, step[0])
		pt, _ := col.tree.PointCoordinates(ijk)
		g.InsertPoint2D(pt, ijk)
		if !leaf.IsRoot() {
			col.enum.PointsOnParentEdge2D(leaf, step[1], level, g)
		}
	}
	vertices := append([]grabber.Vertex(nil), g.Vertices()...)
	for i := range vertices {
		rec := col.tree.PointRecordAt(vertices[i].Indices)
		vertices[i].ID = rec.ID
		vertices[i].PCoords = rec.PCoords
	}
	return vertices
}

// Run tessellates every leaf of tree. Leaves are processed in parallel, so the tree must not be
// modified until Run returns. The result does not depend on the number of workers: leaves and
// points come in pre-order of the leaves.
func Run(ctx context.Context, tree *hyperoctree.Tree, logger logging.Logger) (*Result, error) {
	var leaves []*hyperoctree.Cursor
	tree.Walk(func(leaf *hyperoctree.Cursor) bool {
		leaves = append(leaves, leaf.Clone())
		return true
	})

	perLeaf := make([][]grabber.Vertex, len(leaves))
	var hanging atomic.Int64
	err := utils.GroupWorkParallel(
		ctx,
		len(leaves),
		func(numGroups int) {
			logger.Debugw("tessellating", "leaves", len(leaves), "workers", numGroups)
		},
		func(groupNum, groupSize, from, to int) (utils.MemberWorkFunc, utils.GroupWorkDoneFunc) {
			col := newCollector(tree)
			return func(memberNum, workNum int) error {
				perLeaf[workNum] = col.collect(leaves[workNum])
				hanging.Add(int64(len(perLeaf[workNum]) - tree.MaxCellSize()))
				return nil
			}, nil
		},
	)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Cells:         make([][]int, len(leaves)),
		LeafIDs:       make([]int, len(leaves)),
		HangingPoints: int(hanging.Load()),
	}
	welded := map[int64]int{}
	for i, vertices := range perLeaf {
		result.LeafIDs[i] = leaves[i].LeafID()
		cell := make([]int, len(vertices))
		for j, v := range vertices {
			index, ok := welded[v.ID]
			if !ok {
				index = len(result.Points)
				welded[v.ID] = index
				result.Points = append(result.Points, Point{ID: v.ID, Coord: v.Coord, Indices: v.Indices})
			}
			cell[j] = index
		}
		result.Cells[i] = cell
	}
	logger.Infow("tessellated hyperoctree",
		"leaves", len(leaves),
		"points", len(result.Points),
		"hanging", result.HangingPoints)
	return result, nil
}
