// Package flatten resamples the leaves of a hyperoctree onto a uniform grid.
package flatten

import (
	"context"
	"math/bits"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/hyperoctree/hyperoctree"
	"go.viam.com/hyperoctree/logging"
	"go.viam.com/hyperoctree/utils"
)

// MaxCells is the largest number of cells Flatten allocates.
const MaxCells = 1 << 24

// Grid is a dense image of a leaf array at the finest level of a tree. Cells are stored x
// first, then y, then z.
type Grid struct {
	Dims    [3]int
	Origin  r3.Vector
	Spacing r3.Vector
	Values  []float64
	// LeafIDs holds the id of the leaf covering every cell.
	LeafIDs []int
}

// Index returns the position of cell (i, j, k) in Values.
func (g *Grid) Index(i, j, k int) int {
	return (k*g.Dims[1]+j)*g.Dims[0] + i
}

// Range returns the smallest and largest values of the grid.
func (g *Grid) Range() (lo, hi float64) {
	if len(g.Values) == 0 {
		return 0, 0
	}
	return floats.Min(g.Values), floats.Max(g.Values)
}

// Flatten samples the first component of the named leaf array on a grid of 2^(levels-1) cells
// along each axis of the tree. Every cell takes the value of the deepest leaf containing it.
func Flatten(ctx context.Context, tree *hyperoctree.Tree, name string, logger logging.Logger) (*Grid, error) {
	values, ok := tree.LeafData().Array(name)
	if !ok {
		return nil, errors.Errorf("no leaf array named %q", name)
	}
	if values.Len() != tree.NumberOfLeaves() {
		return nil, errors.Errorf("leaf array %q has %d tuples for %d leaves", name, values.Len(), tree.NumberOfLeaves())
	}
	level := tree.NumberOfLevels() - 1
	if level*tree.Dimension() > bits.Len(MaxCells)-1 {
		return nil, errors.Errorf("a %d level tree flattens to 2^%d cells, more than %d",
			tree.NumberOfLevels(), level*tree.Dimension(), MaxCells)
	}
	cells := 1 << level
	g := &Grid{Dims: [3]int{1, 1, 1}, Origin: tree.Origin()}
	spacing := [3]float64{}
	size := tree.Size()
	for d, extent := range []float64{size.X, size.Y, size.Z} {
		if d < tree.Dimension() {
			g.Dims[d] = cells
			spacing[d] = extent / float64(cells)
		}
	}
	g.Spacing = r3.Vector{X: spacing[0], Y: spacing[1], Z: spacing[2]}
	total := g.Dims[0] * g.Dims[1] * g.Dims[2]
	g.Values = make([]float64, total)
	g.LeafIDs = make([]int, total)

	// Work is split by rows along x.
	rows := total / g.Dims[0]
	err := utils.GroupWorkParallel(ctx, rows, func(int) {},
		func(groupNum, groupSize, from, to int) (utils.MemberWorkFunc, utils.GroupWorkDoneFunc) {
			c := tree.NewCellCursor()
			indices := make([]int, 3)
			return func(memberNum, row int) error {
				indices[1] = row % g.Dims[1]
				indices[2] = row / g.Dims[1]
				for i := 0; i < g.Dims[0]; i++ {
					indices[0] = i
					c.MoveToNode(indices, level)
					id := c.LeafID()
					at := g.Index(i, indices[1], indices[2])
					g.LeafIDs[at] = id
					g.Values[at] = values.Value(id)
				}
				return nil
			}, nil
		})
	if err != nil {
		return nil, err
	}
	lo, hi := g.Range()
	logger.Debugw("flattened hyperoctree", "array", name, "dims", g.Dims, "min", lo, "max", hi)
	return g, nil
}
