// Package limiter caps the depth of a hyperoctree.
package limiter

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"go.viam.com/hyperoctree/hyperoctree"
	"go.viam.com/hyperoctree/leafdata"
	"go.viam.com/hyperoctree/logging"
)

// Limit returns a new tree with the same domain as in but at most maxLevels levels. Leaves of in
// deeper than that are merged into the leaf of the result containing them, whose attributes are
// the volume weighted means of theirs. in is left untouched.
func Limit(ctx context.Context, in *hyperoctree.Tree, maxLevels int, logger logging.Logger) (*hyperoctree.Tree, error) {
	if maxLevels < 1 {
		return nil, errors.Errorf("max levels must be positive, got %d", maxLevels)
	}
	if err := in.LeafData().Validate(in.NumberOfLeaves()); err != nil {
		return nil, errors.Wrap(err, "limiting hyperoctree")
	}
	out, err := hyperoctree.NewTree(in.Dimension())
	if err != nil {
		return nil, err
	}
	out.SetOrigin(in.Origin())
	out.SetSize(in.Size())

	l := &limiter{in: in, out: out, maxLevels: maxLevels}
	for _, a := range in.LeafData().Arrays() {
		l.pairs = append(l.pairs, arrayPair{from: a, to: leafdata.NewArray(a.Name(), a.Components())})
	}

	inC := in.NewCellCursor()
	inC.ToRoot()
	outC := out.NewCellCursor()
	outC.ToRoot()
	if err := l.copy(ctx, inC, outC); err != nil {
		return nil, err
	}

	store := leafdata.NewStore()
	for _, p := range l.pairs {
		store.AddArray(p.to)
	}
	if name := in.LeafData().ScalarsName(); name != "" {
		if err := store.SetScalars(name); err != nil {
			return nil, err
		}
	}
	out.SetLeafData(store)

	logger.Debugw("limited hyperoctree",
		"levels_in", in.NumberOfLevels(),
		"levels_out", out.NumberOfLevels(),
		"leaves_in", in.NumberOfLeaves(),
		"leaves_out", out.NumberOfLeaves(),
		"merged", l.merged)
	return out, nil
}

type arrayPair struct {
	from, to *leafdata.Array
}

type limiter struct {
	in, out   *hyperoctree.Tree
	maxLevels int
	pairs     []arrayPair
	merged    int
}

// copy walks both trees in lockstep. outC is always a leaf when called.
func (l *limiter) copy(ctx context.Context, inC, outC *hyperoctree.Cursor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch {
	case inC.IsLeaf():
		for _, p := range l.pairs {
			p.to.InsertTuple(outC.LeafID(), p.from.Tuple(inC.LeafID())...)
		}
		return nil
	case outC.Level()+1 < l.maxLevels:
		l.out.Subdivide(outC)
		for i := 0; i < inC.ChildrenCount(); i++ {
			inC.ToChild(i)
			outC.ToChild(i)
			err := l.copy(ctx, inC, outC)
			inC.ToParent()
			outC.ToParent()
			if err != nil {
				return err
			}
		}
		return nil
	default:
		l.average(inC, outC)
		return nil
	}
}

// average stores in the leaf under outC the volume weighted means of the leaves under inC.
func (l *limiter) average(inC, outC *hyperoctree.Cursor) {
	var ids []int
	var weights []float64
	base := inC.Level()
	sub := inC.Clone()
	collectLeaves(sub, func(leaf *hyperoctree.Cursor) {
		ids = append(ids, leaf.LeafID())
		weights = append(weights, math.Ldexp(1, -l.in.Dimension()*(leaf.Level()-base)))
	})
	l.merged += len(ids)

	values := make([]float64, len(ids))
	for _, p := range l.pairs {
		tuple := make([]float64, p.from.Components())
		for c := range tuple {
			for i, id := range ids {
				values[i] = p.from.Tuple(id)[c]
			}
			tuple[c] = stat.Mean(values, weights)
		}
		p.to.InsertTuple(outC.LeafID(), tuple...)
	}
}

func collectLeaves(c *hyperoctree.Cursor, fn func(*hyperoctree.Cursor)) {
	if c.IsLeaf() {
		fn(c)
		return
	}
	for i := 0; i < c.ChildrenCount(); i++ {
		c.ToChild(i)
		collectLeaves(c, fn)
		c.ToParent()
	}
}
