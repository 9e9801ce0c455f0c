package source

import (
	"context"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/hyperoctree/hyperoctree"
	"go.viam.com/hyperoctree/leafdata"
	"go.viam.com/hyperoctree/logging"
)

// builder refines a tree depth-first from the root. Every cell gets a value; a cell is refined
// when refine says so and the tree is allowed one more level. Only leaves keep their value, a
// subdivided leaf hands its id over to its child 0 which overwrites it.
type builder struct {
	cfg    Config
	tree   *hyperoctree.Tree
	values *leafdata.Array
	value  func(lo, hi r3.Vector) float64
	refine func(lo, hi r3.Vector, value float64) bool

	subdivisions int
}

func newBuilder(cfg Config) (*builder, error) {
	tree, err := hyperoctree.NewTree(cfg.Dimension)
	if err != nil {
		return nil, err
	}
	tree.SetOrigin(vec(cfg.Origin))
	tree.SetSize(vec(cfg.Size))
	values := leafdata.NewArray(cfg.Array, 1)
	tree.LeafData().AddArray(values)
	return &builder{cfg: cfg, tree: tree, values: values}, nil
}

func (b *builder) build(ctx context.Context, c *hyperoctree.Cursor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lo, hi := b.tree.LeafBounds(c)
	value := b.value(lo, hi)
	level := c.Level()
	if level+1 >= b.cfg.Levels || (level >= b.cfg.MinLevels && !b.refine(lo, hi, value)) {
		b.values.InsertTuple(c.LeafID(), value)
		return nil
	}
	b.tree.Subdivide(c)
	b.subdivisions++
	for i := 0; i < c.ChildrenCount(); i++ {
		c.ToChild(i)
		err := b.build(ctx, c)
		c.ToParent()
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) run(ctx context.Context, logger logging.Logger) (*hyperoctree.Tree, error) {
	c := b.tree.NewCellCursor()
	c.ToRoot()
	if err := b.build(ctx, c); err != nil {
		return nil, err
	}
	logger.Debugw("sampled hyperoctree",
		"kind", b.cfg.Kind,
		"subdivisions", b.subdivisions,
		"leaves", b.tree.NumberOfLeaves(),
		"levels", b.tree.NumberOfLevels())
	return b.tree, nil
}

// childCenters returns the centers of the 1<<dim children of the cell [lo, hi].
func childCenters(dim int, lo, hi r3.Vector) []r3.Vector {
	extent := hi.Sub(lo)
	centers := make([]r3.Vector, 0, 1<<dim)
	for child := 0; child < 1<<dim; child++ {
		p := lo
		for d := 0; d < dim; d++ {
			f := 0.25
			if (child>>d)&1 == 1 {
				f = 0.75
			}
			switch d {
			case 0:
				p.X += f * extent.X
			case 1:
				p.Y += f * extent.Y
			default:
				p.Z += f * extent.Z
			}
		}
		centers = append(centers, p)
	}
	return centers
}

// SampleFunction builds a tree whose leaves hold the value of fn at their center. A cell is
// refined while the tree is shallower than MinLevels, or while fn at the centers of its children
// departs from fn at its center by more than Threshold.
func SampleFunction(ctx context.Context, cfg Config, fn ImplicitFunction, logger logging.Logger) (*hyperoctree.Tree, error) {
	b, err := newBuilder(cfg)
	if err != nil {
		return nil, err
	}
	b.value = func(lo, hi r3.Vector) float64 {
		return fn.Evaluate(lo.Add(hi).Mul(0.5))
	}
	b.refine = func(lo, hi r3.Vector, value float64) bool {
		centers := childCenters(cfg.Dimension, lo, hi)
		diffs := make([]float64, len(centers))
		for i, p := range centers {
			diffs[i] = math.Abs(fn.Evaluate(p) - value)
		}
		return floats.Max(diffs) > cfg.Threshold
	}
	return b.run(ctx, logger)
}

// escapeTime returns the number of iterations of z = z*z + c before |z| exceeds 2, at most
// maxIterations.
func escapeTime(z, c complex128, maxIterations int) int {
	for i := 0; i < maxIterations; i++ {
		if real(z)*real(z)+imag(z)*imag(z) > 4 {
			return i
		}
		z = z*z + c
	}
	return maxIterations
}

// Fractal builds a tree whose leaves hold the escape time of the Mandelbrot or Julia set at
// their center, the x axis being real and the y axis imaginary. A cell is refined while the tree
// is shallower than MinLevels, or while the escape times at its corners and center are not all
// the same.
func Fractal(ctx context.Context, cfg Config, logger logging.Logger) (*hyperoctree.Tree, error) {
	b, err := newBuilder(cfg)
	if err != nil {
		return nil, err
	}
	julia := complex(cfg.JuliaC[0], cfg.JuliaC[1])
	at := func(p r3.Vector) float64 {
		if cfg.Kind == KindJulia {
			return float64(escapeTime(complex(p.X, p.Y), julia, cfg.MaxIterations))
		}
		return float64(escapeTime(0, complex(p.X, p.Y), cfg.MaxIterations))
	}
	b.value = func(lo, hi r3.Vector) float64 {
		return at(lo.Add(hi).Mul(0.5))
	}
	b.refine = func(lo, hi r3.Vector, value float64) bool {
		for corner := 0; corner < 1<<cfg.Dimension; corner++ {
			p := lo
			if corner&1 == 1 {
				p.X = hi.X
			}
			if corner&2 == 2 {
				p.Y = hi.Y
			}
			if at(p) != value {
				return true
			}
		}
		return false
	}
	return b.run(ctx, logger)
}

// Build runs the producer described by cfg.
func Build(ctx context.Context, cfg Config, logger logging.Logger) (*hyperoctree.Tree, error) {
	switch cfg.Kind {
	case KindMandelbrot, KindJulia:
		return Fractal(ctx, cfg, logger)
	default:
		fn, err := FunctionFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		return SampleFunction(ctx, cfg, fn, logger)
	}
}
