package source

import (
	"context"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/hyperoctree/hyperoctree"
	"go.viam.com/hyperoctree/logging"
)

func TestFunctions(t *testing.T) {
	s := Sphere{Center: r3.Vector{X: 1}, Radius: 2}
	test.That(t, s.Evaluate(r3.Vector{X: 1}), test.ShouldEqual, -2.0)
	test.That(t, s.Evaluate(r3.Vector{X: 4}), test.ShouldEqual, 1.0)

	p := Plane{Normal: r3.Vector{Z: 2}}
	test.That(t, p.Evaluate(r3.Vector{X: 5, Z: 3}), test.ShouldEqual, 3.0)

	b := Box{Max: r3.Vector{X: 2, Y: 2, Z: 2}}
	test.That(t, b.Evaluate(r3.Vector{X: 1, Y: 1, Z: 1}), test.ShouldEqual, -1.0)
	test.That(t, b.Evaluate(r3.Vector{X: 3, Y: 1, Z: 1}), test.ShouldEqual, 1.0)

	_, err := FunctionFromConfig(Config{Kind: KindJulia})
	test.That(t, err, test.ShouldNotBeNil)
}

func checkLeafValues(t *testing.T, tree *hyperoctree.Tree, name string) {
	t.Helper()
	values, ok := tree.LeafData().Array(name)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, values.Len(), test.ShouldEqual, tree.NumberOfLeaves())
}

func TestSampleFunction(t *testing.T) {
	logger := logging.NewTestLogger(t)
	cfg := DefaultConfig()
	cfg.Levels = 5
	cfg.Threshold = 0.05

	tree, err := Build(context.Background(), cfg, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tree.NumberOfLevels(), test.ShouldEqual, 5)
	checkLeafValues(t, tree, "scalars")

	// A uniform tree would have 8^4 leaves.
	test.That(t, tree.NumberOfLeaves(), test.ShouldBeLessThan, 4096)
	test.That(t, tree.NumberOfLeaves(), test.ShouldBeGreaterThan, 8)

	values, _ := tree.LeafData().Array("scalars")
	fn := Sphere{Center: r3.Vector{X: 0.5, Y: 0.5, Z: 0.5}, Radius: 0.4}
	tree.Walk(func(leaf *hyperoctree.Cursor) bool {
		test.That(t, values.Value(leaf.LeafID()), test.ShouldEqual, fn.Evaluate(tree.LeafCenter(leaf)))
		return true
	})

	t.Run("min levels force a uniform start", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Kind = KindPlane
		cfg.Dimension = 2
		cfg.Levels = 4
		cfg.MinLevels = 2
		cfg.Threshold = 10
		tree, err := Build(context.Background(), cfg, logger)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, tree.LeavesPerLevel(), test.ShouldResemble, []int{0, 0, 16})
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Build(ctx, cfg, logger)
		test.That(t, err, test.ShouldEqual, context.Canceled)
	})
}

func TestFractal(t *testing.T) {
	logger := logging.NewTestLogger(t)
	test.That(t, escapeTime(0, 0, 50), test.ShouldEqual, 50)
	test.That(t, escapeTime(0, 2, 50), test.ShouldEqual, 2)

	cfg := DefaultConfig()
	cfg.Kind = KindMandelbrot
	cfg.Dimension = 2
	cfg.Levels = 6
	cfg.MaxIterations = 30
	cfg.Origin = [3]float64{-2, -1.5, 0}
	cfg.Size = [3]float64{3, 3, 1}
	tree, err := Build(context.Background(), cfg, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tree.Dimension(), test.ShouldEqual, 2)
	test.That(t, tree.NumberOfLevels(), test.ShouldEqual, 6)
	test.That(t, tree.NumberOfLeaves(), test.ShouldBeLessThan, 1024)
	checkLeafValues(t, tree, "scalars")

	cfg.Kind = KindJulia
	cfg.JuliaC = [2]float64{-0.8, 0.156}
	tree, err = Build(context.Background(), cfg, logger)
	test.That(t, err, test.ShouldBeNil)
	checkLeafValues(t, tree, "scalars")
}
