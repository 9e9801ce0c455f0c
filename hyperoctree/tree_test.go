package hyperoctree

import (
	"bytes"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/hyperoctree/leafdata"
)

func TestNewTree(t *testing.T) {
	for dim := 1; dim <= 3; dim++ {
		tr, err := NewTree(dim)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, tr.Dimension(), test.ShouldEqual, dim)
		test.That(t, tr.NumberOfLeaves(), test.ShouldEqual, 1)
		test.That(t, tr.NumberOfLevels(), test.ShouldEqual, 1)
		test.That(t, tr.NumberOfNodes(), test.ShouldEqual, 0)
		test.That(t, tr.LeavesPerLevel(), test.ShouldResemble, []int{1})
		test.That(t, tr.CellType(), test.ShouldEqual, CellType(dim))
		test.That(t, tr.MaxCellSize(), test.ShouldEqual, 1<<dim)
	}

	for _, dim := range []int{0, 4, -1} {
		_, err := NewTree(dim)
		test.That(t, errors.Is(err, ErrInvalidDimension), test.ShouldBeTrue)
	}
	test.That(t, CellVoxel.String(), test.ShouldEqual, "voxel")
}

func TestSubdivideScenario(t *testing.T) {
	tr, err := NewTree(3)
	test.That(t, err, test.ShouldBeNil)

	c := tr.NewCellCursor()
	c.ToRoot()
	test.That(t, c.IsRoot(), test.ShouldBeTrue)
	test.That(t, c.IsLeaf(), test.ShouldBeTrue)
	tr.Subdivide(c)
	test.That(t, c.IsLeaf(), test.ShouldBeFalse)
	test.That(t, c.IsRoot(), test.ShouldBeTrue)
	test.That(t, tr.NumberOfLeaves(), test.ShouldEqual, 8)
	test.That(t, tr.NumberOfLevels(), test.ShouldEqual, 2)

	c.ToChild(0)
	test.That(t, c.LeafID(), test.ShouldEqual, 0)
	tr.Subdivide(c)
	test.That(t, tr.NumberOfLeaves(), test.ShouldEqual, 15)
	test.That(t, tr.NumberOfLevels(), test.ShouldEqual, 3)
	test.That(t, cmp.Diff([]int{0, 7, 8}, tr.LeavesPerLevel()), test.ShouldBeEmpty)

	t.Run("child 0 keeps the subdivided id", func(t *testing.T) {
		c.ToChild(0)
		test.That(t, c.LeafID(), test.ShouldEqual, 0)
		c.ToParent()
		c.ToChild(7)
		test.That(t, c.LeafID(), test.ShouldEqual, 14)
	})

	t.Run("subdividing a node panics", func(t *testing.T) {
		c.ToRoot()
		test.That(t, func() { tr.Subdivide(c) }, test.ShouldPanic)
	})
}

func TestLeafCountInvariant(t *testing.T) {
	for dim := 1; dim <= 3; dim++ {
		tr, err := NewTree(dim)
		test.That(t, err, test.ShouldBeNil)
		calls := 0
		// Refine a staircase: always the last child of the last subdivided node.
		c := tr.NewCellCursor()
		c.ToRoot()
		for level := 0; level < 5; level++ {
			tr.Subdivide(c)
			calls++
			c.ToChild(c.ChildrenCount() - 1)
			other := c.Clone()
			other.ToParent()
			other.ToChild(0)
			tr.Subdivide(other)
			calls++

			test.That(t, tr.NumberOfLeaves(), test.ShouldEqual, 1+calls*((1<<dim)-1))
			sum := 0
			for _, n := range tr.LeavesPerLevel() {
				sum += n
			}
			test.That(t, sum, test.ShouldEqual, tr.NumberOfLeaves())
		}
		test.That(t, tr.NumberOfLevels(), test.ShouldEqual, 7)
	}
}

func TestCollapse(t *testing.T) {
	tr := newUniformTree(t, 2, 1)
	c := cursorAt(tr)
	test.That(t, c.IsTerminalNode(), test.ShouldBeTrue)
	test.That(t, errors.Is(tr.Collapse(c), ErrCollapseNotSupported), test.ShouldBeTrue)
	test.That(t, tr.NumberOfLeaves(), test.ShouldEqual, 4)

	c.ToChild(0)
	test.That(t, func() { tr.Collapse(c) }, test.ShouldPanic)
	tr.Subdivide(c)
	c.ToRoot()
	test.That(t, c.IsTerminalNode(), test.ShouldBeFalse)
	test.That(t, func() { tr.Collapse(c) }, test.ShouldPanic)
}

func TestInitializeAndDimension(t *testing.T) {
	tr := newUniformTree(t, 2, 2)
	tr.SetOrigin(r3.Vector{X: 1})
	tr.SetDimension(2)
	test.That(t, tr.NumberOfLeaves(), test.ShouldEqual, 16)

	tr.SetDimension(1)
	test.That(t, tr.Dimension(), test.ShouldEqual, 1)
	test.That(t, tr.NumberOfLeaves(), test.ShouldEqual, 1)
	test.That(t, tr.Origin(), test.ShouldResemble, r3.Vector{X: 1})
	test.That(t, func() { tr.SetDimension(4) }, test.ShouldPanic)

	tr.Initialize()
	test.That(t, tr.Dimension(), test.ShouldEqual, 3)
	test.That(t, tr.Origin(), test.ShouldResemble, r3.Vector{})
	test.That(t, tr.Size(), test.ShouldResemble, r3.Vector{X: 1, Y: 1, Z: 1})
}

func TestCopies(t *testing.T) {
	tr := newUniformTree(t, 3, 1)
	a := leafdata.NewArray("v", 1)
	for i := 0; i < tr.NumberOfLeaves(); i++ {
		a.InsertNextTuple(float64(i))
	}
	tr.LeafData().AddArray(a)

	deep := tr.DeepCopy()
	c := cursorAt(deep, 3)
	deep.Subdivide(c)
	deep.LeafData().Scalars().InsertTuple(0, 42)
	test.That(t, deep.NumberOfLeaves(), test.ShouldEqual, 15)
	test.That(t, tr.NumberOfLeaves(), test.ShouldEqual, 8)
	test.That(t, a.Value(0), test.ShouldEqual, 0.0)

	shallow, err := NewTree(1)
	test.That(t, err, test.ShouldBeNil)
	shallow.ShallowCopyStructure(tr)
	test.That(t, shallow.Dimension(), test.ShouldEqual, 3)
	test.That(t, shallow.NumberOfLeaves(), test.ShouldEqual, 8)
	test.That(t, shallow.EncodeTopology(), test.ShouldResemble, tr.EncodeTopology())
}

func TestWalk(t *testing.T) {
	tr := newUniformTree(t, 2, 1)
	c := cursorAt(tr, 2)
	tr.Subdivide(c)

	var ids []int
	var levels []int
	tr.Walk(func(leaf *Cursor) bool {
		ids = append(ids, leaf.LeafID())
		levels = append(levels, leaf.Level())
		return true
	})
	test.That(t, ids, test.ShouldResemble, []int{0, 1, 2, 4, 5, 6, 3})
	test.That(t, levels, test.ShouldResemble, []int{1, 1, 2, 2, 2, 2, 1})
	test.That(t, tr.LeafOrder(), test.ShouldResemble, ids)

	count := 0
	tr.Walk(func(*Cursor) bool {
		count++
		return count < 3
	})
	test.That(t, count, test.ShouldEqual, 3)
}

func TestDump(t *testing.T) {
	tr := newUniformTree(t, 1, 1)
	var buf bytes.Buffer
	tr.Dump(&buf)
	test.That(t, buf.String(), test.ShouldContainSubstring, "Dimension: 1")
	test.That(t, buf.String(), test.ShouldContainSubstring, "LeafParent=2 [1 1]")
	test.That(t, buf.String(), test.ShouldContainSubstring, "LeavesPerLevel=[0 2]")
}
