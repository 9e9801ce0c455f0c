package hyperoctree

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestPointIDs(t *testing.T) {
	tr := newUniformTree(t, 3, 2)
	test.That(t, tr.Resolution(), test.ShouldEqual, 5)
	test.That(t, tr.PointID([3]int{0, 0, 0}), test.ShouldEqual, 0)
	test.That(t, tr.PointID([3]int{1, 2, 3}), test.ShouldEqual, (3*5+2)*5+1)
	test.That(t, tr.PointID([3]int{4, 4, 4}), test.ShouldEqual, 124)

	tr.SetOrigin(r3.Vector{X: -1, Y: 0, Z: 2})
	tr.SetSize(r3.Vector{X: 4, Y: 2, Z: 1})
	rec := tr.PointRecordAt([3]int{1, 2, 4})
	test.That(t, rec.ID, test.ShouldEqual, int64((4*5+2)*5+1))
	test.That(t, rec.PCoords, test.ShouldResemble, r3.Vector{X: 0.25, Y: 0.5, Z: 1})
	test.That(t, rec.Coord, test.ShouldResemble, r3.Vector{X: 0, Y: 1, Z: 3})

	lo, hi := tr.CellPointRange(cursorAt(tr, 7, 0))
	test.That(t, lo, test.ShouldResemble, [3]int{2, 2, 2})
	test.That(t, hi, test.ShouldResemble, [3]int{3, 3, 3})
}

func TestBoundsAndLocation(t *testing.T) {
	tr := newUniformTree(t, 3, 1)
	tr.SetOrigin(r3.Vector{X: 1, Y: 2, Z: 3})
	tr.SetSize(r3.Vector{X: 2, Y: 2, Z: 2})

	lo, hi := tr.Bounds()
	test.That(t, lo, test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 3})
	test.That(t, hi, test.ShouldResemble, r3.Vector{X: 3, Y: 4, Z: 5})

	c := cursorAt(tr, 5)
	lo, hi = tr.LeafBounds(c)
	test.That(t, lo, test.ShouldResemble, r3.Vector{X: 2, Y: 2, Z: 4})
	test.That(t, hi, test.ShouldResemble, r3.Vector{X: 3, Y: 3, Z: 5})
	test.That(t, tr.LeafCenter(c), test.ShouldResemble, r3.Vector{X: 2.5, Y: 2.5, Z: 4.5})

	id, ok := tr.FindLeaf(r3.Vector{X: 2.5, Y: 2.5, Z: 4.5})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, id, test.ShouldEqual, 5)
	id, ok = tr.FindLeaf(r3.Vector{X: 3, Y: 4, Z: 5})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, id, test.ShouldEqual, 7)
	_, ok = tr.FindLeaf(r3.Vector{X: 0, Y: 2, Z: 3})
	test.That(t, ok, test.ShouldBeFalse)

	t.Run("lower dimensions collapse extra axes", func(t *testing.T) {
		flat := newUniformTree(t, 2, 1)
		flat.SetOrigin(r3.Vector{X: 1, Y: 2, Z: 3})
		flat.SetSize(r3.Vector{X: 2, Y: 2, Z: 2})
		_, hi := flat.Bounds()
		test.That(t, hi, test.ShouldResemble, r3.Vector{X: 3, Y: 4, Z: 3})
		id, ok := flat.FindLeaf(r3.Vector{X: 1.5, Y: 3.5, Z: 100})
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, id, test.ShouldEqual, 2)
	})
}

func TestMaxNumbers(t *testing.T) {
	tr := newUniformTree(t, 3, 2)
	test.That(t, tr.MaxNumberOfPoints(0), test.ShouldEqual, 125)
	test.That(t, tr.MaxNumberOfPoints(2), test.ShouldEqual, 8)
	test.That(t, tr.MaxNumberOfPointsOnBoundary(0), test.ShouldEqual, 98)
	test.That(t, tr.MaxNumberOfPointsOnBoundary(2), test.ShouldEqual, 8)
	test.That(t, tr.MaxNumberOfCellsOnBoundary(0), test.ShouldEqual, 152)
	test.That(t, func() { tr.MaxNumberOfPoints(3) }, test.ShouldPanic)

	quad := newUniformTree(t, 2, 2)
	test.That(t, quad.MaxNumberOfPoints(0), test.ShouldEqual, 25)
	test.That(t, quad.MaxNumberOfPointsOnBoundary(0), test.ShouldEqual, 16)
	test.That(t, quad.MaxNumberOfCellsOnBoundary(0), test.ShouldEqual, 20)

	line := newUniformTree(t, 1, 2)
	test.That(t, line.MaxNumberOfPoints(0), test.ShouldEqual, 5)
	test.That(t, line.MaxNumberOfCellsOnBoundary(1), test.ShouldEqual, 2)
	test.That(t, func() { line.MaxNumberOfPointsOnBoundary(0) }, test.ShouldPanic)
}
