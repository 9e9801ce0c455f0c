package leafdata

import (
	"testing"

	"go.viam.com/test"
)

func TestArray(t *testing.T) {
	a := NewArray("density", 2)
	test.That(t, a.Len(), test.ShouldEqual, 0)

	t.Run("insert past the end grows with zeros", func(t *testing.T) {
		a.InsertTuple(2, 5, 6)
		test.That(t, a.Len(), test.ShouldEqual, 3)
		test.That(t, a.Tuple(0), test.ShouldResemble, []float64{0, 0})
		test.That(t, a.Tuple(2), test.ShouldResemble, []float64{5, 6})
	})

	t.Run("overwrite keeps the length", func(t *testing.T) {
		a.InsertTuple(0, 1, 2)
		test.That(t, a.Len(), test.ShouldEqual, 3)
		test.That(t, a.Value(0), test.ShouldEqual, 1.0)
	})

	t.Run("append", func(t *testing.T) {
		i := a.InsertNextTuple(7, 8)
		test.That(t, i, test.ShouldEqual, 3)
		test.That(t, a.Values(), test.ShouldResemble, []float64{1, 2, 0, 0, 5, 6, 7, 8})
	})

	t.Run("insert value keeps other components", func(t *testing.T) {
		a.InsertValue(3, 9)
		test.That(t, a.Tuple(3), test.ShouldResemble, []float64{9, 8})
	})

	t.Run("permute", func(t *testing.T) {
		p := a.Permute([]int{3, 0})
		test.That(t, p.Values(), test.ShouldResemble, []float64{9, 8, 1, 2})
		test.That(t, p.Name(), test.ShouldEqual, "density")
	})

	t.Run("bad values", func(t *testing.T) {
		test.That(t, a.SetValues([]float64{1, 2, 3}), test.ShouldNotBeNil)
	})
}

func TestStore(t *testing.T) {
	s := NewStore()
	test.That(t, s.Scalars(), test.ShouldBeNil)

	b := NewArray("b", 1)
	b.InsertNextTuple(1)
	b.InsertNextTuple(2)
	a := NewArray("a", 1)
	a.InsertNextTuple(3)
	s.AddArray(b)
	s.AddArray(a)

	test.That(t, s.ScalarsName(), test.ShouldEqual, "b")
	test.That(t, s.Names(), test.ShouldResemble, []string{"a", "b"})
	test.That(t, s.NumberOfTuples(), test.ShouldEqual, 2)
	test.That(t, s.Validate(2), test.ShouldNotBeNil)

	test.That(t, s.SetScalars("a"), test.ShouldBeNil)
	test.That(t, s.SetScalars("c"), test.ShouldNotBeNil)

	c := s.Copy()
	c.Scalars().InsertTuple(0, 10)
	test.That(t, a.Value(0), test.ShouldEqual, 3.0)
	test.That(t, c.Scalars().Value(0), test.ShouldEqual, 10.0)

	got, ok := s.Array("b")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, got, test.ShouldEqual, b)
}
