package hyperoctree

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/hyperoctree/leafdata"
	"go.viam.com/hyperoctree/logging"
)

func centerValue(p r3.Vector) float64 {
	return p.X + 10*p.Y + 100*p.Z
}

// newLabeledTree subdivides in an order that differs from pre-order, so that decoding assigns
// different leaf ids.
func newLabeledTree(t *testing.T) *Tree {
	t.Helper()
	tr := newUniformTree(t, 3, 1)
	tr.SetOrigin(r3.Vector{X: -1, Y: -1, Z: -1})
	tr.SetSize(r3.Vector{X: 2, Y: 2, Z: 2})
	tr.Subdivide(cursorAt(tr, 6))
	tr.Subdivide(cursorAt(tr, 2))
	tr.Subdivide(cursorAt(tr, 2, 7))

	values := leafdata.NewArray("center", 1)
	ids := leafdata.NewArray("id", 1)
	tr.Walk(func(leaf *Cursor) bool {
		values.InsertTuple(leaf.LeafID(), centerValue(tr.LeafCenter(leaf)))
		ids.InsertTuple(leaf.LeafID(), float64(leaf.LeafID()))
		return true
	})
	tr.LeafData().AddArray(values)
	tr.LeafData().AddArray(ids)
	return tr
}

func checkLabels(t *testing.T, tr *Tree) {
	t.Helper()
	values, ok := tr.LeafData().Array("center")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, values.Len(), test.ShouldEqual, tr.NumberOfLeaves())
	tr.Walk(func(leaf *Cursor) bool {
		test.That(t, values.Value(leaf.LeafID()), test.ShouldEqual, centerValue(tr.LeafCenter(leaf)))
		return true
	})
}

func TestEncodeDecode(t *testing.T) {
	tr := newLabeledTree(t)
	checkLabels(t, tr)

	var buf bytes.Buffer
	test.That(t, tr.Encode(&buf), test.ShouldBeNil)
	test.That(t, buf.String()[:len(FileMagic)], test.ShouldEqual, FileMagic)

	decoded, err := Decode(&buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, decoded.Dimension(), test.ShouldEqual, 3)
	test.That(t, decoded.Origin(), test.ShouldResemble, tr.Origin())
	test.That(t, decoded.Size(), test.ShouldResemble, tr.Size())
	test.That(t, decoded.NumberOfLeaves(), test.ShouldEqual, tr.NumberOfLeaves())
	test.That(t, decoded.LeavesPerLevel(), test.ShouldResemble, tr.LeavesPerLevel())
	test.That(t, decoded.LeafData().ScalarsName(), test.ShouldEqual, "center")
	checkLabels(t, decoded)

	t.Run("ids were renumbered", func(t *testing.T) {
		ids, ok := decoded.LeafData().Array("id")
		test.That(t, ok, test.ShouldBeTrue)
		renumbered := 0
		decoded.Walk(func(leaf *Cursor) bool {
			if ids.Value(leaf.LeafID()) != float64(leaf.LeafID()) {
				renumbered++
			}
			return true
		})
		test.That(t, renumbered, test.ShouldBeGreaterThan, 0)
	})
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("HOT")))
	test.That(t, err, test.ShouldNotBeNil)
	_, err = Decode(bytes.NewReader([]byte("NOPE and more")))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "not a hyperoctree file")
	_, err = Decode(bytes.NewReader([]byte(FileMagic + "garbage")))
	test.That(t, err, test.ShouldNotBeNil)

	tr := newLabeledTree(t)
	short := leafdata.NewArray("short", 1)
	short.InsertNextTuple(1)
	tr.LeafData().AddArray(short)
	var buf bytes.Buffer
	test.That(t, tr.Encode(&buf), test.ShouldNotBeNil)
}

func TestFileRoundTrip(t *testing.T) {
	logger := logging.NewTestLogger(t)
	fn := filepath.Join(t.TempDir(), "labeled.hot")
	tr := newLabeledTree(t)
	test.That(t, WriteToFile(tr, fn, logger), test.ShouldBeNil)

	read, err := NewFromFile(fn, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, read.EncodeTopology(), test.ShouldResemble, tr.EncodeTopology())
	checkLabels(t, read)

	_, err = NewFromFile(filepath.Join(t.TempDir(), "missing.hot"), logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestFileGlobalLogger(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	old := logging.Global()
	logging.ReplaceGlobal(logger)
	defer logging.ReplaceGlobal(old)

	fn := filepath.Join(t.TempDir(), "labeled.hot")
	test.That(t, WriteToFile(newLabeledTree(t), fn, nil), test.ShouldBeNil)
	read, err := NewFromFile(fn, nil)
	test.That(t, err, test.ShouldBeNil)
	checkLabels(t, read)
	test.That(t, logs.FilterMessage("wrote hyperoctree").Len(), test.ShouldEqual, 1)
	test.That(t, logs.FilterMessage("read hyperoctree").Len(), test.ShouldEqual, 1)
}
