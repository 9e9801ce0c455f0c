package hyperoctree

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

// subdivideTo refines every leaf below c until depth.
func subdivideTo(tr *Tree, c *Cursor, depth int) {
	if c.Level() == depth {
		return
	}
	if c.IsLeaf() {
		tr.Subdivide(c)
	}
	for i := 0; i < c.ChildrenCount(); i++ {
		c.ToChild(i)
		subdivideTo(tr, c, depth)
		c.ToParent()
	}
}

func newUniformTree(t *testing.T, dim, depth int) *Tree {
	t.Helper()
	tr, err := NewTree(dim)
	test.That(t, err, test.ShouldBeNil)
	c := tr.NewCellCursor()
	c.ToRoot()
	subdivideTo(tr, c, depth)
	return tr
}

// cursorAt returns a cursor reached from the root through the given child indices.
func cursorAt(tr *Tree, path ...int) *Cursor {
	c := tr.NewCellCursor()
	c.ToRoot()
	for _, child := range path {
		c.ToChild(child)
	}
	return c
}

type recordedPoint struct {
	id      int64
	pt      r3.Vector
	indices [3]int
	merged  bool
}

type recordingGrabber struct {
	dim    int
	seen   map[int64]bool
	points []recordedPoint
	inits  int
}

func newRecordingGrabber() *recordingGrabber {
	return &recordingGrabber{seen: map[int64]bool{}}
}

func (g *recordingGrabber) SetDimension(dim int) {
	g.dim = dim
}

func (g *recordingGrabber) InitPointInsertion() {
	g.inits++
	g.seen = map[int64]bool{}
}

func (g *recordingGrabber) InsertPoint(ptID int64, pt, pcoords r3.Vector, indices [3]int) {
	g.seen[ptID] = true
	g.points = append(g.points, recordedPoint{id: ptID, pt: pt, indices: indices})
}

func (g *recordingGrabber) InsertPointWithMerge(ptID int64, pt, pcoords r3.Vector, indices [3]int) {
	if g.seen[ptID] {
		return
	}
	g.seen[ptID] = true
	g.points = append(g.points, recordedPoint{id: ptID, pt: pt, indices: indices, merged: true})
}

func (g *recordingGrabber) InsertPoint2D(pt r3.Vector, indices [3]int) {
	g.points = append(g.points, recordedPoint{pt: pt, indices: indices})
}

func (g *recordingGrabber) ids() map[int64]bool {
	ids := map[int64]bool{}
	for _, p := range g.points {
		ids[p.id] = true
	}
	return ids
}
