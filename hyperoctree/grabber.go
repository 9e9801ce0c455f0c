package hyperoctree

import (
	"github.com/golang/geo/r3"
)

// PointsGrabber receives the points found by an Enumerator. The enumerator only decides where
// the points lying on shared faces and edges are; the grabber decides how they end up in the
// output of its filter.
//
// Every 3D point comes with its canonical id, computed on the finest grid of the tree, so that
// the same physical location always carries the same id whatever the level of the leaf that
// found it.
type PointsGrabber interface {
	// SetDimension tells the grabber whether it collects 2D or 3D points.
	SetDimension(dim int)
	// InitPointInsertion starts a new enumeration pass and forgets previously merged ids.
	InitPointInsertion()
	// InsertPoint inserts a point that cannot have been reported before in this pass.
	InsertPoint(ptID int64, pt, pcoords r3.Vector, indices [3]int)
	// InsertPointWithMerge inserts a point unless ptID was already reported in this pass.
	InsertPointWithMerge(ptID int64, pt, pcoords r3.Vector, indices [3]int)
	// InsertPoint2D appends a polygon vertex. Order matters, there is no merging.
	InsertPoint2D(pt r3.Vector, indices [3]int)
}
