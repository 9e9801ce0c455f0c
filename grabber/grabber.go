// Package grabber implements the point collectors handed to a hyperoctree enumerator.
package grabber

import (
	"github.com/golang/geo/r3"

	"go.viam.com/hyperoctree/hyperoctree"
)

// Vertex is a collected point. ID is only meaningful for points collected in 3D.
type Vertex struct {
	ID      int64
	Coord   r3.Vector
	PCoords r3.Vector
	Indices [3]int
}

// Triangulator collects the points of a 3D leaf and of its hanging neighbors, once each, ready to
// be fed to a triangulation of the leaf.
type Triangulator struct {
	merged map[int64]struct{}
	points []Vertex
}

var _ hyperoctree.PointsGrabber = (*Triangulator)(nil)

// NewTriangulator returns an empty Triangulator.
func NewTriangulator() *Triangulator {
	return &Triangulator{merged: map[int64]struct{}{}}
}

// SetDimension panics unless dim is 3.
func (g *Triangulator) SetDimension(dim int) {
	if dim != 3 {
		panic("pre: valid_dim")
	}
}

// InitPointInsertion forgets the points of the previous leaf.
func (g *Triangulator) InitPointInsertion() {
	clear(g.merged)
	g.points = g.points[:0]
}

// InsertPoint inserts a point reported once per pass, such as a face center.
func (g *Triangulator) InsertPoint(ptID int64, pt, pcoords r3.Vector, indices [3]int) {
	g.merged[ptID] = struct{}{}
	g.points = append(g.points, Vertex{ID: ptID, Coord: pt, PCoords: pcoords, Indices: indices})
}

// InsertPointWithMerge inserts a point unless its id was inserted during this pass.
func (g *Triangulator) InsertPointWithMerge(ptID int64, pt, pcoords r3.Vector, indices [3]int) {
	if _, ok := g.merged[ptID]; ok {
		return
	}
	g.InsertPoint(ptID, pt, pcoords, indices)
}

// InsertPoint2D panics, polygons are collected by a Polygon.
func (g *Triangulator) InsertPoint2D(r3.Vector, [3]int) {
	panic("pre: 2d_grabber")
}

// Points returns the points inserted since the last InitPointInsertion. The slice is reused by
// the next pass.
func (g *Triangulator) Points() []Vertex {
	return g.points
}

// Polygon collects, in order, the vertices of the boundary of a 2D leaf.
type Polygon struct {
	vertices []Vertex
}

var _ hyperoctree.PointsGrabber = (*Polygon)(nil)

// NewPolygon returns an empty Polygon.
func NewPolygon() *Polygon {
	return &Polygon{}
}

// SetDimension panics unless dim is 2.
func (g *Polygon) SetDimension(dim int) {
	if dim != 2 {
		panic("pre: valid_dim")
	}
}

// InitPointInsertion starts a new polygon.
func (g *Polygon) InitPointInsertion() {
	g.vertices = g.vertices[:0]
}

// InsertPoint panics, 3D points are collected by a Triangulator.
func (g *Polygon) InsertPoint(int64, r3.Vector, r3.Vector, [3]int) {
	panic("pre: 3d_grabber")
}

// InsertPointWithMerge panics, 3D points are collected by a Triangulator.
func (g *Polygon) InsertPointWithMerge(int64, r3.Vector, r3.Vector, [3]int) {
	panic("pre: 3d_grabber")
}

// InsertPoint2D appends a vertex to the polygon.
func (g *Polygon) InsertPoint2D(pt r3.Vector, indices [3]int) {
	g.vertices = append(g.vertices, Vertex{ID: -1, Coord: pt, Indices: indices})
}

// Vertices returns the vertices of the polygon in insertion order. The slice is reused by the
// next polygon.
func (g *Polygon) Vertices() []Vertex {
	return g.vertices
}
