package hyperoctree

// Enumerator finds the points that a leaf must share with its neighbors so that a non-conforming
// grid can be polygonized without cracks: the points lying on the faces (3D) or edges (2D and 3D)
// of neighbors that are refined deeper than the leaf. Found points are handed to a PointsGrabber.
//
// All point indices are computed on the finest grid of the tree, so two leaves of different
// levels compute the same id for the same location.
//
// Neighbor lookups are one level deep per call: the Parent variants find the neighbor at the
// given level and only descend into its children. Coarser neighbors are never searched.
type Enumerator struct {
	tree *Tree
	tmp  *Cursor
}

// childrenOnEdge lists, for each edge of a quadtree node (-x, +x, -y, +y), the two children
// touching it in counter-clockwise order.
var childrenOnEdge = [4][2]int{
	{0, 2},
	{3, 1},
	{1, 0},
	{2, 3},
}

// report builds the point at doubled indices sijk of a node of the given level and hands it
// to the grabber.
func (e *Enumerator) report(sijk [3]int, level int, merge bool, g PointsGrabber) {
	shift := uint(e.tree.NumberOfLevels() - 1 - level - 1)
	var ptIndices [3]int
	for d := 0; d < 3; d++ {
		ptIndices[d] = sijk[d] << shift
	}
	ptID := e.tree.PointID(ptIndices)
	pt, pcoords := e.tree.PointCoordinates(ptIndices)
	if merge {
		g.InsertPointWithMerge(ptID, pt, pcoords, ptIndices)
	} else {
		g.InsertPoint(ptID, pt, pcoords, ptIndices)
	}
}

func (e *Enumerator) checkNotLeaf(sibling *Cursor, level int) {
	if sibling == nil {
		panic("pre: sibling_exists")
	}
	if sibling.IsLeaf() {
		panic("pre: sibling_not_leaf")
	}
	if level < 0 || level >= e.tree.NumberOfLevels()-1 {
		panic("pre: valid_level_not_leaf")
	}
}

// PointsOnFace reports the points of the subdivided node under sibling lying on its face face.
// Faces are numbered 2*axis for the lower side and 2*axis+1 for the upper side. level is the
// level of sibling. The 3x3 grid of the face is reported: corners and edge midpoints with
// merging, the center without. Children touching the face that are refined further are visited
// recursively and contribute their edge midpoints and centers. The cursor is restored on return.
func (e *Enumerator) PointsOnFace(sibling *Cursor, face, level int, g PointsGrabber) {
	if sibling != nil && sibling.Dimension() != 3 {
		panic("pre: sibling_3d")
	}
	if face < 0 || face >= 6 {
		panic("pre: valid_face")
	}
	e.checkNotLeaf(sibling, level)
	e.pointsOnFace(sibling, face, level, true, g)
}

func (e *Enumerator) pointsOnFace(sibling *Cursor, face, level int, corners bool, g PointsGrabber) {
	k := face >> 1
	i := (k + 1) % 3
	j := (i + 1) % 3

	var base [3]int
	for d := 0; d < 3; d++ {
		base[d] = sibling.grid[d] << 1
	}
	base[k] += (face & 1) << 1

	for b := 0; b < 3; b++ {
		for a := 0; a < 3; a++ {
			sijk := base
			sijk[i] += a
			sijk[j] += b
			// 0 on a corner, 1 on an edge midpoint, 2 on the face center.
			mid := 0
			if a == 1 {
				mid++
			}
			if b == 1 {
				mid++
			}
			switch mid {
			case 0:
				if corners {
					e.report(sijk, level, true, g)
				}
			case 1:
				e.report(sijk, level, true, g)
			default:
				e.report(sijk, level, false, g)
			}
		}
	}

	// The 4 children sharing the face.
	childa := 0
	if face&1 == 1 {
		childa = 1 << uint(k)
	}
	binc := 1 << uint(i)
	ainc := 1 << uint(j)
	for a := 0; a < 2; a++ {
		child := childa
		for b := 0; b < 2; b++ {
			sibling.ToChild(child)
			if !sibling.IsLeaf() {
				e.pointsOnFace(sibling, face, level+1, false, g)
			}
			sibling.ToParent()
			child += binc
		}
		childa += ainc
	}
}

// PointsOnEdge2D reports, in counter-clockwise order, the points of the subdivided quadtree
// node under sibling lying on its edge edge (0 for -x, 1 for +x, 2 for -y, 3 for +y). level is
// the level of sibling. The cursor is restored on return.
func (e *Enumerator) PointsOnEdge2D(sibling *Cursor, edge, level int, g PointsGrabber) {
	if sibling != nil && sibling.Dimension() != 2 {
		panic("pre: sibling_2d")
	}
	if edge < 0 || edge >= 4 {
		panic("pre: valid_edge")
	}
	e.checkNotLeaf(sibling, level)
	e.pointsOnEdge2D(sibling, edge, level, g)
}

func (e *Enumerator) pointsOnEdge2D(sibling *Cursor, edge, level int, g PointsGrabber) {
	sibling.ToChild(childrenOnEdge[edge][0])
	if !sibling.IsLeaf() {
		e.pointsOnEdge2D(sibling, edge, level+1, g)
	}
	sibling.ToParent()

	k := edge >> 1
	i := (k + 1) % 2
	var sijk [3]int
	sijk[k] = sibling.grid[k]<<1 + (edge&1)<<1
	sijk[i] = sibling.grid[i]<<1 + 1

	shift := uint(e.tree.NumberOfLevels() - 1 - level - 1)
	var ptIndices [3]int
	ptIndices[0] = sijk[0] << shift
	ptIndices[1] = sijk[1] << shift
	pt, _ := e.tree.PointCoordinates(ptIndices)
	g.InsertPoint2D(pt, ptIndices)

	sibling.ToChild(childrenOnEdge[edge][1])
	if !sibling.IsLeaf() {
		e.pointsOnEdge2D(sibling, edge, level+1, g)
	}
	sibling.ToParent()
}

// PointsOnEdge reports the points of the subdivided octree node under sibling lying on one of
// its edges. The edge is parallel to axis; j selects its side along axis (axis+1)%3 and k its
// side along axis (axis+2)%3. level is the level of sibling. The cursor is restored on return.
func (e *Enumerator) PointsOnEdge(sibling *Cursor, level, axis, k, j int, g PointsGrabber) {
	if sibling != nil && sibling.Dimension() != 3 {
		panic("pre: sibling_3d")
	}
	if axis < 0 || axis >= 3 {
		panic("pre: valid_axis")
	}
	if k < 0 || k > 1 {
		panic("pre: valid_k")
	}
	if j < 0 || j > 1 {
		panic("pre: valid_j")
	}
	e.checkNotLeaf(sibling, level)
	e.pointsOnEdge(sibling, level, axis, k, j, g)
}

func (e *Enumerator) pointsOnEdge(sibling *Cursor, level, axis, k, j int, g PointsGrabber) {
	var sijk [3]int
	for d := 0; d < 3; d++ {
		sijk[d] = sibling.grid[d] << 1
	}
	sijk[axis]++
	sijk[(axis+1)%3] += j << 1
	sijk[(axis+2)%3] += k << 1
	e.report(sijk, level, true, g)

	var ijk [3]int
	ijk[(axis+1)%3] = j
	ijk[(axis+2)%3] = k
	for half := 0; half < 2; half++ {
		ijk[axis] = half
		child := (ijk[2]<<1+ijk[1])<<1 + ijk[0]
		sibling.ToChild(child)
		if !sibling.IsLeaf() {
			e.pointsOnEdge(sibling, level+1, axis, k, j, g)
		}
		sibling.ToParent()
	}
}

// PointsOnSiblingFaces reports the points of the siblings of the leaf under cursor lying on the
// faces they share with it. Along each axis the leaf has exactly one sibling across a face;
// only siblings refined further contribute points.
func (e *Enumerator) PointsOnSiblingFaces(cursor *Cursor, g PointsGrabber) {
	if cursor == nil || cursor.Dimension() != 3 {
		panic("pre: cursor_3d")
	}
	if cursor.IsRoot() {
		panic("pre: not_root")
	}
	level := cursor.Level()
	childIndex := cursor.ChildIndex()
	for axis := 0; axis < 3; axis++ {
		bit := (childIndex >> uint(axis)) & 1
		e.tmp.ToSameNode(cursor)
		e.tmp.ToParent()
		e.tmp.ToChild(childIndex ^ 1<<uint(axis))
		if !e.tmp.IsLeaf() {
			// The sibling faces the leaf with its lower side when the leaf is the lower half.
			e.pointsOnFace(e.tmp, axis<<1+bit, level, true, g)
		}
	}
}

// PointsOnParentFaces reports the points of the neighbors of the node under cursor, at the
// same level, lying on the faces they share with it. faces[axis] selects the upper (true) or
// lower (false) neighbor along each axis. Neighbors outside the domain, coarser than level or not
// refined further are skipped.
func (e *Enumerator) PointsOnParentFaces(faces [3]bool, level int, cursor *Cursor, g PointsGrabber) {
	if cursor == nil || cursor.Dimension() != 3 {
		panic("pre: cursor_3d")
	}
	if level < 0 {
		panic("pre: valid_level")
	}
	indices := cursor.GridIndices()
	for axis := 0; axis < 3; axis++ {
		target := indices
		if faces[axis] {
			target[axis]++
			if target[axis] >= 1<<uint(level) {
				continue
			}
		} else {
			target[axis]--
			if target[axis] < 0 {
				continue
			}
		}
		if !e.tmp.MoveToNode(target[:], level) || e.tmp.IsLeaf() {
			continue
		}
		childFace := axis << 1
		if !faces[axis] {
			childFace++
		}
		e.pointsOnFace(e.tmp, childFace, level, true, g)
	}
}

// PointsOnParentEdge2D reports, in counter-clockwise order, the points of the neighbor of the
// node under cursor across its edge edge (0 for -x, 1 for +x, 2 for -y, 3 for +y), at the same
// level. Nothing is reported when that neighbor is outside the domain, coarser or a leaf.
func (e *Enumerator) PointsOnParentEdge2D(cursor *Cursor, edge, level int, g PointsGrabber) {
	if cursor == nil || cursor.Dimension() != 2 {
		panic("pre: cursor_2d")
	}
	if level < 0 {
		panic("pre: valid_level")
	}
	if edge < 0 || edge >= 4 {
		panic("pre: valid_edge")
	}
	target := []int{cursor.grid[0], cursor.grid[1]}
	axis := edge >> 1
	var childEdge int
	if edge&1 == 1 {
		childEdge = edge - 1
		target[axis]++
		if target[axis] >= 1<<uint(level) {
			return
		}
	} else {
		childEdge = edge + 1
		target[axis]--
		if target[axis] < 0 {
			return
		}
	}
	if !e.tmp.MoveToNode(target, level) || e.tmp.IsLeaf() {
		return
	}
	e.pointsOnEdge2D(e.tmp, childEdge, level, g)
}

// PointsOnParentEdge reports the points of the neighbor of the node under cursor sharing its
// edge (axis, k, j) only, at the same level. See PointsOnEdge for the edge numbering. Nothing is
// reported when that neighbor is outside the domain, coarser or a leaf.
func (e *Enumerator) PointsOnParentEdge(cursor *Cursor, level, axis, k, j int, g PointsGrabber) {
	if cursor == nil || cursor.Dimension() != 3 {
		panic("pre: cursor_3d")
	}
	if level < 0 {
		panic("pre: valid_level")
	}
	if axis < 0 || axis >= 3 || k < 0 || k > 1 || j < 0 || j > 1 {
		panic("pre: valid_edge")
	}
	target := cursor.GridIndices()
	limit := 1 << uint(level)
	for _, step := range [2]struct{ d, side int }{{(axis + 1) % 3, j}, {(axis + 2) % 3, k}} {
		if step.side == 1 {
			target[step.d]++
			if target[step.d] >= limit {
				return
			}
		} else {
			target[step.d]--
			if target[step.d] < 0 {
				return
			}
		}
	}
	if !e.tmp.MoveToNode(target[:], level) || e.tmp.IsLeaf() {
		return
	}
	e.pointsOnEdge(e.tmp, level, axis, 1-k, 1-j, g)
}

// The tree forwards the enumeration family to the enumerator sharing its scratch cursor.

// PointsOnFace is Enumerator.PointsOnFace on the tree's own enumerator.
func (t *Tree) PointsOnFace(sibling *Cursor, face, level int, g PointsGrabber) {
	t.enum.PointsOnFace(sibling, face, level, g)
}

// PointsOnEdge is Enumerator.PointsOnEdge on the tree's own enumerator.
func (t *Tree) PointsOnEdge(sibling *Cursor, level, axis, k, j int, g PointsGrabber) {
	t.enum.PointsOnEdge(sibling, level, axis, k, j, g)
}

// PointsOnEdge2D is Enumerator.PointsOnEdge2D on the tree's own enumerator.
func (t *Tree) PointsOnEdge2D(sibling *Cursor, edge, level int, g PointsGrabber) {
	t.enum.PointsOnEdge2D(sibling, edge, level, g)
}

// PointsOnSiblingFaces is Enumerator.PointsOnSiblingFaces on the tree's own enumerator.
func (t *Tree) PointsOnSiblingFaces(cursor *Cursor, g PointsGrabber) {
	t.enum.PointsOnSiblingFaces(cursor, g)
}

// PointsOnParentFaces is Enumerator.PointsOnParentFaces on the tree's own enumerator.
func (t *Tree) PointsOnParentFaces(faces [3]bool, level int, cursor *Cursor, g PointsGrabber) {
	t.enum.PointsOnParentFaces(faces, level, cursor, g)
}

// PointsOnParentEdge is Enumerator.PointsOnParentEdge on the tree's own enumerator.
func (t *Tree) PointsOnParentEdge(cursor *Cursor, level, axis, k, j int, g PointsGrabber) {
	t.enum.PointsOnParentEdge(cursor, level, axis, k, j, g)
}

// PointsOnParentEdge2D is Enumerator.PointsOnParentEdge2D on the tree's own enumerator.
func (t *Tree) PointsOnParentEdge2D(cursor *Cursor, edge, level int, g PointsGrabber) {
	t.enum.PointsOnParentEdge2D(cursor, edge, level, g)
}
