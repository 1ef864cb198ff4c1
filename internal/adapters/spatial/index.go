// Package spatial provides an R-tree index over survey outline bounding
// boxes, used for the disjoint-outline data-quality check: a merged lake
// geometry that does not even overlap its own survey outline's bounding box
// points at a mis-keyed identifier in one of the layers.
package spatial

import (
	"github.com/dhconnelly/rtreego"

	"github.com/chrisfahey1010/LakeMapper/pkg/geometry"
)

// R-tree branching factors.
const (
	rtreeMinBranch = 25
	rtreeMaxBranch = 50
)

// minExtent keeps degenerate (point or zero-width) boxes indexable.
const minExtent = 1e-9

// outlineEntry is one indexed survey outline.
type outlineEntry struct {
	dowlknum string
	box      geometry.Bounds
}

// Bounds implements rtreego.Spatial.
func (e *outlineEntry) Bounds() rtreego.Rect {
	return toRect(e.box)
}

func toRect(b geometry.Bounds) rtreego.Rect {
	point := rtreego.Point{b.MinX, b.MinY}
	lengths := []float64{
		maxf(b.MaxX-b.MinX, minExtent),
		maxf(b.MaxY-b.MinY, minExtent),
	}
	// Lengths are clamped strictly positive above, the only way
	// construction can fail.
	rect, _ := rtreego.NewRect(point, lengths)
	return rect
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// OutlineIndex is built once before parallel merge work begins and is
// read-only afterwards, so workers may query it without synchronization.
type OutlineIndex struct {
	tree *rtreego.Rtree
	byID map[string]*outlineEntry
}

// NewOutlineIndex creates an empty index.
func NewOutlineIndex() *OutlineIndex {
	return &OutlineIndex{
		tree: rtreego.NewTree(2, rtreeMinBranch, rtreeMaxBranch),
		byID: make(map[string]*outlineEntry),
	}
}

// Insert adds one survey outline's bounding box. Not safe to call
// concurrently with queries.
func (ix *OutlineIndex) Insert(dowlknum string, box geometry.Bounds) {
	e := &outlineEntry{dowlknum: dowlknum, box: box}
	ix.byID[dowlknum] = e
	ix.tree.Insert(e)
}

// Len returns the number of indexed outlines.
func (ix *OutlineIndex) Len() int {
	return len(ix.byID)
}

// Query returns the identifiers of all outlines whose boxes intersect b.
func (ix *OutlineIndex) Query(b geometry.Bounds) []string {
	results := ix.tree.SearchIntersect(toRect(b))
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.(*outlineEntry).dowlknum)
	}
	return ids
}

// Disjoint reports whether the merged geometry's bounding box fails to
// intersect the lake's own survey outline box. The merge gate already keeps
// fragments within the buffered outline, so the boxes are compared without
// expansion here: a miss means every surviving fragment sits off the
// outline's extent. Unknown identifiers are never flagged.
func (ix *OutlineIndex) Disjoint(dowlknum string, merged geometry.Bounds) bool {
	if _, ok := ix.byID[dowlknum]; !ok {
		return false
	}
	for _, id := range ix.Query(merged) {
		if id == dowlknum {
			return false
		}
	}
	return true
}
