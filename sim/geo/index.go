package geo

import (
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// Site is an indexed location: a base station identifier and its coverage.
type Site struct {
	ID   int
	Area CoverageArea
}

// point is the kdtree.Comparable stored in the tree. Query points use id -1.
type point struct {
	x, y float64
	id   int
}

var _ kdtree.Comparable = point{}

func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(point)
	if d == 0 {
		return p.x - q.x
	}
	return p.y - q.y
}

func (p point) Dims() int { return 2 }

// Distance returns the squared Euclidean distance, as kdtree expects.
func (p point) Distance(c kdtree.Comparable) float64 {
	q := c.(point)
	dx, dy := p.x-q.x, p.y-q.y
	return dx*dx + dy*dy
}

// points implements kdtree.Interface with a deterministic median pivot:
// elements are sorted on the plane (ties by id) rather than sampled at
// random, so the tree shape depends only on its input.
type points []point

func (p points) Index(i int) kdtree.Comparable { return p[i] }
func (p points) Len() int                      { return len(p) }
func (p points) Slice(s, e int) kdtree.Interface {
	return p[s:e]
}

func (p points) Pivot(d kdtree.Dim) int {
	sort.Slice(p, func(i, j int) bool {
		c := p[i].Compare(p[j], d)
		if c != 0 {
			return c < 0
		}
		return p[i].id < p[j].id
	})
	return len(p) / 2
}

// Index answers "nearest covering stations" queries over a set of sites.
// It is a derived, read-mostly structure: it refers to stations by ID and
// never owns them.
type Index struct {
	tree  *kdtree.Tree
	areas map[int]CoverageArea
}

// NewIndex builds a balanced tree over sites. Duplicate locations are fine.
func NewIndex(sites []Site) *Index {
	pts := make(points, len(sites))
	areas := make(map[int]CoverageArea, len(sites))
	for i, s := range sites {
		pts[i] = point{x: s.Area.Center.X, y: s.Area.Center.Y, id: s.ID}
		areas[s.ID] = s.Area
	}
	return &Index{tree: kdtree.New(pts, false), areas: areas}
}

// Len returns the number of indexed sites.
func (ix *Index) Len() int {
	return ix.tree.Len()
}

// Insert adds a site after construction, e.g. a relay that joins mid-run.
// The tree is not rebalanced.
func (ix *Index) Insert(s Site) {
	ix.tree.Insert(point{x: s.Area.Center.X, y: s.Area.Center.Y, id: s.ID}, false)
	ix.areas[s.ID] = s.Area
}

// Nearest returns the IDs of the k sites closest to p, in ascending
// distance order (equal distances ordered by ID), keeping only those whose
// coverage contains p. The result is empty when k <= 0 or nothing covers p.
func (ix *Index) Nearest(p Coordinate, k int) []int {
	if k <= 0 || ix.tree.Len() == 0 {
		return nil
	}
	if n := ix.tree.Len(); k > n {
		k = n
	}
	q := point{x: p.X, y: p.Y, id: -1}

	// The k-th smallest distance bounds the search. Collecting every site
	// within that bound, rather than keeping the first k found, makes ties
	// on the boundary resolve by ID instead of by traversal order.
	nk := kdtree.NewNKeeper(k)
	ix.tree.NearestSet(nk, q)
	if nk.Len() == 0 {
		return nil
	}
	bound := nk.Heap[nk.Len()-1].Dist
	dk := kdtree.NewDistKeeper(bound)
	ix.tree.NearestSet(dk, q)

	found := make([]kdtree.ComparableDist, 0, dk.Len())
	for _, c := range dk.Heap {
		if c.Comparable != nil {
			found = append(found, c)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].Dist != found[j].Dist {
			return found[i].Dist < found[j].Dist
		}
		return found[i].Comparable.(point).id < found[j].Comparable.(point).id
	})
	if len(found) > k {
		found = found[:k]
	}

	ids := make([]int, 0, len(found))
	for _, c := range found {
		id := c.Comparable.(point).id
		if ix.areas[id].Contains(p) {
			ids = append(ids, id)
		}
	}
	return ids
}
