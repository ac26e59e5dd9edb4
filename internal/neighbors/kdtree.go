package neighbors

import (
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/san-kum/sphgas/internal/dynamo"
	"github.com/san-kum/sphgas/internal/vec"
)

// KDTree answers nearest-k queries from a gonum k-d tree rebuilt on every
// call. Build is O(n log n) and each query is O(k log n) on average.
type KDTree struct {
	Workers int
}

func (t *KDTree) Name() string { return "kdtree" }

func (t *KDTree) Find(points []vec.Vec3, k int) ([][]int, error) {
	n := len(points)
	if err := checkK(n, k); err != nil {
		return nil, err
	}

	nodes := make(indexedPoints, n)
	for i, p := range points {
		nodes[i] = indexedPoint{x: [3]float64{p.X, p.Y, p.Z}, index: i}
	}
	tree := kdtree.New(nodes, false)

	out := make([][]int, n)
	flat := make([]int, n*k)
	dynamo.ParallelFor(n, t.Workers, 16, func(start, end int) {
		found := make([]kdtree.ComparableDist, 0, k+1)
		for i := start; i < end; i++ {
			q := indexedPoint{x: [3]float64{points[i].X, points[i].Y, points[i].Z}, index: i}
			keep := kdtree.NewNKeeper(k + 1)
			tree.NearestSet(keep, q)

			found = found[:0]
			for _, c := range keep.Heap {
				if c.Comparable == nil || c.Comparable.(indexedPoint).index == i {
					continue
				}
				found = append(found, c)
			}

			row := flat[i*k : (i+1)*k : (i+1)*k]
			if len(found) < k {
				h := make(maxHeap, 0, k)
				nearestInto(points, i, &h, row)
			} else {
				// Coincident points can push the query itself out of the
				// keeper, leaving k+1 candidates.
				sort.Slice(found, func(a, b int) bool { return found[a].Dist < found[b].Dist })
				for c := 0; c < k; c++ {
					row[c] = found[c].Comparable.(indexedPoint).index
				}
			}
			out[i] = row
		}
	})
	return out, nil
}

type indexedPoint struct {
	x     [3]float64
	index int
}

func (p indexedPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(indexedPoint)
	return p.x[d] - q.x[d]
}

func (p indexedPoint) Dims() int { return 3 }

// Distance is the squared Euclidean distance, as kdtree expects.
func (p indexedPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(indexedPoint)
	dx, dy, dz := p.x[0]-q.x[0], p.x[1]-q.x[1], p.x[2]-q.x[2]
	return dx*dx + dy*dy + dz*dz
}

type indexedPoints []indexedPoint

func (p indexedPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p indexedPoints) Len() int                              { return len(p) }
func (p indexedPoints) Pivot(d kdtree.Dim) int                { return plane{Dim: d, indexedPoints: p}.Pivot() }
func (p indexedPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// plane sorts points along one dimension for median partitioning.
type plane struct {
	kdtree.Dim
	indexedPoints
}

func (p plane) Less(i, j int) bool { return p.indexedPoints[i].x[p.Dim] < p.indexedPoints[j].x[p.Dim] }
func (p plane) Pivot() int         { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Swap(i, j int)      { p.indexedPoints[i], p.indexedPoints[j] = p.indexedPoints[j], p.indexedPoints[i] }

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.indexedPoints = p.indexedPoints[start:end]
	return p
}
