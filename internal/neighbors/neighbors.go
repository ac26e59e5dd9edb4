// Package neighbors finds, for every point, the k nearest other points.
package neighbors

import (
	"container/heap"
	"fmt"

	"github.com/san-kum/sphgas/internal/dynamo"
	"github.com/san-kum/sphgas/internal/vec"
)

// Finder computes neighbor index lists. Result i holds exactly k distinct
// indices, none equal to i.
type Finder interface {
	Name() string
	Find(points []vec.Vec3, k int) ([][]int, error)
}

// New returns the finder registered under name.
func New(name string, workers int) (Finder, error) {
	switch name {
	case "", "brute":
		return &Brute{Workers: workers}, nil
	case "kdtree":
		return &KDTree{Workers: workers}, nil
	default:
		return nil, dynamo.ConfigError("unknown neighbor search %q", name)
	}
}

// Names lists the finders accepted by New.
func Names() []string { return []string{"brute", "kdtree"} }

func checkK(n, k int) error {
	if k < 1 || k >= n {
		return fmt.Errorf("%w (k=%d, n=%d)", dynamo.ErrNeighborCount, k, n)
	}
	return nil
}

// NearestNeighbors is the reference O(n²) search with a bounded max-heap
// per point.
func NearestNeighbors(points []vec.Vec3, k int) ([][]int, error) {
	return (&Brute{}).Find(points, k)
}

// Brute scans every other point once per point. O(n²) time, O(n·k) space.
type Brute struct {
	Workers int
}

func (b *Brute) Name() string { return "brute" }

func (b *Brute) Find(points []vec.Vec3, k int) ([][]int, error) {
	n := len(points)
	if err := checkK(n, k); err != nil {
		return nil, err
	}

	out := make([][]int, n)
	flat := make([]int, n*k)
	dynamo.ParallelFor(n, b.Workers, 16, func(start, end int) {
		h := make(maxHeap, 0, k)
		for i := start; i < end; i++ {
			row := flat[i*k : (i+1)*k : (i+1)*k]
			nearestInto(points, i, &h, row)
			out[i] = row
		}
	})
	return out, nil
}

// nearestInto fills row with the len(row) nearest points to points[i],
// reusing h as scratch.
func nearestInto(points []vec.Vec3, i int, h *maxHeap, row []int) {
	k := len(row)
	*h = (*h)[:0]
	pi := points[i]
	for j, pj := range points {
		if i == j {
			continue
		}
		d2 := pi.Sub(pj).Norm2()
		if h.Len() < k {
			heap.Push(h, candidate{dist2: d2, index: j})
		} else if d2 < (*h)[0].dist2 {
			(*h)[0] = candidate{dist2: d2, index: j}
			heap.Fix(h, 0)
		}
	}
	for c, cand := range *h {
		row[c] = cand.index
	}
}

type candidate struct {
	dist2 float64
	index int
}

// maxHeap keeps the farthest kept candidate at the root.
type maxHeap []candidate

func (h maxHeap) Len() int           { return len(h) }
func (h maxHeap) Less(i, j int) bool { return h[i].dist2 > h[j].dist2 }
func (h maxHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x any)        { *h = append(*h, x.(candidate)) }

func (h *maxHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
