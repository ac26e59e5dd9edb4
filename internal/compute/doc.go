// Package compute provides backends that evaluate the gravitational
// acceleration of every particle in one pass.
//
//   - direct: exact O(n²) pairwise sum, parallel over particles
//   - barneshut: O(n log n) octree approximation from gonum, controlled
//     by the opening angle theta
//
// Select one by name:
//
//	backend, err := compute.New("barneshut", workers, 0.5)
//	err = backend.Accelerations(positions, masses, g, minSep2, acc)
//
// With theta = 0 the Barnes-Hut tree opens every cell and matches the
// direct sum up to rounding.
package compute
