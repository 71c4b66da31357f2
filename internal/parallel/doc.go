// Package parallel runs row bands of a CPU pass on a fixed set of worker
// goroutines.
//
// Bands cover disjoint rows, so workers never write the same pixel and the
// framebuffer needs no locking.
package parallel
