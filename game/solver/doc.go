// Package solver finds shortest solutions with a breadth-first search over
// boards reachable through the movement rules of package engine.
//
// Search deduplicates states by their canonical key when they are expanded,
// not when they are queued, and stops at the first victorious state it
// dequeues. Because every move costs one step the returned sequence is a
// shortest one; ties are broken by the fixed up, down, left, right order.
package solver
