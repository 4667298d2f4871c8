// Package memory holds the growth policy shared by the chunk buffers, the
// constant pool and the hash table.
package memory

// MinCapacity is the capacity a buffer jumps to on its first growth.
const MinCapacity = 8

// GrowCapacity returns the next capacity for a full buffer: MinCapacity
// for small buffers, double otherwise.
func GrowCapacity(capacity int) int {
	if capacity < MinCapacity {
		return MinCapacity
	}
	return capacity * 2
}

// Grow returns s with room for at least one more element, reallocating to
// GrowCapacity(cap(s)) when s is full. Existing elements are preserved.
func Grow[T any](s []T) []T {
	if len(s) < cap(s) {
		return s
	}
	out := make([]T, len(s), GrowCapacity(cap(s)))
	copy(out, s)
	return out
}
