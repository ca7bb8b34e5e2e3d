// Package registry implements two process-wide, lock-free, append-only
// registries that deduplicate argument-permutation tuples and type-check
// keys across every MessageSplitter in the process.
//
// Both registries follow the same discipline: a single atomic pointer
// holds an immutable snapshot; writers publish a new snapshot via
// compare-and-swap, and a failed CAS means "reload and rescan only the
// suffix appended since our last look" — never redo work already done.
package registry

import (
	"sync/atomic"

	"github.com/kristofer/avail/pkg/phrasetype"
)

// --- Permutations registry ---

type permutationTable struct {
	tuples [][]int
}

var permutations atomic.Pointer[permutationTable]

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IndexForPermutation returns p's 1-based index in the permutations
// registry, appending p if it has not been seen before. Equal tuples
// (regardless of which goroutine observes them first) always receive the
// same index, and an index, once returned, remains valid for the life of
// the process.
func IndexForPermutation(p []int) int {
	owned := append([]int(nil), p...)
	checked := 0
	for {
		cur := permutations.Load()
		var tuples [][]int
		if cur != nil {
			tuples = cur.tuples
		}
		for i := checked; i < len(tuples); i++ {
			if equalInts(tuples[i], owned) {
				return i + 1
			}
		}
		checked = len(tuples)

		next := &permutationTable{
			tuples: append(append([][]int{}, tuples...), owned),
		}
		if permutations.CompareAndSwap(cur, next) {
			return len(next.tuples)
		}
		// CAS lost the race; loop around and rescan only the newly
		// appended suffix next time (checked is already past what we
		// examined).
	}
}

// Permutation returns the tuple previously registered at the given
// 1-based index.
func Permutation(index int) []int {
	cur := permutations.Load()
	return cur.tuples[index-1]
}

// --- Type-check registry ---

type typeCheckTable struct {
	types []phrasetype.Type
	index map[string]int
}

var typeChecks atomic.Pointer[typeCheckTable]

// IndexForType returns t's 1-based index in the type-check registry,
// appending t if absent. The index map and the types sequence are
// published together in a single CAS so a concurrent reader never
// observes one without the other.
func IndexForType(t phrasetype.Type) int {
	key := t.String()
	for {
		cur := typeChecks.Load()
		if cur != nil {
			if idx, ok := cur.index[key]; ok {
				return idx
			}
		}
		var oldTypes []phrasetype.Type
		var oldIndex map[string]int
		if cur != nil {
			oldTypes = cur.types
			oldIndex = cur.index
		}
		newIndex := make(map[string]int, len(oldIndex)+1)
		for k, v := range oldIndex {
			newIndex[k] = v
		}
		newTypes := append(append([]phrasetype.Type{}, oldTypes...), t)
		newIndex[key] = len(newTypes)

		next := &typeCheckTable{types: newTypes, index: newIndex}
		if typeChecks.CompareAndSwap(cur, next) {
			return len(newTypes)
		}
	}
}

// TypeForIndex returns the type previously registered at the given
// 1-based index.
func TypeForIndex(index int) phrasetype.Type {
	cur := typeChecks.Load()
	return cur.types[index-1]
}
