package hb

import (
	"sort"
	"strconv"
	"strings"
)

// VectorClock maps goroutine ids to logical time.
//
// Absent entries are zero. The clock is sparse because goroutine ids are
// unbounded and a test only ever involves a handful of them.
//
// Example: {1:50, 7:30} means goroutine 1 at 50, goroutine 7 at 30, everybody
// else at 0.
type VectorClock map[uint64]uint64

// NewVectorClock returns a clock with every entry at zero.
func NewVectorClock() VectorClock {
	return VectorClock{}
}

// Clone returns an independent copy of vc.
func (vc VectorClock) Clone() VectorClock {
	clone := make(VectorClock, len(vc))
	for id, t := range vc {
		clone[id] = t
	}
	return clone
}

// Join performs the point-wise maximum vc = vc ⊔ other.
//
// This is the synchronization step on acquire: the acquiring goroutine learns
// everything the releasing goroutine knew.
func (vc VectorClock) Join(other VectorClock) {
	for id, t := range other {
		if t > vc[id] {
			vc[id] = t
		}
	}
}

// LessOrEqual reports whether vc ⊑ other, i.e. vc[i] <= other[i] for all i.
func (vc VectorClock) LessOrEqual(other VectorClock) bool {
	for id, t := range vc {
		if t > other[id] {
			return false
		}
	}
	return true
}

// HappensBefore is LessOrEqual under the name used in race reports.
func (vc VectorClock) HappensBefore(other VectorClock) bool {
	return vc.LessOrEqual(other)
}

// Increment advances the entry of goroutine id.
func (vc VectorClock) Increment(id uint64) {
	vc[id]++
}

// Get returns the entry of goroutine id.
func (vc VectorClock) Get(id uint64) uint64 {
	return vc[id]
}

// Set sets the entry of goroutine id.
func (vc VectorClock) Set(id, t uint64) {
	if t == 0 {
		delete(vc, id)
		return
	}
	vc[id] = t
}

// String returns "{id:time, ...}" for the non-zero entries in id order.
func (vc VectorClock) String() string {
	ids := make([]uint64, 0, len(vc))
	for id, t := range vc {
		if t != 0 {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return "{}"
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(id, 10) + ":" + strconv.FormatUint(vc[id], 10)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
