// ABOUTME: Insertion-ordered, duplicate-free set of pinned track indices
// ABOUTME: Membership is kept in a roaring bitmap alongside the pin order

package recommend

import (
	"fmt"
	"math"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// PinnedSet holds the tracks the user pinned, in pin order
type PinnedSet struct {
	order   []int
	members *roaring.Bitmap
}

// NewPinnedSet creates an empty set
func NewPinnedSet() *PinnedSet {
	return &PinnedSet{members: roaring.New()}
}

// key converts a track index to its bitmap key
func key(i int) uint32 {
	if i < 0 || int64(i) > math.MaxUint32 {
		panic(fmt.Sprintf("recommend: track index %d out of range", i))
	}

	return uint32(i)
}

// Pin adds track index i. Returns false if it was already pinned.
func (p *PinnedSet) Pin(i int) bool {
	if !p.members.CheckedAdd(key(i)) {
		return false
	}

	p.order = append(p.order, i)

	return true
}

// Unpin removes track index i. Returns false if it was not pinned.
func (p *PinnedSet) Unpin(i int) bool {
	if !p.members.CheckedRemove(key(i)) {
		return false
	}

	p.order = slices.DeleteFunc(p.order, func(x int) bool { return x == i })

	return true
}

// Toggle pins or unpins i and returns whether it is now pinned
func (p *PinnedSet) Toggle(i int) bool {
	if p.Unpin(i) {
		return false
	}

	return p.Pin(i)
}

// Contains reports whether i is pinned
func (p *PinnedSet) Contains(i int) bool {
	return p.members.Contains(key(i))
}

// Indices returns a copy of the pinned indices in pin order
func (p *PinnedSet) Indices() []int {
	return slices.Clone(p.order)
}

// Len returns the number of pinned tracks
func (p *PinnedSet) Len() int {
	return len(p.order)
}

// Clear removes all pins
func (p *PinnedSet) Clear() {
	p.order = nil
	p.members.Clear()
}

// Clone returns an independent copy
func (p *PinnedSet) Clone() *PinnedSet {
	return &PinnedSet{order: slices.Clone(p.order), members: p.members.Clone()}
}
