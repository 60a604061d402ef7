// ABOUTME: Tests for the pinned track set
// ABOUTME: Verifies pin order, duplicate rejection and removal

package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPinnedSetOrderAndDuplicates(t *testing.T) {
	p := NewPinnedSet()

	assert.True(t, p.Pin(5))
	assert.True(t, p.Pin(1))
	assert.False(t, p.Pin(5), "duplicate pin")
	assert.True(t, p.Pin(9))

	assert.Equal(t, []int{5, 1, 9}, p.Indices())
	assert.Equal(t, 3, p.Len())
	assert.True(t, p.Contains(1))
	assert.False(t, p.Contains(2))
}

func TestPinnedSetUnpin(t *testing.T) {
	p := NewPinnedSet()
	p.Pin(5)
	p.Pin(1)
	p.Pin(9)

	assert.True(t, p.Unpin(1))
	assert.False(t, p.Unpin(1))
	assert.Equal(t, []int{5, 9}, p.Indices())
	assert.False(t, p.Contains(1))

	// Re-pinning appends at the end
	p.Pin(1)
	assert.Equal(t, []int{5, 9, 1}, p.Indices())
}

func TestPinnedSetToggleAndClear(t *testing.T) {
	p := NewPinnedSet()

	assert.True(t, p.Toggle(3))
	assert.False(t, p.Toggle(3))
	assert.Equal(t, 0, p.Len())

	p.Pin(1)
	p.Pin(2)
	clone := p.Clone()
	p.Clear()

	assert.Equal(t, 0, p.Len())
	assert.False(t, p.Contains(1))
	assert.Equal(t, []int{1, 2}, clone.Indices(), "clone is independent")
}

func TestPinnedSetIndicesIsCopy(t *testing.T) {
	p := NewPinnedSet()
	p.Pin(1)

	idx := p.Indices()
	idx[0] = 99

	assert.Equal(t, []int{1}, p.Indices())
}

func TestPinnedSetRejectsNegativeIndex(t *testing.T) {
	p := NewPinnedSet()
	p.Pin(3)

	assert.Panics(t, func() { p.Pin(-1) })
	assert.Panics(t, func() { p.Unpin(-1) })
	assert.Panics(t, func() { p.Contains(-2) })

	assert.Equal(t, []int{3}, p.Indices(), "a rejected index leaves the set unchanged")
}
