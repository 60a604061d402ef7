// ABOUTME: Variable-width bit set packed into 32-bit words
// ABOUTME: Used for per-track genre membership and genre filter masks

// Package bitset provides a fixed-size boolean vector packed into uint32 words
// with bitwise combinators that promote operands of different widths.
package bitset

import (
	"fmt"
	"math/bits"
	"strings"
)

// wordBits is the width of a storage word
const wordBits = 32

// None is returned by FirstSet when no bit is set
const None = -1

// BitSet is a boolean vector of Size() bits.
// Bits at positions >= Size() inside the tail word are ignored by every query.
type BitSet struct {
	size  int
	words []uint32
}

// New creates a zeroed bit set holding size bits
func New(size int) *BitSet {
	if size < 0 {
		panic(fmt.Sprintf("bitset: negative size %d", size))
	}

	return &BitSet{
		size:  size,
		words: make([]uint32, wordCount(size)),
	}
}

// wordCount returns ceil(size/32)
func wordCount(size int) int {
	return (size + wordBits - 1) / wordBits
}

// Size returns the number of semantic bits
func (b *BitSet) Size() int {
	return b.size
}

// Words returns a copy of the underlying storage words
func (b *BitSet) Words() []uint32 {
	return append([]uint32(nil), b.words...)
}

// check panics when i is not a valid bit index
func (b *BitSet) check(i int) {
	if i < 0 || i >= b.size {
		panic(fmt.Sprintf("bitset: index %d out of range [0,%d)", i, b.size))
	}
}

// Get reports whether bit i is set
func (b *BitSet) Get(i int) bool {
	b.check(i)

	return b.words[i/wordBits]&(1<<(uint(i)%wordBits)) != 0
}

// Set sets bit i
func (b *BitSet) Set(i int) {
	b.check(i)
	b.words[i/wordBits] |= 1 << (uint(i) % wordBits)
}

// Clear clears bit i
func (b *BitSet) Clear(i int) {
	b.check(i)
	b.words[i/wordBits] &^= 1 << (uint(i) % wordBits)
}

// Toggle flips bit i
func (b *BitSet) Toggle(i int) {
	b.check(i)
	b.words[i/wordBits] ^= 1 << (uint(i) % wordBits)
}

// tailMask returns the mask of semantic bits in the last word.
// A size that is a multiple of the word width needs no masking.
func (b *BitSet) tailMask() uint32 {
	rem := b.size % wordBits
	if rem == 0 {
		return ^uint32(0)
	}

	return ^uint32(0) >> (wordBits - rem)
}

// word returns storage word i with bits beyond Size() masked out
func (b *BitSet) word(i int) uint32 {
	w := b.words[i]
	if i == len(b.words)-1 {
		w &= b.tailMask()
	}

	return w
}

// Any reports whether at least one bit is set
func (b *BitSet) Any() bool {
	for i := range b.words {
		if b.word(i) != 0 {
			return true
		}
	}

	return false
}

// FirstSet returns the smallest set index, or None when no bit is set
func (b *BitSet) FirstSet() int {
	for i := range b.words {
		if w := b.word(i); w != 0 {
			return i*wordBits + bits.TrailingZeros32(w)
		}
	}

	return None
}

// Count returns the number of set bits
func (b *BitSet) Count() int {
	n := 0
	for i := range b.words {
		n += bits.OnesCount32(b.word(i))
	}

	return n
}

// Resize changes the number of semantic bits.
// Returns true when the word storage length changed.
// Bits that become visible after growing are always zero.
func (b *BitSet) Resize(size int) bool {
	if size < 0 {
		panic(fmt.Sprintf("bitset: negative size %d", size))
	}

	// Scrub stale bits in the old tail so growing never resurrects them
	if len(b.words) > 0 {
		b.words[len(b.words)-1] &= b.tailMask()
	}

	n := wordCount(size)
	changed := n != len(b.words)

	switch {
	case n > len(b.words):
		b.words = append(b.words, make([]uint32, n-len(b.words))...)
	case n < len(b.words):
		b.words = b.words[:n:n]
	}

	b.size = size

	return changed
}

// Clone returns an independent copy
func (b *BitSet) Clone() *BitSet {
	return &BitSet{size: b.size, words: b.Words()}
}

// And returns b AND other sized to the wider operand
func (b *BitSet) And(other *BitSet) *BitSet {
	return combine(b, other, func(x, y uint32) uint32 { return x & y })
}

// Or returns b OR other sized to the wider operand
func (b *BitSet) Or(other *BitSet) *BitSet {
	return combine(b, other, func(x, y uint32) uint32 { return x | y })
}

// Xor returns b XOR other sized to the wider operand
func (b *BitSet) Xor(other *BitSet) *BitSet {
	return combine(b, other, func(x, y uint32) uint32 { return x ^ y })
}

// combine applies op word by word, treating missing words of the narrower operand as zero
func combine(lhs, rhs *BitSet, op func(x, y uint32) uint32) *BitSet {
	out := New(max(lhs.size, rhs.size))
	for i := range out.words {
		var x, y uint32
		if i < len(lhs.words) {
			x = lhs.word(i)
		}

		if i < len(rhs.words) {
			y = rhs.word(i)
		}

		out.words[i] = op(x, y)
	}

	if len(out.words) > 0 {
		out.words[len(out.words)-1] &= out.tailMask()
	}

	return out
}

// String renders the bits from index 0 upwards, e.g. "0100"
func (b *BitSet) String() string {
	var sb strings.Builder

	sb.Grow(b.size)

	for i := range b.size {
		if b.words[i/wordBits]&(1<<(uint(i)%wordBits)) != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}

	return sb.String()
}
