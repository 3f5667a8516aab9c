// Package membership implements the probabilistic "definitely-not/maybe-yes"
// set tester of spec.md §4.3, used to short-circuit broadcast matching.
package membership

import (
	"math"

	"github.com/bits-and-blooms/bitset"
	"github.com/cespare/xxhash/v2"
)

// Filter is a classical bit-array set sized from an expected element count
// and a target false-positive rate.
type Filter struct {
	bits *bitset.BitSet
	m    uint64
	k    int
}

// New builds a Filter sized for n expected elements at false-positive rate
// p: m = ceil(-n*ln(p) / ln(2)^2) bits, k = ceil((m/n)*ln(2)) probes.
func New(n int, p float64) *Filter {
	if n <= 0 {
		n = 1
	}
	nf := float64(n)
	m := math.Ceil(-nf * math.Log(p) / (math.Ln2 * math.Ln2))
	if m < 1 {
		m = 1
	}
	k := math.Ceil((m / nf) * math.Ln2)
	if k < 1 {
		k = 1
	}
	return &Filter{
		bits: bitset.New(uint(m)),
		m:    uint64(m),
		k:    int(k),
	}
}

// Add marks s as present in the filter.
func (f *Filter) Add(s string) {
	h1, h2 := splitHash(s)
	for i := 0; i < f.k; i++ {
		f.bits.Set(uint(f.probe(h1, h2, i)))
	}
}

// Test reports whether s may be present; false is definitive, true is
// "maybe". Returns false as soon as any probed bit is clear.
func (f *Filter) Test(s string) bool {
	h1, h2 := splitHash(s)
	for i := 0; i < f.k; i++ {
		if !f.bits.Test(uint(f.probe(h1, h2, i))) {
			return false
		}
	}
	return true
}

// probe derives the i-th probe position from the double-hashing scheme
// h1 + i*h2 mod m, avoiding k independent hash computations per element.
func (f *Filter) probe(h1, h2 uint64, i int) uint64 {
	return (h1 + uint64(i)*h2) % f.m
}

// splitHash derives two 64-bit hashes of s from two xxhash digests: one of
// s itself and one of s with a zero byte appended, so the double-hashing
// step differs from the starting position.
func splitHash(s string) (uint64, uint64) {
	h1 := xxhash.Sum64String(s)
	h2 := xxhash.Sum64String(s + "\x00")
	return h1, h2
}
