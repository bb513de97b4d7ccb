package indexing

import (
	"github.com/bits-and-blooms/bitset"
)

// BitVector is a fixed-capacity bitset of sequence ids with a cached cardinality.
type BitVector struct {
	bits *bitset.BitSet
	size int
}

// NewBitVector returns an empty vector sized for capacity ids.
func NewBitVector(capacity int) *BitVector {
	if capacity < 0 {
		capacity = 0
	}
	return &BitVector{bits: bitset.New(uint(capacity))}
}

func (v *BitVector) Add(id int) {
	if v.bits.Test(uint(id)) {
		return
	}
	v.bits.Set(uint(id))
	v.size++
}

func (v *BitVector) Size() int { return v.size }

func (v *BitVector) Contains(id int) bool {
	return id >= 0 && v.bits.Test(uint(id))
}

func (v *BitVector) Intersect(other SequenceIDSet) SequenceIDSet {
	o, ok := other.(*BitVector)
	if !ok {
		return intersectByMembership(NewBitVector(int(v.bits.Len())), v, other)
	}
	res := v.bits.Intersection(o.bits)
	return &BitVector{bits: res, size: int(res.Count())}
}

func (v *BitVector) IDs() []int {
	ids := make([]int, 0, v.size)
	for i, ok := v.bits.NextSet(0); ok; i, ok = v.bits.NextSet(i + 1) {
		ids = append(ids, int(i))
	}
	return ids
}

func (v *BitVector) Kind() Kind { return KindBitVector }
