package indexing

import (
	roaring "github.com/RoaringBitmap/roaring"
)

// RoaringSet stores sequence ids in a compressed roaring bitmap.
type RoaringSet struct {
	bm *roaring.Bitmap
}

func NewRoaringSet() *RoaringSet {
	return &RoaringSet{bm: roaring.New()}
}

func (r *RoaringSet) Add(id int) { r.bm.Add(uint32(id)) }

func (r *RoaringSet) Size() int { return int(r.bm.GetCardinality()) }

func (r *RoaringSet) Contains(id int) bool {
	return id >= 0 && r.bm.Contains(uint32(id))
}

func (r *RoaringSet) Intersect(other SequenceIDSet) SequenceIDSet {
	o, ok := other.(*RoaringSet)
	if !ok {
		return intersectByMembership(NewRoaringSet(), r, other)
	}
	return &RoaringSet{bm: roaring.And(r.bm, o.bm)}
}

func (r *RoaringSet) IDs() []int {
	raw := r.bm.ToArray()
	ids := make([]int, len(raw))
	for i, v := range raw {
		ids[i] = int(v)
	}
	return ids
}

func (r *RoaringSet) Kind() Kind { return KindRoaring }
