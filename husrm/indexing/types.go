package indexing

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownKind = errors.New("unknown sequence-id set kind")

// Kind selects the SequenceIDSet representation.
type Kind int

const (
	KindBitVector Kind = iota
	KindSortedList
	KindRoaring
)

func (k Kind) String() string {
	switch k {
	case KindBitVector:
		return "bitvector"
	case KindSortedList:
		return "list"
	case KindRoaring:
		return "roaring"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a config name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bitvector", "bitset", "":
		return KindBitVector, nil
	case "list", "sortedlist", "arraylist":
		return KindSortedList, nil
	case "roaring":
		return KindRoaring, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// SequenceIDSet is a set of sequence ids. Every implementation returns the
// same Size, Contains and IDs for the same insertions.
type SequenceIDSet interface {
	Add(id int)
	Size() int
	Contains(id int) bool
	// Intersect returns a new set; neither operand is modified.
	Intersect(other SequenceIDSet) SequenceIDSet
	// IDs returns the members in ascending order.
	IDs() []int
	Kind() Kind
}

// Factory creates empty sets of one kind.
type Factory struct {
	kind     Kind
	capacity int
}

// NewFactory returns a factory for kind. capacity is the number of sequences
// in the database and bounds the bit vector.
func NewFactory(kind Kind, capacity int) Factory {
	return Factory{kind: kind, capacity: capacity}
}

func (f Factory) Kind() Kind { return f.kind }

// New returns an empty set.
func (f Factory) New() SequenceIDSet {
	switch f.kind {
	case KindSortedList:
		return NewSortedList()
	case KindRoaring:
		return NewRoaringSet()
	default:
		return NewBitVector(f.capacity)
	}
}

// intersectByMembership is the fallback used when two operands have
// different kinds. The result has the receiver's representation.
func intersectByMembership(dst, a, b SequenceIDSet) SequenceIDSet {
	small, large := a, b
	if b.Size() < a.Size() {
		small, large = b, a
	}
	for _, id := range small.IDs() {
		if large.Contains(id) {
			dst.Add(id)
		}
	}
	return dst
}
