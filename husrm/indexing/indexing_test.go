package indexing

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/husrm/husrm/sequence"
)

var allKinds = []Kind{KindBitVector, KindSortedList, KindRoaring}

func TestSequenceIDSet(t *testing.T) {
	tests := []struct {
		name string
		test func(t *testing.T)
	}{
		{"ParseKind", testParseKind},
		{"AddAndContains", testSetAddAndContains},
		{"OutOfOrderAdd", testSetOutOfOrderAdd},
		{"Intersect", testSetIntersect},
		{"RepresentationInvariance", testSetRepresentationInvariance},
		{"MixedKinds", testSetMixedKinds},
		{"Eytzinger", testEytzinger},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.test)
	}
}

func testParseKind(t *testing.T) {
	for _, k := range allKinds {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	got, err := ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindBitVector, got)

	_, err = ParseKind("btree")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func testSetAddAndContains(t *testing.T) {
	for _, k := range allKinds {
		set := NewFactory(k, 10).New()
		assert.Equal(t, k, set.Kind())
		for _, id := range []int{0, 3, 3, 7, 9} {
			set.Add(id)
		}
		assert.Equal(t, 4, set.Size(), k.String())
		assert.Equal(t, []int{0, 3, 7, 9}, set.IDs(), k.String())
		assert.True(t, set.Contains(7), k.String())
		assert.False(t, set.Contains(4), k.String())
		assert.False(t, set.Contains(-1), k.String())
		assert.False(t, set.Contains(100), k.String())
	}
}

func testSetOutOfOrderAdd(t *testing.T) {
	l := NewSortedList()
	for _, id := range []int{5, 1, 9, 1, 3} {
		l.Add(id)
	}
	assert.Equal(t, []int{1, 3, 5, 9}, l.IDs())
	assert.True(t, l.Contains(3))
	l.Add(4)
	assert.True(t, l.Contains(4), "layout is rebuilt after mutation")
}

func testSetIntersect(t *testing.T) {
	for _, k := range allKinds {
		f := NewFactory(k, 16)
		a, b := f.New(), f.New()
		for _, id := range []int{1, 2, 5, 8, 13} {
			a.Add(id)
		}
		for _, id := range []int{2, 3, 5, 13, 15} {
			b.Add(id)
		}
		res := a.Intersect(b)
		assert.Equal(t, k, res.Kind())
		assert.Equal(t, 3, res.Size(), k.String())
		assert.Equal(t, []int{2, 5, 13}, res.IDs(), k.String())
		assert.Equal(t, 5, a.Size(), "operands are not modified")
		assert.Equal(t, 5, b.Size(), "operands are not modified")

		empty := a.Intersect(f.New())
		assert.Equal(t, 0, empty.Size())
	}
}

func testSetRepresentationInvariance(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const capacity = 500

	for round := 0; round < 50; round++ {
		var left, right []int
		for id := 0; id < capacity; id++ {
			if rng.Intn(3) == 0 {
				left = append(left, id)
			}
			if rng.Intn(4) == 0 {
				right = append(right, id)
			}
		}

		var sizes []int
		var results [][]int
		for _, k := range allKinds {
			f := NewFactory(k, capacity)
			a, b := f.New(), f.New()
			for _, id := range left {
				a.Add(id)
			}
			for _, id := range right {
				b.Add(id)
			}
			res := a.Intersect(b)
			sizes = append(sizes, res.Size())
			results = append(results, res.IDs())
		}
		for i := 1; i < len(allKinds); i++ {
			assert.Equal(t, sizes[0], sizes[i], "round %d kind %s", round, allKinds[i])
			assert.Equal(t, results[0], results[i], "round %d kind %s", round, allKinds[i])
		}
	}
}

func testSetMixedKinds(t *testing.T) {
	bv := NewBitVector(10)
	list := NewSortedList()
	rs := NewRoaringSet()
	for _, id := range []int{1, 4, 6} {
		bv.Add(id)
		rs.Add(id)
	}
	for _, id := range []int{4, 6, 8} {
		list.Add(id)
	}
	assert.Equal(t, []int{4, 6}, bv.Intersect(list).IDs())
	assert.Equal(t, KindBitVector, bv.Intersect(list).Kind())
	assert.Equal(t, []int{4, 6}, rs.Intersect(list).IDs())
	assert.Equal(t, []int{4, 6}, list.Intersect(bv).IDs())
}

func testEytzinger(t *testing.T) {
	for n := 0; n < 40; n++ {
		sorted := make([]int, n)
		for i := range sorted {
			sorted[i] = i * 2
		}
		layout := buildEytzinger(sorted)
		require.Len(t, layout, n)
		for i := -1; i <= 2*n; i++ {
			_, want := slices.BinarySearch(sorted, i)
			assert.Equal(t, want, eytzingerContains(layout, i), "n=%d x=%d", n, i)
		}
	}
}

func TestItemIndex(t *testing.T) {
	db := sequence.NewDatabase(
		sequence.NewSequence(
			sequence.Itemset{Items: []sequence.Item{1, 2}, Utilities: []float64{1, 1}},
			sequence.Itemset{Items: []sequence.Item{3}, Utilities: []float64{1}},
		),
		sequence.NewSequence(
			sequence.Itemset{Items: []sequence.Item{2}, Utilities: []float64{1}},
			sequence.Itemset{Items: []sequence.Item{3, 4}, Utilities: []float64{1, 1}},
		),
		sequence.NewSequence(
			sequence.Itemset{Items: []sequence.Item{1}, Utilities: []float64{1}},
			sequence.Itemset{Items: []sequence.Item{3}, Utilities: []float64{1}},
		),
	)

	for _, k := range allKinds {
		idx := BuildItemIndex(db, NewFactory(k, db.Len()))
		assert.Equal(t, []int{0, 2}, idx.Get(1).IDs(), k.String())
		assert.Equal(t, 3, idx.Support(3))
		assert.Equal(t, 0, idx.Support(9))
		assert.Equal(t, 0, idx.Get(9).Size())
		assert.Equal(t, []int{0, 2}, idx.Get(1).Intersect(idx.Get(3)).IDs(), k.String())
		assert.Equal(t, []int{1}, idx.Get(2).Intersect(idx.Get(4)).IDs(), k.String())
	}
}
