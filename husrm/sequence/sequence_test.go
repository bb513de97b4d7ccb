package sequence

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCorpus = `# sample corpus with utilities
@CONVERTED_FROM_TEXT
1[1] 2[4] -1 3[10] -1 6[9] -1 7[2] -1 5[1] -1 -2 SUtility:27
1[1] 4[12] -1 3[20] -1 2[4] -1 5[1] 7[2] -1 -2 SUtility:40
1[1] -1 2[4] -1 6[9] -1 5[1] -1 -2 SUtility:15
1[3] -1 2[4] -1 3[5] -1 6[3] 7[1] -1 -2 SUtility:16
`

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		test func(t *testing.T)
	}{
		{"SampleCorpus", testParseSampleCorpus},
		{"DeclarationBeforeTerminator", testParseDeclarationBeforeTerminator},
		{"UnsortedItemset", testParseUnsortedItemset},
		{"RepeatedItem", testParseRepeatedItem},
		{"MissingDeclaration", testParseMissingDeclaration},
		{"MissingTerminator", testParseMissingTerminator},
		{"MaxSequences", testParseMaxSequences},
		{"MalformedTokens", testParseMalformedTokens},
		{"NegativeUtility", testParseNegativeUtility},
		{"RoundTrip", testParseRoundTrip},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.test)
	}
}

func testParseSampleCorpus(t *testing.T) {
	db, err := Parse(strings.NewReader(sampleCorpus))
	require.NoError(t, err)
	require.Equal(t, 4, db.Len())

	first := db.Sequence(0)
	assert.Equal(t, 3, first.Line)
	assert.Equal(t, 5, first.Len())
	assert.Equal(t, []Item{1, 2}, first.Itemsets[0].Items)
	assert.Equal(t, []float64{1, 4}, first.Itemsets[0].Utilities)
	assert.Equal(t, 27.0, first.ExactUtility)

	second := db.Sequence(1)
	assert.Equal(t, []Item{5, 7}, second.Itemsets[3].Items)
	assert.Equal(t, 40.0, second.ExactUtility)

	assert.Equal(t, 16.0, db.Sequence(3).ExactUtility)
}

func testParseDeclarationBeforeTerminator(t *testing.T) {
	db, err := Parse(strings.NewReader("1[2] -1 2[3] -1 S:5 -2\n"))
	require.NoError(t, err)
	require.Equal(t, 1, db.Len())
	assert.Equal(t, 5.0, db.Sequence(0).ExactUtility)
}

func testParseUnsortedItemset(t *testing.T) {
	db, err := Parse(strings.NewReader("7[1] 3[2] 5[4] -1 -2 S:7\n"))
	require.NoError(t, err)
	is := db.Sequence(0).Itemsets[0]
	assert.Equal(t, []Item{3, 5, 7}, is.Items)
	assert.Equal(t, []float64{2, 4, 1}, is.Utilities)
}

func testParseRepeatedItem(t *testing.T) {
	db, err := Parse(strings.NewReader("1[2] -1 2[3] -1 1[4] 3[1] -1 -2 S:10\n"))
	require.NoError(t, err)
	s := db.Sequence(0)
	require.Equal(t, 3, s.Len())
	assert.Equal(t, []Item{3}, s.Itemsets[2].Items)
	assert.Equal(t, 6.0, s.ExactUtility, "repeated occurrence utility is subtracted")

	itemset, idx, ok := s.Locate(1)
	require.True(t, ok)
	assert.Equal(t, 0, itemset)
	assert.Equal(t, 0, idx)
}

func testParseMissingDeclaration(t *testing.T) {
	db, err := Parse(strings.NewReader("1[2] 4[1] -1 2[3] -1 -2\n"))
	require.NoError(t, err)
	assert.Equal(t, 6.0, db.Sequence(0).ExactUtility)
}

func testParseMissingTerminator(t *testing.T) {
	db, err := Parse(strings.NewReader("1[2] -1 2[3] -1\n1[1] -1 -2 S:1\n"))
	require.NoError(t, err)
	require.Equal(t, 1, db.Len())
	assert.Equal(t, 2, db.Sequence(0).Line)
}

func testParseMaxSequences(t *testing.T) {
	db, err := Parse(strings.NewReader(sampleCorpus), WithMaxSequences(2))
	require.NoError(t, err)
	assert.Equal(t, 2, db.Len())

	db, err = Parse(strings.NewReader(sampleCorpus), WithMaxSequences(0))
	require.NoError(t, err)
	assert.Equal(t, 4, db.Len())
}

func testParseMalformedTokens(t *testing.T) {
	inputs := []string{
		"1[x] -1 -2 S:1",
		"a[1] -1 -2 S:1",
		"1[2 -1 -2 S:1",
		"[2] -1 -2 S:1",
		"-3[2] -1 -2 S:1",
		"1[2] -1 -2 S:abc",
		"1[2] -1 -2 SUtility",
		"1[2] foo -1 -2",
		"1[NaN] -1 2[3] -1 -2 S:3",
		"1[Inf] -1 2[3] -1 -2 S:Inf",
		"1[+Inf] -1 -2",
		"1[2] -1 2[3] -1 -2 S:NaN",
		"1[2] -1 -2 S:-Inf",
	}
	for _, in := range inputs {
		db, err := Parse(strings.NewReader("1[1] -1 -2 S:1\n" + in + "\n"))
		require.Error(t, err, in)
		assert.Nil(t, db, in)
		assert.True(t, errors.Is(err, ErrMalformedToken), "%s: %v", in, err)
		assert.Contains(t, err.Error(), "line 2", in)
	}
}

func testParseNegativeUtility(t *testing.T) {
	_, err := Parse(strings.NewReader("1[-2] -1 -2 S:-2\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNegativeUtility)
}

func testParseRoundTrip(t *testing.T) {
	db, err := Parse(strings.NewReader(sampleCorpus))
	require.NoError(t, err)

	again, err := Parse(strings.NewReader(db.String()[len("0: "):strings.IndexByte(db.String(), '\n')] + "\n"))
	require.NoError(t, err)
	require.Equal(t, 1, again.Len())
	assert.Equal(t, db.Sequence(0).Itemsets, again.Sequence(0).Itemsets)
	assert.Equal(t, db.Sequence(0).ExactUtility, again.Sequence(0).ExactUtility)
}

func TestPruneUnpromising(t *testing.T) {
	tests := []struct {
		name string
		test func(t *testing.T)
	}{
		{"Estimates", testPruneEstimates},
		{"RemovesLowItems", testPruneRemovesLowItems},
		{"RemovesEmptySequences", testPruneRemovesEmptySequences},
		{"Idempotent", testPruneIdempotent},
		{"CloneIsolation", testPruneCloneIsolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.test)
	}
}

func testPruneEstimates(t *testing.T) {
	db, err := Parse(strings.NewReader(sampleCorpus))
	require.NoError(t, err)
	est := EstimateItemUtilities(db)
	assert.Equal(t, 98.0, est[1])
	assert.Equal(t, 40.0, est[4])
	assert.Equal(t, 83.0, est[3])
	assert.Equal(t, 58.0, est[6])
}

func testPruneRemovesLowItems(t *testing.T) {
	db, err := Parse(strings.NewReader(sampleCorpus))
	require.NoError(t, err)

	report := PruneUnpromising(db, 50)
	assert.Equal(t, 1, report.ItemsRemoved)
	assert.Equal(t, 1, report.OccurrencesRemoved)
	assert.Equal(t, 0, report.ItemsetsRemoved)
	assert.Equal(t, 0, report.SequencesRemoved)

	second := db.Sequence(1)
	assert.False(t, second.Contains(4))
	assert.Equal(t, []Item{1}, second.Itemsets[0].Items)
	assert.Equal(t, 28.0, second.ExactUtility)
}

func testPruneRemovesEmptySequences(t *testing.T) {
	db := NewDatabase(
		NewSequence(Itemset{Items: []Item{1}, Utilities: []float64{1}}, Itemset{Items: []Item{2}, Utilities: []float64{1}}),
		NewSequence(Itemset{Items: []Item{3}, Utilities: []float64{10}}, Itemset{Items: []Item{4}, Utilities: []float64{10}}),
	)
	report := PruneUnpromising(db, 5)
	assert.Equal(t, 2, report.ItemsRemoved)
	assert.Equal(t, 2, report.ItemsetsRemoved)
	assert.Equal(t, 1, report.SequencesRemoved)
	require.Equal(t, 1, db.Len())
	assert.Equal(t, 20.0, db.Sequence(0).ExactUtility)
}

func testPruneIdempotent(t *testing.T) {
	db, err := Parse(strings.NewReader(sampleCorpus))
	require.NoError(t, err)

	PruneUnpromising(db, 55)
	snapshot := db.String()

	report := PruneUnpromising(db, 55)
	assert.Equal(t, 0, report.ItemsRemoved)
	assert.Equal(t, 1, report.Rounds)
	assert.Equal(t, snapshot, db.String())

	for item, est := range EstimateItemUtilities(db) {
		assert.GreaterOrEqual(t, est, 55.0, "item %d survived with low estimate", item)
	}
}

func testPruneCloneIsolation(t *testing.T) {
	db, err := Parse(strings.NewReader(sampleCorpus))
	require.NoError(t, err)
	clone := db.Clone()

	PruneUnpromising(clone, 100)
	assert.Equal(t, 0, clone.Len())
	assert.Equal(t, 4, db.Len())
	assert.True(t, db.Sequence(1).Contains(4))
}

func TestDescribe(t *testing.T) {
	db, err := Parse(strings.NewReader(sampleCorpus))
	require.NoError(t, err)

	st := Describe(db)
	assert.Equal(t, 4, st.Sequences)
	assert.Equal(t, 17, st.Itemsets)
	assert.Equal(t, 21, st.Occurrences)
	assert.Equal(t, 7, st.DistinctItems)
	assert.Equal(t, 7, st.MaxItem)
	assert.Equal(t, 98.0, st.TotalUtility)
	assert.InDelta(t, 4.25, st.MeanItemsetsPerSeq, 1e-9)
	assert.InDelta(t, 24.5, st.MeanSeqUtility, 1e-9)
	assert.Contains(t, st.String(), "sequences:")

	empty := Describe(NewDatabase())
	assert.Equal(t, 0, empty.Sequences)
}
