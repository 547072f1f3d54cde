package coverage

import (
	"testing"

	"github.com/npillmayer/otpack/pack"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"
)

func TestParseFormat1RoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otpack.coverage")
	defer teardown()
	//
	table := New([]uint16{3, 7, 9, 100})
	parsed, err := Parse(table.Bytes())
	require.NoError(t, err)
	require.EqualValues(t, 1, parsed.Format())
	require.Equal(t, table.Glyphs(), parsed.Glyphs())
}

func TestParseFormat2RoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otpack.coverage")
	defer teardown()
	//
	table := FromRanges([]RangeRecord{
		{Start: 10, End: 14, StartCoverageIndex: 0},
		{Start: 30, End: 31, StartCoverageIndex: 5},
	})
	parsed, err := Parse(table.Bytes())
	require.NoError(t, err)
	require.EqualValues(t, 2, parsed.Format())
	require.Equal(t, 7, parsed.Len())
	require.Equal(t, []uint16{10, 11, 12, 13, 14, 30, 31}, parsed.Glyphs())
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, b := range [][]byte{
		nil,
		{0, 1},
		{0, 3, 0, 0},       // unknown format
		{0, 1, 0, 9, 0, 1}, // count overruns data
	} {
		if _, err := Parse(b); err == nil {
			t.Errorf("expected parse error for % x", b)
		}
	}
}

func TestIndex(t *testing.T) {
	f1 := New([]uint16{3, 7, 9})
	f2 := FromRanges([]RangeRecord{
		{Start: 10, End: 14, StartCoverageIndex: 0},
		{Start: 30, End: 31, StartCoverageIndex: 5},
	})
	tests := []struct {
		table *Table
		glyph uint16
		index int
		ok    bool
	}{
		{f1, 3, 0, true},
		{f1, 9, 2, true},
		{f1, 4, 0, false},
		{f2, 10, 0, true},
		{f2, 14, 4, true},
		{f2, 31, 6, true},
		{f2, 20, 0, false},
	}
	for _, tc := range tests {
		idx, ok := tc.table.Index(tc.glyph)
		if ok != tc.ok || (ok && idx != tc.index) {
			t.Errorf("Index(%d) = (%d, %v), want (%d, %v)", tc.glyph, idx, ok, tc.index, tc.ok)
		}
	}
}

func TestSplitShardsPartitionCoverage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otpack.coverage")
	defer teardown()
	//
	tables := []*Table{
		New([]uint16{1, 2, 3, 10, 11, 40, 41, 42, 43, 90}),
		FromRanges([]RangeRecord{
			{Start: 1, End: 3, StartCoverageIndex: 0},
			{Start: 10, End: 11, StartCoverageIndex: 3},
			{Start: 40, End: 43, StartCoverageIndex: 5},
			{Start: 90, End: 90, StartCoverageIndex: 9},
		}),
	}
	for _, table := range tables {
		all := table.Glyphs()
		for cut := 1; cut < table.Len(); cut++ {
			left := table.split(0, cut-1)
			right := table.split(cut, table.Len()-1)
			// shards partition the original coverage, in order
			require.Equal(t, all[:cut], left.Glyphs(), "format %d cut %d", table.Format(), cut)
			require.Equal(t, all[cut:], right.Glyphs(), "format %d cut %d", table.Format(), cut)
			// coverage indices are rebased per shard
			first := right.Glyphs()[0]
			idx, ok := right.Index(first)
			require.True(t, ok)
			require.Equal(t, 0, idx)
		}
	}
}

func TestSplitRangeRecordIntersection(t *testing.T) {
	rec := RangeRecord{Start: 100, End: 109, StartCoverageIndex: 20}
	// fully outside
	if _, ok := splitRangeRecord(rec, 0, 19); ok {
		t.Error("expected no intersection below the record")
	}
	if _, ok := splitRangeRecord(rec, 30, 40); ok {
		t.Error("expected no intersection above the record")
	}
	// clipped on both sides
	got, ok := splitRangeRecord(rec, 22, 27)
	require.True(t, ok)
	require.Equal(t, RangeRecord{Start: 102, End: 107, StartCoverageIndex: 0}, got)
	// record starts inside the split range
	got, ok = splitRangeRecord(rec, 15, 24)
	require.True(t, ok)
	require.Equal(t, RangeRecord{Start: 100, End: 104, StartCoverageIndex: 5}, got)
}

// lookupStub is a container table for end-to-end splitting: a count
// followed by 16-bit offsets to coverage subtables.
type lookupStub struct{}

func (lookupStub) Reparent(g *pack.Graph, parent pack.ObjectID, shards map[pack.ObjectID][]pack.ObjectID) *pack.Object {
	src := g.Object(parent)
	obj := pack.NewObject(src.Kind)
	count := 0
	for _, link := range src.Offsets {
		count += len(shards[link.Target])
	}
	obj.WriteU16(uint16(count))
	// shards get wide offsets, like extension subtables
	for _, link := range src.Offsets {
		for _, shard := range shards[link.Target] {
			obj.AddOffset(shard, pack.Offset32, 0)
		}
	}
	return obj
}

const lookupKind = pack.Kind("TestLookupStub")

type lookupBuilder struct {
	tables []*Table
}

func (l *lookupBuilder) PackKind() pack.Kind { return lookupKind }

func (l *lookupBuilder) WriteTo(w *pack.Writer) {
	w.WriteU16(uint16(len(l.tables)))
	for _, t := range l.tables {
		w.WriteOffset(t, pack.Offset16)
	}
}

func TestSplitterThroughGraph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otpack.coverage")
	defer teardown()
	//
	// three 40004-byte coverage tables under one lookup; the 16-bit offset
	// to the third overflows, which triggers splitting
	makeTable := func(k int) *Table {
		glyphs := make([]uint16, 20000)
		for i := range glyphs {
			glyphs[i] = uint16(i*3 + k)
		}
		return New(glyphs)
	}
	tables := []*Table{makeTable(0), makeTable(1), makeTable(2)}
	lookup := &lookupBuilder{tables: tables}

	g := pack.MakeGraph(lookup)
	Register(g)
	g.RegisterContainer(lookupKind, lookupStub{})

	out, err := g.Pack(&pack.Config{SplitBudget: 20004}) // 10000 glyphs per shard
	require.NoError(t, err)
	require.NotEmpty(t, out)

	// each table was cut in two; shard glyphs concatenate to the original
	root := g.Object(g.Root())
	require.Len(t, root.Offsets, 6)
	for i, table := range tables {
		var gotGlyphs []uint16
		for _, link := range root.Offsets[i*2 : i*2+2] {
			shard, err := Parse(g.Object(link.Target).Bytes)
			require.NoError(t, err)
			gotGlyphs = append(gotGlyphs, shard.Glyphs()...)
		}
		require.Equal(t, table.Glyphs(), gotGlyphs, "table %d", i)
	}
}
