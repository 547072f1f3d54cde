/*
Package coverage models OpenType coverage tables and provides the splitting
adapter that cuts oversized coverage-keyed subtables into shards.

A coverage table enumerates the glyphs a layout subtable applies to and
assigns each a coverage index. Format 1 lists glyph ids directly; format 2
stores ranges of consecutive glyph ids with a running start index. Splitting
operates on coverage indices, so a format 2 range that straddles a split
point is trimmed on both sides.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package coverage

import (
	"errors"
	"fmt"
	"sort"

	"github.com/npillmayer/otpack/pack"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'otpack.coverage'
func tracer() tracing.Trace {
	return tracing.Select("otpack.coverage")
}

// Kind tags coverage objects in the packing graph.
const Kind = pack.Kind("CoverageTable")

// RangeRecord covers the consecutive glyphs Start…End (inclusive); the
// first of them has coverage index StartCoverageIndex.
type RangeRecord struct {
	Start              uint16
	End                uint16
	StartCoverageIndex uint16
}

// Table is an in-memory coverage table, either format.
type Table struct {
	format uint16
	glyphs []uint16      // format 1
	ranges []RangeRecord // format 2
}

// New creates a format 1 coverage table. Glyph ids must be sorted
// ascending without duplicates.
func New(glyphs []uint16) *Table {
	return &Table{format: 1, glyphs: glyphs}
}

// FromRanges creates a format 2 coverage table. Ranges must be sorted,
// non-overlapping, with consistent running coverage indices.
func FromRanges(ranges []RangeRecord) *Table {
	return &Table{format: 2, ranges: ranges}
}

// Parse reads a serialized coverage table.
func Parse(b []byte) (*Table, error) {
	if len(b) < 4 {
		return nil, errCoverage("table too short")
	}
	format := u16(b)
	count := int(u16(b[2:]))
	switch format {
	case 1:
		if len(b) < 4+count*2 {
			return nil, errCoverage("glyph array truncated")
		}
		glyphs := make([]uint16, count)
		for i := range glyphs {
			glyphs[i] = u16(b[4+i*2:])
		}
		return New(glyphs), nil
	case 2:
		if len(b) < 4+count*6 {
			return nil, errCoverage("range records truncated")
		}
		ranges := make([]RangeRecord, count)
		for i := range ranges {
			rec := b[4+i*6:]
			ranges[i] = RangeRecord{
				Start:              u16(rec),
				End:                u16(rec[2:]),
				StartCoverageIndex: u16(rec[4:]),
			}
		}
		return FromRanges(ranges), nil
	}
	return nil, errCoverage(fmt.Sprintf("unknown format %d", format))
}

// Format returns 1 or 2.
func (t *Table) Format() uint16 {
	return t.format
}

// Len returns the number of covered glyphs, i.e. coverage indices.
func (t *Table) Len() int {
	if t.format == 1 {
		return len(t.glyphs)
	}
	n := 0
	for _, r := range t.ranges {
		n += int(r.End-r.Start) + 1
	}
	return n
}

// Glyphs returns all covered glyph ids in coverage-index order.
func (t *Table) Glyphs() []uint16 {
	if t.format == 1 {
		out := make([]uint16, len(t.glyphs))
		copy(out, t.glyphs)
		return out
	}
	out := make([]uint16, 0, t.Len())
	for _, r := range t.ranges {
		for g := int(r.Start); g <= int(r.End); g++ {
			out = append(out, uint16(g))
		}
	}
	return out
}

// Index returns the coverage index of glyph.
func (t *Table) Index(glyph uint16) (int, bool) {
	if t.format == 1 {
		i := sort.Search(len(t.glyphs), func(i int) bool { return t.glyphs[i] >= glyph })
		if i < len(t.glyphs) && t.glyphs[i] == glyph {
			return i, true
		}
		return 0, false
	}
	for _, r := range t.ranges {
		if glyph >= r.Start && glyph <= r.End {
			return int(r.StartCoverageIndex) + int(glyph-r.Start), true
		}
	}
	return 0, false
}

// Bytes serializes the table.
func (t *Table) Bytes() []byte {
	var out []byte
	if t.format == 1 {
		out = make([]byte, 0, 4+len(t.glyphs)*2)
		out = appendU16(out, 1)
		out = appendU16(out, uint16(len(t.glyphs)))
		for _, g := range t.glyphs {
			out = appendU16(out, g)
		}
		return out
	}
	out = make([]byte, 0, 4+len(t.ranges)*6)
	out = appendU16(out, 2)
	out = appendU16(out, uint16(len(t.ranges)))
	for _, r := range t.ranges {
		out = appendU16(out, r.Start)
		out = appendU16(out, r.End)
		out = appendU16(out, r.StartCoverageIndex)
	}
	return out
}

// WriteTo emits the table into a packing writer.
func (t *Table) WriteTo(w *pack.Writer) {
	w.WriteBytes(t.Bytes())
}

// PackKind tags coverage objects for the splitting machinery.
func (t *Table) PackKind() pack.Kind {
	return Kind
}

// split returns the sub-table covering the coverage indices start…end
// (inclusive). The result keeps the original format; its coverage indices
// are rebased to zero.
func (t *Table) split(start, end int) *Table {
	if t.format == 1 {
		shard := make([]uint16, end-start+1)
		copy(shard, t.glyphs[start:end+1])
		return New(shard)
	}
	var shard []RangeRecord
	for _, r := range t.ranges {
		if rec, ok := splitRangeRecord(r, start, end); ok {
			shard = append(shard, rec)
		}
	}
	return FromRanges(shard)
}

// splitRangeRecord intersects a range record with the coverage index range
// start…end (inclusive), rebasing indices to the new table. Reports false
// if the record lies entirely outside the range.
func splitRangeRecord(r RangeRecord, start, end int) (RangeRecord, bool) {
	// the split range addresses coverage indices, not glyph ids
	covStart := int(r.StartCoverageIndex)
	covEnd := covStart + int(r.End-r.Start)
	if covStart > end || covEnd < start {
		return RangeRecord{}, false
	}
	newCovStart := covStart - start
	if newCovStart < 0 {
		newCovStart = 0
	}
	startGlyphDelta := start - covStart
	if startGlyphDelta < 0 {
		startGlyphDelta = 0
	}
	startGlyph := int(r.Start) + startGlyphDelta
	rangeLen := min(covEnd, end) - max(covStart, start)
	return RangeRecord{
		Start:              uint16(startGlyph),
		End:                uint16(startGlyph + rangeLen),
		StartCoverageIndex: uint16(newCovStart),
	}, true
}

func u16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

func appendU16(b []byte, v uint16) []byte {
	return append(b, byte(v>>8), byte(v))
}

func errCoverage(message string) error {
	return fmt.Errorf("coverage table: %s", message)
}

var errNotCoverage = errors.New("object is not a coverage table")
