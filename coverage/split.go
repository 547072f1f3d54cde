package coverage

import "github.com/npillmayer/otpack/pack"

// Splitter cuts oversized coverage tables into shards that each fit a byte
// budget. It implements pack.Splitter; register it with Register or
// Graph.RegisterSplitter.
type Splitter struct{}

// Register wires the coverage splitting adapter into a packing graph.
func Register(g *pack.Graph) {
	g.RegisterSplitter(Kind, Splitter{})
}

// Ranges partitions the table's coverage indices so that every shard
// serializes within budget bytes. Format 2 shards are costed at the worst
// case of one range record per glyph, since splitting may break ranges.
func (Splitter) Ranges(g *pack.Graph, id pack.ObjectID, budget int) []pack.Range {
	t, err := parseObject(g, id)
	if err != nil {
		tracer().Errorf("cannot split: %v", err)
		return nil
	}
	per := 2
	if t.format == 2 {
		per = 6
	}
	maxEntries := (budget - 4) / per
	if maxEntries < 1 {
		maxEntries = 1
	}
	n := t.Len()
	if n <= maxEntries {
		return []pack.Range{{Start: 0, End: n}}
	}
	var ranges []pack.Range
	for s := 0; s < n; s += maxEntries {
		ranges = append(ranges, pack.Range{Start: s, End: min(s+maxEntries, n)})
	}
	return ranges
}

// Split materializes one coverage shard per range, rebasing coverage
// indices to zero, and returns the shard ids in range order.
func (Splitter) Split(g *pack.Graph, id pack.ObjectID, ranges []pack.Range) []pack.ObjectID {
	t, err := parseObject(g, id)
	if err != nil {
		tracer().Errorf("cannot split: %v", err)
		return nil
	}
	ids := make([]pack.ObjectID, 0, len(ranges))
	for _, r := range ranges {
		shard := t.split(r.Start, r.End-1)
		obj := pack.NewObject(Kind)
		obj.WriteBytes(shard.Bytes())
		ids = append(ids, g.AddObject(obj))
	}
	return ids
}

func parseObject(g *pack.Graph, id pack.ObjectID) (*Table, error) {
	obj := g.Object(id)
	if obj == nil || obj.Kind != Kind {
		return nil, errNotCoverage
	}
	return Parse(obj.Bytes)
}
