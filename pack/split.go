package pack

// Range addresses a contiguous slice of a table's entries, half open.
type Range struct {
	Start, End int
}

// Splitter describes how tables of one kind are cut into shards that each
// fit a size budget. Splitting happens before any sorting, so shards can
// still be placed freely.
type Splitter interface {
	// Ranges partitions the table's entries so that each resulting shard
	// stays within budget bytes. A single returned range means the table
	// needs no splitting.
	Ranges(g *Graph, id ObjectID, budget int) []Range
	// Split materializes one shard object per range and returns their ids,
	// in range order. The original table is left untouched; it becomes an
	// orphan once its parent is rebuilt.
	Split(g *Graph, id ObjectID, ranges []Range) []ObjectID
}

// Container describes how a parent table of one kind is rebuilt after some
// of its children were split into shards.
type Container interface {
	// Reparent returns a replacement for the parent object in which every
	// child offset is fanned out to the child's shards. shards maps each
	// original child to its shard ids; unsplit children map to themselves.
	Reparent(g *Graph, parent ObjectID, shards map[ObjectID][]ObjectID) *Object
}

// trySplittingSubtables splits oversized subtables of registered container
// kinds and rebuilds their parents around the shards.
func (g *Graph) trySplittingSubtables(budget int) {
	var parents []ObjectID
	for _, id := range g.sortedIDs() {
		if _, ok := g.containers[g.objects[id].Kind]; ok {
			parents = append(parents, id)
		}
	}
	for _, parent := range parents {
		g.splitSubtables(parent, budget)
	}
	if len(parents) > 0 {
		g.removeOrphans()
	}
}

func (g *Graph) splitSubtables(parent ObjectID, budget int) {
	obj := g.objects[parent]
	container := g.containers[obj.Kind]

	shards := make(map[ObjectID][]ObjectID)
	anySplit := false
	for _, link := range obj.Offsets {
		child := link.Target
		if child.IsNull() {
			continue
		}
		if _, done := shards[child]; done {
			continue
		}
		splitter, ok := g.splitters[g.objects[child].Kind]
		if !ok {
			shards[child] = []ObjectID{child}
			continue
		}
		ranges := splitter.Ranges(g, child, budget)
		if len(ranges) <= 1 {
			shards[child] = []ObjectID{child}
			continue
		}
		tracer().Infof("splitting subtable %d into %d shards", child, len(ranges))
		shards[child] = splitter.Split(g, child, ranges)
		anySplit = true
	}
	if !anySplit {
		return
	}

	rebuilt := container.Reparent(g, parent, shards)
	g.objects[parent] = rebuilt
	g.nodes[parent].size = uint32(len(rebuilt.Bytes))
	g.parentsInvalid = true
	g.distanceInvalid = true
	g.positionsInvalid = true
}
