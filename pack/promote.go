package pack

import "sort"

// Promoter describes how tables of one kind are promoted behind extension
// wrappers. Promotion buys a 32-bit offset per subtable at the cost of a
// small wrapper table.
type Promoter interface {
	// Wrap returns a fresh extension object whose single wide offset
	// targets child.
	Wrap(child ObjectID) *Object
	// Rewrite adjusts the promoted table in place, typically flipping its
	// declared subtable type to the extension type.
	Rewrite(obj *Object)
}

// extensionSize is the number of bytes an extension wrapper adds per
// subtable (format, type, 32-bit offset).
const extensionSize = 8

// maxLayerSize is the reach of a 16-bit offset; the promotion heuristic
// keeps each layer of the lookup hierarchy below it.
const maxLayerSize = 0xffff

// tryPromotingSubtables promotes eligible tables behind extension wrappers
// where the layer-size heuristic says the 16-bit space is exhausted.
func (g *Graph) tryPromotingSubtables() {
	candidates, parent, ok := g.promotableSubtables()
	if !ok {
		return
	}
	toPromote := g.selectPromotions(candidates, parent)
	tracer().Infof("promoting %d of %d eligible subtables", len(toPromote), len(candidates))
	g.promote(toPromote)
}

// promotableSubtables returns all tables with a registered promoter,
// together with their common parent. Promotable tables with more than one
// parent disable promotion altogether.
func (g *Graph) promotableSubtables() ([]ObjectID, ObjectID, bool) {
	g.updateParents()
	var candidates []ObjectID
	for _, id := range g.sortedIDs() {
		if _, ok := g.promoters[g.objects[id].Kind]; ok {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return nil, 0, false
	}

	parents := make(map[ObjectID]bool)
	for _, id := range candidates {
		for _, parent := range g.nodes[id].parents {
			parents[parent.id] = true
		}
	}
	// promotable tables are lookups; a single lookup list should be their
	// common parent, anything else is malformed input
	if len(parents) != 1 {
		tracer().Errorf("promotable subtables exist with %d parents", len(parents))
		return nil, 0, false
	}
	for parent := range parents {
		return candidates, parent, true
	}
	return nil, 0, false
}

// selectPromotions picks the subset of candidates to promote, following
// the HarfBuzz heuristic: tables with many subtables relative to their
// subgraph size are promoted first, and promotion stops being optional as
// soon as any layer of the hierarchy outgrows the 16-bit reach.
func (g *Graph) selectPromotions(candidates []ObjectID, parent ObjectID) []ObjectID {
	type lookupSize struct {
		id            ObjectID
		subgraphSize  int
		subtableCount int
	}

	sizes := make([]lookupSize, 0, len(candidates))
	for _, id := range candidates {
		sizes = append(sizes, lookupSize{
			id:            id,
			subgraphSize:  g.findSubgraphSize(id),
			subtableCount: len(g.objects[id].Offsets),
		})
	}
	// biggest bytes-per-subtable ratio first
	sort.SliceStable(sizes, func(i, j int) bool {
		ri := float64(sizes[i].subtableCount) / float64(sizes[i].subgraphSize)
		rj := float64(sizes[j].subtableCount) / float64(sizes[j].subgraphSize)
		return ri > rj
	})

	l2l3Size := len(g.objects[parent].Bytes) // lookup list and lookups
	l3l4Size := 0                            // lookups and lookup subtables
	l4PlusSize := 0                          // subtables and anything below

	// assume all lookups are extensions, adjusted down per kept lookup
	for _, lookup := range sizes {
		subtablesSize := lookup.subtableCount * extensionSize
		l3l4Size += subtablesSize
		l4PlusSize += subtablesSize
	}

	layersFull := false
	var toPromote []ObjectID
	for _, lookup := range sizes {
		if !layersFull {
			lookupSize := len(g.objects[lookup.id].Bytes)
			subtablesSize := g.findChildrenSize(lookup.id)
			remainingSize := lookup.subgraphSize - lookupSize - subtablesSize
			l2l3Size += lookupSize
			l3l4Size += lookupSize + subtablesSize
			l3l4Size -= lookup.subtableCount * extensionSize
			l4PlusSize += subtablesSize + remainingSize

			if l2l3Size < maxLayerSize && l3l4Size < maxLayerSize && l4PlusSize < maxLayerSize {
				// this lookup fits in the 16-bit space
				continue
			}
			layersFull = true
		}
		toPromote = append(toPromote, lookup.id)
	}
	return toPromote
}

// promote rewrites each table in toPromote: every subtable offset is
// redirected through a fresh extension wrapper, and the table itself is
// adjusted by its promoter.
func (g *Graph) promote(toPromote []ObjectID) {
	for _, id := range toPromote {
		obj := g.objects[id]
		promoter := g.promoters[obj.Kind]
		for i := range obj.Offsets {
			if obj.Offsets[i].Target.IsNull() {
				continue
			}
			ext := promoter.Wrap(obj.Offsets[i].Target)
			obj.Offsets[i].Target = g.AddObject(ext)
		}
		promoter.Rewrite(obj)
	}
	g.parentsInvalid = true
	g.positionsInvalid = true
}

// findChildrenSize sums the sizes of the direct children only.
func (g *Graph) findChildrenSize(id ObjectID) int {
	size := 0
	for _, link := range g.objects[id].Offsets {
		if link.Target.IsNull() {
			continue
		}
		size += len(g.objects[link.Target].Bytes)
	}
	return size
}

// findSubgraphSize returns the byte size of the subgraph rooted at id,
// counting shared objects once.
func (g *Graph) findSubgraphSize(id ObjectID) int {
	visited := make(map[ObjectID]bool)
	queue := []ObjectID{id}
	size := 0
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if visited[next] {
			continue
		}
		visited[next] = true
		obj := g.objects[next]
		size += len(obj.Bytes)
		for _, link := range obj.Offsets {
			if !link.Target.IsNull() && !visited[link.Target] {
				queue = append(queue, link.Target)
			}
		}
	}
	return size
}
