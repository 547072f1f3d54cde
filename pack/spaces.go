package pack

import "sort"

// Space assignment and subgraph isolation, closely following the HarfBuzz
// repacker (src/graph/graph.hh, hb-repacker.hh).

// assignSpaces isolates every subgraph reachable via 32-bit offsets into
// its own space, so the sort packs it after all short-offset data. Each
// space may have multiple roots; roots whose subgraphs share nodes end up
// in the same space. Returns true if any space was assigned.
func (g *Graph) assignSpaces() bool {
	g.updateParents()
	visited, roots := g.findSpaceRoots()
	if len(roots) == 0 {
		return false
	}
	tracer().Debugf("found %d space roots to isolate", len(roots))

	// invert the visited set: connected-component search must not wander
	// into short-offset territory
	inverted := make(map[ObjectID]bool, len(g.nodes))
	for id := range g.nodes {
		if !visited[id] {
			inverted[id] = true
		}
	}

	for len(roots) > 0 {
		next := minKey(roots)
		connected := make(map[ObjectID]bool)
		g.findConnectedNodes(next, roots, inverted, connected)
		g.isolateSubgraph(connected)
		g.distanceInvalid = true
		g.positionsInvalid = true
	}
	return true
}

// findSpaceRoots returns the set of all nodes reachable through a 32-bit
// offset together with the roots of those subgraphs. A root is a target of
// a 32-bit offset none of whose ancestors is itself such a target.
func (g *Graph) findSpaceRoots() (visited, roots map[ObjectID]bool) {
	visited = make(map[ObjectID]bool)
	roots = make(map[ObjectID]bool)
	queue := []ObjectID{g.root}
	seen := map[ObjectID]bool{g.root: true}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		for _, link := range g.objects[id].Offsets {
			if link.Target.IsNull() {
				continue
			}
			if link.Len == Offset32 {
				roots[link.Target] = true
				g.findSubgraph(link.Target, visited)
			} else if !seen[link.Target] {
				seen[link.Target] = true
				queue = append(queue, link.Target)
			}
		}
	}
	return visited, roots
}

// findConnectedNodes collects the members of targets reachable from id by
// treating the graph as undirected, skipping nodes in visited. Found
// targets move from targets to connected.
func (g *Graph) findConnectedNodes(id ObjectID, targets, visited, connected map[ObjectID]bool) {
	if visited[id] {
		return
	}
	visited[id] = true
	if targets[id] {
		delete(targets, id)
		connected[id] = true
	}
	for _, parent := range g.nodes[id].parents {
		g.findConnectedNodes(parent.id, targets, visited, connected)
	}
	for _, link := range g.objects[id].Offsets {
		if link.Target.IsNull() {
			continue
		}
		g.findConnectedNodes(link.Target, targets, visited, connected)
	}
}

// isolateSubgraph moves the subgraph under the given roots into a fresh
// space, duplicating any member that is shared with nodes outside the
// subgraph so that the subgraph is reachable via wide offsets only.
// Duplicated roots replace the originals in roots. Returns true if any
// object was duplicated.
func (g *Graph) isolateSubgraph(roots map[ObjectID]bool) bool {
	g.updateParents()

	// per subgraph member, the number of incoming edges from inside
	subgraph := make(map[ObjectID]int)
	for _, root := range sortedKeys(roots) {
		// roots start with their count of incoming wide offsets; fewer
		// than total incoming offsets means the root itself is shared
		wide := 0
		for _, parent := range g.nodes[root].parents {
			if parent.len != Offset16 {
				wide++
			}
		}
		subgraph[root] = wide
		g.findSubgraphMap(root, subgraph)
	}

	space := g.newSpace()
	tracer().Debugf("moving %d roots to space %d", len(roots), space)
	g.rootsPerSpace[space] = len(roots)

	idMap := make(map[ObjectID]ObjectID)
	for _, id := range sortedIntKeys(subgraph) {
		// edges from outside the subgraph reach this object, dupe it
		if subgraph[id] < len(g.nodes[id].parents) {
			g.duplicateSubgraph(id, idMap, space)
		}
	}

	// move the rest into the new space and remap their links to any
	// duplicated members
	for _, id := range sortedIntKeys(subgraph) {
		if _, duped := idMap[id]; duped {
			continue
		}
		g.nodes[id].space = space
		obj := g.objects[id]
		for i := range obj.Offsets {
			if newID, ok := idMap[obj.Offsets[i].Target]; ok {
				obj.Offsets[i].Target = newID
			}
		}
	}

	if len(idMap) == 0 {
		return false
	}

	// everything inside the subgraph is remapped; fix the wide links from
	// the outside that pointed at duplicated roots
	for _, root := range sortedKeys(roots) {
		newID, ok := idMap[root]
		if !ok {
			continue
		}
		g.parentsInvalid = true
		g.positionsInvalid = true
		for _, parent := range g.nodes[root].parents {
			if parent.len == Offset16 {
				continue
			}
			pobj := g.objects[parent.id]
			for i := range pobj.Offsets {
				if pobj.Offsets[i].Target == root {
					pobj.Offsets[i].Target = newID
				}
			}
		}
	}

	// rename duplicated roots in the input set
	for old, dup := range idMap {
		if roots[old] {
			delete(roots, old)
			roots[dup] = true
		}
	}
	return true
}

// tryIsolatingSubgraphs reacts to overflows inside custom spaces: every
// space that overflows and still has more than one root gets half its
// roots moved out into a fresh space. Returns true if any change was made.
func (g *Graph) tryIsolatingSubgraphs(overflows []Overflow) bool {
	toIsolate := make(map[Space]map[ObjectID]bool)
	for _, overflow := range overflows {
		parentSpace := g.nodes[overflow.Parent].space
		if !parentSpace.isCustom() || g.rootsPerSpace[parentSpace] < 2 {
			continue
		}
		root := g.findRootOfSpace(overflow.Parent)
		set := toIsolate[parentSpace]
		if set == nil {
			set = make(map[ObjectID]bool)
			toIsolate[parentSpace] = set
		}
		set[root] = true
	}
	if len(toIsolate) == 0 {
		return false
	}

	for _, space := range sortedSpaceKeys(toIsolate) {
		roots := toIsolate[space]
		maxToMove := g.rootsPerSpace[space] / 2
		tracer().Debugf("moving %d of %d candidate roots from space %d to new space",
			min(maxToMove, len(roots)), len(roots), space)
		for len(roots) > maxToMove {
			delete(roots, maxKey(roots))
		}
		g.isolateSubgraph(roots)
		g.rootsPerSpace[space] -= len(roots)
	}
	return true
}

// findRootOfSpace walks up the first-parent chain until it leaves the
// object's space. Only valid for objects in a custom space.
func (g *Graph) findRootOfSpace(id ObjectID) ObjectID {
	space := g.nodes[id].space
	parent := g.nodes[id].parents[0].id
	if g.nodes[parent].space != space {
		return id
	}
	return g.findRootOfSpace(parent)
}

func (g *Graph) newSpace() Space {
	g.nextSpace++
	return g.nextSpace
}

func sortedKeys(set map[ObjectID]bool) []ObjectID {
	ids := make([]ObjectID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedIntKeys(m map[ObjectID]int) []ObjectID {
	ids := make([]ObjectID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedSpaceKeys(m map[Space]map[ObjectID]bool) []Space {
	spaces := make([]Space, 0, len(m))
	for s := range m {
		spaces = append(spaces, s)
	}
	sort.Slice(spaces, func(i, j int) bool { return spaces[i] < spaces[j] })
	return spaces
}

func minKey(set map[ObjectID]bool) ObjectID {
	var best ObjectID
	first := true
	for id := range set {
		if first || id < best {
			best = id
			first = false
		}
	}
	return best
}

func maxKey(set map[ObjectID]bool) ObjectID {
	var best ObjectID
	for id := range set {
		if id > best {
			best = id
		}
	}
	return best
}
