package pack

import (
	"math"

	"github.com/npillmayer/otpack/internal/pqueue"
)

// sortKahn establishes an initial topological order. Among all objects
// whose incoming edges have been released, the one with the lowest id is
// placed next. Returns ErrStructuralCycle (wrapped in a PackingError) if
// not every object could be placed.
func (g *Graph) sortKahn() error {
	g.positionsInvalid = true
	g.order = g.order[:0]
	if len(g.nodes) <= 1 {
		g.order = append(g.order, g.sortedIDs()...)
		return nil
	}

	g.updateParents()
	queue := pqueue.New[ObjectID, ObjectID](func(a, b ObjectID) bool { return a < b })
	seenEdges := make(map[ObjectID]int, len(g.nodes))
	currentPos := uint32(0)

	queue.Push(g.root, g.root)
	for !queue.IsEmpty() {
		_, id, _ := queue.Pop()
		next := g.objects[id]
		g.order = append(g.order, id)
		g.nodes[id].position = currentPos
		currentPos += uint32(len(next.Bytes))
		for _, link := range next.Offsets {
			if link.Target.IsNull() {
				continue
			}
			seenEdges[link.Target]++
			// all incoming edges released, the object can be placed
			if seenEdges[link.Target] == len(g.nodes[link.Target].parents) {
				queue.Push(link.Target, link.Target)
			}
		}
	}
	return g.checkAllPlaced(seenEdges)
}

// sortShortestDistance orders objects so that children stay close to their
// parents: among the released objects, the one with the shortest distance
// from the root is placed next, grouped by space.
func (g *Graph) sortShortestDistance() error {
	g.positionsInvalid = true
	g.updateParents()
	g.updateDistances()
	g.assignSpace0()

	queue := pqueue.New[distance, ObjectID](distanceLess)
	seenEdges := make(map[ObjectID]int, len(g.nodes))
	currentPos := uint32(0)
	g.order = g.order[:0]

	queue.Push(distanceRoot, g.root)
	objOrder := uint32(1)
	for !queue.IsEmpty() {
		_, id, _ := queue.Pop()
		next := g.objects[id]
		g.order = append(g.order, id)
		g.nodes[id].position = currentPos
		currentPos += uint32(len(next.Bytes))
		for _, link := range next.Offsets {
			if link.Target.IsNull() {
				continue
			}
			seenEdges[link.Target]++
			if seenEdges[link.Target] == len(g.nodes[link.Target].parents) {
				d := g.nodes[link.Target].modifiedDistance(objOrder)
				objOrder++
				queue.Push(d, link.Target)
			}
		}
	}
	return g.checkAllPlaced(seenEdges)
}

// checkAllPlaced verifies that the sort consumed every incoming edge.
// A mismatch means some objects sit on a cycle and could not be placed.
func (g *Graph) checkAllPlaced(seenEdges map[ObjectID]int) error {
	var unplaced []ObjectID
	for _, id := range g.sortedIDs() {
		if id == g.root {
			continue
		}
		if seenEdges[id] != len(g.nodes[id].parents) {
			unplaced = append(unplaced, id)
		}
	}
	if len(unplaced) == 0 {
		return nil
	}
	tracer().Errorf("sort left %d objects unplaced", len(unplaced))
	return &PackingError{
		reason: ErrStructuralCycle,
		Cycle:  unplaced,
		graph:  g,
	}
}

// updateDistances computes each node's shortest distance from the root,
// where stepping into a child costs the child's size.
func (g *Graph) updateDistances() {
	for _, n := range g.nodes {
		n.distance = math.MaxUint32
	}
	g.nodes[g.root].distance = 0

	queue := pqueue.New[uint64, ObjectID](func(a, b uint64) bool { return a < b })
	visited := make(map[ObjectID]bool, len(g.nodes))
	queue.Push(0, g.root)

	for !queue.IsEmpty() {
		_, id, _ := queue.Pop()
		if visited[id] {
			continue
		}
		visited[id] = true
		nextDistance := g.nodes[id].distance
		for _, link := range g.objects[id].Offsets {
			if link.Target.IsNull() || visited[link.Target] {
				continue
			}
			child := g.nodes[link.Target]
			childDistance := nextDistance + uint64(child.size)
			if childDistance < child.distance {
				child.distance = childDistance
				queue.Push(childDistance, link.Target)
			}
		}
	}
	g.distanceInvalid = false
}

// assignSpace0 moves every node reachable from the root via 16 and 24 bit
// offsets into space 0, so they sort ahead of everything else.
func (g *Graph) assignSpace0() {
	stack := []ObjectID{g.root}
	for len(stack) > 0 {
		id := stack[0]
		stack = stack[1:]
		n, ok := g.nodes[id]
		if !ok || n.space == spaceShortReachable {
			continue
		}
		n.space = spaceShortReachable
		for _, link := range g.objects[id].Offsets {
			if link.Target.IsNull() {
				continue
			}
			if link.Len != Offset32 {
				stack = append(stack, link.Target)
			}
		}
	}
}
