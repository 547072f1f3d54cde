package pack

import (
	"sort"

	"github.com/dustin/go-humanize"
)

// node carries the per-object sorting state. Objects hold the serialized
// data; nodes hold everything the packer learns about them.
type node struct {
	size     uint32
	distance uint64
	position uint32 // byte position after sorting
	space    Space
	parents  []parentLink
	priority priority
}

// parentLink records one incoming edge: the referencing object and the
// width of the offset it uses.
type parentLink struct {
	id  ObjectID
	len OffsetLen
}

func newNode(size uint32) *node {
	return &node{
		size:  size,
		space: spaceReachable,
	}
}

// priority nudges a node closer to its parents during distance sorting.
type priority uint8

const priorityMax priority = 3

func (p *priority) increase() bool {
	if *p >= priorityMax {
		return false
	}
	*p++
	return true
}

// modifiedDistance returns the node's sort score, discounted by its
// priority. order breaks ties between nodes released in the same step.
func (n *node) modifiedDistance(order uint32) distance {
	d := int64(n.distance)
	switch n.priority {
	case 1:
		d -= int64(n.size) / 2
	case 2:
		d -= int64(n.size)
	case 3:
		d = 0
	}
	if d < 0 {
		d = 0
	}
	return distance{space: n.space, dist: uint64(d), order: order}
}

// distance is the score used by the shortest-distance sort. Like spaces are
// packed together, and smaller spaces are packed before larger ones.
type distance struct {
	space Space
	dist  uint64
	order uint32 // tie breaker, based on release order
}

var distanceRoot = distance{}

// distanceLess orders scores lexicographically by space, distance, order.
func distanceLess(a, b distance) bool {
	if a.space != b.space {
		return a.space < b.space
	}
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	return a.order < b.order
}

// Graph is the object graph being packed: the serialized tables plus the
// mutable sorting state. It is created from a Store via MakeGraph or
// FromStore and consumed by Pack.
type Graph struct {
	objects map[ObjectID]*Object
	nodes   map[ObjectID]*node
	order   []ObjectID
	root    ObjectID
	next    ObjectID // id arena for objects added after dedup

	parentsInvalid   bool
	distanceInvalid  bool
	positionsInvalid bool

	nextSpace     Space
	rootsPerSpace map[Space]int

	splitters  map[Kind]Splitter
	containers map[Kind]Container
	promoters  map[Kind]Promoter
}

// FromStore builds a graph over the store's objects, rooted at root.
// The graph takes ownership of the store's objects.
func FromStore(store *Store, root ObjectID) *Graph {
	g := &Graph{
		objects:          store.objects,
		nodes:            make(map[ObjectID]*node, len(store.objects)),
		root:             root,
		next:             store.next,
		parentsInvalid:   true,
		distanceInvalid:  true,
		positionsInvalid: true,
		nextSpace:        spaceInit,
		rootsPerSpace:    make(map[Space]int),
		splitters:        make(map[Kind]Splitter),
		containers:       make(map[Kind]Container),
		promoters:        make(map[Kind]Promoter),
	}
	for id, obj := range store.objects {
		g.nodes[id] = newNode(uint32(len(obj.Bytes)))
	}
	return g
}

// Root returns the id of the graph's root object.
func (g *Graph) Root() ObjectID {
	return g.root
}

// Object returns the object with the given id, or nil.
func (g *Graph) Object(id ObjectID) *Object {
	return g.objects[id]
}

// Len returns the number of objects in the graph.
func (g *Graph) Len() int {
	return len(g.objects)
}

// RegisterSplitter makes tables of the given kind eligible for splitting.
func (g *Graph) RegisterSplitter(kind Kind, s Splitter) {
	g.splitters[kind] = s
}

// RegisterContainer declares how a parent table of the given kind is
// rebuilt after its children have been split.
func (g *Graph) RegisterContainer(kind Kind, c Container) {
	g.containers[kind] = c
}

// RegisterPromoter makes tables of the given kind eligible for promotion
// behind extension wrappers.
func (g *Graph) RegisterPromoter(kind Kind, p Promoter) {
	g.promoters[kind] = p
}

// AddObject adds an object to the graph after initial compilation, for
// graph edits such as splitting or promotion. Objects added this way are
// not deduplicated.
func (g *Graph) AddObject(obj *Object) ObjectID {
	g.parentsInvalid = true
	g.distanceInvalid = true
	id := g.next
	g.next++
	g.objects[id] = obj
	g.nodes[id] = newNode(uint32(len(obj.Bytes)))
	return id
}

// sortedIDs returns all object ids in ascending order. Iteration over
// graph objects goes through this to keep the packer deterministic.
func (g *Graph) sortedIDs() []ObjectID {
	ids := make([]ObjectID, 0, len(g.objects))
	for id := range g.objects {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (g *Graph) updateParents() {
	if !g.parentsInvalid {
		return
	}
	for _, n := range g.nodes {
		n.parents = n.parents[:0]
	}
	for _, id := range g.sortedIDs() {
		for _, link := range g.objects[id].Offsets {
			if link.Target.IsNull() {
				continue
			}
			child := g.nodes[link.Target]
			child.parents = append(child.parents, parentLink{id: id, len: link.Len})
		}
	}
	g.parentsInvalid = false
}

// removeOrphans drops objects no longer reachable from the root, e.g.
// subtables replaced by splitting.
func (g *Graph) removeOrphans() {
	visited := make(map[ObjectID]bool, len(g.nodes))
	g.findSubgraph(g.root, visited)
	if len(visited) == len(g.nodes) {
		return
	}
	tracer().Debugf("removing %d orphan objects", len(g.nodes)-len(visited))
	for id := range g.nodes {
		if !visited[id] {
			delete(g.nodes, id)
			delete(g.objects, id)
		}
	}
	g.parentsInvalid = true
}

// findSubgraph marks every object reachable from id, including id itself.
func (g *Graph) findSubgraph(id ObjectID, visited map[ObjectID]bool) {
	if visited[id] {
		return
	}
	visited[id] = true
	for _, link := range g.objects[id].Offsets {
		if link.Target.IsNull() {
			continue
		}
		g.findSubgraph(link.Target, visited)
	}
}

// findSubgraphMap counts, for every object reachable from id (exclusive),
// the number of incoming edges from within that subgraph.
func (g *Graph) findSubgraphMap(id ObjectID, subgraph map[ObjectID]int) {
	for _, link := range g.objects[id].Offsets {
		if link.Target.IsNull() {
			continue
		}
		if _, seen := subgraph[link.Target]; seen {
			subgraph[link.Target]++
			continue
		}
		subgraph[link.Target] = 1
		g.findSubgraphMap(link.Target, subgraph)
	}
}

// duplicateSubgraph deep-copies the subgraph rooted at root into fresh ids,
// recording old-to-new mappings in dupes and placing the copies in space.
// Objects already in dupes are shared rather than copied again.
func (g *Graph) duplicateSubgraph(root ObjectID, dupes map[ObjectID]ObjectID, space Space) ObjectID {
	if existing, ok := dupes[root]; ok {
		return existing
	}
	g.parentsInvalid = true
	g.distanceInvalid = true

	obj := g.objects[root].clone()
	n := newNode(uint32(len(obj.Bytes)))
	n.space = space

	for i := range obj.Offsets {
		if obj.Offsets[i].Target.IsNull() {
			continue
		}
		obj.Offsets[i].Target = g.duplicateSubgraph(obj.Offsets[i].Target, dupes, space)
	}

	id := g.next
	g.next++
	tracer().Debugf("duplicating object %d to %d", root, id)
	dupes[root] = id
	g.objects[id] = obj
	g.nodes[id] = n
	return id
}

// totalSize returns the byte length of the serialized graph. Only valid
// when order is up to date.
func (g *Graph) totalSize() int {
	total := 0
	for _, id := range g.order {
		total += len(g.objects[id].Bytes)
	}
	return total
}

func (g *Graph) debugSize() string {
	return humanize.IBytes(uint64(g.totalSize()))
}
