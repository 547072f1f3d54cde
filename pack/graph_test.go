package pack

// Test helpers for building graphs by hand: one object per size, links
// added directly, bypassing the writer.

type testLink struct {
	from, to int
	width    OffsetLen
}

type testGraphBuilder struct {
	sizes []int
	links []testLink
}

func newTestGraph(sizes ...int) *testGraphBuilder {
	return &testGraphBuilder{sizes: sizes}
}

func (b *testGraphBuilder) link(from, to int, width OffsetLen) *testGraphBuilder {
	b.links = append(b.links, testLink{from: from, to: to, width: width})
	return b
}

// build creates a graph rooted at the first object. Returned ids are
// indexed like the sizes passed to newTestGraph. Blobs get distinct
// content so interning keeps them apart; links carry no byte positions,
// so these graphs must not be serialized.
func (b *testGraphBuilder) build() (*Graph, []ObjectID) {
	store := NewStore()
	ids := make([]ObjectID, len(b.sizes))
	for i, size := range b.sizes {
		obj := NewObject(KindUnknown)
		obj.Bytes = make([]byte, size)
		obj.Bytes[0] = byte(i >> 8)
		obj.Bytes[1] = byte(i)
		ids[i] = store.Intern(obj)
	}
	g := FromStore(store, ids[0])
	for _, l := range b.links {
		obj := g.objects[ids[l.from]]
		obj.Offsets = append(obj.Offsets, Offset{Len: l.width, Target: ids[l.to]})
	}
	return g, ids
}

func descendents(g *Graph, root ObjectID) map[ObjectID]bool {
	result := make(map[ObjectID]bool)
	stack := []ObjectID{root}
	for len(stack) > 0 {
		id := stack[0]
		stack = stack[1:]
		if result[id] {
			continue
		}
		result[id] = true
		for _, link := range g.objects[id].Offsets {
			stack = append(stack, link.Target)
		}
	}
	return result
}

func intersectionSize(a, b map[ObjectID]bool) int {
	n := 0
	for id := range a {
		if b[id] {
			n++
		}
	}
	return n
}

func sameOrder(got []ObjectID, want []ObjectID) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
