package pack

// Overflow records one offset whose resolved distance does not fit the
// declared width under the current order.
type Overflow struct {
	Parent   ObjectID
	Child    ObjectID
	Distance uint32
	Len      OffsetLen
}

func (g *Graph) hasOverflows() bool {
	for id, obj := range g.objects {
		parent := g.nodes[id]
		for _, link := range obj.Offsets {
			if link.Target.IsNull() {
				continue
			}
			child := g.nodes[link.Target]
			rel := child.position - parent.position
			if link.Len.MaxValue() < rel {
				return true
			}
		}
	}
	return false
}

// findOverflows collects every offset that cannot be encoded under the
// current order. Only valid after a successful sort.
func (g *Graph) findOverflows() []Overflow {
	var result []Overflow
	for _, id := range g.sortedIDs() {
		parent := g.nodes[id]
		for _, link := range g.objects[id].Offsets {
			if link.Target.IsNull() {
				continue
			}
			child := g.nodes[link.Target]
			rel := child.position - parent.position
			if link.Len.MaxValue() < rel {
				result = append(result, Overflow{
					Parent:   id,
					Child:    link.Target,
					Distance: rel,
					Len:      link.Len,
				})
			}
		}
	}
	return result
}

func (g *Graph) debugOverflows(overflows []Overflow) {
	parents := make(map[ObjectID]bool)
	children := make(map[ObjectID]bool)
	for _, o := range overflows {
		parents[o.Parent] = true
		children[o.Child] = true
	}
	tracer().Debugf("found %d overflows from %d parents to %d children",
		len(overflows), len(parents), len(children))
	for _, o := range overflows {
		tracer().Debugf("%d -> %d type %s dist %d", o.Parent, o.Child, o.Len, o.Distance)
	}
}
