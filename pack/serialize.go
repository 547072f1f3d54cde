package pack

// serialize writes out the packed graph. The caller is responsible for
// ensuring that the graph is sorted and free of overflows.
func (g *Graph) serialize() []byte {
	if len(g.order) == 0 {
		panic(errPacking("graph must be sorted before serialization"))
	}

	positions := make(map[ObjectID]uint32, len(g.order))
	out := make([]byte, 0, g.totalSize())

	// first pass: write out bytes, record object positions
	pos := uint32(0)
	for _, id := range g.order {
		obj := g.objects[id]
		positions[id] = pos
		pos += uint32(len(obj.Bytes))
		out = append(out, obj.Bytes...)
	}

	// second pass: patch offsets
	tableHead := uint32(0)
	for _, id := range g.order {
		obj := g.objects[id]
		for _, link := range obj.Offsets {
			if link.Target.IsNull() {
				continue
			}
			rel := positions[link.Target] - (tableHead + link.Adjust)
			patchOffset(out[tableHead+link.Pos:], link.Len, rel)
		}
		tableHead += uint32(len(obj.Bytes))
	}
	return out
}

func patchOffset(at []byte, width OffsetLen, resolved uint32) {
	switch width {
	case Offset16:
		at[0] = byte(resolved >> 8)
		at[1] = byte(resolved)
	case Offset24:
		at[0] = byte(resolved >> 16)
		at[1] = byte(resolved >> 8)
		at[2] = byte(resolved)
	default:
		at[0] = byte(resolved >> 24)
		at[1] = byte(resolved >> 16)
		at[2] = byte(resolved >> 8)
		at[3] = byte(resolved)
	}
}
