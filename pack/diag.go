package pack

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/emicklei/dot"
	"github.com/pterm/pterm"
)

// DumpDOT renders the graph in Graphviz DOT format, for debugging packing
// failures. Node labels carry object id, size and space; overflowing edges
// are highlighted. With pruneToOverflows set, only the spaces that contain
// overflows are rendered, which keeps dumps of large fonts readable.
//
// The graph must have been sorted at least once.
func (g *Graph) DumpDOT(pruneToOverflows bool) string {
	overflows := g.findOverflows()
	overflowing := make(map[[2]ObjectID]bool, len(overflows))
	badSpaces := make(map[Space]bool)
	for _, o := range overflows {
		overflowing[[2]ObjectID{o.Parent, o.Child}] = true
		badSpaces[g.nodes[o.Parent].space] = true
	}

	keep := func(id ObjectID) bool { return true }
	if pruneToOverflows && len(badSpaces) > 0 {
		keep = func(id ObjectID) bool { return badSpaces[g.nodes[id].space] }
	}

	dg := dot.NewGraph(dot.Directed)
	dg.Attr("rankdir", "LR")
	dotNodes := make(map[ObjectID]dot.Node)
	for _, id := range g.order {
		if !keep(id) {
			continue
		}
		n := g.nodes[id]
		label := fmt.Sprintf("%d (%sB, S%d)", id, humanize.Comma(int64(n.size)), n.space)
		dotNodes[id] = dg.Node(fmt.Sprintf("%d", id)).Label(label)
	}
	for _, id := range g.order {
		from, ok := dotNodes[id]
		if !ok {
			continue
		}
		for _, link := range g.objects[id].Offsets {
			if link.Target.IsNull() {
				continue
			}
			to, ok := dotNodes[link.Target]
			if !ok {
				continue
			}
			rel := g.nodes[link.Target].position - g.nodes[id].position
			e := dg.Edge(from, to).Label(fmt.Sprintf("%d", rel))
			if overflowing[[2]ObjectID{id, link.Target}] {
				e.Attr("color", "firebrick")
				e.Attr("style", "bold")
			}
		}
	}
	return dg.String()
}

// RenderOverflows formats overflows as a console table.
func RenderOverflows(overflows []Overflow) string {
	data := pterm.TableData{{"Parent", "Child", "Offset", "Distance"}}
	for _, o := range overflows {
		data = append(data, []string{
			fmt.Sprintf("%d", o.Parent),
			fmt.Sprintf("%d", o.Child),
			o.Len.String(),
			fmt.Sprintf("%d", o.Distance),
		})
	}
	rendered, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err.Error()
	}
	return rendered
}
