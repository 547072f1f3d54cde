package pack

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestDumpDOTHighlightsOverflows(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otpack.pack")
	defer teardown()
	//
	g, _ := newTestGraph(10, 0xffff-5, 100).
		link(0, 1, Offset16).
		link(0, 2, Offset16).
		link(1, 2, Offset16).
		build()
	if err := g.sortKahn(); err != nil {
		t.Fatalf("sort failed: %v", err)
	}
	dump := g.DumpDOT(false)
	if !strings.Contains(dump, "digraph") {
		t.Error("expected DOT output")
	}
	if !strings.Contains(dump, "firebrick") {
		t.Error("expected overflowing edge to be highlighted")
	}
}

func TestRenderOverflows(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otpack.pack")
	defer teardown()
	//
	out := RenderOverflows([]Overflow{
		{Parent: 1, Child: 3, Distance: 70000, Len: Offset16},
	})
	if !strings.Contains(out, "Offset16") || !strings.Contains(out, "70000") {
		t.Errorf("unexpected overflow rendering:\n%s", out)
	}
}
