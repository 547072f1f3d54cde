package pack

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

const testLookupKind = Kind("TestLookup")
const testExtensionKind = Kind("TestExtension")

// testPromoter wraps subtables in an 8-byte extension carrying a wide
// offset and flips the lookup's type field.
type testPromoter struct{}

func (testPromoter) Wrap(child ObjectID) *Object {
	ext := NewObject(testExtensionKind)
	ext.WriteU16(1) // extension format
	ext.WriteU16(7) // wrapped lookup type
	ext.AddOffset(child, Offset32, 0)
	return ext
}

func (testPromoter) Rewrite(obj *Object) {
	obj.WriteOverU16(9, 0) // extension lookup type
}

func TestPromoteWrapsOnlyWhatLayersRequire(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otpack.pack")
	defer teardown()
	//
	// three lookups with 30000-byte subtables; the first two fit the
	// 16-bit layers, the third pushes the subtable layer over 65535 and
	// must be promoted
	g, ids := newTestGraph(8, 10, 10, 10, 30000, 30000, 30000).
		link(0, 1, Offset16).
		link(0, 2, Offset16).
		link(0, 3, Offset16).
		link(1, 4, Offset16).
		link(2, 5, Offset16).
		link(3, 6, Offset16).
		build()
	for _, id := range ids[1:4] {
		g.objects[id].Kind = testLookupKind
	}
	g.objects[ids[1]].WriteOverU16(7, 0)
	g.objects[ids[2]].WriteOverU16(7, 0)
	g.objects[ids[3]].WriteOverU16(7, 0)
	g.RegisterPromoter(testLookupKind, testPromoter{})

	g.tryPromotingSubtables()

	if g.Len() != 8 {
		t.Fatalf("expected one extension added, graph has %d objects", g.Len())
	}
	// the first two lookups keep their direct subtable links
	for _, id := range ids[1:3] {
		target := g.objects[id].Offsets[0].Target
		if g.objects[target].Kind == testExtensionKind {
			t.Errorf("lookup %d promoted although layers had room", id)
		}
	}
	// the third lookup goes through an extension now
	promoted := g.objects[ids[3]]
	ext := g.objects[promoted.Offsets[0].Target]
	if ext.Kind != testExtensionKind {
		t.Fatalf("expected extension wrapper, got kind %q", ext.Kind)
	}
	if len(ext.Offsets) != 1 || ext.Offsets[0].Len != Offset32 || ext.Offsets[0].Target != ids[6] {
		t.Errorf("unexpected extension offsets %+v", ext.Offsets)
	}
	if promoted.Bytes[0] != 0 || promoted.Bytes[1] != 9 {
		t.Errorf("expected lookup type rewritten to 9, got % x", promoted.Bytes[:2])
	}
}

func TestPromoteNeedsCommonParent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otpack.pack")
	defer teardown()
	//
	// promotable tables under two different parents disable promotion
	g, ids := newTestGraph(8, 8, 10, 10).
		link(0, 1, Offset16).
		link(0, 2, Offset16).
		link(1, 3, Offset16).
		link(2, 3, Offset16).
		build()
	g.objects[ids[3]].Kind = testLookupKind
	// a second promotable object under a different parent
	g.objects[ids[2]].Kind = testLookupKind
	g.RegisterPromoter(testLookupKind, testPromoter{})

	before := g.Len()
	g.tryPromotingSubtables()
	if g.Len() != before {
		t.Errorf("expected promotion to be skipped, graph grew to %d", g.Len())
	}
}
