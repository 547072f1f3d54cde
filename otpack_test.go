package otpack

import (
	"bytes"
	"errors"
	"testing"

	"github.com/npillmayer/otpack/pack"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

type stubTable struct {
	tag      uint16
	pad      int
	children []*stubTable
	width    pack.OffsetLen
}

func (s *stubTable) WriteTo(w *pack.Writer) {
	w.WriteU16(s.tag)
	for _, c := range s.children {
		w.WriteOffset(c, s.width)
	}
	w.WriteBytes(make([]byte, s.pad))
}

func TestCompile(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otpack")
	defer teardown()
	//
	leaf := &stubTable{tag: 0xEEEE, pad: 2}
	root := &stubTable{tag: 0xF00D, width: pack.Offset16, children: []*stubTable{leaf, leaf}}
	out, err := Compile(root, nil)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	// root tag + two offsets to one shared leaf
	want := []byte{0xF0, 0x0D, 0x00, 0x06, 0x00, 0x06, 0xEE, 0xEE, 0x00, 0x00}
	if !bytes.Equal(out, want) {
		t.Errorf("expected % x, got % x", want, out)
	}
}

func TestCompileIsDeterministic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otpack")
	defer teardown()
	//
	build := func() *stubTable {
		leaves := make([]*stubTable, 6)
		for i := range leaves {
			leaves[i] = &stubTable{tag: uint16(i), pad: 10}
		}
		return &stubTable{tag: 0xF00D, width: pack.Offset16, children: leaves}
	}
	first, err := Compile(build(), nil)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Compile(build(), nil)
		if err != nil {
			t.Fatalf("compile failed: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("run %d produced different bytes", i)
		}
	}
}

func TestCompileReportsFailure(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otpack")
	defer teardown()
	//
	// two children out of 16-bit reach with no applicable strategy
	wide := &stubTable{tag: 0x0001, pad: 66000}
	wide2 := &stubTable{tag: 0x0002, pad: 66000}
	mid := &stubTable{tag: 0x1111, width: pack.Offset16, children: []*stubTable{wide, wide2}}
	root := &stubTable{tag: 0xF00D, width: pack.Offset32, children: []*stubTable{mid}}
	_, err := Compile(root, &pack.Config{DisableSplitting: true})
	if err == nil {
		t.Fatal("expected compile to fail")
	}
	if !errors.Is(err, pack.ErrOverflowUnresolved) {
		t.Errorf("expected overflow error, got %v", err)
	}
}
