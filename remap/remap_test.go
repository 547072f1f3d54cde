package remap

import (
	"math/rand"
	"testing"
)

func TestAddAssignsDenseIndices(t *testing.T) {
	var m IncBiMap
	keys := []uint32{100, 7, 100, 0xffff, 7, 3}
	want := []uint32{0, 1, 0, 2, 1, 3}
	for i, k := range keys {
		if idx := m.Add(k); idx != want[i] {
			t.Errorf("Add(%d) = %d, want %d", k, idx, want[i])
		}
	}
	if m.Len() != 4 {
		t.Errorf("Len() = %d, want 4", m.Len())
	}
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	m := NewWithCapacity(256)
	for i := 0; i < 1000; i++ {
		k := rng.Uint32() % 512
		idx := m.Add(k)
		back, ok := m.GetBackward(idx)
		if !ok || back != k {
			t.Fatalf("GetBackward(Add(%d)) = (%d, %v), want (%d, true)", k, back, ok, k)
		}
	}
	// indices must be exactly 0..n with no gaps
	for i := 0; i < m.Len(); i++ {
		key, ok := m.GetBackward(uint32(i))
		if !ok {
			t.Fatalf("gap at dense index %d", i)
		}
		if idx, ok := m.Get(key); !ok || idx != uint32(i) {
			t.Errorf("Get(%d) = (%d, %v), want (%d, true)", key, idx, ok, i)
		}
	}
	if _, ok := m.GetBackward(uint32(m.Len())); ok {
		t.Error("GetBackward past the end should report !ok")
	}
}

func TestKeysInsertionOrder(t *testing.T) {
	var m IncBiMap
	for _, k := range []uint32{9, 2, 5, 2, 9, 11} {
		m.Add(k)
	}
	keys := m.Keys()
	want := []uint32{9, 2, 5, 11}
	if len(keys) != len(want) {
		t.Fatalf("Keys() has %d entries, want %d", len(keys), len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys()[%d] = %d, want %d", i, keys[i], want[i])
		}
	}
}
