/*
Package remap compacts sparse identifier spaces into dense ones.

Subsetting and table packing frequently renumber identifiers (glyph IDs,
class values, delta-set indices) into a gap-free range 0…n for a trimmed
output table. IncBiMap is the incremental bijection used for this: keys are
assigned dense indices in order of first insertion, and the mapping can be
read in both directions.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package remap

// IncBiMap is an incremental bijective map from sparse uint32 keys to dense
// indices 0…n−1, assigned in order of first insertion. There is no removal.
// The zero value is ready to use.
type IncBiMap struct {
	forward  map[uint32]uint32
	backward []uint32
}

// NewWithCapacity creates an IncBiMap with storage for n entries.
func NewWithCapacity(n int) *IncBiMap {
	return &IncBiMap{
		forward:  make(map[uint32]uint32, n),
		backward: make([]uint32, 0, n),
	}
}

// Add returns the dense index for key, assigning the next free index on
// first sight. Adding a known key is idempotent.
func (m *IncBiMap) Add(key uint32) uint32 {
	if idx, ok := m.forward[key]; ok {
		return idx
	}
	if m.forward == nil {
		m.forward = make(map[uint32]uint32)
	}
	idx := uint32(len(m.backward))
	m.forward[key] = idx
	m.backward = append(m.backward, key)
	return idx
}

// Get returns the dense index assigned to key.
func (m *IncBiMap) Get(key uint32) (uint32, bool) {
	idx, ok := m.forward[key]
	return idx, ok
}

// GetBackward returns the key that was assigned the dense index idx.
func (m *IncBiMap) GetBackward(idx uint32) (uint32, bool) {
	if int(idx) >= len(m.backward) {
		return 0, false
	}
	return m.backward[idx], true
}

// Len returns the number of keys in the map.
func (m *IncBiMap) Len() int {
	return len(m.backward)
}

// Keys returns all keys in order of first insertion.
// The returned slice is a copy.
func (m *IncBiMap) Keys() []uint32 {
	keys := make([]uint32, len(m.backward))
	copy(keys, m.backward)
	return keys
}
