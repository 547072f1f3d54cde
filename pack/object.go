package pack

// Objects are the vertices of the packing graph: an immutable serialized
// byte blob plus the offset edges recorded at byte positions within it.

// ObjectID is an opaque handle for an object in the packing graph.
// IDs are scoped to one Store/Graph and are never reused while it is alive.
// The zero value is the null id, used as the target of nullable offsets.
type ObjectID uint32

// IsNull reports whether the id is the null id.
func (id ObjectID) IsNull() bool {
	return id == 0
}

// OffsetLen is the encoded width of an offset field.
type OffsetLen uint8

const (
	Offset16 OffsetLen = 2 // uint16 offset
	Offset24 OffsetLen = 3 // uint24 offset
	Offset32 OffsetLen = 4 // uint32 offset
)

// ByteLen returns the number of bytes an offset of this width occupies.
func (l OffsetLen) ByteLen() int {
	return int(l)
}

// MaxValue returns the maximum distance representable by this width.
func (l OffsetLen) MaxValue() uint32 {
	switch l {
	case Offset16:
		return 0xffff
	case Offset24:
		return 1<<24 - 1
	default:
		return 0xffffffff
	}
}

func (l OffsetLen) String() string {
	switch l {
	case Offset16:
		return "Offset16"
	case Offset24:
		return "Offset24"
	default:
		return "Offset32"
	}
}

// Space is a ranking used for sorting the graph. Nodes are assigned a
// space, and nodes in lower spaces are always packed before nodes in higher
// spaces. Spaces at or above spaceInit identify independent 32-bit offset
// address spaces created during overflow resolution.
type Space uint32

const (
	spaceShortReachable Space = 0 // nodes reachable via 16-bit offsets
	spaceReachable      Space = 1 // nodes reachable via any offset
	spaceInit           Space = 2 // first space assigned to an isolated subgraph
)

func (s Space) isCustom() bool {
	return s >= spaceInit
}

// Kind identifies a table kind for capability registration (splitting,
// promotion). It carries no meaning for dedup or packing otherwise.
type Kind string

// KindUnknown is the kind of tables that declare none.
const KindUnknown Kind = ""

// Offset records one offset field inside an object's blob.
type Offset struct {
	Pos      uint32    // byte position of the field within the parent blob
	Len      OffsetLen // encoded width
	Target   ObjectID  // object the offset points to; null only if Nullable
	Adjust   uint32    // subtracted from the resolved offset before writing
	Nullable bool      // a null target is legal and serializes as zero
}

// Object is an immutable serialized table: a byte blob plus its outgoing
// offset edges. Two objects with identical blobs and identical edge sets
// are the same object; identity is content-addressed by Store.Intern.
type Object struct {
	Kind    Kind
	Bytes   []byte
	Offsets []Offset
}

// NewObject creates an empty object of the given kind.
func NewObject(kind Kind) *Object {
	return &Object{Kind: kind}
}

// WriteU8 appends a byte to the blob.
func (o *Object) WriteU8(v uint8) {
	o.Bytes = append(o.Bytes, v)
}

// WriteU16 appends a big-endian uint16 to the blob.
func (o *Object) WriteU16(v uint16) {
	o.Bytes = append(o.Bytes, byte(v>>8), byte(v))
}

// WriteU24 appends the low 24 bits of v, big-endian.
func (o *Object) WriteU24(v uint32) {
	o.Bytes = append(o.Bytes, byte(v>>16), byte(v>>8), byte(v))
}

// WriteU32 appends a big-endian uint32 to the blob.
func (o *Object) WriteU32(v uint32) {
	o.Bytes = append(o.Bytes, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// WriteBytes appends raw bytes to the blob. The caller is responsible for
// ensuring they are in big-endian order.
func (o *Object) WriteBytes(b []byte) {
	o.Bytes = append(o.Bytes, b...)
}

// WriteOverU16 writes a big-endian uint16 over existing blob data.
// Only used in very special cases (e.g. flipping a subtable-type field
// during promotion); the caller is responsible for the position.
func (o *Object) WriteOverU16(v uint16, pos int) {
	o.Bytes[pos] = byte(v >> 8)
	o.Bytes[pos+1] = byte(v)
}

// AddOffset records an offset edge to target at the current end of the
// blob and reserves the field with null bytes. adjust is subtracted from
// the resolved offset before writing (for offsets measured from a point
// other than the table start).
func (o *Object) AddOffset(target ObjectID, width OffsetLen, adjust uint32) {
	o.Offsets = append(o.Offsets, Offset{
		Pos:    uint32(len(o.Bytes)),
		Len:    width,
		Target: target,
		Adjust: adjust,
	})
	o.Bytes = append(o.Bytes, make([]byte, width.ByteLen())...)
}

// AddNullOffset reserves an offset field that serializes as zero.
func (o *Object) AddNullOffset(width OffsetLen) {
	o.Offsets = append(o.Offsets, Offset{
		Pos:      uint32(len(o.Bytes)),
		Len:      width,
		Nullable: true,
	})
	o.Bytes = append(o.Bytes, make([]byte, width.ByteLen())...)
}

// Size returns the blob length in bytes.
func (o *Object) Size() int {
	return len(o.Bytes)
}

// clone returns a deep copy sharing nothing with the original.
func (o *Object) clone() *Object {
	dup := &Object{
		Kind:    o.Kind,
		Bytes:   make([]byte, len(o.Bytes)),
		Offsets: make([]Offset, len(o.Offsets)),
	}
	copy(dup.Bytes, o.Bytes)
	copy(dup.Offsets, o.Offsets)
	return dup
}

// contentKey builds the interning key: blob bytes plus the encoded edge
// set. Kind is deliberately excluded, matching the dedup contract.
func (o *Object) contentKey() string {
	key := make([]byte, 0, len(o.Bytes)+1+len(o.Offsets)*14)
	key = append(key, o.Bytes...)
	key = append(key, 0xff) // separator; cannot start an offset record below
	for _, off := range o.Offsets {
		key = append(key,
			byte(off.Pos>>24), byte(off.Pos>>16), byte(off.Pos>>8), byte(off.Pos),
			byte(off.Len),
			byte(off.Target>>24), byte(off.Target>>16), byte(off.Target>>8), byte(off.Target),
			byte(off.Adjust>>24), byte(off.Adjust>>16), byte(off.Adjust>>8), byte(off.Adjust),
			boolByte(off.Nullable))
	}
	return string(key)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// --- Store -----------------------------------------------------------------

// Store interns serialized objects, handing out stable ids. Identical
// content shares one id. The store grows monotonically; there is no removal
// and its lifetime equals the lifetime of the graph built from it.
type Store struct {
	byContent map[string]ObjectID
	objects   map[ObjectID]*Object
	next      ObjectID
}

// NewStore creates an empty object store. Ids start at 1; 0 is reserved as
// the null id.
func NewStore() *Store {
	return &Store{
		byContent: make(map[string]ObjectID),
		objects:   make(map[ObjectID]*Object),
		next:      1,
	}
}

// Intern adds an object to the store, returning the existing id if an
// object with identical content is already present. The store takes
// ownership of obj; callers must not mutate it afterwards.
func (s *Store) Intern(obj *Object) ObjectID {
	key := obj.contentKey()
	if id, ok := s.byContent[key]; ok {
		return id
	}
	id := s.next
	s.next++
	s.byContent[key] = id
	s.objects[id] = obj
	return id
}

// Len returns the number of distinct objects interned.
func (s *Store) Len() int {
	return len(s.objects)
}
