package pack

// Builder is implemented by anything that can be serialized as a font
// table. WriteTo emits the table's fields into the writer, declaring
// subtable offsets as it goes; subtables are serialized immediately and
// deduplicated by content.
type Builder interface {
	WriteTo(w *Writer)
}

// KindDeclarer is optionally implemented by builders whose tables need
// post-compilation processing (splitting, promotion). Tables without a
// declared kind are KindUnknown and are never split or promoted.
type KindDeclarer interface {
	PackKind() Kind
}

// Writer manages a stack of tables being serialized. Tables are processed
// as they are encountered: writing an offset serializes the subtable right
// away and records only the position of the offset field, which is patched
// when the finished graph is packed.
type Writer struct {
	store  *Store
	stack  []*Object
	adjust uint32 // subtracted from offsets written while non-zero
}

// NewWriter creates a writer with a fresh object store.
func NewWriter() *Writer {
	return &Writer{
		store: NewStore(),
		stack: []*Object{NewObject(KindUnknown)},
	}
}

// MakeGraph serializes root and everything reachable from it, returning
// the packing graph. This is the common entry point for compiling one
// top-level table.
func MakeGraph(root Builder) *Graph {
	w := NewWriter()
	id := w.AddTable(root)
	return FromStore(w.store, id)
}

// AddTable serializes a table and interns it, returning its id.
func (w *Writer) AddTable(table Builder) ObjectID {
	kind := KindUnknown
	if kd, ok := table.(KindDeclarer); ok {
		kind = kd.PackKind()
	}
	w.stack = append(w.stack, NewObject(kind))
	table.WriteTo(w)
	top := w.top()
	w.stack = w.stack[:len(w.stack)-1]
	return w.store.Intern(top)
}

func (w *Writer) top() *Object {
	return w.stack[len(w.stack)-1]
}

// WriteOffset serializes child immediately and records an offset field of
// the given width at the current position of the table being written.
func (w *Writer) WriteOffset(child Builder, width OffsetLen) {
	id := w.AddTable(child)
	w.top().AddOffset(id, width, w.adjust)
}

// WriteOffsetTo records an offset field pointing at an already-interned
// object.
func (w *Writer) WriteOffsetTo(id ObjectID, width OffsetLen) {
	w.top().AddOffset(id, width, w.adjust)
}

// WriteNullOffset records an offset field that stays zero in the output.
func (w *Writer) WriteNullOffset(width OffsetLen) {
	w.top().AddNullOffset(width)
}

// AdjustOffsets calls f with all written offsets adjusted by adjust.
// Used for the rare offsets that are measured from a position other than
// the start of their table.
func (w *Writer) AdjustOffsets(adjust uint32, f func(w *Writer)) {
	w.adjust = adjust
	f(w)
	w.adjust = 0
}

// WriteU8 writes one byte.
func (w *Writer) WriteU8(v uint8) {
	w.top().WriteU8(v)
}

// WriteU16 writes a big-endian uint16.
func (w *Writer) WriteU16(v uint16) {
	w.top().WriteU16(v)
}

// WriteU24 writes the low 24 bits of v, big-endian.
func (w *Writer) WriteU24(v uint32) {
	w.top().WriteU24(v)
}

// WriteU32 writes a big-endian uint32.
func (w *Writer) WriteU32(v uint32) {
	w.top().WriteU32(v)
}

// WriteBytes writes raw bytes; the caller is responsible for ensuring they
// are in big-endian order.
func (w *Writer) WriteBytes(b []byte) {
	w.top().WriteBytes(b)
}

// PadToEven adds a padding byte if necessary to make the table length
// even. Needed for tables that require 2-byte aligned offsets.
func (w *Writer) PadToEven() {
	if len(w.top().Bytes)%2 != 0 {
		w.WriteU8(0)
	}
}
