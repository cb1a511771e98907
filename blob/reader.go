package blob

import (
	"github.com/grease-xmr/aztec-packages-sub005/fields"
)

// FieldReader is a forward-only cursor over a flat field sequence. Decoders
// share one reader so that nested records consume exactly the fields they
// declared and nothing more.
type FieldReader struct {
	fields []fields.Field
	pos    int
}

// NewFieldReader returns a reader positioned at the start of fs. The reader
// does not copy the slice.
func NewFieldReader(fs []fields.Field) *FieldReader {
	return &FieldReader{fields: fs}
}

// Pos returns the number of fields consumed so far.
func (r *FieldReader) Pos() int {
	return r.pos
}

// Remaining returns the number of fields left to read.
func (r *FieldReader) Remaining() int {
	return len(r.fields) - r.pos
}

// Next consumes and returns one field, or a DeserializationError when the
// input is exhausted.
func (r *FieldReader) Next() (fields.Field, error) {
	if r.pos >= len(r.fields) {
		var zero fields.Field
		return zero, deserErr("field count", r.pos+1, len(r.fields))
	}
	f := r.fields[r.pos]
	r.pos++
	return f, nil
}

// Peek returns the next field without consuming it. The second return is
// false when the input is exhausted.
func (r *FieldReader) Peek() (fields.Field, bool) {
	if r.pos >= len(r.fields) {
		var zero fields.Field
		return zero, false
	}
	return r.fields[r.pos], true
}

// Take consumes n fields and returns them as a copy. Taking zero fields
// returns nil.
func (r *FieldReader) Take(n int) ([]fields.Field, error) {
	if n == 0 {
		return nil, nil
	}
	if r.Remaining() < n {
		return nil, deserErr("field count", r.pos+n, len(r.fields))
	}
	out := make([]fields.Field, n)
	copy(out, r.fields[r.pos:r.pos+n])
	r.pos += n
	return out, nil
}

// NextUint64 consumes one field and interprets it as a 64-bit unsigned
// integer, rejecting values outside that range.
func (r *FieldReader) NextUint64(what string) (uint64, error) {
	f, err := r.Next()
	if err != nil {
		return 0, err
	}
	v := fields.ToUint256(f)
	if !v.IsUint64() {
		return 0, deserErr(what, 8, fields.Bytes)
	}
	return v.Uint64(), nil
}
