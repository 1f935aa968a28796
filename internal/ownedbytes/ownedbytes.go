// Package ownedbytes provides an immutable, cheaply sub-sliceable byte
// buffer for fast-field readers to hold onto for their entire lifetime.
//
// Grounded on the buffer-ownership idea of mewkiz/flac's
// internal/bufseekio.ReadSeeker, simplified: a fast-field reader never seeks
// an underlying stream, it only ever indexes into bytes it already has in
// memory, so there is no read position or refill logic to carry over.
package ownedbytes

// Bytes is an owned, read-only view of a byte slice. The zero value is an
// empty view. Bytes is safe to share across goroutines: nothing in this
// package ever mutates the underlying array after construction.
type Bytes struct {
	buf []byte
}

// New wraps buf, taking ownership of it. Callers must not mutate buf after
// passing it to New.
func New(buf []byte) Bytes {
	return Bytes{buf: buf}
}

// Len returns the number of bytes in the view.
func (b Bytes) Len() int {
	return len(b.buf)
}

// Data returns the underlying bytes. Callers must treat the result as
// read-only.
func (b Bytes) Data() []byte {
	return b.buf
}

// Slice returns the sub-view [from, to), sharing the same backing array.
func (b Bytes) Slice(from, to int) Bytes {
	return Bytes{buf: b.buf[from:to]}
}

// SliceFrom returns the sub-view [from, Len()).
func (b Bytes) SliceFrom(from int) Bytes {
	return Bytes{buf: b.buf[from:]}
}

// SliceTo returns the sub-view [0, to).
func (b Bytes) SliceTo(to int) Bytes {
	return Bytes{buf: b.buf[:to]}
}
