// Package fastfield defines the codec contract shared by the fast-field
// compression schemes: bit-packed, linear-interpolation,
// multi-linear-interpolation and the GCD wrapper. Selection between codecs
// and the on-disk footer format live in the dynamic subpackage; this
// package only carries the vocabulary every codec is written against.
//
// ref: original_source/fastfield_codecs/src/lib.rs
package fastfield

import (
	"io"

	"github.com/mewkiz/fastfield/internal/ownedbytes"
)

// OwnedBytes is the byte buffer type handed to Codec.Open and owned by the
// resulting Reader for its entire lifetime.
type OwnedBytes = ownedbytes.Bytes

// CodecID is the stable one-byte identity persisted in a column's footer so
// that a reader can dispatch without external schema metadata.
type CodecID uint8

// Stable codec identities. Never renumber these; they are persisted.
const (
	CodecBitpacked           CodecID = 1
	CodecLinearInterpol      CodecID = 2
	CodecMultiLinearInterpol CodecID = 3
	CodecGCD                 CodecID = 4
)

// Codec is the contract every fast-field compression scheme implements:
// cheap applicability and size estimation, bulk serialization, and
// random-access reader construction.
type Codec interface {
	// Name is a human-readable identifier used in logging and debugging.
	Name() string
	// ID is the stable identity persisted in the footer.
	ID() CodecID
	// IsApplicable reports whether the codec can represent this column at
	// all. Must be O(1) or O(N) and side-effect free.
	IsApplicable(values []uint64, stats Stats) bool
	// Estimate returns the codec's predicted body size divided by the
	// uncompressed baseline (8*N bytes). Smaller is better. Must be O(N).
	// It is not allocation-free in every codec: the interpolation codecs
	// build a residual slice and the GCD wrapper a reduced copy of the
	// column.
	Estimate(values []uint64, stats Stats) float32
	// Serialize writes the codec body (never the footer) to w.
	Serialize(w io.Writer, values []uint64, stats Stats) error
	// Open consumes a serialized codec body and the column's footer
	// statistics and returns a random-access reader over it. Passing stats
	// explicitly (rather than re-deriving num_vals/min/max from the body)
	// keeps every codec body format free to omit fields the footer
	// already carries, such as bitpacked's count.
	Open(body OwnedBytes, stats Stats) (Reader, error)
}

// Reader is a random-access, read-only, concurrency-safe view over a single
// serialized column.
type Reader interface {
	// Get returns the value at ord. Ordinals outside 0..NumVals() have
	// unspecified value but never panic or read out of bounds.
	Get(ord uint64) uint64
	MinValue() uint64
	MaxValue() uint64
	NumVals() uint64
}
