// Package gcdcodec implements the GCD wrapper: when every value in a
// column shares a common divisor greater than one, divide it out before
// delegating to an inner codec.
//
// Per the spec's pinned resolution of the GCD/linear-interpolation
// interaction, the divisor is applied first: the inner codec only ever
// sees the already-reduced column, so its own residual computation (if
// any) runs on reduced values.
//
// ref: original_source/fastfield_codecs/src/lib.rs declares gcd as a sibling
// module of bitpacked/linearinterpol/multilinearinterpol (only lib.rs itself
// was retrieved, not gcd.rs); this wrapper's divide-then-delegate shape is
// this package's own design over the fastfield.Codec contract lib.rs defines.
package gcdcodec

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/mewkiz/fastfield"
	"github.com/mewkiz/pkg/dbg"
)

// headerSize is gcd:u64 | min_before_div:u64.
const headerSize = 8 + 8

// headerBias is the small additive bias standing in for the fixed
// header's cost: the header is a constant handful of bytes regardless of
// N, so (unlike an inner codec's per-value bit width) it is modeled as a
// flat bias rather than one scaled by 1/(8N), matching how the threshold
// policy (spec.md §4.8) biases linearinterpol and multilinearinterpol.
const headerBias = 0.02

// Codec wraps Inner, dividing every value by their common GCD before
// Inner ever sees the column.
type Codec struct {
	Inner fastfield.Codec
}

// New returns a GCD wrapper around inner.
func New(inner fastfield.Codec) Codec {
	return Codec{Inner: inner}
}

var _ fastfield.Codec = Codec{}

func (Codec) Name() string          { return "gcd" }
func (Codec) ID() fastfield.CodecID { return fastfield.CodecGCD }

// gcd returns the greatest common divisor of a and b via the Euclidean
// algorithm.
func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// columnGCD returns the GCD of the raw values across the whole column,
// short-circuiting as soon as the running GCD reaches 1.
func columnGCD(values []uint64) uint64 {
	var g uint64
	for _, v := range values {
		g = gcd(g, v)
		if g == 1 {
			return 1
		}
	}
	return g
}

// IsApplicable requires at least two values and a common divisor of two
// or more.
func (c Codec) IsApplicable(values []uint64, stats fastfield.Stats) bool {
	if stats.NumVals < 2 {
		return false
	}
	return columnGCD(values) >= 2
}

// reduce divides every value by g, returning the reduced column and its own
// statistics. Dividing the raw values (rather than values offset by min)
// keeps the reduced column's own min/max simple multiples of stats' min/max,
// e.g. [6,12,18,24] with g=6 reduces to [1,2,3,4].
func reduce(values []uint64, g uint64) ([]uint64, fastfield.Stats) {
	reduced := make([]uint64, len(values))
	for i, v := range values {
		reduced[i] = v / g
	}
	return reduced, fastfield.ComputeStats(reduced)
}

// Estimate reduces the column and returns Inner's estimate on the reduced
// values, plus headerBias.
func (c Codec) Estimate(values []uint64, stats fastfield.Stats) float32 {
	if stats.NumVals < 2 {
		return float32(1 << 30)
	}
	g := columnGCD(values)
	if g < 2 {
		return float32(1 << 30)
	}
	reduced, reducedStats := reduce(values, g)
	return c.Inner.Estimate(reduced, reducedStats) + headerBias
}

// Serialize writes gcd:u64 | min_before_div:u64 | <inner codec body on the
// reduced column>. min_before_div is recorded for header completeness but
// is not part of reconstruction: dividing the raw values by g (rather than
// values offset by min) makes the division exact on its own.
func (c Codec) Serialize(w io.Writer, values []uint64, stats fastfield.Stats) error {
	g := columnGCD(values)
	dbg.Println("gcd: divisor =", g, "min_before_div =", stats.MinValue)

	if err := binary.Write(w, binary.LittleEndian, g); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, stats.MinValue); err != nil {
		return err
	}

	reduced, reducedStats := reduce(values, g)
	return c.Inner.Serialize(w, reduced, reducedStats)
}

// Open parses the GCD header and delegates the remainder of the body to
// Inner, wrapping its reader to multiply values back out.
func (c Codec) Open(body fastfield.OwnedBytes, stats fastfield.Stats) (fastfield.Reader, error) {
	data := body.Data()
	if len(data) < headerSize {
		return nil, fmt.Errorf("gcd: truncated body (%d bytes): %w", len(data), fastfield.ErrCorruptFormat)
	}
	g := binary.LittleEndian.Uint64(data[0:8])
	if g < 2 {
		return nil, fmt.Errorf("gcd: invalid divisor %d: %w", g, fastfield.ErrCorruptFormat)
	}

	reducedStats := fastfield.Stats{
		MinValue: stats.MinValue / g,
		MaxValue: stats.MaxValue / g,
		NumVals:  stats.NumVals,
	}

	innerReader, err := c.Inner.Open(body.SliceFrom(headerSize), reducedStats)
	if err != nil {
		return nil, err
	}
	return &reader{inner: innerReader, g: g, stats: stats}, nil
}

// reader multiplies Inner's decoded values back out by g.
type reader struct {
	inner fastfield.Reader
	g     uint64
	stats fastfield.Stats
}

var _ fastfield.Reader = (*reader)(nil)

func (r *reader) Get(ord uint64) uint64 {
	return r.inner.Get(ord) * r.g
}

func (r *reader) MinValue() uint64 { return r.stats.MinValue }
func (r *reader) MaxValue() uint64 { return r.stats.MaxValue }
func (r *reader) NumVals() uint64  { return r.stats.NumVals }
