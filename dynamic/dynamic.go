// Package dynamic ties the concrete fast-field codecs together: it selects
// the cheapest applicable codec for a column, serializes it with a footer
// that lets a reader dispatch without external schema metadata, and parses
// that footer back into the right codec's Reader.
//
// Importing every codec package here (rather than in the fastfield root
// package) keeps the dependency graph acyclic: each codec package imports
// fastfield for the shared Codec/Reader vocabulary, and only this package
// imports both fastfield and the codecs — mirroring how lib.rs keeps the
// shared trait/struct definitions separate from per-codec modules.
//
// ref: original_source/fastfield_codecs/src/lib.rs declares dynamic as a
// sibling module alongside the codec modules (only lib.rs itself was
// retrieved, not dynamic.rs); the selection-by-estimate loop and
// footer/dispatch-by-codec-id scheme here are this package's own design
// over the FastFieldCodec contract and FastFieldStats type lib.rs defines.
package dynamic

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/mewkiz/fastfield"
	"github.com/mewkiz/fastfield/bitpacked"
	"github.com/mewkiz/fastfield/gcdcodec"
	"github.com/mewkiz/fastfield/internal/ownedbytes"
	"github.com/mewkiz/fastfield/linearinterpol"
	"github.com/mewkiz/fastfield/multilinearinterpol"
	"github.com/mewkiz/pkg/dbg"
	"github.com/mewkiz/pkg/errutil"
	"github.com/mewkiz/pkg/hashutil/crc8"
)

// footerStatsSize is min_value:u64 | max_value:u64 | num_vals:u64.
const footerStatsSize = 8 + 8 + 8

// footerTrailerSize is footer_checksum:u8 | codec_id:u8, the fixed-size tail
// appended after the stats block.
const footerTrailerSize = 1 + 1

// candidates lists every registered codec in the fixed enumeration order the
// selector evaluates and breaks ties by: bit-packing, linear-interpolation,
// multi-linear-interpolation, then GCD-wrapped bit-packing.
func candidates() []fastfield.Codec {
	return []fastfield.Codec{
		bitpacked.Codec{},
		linearinterpol.Codec{},
		multilinearinterpol.Codec{},
		gcdcodec.New(bitpacked.Codec{}),
	}
}

// codecByID maps a persisted codec_id back to the codec that can open it.
func codecByID(id fastfield.CodecID) (fastfield.Codec, error) {
	switch id {
	case fastfield.CodecBitpacked:
		return bitpacked.Codec{}, nil
	case fastfield.CodecLinearInterpol:
		return linearinterpol.Codec{}, nil
	case fastfield.CodecMultiLinearInterpol:
		return multilinearinterpol.Codec{}, nil
	case fastfield.CodecGCD:
		return gcdcodec.New(bitpacked.Codec{}), nil
	default:
		return nil, fmt.Errorf("dynamic: unknown codec id %d: %w", id, fastfield.ErrCorruptFormat)
	}
}

// Select computes the estimate of every applicable candidate in candidates()
// and returns the one with the smallest value, breaking ties by enumeration
// order. Bit-packing is always applicable, so Select always returns a codec;
// callers never see the "no applicable codec" case described in §7's
// safety-net contract.
func Select(values []uint64, stats fastfield.Stats) fastfield.Codec {
	var best fastfield.Codec
	var bestEstimate float32
	for _, c := range candidates() {
		if !c.IsApplicable(values, stats) {
			continue
		}
		estimate := c.Estimate(values, stats)
		if best == nil || estimate < bestEstimate {
			best = c
			bestEstimate = estimate
		}
	}
	return best
}

// SerializeColumn computes the column's statistics, selects the cheapest
// applicable codec, and writes `<codec body> <stats> <footer_checksum> <codec_id>`
// to w. The checksum covers the codec body and the stats block, so a
// truncated or bit-flipped read surfaces as CorruptFormat rather than a
// silently wrong value.
func SerializeColumn(values []uint64, w io.Writer) error {
	stats := fastfield.ComputeStats(values)
	codec := Select(values, stats)
	if codec == nil {
		return fmt.Errorf("dynamic: no applicable codec: %w", fastfield.ErrCorruptFormat)
	}
	dbg.Println("dynamic: selected codec =", codec.Name())

	h := crc8.NewATM()
	tw := io.MultiWriter(w, h)

	if err := codec.Serialize(tw, values, stats); err != nil {
		return errutil.Err(err)
	}

	statsBuf := make([]byte, footerStatsSize)
	binary.LittleEndian.PutUint64(statsBuf[0:8], stats.MinValue)
	binary.LittleEndian.PutUint64(statsBuf[8:16], stats.MaxValue)
	binary.LittleEndian.PutUint64(statsBuf[16:24], stats.NumVals)
	if _, err := tw.Write(statsBuf); err != nil {
		return errutil.Err(err)
	}

	if _, err := w.Write([]byte{h.Sum8(), byte(codec.ID())}); err != nil {
		return errutil.Err(err)
	}
	return nil
}

// OpenColumn parses the trailing footer of a serialized column, verifies its
// checksum, and dispatches to the matching codec's Open.
func OpenColumn(b fastfield.OwnedBytes) (fastfield.Reader, error) {
	data := b.Data()
	if len(data) < footerStatsSize+footerTrailerSize {
		return nil, fmt.Errorf("dynamic: truncated column (%d bytes): %w", len(data), fastfield.ErrCorruptFormat)
	}

	codecID := fastfield.CodecID(data[len(data)-1])
	wantChecksum := data[len(data)-2]
	bodyAndStats := data[:len(data)-footerTrailerSize]

	h := crc8.NewATM()
	if _, err := h.Write(bodyAndStats); err != nil {
		return nil, fmt.Errorf("dynamic: hashing column: %w", err)
	}
	if got := h.Sum8(); got != wantChecksum {
		return nil, fmt.Errorf("dynamic: checksum mismatch (want 0x%02X, got 0x%02X): %w", wantChecksum, got, fastfield.ErrCorruptFormat)
	}

	statsOff := len(bodyAndStats) - footerStatsSize
	statsBuf := bodyAndStats[statsOff:]
	stats := fastfield.Stats{
		MinValue: binary.LittleEndian.Uint64(statsBuf[0:8]),
		MaxValue: binary.LittleEndian.Uint64(statsBuf[8:16]),
		NumVals:  binary.LittleEndian.Uint64(statsBuf[16:24]),
	}

	codec, err := codecByID(codecID)
	if err != nil {
		return nil, err
	}
	body := ownedbytes.New(bodyAndStats[:statsOff])
	inner, err := codec.Open(body, stats)
	if err != nil {
		return nil, err
	}
	return &hashedReader{Reader: inner}, nil
}

// HashableReader is the reader type OpenColumn returns: every fast-field
// reader plus a cheap, cached equality check over its whole column.
type HashableReader interface {
	fastfield.Reader
	// ContentHash returns an xxhash-64 digest of every decoded value in
	// ordinal order, computed lazily on first call and cached thereafter.
	ContentHash() uint64
}

// hashedReader wraps a codec's reader to add ContentHash without requiring
// every codec package to carry its own hashing logic.
type hashedReader struct {
	fastfield.Reader

	once sync.Once
	hash uint64
}

var _ HashableReader = (*hashedReader)(nil)

func (r *hashedReader) ContentHash() uint64 {
	r.once.Do(func() {
		var buf [8]byte
		h := xxhash.New()
		for ord := uint64(0); ord < r.NumVals(); ord++ {
			binary.LittleEndian.PutUint64(buf[:], r.Get(ord))
			h.Write(buf[:])
		}
		r.hash = h.Sum64()
	})
	return r.hash
}

// SerializeColumnToBytes is a convenience wrapper around SerializeColumn for
// callers that want the serialized column as a standalone byte slice rather
// than writing through an io.Writer directly.
func SerializeColumnToBytes(values []uint64) ([]byte, error) {
	var buf bytes.Buffer
	if err := SerializeColumn(values, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
