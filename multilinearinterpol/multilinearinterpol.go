// Package multilinearinterpol implements the fast-field
// multi-linear-interpolation codec: the column is partitioned into
// fixed-size chunks and a separate line is fit through each chunk's first
// and last value.
//
// ref: original_source/fastfield_codecs/src/lib.rs's FastFieldCodec trait
// contract (is_applicable/estimate/serialize/open_from_bytes); per-chunk
// framing and random access over packed chunks are grounded on the
// teacher's own per-frame/per-subframe decoding structure.
package multilinearinterpol

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/icza/bitio"
	"github.com/mewkiz/fastfield"
	ibits "github.com/mewkiz/fastfield/internal/bits"
	"github.com/mewkiz/pkg/dbg"
)

// Chunk is the number of ordinals sharing one interpolation model.
const Chunk = 512

// epsilonThreshold discourages picking this codec when the plain linear
// codec is already competitive (spec.md §4.5, §4.8).
const epsilonThreshold = 0.10

// chunkHeaderSize is v_first:u64 | v_last:u64 | residual_min:i64 |
// residual_bit_width:u8.
const chunkHeaderSize = 8 + 8 + 8 + 1

// Codec is the multi-linear-interpolation fast-field codec.
type Codec struct{}

var _ fastfield.Codec = Codec{}

func (Codec) Name() string          { return "multilinearinterpol" }
func (Codec) ID() fastfield.CodecID { return fastfield.CodecMultiLinearInterpol }

// IsApplicable requires at least two values, same as linearinterpol; a
// column shorter than Chunk simply degenerates to a single chunk (the
// chunk_count field records this explicitly, see §9 of spec.md).
func (Codec) IsApplicable(values []uint64, stats fastfield.Stats) bool {
	return stats.NumVals >= 2
}

// chunkBounds returns the [start, end) ordinal range of chunk c out of
// chunkCount chunks over a column of length n.
func chunkBounds(c, chunkCount int, n uint64) (start, end uint64) {
	start = uint64(c) * Chunk
	end = start + Chunk
	if c == chunkCount-1 || end > n {
		end = n
	}
	return start, end
}

func numChunks(n uint64) int {
	return int((n + Chunk - 1) / Chunk)
}

// chunkModel fits the line through values[start] and values[end-1] and
// returns the per-ordinal residuals plus their observed min/max.
func chunkModel(values []uint64, start, end uint64) (rs []int64, rMin, rMax int64) {
	n := end - start
	first := int64(values[start])
	last := int64(values[end-1])
	rs = make([]int64, n)
	for i := uint64(0); i < n; i++ {
		model := first
		if n > 1 {
			slope := float64(last-first) / float64(n-1)
			model = first + int64(slope*float64(i))
		}
		r := int64(values[start+i]) - model
		rs[i] = r
		if i == 0 || r < rMin {
			rMin = r
		}
		if i == 0 || r > rMax {
			rMax = r
		}
	}
	return rs, rMin, rMax
}

// Estimate aggregates the per-chunk residual bit widths and header
// overhead, biased by epsilonThreshold.
func (Codec) Estimate(values []uint64, stats fastfield.Stats) float32 {
	if stats.NumVals < 2 {
		return float32(1 << 30)
	}
	n := stats.NumVals
	chunkCount := numChunks(n)
	var totalBits uint64
	for c := 0; c < chunkCount; c++ {
		start, end := chunkBounds(c, chunkCount, n)
		_, rMin, rMax := chunkModel(values, start, end)
		width := ibits.Width(uint64(rMax - rMin))
		totalBits += (end - start) * uint64(width)
	}
	headerBits := uint64(chunkCount) * chunkHeaderSize * 8
	baseline := float32(n * 64)
	return float32(totalBits+headerBits)/baseline + epsilonThreshold
}

// Serialize writes chunk_count | chunk headers[] | packed residuals, each
// chunk's packed residuals zero-padded to the next byte boundary so a
// reader can locate any chunk's residual stream in O(1).
func (c Codec) Serialize(w io.Writer, values []uint64, stats fastfield.Stats) error {
	n := uint64(len(values))
	chunkCount := numChunks(n)
	dbg.Println("multilinearinterpol: chunk_count =", chunkCount)

	if err := binary.Write(w, binary.LittleEndian, uint64(chunkCount)); err != nil {
		return err
	}

	type chunkInfo struct {
		rs         []int64
		rMin, rMax int64
		width      uint8
	}
	chunks := make([]chunkInfo, chunkCount)
	for i := 0; i < chunkCount; i++ {
		start, end := chunkBounds(i, chunkCount, n)
		rs, rMin, rMax := chunkModel(values, start, end)
		width := ibits.Width(uint64(rMax - rMin))
		chunks[i] = chunkInfo{rs: rs, rMin: rMin, rMax: rMax, width: width}

		if err := binary.Write(w, binary.LittleEndian, values[start]); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, values[end-1]); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, rMin); err != nil {
			return err
		}
		if _, err := w.Write([]byte{width}); err != nil {
			return err
		}
	}

	bw := bitio.NewWriter(w)
	var bitPos uint64
	for _, ch := range chunks {
		for _, r := range ch.rs {
			if err := ibits.WriteFixed(bw, uint64(r-ch.rMin), ch.width); err != nil {
				return err
			}
			bitPos += uint64(ch.width)
		}
		if pad := uint8((8 - bitPos%8) % 8); pad > 0 {
			if err := bw.WriteBits(0, pad); err != nil {
				return err
			}
			bitPos += uint64(pad)
		}
	}
	return bw.Close()
}

// Open parses a multi-linear-interpolation body and returns a
// random-access reader. Per-chunk byte offsets into the residual area are
// precomputed once here so Get(ord) stays O(1).
func (Codec) Open(body fastfield.OwnedBytes, stats fastfield.Stats) (fastfield.Reader, error) {
	data := body.Data()
	if len(data) < 8 {
		return nil, fmt.Errorf("multilinearinterpol: truncated body: %w", fastfield.ErrCorruptFormat)
	}
	chunkCount := int(binary.LittleEndian.Uint64(data[:8]))
	if chunkCount < 1 {
		return nil, fmt.Errorf("multilinearinterpol: invalid chunk count %d: %w", chunkCount, fastfield.ErrCorruptFormat)
	}
	if want := numChunks(stats.NumVals); chunkCount != want {
		return nil, fmt.Errorf("multilinearinterpol: chunk count %d does not match %d values (want %d): %w", chunkCount, stats.NumVals, want, fastfield.ErrCorruptFormat)
	}
	off := 8
	headers := make([]chunkHeader, chunkCount)
	for i := 0; i < chunkCount; i++ {
		if len(data) < off+chunkHeaderSize {
			return nil, fmt.Errorf("multilinearinterpol: truncated chunk header %d: %w", i, fastfield.ErrCorruptFormat)
		}
		first := int64(binary.LittleEndian.Uint64(data[off : off+8]))
		last := int64(binary.LittleEndian.Uint64(data[off+8 : off+16]))
		rMin := int64(binary.LittleEndian.Uint64(data[off+16 : off+24]))
		width := data[off+24]
		if width > 64 {
			return nil, fmt.Errorf("multilinearinterpol: invalid residual bit width %d: %w", width, fastfield.ErrCorruptFormat)
		}
		headers[i] = chunkHeader{first: first, last: last, rMin: rMin, width: width}
		off += chunkHeaderSize
	}

	residuals := data[off:]
	offsets := make([]uint64, chunkCount+1)
	n := stats.NumVals
	var byteOff uint64
	for i := 0; i < chunkCount; i++ {
		start, end := chunkBounds(i, chunkCount, n)
		rows := end - start
		bits := rows * uint64(headers[i].width)
		byteOff += (bits + 7) / 8
		offsets[i+1] = byteOff
	}
	if uint64(len(residuals)) < byteOff {
		return nil, fmt.Errorf("multilinearinterpol: truncated residuals (%d bytes, want %d): %w", len(residuals), byteOff, fastfield.ErrCorruptFormat)
	}

	return &reader{
		residuals: residuals,
		headers:   headers,
		offsets:   offsets,
		n:         n,
		stats:     stats,
	}, nil
}

type chunkHeader struct {
	first, last int64
	rMin        int64
	width       uint8
}

type reader struct {
	residuals []byte
	headers   []chunkHeader
	offsets   []uint64
	n         uint64
	stats     fastfield.Stats
}

var _ fastfield.Reader = (*reader)(nil)

// Get locates ord's chunk, reconstructs that chunk's line, and adds back
// the unpacked residual.
func (r *reader) Get(ord uint64) uint64 {
	chunk := int(ord / Chunk)
	if chunk >= len(r.headers) {
		return 0
	}
	i := ord % Chunk
	h := r.headers[chunk]

	start, end := chunkBounds(chunk, len(r.headers), r.n)
	rows := end - start
	model := h.first
	if rows > 1 {
		slope := float64(h.last-h.first) / float64(rows-1)
		model = h.first + int64(slope*float64(i))
	}

	chunkData := r.residuals[r.offsets[chunk]:r.offsets[chunk+1]]
	bits := ibits.GetBits(chunkData, i*uint64(h.width), h.width)
	return uint64(model + h.rMin + int64(bits))
}

func (r *reader) MinValue() uint64 { return r.stats.MinValue }
func (r *reader) MaxValue() uint64 { return r.stats.MaxValue }
func (r *reader) NumVals() uint64  { return r.stats.NumVals }
