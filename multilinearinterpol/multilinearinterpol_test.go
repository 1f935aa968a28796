package multilinearinterpol_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/mewkiz/fastfield"
	"github.com/mewkiz/fastfield/internal/ownedbytes"
	"github.com/mewkiz/fastfield/multilinearinterpol"
)

func apColumn(first, last int) []uint64 {
	values := make([]uint64, 0, last-first+1)
	for v := first; v <= last; v++ {
		values = append(values, uint64(v))
	}
	return values
}

// noisyChunkColumn produces a column spanning several chunks whose values
// wobble locally but trend upward overall, so per-chunk residual widths stay
// small while a single global line would not fit well.
func noisyChunkColumn(chunks int) []uint64 {
	values := make([]uint64, 0, chunks*multilinearinterpol.Chunk)
	for c := 0; c < chunks; c++ {
		base := uint64(c) * 1_000_000
		for i := 0; i < multilinearinterpol.Chunk; i++ {
			v := base + uint64(i)*10
			if i%7 == 0 {
				v += 3
			}
			values = append(values, v)
		}
	}
	return values
}

var roundTripGolden = [][]uint64{
	apColumn(10, 20),           // i=0: shorter than one chunk, degenerates to a single chunk
	noisyChunkColumn(1),        // i=1: exactly one full chunk
	noisyChunkColumn(3),        // i=2: multiple chunks, last one full
	append(noisyChunkColumn(2), apColumn(1, 100)...), // i=3: multiple chunks, last one partial
}

func TestRoundTrip(t *testing.T) {
	for i, values := range roundTripGolden {
		stats := fastfield.ComputeStats(values)
		var buf bytes.Buffer
		if err := (multilinearinterpol.Codec{}).Serialize(&buf, values, stats); err != nil {
			t.Fatalf("i=%d: Serialize: %v", i, err)
		}
		reader, err := (multilinearinterpol.Codec{}).Open(ownedbytes.New(buf.Bytes()), stats)
		if err != nil {
			t.Fatalf("i=%d: Open: %v", i, err)
		}
		for ord, want := range values {
			if got := reader.Get(uint64(ord)); got != want {
				t.Errorf("i=%d: Get(%d) = %d, want %d", i, ord, got, want)
			}
		}
	}
}

func TestChunkCountDegeneratesToOne(t *testing.T) {
	values := apColumn(10, 20)
	stats := fastfield.ComputeStats(values)
	var buf bytes.Buffer
	if err := (multilinearinterpol.Codec{}).Serialize(&buf, values, stats); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	// chunk_count:u64 is the first field of the body.
	if got := binary.LittleEndian.Uint64(buf.Bytes()[:8]); got != 1 {
		t.Errorf("chunk_count = %d, want 1", got)
	}
	reader, err := (multilinearinterpol.Codec{}).Open(ownedbytes.New(buf.Bytes()), stats)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for ord, want := range values {
		if got := reader.Get(uint64(ord)); got != want {
			t.Errorf("Get(%d) = %d, want %d", ord, got, want)
		}
	}
}
