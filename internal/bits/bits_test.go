package bits_test

import (
	"bytes"
	"testing"

	"github.com/icza/bitio"
	ibits "github.com/mewkiz/fastfield/internal/bits"
)

var widthGolden = []struct {
	delta uint64
	want  uint8
}{
	{delta: 0, want: 0},    // i=0: min==max
	{delta: 1, want: 1},    // i=1
	{delta: 2, want: 2},    // i=2
	{delta: 3, want: 2},    // i=3
	{delta: 255, want: 8},  // i=4
	{delta: 256, want: 9},  // i=5
	{delta: ^uint64(0), want: 64}, // i=6: maximum possible delta
}

func TestWidth(t *testing.T) {
	for i, g := range widthGolden {
		got := ibits.Width(g.delta)
		if got != g.want {
			t.Errorf("i=%d: Width(%d) = %d, want %d", i, g.delta, got, g.want)
		}
	}
}

// TestWriteFixedThenGetBitsRoundTrip exercises the write side (WriteFixed,
// forward-only via bitio.Writer) against the read side (GetBits, random
// access by absolute bit offset) the way every codec composes them: Serialize
// packs fields back-to-back with WriteFixed, Get reaches into the packed
// stream with GetBits.
func TestWriteFixedThenGetBitsRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 7, 42, 1000, 0xFFFF}
	width := uint8(16)

	var buf bytes.Buffer
	bw := bitio.NewWriter(&buf)
	for _, v := range values {
		if err := ibits.WriteFixed(bw, v, width); err != nil {
			t.Fatalf("WriteFixed(%d): %v", v, err)
		}
	}
	if err := bw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data := buf.Bytes()
	for i, want := range values {
		got := ibits.GetBits(data, uint64(i)*uint64(width), width)
		if got != want {
			t.Errorf("i=%d: GetBits = %d, want %d", i, got, want)
		}
	}
}

func TestGetBitsZeroWidth(t *testing.T) {
	if got := ibits.GetBits([]byte{0xFF}, 3, 0); got != 0 {
		t.Errorf("GetBits(width=0) = %d, want 0", got)
	}
}
