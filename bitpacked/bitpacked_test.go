package bitpacked_test

import (
	"bytes"
	"testing"

	"github.com/mewkiz/fastfield"
	"github.com/mewkiz/fastfield/bitpacked"
	"github.com/mewkiz/fastfield/internal/ownedbytes"
)

var roundTripGolden = [][]uint64{
	{},                                 // i=0: empty column
	{10},                               // i=1: single value, min==max
	{5, 6, 7, 8, 9, 10, 99, 100},       // i=2: scenario 2
	{5, 50, 3, 13, 1, 1000, 35},        // i=3: scenario 3
	{42, 42, 42, 42},                   // i=4: min==max, multiple values
}

func TestRoundTrip(t *testing.T) {
	for i, values := range roundTripGolden {
		stats := fastfield.ComputeStats(values)
		var buf bytes.Buffer
		if err := (bitpacked.Codec{}).Serialize(&buf, values, stats); err != nil {
			t.Fatalf("i=%d: Serialize: %v", i, err)
		}
		reader, err := (bitpacked.Codec{}).Open(ownedbytes.New(buf.Bytes()), stats)
		if err != nil {
			t.Fatalf("i=%d: Open: %v", i, err)
		}
		if reader.NumVals() != stats.NumVals {
			t.Errorf("i=%d: NumVals = %d, want %d", i, reader.NumVals(), stats.NumVals)
		}
		for ord, want := range values {
			if got := reader.Get(uint64(ord)); got != want {
				t.Errorf("i=%d: Get(%d) = %d, want %d", i, ord, got, want)
			}
		}
	}
}

func TestSingleValueBodyIsHeaderOnly(t *testing.T) {
	values := []uint64{10}
	stats := fastfield.ComputeStats(values)
	var buf bytes.Buffer
	if err := (bitpacked.Codec{}).Serialize(&buf, values, stats); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	// min:u64 + bit_width:u8, no packed bits since bit_width == 0.
	if want := 9; buf.Len() != want {
		t.Errorf("body size = %d, want %d", buf.Len(), want)
	}
}

func TestIsApplicableAlwaysTrue(t *testing.T) {
	cases := [][]uint64{{}, {0}, {1, 2, 3}}
	for i, values := range cases {
		stats := fastfield.ComputeStats(values)
		if !(bitpacked.Codec{}).IsApplicable(values, stats) {
			t.Errorf("i=%d: IsApplicable(%v) = false, want true", i, values)
		}
	}
}

func TestEstimateMinMax(t *testing.T) {
	values := []uint64{42, 42, 42}
	stats := fastfield.ComputeStats(values)
	if got := (bitpacked.Codec{}).Estimate(values, stats); got != 0 {
		t.Errorf("Estimate(min==max) = %v, want 0", got)
	}
}
