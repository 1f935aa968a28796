package linearinterpol_test

import (
	"bytes"
	"testing"

	"github.com/mewkiz/fastfield"
	"github.com/mewkiz/fastfield/internal/ownedbytes"
	"github.com/mewkiz/fastfield/linearinterpol"
)

func apColumn(first, last int) []uint64 {
	values := make([]uint64, 0, last-first+1)
	for v := first; v <= last; v++ {
		values = append(values, uint64(v))
	}
	return values
}

var roundTripGolden = [][]uint64{
	apColumn(10, 20),                 // i=0: scenario 1
	{5, 6, 7, 8, 9, 10, 99, 100},     // i=1: scenario 2
	apColumn(10, 20000),              // i=2: estimate monotonicity column
}

func TestRoundTrip(t *testing.T) {
	for i, values := range roundTripGolden {
		stats := fastfield.ComputeStats(values)
		var buf bytes.Buffer
		if err := (linearinterpol.Codec{}).Serialize(&buf, values, stats); err != nil {
			t.Fatalf("i=%d: Serialize: %v", i, err)
		}
		reader, err := (linearinterpol.Codec{}).Open(ownedbytes.New(buf.Bytes()), stats)
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

func TestScenarioOneGetFive(t *testing.T) {
	values := apColumn(10, 20)
	stats := fastfield.ComputeStats(values)
	var buf bytes.Buffer
	if err := (linearinterpol.Codec{}).Serialize(&buf, values, stats); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if got := buf.Len(); got > 32 {
		t.Errorf("body size = %d, want <= 32", got)
	}
	reader, err := (linearinterpol.Codec{}).Open(ownedbytes.New(buf.Bytes()), stats)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := reader.Get(5); got != 15 {
		t.Errorf("Get(5) = %d, want 15", got)
	}
}

func TestIsApplicableRequiresTwoValues(t *testing.T) {
	cases := []struct {
		values []uint64
		want   bool
	}{
		{values: nil, want: false},
		{values: []uint64{10}, want: false},
		{values: []uint64{10, 20}, want: true},
	}
	for i, c := range cases {
		stats := fastfield.ComputeStats(c.values)
		if got := (linearinterpol.Codec{}).IsApplicable(c.values, stats); got != c.want {
			t.Errorf("i=%d: IsApplicable(%v) = %v, want %v", i, c.values, got, c.want)
		}
	}
}

func TestEstimateExactLineIsNearZero(t *testing.T) {
	values := apColumn(10, 20000)
	stats := fastfield.ComputeStats(values)
	got := (linearinterpol.Codec{}).Estimate(values, stats)
	if got > 0.01 {
		t.Errorf("Estimate(exact AP) = %v, want <= 0.01", got)
	}
}
