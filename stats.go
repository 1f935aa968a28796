package fastfield

// Stats are the cheap column statistics used both for codec selection and
// for the serialized footer.
//
// ref: original_source/fastfield_codecs/src/lib.rs (FastFieldStats)
type Stats struct {
	MinValue uint64
	MaxValue uint64
	NumVals  uint64
}

// ComputeStats computes Stats over values in a single linear scan. The zero
// Stats is returned for an empty column.
func ComputeStats(values []uint64) Stats {
	if len(values) == 0 {
		return Stats{}
	}
	stats := Stats{
		MinValue: values[0],
		MaxValue: values[0],
		NumVals:  1,
	}
	for _, v := range values[1:] {
		stats.Record(v)
	}
	return stats
}

// Record extends stats by one additional value.
func (s *Stats) Record(v uint64) {
	s.NumVals++
	if v < s.MinValue {
		s.MinValue = v
	}
	if v > s.MaxValue {
		s.MaxValue = v
	}
}
