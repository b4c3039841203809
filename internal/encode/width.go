package encode

import "github.com/ringmodel/wmverify/internal/model"

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// bitsNeeded returns ceil(log2(v+1)), the number of bits needed to
// represent v in an unsigned field.
func bitsNeeded(v int) uint {
	bits := uint(0)
	for (1 << bits) <= v {
		bits++
	}
	return bits
}

// computeWidth picks a bitvector width wide enough for every rank, id and
// value this trace can produce, per the headroom rule in the core spec's
// design notes (bits for |events| plus the largest |id| or |val|, plus two
// slack bits), with a
// floor of 8 so tiny demo traces still get comfortable headroom.
func computeWidth(trace *model.Trace) uint {
	maxAbs := 0
	events := trace.Events()
	for _, e := range events {
		if a := abs(e.ID); a > maxAbs {
			maxAbs = a
		}
		if a := abs(e.Val); a > maxAbs {
			maxAbs = a
		}
	}

	bound := len(events) + maxAbs
	bits := bitsNeeded(bound) + 2
	if bits < 8 {
		bits = 8
	}
	return bits
}
