package packing

import (
	"math"

	"github.com/matzehuels/structio/pkg/building"
)

// VectorRange returns the integer range [lo, hi] enclosing every component
// of vs: the floor of the smallest and the ceiling of the largest. The range
// is widened to at least one unit so it can be divided by. ok is false when
// the range does not fit in signed bytes or a component is not finite.
func VectorRange(vs []building.Vec3) (lo, hi int8, ok bool) {
	if len(vs) == 0 {
		return 0, 1, true
	}
	mn, mx := math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		for _, c := range v {
			f := float64(c)
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return 0, 0, false
			}
			mn = math.Min(mn, f)
			mx = math.Max(mx, f)
		}
	}
	l, h := math.Floor(mn), math.Ceil(mx)
	if l < math.MinInt8 || h > math.MaxInt8 {
		return 0, 0, false
	}
	if l == h {
		if h < math.MaxInt8 {
			h++
		} else {
			l--
		}
	}
	return int8(l), int8(h), true
}

// PackVectorComponent maps x in [lo, hi] to a 16-bit fraction of the range.
func PackVectorComponent(x float32, lo, hi int8) uint16 {
	f := (float64(x) - float64(lo)) / (float64(hi) - float64(lo)) * math.MaxUint16
	return uint16(math.Round(math.Max(0, math.Min(f, math.MaxUint16))))
}

// UnpackVectorComponent is the inverse of [PackVectorComponent].
func UnpackVectorComponent(v uint16, lo, hi int8) float32 {
	return float32(float64(lo) + float64(v)/math.MaxUint16*(float64(hi)-float64(lo)))
}
