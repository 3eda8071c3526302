package packing

import (
	"math"

	"github.com/matzehuels/structio/pkg/building"
)

// QuantScale is the number of quantization steps per bounds size.
const QuantScale = math.MaxInt16

// MinSize is the smallest axis size used for quantization. Axes on which
// every block shares a coordinate have size 0 and are clamped to MinSize.
const MinSize = 1e-6

// Bounds is an axis-aligned box accumulated from positions.
//
// The zero value is empty.
type Bounds struct {
	Min, Max building.Vec3
	n        int
}

// Add grows the box to contain p.
func (b *Bounds) Add(p building.Vec3) {
	if b.n == 0 {
		b.Min, b.Max = p, p
	} else {
		for i := range 3 {
			b.Min[i] = min(b.Min[i], p[i])
			b.Max[i] = max(b.Max[i], p[i])
		}
	}
	b.n++
}

// Empty reports whether no position has been added.
func (b *Bounds) Empty() bool { return b.n == 0 }

// CenterSize returns the box center and size. An empty box has both zero.
func (b *Bounds) CenterSize() (center, size building.Vec3) {
	if b.n == 0 {
		return center, size
	}
	for i := range 3 {
		center[i] = (b.Min[i] + b.Max[i]) * 0.5
		size[i] = b.Max[i] - b.Min[i]
	}
	return center, size
}

// Quantize maps p to signed 16-bit offsets from center, scaled by size.
func Quantize(p, center, size building.Vec3) [3]int16 {
	var q [3]int16
	for i := range 3 {
		v := float64(p[i]-center[i]) / clampSize(size[i]) * QuantScale
		q[i] = int16(math.Round(math.Max(math.MinInt16, math.Min(v, math.MaxInt16))))
	}
	return q
}

// Dequantize is the inverse of [Quantize].
func Dequantize(q [3]int16, center, size building.Vec3) building.Vec3 {
	var p building.Vec3
	for i := range 3 {
		p[i] = center[i] + float32(float64(q[i])*clampSize(size[i])/QuantScale)
	}
	return p
}

// Step returns the dequantized distance of one quantization unit per axis.
func Step(size building.Vec3) building.Vec3 {
	var s building.Vec3
	for i := range 3 {
		s[i] = float32(clampSize(size[i]) / QuantScale)
	}
	return s
}

func clampSize(s float32) float64 {
	if !(float64(s) >= MinSize) {
		return MinSize
	}
	return float64(s)
}
