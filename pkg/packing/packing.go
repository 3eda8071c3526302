// Package packing implements the lossy numeric transforms of the structure
// format: fixed-point angles, RGB565 colors, bit-packed booleans, root
// bounding boxes with 16-bit position quantization, and the range
// quantization used for custom block vectors.
//
// None of these transforms is exact. Each round trip is accurate to one
// quantization step, and repacking an unpacked value reproduces the same
// packed value.
package packing

import (
	"math"

	"github.com/matzehuels/structio/pkg/building"
)

// AngleStep is the size in degrees of one packed angle unit.
const AngleStep = 360.0 / math.MaxUint16

// PackAngle maps degrees onto [0, 65535]. The angle is wrapped into
// [0, 360) first; NaN and infinities pack to 0.
func PackAngle(deg float32) uint16 {
	a := math.Mod(float64(deg), 360)
	if a < 0 {
		a += 360
	}
	scaled := a * (math.MaxUint16 / 360.0)
	if math.IsNaN(scaled) || math.IsInf(scaled, 0) {
		return 0
	}
	return uint16(math.Round(math.Max(0, math.Min(scaled, math.MaxUint16))))
}

// UnpackAngle maps a packed angle back to degrees.
func UnpackAngle(v uint16) float32 {
	return float32(float64(v) * AngleStep)
}

// PackRotation packs the three Euler angles of r.
func PackRotation(r building.Vec3) [3]uint16 {
	return [3]uint16{PackAngle(r[0]), PackAngle(r[1]), PackAngle(r[2])}
}

// UnpackRotation reverses [PackRotation].
func UnpackRotation(p [3]uint16) building.Vec3 {
	return building.Vec3{UnpackAngle(p[0]), UnpackAngle(p[1]), UnpackAngle(p[2])}
}

// PackColor packs c into RGB565, keeping the high 5/6/5 bits of each channel.
func PackColor(c building.RGB) uint16 {
	return uint16(c[0]&0xF8)<<8 | uint16(c[1]&0xFC)<<3 | uint16(c[2])>>3
}

// UnpackColor expands an RGB565 word with zero-filled low bits.
func UnpackColor(v uint16) building.RGB {
	return building.RGB{
		uint8(v>>8) & 0xF8,
		uint8(v>>3) & 0xFC,
		uint8(v << 3),
	}
}

// PackBools packs flags eight per byte, first flag in the least significant bit.
func PackBools(flags []bool) []byte {
	out := make([]byte, (len(flags)+7)/8)
	for i, f := range flags {
		if f {
			out[i/8] |= 1 << (i % 8)
		}
	}
	return out
}

// UnpackBools returns the first count flags of p. Padding bits are ignored.
func UnpackBools(p []byte, count int) []bool {
	out := make([]bool, 0, count)
	for _, b := range p {
		for bit := 0; bit < 8 && len(out) < count; bit++ {
			out = append(out, b>>bit&1 != 0)
		}
	}
	return out
}

// PackedBoolsLen returns the number of bytes PackBools produces for count flags.
func PackedBoolsLen(count int) int {
	return (count + 7) / 8
}
