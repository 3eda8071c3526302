package catalog

import (
	"testing"

	"github.com/matzehuels/structio/pkg/building"
	"github.com/matzehuels/structio/pkg/packing"
	"github.com/matzehuels/structio/pkg/wire"
)

func identity(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

func TestRotationCatalogSharedRotations(t *testing.T) {
	blocks := make([]building.Block, 1000)
	for i := range blocks {
		blocks[i].Rotation = building.Vec3{float32(i%10) * 10, 0, 0}
	}

	p := New(blocks, identity(len(blocks)))
	if !p.RotationLookup {
		t.Fatal("RotationLookup = false, want true for 10 distinct rotations")
	}
	if len(p.Rotations) != 10 {
		t.Errorf("distinct rotations = %d, want 10", len(p.Rotations))
	}
	if w := RotationWidth(len(p.Rotations)); w != wire.U8 {
		t.Errorf("RotationWidth = %v, want u8", w)
	}
	for i, s := range p.RotationSlots {
		if p.Rotations[s] != packing.PackRotation(blocks[i].Rotation) {
			t.Fatalf("block %d: slot %d holds %v", i, s, p.Rotations[s])
		}
	}
}

func TestRotationCatalogUniqueRotations(t *testing.T) {
	blocks := make([]building.Block, 1000)
	for i := range blocks {
		blocks[i].Rotation = building.Vec3{float32(i) * 0.3, 0, 0}
	}

	p := New(blocks, identity(len(blocks)))
	if p.RotationLookup {
		t.Error("RotationLookup = true, want false when every rotation is unique")
	}
	if len(p.Rotations) != 1000 {
		t.Errorf("distinct rotations = %d, want 1000", len(p.Rotations))
	}
}

func TestRotationWorthwhile(t *testing.T) {
	tests := []struct {
		name             string
		blocks, distinct int
		want             bool
	}{
		{"empty", 0, 0, false},
		{"small at threshold", 12, 10, false},
		{"small above threshold", 13, 10, true},
		{"large between thresholds", 400, 300, false},
		{"large above threshold", 460, 300, true},
		{"last byte-indexed count", 360, 255, true},
		{"first word-indexed count", 360, 256, false},
		{"too many distinct", 200000, MaxRotations, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RotationWorthwhile(tt.blocks, tt.distinct); got != tt.want {
				t.Errorf("RotationWorthwhile(%d, %d) = %v, want %v", tt.blocks, tt.distinct, got, tt.want)
			}
		})
	}
	if RotationWidth(255) != wire.U8 || RotationWidth(256) != wire.U16 {
		t.Error("small threshold no longer matches the byte index width")
	}
}

func TestColorCatalog(t *testing.T) {
	red := building.RGB{255, 0, 0}
	blue := building.RGB{0, 0, 255}
	blocks := []building.Block{
		{Color: &red}, {}, {Color: &red}, {Color: &blue}, {Color: &red}, {Color: &red}, {Color: &blue},
	}

	p := New(blocks, identity(len(blocks)))
	if !p.ColorLookup {
		t.Fatal("ColorLookup = false, want true (5 colored / 2 distinct)")
	}
	want := []int{0, NoSlot, 0, 1, 0, 0, 1}
	for i, s := range p.ColorSlots {
		if s != want[i] {
			t.Errorf("block %d: slot %d, want %d", i, s, want[i])
		}
	}
	if p.Colors[1] != packing.PackColor(blue) {
		t.Errorf("Colors[1] = %#04x, want blue", p.Colors[1])
	}
}

func TestColorCatalogCapsCollection(t *testing.T) {
	blocks := make([]building.Block, 600)
	for i := range blocks {
		c := building.RGB{uint8(i%32) << 3, uint8(i/32) << 2, 0}
		blocks[i].Color = &c
	}

	p := New(blocks, identity(len(blocks)))
	if len(p.Colors) != MaxColors {
		t.Errorf("collected %d colors, want cap %d", len(p.Colors), MaxColors)
	}
	if p.ColorLookup {
		t.Error("ColorLookup = true for a full catalog")
	}
	if p.ColorSlots[599] != NoSlot {
		t.Errorf("block past the cap got slot %d", p.ColorSlots[599])
	}
}

func TestPlanFollowsOrder(t *testing.T) {
	blocks := []building.Block{
		{Rotation: building.Vec3{90, 0, 0}},
		{Rotation: building.Vec3{0, 0, 0}},
	}
	p := New(blocks, []int{1, 0})
	if p.Rotations[0] != packing.PackRotation(blocks[1].Rotation) {
		t.Errorf("first catalog entry = %v, want rotation of canonical block 0", p.Rotations[0])
	}
	if p.RotationSlots[0] != 0 || p.RotationSlots[1] != 1 {
		t.Errorf("RotationSlots = %v, want [0 1]", p.RotationSlots)
	}
}
