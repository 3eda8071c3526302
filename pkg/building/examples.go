package building

import "math"

// Snake returns a single-root building of n blocks of type id laid out on a
// sine wave along the X axis, each block connected to its predecessor.
func Snake(n int, id uint8) *Building {
	b := New()
	r := b.AddRoot(Root{})
	for i := 0; i < n; i++ {
		x := float64(i) * 0.0625
		idx := b.AddBlock(Block{
			Position:    Vec3{float32(x), float32(math.Sin(x)), 0},
			Type:        id,
			Root:        r,
			EnableState: 1,
		})
		if idx > 0 {
			b.Connect(idx-1, idx)
		}
	}
	return b
}

// Vehicle returns a small two-root building that exercises most of the
// format: a chassis with a named, colored controller, a math block with
// type settings, a bearing that loads a wheel on a second root, field groups
// and a gradient.
func Vehicle(mathID uint8) *Building {
	b := New()
	chassis := b.AddRoot(Root{Position: Vec3{0, 1, 0}})
	wheel := b.AddRoot(Root{Position: Vec3{2, 0.5, 0}, Rotation: Vec3{0, 0, 90}})

	red := RGB{200, 40, 40}
	frame := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		frame = append(frame, b.AddBlock(Block{
			Position: Vec3{float32(i), 1, 0},
			Type:     1,
			Root:     chassis,
			Color:    &red,
		}))
	}

	controller := b.AddBlock(Block{
		Position:           Vec3{1, 2, 0},
		Rotation:           Vec3{0, 90, 0},
		Type:               20,
		Root:               chassis,
		Name:               "throttle",
		EnableState:        1,
		EnableStateCurrent: 0.5,
		Metadata: &Metadata{
			Toggles: []bool{true, false, true},
			Values:  []float32{0.25, 4},
			Fields:  [][]int{{frame[0], frame[3]}},
			Gradients: []Gradient{{
				ColorKeys:     []RGBA{{1, 0, 0, 1}, {0, 0, 1, 1}},
				ColorTimeKeys: []float32{0, 1},
				AlphaKeys:     []float32{1},
				AlphaTimeKeys: []float32{0},
			}},
		},
	})

	calc := b.AddBlock(Block{
		Position:    Vec3{2, 2, 0},
		Type:        mathID,
		Root:        chassis,
		EnableState: 1,
		Metadata: &Metadata{
			Dropdowns: []int32{2},
			TypeSettings: MathBlock{
				Function:                 "a*2+b",
				IncomingConnectionsOrder: []uint8{0, 1},
				Slots:                    []uint8{1, 0},
			},
		},
	})
	b.Connect(controller, calc)

	bearing := b.AddBlock(Block{
		Position:    Vec3{3, 1, 0},
		Type:        40,
		Root:        chassis,
		EnableState: 1,
	})

	tyre := b.AddBlock(Block{
		Position:           Vec3{3.5, 0.5, 0},
		Rotation:           Vec3{0, 0, 90},
		Type:               41,
		Root:               wheel,
		EnableState:        1,
		EnableStateCurrent: 3,
	})
	b.SetLoad(bearing, tyre)
	b.Connect(calc, bearing)

	return b
}
