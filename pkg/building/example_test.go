package building_test

import (
	"fmt"

	"github.com/matzehuels/structio/pkg/building"
)

func ExampleBuilding_Connect() {
	b := building.New()
	r := b.AddRoot(building.Root{})
	a := b.AddBlock(building.Block{Type: 5, Root: r})
	c := b.AddBlock(building.Block{Type: 5, Root: r, Position: building.Vec3{1, 0, 0}})
	b.Connect(a, c)

	fmt.Println("Blocks:", len(b.Blocks))
	fmt.Println("Links of a:", b.Blocks[a].Connections)
	fmt.Println("Links of c:", b.Blocks[c].Connections)
	// Output:
	// Blocks: 2
	// Links of a: [1]
	// Links of c: [0]
}
