package codec_test

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/structio/pkg/building"
	"github.com/matzehuels/structio/pkg/codec"
)

func Example() {
	b := building.New()
	r := b.AddRoot(building.Root{})
	b.AddBlock(building.Block{Position: building.Vec3{0, 0, 0}, Type: 5, Root: r, Name: "left"})
	b.AddBlock(building.Block{Position: building.Vec3{1, 0, 0}, Type: 5, Root: r, Name: "right"})
	b.Connect(0, 1)

	var buf bytes.Buffer
	if err := codec.Encode(&buf, b, 2); err != nil {
		fmt.Println("encode:", err)
		return
	}
	fmt.Println("bytes:", buf.Len())

	decoded, err := codec.Decode(&buf)
	if err != nil {
		fmt.Println("decode:", err)
		return
	}
	for _, blk := range decoded.Blocks {
		fmt.Printf("%s x=%.2f links=%v\n", blk.Name, blk.Position[0], blk.Connections)
	}
	// Output:
	// bytes: 106
	// left x=-0.00 links=[1]
	// right x=1.00 links=[0]
}

func ExampleInspect() {
	data, err := codec.Marshal(building.Snake(100, 5), 6)
	if err != nil {
		fmt.Println(err)
		return
	}
	info, err := codec.Inspect(data)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("v%d: %d roots, %d blocks, rotation catalog %d, color catalog %d\n",
		info.Version, info.Roots, info.Blocks, info.RotationCatalog, info.ColorCatalog)
	// Output:
	// v6: 1 roots, 100 blocks, rotation catalog 1, color catalog -1
}
