package decode

import (
	"testing"

	"github.com/zibravdb/zibravdb-go/block"
	"github.com/zibravdb/zibravdb-go/channel"
	"github.com/zibravdb/zibravdb-go/frame"
	"github.com/zibravdb/zibravdb-go/grid"
)

func TestDecodeSingleScalarChunk(t *testing.T) {
	descriptors := []Descriptor{
		{Name: "density", VoxelType: grid.Scalar, Sources: [block.MaxVectorComponents]string{"density"}},
	}
	sourceNames := []string{"density"}
	transforms := map[string]block.Transform{"density": block.Identity()}

	dec := NewDecoder(descriptors, sourceNames, transforms, [3]int32{0, 0, 0})

	var nb block.NarrowBlock
	var wide block.Block
	wide[0] = 3
	nb = wide.ToNarrow()

	chunk := ChunkData{
		SpatialBlocks: []frame.SpatialBlockDescriptor{
			{X: 1, Y: 0, Z: 0, Mask: channel.Mask(1), ChannelBlocksOffset: 0},
		},
		ChannelBlocks: []block.NarrowBlock{nb},
	}
	if err := dec.Accept(chunk); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	grids, err := dec.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if len(grids) != 1 {
		t.Fatalf("Finish() returned %d grids, want 1", len(grids))
	}
	g := grids[0]
	leaf, ok := g.Leaf([3]int32{block.Size, 0, 0})
	if !ok {
		t.Fatal("expected leaf at voxel origin (8,0,0)")
	}
	if !block.IsNearlyEqual(leaf.Components[0][0], 3) {
		t.Errorf("decoded voxel = %v, want ~3 (half-precision round trip)", leaf.Components[0][0])
	}
}

func TestDecodeFanoutToMultipleTargets(t *testing.T) {
	descriptors := []Descriptor{
		{Name: "a", VoxelType: grid.Scalar, Sources: [block.MaxVectorComponents]string{"shared"}},
		{Name: "b", VoxelType: grid.Scalar, Sources: [block.MaxVectorComponents]string{"shared"}},
	}
	sourceNames := []string{"shared"}
	transforms := map[string]block.Transform{"shared": block.Identity()}
	dec := NewDecoder(descriptors, sourceNames, transforms, [3]int32{0, 0, 0})

	var wide block.Block
	wide[0] = 5
	nb := wide.ToNarrow()

	chunk := ChunkData{
		SpatialBlocks: []frame.SpatialBlockDescriptor{
			{X: 0, Y: 0, Z: 0, Mask: channel.Mask(1), ChannelBlocksOffset: 0},
		},
		ChannelBlocks: []block.NarrowBlock{nb},
	}
	if err := dec.Accept(chunk); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	grids, err := dec.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	for _, g := range grids {
		leaf, ok := g.Leaf([3]int32{0, 0, 0})
		if !ok {
			t.Fatalf("grid %q missing leaf at origin", g.Name)
		}
		if !block.IsNearlyEqual(leaf.Components[0][0], 5) {
			t.Errorf("grid %q voxel = %v, want ~5", g.Name, leaf.Components[0][0])
		}
	}
}

func TestDecodeVectorGridZeroFillsMissingComponent(t *testing.T) {
	descriptors := []Descriptor{
		{Name: "velocity", VoxelType: grid.Vec3, Sources: [block.MaxVectorComponents]string{"v.x", "v.y", ""}},
	}
	sourceNames := []string{"v.x", "v.y"}
	transforms := map[string]block.Transform{"v.x": block.Identity(), "v.y": block.Identity()}
	dec := NewDecoder(descriptors, sourceNames, transforms, [3]int32{0, 0, 0})

	var wx, wy block.Block
	wx[0], wy[0] = 1, 2
	nbx, nby := wx.ToNarrow(), wy.ToNarrow()

	chunk := ChunkData{
		SpatialBlocks: []frame.SpatialBlockDescriptor{
			{X: 0, Y: 0, Z: 0, Mask: channel.Mask(0b11), ChannelBlocksOffset: 0},
		},
		ChannelBlocks: []block.NarrowBlock{nbx, nby},
	}
	if err := dec.Accept(chunk); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	grids, err := dec.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	leaf, ok := grids[0].Leaf([3]int32{0, 0, 0})
	if !ok {
		t.Fatal("missing leaf")
	}
	if !block.IsNearlyEqual(leaf.Components[0][0], 1) || !block.IsNearlyEqual(leaf.Components[1][0], 2) {
		t.Errorf("components = %v/%v, want ~1/~2", leaf.Components[0][0], leaf.Components[1][0])
	}
	if leaf.Components[2][0] != 0 {
		t.Errorf("missing z component should zero-fill, got %v", leaf.Components[2][0])
	}
}

func TestDecodeTranslatesTransformBack(t *testing.T) {
	descriptors := []Descriptor{
		{Name: "density", VoxelType: grid.Scalar, Sources: [block.MaxVectorComponents]string{"density"}},
	}
	sourceNames := []string{"density"}
	// Channel transform as stored post-encode-shift: identity composed
	// with the compensating translation (see block.Transform.ShiftOrigin).
	shifted := block.Identity().ShiftOrigin([3]float32{8, 0, 0})
	transforms := map[string]block.Transform{"density": shifted}
	dec := NewDecoder(descriptors, sourceNames, transforms, [3]int32{8, 0, 0})

	grids, err := dec.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	got := grids[0].Transform.Apply([3]float32{0, 0, 0})
	if !block.IsNearlyEqual(got[0], 0) {
		t.Errorf("translated-back transform applied to origin = %v, want ~(0,0,0)", got)
	}
}
