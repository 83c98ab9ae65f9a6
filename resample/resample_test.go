package resample

import (
	"testing"

	"github.com/zibravdb/zibravdb-go/block"
	"github.com/zibravdb/zibravdb-go/grid"
)

func TestBoxSampleSameVoxelSizeReturnsSameGrid(t *testing.T) {
	src := grid.New("density", grid.Scalar, block.Identity())
	var b block.Block
	b[0] = 5
	src.SetComponent([3]int32{0, 0, 0}, 0, b)

	dst, err := BoxSample(src, src.VoxelSize())
	if err != nil {
		t.Fatalf("BoxSample: %v", err)
	}
	if dst != src {
		t.Error("BoxSample with an unchanged voxel size should return src unchanged")
	}
}

func TestBoxSampleUpsampleReplicates(t *testing.T) {
	src := grid.New("density", grid.Scalar, block.Identity())
	var b block.Block
	for i := range b {
		b[i] = 7
	}
	src.SetComponent([3]int32{0, 0, 0}, 0, b)

	dst, err := BoxSample(src, src.VoxelSize()/2)
	if err != nil {
		t.Fatalf("BoxSample: %v", err)
	}
	if dst.LeafCount() == 0 {
		t.Fatal("upsampled grid has no leaves")
	}
	for _, leaf := range dst.ActiveLeaves() {
		for _, v := range leaf.Components[0] {
			if v != 7 {
				t.Errorf("upsampled voxel = %v, want 7 (replicated)", v)
			}
		}
	}
}

func TestBoxSampleDownsampleAverages(t *testing.T) {
	src := grid.New("density", grid.Scalar, block.Identity())
	var b block.Block
	for i := range b {
		if i%2 == 0 {
			b[i] = 0
		} else {
			b[i] = 2
		}
	}
	src.SetComponent([3]int32{0, 0, 0}, 0, b)

	dst, err := BoxSample(src, src.VoxelSize()*2)
	if err != nil {
		t.Fatalf("BoxSample: %v", err)
	}
	if dst.LeafCount() == 0 {
		t.Fatal("downsampled grid has no leaves")
	}
	leaf, ok := dst.Leaf([3]int32{0, 0, 0})
	if !ok {
		t.Fatal("expected a leaf at origin")
	}
	if leaf.Components[0][0] != 1 {
		t.Errorf("downsampled voxel = %v, want average of 0 and 2 == 1", leaf.Components[0][0])
	}
}

func TestBoxSampleNonIntegerRatioErrors(t *testing.T) {
	src := grid.New("density", grid.Scalar, block.Identity())
	var b block.Block
	src.SetComponent([3]int32{0, 0, 0}, 0, b)

	if _, err := BoxSample(src, src.VoxelSize()*1.3); err != ErrNonIntegerRatio {
		t.Errorf("BoxSample with a 1.3x ratio: got %v, want ErrNonIntegerRatio", err)
	}
}
