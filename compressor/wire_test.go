package compressor

import (
	"testing"

	"github.com/zibravdb/zibravdb-go/block"
	"github.com/zibravdb/zibravdb-go/channel"
	"github.com/zibravdb/zibravdb-go/frame"
)

func sampleFrame() *frame.SparseFrame {
	var b0, b1 block.Block
	for i := range b0 {
		b0[i] = float32(i) * 0.5
		b1[i] = -float32(i)
	}
	return &frame.SparseFrame{
		AABB: block.Box3i{MinX: 0, MinY: 0, MinZ: 0, MaxX: 4, MaxY: 4, MaxZ: 4},
		Channels: []frame.ChannelDescriptor{
			{Name: "density", Transform: block.Identity(), Stats: frame.ChannelStats{Min: -1, Max: 2, MeanPositive: 0.5, MeanNegative: -0.25, VoxelCount: 1024}},
			{Name: "temperature", Transform: block.Translation(1, 2, 3), Stats: frame.ChannelStats{Max: 10}},
		},
		SpatialBlocks: []frame.SpatialBlockDescriptor{
			{X: 0, Y: 0, Z: 0, Mask: channel.Mask(0b11), ChannelBlocksOffset: 0},
			{X: 1, Y: 0, Z: 0, Mask: channel.Mask(0b01), ChannelBlocksOffset: 2},
		},
		ChannelBlocks:            []block.Block{b0, b1, b0},
		ChannelBlockChannelIndex: []uint8{0, 1, 0},
		EncodingOffsetVoxels:     [3]int32{8, 0, -8},
	}
}

func TestEncodeDecodeWireFrameRoundTrip(t *testing.T) {
	f := sampleFrame()
	data := encodeWireFrame(f)
	got, err := decodeWireFrame(data)
	if err != nil {
		t.Fatalf("decodeWireFrame: %v", err)
	}

	if got.AABB != f.AABB {
		t.Errorf("AABB = %+v, want %+v", got.AABB, f.AABB)
	}
	if got.EncodingOffsetVoxels != f.EncodingOffsetVoxels {
		t.Errorf("EncodingOffsetVoxels = %v, want %v", got.EncodingOffsetVoxels, f.EncodingOffsetVoxels)
	}
	if len(got.Channels) != len(f.Channels) {
		t.Fatalf("len(Channels) = %d, want %d", len(got.Channels), len(f.Channels))
	}
	for i := range f.Channels {
		if got.Channels[i].Name != f.Channels[i].Name {
			t.Errorf("Channels[%d].Name = %q, want %q", i, got.Channels[i].Name, f.Channels[i].Name)
		}
		if got.Channels[i].Stats != f.Channels[i].Stats {
			t.Errorf("Channels[%d].Stats = %+v, want %+v", i, got.Channels[i].Stats, f.Channels[i].Stats)
		}
	}
	if len(got.SpatialBlocks) != len(f.SpatialBlocks) {
		t.Fatalf("len(SpatialBlocks) = %d, want %d", len(got.SpatialBlocks), len(f.SpatialBlocks))
	}
	for i := range f.SpatialBlocks {
		if got.SpatialBlocks[i] != f.SpatialBlocks[i] {
			t.Errorf("SpatialBlocks[%d] = %+v, want %+v", i, got.SpatialBlocks[i], f.SpatialBlocks[i])
		}
	}
	if len(got.ChannelBlocks) != len(f.ChannelBlocks) {
		t.Fatalf("len(ChannelBlocks) = %d, want %d", len(got.ChannelBlocks), len(f.ChannelBlocks))
	}
	for i := range f.ChannelBlocks {
		for v := range f.ChannelBlocks[i] {
			if !block.IsNearlyEqual(got.ChannelBlocks[i][v], f.ChannelBlocks[i][v]) {
				t.Fatalf("ChannelBlocks[%d][%d] = %v, want ~%v", i, v, got.ChannelBlocks[i][v], f.ChannelBlocks[i][v])
			}
		}
	}
	for i := range f.ChannelBlockChannelIndex {
		if got.ChannelBlockChannelIndex[i] != f.ChannelBlockChannelIndex[i] {
			t.Errorf("ChannelBlockChannelIndex[%d] = %d, want %d", i, got.ChannelBlockChannelIndex[i], f.ChannelBlockChannelIndex[i])
		}
	}
}

func TestDecodeWireFrameTruncatedIsCorrupt(t *testing.T) {
	data := encodeWireFrame(sampleFrame())
	if _, err := decodeWireFrame(data[:len(data)-1]); err != ErrCorruptWireFrame {
		t.Errorf("decodeWireFrame(truncated) error = %v, want ErrCorruptWireFrame", err)
	}
}

func TestDecodeWireFrameTrailingGarbageIsCorrupt(t *testing.T) {
	data := append(encodeWireFrame(sampleFrame()), 0xff)
	if _, err := decodeWireFrame(data); err != ErrCorruptWireFrame {
		t.Errorf("decodeWireFrame(trailing garbage) error = %v, want ErrCorruptWireFrame", err)
	}
}

func TestEncodeDecodeEmptyFrame(t *testing.T) {
	f := frame.Empty()
	data := encodeWireFrame(f)
	got, err := decodeWireFrame(data)
	if err != nil {
		t.Fatalf("decodeWireFrame: %v", err)
	}
	if len(got.Channels) != 0 || len(got.SpatialBlocks) != 0 || len(got.ChannelBlocks) != 0 {
		t.Errorf("decoded empty frame is not empty: %+v", got)
	}
}
