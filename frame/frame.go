// Package frame defines the sparse-frame data model: the block-structured,
// channel-interleaved representation of one frame's worth of sparse grids
// that the encoder produces and the decoder consumes.
//
// A SparseFrame is constructed once, by the encoder, and never mutated
// afterward. It is safe to copy by value (Clone) since it holds no
// internal self-pointers — every cross-reference is an index into one of
// its slices.
package frame

import (
	"github.com/zibravdb/zibravdb-go/block"
	"github.com/zibravdb/zibravdb-go/channel"
)

// ChannelStats holds the per-channel statistics computed over active
// voxels only. VoxelCount is always activeBlockCount*512 for the channel.
type ChannelStats struct {
	Min          float32
	Max          float32
	MeanPositive float32
	MeanNegative float32
	VoxelCount   int64
}

// ChannelDescriptor names one channel and carries its grid-space transform
// and statistics. Channel-descriptor order fixes the bit position of that
// channel in every spatial block's mask for the lifetime of the frame.
type ChannelDescriptor struct {
	Name      string
	Transform block.Transform
	Stats     ChannelStats
}

// SpatialBlockDescriptor describes one occupied sparse block: its
// AABB-relative block coordinate (>= 0 on every axis), the channel mask of
// channels present at this cell, and the offset into the frame's
// ChannelBlocks array where this cell's channel payloads begin
// (contiguous, ascending channel-index order).
type SpatialBlockDescriptor struct {
	X, Y, Z             int32
	Mask                channel.Mask
	ChannelBlocksOffset int
}

// SparseFrame is the encoder's sole output type and the decoder's sole
// input type (besides per-chunk GPU payloads). It is immutable after
// construction.
type SparseFrame struct {
	// AABB is always normalized so Min == (0,0,0); the pre-normalization
	// origin is carried separately in EncodingOffsetVoxels.
	AABB block.Box3i

	// Channels is the ordered channel descriptor list; its index is the
	// channel's bit position in every SpatialBlockDescriptor.Mask.
	Channels []ChannelDescriptor

	// SpatialBlocks is the array of occupied sparse blocks, in the order
	// the encoder first encountered their origin.
	SpatialBlocks []SpatialBlockDescriptor

	// ChannelBlocks is the payload array: one Block per (spatial block,
	// present channel) pair, laid out contiguously per spatial block in
	// ascending channel-index order.
	ChannelBlocks []block.Block

	// ChannelBlockChannelIndex[i] is the channel index that produced
	// ChannelBlocks[i]. len(ChannelBlockChannelIndex) == len(ChannelBlocks).
	ChannelBlockChannelIndex []uint8

	// EncodingOffsetVoxels is (totalAABB.Min * 8) in voxels: the origin
	// shift subtracted from the frame's true AABB to normalize it to
	// zero. Consumers translate reconstructed grids back by this amount.
	EncodingOffsetVoxels [3]int32
}

// Empty returns a frame with no spatial or channel blocks and a zero-sized
// AABB — the value produced when the encoder receives no grids, or grids
// with no active voxels.
func Empty() *SparseFrame {
	return &SparseFrame{}
}

// Clone returns a deep copy of f. Because SparseFrame holds no internal
// self-pointers (every cross-reference is a plain slice index), a field-
// by-field slice copy is always a safe, complete clone.
func (f *SparseFrame) Clone() *SparseFrame {
	out := &SparseFrame{
		AABB:                 f.AABB,
		EncodingOffsetVoxels: f.EncodingOffsetVoxels,
	}
	out.Channels = append(out.Channels, f.Channels...)
	out.SpatialBlocks = append(out.SpatialBlocks, f.SpatialBlocks...)
	out.ChannelBlocks = append(out.ChannelBlocks, f.ChannelBlocks...)
	out.ChannelBlockChannelIndex = append(out.ChannelBlockChannelIndex, f.ChannelBlockChannelIndex...)
	return out
}

// ChannelBlocksFor returns the slice of ChannelBlocks belonging to spatial
// block sb, in ascending channel-index order.
func (f *SparseFrame) ChannelBlocksFor(sb SpatialBlockDescriptor) []block.Block {
	n := channel.Popcount(sb.Mask)
	return f.ChannelBlocks[sb.ChannelBlocksOffset : sb.ChannelBlocksOffset+n]
}
