package compressor

import (
	"github.com/zibravdb/zibravdb-go/block"
	"github.com/zibravdb/zibravdb-go/channel"
	"github.com/zibravdb/zibravdb-go/frame"
	"github.com/zibravdb/zibravdb-go/internal/half"
)

// The following exported sizes and parse functions are the GPU buffer
// layout contract between this compressor and whatever orchestrator reads
// its buffers back: the byte shape DecompressFrame writes into the
// registered spatial-block-info and channel-block-data buffers.
const (
	SpatialBlockInfoRecordBytes = spatialBlockInfoRecordBytes
	ChannelBlockDataRecordBytes = channelBlockDataRecordBytes
)

// ParseSpatialBlockInfo decodes a chunk's spatial-block-info readback into
// descriptors whose ChannelBlocksOffset is already chunk-local (relative
// to the chunk's first channel block), matching what decode.ChunkData
// expects.
func ParseSpatialBlockInfo(data []byte) []frame.SpatialBlockDescriptor {
	n := len(data) / SpatialBlockInfoRecordBytes
	out := make([]frame.SpatialBlockDescriptor, n)
	for i := 0; i < n; i++ {
		rec := data[i*SpatialBlockInfoRecordBytes:]
		out[i] = frame.SpatialBlockDescriptor{
			X:                   int32(readU32(rec[0:4])),
			Y:                   int32(readU32(rec[4:8])),
			Z:                   int32(readU32(rec[8:12])),
			Mask:                channel.Mask(readU32(rec[12:16])),
			ChannelBlocksOffset: int(readU32(rec[16:20])),
		}
	}
	return out
}

// ParseChannelBlockData decodes a chunk's channel-block-data readback
// into narrow (half-precision) blocks.
func ParseChannelBlockData(data []byte) []block.NarrowBlock {
	n := len(data) / ChannelBlockDataRecordBytes
	out := make([]block.NarrowBlock, n)
	for i := 0; i < n; i++ {
		rec := data[i*ChannelBlockDataRecordBytes:]
		for v := 0; v < block.VoxelsPerBlock; v++ {
			out[i][v] = half.Half(uint16(rec[v*2]) | uint16(rec[v*2+1])<<8)
		}
	}
	return out
}

func readU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
