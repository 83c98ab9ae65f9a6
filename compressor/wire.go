package compressor

import (
	"errors"

	"github.com/zibravdb/zibravdb-go/block"
	"github.com/zibravdb/zibravdb-go/channel"
	"github.com/zibravdb/zibravdb-go/frame"
	"github.com/zibravdb/zibravdb-go/internal/half"
	"github.com/zibravdb/zibravdb-go/internal/interleave"
	"github.com/zibravdb/zibravdb-go/internal/predictor"
	"github.com/zibravdb/zibravdb-go/internal/xdr"
)

// halfBytesStride is the byte width of one half-precision channel voxel;
// it is the stride interleave groups high/low bytes by.
const halfBytesStride = 2

// ErrCorruptWireFrame is returned by decodeWireFrame when the payload's
// internal counts don't line up with the bytes actually present.
var ErrCorruptWireFrame = errors.New("compressor: corrupt frame payload")

// encodeWireFrame serializes f into the reference compressor's on-disk
// frame payload: an xdr-encoded header of channel descriptors and spatial
// block descriptors, followed by the channel-block array stored as
// half-precision floats (the same width the GPU buffers carry) and run
// through horizontal differencing plus byte-plane interleaving before
// the caller hands the result to zstd.
func encodeWireFrame(f *frame.SparseFrame) []byte {
	w := xdr.NewBufferWriter(0)

	w.WriteInt32(f.AABB.MinX)
	w.WriteInt32(f.AABB.MinY)
	w.WriteInt32(f.AABB.MinZ)
	w.WriteInt32(f.AABB.MaxX)
	w.WriteInt32(f.AABB.MaxY)
	w.WriteInt32(f.AABB.MaxZ)
	w.WriteInt32(f.EncodingOffsetVoxels[0])
	w.WriteInt32(f.EncodingOffsetVoxels[1])
	w.WriteInt32(f.EncodingOffsetVoxels[2])

	w.WriteUint32(uint32(len(f.Channels)))
	for _, c := range f.Channels {
		w.WriteString(c.Name)
		for _, m := range c.Transform {
			w.WriteFloat32(m)
		}
		w.WriteFloat32(c.Stats.Min)
		w.WriteFloat32(c.Stats.Max)
		w.WriteFloat32(c.Stats.MeanPositive)
		w.WriteFloat32(c.Stats.MeanNegative)
		w.WriteUint32(uint32(c.Stats.VoxelCount))
	}

	w.WriteUint32(uint32(len(f.SpatialBlocks)))
	for _, sb := range f.SpatialBlocks {
		w.WriteInt32(sb.X)
		w.WriteInt32(sb.Y)
		w.WriteInt32(sb.Z)
		w.WriteUint8(uint8(sb.Mask))
		w.WriteUint32(uint32(sb.ChannelBlocksOffset))
	}

	w.WriteUint32(uint32(len(f.ChannelBlocks)))
	for _, ci := range f.ChannelBlockChannelIndex {
		w.WriteUint8(ci)
	}

	raw := make([]byte, len(f.ChannelBlocks)*block.VoxelsPerBlock*halfBytesStride)
	for i, cb := range f.ChannelBlocks {
		narrow := cb.ToNarrow()
		rec := raw[i*block.VoxelsPerBlock*halfBytesStride:]
		for j, h := range narrow {
			rec[j*2] = byte(h)
			rec[j*2+1] = byte(h >> 8)
		}
	}
	// Horizontal differencing followed by byte-plane interleaving makes
	// the channel-block payload more compressible before zstd sees it:
	// neighboring voxels are usually close in value, and grouping the
	// resulting small deltas by byte plane clusters similar bytes together.
	predictor.Encode(raw)
	interleave.InterleaveInPlace(raw, halfBytesStride)
	w.WriteUint32(uint32(len(raw)))
	w.WriteBytes(raw)

	return w.Bytes()
}

// decodeWireFrame is encodeWireFrame's inverse.
func decodeWireFrame(data []byte) (*frame.SparseFrame, error) {
	r := xdr.NewReader(data)
	f := &frame.SparseFrame{}

	var err error
	if f.AABB.MinX, err = r.ReadInt32(); err != nil {
		return nil, ErrCorruptWireFrame
	}
	if f.AABB.MinY, err = r.ReadInt32(); err != nil {
		return nil, ErrCorruptWireFrame
	}
	if f.AABB.MinZ, err = r.ReadInt32(); err != nil {
		return nil, ErrCorruptWireFrame
	}
	if f.AABB.MaxX, err = r.ReadInt32(); err != nil {
		return nil, ErrCorruptWireFrame
	}
	if f.AABB.MaxY, err = r.ReadInt32(); err != nil {
		return nil, ErrCorruptWireFrame
	}
	if f.AABB.MaxZ, err = r.ReadInt32(); err != nil {
		return nil, ErrCorruptWireFrame
	}
	for i := range f.EncodingOffsetVoxels {
		if f.EncodingOffsetVoxels[i], err = r.ReadInt32(); err != nil {
			return nil, ErrCorruptWireFrame
		}
	}

	channelCount, err := r.ReadUint32()
	if err != nil {
		return nil, ErrCorruptWireFrame
	}
	f.Channels = make([]frame.ChannelDescriptor, channelCount)
	for i := range f.Channels {
		name, err := r.ReadString()
		if err != nil {
			return nil, ErrCorruptWireFrame
		}
		var t block.Transform
		for j := range t {
			if t[j], err = r.ReadFloat32(); err != nil {
				return nil, ErrCorruptWireFrame
			}
		}
		var stats frame.ChannelStats
		if stats.Min, err = r.ReadFloat32(); err != nil {
			return nil, ErrCorruptWireFrame
		}
		if stats.Max, err = r.ReadFloat32(); err != nil {
			return nil, ErrCorruptWireFrame
		}
		if stats.MeanPositive, err = r.ReadFloat32(); err != nil {
			return nil, ErrCorruptWireFrame
		}
		if stats.MeanNegative, err = r.ReadFloat32(); err != nil {
			return nil, ErrCorruptWireFrame
		}
		voxelCount, err := r.ReadUint32()
		if err != nil {
			return nil, ErrCorruptWireFrame
		}
		stats.VoxelCount = int64(voxelCount)
		f.Channels[i] = frame.ChannelDescriptor{Name: name, Transform: t, Stats: stats}
	}

	spatialCount, err := r.ReadUint32()
	if err != nil {
		return nil, ErrCorruptWireFrame
	}
	f.SpatialBlocks = make([]frame.SpatialBlockDescriptor, spatialCount)
	for i := range f.SpatialBlocks {
		var sb frame.SpatialBlockDescriptor
		if sb.X, err = r.ReadInt32(); err != nil {
			return nil, ErrCorruptWireFrame
		}
		if sb.Y, err = r.ReadInt32(); err != nil {
			return nil, ErrCorruptWireFrame
		}
		if sb.Z, err = r.ReadInt32(); err != nil {
			return nil, ErrCorruptWireFrame
		}
		mask, err := r.ReadUint8()
		if err != nil {
			return nil, ErrCorruptWireFrame
		}
		sb.Mask = channel.Mask(mask)
		offset, err := r.ReadUint32()
		if err != nil {
			return nil, ErrCorruptWireFrame
		}
		sb.ChannelBlocksOffset = int(offset)
		f.SpatialBlocks[i] = sb
	}

	channelBlockCount, err := r.ReadUint32()
	if err != nil {
		return nil, ErrCorruptWireFrame
	}
	f.ChannelBlockChannelIndex = make([]uint8, channelBlockCount)
	for i := range f.ChannelBlockChannelIndex {
		ci, err := r.ReadUint8()
		if err != nil {
			return nil, ErrCorruptWireFrame
		}
		f.ChannelBlockChannelIndex[i] = ci
	}

	rawLen, err := r.ReadUint32()
	if err != nil {
		return nil, ErrCorruptWireFrame
	}
	raw, err := r.ReadBytes(int(rawLen))
	if err != nil {
		return nil, ErrCorruptWireFrame
	}
	wantLen := int(channelBlockCount) * block.VoxelsPerBlock * halfBytesStride
	if len(raw) != wantLen {
		return nil, ErrCorruptWireFrame
	}
	interleave.DeinterleaveInPlace(raw, halfBytesStride)
	predictor.Decode(raw)

	f.ChannelBlocks = make([]block.Block, channelBlockCount)
	for i := range f.ChannelBlocks {
		var narrow block.NarrowBlock
		rec := raw[i*block.VoxelsPerBlock*halfBytesStride:]
		for j := range narrow {
			narrow[j] = half.Half(uint16(rec[j*2]) | uint16(rec[j*2+1])<<8)
		}
		f.ChannelBlocks[i] = narrow.ToWide()
	}

	if r.Len() != 0 {
		return nil, ErrCorruptWireFrame
	}

	return f, nil
}
