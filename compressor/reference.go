package compressor

import (
	"context"
	"errors"
	"sync"

	"github.com/zibravdb/zibravdb-go/block"
	"github.com/zibravdb/zibravdb-go/channel"
	"github.com/zibravdb/zibravdb-go/container"
	"github.com/zibravdb/zibravdb-go/frame"
	"github.com/zibravdb/zibravdb-go/gpu"
)

// defaultMaxSpatialBlocksPerSubmit bounds one decompression chunk. A real
// engine advertises its own per-submit limit; the reference compressor
// picks a fixed one so ResourcesRequirements can size buffers up front.
const defaultMaxSpatialBlocksPerSubmit = 256

const (
	spatialBlockInfoRecordBytes = 20 // X, Y, Z, mask, channelBlocksOffset, each a uint32-width field
	channelBlockInfoRecordBytes = 4  // source channel index, widened to uint32
	channelBlockDataRecordBytes = block.VoxelsPerBlock * 2
)

var (
	// ErrWrongBufferCount is returned by RegisterResources when it is not
	// given exactly the three buffers ResourcesRequirements describes.
	ErrWrongBufferCount = errors.New("compressor: expected exactly 3 buffers (spatial-block info, channel-block info, channel-block data)")

	// ErrSpatialRangeOutOfBounds is returned by DecompressFrame when the
	// requested chunk falls outside the frame's spatial block array, or
	// exceeds the engine's advertised per-submit limit.
	ErrSpatialRangeOutOfBounds = errors.New("compressor: spatial block range out of bounds")
)

// EncodeFrameBlob serializes and compresses f into the opaque blob form a
// container.FrameRecord carries. It is the encode-side counterpart to the
// decode path DecompressFrame drives, used to build fixtures and by
// whatever assembles a compressed container from freshly encoded frames.
func EncodeFrameBlob(f *frame.SparseFrame) ([]byte, error) {
	return frameBlobCompress(encodeWireFrame(f))
}

// ReferenceCompressor is an in-process Compressor that treats a
// container.File as its backing store and a gpu.SoftwareDevice as its GPU
// target. It exists as a working reference/test double for the
// orchestrator, not as a production codec.
type ReferenceCompressor struct {
	file                      *container.File
	device                    *gpu.SoftwareDevice
	maxSpatialBlocksPerSubmit int

	mu          sync.Mutex
	initialized bool
	buffers     []gpu.Buffer

	framesMu sync.Mutex
	frames   map[int]*referenceFrameContainer
}

// NewReferenceCompressor returns a ReferenceCompressor reading frames from
// file and writing decompressed payloads through device.
func NewReferenceCompressor(file *container.File, device *gpu.SoftwareDevice) *ReferenceCompressor {
	return &ReferenceCompressor{
		file:                      file,
		device:                    device,
		maxSpatialBlocksPerSubmit: defaultMaxSpatialBlocksPerSubmit,
		frames:                    make(map[int]*referenceFrameContainer),
	}
}

func (c *ReferenceCompressor) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initialized = true
	return nil
}

func (c *ReferenceCompressor) ResourcesRequirements() (ResourceSizes, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return ResourceSizes{}, ErrNotInitialized
	}
	perChunkBlocks := uint64(c.maxSpatialBlocksPerSubmit) * block.MaxChannels
	return ResourceSizes{
		SpatialBlockInfoBytes:     uint64(c.maxSpatialBlocksPerSubmit) * spatialBlockInfoRecordBytes,
		ChannelBlockInfoBytes:     perChunkBlocks * channelBlockInfoRecordBytes,
		ChannelBlockDataBytes:     perChunkBlocks * channelBlockDataRecordBytes,
		MaxSpatialBlocksPerSubmit: c.maxSpatialBlocksPerSubmit,
	}, nil
}

func (c *ReferenceCompressor) RegisterResources(buffers ...gpu.Buffer) error {
	if len(buffers) != 3 {
		return ErrWrongBufferCount
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return ErrNotInitialized
	}
	c.buffers = append([]gpu.Buffer(nil), buffers...)
	return nil
}

func (c *ReferenceCompressor) FormatMapper() (FormatMapper, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return nil, ErrNotInitialized
	}
	return &referenceFormatMapper{compressor: c}, nil
}

// DecompressFrame decompresses the chunk named by desc and writes its
// spatial-block-info, channel-block-info, and channel-block-data records
// into the three registered buffers (in that order), reusing the same
// buffer regions every call, per the ordering guarantee that readback for
// chunk N completes before chunk N+1 is submitted.
func (c *ReferenceCompressor) DecompressFrame(desc DecompressFrameDesc) (DecompressedFrameFeedback, error) {
	c.mu.Lock()
	if !c.initialized {
		c.mu.Unlock()
		return DecompressedFrameFeedback{}, ErrNotInitialized
	}
	if len(c.buffers) != 3 {
		c.mu.Unlock()
		return DecompressedFrameFeedback{}, ErrNoResourcesRegistered
	}
	spatialInfoBuf, channelInfoBuf, channelDataBuf := c.buffers[0], c.buffers[1], c.buffers[2]
	maxPerSubmit := c.maxSpatialBlocksPerSubmit
	c.mu.Unlock()

	fc, ok := desc.Frame.(*referenceFrameContainer)
	if !ok || fc == nil {
		return DecompressedFrameFeedback{}, ErrSpatialRangeOutOfBounds
	}
	sf := fc.frame

	first, count := desc.FirstSpatialBlockIndex, desc.SpatialBlocksCount
	if count == 0 {
		return DecompressedFrameFeedback{}, nil
	}
	if count > maxPerSubmit || first < 0 || count < 0 || first+count > len(sf.SpatialBlocks) {
		return DecompressedFrameFeedback{}, ErrSpatialRangeOutOfBounds
	}

	chunk := sf.SpatialBlocks[first : first+count]
	firstChannelBlockIndex := chunk[0].ChannelBlocksOffset
	last := chunk[len(chunk)-1]
	channelBlocksCount := last.ChannelBlocksOffset + channel.Popcount(last.Mask) - firstChannelBlockIndex

	spatialInfo := make([]byte, 0, len(chunk)*spatialBlockInfoRecordBytes)
	for _, sb := range chunk {
		spatialInfo = appendU32(spatialInfo, uint32(sb.X))
		spatialInfo = appendU32(spatialInfo, uint32(sb.Y))
		spatialInfo = appendU32(spatialInfo, uint32(sb.Z))
		spatialInfo = appendU32(spatialInfo, uint32(sb.Mask))
		spatialInfo = appendU32(spatialInfo, uint32(sb.ChannelBlocksOffset-firstChannelBlockIndex))
	}

	channelInfo := make([]byte, 0, channelBlocksCount*channelBlockInfoRecordBytes)
	channelData := make([]byte, 0, channelBlocksCount*channelBlockDataRecordBytes)
	for i := 0; i < channelBlocksCount; i++ {
		cb := sf.ChannelBlocks[firstChannelBlockIndex+i]
		channelInfo = appendU32(channelInfo, uint32(sf.ChannelBlockChannelIndex[firstChannelBlockIndex+i]))
		narrow := cb.ToNarrow()
		for _, h := range narrow {
			channelData = appendU16(channelData, uint16(h))
		}
	}

	if err := c.device.WriteBuffer(spatialInfoBuf, 0, spatialInfo); err != nil {
		return DecompressedFrameFeedback{}, err
	}
	if err := c.device.WriteBuffer(channelInfoBuf, 0, channelInfo); err != nil {
		return DecompressedFrameFeedback{}, err
	}
	if err := c.device.WriteBuffer(channelDataBuf, 0, channelData); err != nil {
		return DecompressedFrameFeedback{}, err
	}

	return DecompressedFrameFeedback{
		FirstChannelBlockIndex: firstChannelBlockIndex,
		ChannelBlocksCount:     channelBlocksCount,
	}, nil
}

func (c *ReferenceCompressor) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initialized = false
	c.buffers = nil
	c.framesMu.Lock()
	c.frames = make(map[int]*referenceFrameContainer)
	c.framesMu.Unlock()
	return nil
}

func (c *ReferenceCompressor) decodeFrame(idx int) (*referenceFrameContainer, error) {
	c.framesMu.Lock()
	if fc, ok := c.frames[idx]; ok {
		c.framesMu.Unlock()
		return fc, nil
	}
	c.framesMu.Unlock()

	rec, err := c.file.Frame(idx)
	if err != nil {
		return nil, err
	}
	raw, err := frameBlobDecompress(rec.Blob)
	if err != nil {
		return nil, err
	}
	sf, err := decodeWireFrame(raw)
	if err != nil {
		return nil, err
	}

	info := rec.Info
	info.ChannelsCount = len(sf.Channels)
	info.Channels = make([]string, len(sf.Channels))
	info.ChannelTransforms = make([]block.Transform, len(sf.Channels))
	for i, ch := range sf.Channels {
		info.Channels[i] = ch.Name
		info.ChannelTransforms[i] = ch.Transform
	}
	info.SpatialBlockCount = len(sf.SpatialBlocks)
	info.ChannelBlockCount = len(sf.ChannelBlocks)
	info.AABBSize = [3]int32{sf.AABB.MaxX - sf.AABB.MinX, sf.AABB.MaxY - sf.AABB.MinY, sf.AABB.MaxZ - sf.AABB.MinZ}
	info.EncodingOffsetVoxels = sf.EncodingOffsetVoxels

	fc := &referenceFrameContainer{idx: idx, info: info, metadata: rec.Metadata, frame: sf}
	c.framesMu.Lock()
	c.frames[idx] = fc
	c.framesMu.Unlock()
	return fc, nil
}

// referenceFrameContainer is the FrameContainer this compressor hands
// back to the orchestrator from FetchFrameContainer.
type referenceFrameContainer struct {
	idx      int
	info     container.FrameInfo
	metadata map[string]string
	frame    *frame.SparseFrame
}

func (f *referenceFrameContainer) Index() int                  { return f.idx }
func (f *referenceFrameContainer) Metadata() map[string]string { return f.metadata }
func (f *referenceFrameContainer) Info() container.FrameInfo   { return f.info }

// referenceFormatMapper is the FormatMapper this compressor hands back
// from FormatMapper().
type referenceFormatMapper struct {
	compressor *ReferenceCompressor
}

func (m *referenceFormatMapper) Metadata() map[string]string {
	return m.compressor.file.Metadata
}

func (m *referenceFormatMapper) FrameRange() (start, end int) {
	start, end, ok := m.compressor.file.FrameRange()
	if !ok {
		return 0, 0
	}
	return start, end
}

func (m *referenceFormatMapper) SequenceInfo() container.SequenceInfo {
	return m.compressor.file.Info
}

func (m *referenceFormatMapper) FetchFrameContainer(idx int) (FrameContainer, error) {
	return m.compressor.decodeFrame(idx)
}

func appendU32(b []byte, v uint32) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func appendU16(b []byte, v uint16) []byte {
	return append(b, byte(v), byte(v>>8))
}
