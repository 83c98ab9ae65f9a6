// Package compressor defines the codec collaborator contract the
// decompression orchestrator drives, plus a ReferenceCompressor in-process
// test double that treats a container.File as its backing store and
// round-trips sparse-frame bytes through github.com/klauspost/compress/zstd.
package compressor

import (
	"context"
	"errors"

	"github.com/zibravdb/zibravdb-go/container"
	"github.com/zibravdb/zibravdb-go/gpu"
)

// ResourceSizes describes the GPU buffer sizes a Compressor needs the
// orchestrator to allocate and register before any frame is decompressed.
// The three byte counts size, in order, the buffers RegisterResources
// expects: spatial-block info, channel-block info, channel-block data.
type ResourceSizes struct {
	SpatialBlockInfoBytes     uint64
	ChannelBlockInfoBytes     uint64
	ChannelBlockDataBytes     uint64
	MaxSpatialBlocksPerSubmit int
}

// DecompressFrameDesc is one chunked decompression submission.
type DecompressFrameDesc struct {
	Frame                  FrameContainer
	FirstSpatialBlockIndex int
	SpatialBlocksCount     int
}

// DecompressedFrameFeedback reports where this chunk's channel-block data
// landed in the registered channel-block-data buffer.
type DecompressedFrameFeedback struct {
	FirstChannelBlockIndex int
	ChannelBlocksCount     int
}

// FrameContainer is an opaque per-frame handle returned by FormatMapper,
// owning per-frame metadata keyed by string.
type FrameContainer interface {
	Index() int
	Metadata() map[string]string
	Info() container.FrameInfo
}

// FormatMapper is the read side of a bound compressed file.
type FormatMapper interface {
	Metadata() map[string]string
	FrameRange() (start, end int)
	SequenceInfo() container.SequenceInfo
	FetchFrameContainer(idx int) (FrameContainer, error)
}

// ErrNotInitialized is returned by any Compressor call made before
// Initialize.
var ErrNotInitialized = errors.New("compressor: not initialized")

// ErrNoResourcesRegistered is returned by DecompressFrame when
// RegisterResources has not been called.
var ErrNoResourcesRegistered = errors.New("compressor: resources not registered")

// Compressor is the codec collaborator the orchestrator drives through one
// bound file's lifetime.
type Compressor interface {
	Initialize(ctx context.Context) error
	ResourcesRequirements() (ResourceSizes, error)
	// RegisterResources binds the orchestrator's freshly (re-)allocated
	// buffers in the order ResourceSizes describes them: spatial-block
	// info, channel-block info, channel-block data.
	RegisterResources(buffers ...gpu.Buffer) error
	FormatMapper() (FormatMapper, error)
	DecompressFrame(desc DecompressFrameDesc) (DecompressedFrameFeedback, error)
	Release() error
}
