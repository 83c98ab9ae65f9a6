// Package orchestrator drives one compressed file's decompression
// lifecycle: bind a compressor.Compressor to a gpu.Device, submit a
// frame's spatial blocks in GPU-sized chunks, and hand each chunk's
// readback to a decode.Decoder until the frame's grids are assembled.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/zibravdb/zibravdb-go/attr"
	"github.com/zibravdb/zibravdb-go/block"
	"github.com/zibravdb/zibravdb-go/compressor"
	"github.com/zibravdb/zibravdb-go/decode"
	"github.com/zibravdb/zibravdb-go/gpu"
	"github.com/zibravdb/zibravdb-go/grid"
)

// bufferUsage is the usage flag set every orchestrator-allocated
// decompression buffer needs: the compressor writes into it, and the
// orchestrator reads it back via a blocking ReadBuffer.
func bufferUsage() gputypes.BufferUsage {
	return gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst
}

// State is one file handle's position in the Uninit -> Ready -> Bound
// lifecycle.
type State int

const (
	Uninit State = iota
	Ready
	Bound
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Bound:
		return "bound"
	default:
		return "uninit"
	}
}

var (
	// ErrNotFound is returned for a missing file or a frame index the
	// bound decompressor's format mapper has no record for.
	ErrNotFound = errors.New("orchestrator: not found")

	// ErrUnsupported is returned when the GPU device cannot be created.
	ErrUnsupported = errors.New("orchestrator: unsupported")

	// ErrOutOfBounds is returned when a requested frame index falls
	// outside the bound file's frame range.
	ErrOutOfBounds = errors.New("orchestrator: frame index out of bounds")

	// ErrInternal is returned when an operation is called from the wrong
	// state (e.g. decompressFrame before registerDecompressor).
	ErrInternal = errors.New("orchestrator: invalid operation for current state")
)

// Orchestrator is one file handle's state machine. Not safe for
// concurrent use; callers serialize operations on a handle themselves
// (the process-wide Manager is what actually guards concurrent access
// across file handles).
type Orchestrator struct {
	state State

	device    gpu.Device
	comp      compressor.Compressor
	mapper    compressor.FormatMapper
	buffers   []gpu.Buffer
	resources compressor.ResourceSizes
}

// New returns an Orchestrator in the Uninit state.
func New() *Orchestrator {
	return &Orchestrator{state: Uninit}
}

// State returns the orchestrator's current lifecycle state.
func (o *Orchestrator) State() State {
	return o.state
}

// Device returns the GPU device acquired by Initialize, or nil before
// Initialize or after Release. Callers constructing a compressor.Compressor
// that needs to write into the orchestrator's buffers (e.g. a reference
// software compressor in tests) use this to share the same device.
func (o *Orchestrator) Device() gpu.Device {
	return o.device
}

// Initialize acquires the GPU device. Fails with ErrUnsupported if no
// backend is available and cfg did not force the software device.
func (o *Orchestrator) Initialize(cfg gpu.Config) error {
	if o.state != Uninit {
		return ErrInternal
	}
	device, err := gpu.NewFactory(cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	o.device = device
	o.state = Ready
	return nil
}

// RegisterDecompressor initializes comp, sizes and (re-)allocates the
// three GPU buffers its ResourcesRequirements describes, registers them,
// and fetches its FormatMapper. Any previously bound compressor and
// buffers are released first, in order.
func (o *Orchestrator) RegisterDecompressor(ctx context.Context, comp compressor.Compressor) error {
	if o.state != Ready && o.state != Bound {
		return ErrInternal
	}
	if o.state == Bound {
		o.releaseBound()
	}

	if err := comp.Initialize(ctx); err != nil {
		return err
	}
	sizes, err := comp.ResourcesRequirements()
	if err != nil {
		return err
	}

	spatialInfo, err := o.device.CreateBuffer(gpu.BufferDescriptor{Label: "spatial-block-info", Size: sizes.SpatialBlockInfoBytes, Usage: bufferUsage()})
	if err != nil {
		return err
	}
	channelInfo, err := o.device.CreateBuffer(gpu.BufferDescriptor{Label: "channel-block-info", Size: sizes.ChannelBlockInfoBytes, Usage: bufferUsage()})
	if err != nil {
		o.device.ReleaseBuffer(spatialInfo)
		return err
	}
	channelData, err := o.device.CreateBuffer(gpu.BufferDescriptor{Label: "channel-block-data", Size: sizes.ChannelBlockDataBytes, Usage: bufferUsage()})
	if err != nil {
		o.device.ReleaseBuffer(spatialInfo)
		o.device.ReleaseBuffer(channelInfo)
		return err
	}

	buffers := []gpu.Buffer{spatialInfo, channelInfo, channelData}
	if err := comp.RegisterResources(buffers...); err != nil {
		for _, b := range buffers {
			o.device.ReleaseBuffer(b)
		}
		return err
	}

	mapper, err := comp.FormatMapper()
	if err != nil {
		for _, b := range buffers {
			o.device.ReleaseBuffer(b)
		}
		return err
	}

	o.comp = comp
	o.mapper = mapper
	o.buffers = buffers
	o.resources = sizes
	o.state = Bound
	return nil
}

// FetchFrameContainer returns the opaque per-frame handle for idx.
func (o *Orchestrator) FetchFrameContainer(idx int) (compressor.FrameContainer, error) {
	if o.state != Bound {
		return nil, ErrInternal
	}
	start, end := o.mapper.FrameRange()
	if idx < start || idx > end {
		return nil, ErrOutOfBounds
	}
	fc, err := o.mapper.FetchFrameContainer(idx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return fc, nil
}

// DecompressFrame submits fc's spatial blocks in chunks sized to the
// bound compressor's advertised per-submit limit, blocks on readback
// after every submit, and assembles the resulting grids. Chunk N's
// readback always completes before chunk N+1 is submitted; the GPU
// buffers are reused across chunks.
func (o *Orchestrator) DecompressFrame(ctx context.Context, fc compressor.FrameContainer) ([]*grid.Grid, error) {
	if o.state != Bound {
		return nil, ErrInternal
	}

	info := fc.Info()
	descriptors, err := shuffleDescriptors(fc.Metadata())
	if err != nil {
		return nil, err
	}
	channelTransform := make(map[string]block.Transform, len(info.Channels))
	for i, name := range info.Channels {
		if i < len(info.ChannelTransforms) {
			channelTransform[name] = info.ChannelTransforms[i]
		}
	}
	decoder := decode.NewDecoder(descriptors, info.Channels, channelTransform, info.EncodingOffsetVoxels)

	if err := o.device.BeginRecording(); err != nil {
		return nil, err
	}

	maxPerSubmit := o.resources.MaxSpatialBlocksPerSubmit
	if maxPerSubmit <= 0 {
		maxPerSubmit = info.SpatialBlockCount
	}
	for first := 0; first < info.SpatialBlockCount; first += maxPerSubmit {
		count := maxPerSubmit
		if first+count > info.SpatialBlockCount {
			count = info.SpatialBlockCount - first
		}

		feedback, err := o.comp.DecompressFrame(compressor.DecompressFrameDesc{
			Frame:                  fc,
			FirstSpatialBlockIndex: first,
			SpatialBlocksCount:     count,
		})
		if err != nil {
			o.device.EndRecording()
			return nil, err
		}

		spatialBytes := make([]byte, count*compressor.SpatialBlockInfoRecordBytes)
		if err := o.device.ReadBuffer(ctx, spatialBytes, o.buffers[0], 0, len(spatialBytes)); err != nil {
			o.device.EndRecording()
			return nil, err
		}
		channelBytes := make([]byte, feedback.ChannelBlocksCount*compressor.ChannelBlockDataRecordBytes)
		if err := o.device.ReadBuffer(ctx, channelBytes, o.buffers[2], 0, len(channelBytes)); err != nil {
			o.device.EndRecording()
			return nil, err
		}

		chunk := decode.ChunkData{
			SpatialBlocks: compressor.ParseSpatialBlockInfo(spatialBytes),
			ChannelBlocks: compressor.ParseChannelBlockData(channelBytes),
		}
		if err := decoder.Accept(chunk); err != nil {
			o.device.EndRecording()
			return nil, err
		}

		o.device.GarbageCollect()
	}

	if err := o.device.EndRecording(); err != nil {
		return nil, err
	}

	return decoder.Finish()
}

// Release tears the handle down: decoder state is owned by callers of
// DecompressFrame, so this releases (in order) the bound compressor, the
// GPU buffers, then the device. Idempotent.
func (o *Orchestrator) Release() error {
	if o.state == Bound {
		o.releaseBound()
	}
	o.device = nil
	o.state = Uninit
	return nil
}

func (o *Orchestrator) releaseBound() {
	if o.comp != nil {
		o.comp.Release()
	}
	for _, b := range o.buffers {
		o.device.ReleaseBuffer(b)
	}
	o.comp = nil
	o.mapper = nil
	o.buffers = nil
	o.resources = compressor.ResourceSizes{}
	o.state = Ready
}

func shuffleDescriptors(metadata map[string]string) ([]decode.Descriptor, error) {
	payload, ok := metadata[attr.ShuffleKey()]
	if !ok {
		return nil, nil
	}
	return attr.DecodeShuffle(payload)
}
