// Package decode implements the decoder: chunk-at-a-time sparse frame
// data in, assembled grids out.
package decode

import (
	"sync"

	"github.com/zibravdb/zibravdb-go/block"
	"github.com/zibravdb/zibravdb-go/channel"
	"github.com/zibravdb/zibravdb-go/frame"
	"github.com/zibravdb/zibravdb-go/grid"
	"github.com/zibravdb/zibravdb-go/internal/parallel"
)

// Descriptor is one "shuffle entry": the output grid it produces and the
// source channel names (up to one per voxel component) that feed it.
type Descriptor struct {
	Name      string
	VoxelType grid.VoxelType
	Sources   [block.MaxVectorComponents]string
}

// ChunkData is one orchestrator-delivered chunk: the spatial blocks it
// covers (chunk-local ChannelBlocksOffset indexing into ChannelBlocks) and
// the narrow channel-block payloads themselves.
type ChunkData struct {
	SpatialBlocks []frame.SpatialBlockDescriptor
	ChannelBlocks []block.NarrowBlock
}

type fanoutTarget struct {
	descriptorIndex int
	component       int
}

type leafBuilder struct {
	origin [3]int32
	narrow [block.MaxVectorComponents]*block.NarrowBlock
}

// Decoder accumulates chunk data across repeated Accept calls and, once
// every chunk has arrived, assembles the requested output grids in Finish.
type Decoder struct {
	descriptors      []Descriptor
	sourceNames      []string
	channelTransform map[string]block.Transform
	offsetVoxels     [3]int32

	fanout map[string][]fanoutTarget

	mu      sync.Mutex
	pending []map[[3]int32]*leafBuilder // indexed by descriptor index
}

// NewDecoder builds a Decoder for descriptors. sourceNames gives the
// channel name at each bit position (as in the container's channel list);
// channelTransform gives each source channel's stored transform;
// offsetVoxels is the frame's encoding-offset metadata, used to translate
// installed grid transforms back to world space.
func NewDecoder(descriptors []Descriptor, sourceNames []string, channelTransform map[string]block.Transform, offsetVoxels [3]int32) *Decoder {
	d := &Decoder{
		descriptors:      descriptors,
		sourceNames:      sourceNames,
		channelTransform: channelTransform,
		offsetVoxels:     offsetVoxels,
		fanout:           make(map[string][]fanoutTarget),
		pending:          make([]map[[3]int32]*leafBuilder, len(descriptors)),
	}
	for i := range d.pending {
		d.pending[i] = make(map[[3]int32]*leafBuilder)
	}
	for di, desc := range descriptors {
		for c := 0; c < desc.VoxelType.NumComponents(); c++ {
			name := desc.Sources[c]
			if name == "" {
				continue
			}
			d.fanout[name] = append(d.fanout[name], fanoutTarget{descriptorIndex: di, component: c})
		}
	}
	return d
}

// Accept records one orchestrator chunk's spatial/channel block data
// against every output descriptor it feeds. Safe to call once per chunk,
// in ascending chunk order; chunks do not need to arrive on the same
// goroutine they were created on, but Accept itself is not safe to call
// concurrently with another Accept on the same Decoder.
func (d *Decoder) Accept(chunk ChunkData) error {
	for _, sb := range chunk.SpatialBlocks {
		for bit := 0; bit < block.MaxChannels; bit++ {
			if !sb.Mask.Has(bit) {
				continue
			}
			if bit >= len(d.sourceNames) {
				continue
			}
			name := d.sourceNames[bit]
			targets, ok := d.fanout[name]
			if !ok {
				continue
			}
			activeOffset, _ := channel.ActiveOffset(sb.Mask, bit)
			idx := sb.ChannelBlocksOffset + activeOffset
			if idx < 0 || idx >= len(chunk.ChannelBlocks) {
				continue
			}
			narrow := chunk.ChannelBlocks[idx]

			origin := [3]int32{sb.X * block.Size, sb.Y * block.Size, sb.Z * block.Size}
			for _, tgt := range targets {
				lb := d.leafBuilderFor(tgt.descriptorIndex, origin)
				lb.narrow[tgt.component] = &narrow
			}
		}
	}
	return nil
}

func (d *Decoder) leafBuilderFor(descriptorIndex int, origin [3]int32) *leafBuilder {
	m := d.pending[descriptorIndex]
	lb, ok := m[origin]
	if !ok {
		lb = &leafBuilder{origin: origin}
		m[origin] = lb
	}
	return lb
}

// Finish assembles every descriptor's output grid from the chunks handed
// to Accept so far: half-to-float32 conversion, zero-fill for components
// a leaf never received, and transform sanitize + translate-back.
func (d *Decoder) Finish() ([]*grid.Grid, error) {
	out := make([]*grid.Grid, len(d.descriptors))

	for di, desc := range d.descriptors {
		xform := d.resolveTransform(desc)
		g := grid.New(desc.Name, desc.VoxelType, xform)
		out[di] = g

		origins := make([][3]int32, 0, len(d.pending[di]))
		for origin := range d.pending[di] {
			origins = append(origins, origin)
		}

		var mu sync.Mutex
		parallel.ForEntries(origins, func(origin [3]int32) {
			lb := d.pending[di][origin]
			var components [block.MaxVectorComponents]block.Block
			for c := 0; c < desc.VoxelType.NumComponents(); c++ {
				if lb.narrow[c] != nil {
					components[c] = lb.narrow[c].ToWide()
				}
			}
			mu.Lock()
			for c := 0; c < desc.VoxelType.NumComponents(); c++ {
				g.SetComponent(origin, c, components[c])
			}
			mu.Unlock()
		})
	}

	return out, nil
}

// resolveTransform picks the first populated source channel's stored
// transform for desc, sanitizes an empty transform to identity, and
// translates it back by the frame's encoding offset.
func (d *Decoder) resolveTransform(desc Descriptor) block.Transform {
	var t block.Transform
	for c := 0; c < desc.VoxelType.NumComponents(); c++ {
		name := desc.Sources[c]
		if name == "" {
			continue
		}
		if found, ok := d.channelTransform[name]; ok {
			t = found
			break
		}
	}
	t = t.Normalized()
	negShift := [3]float32{
		-float32(d.offsetVoxels[0]),
		-float32(d.offsetVoxels[1]),
		-float32(d.offsetVoxels[2]),
	}
	return t.ShiftOrigin(negShift)
}
