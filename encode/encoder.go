// Package encode implements the encoder: grids in, a sparse frame out.
package encode

import (
	"github.com/zibravdb/zibravdb-go/block"
	"github.com/zibravdb/zibravdb-go/channel"
	"github.com/zibravdb/zibravdb-go/frame"
	"github.com/zibravdb/zibravdb-go/grid"
	"github.com/zibravdb/zibravdb-go/internal/parallel"
	"github.com/zibravdb/zibravdb-go/resample"
)

// Encoder turns an ordered sequence of grids into a SparseFrame.
type Encoder struct {
	opts Options
}

// New returns an Encoder configured with opts.
func New(opts Options) *Encoder {
	return &Encoder{opts: opts}
}

// channelSource records, for one assigned channel bit, which grid and
// which of its components (0 for scalar, 0/1/2 for vec3 x/y/z) feeds it.
type channelSource struct {
	name      string
	transform block.Transform
	gridIndex int
	component int
}

// spatialEntry accumulates one sparse block's channel payloads during
// construction, before ChannelBlocksOffset is known.
type spatialEntry struct {
	origin      [3]int32
	mask        channel.Mask
	channelLeaf [block.MaxChannels]*block.Block
}

// Encode builds a SparseFrame from grids. An empty input, or input with no
// active voxels, yields frame.Empty(). A grid with an unrecognized
// VoxelType yields frame.Empty() and ErrUnsupportedVoxelType.
func (e *Encoder) Encode(grids []*grid.Grid) (*frame.SparseFrame, error) {
	if len(grids) == 0 {
		return frame.Empty(), nil
	}
	for _, g := range grids {
		if g.Type != grid.Scalar && g.Type != grid.Vec3 {
			return frame.Empty(), ErrUnsupportedVoxelType
		}
	}

	working, err := e.prepareGrids(grids)
	if err != nil {
		return frame.Empty(), err
	}

	table := channel.NewTable()
	var sources []channelSource
	for gi, g := range working {
		switch g.Type {
		case grid.Scalar:
			if _, err := table.Add(g.Name); err != nil {
				return frame.Empty(), err
			}
			sources = append(sources, channelSource{name: g.Name, transform: g.Transform, gridIndex: gi, component: 0})
		case grid.Vec3:
			for c, suffix := range [3]string{"x", "y", "z"} {
				name := g.Name + "." + suffix
				if _, err := table.Add(name); err != nil {
					return frame.Empty(), err
				}
				sources = append(sources, channelSource{name: name, transform: g.Transform, gridIndex: gi, component: c})
			}
		}
	}

	entries := make(map[[3]int32]*spatialEntry)
	var order [][3]int32
	totalAABB := block.EmptyBox3i()

	for bit, src := range sources {
		g := working[src.gridIndex]
		for _, leaf := range g.ActiveLeaves() {
			blockOrigin := [3]int32{
				leaf.Origin[0] / block.Size,
				leaf.Origin[1] / block.Size,
				leaf.Origin[2] / block.Size,
			}
			entry, ok := entries[blockOrigin]
			if !ok {
				entry = &spatialEntry{origin: blockOrigin}
				entries[blockOrigin] = entry
				order = append(order, blockOrigin)
			}
			entry.mask = entry.mask.Set(bit)
			entry.channelLeaf[bit] = &leaf.Components[src.component]

			totalAABB = totalAABB.Union(block.Box3i{
				MinX: blockOrigin[0], MinY: blockOrigin[1], MinZ: blockOrigin[2],
				MaxX: blockOrigin[0] + 1, MaxY: blockOrigin[1] + 1, MaxZ: blockOrigin[2] + 1,
			})
		}
	}

	if len(order) == 0 {
		return frame.Empty(), nil
	}

	offsets := make([]int, len(order))
	running := 0
	for i, origin := range order {
		offsets[i] = running
		running += channel.Popcount(entries[origin].mask)
	}
	totalChannelBlocks := running

	shift := [3]int32{totalAABB.MinX, totalAABB.MinY, totalAABB.MinZ}
	shiftVoxels := [3]float32{
		float32(shift[0]) * block.Size,
		float32(shift[1]) * block.Size,
		float32(shift[2]) * block.Size,
	}

	spatialBlocks := make([]frame.SpatialBlockDescriptor, len(order))
	channelBlocks := make([]block.Block, totalChannelBlocks)
	channelBlockChannelIndex := make([]uint8, totalChannelBlocks)

	contribs := make([][]blockContribution, len(sources))
	present := make([][]bool, len(sources))
	for ci := range sources {
		contribs[ci] = make([]blockContribution, len(order))
		present[ci] = make([]bool, len(order))
	}

	parallel.For(len(order), func(idx int) {
		origin := order[idx]
		entry := entries[origin]
		off := offsets[idx]

		for bit := range sources {
			if !entry.mask.Has(bit) {
				continue
			}
			activeOffset, _ := channel.ActiveOffset(entry.mask, bit)
			blk := *entry.channelLeaf[bit]
			channelBlocks[off+activeOffset] = blk
			channelBlockChannelIndex[off+activeOffset] = uint8(bit)
			contribs[bit][idx] = computeBlockContribution(&blk)
			present[bit][idx] = true
		}

		spatialBlocks[idx] = frame.SpatialBlockDescriptor{
			X:                   origin[0] - shift[0],
			Y:                   origin[1] - shift[1],
			Z:                   origin[2] - shift[2],
			Mask:                entry.mask,
			ChannelBlocksOffset: off,
		}
	})

	channels := make([]frame.ChannelDescriptor, len(sources))
	for bit, src := range sources {
		var channelContribs []blockContribution
		for idx := range order {
			if present[bit][idx] {
				channelContribs = append(channelContribs, contribs[bit][idx])
			}
		}
		channels[bit] = frame.ChannelDescriptor{
			Name:      src.name,
			Transform: src.transform.ShiftOrigin(shiftVoxels),
			Stats:     rollupChannelStats(channelContribs),
		}
	}

	return &frame.SparseFrame{
		AABB:                     totalAABB.Translate(-shift[0], -shift[1], -shift[2]),
		Channels:                 channels,
		SpatialBlocks:            spatialBlocks,
		ChannelBlocks:            channelBlocks,
		ChannelBlockChannelIndex: channelBlockChannelIndex,
		EncodingOffsetVoxels:     shiftVoxels32(shiftVoxels),
	}, nil
}

func shiftVoxels32(v [3]float32) [3]int32 {
	return [3]int32{int32(v[0]), int32(v[1]), int32(v[2])}
}

// prepareGrids selects the origin grid (when MatchVoxelSize is set) and
// resamples every other grid into its index space.
func (e *Encoder) prepareGrids(grids []*grid.Grid) ([]*grid.Grid, error) {
	if !e.opts.MatchVoxelSize {
		return grids, nil
	}

	originIdx := 0
	for i, g := range grids {
		if g.VoxelSize() < grids[originIdx].VoxelSize() {
			originIdx = i
		}
	}
	originVoxelSize := grids[originIdx].VoxelSize()

	out := make([]*grid.Grid, len(grids))
	err := parallel.ForWithError(len(grids), func(i int) error {
		if i == originIdx {
			out[i] = grids[i]
			return nil
		}
		resampled, err := resample.BoxSample(grids[i], originVoxelSize)
		if err == resample.ErrNonIntegerRatio {
			return ErrNonUniformVoxelSize
		}
		out[i] = resampled
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
