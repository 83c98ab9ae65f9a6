// Package resample implements the box-filter resampler the encoder uses
// to bring every input grid into a common index space when
// Options.MatchVoxelSize is set.
package resample

import (
	"errors"

	"github.com/zibravdb/zibravdb-go/block"
	"github.com/zibravdb/zibravdb-go/grid"
)

// ErrNonIntegerRatio is returned when the source and target voxel sizes
// are not related by an integer factor in either direction, so no exact
// box-filter resampling is possible.
var ErrNonIntegerRatio = errors.New("resample: source and target voxel sizes are not an integer ratio")

// BoxSample resamples src onto a grid whose voxel size is targetVoxelSize,
// keeping src's name and world-space origin. When targetVoxelSize is
// coarser than src's own voxel size, each destination voxel is the average
// of the source voxels it covers (matching the teacher's 2x2 box-filter
// mipmap downsample, generalized to an arbitrary integer 3D ratio);  when
// finer, each source voxel's value is simply replicated across the
// destination voxels it covers.
func BoxSample(src *grid.Grid, targetVoxelSize float32) (*grid.Grid, error) {
	srcVoxelSize := src.VoxelSize()
	if srcVoxelSize <= 0 || targetVoxelSize <= 0 {
		return nil, ErrNonIntegerRatio
	}

	if block.IsNearlyEqual(srcVoxelSize, targetVoxelSize) {
		return src, nil
	}

	scale := targetVoxelSize / srcVoxelSize
	dstTransform := src.Transform.ScaleLinear(scale)

	if scale > 1 {
		ratio := roundRatio(scale)
		if ratio <= 0 {
			return nil, ErrNonIntegerRatio
		}
		return downsample(src, dstTransform, ratio)
	}

	ratio := roundRatio(1 / scale)
	if ratio <= 0 {
		return nil, ErrNonIntegerRatio
	}
	return upsample(src, dstTransform, ratio)
}

func roundRatio(f float32) int {
	r := int(f + 0.5)
	if !block.IsNearlyEqual(float32(r), f) {
		return 0
	}
	return r
}

// downsample averages ratio^3 source voxels into each destination voxel.
// Source leaves are grouped by the destination block they fall into;
// ragged groups (a destination block only partially covered by source
// data) still average over whatever source voxels are present.
func downsample(src *grid.Grid, dstTransform block.Transform, ratio int) (*grid.Grid, error) {
	dst := grid.New(src.Name, src.Type, dstTransform)
	sums := make(map[[3]int32]*downsampleAccum)

	for _, leaf := range src.ActiveLeaves() {
		for c := 0; c < src.Type.NumComponents(); c++ {
			for i := 0; i < block.VoxelsPerBlock; i++ {
				vx, vy, vz := unflattenIndex(i)
				wx := leaf.Origin[0] + vx
				wy := leaf.Origin[1] + vy
				wz := leaf.Origin[2] + vz

				dvx := floorDiv(wx, int32(ratio))
				dvy := floorDiv(wy, int32(ratio))
				dvz := floorDiv(wz, int32(ratio))

				dBlockOrigin := [3]int32{
					floorDiv(dvx, block.Size) * block.Size,
					floorDiv(dvy, block.Size) * block.Size,
					floorDiv(dvz, block.Size) * block.Size,
				}
				key := dBlockOrigin
				a, ok := sums[key]
				if !ok {
					a = newDownsampleAccum()
					sums[key] = a
				}
				li := flattenLocal(dvx-dBlockOrigin[0], dvy-dBlockOrigin[1], dvz-dBlockOrigin[2])
				a.sum[c][li] += leaf.Components[c][i]
				a.count[c][li]++
			}
		}
	}

	for origin, a := range sums {
		for c := 0; c < src.Type.NumComponents(); c++ {
			var b block.Block
			for i := 0; i < block.VoxelsPerBlock; i++ {
				if a.count[c][i] > 0 {
					b[i] = a.sum[c][i] / float32(a.count[c][i])
				}
			}
			dst.SetComponent(origin, c, b)
		}
	}
	return dst, nil
}

// upsample replicates each source voxel's value across ratio^3
// destination voxels.
func upsample(src *grid.Grid, dstTransform block.Transform, ratio int) (*grid.Grid, error) {
	dst := grid.New(src.Name, src.Type, dstTransform)
	targets := make(map[[3]int32]*[block.MaxVectorComponents]block.Block)

	for _, leaf := range src.ActiveLeaves() {
		for c := 0; c < src.Type.NumComponents(); c++ {
			for i := 0; i < block.VoxelsPerBlock; i++ {
				vx, vy, vz := unflattenIndex(i)
				sx := leaf.Origin[0] + vx
				sy := leaf.Origin[1] + vy
				sz := leaf.Origin[2] + vz
				val := leaf.Components[c][i]

				for dz := int32(0); dz < int32(ratio); dz++ {
					for dy := int32(0); dy < int32(ratio); dy++ {
						for dx := int32(0); dx < int32(ratio); dx++ {
							wx := sx*int32(ratio) + dx
							wy := sy*int32(ratio) + dy
							wz := sz*int32(ratio) + dz

							dBlockOrigin := [3]int32{
								floorDiv(wx, block.Size) * block.Size,
								floorDiv(wy, block.Size) * block.Size,
								floorDiv(wz, block.Size) * block.Size,
							}
							bufs, ok := targets[dBlockOrigin]
							if !ok {
								bufs = &[block.MaxVectorComponents]block.Block{}
								targets[dBlockOrigin] = bufs
							}
							li := flattenLocal(wx-dBlockOrigin[0], wy-dBlockOrigin[1], wz-dBlockOrigin[2])
							bufs[c][li] = val
						}
					}
				}
			}
		}
	}

	for origin, bufs := range targets {
		for c := 0; c < src.Type.NumComponents(); c++ {
			dst.SetComponent(origin, c, bufs[c])
		}
	}
	return dst, nil
}

type downsampleAccum struct {
	sum   [block.MaxVectorComponents]block.Block
	count [block.MaxVectorComponents][block.VoxelsPerBlock]int32
}

func newDownsampleAccum() *downsampleAccum {
	return &downsampleAccum{}
}

func unflattenIndex(i int) (x, y, z int32) {
	z = int32(i / (block.Size * block.Size))
	rem := i % (block.Size * block.Size)
	y = int32(rem / block.Size)
	x = int32(rem % block.Size)
	return
}

func flattenLocal(x, y, z int32) int {
	return int(z)*block.Size*block.Size + int(y)*block.Size + int(x)
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
