// Package block defines the fixed-size voxel block and the block-space
// bounding box and affine transform types shared by the encoder, decoder,
// and orchestrator.
package block

import "github.com/zibravdb/zibravdb-go/internal/half"

const (
	// Size is the side length, in voxels, of one sparse block.
	Size = 8

	// VoxelsPerBlock is the number of voxels in one sparse block (Size^3).
	VoxelsPerBlock = Size * Size * Size

	// MaxChannels is the number of channels a channel mask can address.
	MaxChannels = 8

	// MaxVectorComponents is the number of components a single grid leaf
	// can carry (3, for a vec3 grid's x/y/z).
	MaxVectorComponents = 3

	// Epsilon is float32 machine epsilon (one ULP at 1.0): the tolerance
	// used by IsNearlyEqual, the FloorEps/CeilEps nudge, and the transform
	// normalization check.
	Epsilon = 1.1920929e-7
)

// Block is the wide (float32) payload for one (spatial block, channel)
// pair: exactly 512 voxels, logically a cube of side 8.
type Block [VoxelsPerBlock]float32

// NarrowBlock is the GPU-transfer payload: the same 512 voxels stored as
// IEEE 754 binary16. Conversion to Block happens once, at assembly time.
type NarrowBlock [VoxelsPerBlock]half.Half

// ToNarrow converts b to its half-precision GPU-transfer form.
func (b *Block) ToNarrow() NarrowBlock {
	var n NarrowBlock
	for i, v := range b {
		n[i] = half.FromFloat32(v)
	}
	return n
}

// ToWide converts a narrow (half-precision) block back to float32.
func (n *NarrowBlock) ToWide() Block {
	var b Block
	for i, h := range n {
		b[i] = h.Float32()
	}
	return b
}

// IsNearlyEqual reports whether a and b differ by less than Epsilon.
func IsNearlyEqual(a, b float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < Epsilon
}
