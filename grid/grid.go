// Package grid implements the borrowed sparse-volume handle consumed by
// the encoder and produced by the decoder: a named, typed collection of
// active leaves addressed by block-aligned voxel origin.
package grid

import (
	"math"

	"github.com/zibravdb/zibravdb-go/block"
)

// VoxelType tags whether a grid carries one float per voxel (Scalar) or
// three (Vec3, split into .x/.y/.z channels by the encoder).
type VoxelType int

const (
	Scalar VoxelType = iota
	Vec3
)

// NumComponents returns 1 for Scalar, 3 for Vec3.
func (t VoxelType) NumComponents() int {
	if t == Vec3 {
		return 3
	}
	return 1
}

func (t VoxelType) String() string {
	switch t {
	case Vec3:
		return "vec3"
	default:
		return "scalar"
	}
}

// Leaf is one active block's payload. Component 0 holds the scalar value;
// Vec3 grids additionally populate components 1 and 2 (y, z).
type Leaf struct {
	// Origin is the leaf's minimum voxel coordinate; always a multiple of
	// block.Size on every axis.
	Origin     [3]int32
	Components [block.MaxVectorComponents]block.Block
}

// Grid is a borrowed sparse-volume handle. Leaves are addressed by their
// voxel-space origin; iteration order is insertion order, so encoder
// output is deterministic across runs given deterministic input order.
type Grid struct {
	Name      string
	Type      VoxelType
	Transform block.Transform

	leaves map[[3]int32]*Leaf
	order  [][3]int32
}

// New returns an empty grid with no active leaves.
func New(name string, voxelType VoxelType, transform block.Transform) *Grid {
	return &Grid{
		Name:      name,
		Type:      voxelType,
		Transform: transform,
		leaves:    make(map[[3]int32]*Leaf),
	}
}

// SetComponent stores the 512-voxel payload for one component (0 for
// scalar grids; 0/1/2 for x/y/z on vector grids) of the leaf at origin,
// allocating the leaf if this is its first populated component.
func (g *Grid) SetComponent(origin [3]int32, component int, values block.Block) {
	leaf, ok := g.leaves[origin]
	if !ok {
		leaf = &Leaf{Origin: origin}
		g.leaves[origin] = leaf
		g.order = append(g.order, origin)
	}
	leaf.Components[component] = values
}

// Leaf returns the leaf at origin, if one has been populated.
func (g *Grid) Leaf(origin [3]int32) (*Leaf, bool) {
	l, ok := g.leaves[origin]
	return l, ok
}

// ActiveLeaves returns every populated leaf, in the order its origin was
// first set.
func (g *Grid) ActiveLeaves() []*Leaf {
	out := make([]*Leaf, len(g.order))
	for i, origin := range g.order {
		out[i] = g.leaves[origin]
	}
	return out
}

// LeafCount returns the number of active leaves.
func (g *Grid) LeafCount() int {
	return len(g.order)
}

// VoxelSize returns a representative edge length of one voxel in world
// units, taken as the length of the transform's local-x basis vector.
// Grids built with a non-uniform or sheared transform still get a usable
// scalar for `match_voxel_size` comparisons, at the cost of precision.
func (g *Grid) VoxelSize() float32 {
	v := g.Transform.LinearApply([3]float32{1, 0, 0})
	sum := float64(v[0])*float64(v[0]) + float64(v[1])*float64(v[1]) + float64(v[2])*float64(v[2])
	return float32(math.Sqrt(sum))
}
