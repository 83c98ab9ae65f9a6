package block

// Box3i is an axis-aligned integer bounding box expressed in block
// coordinates (not voxels): closed on the minimum corner, open on the
// maximum corner. A box is empty iff any min >= the corresponding max.
type Box3i struct {
	MinX, MinY, MinZ int32
	MaxX, MaxY, MaxZ int32
}

// EmptyBox3i returns a box with no volume, suitable as a union accumulator
// seed: the first Union with any real box replaces it.
func EmptyBox3i() Box3i {
	return Box3i{}
}

// IsEmpty reports whether the box encloses no volume.
func (b Box3i) IsEmpty() bool {
	return b.MinX >= b.MaxX || b.MinY >= b.MaxY || b.MinZ >= b.MaxZ
}

// Union returns the smallest box enclosing both b and o. An empty operand
// does not contribute its (meaningless) bounds to the result.
func (b Box3i) Union(o Box3i) Box3i {
	if b.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return b
	}
	return Box3i{
		MinX: minI32(b.MinX, o.MinX),
		MinY: minI32(b.MinY, o.MinY),
		MinZ: minI32(b.MinZ, o.MinZ),
		MaxX: maxI32(b.MaxX, o.MaxX),
		MaxY: maxI32(b.MaxY, o.MaxY),
		MaxZ: maxI32(b.MaxZ, o.MaxZ),
	}
}

// Intersect returns the largest box enclosed by both b and o. The result
// may be empty.
func (b Box3i) Intersect(o Box3i) Box3i {
	return Box3i{
		MinX: maxI32(b.MinX, o.MinX),
		MinY: maxI32(b.MinY, o.MinY),
		MinZ: maxI32(b.MinZ, o.MinZ),
		MaxX: minI32(b.MaxX, o.MaxX),
		MaxY: minI32(b.MaxY, o.MaxY),
		MaxZ: minI32(b.MaxZ, o.MaxZ),
	}
}

// Contains reports whether the block coordinate (x,y,z) lies in the box.
func (b Box3i) Contains(x, y, z int32) bool {
	return x >= b.MinX && x < b.MaxX &&
		y >= b.MinY && y < b.MaxY &&
		z >= b.MinZ && z < b.MaxZ
}

// Volume returns the product of side lengths, or 0 for an empty box.
func (b Box3i) Volume() int64 {
	if b.IsEmpty() {
		return 0
	}
	return int64(b.MaxX-b.MinX) * int64(b.MaxY-b.MinY) * int64(b.MaxZ-b.MinZ)
}

// Translate shifts the box by (dx,dy,dz) block units.
func (b Box3i) Translate(dx, dy, dz int32) Box3i {
	return Box3i{
		MinX: b.MinX + dx, MinY: b.MinY + dy, MinZ: b.MinZ + dz,
		MaxX: b.MaxX + dx, MaxY: b.MaxY + dy, MaxZ: b.MaxZ + dz,
	}
}

func minI32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func maxI32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
