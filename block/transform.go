package block

import "math"

// Transform is a 4x4 row-major affine transform: M[row*4+col]. Points are
// column vectors, so translation lives in column 3 (indices 3, 7, 11) and
// Compose(a, b) applies b first, then a: (a.Compose(b)).Apply(v) ==
// a.Apply(b.Apply(v)).
type Transform [16]float32

// Identity returns the 4x4 identity transform.
func Identity() Transform {
	return Transform{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translation returns a pure translation transform.
func Translation(dx, dy, dz float32) Transform {
	t := Identity()
	t[3] = dx
	t[7] = dy
	t[11] = dz
	return t
}

// IsEmpty reports whether every component is within Epsilon of zero — the
// "absent data" sentinel the encoder/decoder must treat as identity.
func (t Transform) IsEmpty() bool {
	for _, v := range t {
		if !IsNearlyEqual(v, 0) {
			return false
		}
	}
	return true
}

// Normalized returns Identity() if t IsEmpty, else t unchanged.
func (t Transform) Normalized() Transform {
	if t.IsEmpty() {
		return Identity()
	}
	return t
}

// Compose returns a*b: applying the result to a vector is equivalent to
// applying b first, then a.
func (a Transform) Compose(b Transform) Transform {
	var r Transform
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[row*4+k] * b[k*4+col]
			}
			r[row*4+col] = sum
		}
	}
	return r
}

// Apply transforms a point (x,y,z) by t, including translation.
func (t Transform) Apply(v [3]float32) [3]float32 {
	ext := [4]float32{v[0], v[1], v[2], 1}
	var out [3]float32
	for row := 0; row < 3; row++ {
		var sum float32
		for k := 0; k < 4; k++ {
			sum += t[row*4+k] * ext[k]
		}
		out[row] = sum
	}
	return out
}

// LinearApply transforms a direction (x,y,z) by t's upper-left 3x3 block,
// ignoring translation — "T.linear" in the spec's transform-bookkeeping
// notation.
func (t Transform) LinearApply(v [3]float32) [3]float32 {
	var out [3]float32
	for row := 0; row < 3; row++ {
		var sum float32
		for k := 0; k < 3; k++ {
			sum += t[row*4+k] * v[k]
		}
		out[row] = sum
	}
	return out
}

// ShiftOrigin returns T' = T.Compose(Translation(T.LinearApply(shift))) —
// the transform-bookkeeping step both the encoder (shifting a grid's
// transform to compensate for normalizing the frame AABB to the origin)
// and the decoder (undoing that shift on assembly) perform.
func (t Transform) ShiftOrigin(shift [3]float32) Transform {
	delta := t.LinearApply(shift)
	return t.Compose(Translation(delta[0], delta[1], delta[2]))
}

// ScaleLinear returns t with its upper-left 3x3 (linear) block scaled
// uniformly by factor; translation is left unchanged. This is how a
// grid's index-to-world transform is adjusted when its voxel size
// changes by factor during resampling.
func (t Transform) ScaleLinear(factor float32) Transform {
	out := t
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			out[row*4+col] *= factor
		}
	}
	return out
}

// FloorEps floors x to the nearest integer, first nudging x upward by a
// single-ULP epsilon so that values that should land exactly on an integer
// boundary but drifted below it by accumulated transform error still round
// up to that boundary.
func FloorEps(x float32) int32 {
	return int32(math.Floor(float64(x) + float64(Epsilon)))
}

// CeilEps ceils x to the nearest integer, with the same epsilon
// compensation as FloorEps but nudging downward.
func CeilEps(x float32) int32 {
	return int32(math.Ceil(float64(x) - float64(Epsilon)))
}

// LeafToBlockBox converts a leaf's voxel-space bounds [voxelMin, voxelMax)
// to a block-aligned Box3i by applying FloorEps/CeilEps to the
// coordinates divided by the block size.
func LeafToBlockBox(voxelMin, voxelMax [3]float32) Box3i {
	return Box3i{
		MinX: FloorEps(voxelMin[0] / Size),
		MinY: FloorEps(voxelMin[1] / Size),
		MinZ: FloorEps(voxelMin[2] / Size),
		MaxX: CeilEps(voxelMax[0] / Size),
		MaxY: CeilEps(voxelMax[1] / Size),
		MaxZ: CeilEps(voxelMax[2] / Size),
	}
}
