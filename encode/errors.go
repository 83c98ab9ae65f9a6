package encode

import "errors"

// ErrUnsupportedVoxelType is returned (with an empty frame) when a grid
// declares a VoxelType this encoder does not recognize.
var ErrUnsupportedVoxelType = errors.New("encode: grid has an unsupported voxel type")

// ErrNonUniformVoxelSize is returned when MatchVoxelSize is set and a
// grid's voxel size is not an integer ratio of the chosen origin grid's,
// so no exact box resample exists.
var ErrNonUniformVoxelSize = errors.New("encode: grid voxel size is not an integer ratio of the origin grid's")
