package encode

// Options configures Encoder.Encode.
type Options struct {
	// MatchVoxelSize, when true, selects the grid with the finest uniform
	// voxel scale as the origin grid and resamples every other grid into
	// its index space with a box sampler before encoding. When false,
	// grids are encoded as-is and grids[0] is treated as the origin for
	// metadata purposes only.
	MatchVoxelSize bool
}
