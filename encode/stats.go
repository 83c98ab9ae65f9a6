package encode

import (
	"github.com/zibravdb/zibravdb-go/block"
	"github.com/zibravdb/zibravdb-go/frame"
)

// blockContribution is one channel block's contribution to its channel's
// frame-level statistics.
type blockContribution struct {
	min, max              float32
	sumPositive           float32
	sumNegative           float32
}

// computeBlockContribution folds a single channel block's 512 voxels into
// its min/max and positive/negative sums. Every voxel in a present channel
// block counts, whether or not its value happens to be zero.
func computeBlockContribution(b *block.Block) blockContribution {
	c := blockContribution{min: b[0], max: b[0]}
	for _, v := range b {
		if v < c.min {
			c.min = v
		}
		if v > c.max {
			c.max = v
		}
		switch {
		case v > 0:
			c.sumPositive += v
		case v < 0:
			c.sumNegative += v
		}
	}
	return c
}

// rollupChannelStats combines per-block contributions into the channel's
// frame-level statistics using the two-stage mean: each block's
// contribution to the mean is its own sum divided by 512 voxels, and the
// frame-level mean is the average of those per-block contributions across
// activeBlockCount blocks — not a single sum-of-all-voxels division.
func rollupChannelStats(contribs []blockContribution) frame.ChannelStats {
	if len(contribs) == 0 {
		return frame.ChannelStats{}
	}

	stats := frame.ChannelStats{
		Min: contribs[0].min,
		Max: contribs[0].max,
	}
	var meanPositiveSum, meanNegativeSum float32
	for _, c := range contribs {
		if c.min < stats.Min {
			stats.Min = c.min
		}
		if c.max > stats.Max {
			stats.Max = c.max
		}
		meanPositiveSum += c.sumPositive / float32(block.VoxelsPerBlock)
		meanNegativeSum += c.sumNegative / float32(block.VoxelsPerBlock)
	}

	n := float32(len(contribs))
	stats.MeanPositive = meanPositiveSum / n
	stats.MeanNegative = meanNegativeSum / n
	stats.VoxelCount = int64(len(contribs)) * block.VoxelsPerBlock
	return stats
}
