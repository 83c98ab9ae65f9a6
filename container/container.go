// Package container defines the on-disk sequence container: decoder
// version, sequence info, playback record, per-frame metadata dictionaries
// and opaque frame byte blobs. This module never interprets a frame blob's
// contents except through the compressor.Compressor collaborator.
package container

import (
	"errors"

	"github.com/zibravdb/zibravdb-go/block"
)

// FrameInfo is the per-frame header a FormatMapper hands the orchestrator:
// enough to size GPU buffers and build a decode.Decoder without touching
// the frame's opaque byte blob. Channels, ChannelTransforms and
// EncodingOffsetVoxels are parallel/paired with the per-channel data the
// decoder's fan-out and transform sanitize-and-translate step need.
type FrameInfo struct {
	ChannelsCount        int
	Channels             []string
	ChannelTransforms    []block.Transform
	SpatialBlockCount    int
	ChannelBlockCount    int
	AABBSize             [3]int32
	EncodingOffsetVoxels [3]int32
}

// SequenceInfo describes the whole sequence: a stable identifier, the union
// AABB across every frame, and the channel-name list every frame shares.
type SequenceInfo struct {
	UUID     string
	AABB     block.Box3i
	Channels []string
}

// Playback is the sequence's frame-rate/step record.
type Playback struct {
	FrameCount     int
	FramerateNum   int
	FramerateDenom int
	Increment      int
}

// FrameRecord is one frame's opaque compressed payload plus the metadata
// needed to locate and decode it, without this module ever looking inside
// Blob.
type FrameRecord struct {
	Index    int
	Blob     []byte
	Metadata map[string]string
	Info     FrameInfo
}

// File is the full decoded container: header fields plus an ordered set of
// frame records, indexed by FrameRecord.Index (not necessarily by slice
// position, since a sequence's valid frame range need not start at 0).
type File struct {
	DecoderVersion int32
	Info           SequenceInfo
	Playback       Playback
	Metadata       map[string]string
	Frames         []FrameRecord
}

// ErrFrameNotFound is returned by Frame when no record matches idx.
var ErrFrameNotFound = errors.New("container: frame not found")

// Frame returns the record for frame index idx.
func (f *File) Frame(idx int) (*FrameRecord, error) {
	for i := range f.Frames {
		if f.Frames[i].Index == idx {
			return &f.Frames[i], nil
		}
	}
	return nil, ErrFrameNotFound
}

// FrameRange returns the lowest and highest frame index present in f.
// The second return is false for an empty container.
func (f *File) FrameRange() (start, end int, ok bool) {
	if len(f.Frames) == 0 {
		return 0, 0, false
	}
	start, end = f.Frames[0].Index, f.Frames[0].Index
	for _, fr := range f.Frames[1:] {
		if fr.Index < start {
			start = fr.Index
		}
		if fr.Index > end {
			end = fr.Index
		}
	}
	return start, end, true
}
