package attr

import (
	"encoding/json"
	"fmt"

	"github.com/zibravdb/zibravdb-go/block"
	"github.com/zibravdb/zibravdb-go/decode"
	"github.com/zibravdb/zibravdb-go/grid"
)

// shuffleEntry is the chShuffle wire shape: output name, voxel type, and up
// to block.MaxVectorComponents source channel names (empty string for an
// unused slot).
type shuffleEntry struct {
	Name      string                                    `json:"name"`
	VoxelType string                                    `json:"voxelType"`
	ChSource  [block.MaxVectorComponents]string          `json:"chSource"`
}

func voxelTypeTag(t grid.VoxelType) string {
	if t == grid.Vec3 {
		return "float3"
	}
	return "scalar"
}

func parseVoxelTypeTag(tag string) (grid.VoxelType, error) {
	switch tag {
	case "scalar":
		return grid.Scalar, nil
	case "float3":
		return grid.Vec3, nil
	default:
		return 0, fmt.Errorf("attr: unknown voxel type tag %q", tag)
	}
}

// EncodeShuffle serializes descriptors as the chShuffle attribute value.
func EncodeShuffle(descriptors []decode.Descriptor) (string, error) {
	entries := make([]shuffleEntry, len(descriptors))
	for i, d := range descriptors {
		entries[i] = shuffleEntry{
			Name:      d.Name,
			VoxelType: voxelTypeTag(d.VoxelType),
			ChSource:  d.Sources,
		}
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeShuffle parses the chShuffle attribute value back into descriptors.
func DecodeShuffle(payload string) ([]decode.Descriptor, error) {
	var entries []shuffleEntry
	if err := json.Unmarshal([]byte(payload), &entries); err != nil {
		return nil, fmt.Errorf("attr: decode chShuffle: %w", err)
	}
	out := make([]decode.Descriptor, len(entries))
	for i, e := range entries {
		voxelType, err := parseVoxelTypeTag(e.VoxelType)
		if err != nil {
			return nil, err
		}
		out[i] = decode.Descriptor{Name: e.Name, VoxelType: voxelType, Sources: e.ChSource}
	}
	return out, nil
}
