package attr

import (
	"encoding/json"
	"fmt"
)

// EncodeMetadata serializes the encoder's origin offset (in voxels) as the
// houdiniDecodeMetadata attribute value.
func EncodeMetadata(offsetVoxels [3]int32) (string, error) {
	b, err := json.Marshal(offsetVoxels)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeMetadata parses the houdiniDecodeMetadata attribute value back into
// an origin offset.
func DecodeMetadata(payload string) ([3]int32, error) {
	var offset [3]int32
	if err := json.Unmarshal([]byte(payload), &offset); err != nil {
		return offset, fmt.Errorf("attr: decode houdiniDecodeMetadata: %w", err)
	}
	return offset, nil
}
