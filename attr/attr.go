// Package attr implements the frame container's flat string-keyed
// attribute dictionary: the V2 typed JSON encoding, a V1 read-only
// fallback, and the well-known key helpers the rest of the pipeline uses
// to tag detail/primitive/visualization attributes, the channel shuffle
// table, and the decode-time origin offset.
package attr

import "fmt"

// StorageKind identifies the wire type of an attribute's values.
type StorageKind int

const (
	StorageBool StorageKind = iota
	StorageUint8
	StorageInt8
	StorageInt16
	StorageInt32
	StorageInt64
	StorageFloat16
	StorageFloat32
	StorageFloat64
	StorageString
	StorageDict
)

func (k StorageKind) String() string {
	switch k {
	case StorageBool:
		return "bool"
	case StorageUint8:
		return "uint8"
	case StorageInt8:
		return "int8"
	case StorageInt16:
		return "int16"
	case StorageInt32:
		return "int32"
	case StorageInt64:
		return "int64"
	case StorageFloat16:
		return "float16"
	case StorageFloat32:
		return "float32"
	case StorageFloat64:
		return "float64"
	case StorageString:
		return "string"
	case StorageDict:
		return "dict"
	default:
		return fmt.Sprintf("StorageKind(%d)", int(k))
	}
}

// Value is one decoded attribute: its storage kind and its values, already
// converted to their natural Go representation (bool, int64, float64,
// string, or map[string]Value for a dict).
type Value struct {
	Type   StorageKind
	Values []any
}

// DetailKey is the frame-level attribute dictionary key.
func DetailKey() string { return "houdiniDetailAttributesV2" }

// PrimitiveKey is the per-grid attribute dictionary key.
func PrimitiveKey(grid string) string { return "houdiniPrimitiveAttributesV2_" + grid }

// VisualizationKey is the per-grid display-hint key. hint is one of
// "mode", "iso", "density", "lod".
func VisualizationKey(grid, hint string) string {
	return "houdiniVisualizationAttributes_" + grid + "_" + hint
}

// ShuffleKey is the channel-shuffle table key.
func ShuffleKey() string { return "chShuffle" }

// DecodeMetadataKey is the encoder origin-offset key.
func DecodeMetadataKey() string { return "houdiniDecodeMetadata" }
