package attr

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
)

// Codec (de)serializes a frame's attribute dictionary through the V2 JSON
// scheme, falling back to the read-only V1 scheme for older payloads.
type Codec struct{}

type v2Entry struct {
	T int               `json:"t"`
	V []json.RawMessage `json:"v"`
}

// EncodeV2 serializes attrs into the V2 JSON wire format.
func (Codec) EncodeV2(attrs map[string]Value) (string, error) {
	out := make(map[string]v2Entry, len(attrs))
	for name, v := range attrs {
		raw, err := encodeValues(v)
		if err != nil {
			return "", fmt.Errorf("attr: encode %q: %w", name, err)
		}
		out[name] = v2Entry{T: int(v.Type), V: raw}
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func encodeValues(v Value) ([]json.RawMessage, error) {
	raw := make([]json.RawMessage, 0, len(v.Values))
	for _, val := range v.Values {
		var b []byte
		var err error
		switch v.Type {
		case StorageInt64:
			n, ok := val.(int64)
			if !ok {
				return nil, fmt.Errorf("int64 value has unexpected type %T", val)
			}
			b, err = json.Marshal(strconv.FormatInt(n, 10))
		case StorageDict:
			nested, ok := val.(map[string]Value)
			if !ok {
				return nil, fmt.Errorf("dict value has unexpected type %T", val)
			}
			inner, err2 := (Codec{}).EncodeV2(nested)
			if err2 != nil {
				return nil, err2
			}
			b, err = json.Marshal(inner)
		default:
			b, err = json.Marshal(val)
		}
		if err != nil {
			return nil, err
		}
		raw = append(raw, b)
	}
	return raw, nil
}

// Decode parses a frame's attribute dictionary, preferring the V2 scheme
// and falling back to V1 when the payload parses as a map of V1 entries.
// An attribute whose type tag is unrecognized, or whose values don't match
// its declared type, is skipped without failing the rest of the payload. A
// payload that isn't valid JSON at all is logged and ignored.
func (c Codec) Decode(payload string) map[string]Value {
	if payload == "" {
		return map[string]Value{}
	}

	var v2 map[string]v2Entry
	if err := json.Unmarshal([]byte(payload), &v2); err == nil {
		if result, ok := c.decodeV2(v2); ok {
			return result
		}
	}

	var v1 map[string]v1Entry
	if err := json.Unmarshal([]byte(payload), &v1); err == nil {
		return c.decodeV1(v1)
	}

	log.Printf("attr: malformed attribute payload ignored")
	return map[string]Value{}
}

func (c Codec) decodeV2(entries map[string]v2Entry) (map[string]Value, bool) {
	out := make(map[string]Value, len(entries))
	for name, e := range entries {
		kind := StorageKind(e.T)
		values, ok := decodeValues(kind, e.V, c)
		if !ok {
			continue
		}
		out[name] = Value{Type: kind, Values: values}
	}
	return out, true
}

func decodeValues(kind StorageKind, raw []json.RawMessage, c Codec) ([]any, bool) {
	values := make([]any, 0, len(raw))
	for _, r := range raw {
		switch kind {
		case StorageBool:
			var b bool
			if err := json.Unmarshal(r, &b); err != nil {
				return nil, false
			}
			values = append(values, b)
		case StorageUint8:
			var n int64
			if err := json.Unmarshal(r, &n); err != nil {
				return nil, false
			}
			// Preserved quirk: the V2 loader widens a stored byte through
			// a signed int8 path rather than zero-extending it, so values
			// >= 128 sign-extend here exactly as the original does.
			if n >= 128 {
				n -= 256
			}
			values = append(values, n)
		case StorageInt8, StorageInt16, StorageInt32:
			var n int64
			if err := json.Unmarshal(r, &n); err != nil {
				return nil, false
			}
			values = append(values, n)
		case StorageInt64:
			var s string
			if err := json.Unmarshal(r, &s); err != nil {
				return nil, false
			}
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, false
			}
			values = append(values, n)
		case StorageFloat16, StorageFloat32, StorageFloat64:
			var f float64
			if err := json.Unmarshal(r, &f); err != nil {
				return nil, false
			}
			values = append(values, f)
		case StorageString:
			var s string
			if err := json.Unmarshal(r, &s); err != nil {
				return nil, false
			}
			values = append(values, s)
		case StorageDict:
			var inner string
			if err := json.Unmarshal(r, &inner); err != nil {
				return nil, false
			}
			values = append(values, c.Decode(inner))
		default:
			return nil, false
		}
	}
	return values, true
}

// v1Entry is the legacy, read-only wire shape: a short string type tag and
// scalar values that are not wrapped in an array (except for tuples that
// were already multi-component in the original format).
type v1Entry struct {
	T string          `json:"t"`
	V json.RawMessage `json:"v"`
}

func (c Codec) decodeV1(entries map[string]v1Entry) map[string]Value {
	out := make(map[string]Value, len(entries))
	for name, e := range entries {
		kind, ok := v1TypeTag(e.T)
		if !ok {
			continue
		}
		values, ok := decodeV1Values(kind, e.V)
		if !ok {
			continue
		}
		out[name] = Value{Type: kind, Values: values}
	}
	return out
}

func v1TypeTag(tag string) (StorageKind, bool) {
	switch tag {
	case "int8":
		return StorageInt8, true
	case "int16":
		return StorageInt16, true
	case "int32":
		return StorageInt32, true
	case "int64":
		return StorageInt64, true
	case "float16":
		return StorageFloat16, true
	case "float32":
		return StorageFloat32, true
	case "float64":
		return StorageFloat64, true
	case "string":
		return StorageString, true
	default:
		return 0, false
	}
}

func decodeV1Values(kind StorageKind, raw json.RawMessage) ([]any, bool) {
	// V1 scalars are bare JSON values, not single-element arrays; try an
	// array first (V1 also used arrays for multi-component tuples), then
	// fall back to treating the payload as one scalar value.
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		return decodeValues(kind, arr, Codec{})
	}
	return decodeValues(kind, []json.RawMessage{raw}, Codec{})
}
