package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// Serializer turns a result set into bytes for a store and back.
// Implementations round-trip rows so that a decoded entry compares equal to
// the original after NormalizeRows, unless documented as lossy.
type Serializer interface {
	Serialize(rows Rows) ([]byte, error)
	Deserialize(data []byte) (Rows, error)
}

// DefaultSerializer returns the serializer used when none is configured.
func DefaultSerializer() Serializer { return Msgpack{} }

// Msgpack encodes rows with vmihailenco/msgpack. Rows are normalized before
// encoding so every integer is written with its full width and decodes as
// the same int64 or uint64. Byte slices stay binary and times keep
// nanosecond precision.
type Msgpack struct{}

var _ Serializer = Msgpack{}

func (Msgpack) Serialize(rows Rows) ([]byte, error) {
	return msgpack.Marshal(toMaps(NormalizeRows(rows)))
}

func (Msgpack) Deserialize(data []byte) (Rows, error) {
	var out []map[string]any
	if err := msgpack.NewDecoder(bytes.NewReader(data)).Decode(&out); err != nil {
		return nil, err
	}
	return NormalizeRows(fromMaps(out)), nil
}

// JSON encodes rows with encoding/json. Numbers decode as int64 when they
// are integral and float64 otherwise. It is lossy: byte slices come back as
// base64 strings, times as RFC 3339 strings and uint64 values above
// math.MaxInt64 as float64. Use it only for result sets of text and numbers
// that other clients need to read.
type JSON struct{}

var _ Serializer = JSON{}

func (JSON) Serialize(rows Rows) ([]byte, error) {
	return json.Marshal(toMaps(NormalizeRows(rows)))
}

func (JSON) Deserialize(data []byte) (Rows, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var out []map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	for _, m := range out {
		for k, v := range m {
			m[k] = convertJSONNumbers(v)
		}
	}
	return fromMaps(out), nil
}

func convertJSONNumbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		for k, inner := range val {
			val[k] = convertJSONNumbers(inner)
		}
		return val
	case []any:
		for i, inner := range val {
			val[i] = convertJSONNumbers(inner)
		}
		return val
	default:
		return v
	}
}

// CBOR encodes rows with fxamacker/cbor. Byte slices and tagged times
// round-trip. Integers decode as int64, so unsigned values lose their type
// and values above math.MaxInt64 fail to decode. The zero value is not
// usable, construct it with NewCBOR.
type CBOR struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Serializer = CBOR{}

// NewCBOR builds a CBOR serializer. With deterministic set, map keys are
// sorted (RFC 8949 core deterministic encoding) so equal rows produce equal
// bytes.
func NewCBOR(deterministic bool) (CBOR, error) {
	var eo cbor.EncOptions
	if deterministic {
		eo = cbor.CoreDetEncOptions()
	} else {
		eo = cbor.PreferredUnsortedEncOptions()
	}
	eo.Time = cbor.TimeRFC3339Nano
	eo.TimeTag = cbor.EncTagRequired

	em, err := eo.EncMode()
	if err != nil {
		return CBOR{}, err
	}
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		IntDec:         cbor.IntDecConvertSignedOrFail,
	}.DecMode()
	if err != nil {
		return CBOR{}, err
	}
	return CBOR{enc: em, dec: dm}, nil
}

func (c CBOR) Serialize(rows Rows) ([]byte, error) {
	if c.enc == nil {
		return nil, fmt.Errorf("cbor serializer not initialized")
	}
	return c.enc.Marshal(toMaps(NormalizeRows(rows)))
}

func (c CBOR) Deserialize(data []byte) (Rows, error) {
	if c.dec == nil {
		return nil, fmt.Errorf("cbor serializer not initialized")
	}
	var out []map[string]any
	if err := c.dec.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return NormalizeRows(fromMaps(out)), nil
}

// Limit wraps another serializer and refuses to decode payloads larger than
// MaxDecode bytes. A MaxDecode of zero or less disables the check.
type Limit struct {
	Inner     Serializer
	MaxDecode int
}

var _ Serializer = Limit{}

func (l Limit) Serialize(rows Rows) ([]byte, error) { return l.Inner.Serialize(rows) }

func (l Limit) Deserialize(data []byte) (Rows, error) {
	if l.MaxDecode > 0 && len(data) > l.MaxDecode {
		return nil, fmt.Errorf("payload too large: %d > %d", len(data), l.MaxDecode)
	}
	return l.Inner.Deserialize(data)
}

func toMaps(rows Rows) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, r := range rows {
		out[i] = map[string]any(r)
	}
	return out
}

func fromMaps(in []map[string]any) Rows {
	out := make(Rows, len(in))
	for i, m := range in {
		out[i] = Row(m)
	}
	return out
}
