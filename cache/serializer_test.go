package cache

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func sampleRows() Rows {
	return Rows{
		{"id": int64(1), "name": "Ada", "score": 9.5, "active": true, "nickname": nil},
		{"id": int64(2), "name": "Grace", "score": 7.25, "active": false, "nickname": "amazing"},
		{"id": int64(3), "name": "Linus", "score": 3.75, "active": true, "tags": []any{"kernel", "git"}},
	}
}

func mustCBOR(t *testing.T, deterministic bool) CBOR {
	t.Helper()
	c, err := NewCBOR(deterministic)
	if err != nil {
		t.Fatalf("NewCBOR() error = %v", err)
	}
	return c
}

func TestSerializers_RoundTrip(t *testing.T) {
	serializers := map[string]Serializer{
		"msgpack":   Msgpack{},
		"json":      JSON{},
		"cbor":      mustCBOR(t, false),
		"cbor-det":  mustCBOR(t, true),
		"limit":     Limit{Inner: Msgpack{}, MaxDecode: 1 << 20},
		"default":   DefaultSerializer(),
		"json-wrap": Limit{Inner: JSON{}},
	}

	for name, s := range serializers {
		t.Run(name, func(t *testing.T) {
			want := sampleRows()
			data, err := s.Serialize(want)
			if err != nil {
				t.Fatalf("Serialize() error = %v", err)
			}
			got, err := s.Deserialize(data)
			if err != nil {
				t.Fatalf("Deserialize() error = %v", err)
			}
			got = NormalizeRows(got)
			if !reflect.DeepEqual(got, NormalizeRows(want)) {
				t.Errorf("round trip mismatch\n got: %#v\nwant: %#v", got, want)
			}
		})
	}
}

func TestSerializers_EmptyResult(t *testing.T) {
	for name, s := range map[string]Serializer{"msgpack": Msgpack{}, "json": JSON{}, "cbor": mustCBOR(t, false)} {
		t.Run(name, func(t *testing.T) {
			data, err := s.Serialize(Rows{})
			if err != nil {
				t.Fatalf("Serialize() error = %v", err)
			}
			got, err := s.Deserialize(data)
			if err != nil {
				t.Fatalf("Deserialize() error = %v", err)
			}
			if len(got) != 0 {
				t.Errorf("expected no rows, got %d", len(got))
			}
		})
	}
}

func TestMsgpack_NestedMapsDecodeWithStringKeys(t *testing.T) {
	rows := Rows{{"meta": map[string]any{"plan": "pro", "seats": int64(4)}}}
	data, err := Msgpack{}.Serialize(rows)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	got, err := Msgpack{}.Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize() error = %v", err)
	}
	meta, ok := NormalizeRows(got)[0]["meta"].(map[string]any)
	if !ok {
		t.Fatalf("meta has type %T, want map[string]any", got[0]["meta"])
	}
	if meta["plan"] != "pro" || meta["seats"] != int64(4) {
		t.Errorf("unexpected nested map %#v", meta)
	}
}

func TestSerializers_CorruptPayload(t *testing.T) {
	corrupt := []byte{0xc1, 0xff, 0x00}
	for name, s := range map[string]Serializer{"msgpack": Msgpack{}, "json": JSON{}, "cbor": mustCBOR(t, false)} {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Deserialize(corrupt); err == nil {
				t.Error("expected an error for a corrupt payload")
			}
		})
	}
}

func TestLimit_RejectsOversizedPayload(t *testing.T) {
	s := Limit{Inner: Msgpack{}, MaxDecode: 8}
	data, err := s.Serialize(sampleRows())
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	_, err = s.Deserialize(data)
	if err == nil || !strings.Contains(err.Error(), "payload too large") {
		t.Errorf("expected payload too large error, got %v", err)
	}
}

func TestCBOR_ZeroValueFails(t *testing.T) {
	var c CBOR
	if _, err := c.Serialize(sampleRows()); err == nil {
		t.Error("expected error from uninitialized serializer")
	}
	if _, err := c.Deserialize([]byte{0x80}); err == nil {
		t.Error("expected error from uninitialized serializer")
	}
}

func typedRow() Row {
	at := time.Date(2024, 1, 2, 3, 4, 5, 600, time.UTC)
	return Row{
		"id":      int(1),
		"small":   int8(-3),
		"count":   int32(70000),
		"ratio":   float32(1.5),
		"payload": []byte{0x01, 0x02},
		"name":    "\x01\x02",
		"at":      at,
		"local":   at.In(time.FixedZone("CET", 3600)),
	}
}

func TestSerializers_PreserveTypedValues(t *testing.T) {
	serializers := map[string]Serializer{
		"msgpack": Msgpack{},
		"cbor":    mustCBOR(t, true),
	}

	for name, s := range serializers {
		t.Run(name, func(t *testing.T) {
			want := NormalizeRows(Rows{typedRow()})
			data, err := s.Serialize(Rows{typedRow()})
			if err != nil {
				t.Fatalf("Serialize() error = %v", err)
			}
			got, err := s.Deserialize(data)
			if err != nil {
				t.Fatalf("Deserialize() error = %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("decoded rows differ\n got: %#v\nwant: %#v", got, want)
			}
			if _, ok := got[0]["payload"].([]byte); !ok {
				t.Errorf("payload decoded as %T, want []byte", got[0]["payload"])
			}
		})
	}
}

func TestMsgpack_PreservesUnsigned(t *testing.T) {
	rows := Rows{{"u8": uint8(200), "u": uint(7), "big": uint64(1 << 63)}}
	data, err := Msgpack{}.Serialize(rows)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	got, err := Msgpack{}.Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize() error = %v", err)
	}
	if !reflect.DeepEqual(got, NormalizeRows(rows)) {
		t.Errorf("decoded rows differ\n got: %#v\nwant: %#v", got, NormalizeRows(rows))
	}
}

func TestJSON_IsLossyForBytesAndTimes(t *testing.T) {
	data, err := JSON{}.Serialize(Rows{typedRow()})
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	got, err := JSON{}.Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize() error = %v", err)
	}
	if got[0]["payload"] != "AQI=" {
		t.Errorf("payload = %#v, want base64 string", got[0]["payload"])
	}
	if got[0]["at"] != "2024-01-02T03:04:05.0000006Z" {
		t.Errorf("at = %#v, want RFC 3339 string", got[0]["at"])
	}
	if got[0]["id"] != int64(1) || got[0]["ratio"] != 1.5 {
		t.Errorf("numbers = %#v / %#v", got[0]["id"], got[0]["ratio"])
	}
}

func TestNormalizeRows(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("CET", 3600))
	got := NormalizeRows(Rows{{
		"i": int(1), "i16": int16(2), "u16": uint16(3), "f": float32(0.5),
		"at": at, "ptr": &at, "nil": (*time.Time)(nil), "b": []byte("x"),
		"nested": map[any]any{1: int32(4)},
	}})[0]

	want := Row{
		"i": int64(1), "i16": int64(2), "u16": uint64(3), "f": float64(0.5),
		"at": at.UTC(), "ptr": at.UTC(), "nil": nil, "b": []byte("x"),
		"nested": map[string]any{"1": int64(4)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeRows() = %#v, want %#v", got, want)
	}
	if got["at"].(time.Time).Location() != time.UTC {
		t.Error("times should be normalized to UTC")
	}
	if rs := NormalizeRows(nil); rs == nil || len(rs) != 0 {
		t.Errorf("NormalizeRows(nil) = %#v, want empty", rs)
	}
}
