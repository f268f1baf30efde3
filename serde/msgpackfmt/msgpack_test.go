package msgpackfmt

import (
	"bytes"
	"errors"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/chazu/magserde/magic"
	"github.com/chazu/magserde/serde"
)

func TestFixedWidthIntegers(t *testing.T) {
	tests := []struct {
		in   any
		want []byte
	}{
		{uint32(5), []byte{0xce, 0, 0, 0, 5}},
		{uint64(5), []byte{0xcf, 0, 0, 0, 0, 0, 0, 0, 5}},
		{int64(5), []byte{0xd3, 0, 0, 0, 0, 0, 0, 0, 5}},
		{int64(-1), []byte{0xd3, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	}
	for _, tt := range tests {
		got, err := Marshal(tt.in)
		if err != nil {
			t.Fatalf("Marshal(%T) failed: %v", tt.in, err)
		}
		if !bytes.Equal(got, tt.want) {
			t.Errorf("Marshal(%T %v) = % x, want % x", tt.in, tt.in, got, tt.want)
		}
	}
}

func TestSentinelIsPlainMap(t *testing.T) {
	data, err := Marshal(magic.Value{})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := msgpack.Unmarshal(data, &m); err != nil {
		t.Fatalf("msgpack.Unmarshal failed: %v", err)
	}
	if len(m) != 1 {
		t.Fatalf("got %v, want a one-entry map", m)
	}
	if _, ok := m[magic.Field]; !ok {
		t.Errorf("got %v, want key %s", m, magic.Field)
	}
}

func TestUnreadValuesAreSkipped(t *testing.T) {
	data, err := Marshal([]any{
		map[string]any{"a": int64(1), "b": []any{int64(2), map[string]any{"c": "d"}}},
		"tail",
	})
	if err != nil {
		t.Fatal(err)
	}

	var tail string
	d := NewDeserializer(msgpack.NewDecoder(bytes.NewReader(data)))
	err = serde.DecodeSeq(d, func(i int, el serde.Deserializer) error {
		if i == 0 {
			// Read the keys, never the values.
			return serde.DecodeFields(el, "", nil, func(string, serde.Deserializer) error { return nil })
		}
		var err error
		tail, err = serde.DecodeString(el)
		return err
	})
	if err != nil {
		t.Fatalf("DecodeSeq failed: %v", err)
	}
	if tail != "tail" {
		t.Errorf("tail = %q, want tail", tail)
	}
}

func TestPartialSeqIsDrained(t *testing.T) {
	data, err := Marshal([]any{[]any{int64(1), int64(2), int64(3)}, "after"})
	if err != nil {
		t.Fatal(err)
	}
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	if _, err := dec.DecodeArrayLen(); err != nil {
		t.Fatal(err)
	}

	// firstOnly stops after one element.
	v := &firstOnly{BaseVisitor: serde.BaseVisitor{Expect: "a sequence"}}
	if err := NewDeserializer(dec).DeserializeAny(v); err != nil {
		t.Fatal(err)
	}
	s, err := dec.DecodeString()
	if err != nil || s != "after" {
		t.Errorf("next value = %q, %v; want after", s, err)
	}
}

type firstOnly struct {
	serde.BaseVisitor
}

func (f *firstOnly) VisitSeq(a serde.SeqAccess) error {
	el, _, err := a.Next()
	if err != nil {
		return err
	}
	_, err = serde.DecodeInt64(el)
	return err
}

func TestDeserializerSingleUse(t *testing.T) {
	data, _ := Marshal("x")
	d := NewDeserializer(msgpack.NewDecoder(bytes.NewReader(data)))
	if _, err := serde.DecodeString(d); err != nil {
		t.Fatal(err)
	}
	if _, err := serde.DecodeString(d); err == nil {
		t.Error("second use should fail")
	}
}

func TestUnmarshalErrors(t *testing.T) {
	one, _ := Marshal(magic.Value{})

	tests := []struct {
		name string
		data []byte
	}{
		{"trailing", append(append([]byte(nil), one...), 0xc0)},
		{"truncated", one[:len(one)-1]},
		{"ext type", []byte{0xd4, 1, 0}},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v magic.Value
			if err := Unmarshal(tt.data, &v); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// shortSeq announces two elements and writes one.
type shortSeq struct{}

func (shortSeq) Serialize(s serde.Serializer) error {
	seq, err := s.SerializeSeq(2)
	if err != nil {
		return err
	}
	if err := seq.SerializeElement(int64(1)); err != nil {
		return err
	}
	return seq.End()
}

func TestAnnouncedLength(t *testing.T) {
	_, err := Marshal(shortSeq{})
	if !errors.Is(err, &serde.Error{Kind: serde.KindCustom}) {
		t.Errorf("err = %v, want a length error", err)
	}
}

func TestIntegerKindsSurvive(t *testing.T) {
	encoded := func(v any) []byte {
		data, err := Marshal(v)
		if err != nil {
			t.Fatalf("Marshal(%T) failed: %v", v, err)
		}
		return data
	}
	tests := []struct {
		name string
		data []byte
		want any
	}{
		{"int64", encoded(int64(300)), int64(300)},
		{"large int64", encoded(int64(70000)), int64(70000)},
		{"uint32", encoded(uint32(300)), uint32(300)},
		{"uint64", encoded(uint64(300)), uint64(300)},
		{"compact uint8", []byte{0xcc, 200}, int64(200)},
		{"compact uint16", []byte{0xcd, 1, 44}, int64(300)},
	}
	for _, tt := range tests {
		got, err := serde.DecodeAny(NewDeserializer(msgpack.NewDecoder(bytes.NewReader(tt.data))))
		if err != nil {
			t.Fatalf("%s: DecodeAny failed: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("%s: DecodeAny = %T %v, want %T %v", tt.name, got, got, tt.want, tt.want)
		}
	}
}
