package cborfmt

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/magserde/magic"
	"github.com/chazu/magserde/serde"
)

func handleTag() uint64 {
	if magic.PayloadBits == 64 {
		return TagHandle64
	}
	return TagHandle32
}

func TestMarshalHandleTag(t *testing.T) {
	data, err := Marshal(map[string]any{"v": magic.Value{}})
	if err != nil {
		t.Fatal(err)
	}
	diag, err := Diagnose(data)
	if err != nil {
		t.Fatal(err)
	}
	if want := fmt.Sprintf(`"v": %d(0)`, handleTag()); !strings.Contains(diag, want) {
		t.Errorf("Diagnose = %s, want it to contain %s", diag, want)
	}

	plain, err := Options{Canonical: true}.Marshal(magic.Value{})
	if err != nil {
		t.Fatal(err)
	}
	diag, err = Diagnose(plain)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(diag, magic.Field) {
		t.Errorf("naive Diagnose = %s, want the sentinel field", diag)
	}
}

func TestCanonicalKeyOrder(t *testing.T) {
	doc := map[string]any{"aa": int64(2), "b": int64(1)}
	first, err := Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	for range 10 {
		again, err := Marshal(doc)
		if err != nil {
			t.Fatal(err)
		}
		if string(again) != string(first) {
			t.Fatal("canonical encoding is not deterministic")
		}
	}
	diag, _ := Diagnose(first)
	if strings.Index(diag, `"b"`) > strings.Index(diag, `"aa"`) {
		t.Errorf("Diagnose = %s, want shorter key first", diag)
	}
}

func TestHandleTagErrors(t *testing.T) {
	tests := []struct {
		name string
		tag  cbor.Tag
		kind serde.Kind
	}{
		{"overflowing u32", cbor.Tag{Number: TagHandle32, Content: uint64(1) << 40}, serde.KindCustom},
		{"unknown tag", cbor.Tag{Number: 99, Content: uint64(1)}, serde.KindUnsupported},
		{"text content", cbor.Tag{Number: TagHandle64, Content: "1"}, serde.KindUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := cbor.Marshal(tt.tag)
			if err != nil {
				t.Fatal(err)
			}
			var v magic.Value
			err = Unmarshal(data, &v)
			if !errors.Is(err, &serde.Error{Kind: tt.kind}) {
				t.Errorf("err = %v, want kind %s", err, tt.kind)
			}
		})
	}
}

// dupKeys writes the same map key twice.
type dupKeys struct{}

func (dupKeys) Serialize(s serde.Serializer) error {
	m, err := s.SerializeMap(2)
	if err != nil {
		return err
	}
	if err := m.SerializeEntry("k", int64(1)); err != nil {
		return err
	}
	if err := m.SerializeEntry("k", int64(2)); err != nil {
		return err
	}
	return m.End()
}

func TestDuplicateKey(t *testing.T) {
	if _, err := Marshal(dupKeys{}); err == nil || !strings.Contains(err.Error(), "duplicate key") {
		t.Errorf("err = %v, want duplicate key", err)
	}
}

func TestUnmarshalGarbage(t *testing.T) {
	var v magic.Value
	if err := Unmarshal([]byte{0xff}, &v); err == nil {
		t.Error("expected error")
	}
}

func TestDecodeAnyTypes(t *testing.T) {
	in := []any{nil, true, int64(-1), uint64(1) << 63, 1.5, "s", []byte{1}, map[string]any{"k": "v"}}
	data, err := Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	d, err := DefaultOptions.Deserializer(data)
	if err != nil {
		t.Fatal(err)
	}
	got, err := serde.DecodeAny(d)
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(got) != fmt.Sprint(in) {
		t.Errorf("DecodeAny = %v, want %v", got, in)
	}
}
