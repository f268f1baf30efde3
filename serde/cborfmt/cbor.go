// Package cborfmt is the CBOR serde format, built on fxamacker/cbor.
//
// Structs are written as text-keyed maps. Tunneled magic values are written
// as a CBOR tag (TagHandle64 or TagHandle32, by payload width) around the
// payload integer, so the width survives the trip and the decoder can hand
// the payload straight to the magic visitor.
//
// Without the fast path a tunneled value is a plain one-field map and its
// payload a plain unsigned integer. CBOR integers carry no declared width,
// so on decode every unsigned integer outside a handle tag is a uint64 and a
// 32-bit payload is not told apart from a 64-bit one.
package cborfmt

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/tliron/commonlog"

	"github.com/chazu/magserde/serde"
)

// CBOR tags for tunneled values, from the first-come-first-served range.
const (
	TagHandle32 uint64 = 0x4D4720
	TagHandle64 uint64 = 0x4D4740
)

var log = commonlog.GetLogger("magserde.cbor")

// Options control encoding and decoding.
type Options struct {
	// FastPath writes tunneled values as tagged payloads and decodes them
	// without building the one-field map.
	FastPath bool

	// Canonical selects Core Deterministic Encoding (RFC 8949 §4.2).
	Canonical bool
}

// DefaultOptions has both the fast path and canonical encoding on.
var DefaultOptions = Options{FastPath: true, Canonical: true}

var (
	canonicalEncMode cbor.EncMode
	plainEncMode     cbor.EncMode
	decMode          cbor.DecMode
)

func init() {
	var err error
	canonicalEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cborfmt: failed to create canonical enc mode: %v", err))
	}
	plainEncMode, err = cbor.EncOptions{}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("cborfmt: failed to create enc mode: %v", err))
	}
	decMode, err = cbor.DecOptions{
		// Every map this format writes has text keys.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("cborfmt: failed to create dec mode: %v", err))
	}
}

func (o Options) encMode() cbor.EncMode {
	if o.Canonical {
		return canonicalEncMode
	}
	return plainEncMode
}

// Marshal encodes v with DefaultOptions.
func Marshal(v any) ([]byte, error) {
	return DefaultOptions.Marshal(v)
}

// Unmarshal decodes data into into with DefaultOptions.
func Unmarshal(data []byte, into serde.Deserializable) error {
	return DefaultOptions.Unmarshal(data, into)
}

// Marshal encodes v.
func (o Options) Marshal(v any) ([]byte, error) {
	var x any
	if err := serde.Serialize(&serializer{opts: o, out: &x}, v); err != nil {
		return nil, err
	}
	data, err := o.encMode().Marshal(x)
	if err != nil {
		return nil, fmt.Errorf("cborfmt: marshal: %w", err)
	}
	return data, nil
}

// Unmarshal decodes data into into.
func (o Options) Unmarshal(data []byte, into serde.Deserializable) error {
	d, err := o.Deserializer(data)
	if err != nil {
		return err
	}
	return into.Deserialize(d)
}

// Deserializer parses data and returns a serde.Deserializer over it.
func (o Options) Deserializer(data []byte) (serde.Deserializer, error) {
	var x any
	if err := decMode.Unmarshal(data, &x); err != nil {
		return nil, fmt.Errorf("cborfmt: unmarshal: %w", err)
	}
	return &deserializer{opts: o, x: x}, nil
}

// Diagnose renders data in CBOR diagnostic notation (RFC 8949 §8).
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
