// Package msgpackfmt is the MessagePack serde format, streaming through
// vmihailenco/msgpack.
//
// It knows nothing about tunneled values: a magic.Value goes out as an
// ordinary one-entry map. Integers are written with fixed-width codes
// (int64, uint32, uint64) so signedness and the declared width reach the
// decoder, which is enough for such a map to decode back into a
// magic.Value.
package msgpackfmt

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/chazu/magserde/serde"
)

// Marshal encodes v.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes v to w.
func Encode(w io.Writer, v any) error {
	if err := serde.Serialize(&serializer{enc: msgpack.NewEncoder(w)}, v); err != nil {
		return fmt.Errorf("msgpackfmt: encode: %w", err)
	}
	return nil
}

// Unmarshal decodes exactly one value from data into into.
func Unmarshal(data []byte, into serde.Deserializable) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	if err := into.Deserialize(NewDeserializer(dec)); err != nil {
		return err
	}
	if _, err := dec.PeekCode(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("msgpackfmt: trailing data after value")
	}
	return nil
}

// NewDeserializer returns a serde.Deserializer reading the next value
// from dec.
func NewDeserializer(dec *msgpack.Decoder) serde.Deserializer {
	return &deserializer{dec: dec}
}

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

type serializer struct {
	enc *msgpack.Encoder
}

func (s *serializer) SerializeNil() error              { return s.enc.EncodeNil() }
func (s *serializer) SerializeBool(v bool) error       { return s.enc.EncodeBool(v) }
func (s *serializer) SerializeInt64(v int64) error     { return s.enc.EncodeInt64(v) }
func (s *serializer) SerializeUint32(v uint32) error   { return s.enc.EncodeUint32(v) }
func (s *serializer) SerializeUint64(v uint64) error   { return s.enc.EncodeUint64(v) }
func (s *serializer) SerializeFloat64(v float64) error { return s.enc.EncodeFloat64(v) }
func (s *serializer) SerializeString(v string) error   { return s.enc.EncodeString(v) }
func (s *serializer) SerializeBytes(v []byte) error    { return s.enc.EncodeBytes(v) }

func (s *serializer) SerializeSeq(n int) (serde.SeqSerializer, error) {
	if n < 0 {
		return nil, serde.Unsupportedf("msgpackfmt: sequence length must be known")
	}
	if err := s.enc.EncodeArrayLen(n); err != nil {
		return nil, err
	}
	return &compound{s: s, want: n}, nil
}

func (s *serializer) SerializeMap(n int) (serde.MapSerializer, error) {
	return s.mapLen(n)
}

// SerializeStruct writes a map; the struct name is dropped.
func (s *serializer) SerializeStruct(_ string, n int) (serde.StructSerializer, error) {
	return s.mapLen(n)
}

func (s *serializer) mapLen(n int) (*compound, error) {
	if n < 0 {
		return nil, serde.Unsupportedf("msgpackfmt: map length must be known")
	}
	if err := s.enc.EncodeMapLen(n); err != nil {
		return nil, err
	}
	return &compound{s: s, want: n}, nil
}

// compound counts what it writes so a length announced up front is kept.
type compound struct {
	s    *serializer
	want int
	got  int
}

func (c *compound) SerializeElement(v any) error {
	c.got++
	return serde.Serialize(c.s, v)
}

func (c *compound) SerializeEntry(key string, v any) error {
	c.got++
	if err := c.s.enc.EncodeString(key); err != nil {
		return err
	}
	return serde.Serialize(c.s, v)
}

func (c *compound) SerializeField(name string, v any) error {
	return c.SerializeEntry(name, v)
}

func (c *compound) End() error {
	if c.got != c.want {
		return serde.Customf("msgpackfmt: announced %d items, wrote %d", c.want, c.got)
	}
	return nil
}
