package cborfmt

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/magserde/magic"
	"github.com/chazu/magserde/serde"
)

// serializer builds the Go value fxamacker/cbor encodes.
type serializer struct {
	opts Options
	out  *any
}

func (s *serializer) set(v any) error { *s.out = v; return nil }

func (s *serializer) SerializeNil() error              { return s.set(nil) }
func (s *serializer) SerializeBool(v bool) error       { return s.set(v) }
func (s *serializer) SerializeInt64(v int64) error     { return s.set(v) }
func (s *serializer) SerializeUint32(v uint32) error   { return s.set(v) }
func (s *serializer) SerializeUint64(v uint64) error   { return s.set(v) }
func (s *serializer) SerializeFloat64(v float64) error { return s.set(v) }
func (s *serializer) SerializeString(v string) error   { return s.set(v) }

func (s *serializer) SerializeBytes(v []byte) error {
	return s.set(append([]byte(nil), v...))
}

func (s *serializer) child(v any) (any, error) {
	var x any
	err := serde.Serialize(&serializer{opts: s.opts, out: &x}, v)
	return x, err
}

func (s *serializer) SerializeSeq(n int) (serde.SeqSerializer, error) {
	return &seqSerializer{parent: s, items: make([]any, 0, max(n, 0))}, nil
}

func (s *serializer) SerializeMap(n int) (serde.MapSerializer, error) {
	return &mapSerializer{parent: s, m: make(map[string]any, max(n, 0))}, nil
}

func (s *serializer) SerializeStruct(name string, n int) (serde.StructSerializer, error) {
	if s.opts.FastPath && name == magic.Name {
		return &handleSerializer{out: s.out}, nil
	}
	return &mapSerializer{parent: s, m: make(map[string]any, max(n, 0))}, nil
}

type seqSerializer struct {
	parent *serializer
	items  []any
}

func (s *seqSerializer) SerializeElement(v any) error {
	x, err := s.parent.child(v)
	if err != nil {
		return err
	}
	s.items = append(s.items, x)
	return nil
}

func (s *seqSerializer) End() error { return s.parent.set(s.items) }

type mapSerializer struct {
	parent *serializer
	m      map[string]any
}

func (s *mapSerializer) SerializeEntry(key string, v any) error {
	if _, dup := s.m[key]; dup {
		return serde.Customf("cborfmt: duplicate key %q", key)
	}
	x, err := s.parent.child(v)
	if err != nil {
		return err
	}
	s.m[key] = x
	return nil
}

func (s *mapSerializer) SerializeField(name string, v any) error {
	return s.SerializeEntry(name, v)
}

func (s *mapSerializer) End() error { return s.parent.set(s.m) }

// handleSerializer writes the payload of a magic.Value as a tagged integer.
type handleSerializer struct {
	out  *any
	seen bool
}

func (s *handleSerializer) SerializeField(name string, v any) error {
	if name != magic.Field || s.seen {
		return serde.Unsupportedf("cborfmt: unexpected field %q in %s", name, magic.Name)
	}
	s.seen = true
	switch p := v.(type) {
	case uint64:
		*s.out = cbor.Tag{Number: TagHandle64, Content: p}
	case uint32:
		*s.out = cbor.Tag{Number: TagHandle32, Content: p}
	default:
		return serde.Unsupportedf("cborfmt: %s payload is %T, not an unsigned integer", magic.Name, v)
	}
	log.Debugf("tunneled %s as tag %#x", magic.Name, (*s.out).(cbor.Tag).Number)
	return nil
}

func (s *handleSerializer) End() error {
	if !s.seen {
		return serde.MissingField(magic.Field)
	}
	return nil
}
