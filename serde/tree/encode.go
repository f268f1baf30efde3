package tree

import (
	"github.com/chazu/magserde/magic"
	"github.com/chazu/magserde/serde"
)

// Options control encoding and decoding.
type Options struct {
	// FastPath stores tunneled values as KindHandle leaves and hands the
	// payload straight to the visitor on decode. With it off they are
	// plain one-field structs.
	FastPath bool
}

// DefaultOptions has the fast path on.
var DefaultOptions = Options{FastPath: true}

// Encode serializes v into a tree.
func Encode(v any) (Node, error) {
	return DefaultOptions.Encode(v)
}

// Encode serializes v into a tree with o.
func (o Options) Encode(v any) (Node, error) {
	var n Node
	if err := serde.Serialize(&serializer{opts: o, out: &n}, v); err != nil {
		return Node{}, err
	}
	return n, nil
}

type serializer struct {
	opts Options
	out  *Node
}

func (s *serializer) SerializeNil() error              { *s.out = Nil(); return nil }
func (s *serializer) SerializeBool(v bool) error       { *s.out = Bool(v); return nil }
func (s *serializer) SerializeInt64(v int64) error     { *s.out = Int(v); return nil }
func (s *serializer) SerializeUint32(v uint32) error   { *s.out = Uint32(v); return nil }
func (s *serializer) SerializeUint64(v uint64) error   { *s.out = Uint64(v); return nil }
func (s *serializer) SerializeFloat64(v float64) error { *s.out = Float(v); return nil }
func (s *serializer) SerializeString(v string) error   { *s.out = String(v); return nil }

func (s *serializer) SerializeBytes(v []byte) error {
	*s.out = Bytes(append([]byte(nil), v...))
	return nil
}

func (s *serializer) child(v any) (Node, error) {
	var n Node
	err := serde.Serialize(&serializer{opts: s.opts, out: &n}, v)
	return n, err
}

func (s *serializer) SerializeSeq(n int) (serde.SeqSerializer, error) {
	return &seqSerializer{parent: s, items: make([]Node, 0, max(n, 0))}, nil
}

func (s *serializer) SerializeMap(n int) (serde.MapSerializer, error) {
	return &entrySerializer{parent: s, node: Node{Kind: KindMap, Entries: make([]Entry, 0, max(n, 0))}}, nil
}

func (s *serializer) SerializeStruct(name string, n int) (serde.StructSerializer, error) {
	if s.opts.FastPath && name == magic.Name {
		return &handleSerializer{out: s.out}, nil
	}
	return &entrySerializer{parent: s, node: Node{Kind: KindStruct, Name: name, Entries: make([]Entry, 0, max(n, 0))}}, nil
}

type seqSerializer struct {
	parent *serializer
	items  []Node
}

func (s *seqSerializer) SerializeElement(v any) error {
	n, err := s.parent.child(v)
	if err != nil {
		return err
	}
	s.items = append(s.items, n)
	return nil
}

func (s *seqSerializer) End() error {
	*s.parent.out = Seq(s.items...)
	return nil
}

// entrySerializer builds both maps and structs.
type entrySerializer struct {
	parent *serializer
	node   Node
}

func (s *entrySerializer) SerializeEntry(key string, v any) error {
	n, err := s.parent.child(v)
	if err != nil {
		return err
	}
	s.node.Entries = append(s.node.Entries, Field(key, n))
	return nil
}

func (s *entrySerializer) SerializeField(name string, v any) error {
	return s.SerializeEntry(name, v)
}

func (s *entrySerializer) End() error {
	*s.parent.out = s.node
	return nil
}

// handleSerializer is the fast path for a magic.Value: the single payload
// field becomes a KindHandle leaf with its width.
type handleSerializer struct {
	out  *Node
	seen bool
}

func (s *handleSerializer) SerializeField(name string, v any) error {
	if name != magic.Field || s.seen {
		return serde.Unsupportedf("tree: unexpected field %q in %s", name, magic.Name)
	}
	s.seen = true
	switch p := v.(type) {
	case uint64:
		*s.out = Node{Kind: KindHandle, Uint: p, Width: 64}
	case uint32:
		*s.out = Node{Kind: KindHandle, Uint: uint64(p), Width: 32}
	default:
		return serde.Unsupportedf("tree: %s payload is %T, not an unsigned integer", magic.Name, v)
	}
	return nil
}

func (s *handleSerializer) End() error {
	if !s.seen {
		return serde.MissingField(magic.Field)
	}
	return nil
}
