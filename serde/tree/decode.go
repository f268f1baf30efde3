package tree

import (
	"github.com/chazu/magserde/magic"
	"github.com/chazu/magserde/serde"
)

// Decode fills into from n.
func Decode(n Node, into serde.Deserializable) error {
	return DefaultOptions.Decode(n, into)
}

// Decode fills into from n with o.
func (o Options) Decode(n Node, into serde.Deserializable) error {
	return into.Deserialize(o.Deserializer(n))
}

// Deserializer returns a serde.Deserializer reading n.
func (o Options) Deserializer(n Node) serde.Deserializer {
	return &deserializer{opts: o, node: n}
}

// NewDeserializer returns a serde.Deserializer reading n with the fast
// path on.
func NewDeserializer(n Node) serde.Deserializer {
	return DefaultOptions.Deserializer(n)
}

type deserializer struct {
	opts Options
	node Node
}

func (d *deserializer) DeserializeAny(v serde.Visitor) error {
	n := d.node
	switch n.Kind {
	case KindNil:
		return v.VisitNil()
	case KindBool:
		return v.VisitBool(n.Bool)
	case KindInt:
		return v.VisitInt64(n.Int)
	case KindUint:
		return visitUint(v, n)
	case KindFloat:
		return v.VisitFloat64(n.Float)
	case KindString:
		return v.VisitString(n.Str)
	case KindBytes:
		return v.VisitBytes(n.Bytes)
	case KindSeq:
		return v.VisitSeq(&seqAccess{opts: d.opts, items: n.Items})
	case KindMap:
		return v.VisitMap(&entryAccess{opts: d.opts, entries: n.Entries})
	case KindStruct:
		return v.VisitStruct(n.Name, &entryAccess{opts: d.opts, entries: n.Entries})
	case KindHandle:
		// Seen by a visitor that did not ask for a magic value: present
		// the sentinel struct it was encoded from.
		payload := Node{Kind: KindUint, Uint: n.Uint, Width: n.Width}
		return v.VisitStruct(magic.Name, &entryAccess{opts: d.opts, entries: []Entry{Field(magic.Field, payload)}})
	default:
		return serde.Unsupportedf("tree: unknown node kind %s", n.Kind)
	}
}

func (d *deserializer) DeserializeStruct(name string, _ []string, v serde.Visitor) error {
	if d.opts.FastPath && name == magic.Name && d.node.Kind == KindHandle {
		return visitUint(v, d.node)
	}
	return d.DeserializeAny(v)
}

func visitUint(v serde.Visitor, n Node) error {
	switch n.Width {
	case 32:
		return v.VisitUint32(uint32(n.Uint))
	case 64:
		return v.VisitUint64(n.Uint)
	default:
		return serde.Unsupportedf("tree: %s node has width %d, want 32 or 64", n.Kind, n.Width)
	}
}

type seqAccess struct {
	opts  Options
	items []Node
	pos   int
}

func (a *seqAccess) Len() int { return len(a.items) - a.pos }

func (a *seqAccess) Next() (serde.Deserializer, bool, error) {
	if a.pos >= len(a.items) {
		return nil, false, nil
	}
	d := &deserializer{opts: a.opts, node: a.items[a.pos]}
	a.pos++
	return d, true, nil
}

type entryAccess struct {
	opts    Options
	entries []Entry
	pos     int
}

func (a *entryAccess) Len() int { return len(a.entries) - a.pos }

func (a *entryAccess) Next() (string, serde.Deserializer, bool, error) {
	if a.pos >= len(a.entries) {
		return "", nil, false, nil
	}
	e := a.entries[a.pos]
	a.pos++
	return e.Key, &deserializer{opts: a.opts, node: e.Value}, true, nil
}
