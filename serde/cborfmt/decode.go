package cborfmt

import (
	"maps"
	"math"
	"slices"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/magserde/magic"
	"github.com/chazu/magserde/serde"
)

// deserializer walks a value decoded by fxamacker/cbor into any.
type deserializer struct {
	opts Options
	x    any
}

func (d *deserializer) DeserializeAny(v serde.Visitor) error {
	switch t := d.x.(type) {
	case nil:
		return v.VisitNil()
	case bool:
		return v.VisitBool(t)
	case uint64:
		return v.VisitUint64(t)
	case uint32:
		return v.VisitUint32(t)
	case int64:
		return v.VisitInt64(t)
	case float64:
		return v.VisitFloat64(t)
	case string:
		return v.VisitString(t)
	case []byte:
		return v.VisitBytes(t)
	case []any:
		return v.VisitSeq(&seqAccess{opts: d.opts, items: t})
	case map[string]any:
		return v.VisitMap(newMapAccess(d.opts, t))
	case cbor.Tag:
		payload, err := handlePayload(t)
		if err != nil {
			return err
		}
		// A handle read by a visitor that did not ask for one: present
		// the sentinel struct it stands for.
		return v.VisitStruct(magic.Name, newMapAccess(d.opts, map[string]any{magic.Field: payload}))
	default:
		return serde.Unsupportedf("cborfmt: cannot decode %T", d.x)
	}
}

func (d *deserializer) DeserializeStruct(name string, _ []string, v serde.Visitor) error {
	if tag, ok := d.x.(cbor.Tag); ok && d.opts.FastPath && name == magic.Name {
		payload, err := handlePayload(tag)
		if err != nil {
			return err
		}
		return (&deserializer{opts: d.opts, x: payload}).DeserializeAny(v)
	}
	return d.DeserializeAny(v)
}

// handlePayload unwraps a handle tag to a uint32 or uint64 by tag number.
func handlePayload(t cbor.Tag) (any, error) {
	p, ok := t.Content.(uint64)
	if !ok {
		return nil, serde.Unsupportedf("cborfmt: tag %#x content is %T, not an unsigned integer", t.Number, t.Content)
	}
	switch t.Number {
	case TagHandle64:
		return p, nil
	case TagHandle32:
		if p > math.MaxUint32 {
			return nil, serde.Customf("cborfmt: tag %#x payload %#x overflows 32 bits", t.Number, p)
		}
		return uint32(p), nil
	default:
		return nil, serde.Unsupportedf("cborfmt: unsupported tag %#x", t.Number)
	}
}

type seqAccess struct {
	opts  Options
	items []any
	pos   int
}

func (a *seqAccess) Len() int { return len(a.items) - a.pos }

func (a *seqAccess) Next() (serde.Deserializer, bool, error) {
	if a.pos >= len(a.items) {
		return nil, false, nil
	}
	d := &deserializer{opts: a.opts, x: a.items[a.pos]}
	a.pos++
	return d, true, nil
}

// mapAccess yields entries in key order, since CBOR maps decoded into Go
// maps have none.
type mapAccess struct {
	opts Options
	m    map[string]any
	keys []string
	pos  int
}

func newMapAccess(opts Options, m map[string]any) *mapAccess {
	return &mapAccess{opts: opts, m: m, keys: slices.Sorted(maps.Keys(m))}
}

func (a *mapAccess) Len() int { return len(a.keys) - a.pos }

func (a *mapAccess) Next() (string, serde.Deserializer, bool, error) {
	if a.pos >= len(a.keys) {
		return "", nil, false, nil
	}
	k := a.keys[a.pos]
	a.pos++
	return k, &deserializer{opts: a.opts, x: a.m[k]}, true, nil
}
