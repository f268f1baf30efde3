package msgpackfmt

import (
	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/chazu/magserde/serde"
)

// deserializer reads one value from the stream. Once used it must not be
// used again.
type deserializer struct {
	dec  *msgpack.Decoder
	used bool
}

func (d *deserializer) DeserializeStruct(_ string, _ []string, v serde.Visitor) error {
	return d.DeserializeAny(v)
}

func (d *deserializer) DeserializeAny(v serde.Visitor) error {
	if d.used {
		return serde.Customf("msgpackfmt: value already consumed")
	}
	d.used = true

	c, err := d.dec.PeekCode()
	if err != nil {
		return err
	}
	switch {
	case c == msgpcode.Nil:
		if err := d.dec.DecodeNil(); err != nil {
			return err
		}
		return v.VisitNil()
	case c == msgpcode.False || c == msgpcode.True:
		b, err := d.dec.DecodeBool()
		if err != nil {
			return err
		}
		return v.VisitBool(b)
	case c == msgpcode.Uint32:
		n, err := d.dec.DecodeUint32()
		if err != nil {
			return err
		}
		return v.VisitUint32(n)
	case c == msgpcode.Uint64:
		n, err := d.dec.DecodeUint64()
		if err != nil {
			return err
		}
		return v.VisitUint64(n)
	// Unsigned values are only ever written as uint32/uint64, so the small
	// unsigned codes come from compact signed encoders.
	case msgpcode.IsFixedNum(c) || c == msgpcode.Uint8 || c == msgpcode.Uint16 ||
		c == msgpcode.Int8 || c == msgpcode.Int16 || c == msgpcode.Int32 || c == msgpcode.Int64:
		n, err := d.dec.DecodeInt64()
		if err != nil {
			return err
		}
		return v.VisitInt64(n)
	case c == msgpcode.Float || c == msgpcode.Double:
		f, err := d.dec.DecodeFloat64()
		if err != nil {
			return err
		}
		return v.VisitFloat64(f)
	case msgpcode.IsString(c):
		s, err := d.dec.DecodeString()
		if err != nil {
			return err
		}
		return v.VisitString(s)
	case msgpcode.IsBin(c):
		b, err := d.dec.DecodeBytes()
		if err != nil {
			return err
		}
		return v.VisitBytes(b)
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		n, err := d.dec.DecodeArrayLen()
		if err != nil {
			return err
		}
		a := &seqAccess{stream: stream{dec: d.dec, left: n}}
		if err := v.VisitSeq(a); err != nil {
			return err
		}
		return a.drain()
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		n, err := d.dec.DecodeMapLen()
		if err != nil {
			return err
		}
		a := &mapAccess{stream: stream{dec: d.dec, left: n}}
		if err := v.VisitMap(a); err != nil {
			return err
		}
		return a.drain()
	default:
		return serde.Unsupportedf("msgpackfmt: unsupported code %#x", c)
	}
}

// stream tracks the items of an array or map still in the input, skipping
// any the visitor did not read.
type stream struct {
	dec  *msgpack.Decoder
	left int
	cur  *deserializer
}

func (s *stream) Len() int { return s.left }

func (s *stream) skipCurrent() error {
	if s.cur != nil && !s.cur.used {
		s.cur.used = true
		return s.dec.Skip()
	}
	return nil
}

func (s *stream) next() (*deserializer, bool, error) {
	if err := s.skipCurrent(); err != nil {
		return nil, false, err
	}
	if s.left <= 0 {
		return nil, false, nil
	}
	s.left--
	s.cur = &deserializer{dec: s.dec}
	return s.cur, true, nil
}

func (s *stream) drain() error {
	if err := s.skipCurrent(); err != nil {
		return err
	}
	for ; s.left > 0; s.left-- {
		if err := s.dec.Skip(); err != nil {
			return err
		}
	}
	return nil
}

type seqAccess struct {
	stream
}

func (a *seqAccess) Next() (serde.Deserializer, bool, error) {
	d, ok, err := a.next()
	if !ok || err != nil {
		return nil, ok, err
	}
	return d, true, nil
}

// mapAccess reads entries. Each remaining entry is a key plus a value, so
// drain skips twice per entry.
type mapAccess struct {
	stream
}

func (a *mapAccess) Next() (string, serde.Deserializer, bool, error) {
	if err := a.skipCurrent(); err != nil {
		return "", nil, false, err
	}
	if a.left <= 0 {
		return "", nil, false, nil
	}
	key, err := a.dec.DecodeString()
	if err != nil {
		return "", nil, false, err
	}
	a.left--
	a.cur = &deserializer{dec: a.dec}
	return key, a.cur, true, nil
}

func (a *mapAccess) drain() error {
	if err := a.skipCurrent(); err != nil {
		return err
	}
	for ; a.left > 0; a.left-- {
		if err := a.dec.Skip(); err != nil {
			return err
		}
		if err := a.dec.Skip(); err != nil {
			return err
		}
	}
	return nil
}
