package serde

import (
	"fmt"
)

// Visitor receives the value a Deserializer finds. Each method either
// accepts the value or returns an error; BaseVisitor supplies rejecting
// defaults so a visitor only implements what it accepts.
type Visitor interface {
	// Expecting describes the accepted input, for error messages.
	Expecting() string

	VisitNil() error
	VisitBool(v bool) error
	VisitInt64(v int64) error
	VisitUint32(v uint32) error
	VisitUint64(v uint64) error
	VisitFloat64(v float64) error
	VisitString(v string) error
	VisitBytes(v []byte) error
	VisitSeq(a SeqAccess) error
	VisitMap(a MapAccess) error

	// VisitStruct is called by formats that keep struct names.
	VisitStruct(name string, a MapAccess) error
}

// BaseVisitor rejects every input with an invalid type error naming Expect.
// Embed it and override the methods for the inputs you accept.
type BaseVisitor struct {
	Expect string
}

func (b BaseVisitor) Expecting() string { return b.Expect }

func (b BaseVisitor) VisitNil() error {
	return InvalidType("nil", b.Expect)
}

func (b BaseVisitor) VisitBool(v bool) error {
	return InvalidType(fmt.Sprintf("boolean `%t`", v), b.Expect)
}

func (b BaseVisitor) VisitInt64(v int64) error {
	return InvalidType(fmt.Sprintf("integer `%d`", v), b.Expect)
}

func (b BaseVisitor) VisitUint32(v uint32) error {
	return InvalidType(fmt.Sprintf("u32 `%d`", v), b.Expect)
}

func (b BaseVisitor) VisitUint64(v uint64) error {
	return InvalidType(fmt.Sprintf("u64 `%d`", v), b.Expect)
}

func (b BaseVisitor) VisitFloat64(v float64) error {
	return InvalidType(fmt.Sprintf("floating point `%g`", v), b.Expect)
}

func (b BaseVisitor) VisitString(v string) error {
	return InvalidType(fmt.Sprintf("string %q", v), b.Expect)
}

func (b BaseVisitor) VisitBytes(v []byte) error {
	return InvalidType(fmt.Sprintf("byte string of %d bytes", len(v)), b.Expect)
}

func (b BaseVisitor) VisitSeq(SeqAccess) error {
	return InvalidType("sequence", b.Expect)
}

func (b BaseVisitor) VisitMap(MapAccess) error {
	return InvalidType("map", b.Expect)
}

func (b BaseVisitor) VisitStruct(name string, _ MapAccess) error {
	return InvalidType(fmt.Sprintf("struct %q", name), b.Expect)
}

// ---------------------------------------------------------------------------
// Generic any decoding
// ---------------------------------------------------------------------------

// DecodeAny decodes whatever d holds into plain Go values: nil, bool,
// int64, uint32, uint64, float64, string, []byte, []any and map[string]any.
// Struct names are dropped; a struct decodes as a map of its fields.
func DecodeAny(d Deserializer) (any, error) {
	v := &anyVisitor{}
	if err := d.DeserializeAny(v); err != nil {
		return nil, err
	}
	return v.out, nil
}

type anyVisitor struct {
	out any
}

func (v *anyVisitor) Expecting() string            { return "any value" }
func (v *anyVisitor) VisitNil() error              { v.out = nil; return nil }
func (v *anyVisitor) VisitBool(b bool) error       { v.out = b; return nil }
func (v *anyVisitor) VisitInt64(n int64) error     { v.out = n; return nil }
func (v *anyVisitor) VisitUint32(n uint32) error   { v.out = n; return nil }
func (v *anyVisitor) VisitUint64(n uint64) error   { v.out = n; return nil }
func (v *anyVisitor) VisitFloat64(f float64) error { v.out = f; return nil }
func (v *anyVisitor) VisitString(s string) error   { v.out = s; return nil }

func (v *anyVisitor) VisitBytes(b []byte) error {
	v.out = append([]byte(nil), b...)
	return nil
}

func (v *anyVisitor) VisitSeq(a SeqAccess) error {
	out := make([]any, 0, max(a.Len(), 0))
	for {
		el, ok, err := a.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		x, err := DecodeAny(el)
		if err != nil {
			return err
		}
		out = append(out, x)
	}
	v.out = out
	return nil
}

func (v *anyVisitor) VisitMap(a MapAccess) error {
	out := make(map[string]any, max(a.Len(), 0))
	for {
		k, el, ok, err := a.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		x, err := DecodeAny(el)
		if err != nil {
			return err
		}
		out[k] = x
	}
	v.out = out
	return nil
}

func (v *anyVisitor) VisitStruct(_ string, a MapAccess) error {
	return v.VisitMap(a)
}

// Ignore consumes and discards the next value in d.
func Ignore(d Deserializer) error {
	_, err := DecodeAny(d)
	return err
}
