package serde

import (
	"math"
)

type boolVisitor struct {
	BaseVisitor
	out bool
}

func (v *boolVisitor) VisitBool(b bool) error { v.out = b; return nil }

// DecodeBool decodes a boolean.
func DecodeBool(d Deserializer) (bool, error) {
	v := &boolVisitor{BaseVisitor: BaseVisitor{Expect: "a boolean"}}
	err := d.DeserializeAny(v)
	return v.out, err
}

type stringVisitor struct {
	BaseVisitor
	out string
}

func (v *stringVisitor) VisitString(s string) error { v.out = s; return nil }

// DecodeString decodes a string.
func DecodeString(d Deserializer) (string, error) {
	v := &stringVisitor{BaseVisitor: BaseVisitor{Expect: "a string"}}
	err := d.DeserializeAny(v)
	return v.out, err
}

type bytesVisitor struct {
	BaseVisitor
	out []byte
}

func (v *bytesVisitor) VisitBytes(b []byte) error {
	v.out = append([]byte(nil), b...)
	return nil
}

// DecodeBytes decodes a byte string.
func DecodeBytes(d Deserializer) ([]byte, error) {
	v := &bytesVisitor{BaseVisitor: BaseVisitor{Expect: "a byte string"}}
	err := d.DeserializeAny(v)
	return v.out, err
}

// intVisitor accepts any integer encoding that fits an int64.
type intVisitor struct {
	BaseVisitor
	out int64
}

func (v *intVisitor) VisitInt64(n int64) error   { v.out = n; return nil }
func (v *intVisitor) VisitUint32(n uint32) error { v.out = int64(n); return nil }

func (v *intVisitor) VisitUint64(n uint64) error {
	if n > math.MaxInt64 {
		return v.BaseVisitor.VisitUint64(n)
	}
	v.out = int64(n)
	return nil
}

// DecodeInt64 decodes a signed integer. Unsigned encodings are accepted
// when they fit.
func DecodeInt64(d Deserializer) (int64, error) {
	v := &intVisitor{BaseVisitor: BaseVisitor{Expect: "an integer"}}
	err := d.DeserializeAny(v)
	return v.out, err
}

type uintVisitor struct {
	BaseVisitor
	out uint64
}

func (v *uintVisitor) VisitUint32(n uint32) error { v.out = uint64(n); return nil }
func (v *uintVisitor) VisitUint64(n uint64) error { v.out = n; return nil }

func (v *uintVisitor) VisitInt64(n int64) error {
	if n < 0 {
		return v.BaseVisitor.VisitInt64(n)
	}
	v.out = uint64(n)
	return nil
}

// DecodeUint64 decodes an unsigned integer of any width.
func DecodeUint64(d Deserializer) (uint64, error) {
	v := &uintVisitor{BaseVisitor: BaseVisitor{Expect: "an unsigned integer"}}
	err := d.DeserializeAny(v)
	return v.out, err
}

type floatVisitor struct {
	BaseVisitor
	out float64
}

func (v *floatVisitor) VisitFloat64(f float64) error { v.out = f; return nil }
func (v *floatVisitor) VisitInt64(n int64) error     { v.out = float64(n); return nil }
func (v *floatVisitor) VisitUint32(n uint32) error   { v.out = float64(n); return nil }
func (v *floatVisitor) VisitUint64(n uint64) error   { v.out = float64(n); return nil }

// DecodeFloat64 decodes a number as a float64.
func DecodeFloat64(d Deserializer) (float64, error) {
	v := &floatVisitor{BaseVisitor: BaseVisitor{Expect: "a number"}}
	err := d.DeserializeAny(v)
	return v.out, err
}

// ---------------------------------------------------------------------------
// Compound helpers
// ---------------------------------------------------------------------------

type seqVisitor struct {
	BaseVisitor
	fn func(i int, el Deserializer) error
}

func (v *seqVisitor) VisitSeq(a SeqAccess) error {
	for i := 0; ; i++ {
		el, ok, err := a.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := v.fn(i, el); err != nil {
			return err
		}
	}
}

// DecodeSeq calls fn for each element of a sequence.
func DecodeSeq(d Deserializer, fn func(i int, el Deserializer) error) error {
	return d.DeserializeAny(&seqVisitor{BaseVisitor: BaseVisitor{Expect: "a sequence"}, fn: fn})
}

type fieldsVisitor struct {
	BaseVisitor
	name string
	fn   func(field string, v Deserializer) error
}

func (v *fieldsVisitor) VisitMap(a MapAccess) error {
	for {
		k, val, ok, err := a.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := v.fn(k, val); err != nil {
			return err
		}
	}
}

func (v *fieldsVisitor) VisitStruct(name string, a MapAccess) error {
	if name != v.name {
		return v.BaseVisitor.VisitStruct(name, a)
	}
	return v.VisitMap(a)
}

// DecodeFields decodes a struct named name, calling fn for every field
// present. Formats without struct names supply a map, which is accepted
// too. fn should return UnknownField for names it does not know, or
// Ignore the value to skip it.
func DecodeFields(d Deserializer, name string, fields []string, fn func(field string, v Deserializer) error) error {
	v := &fieldsVisitor{
		BaseVisitor: BaseVisitor{Expect: "struct " + name},
		name:        name,
		fn:          fn,
	}
	return d.DeserializeStruct(name, fields, v)
}
