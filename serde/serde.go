package serde

import (
	"maps"
	"math/bits"
	"slices"
)

// Serializable is implemented by types that can describe themselves to a
// Serializer.
type Serializable interface {
	Serialize(s Serializer) error
}

// Deserializable is implemented by pointer types that can fill themselves
// from a Deserializer.
type Deserializable interface {
	Deserialize(d Deserializer) error
}

// Serializer is the output side of a format.
type Serializer interface {
	SerializeNil() error
	SerializeBool(v bool) error
	SerializeInt64(v int64) error
	SerializeUint32(v uint32) error
	SerializeUint64(v uint64) error
	SerializeFloat64(v float64) error
	SerializeString(v string) error
	SerializeBytes(v []byte) error
	SerializeSeq(n int) (SeqSerializer, error)
	SerializeMap(n int) (MapSerializer, error)

	// SerializeStruct begins a struct named name with n fields. Formats
	// that do not keep names emit a map.
	SerializeStruct(name string, n int) (StructSerializer, error)
}

// SeqSerializer receives the elements of a sequence.
type SeqSerializer interface {
	SerializeElement(v any) error
	End() error
}

// MapSerializer receives the entries of a string-keyed map.
type MapSerializer interface {
	SerializeEntry(key string, v any) error
	End() error
}

// StructSerializer receives the fields of a struct, in declaration order.
type StructSerializer interface {
	SerializeField(name string, v any) error
	End() error
}

// Serialize writes v to s. v may be a Serializable, nil, a Go bool,
// integer, float or string, a []byte, a []any or a map[string]any.
// uintptr is written at the platform's pointer width.
func Serialize(s Serializer, v any) error {
	switch x := v.(type) {
	case nil:
		return s.SerializeNil()
	case Serializable:
		return x.Serialize(s)
	case bool:
		return s.SerializeBool(x)
	case int:
		return s.SerializeInt64(int64(x))
	case int8:
		return s.SerializeInt64(int64(x))
	case int16:
		return s.SerializeInt64(int64(x))
	case int32:
		return s.SerializeInt64(int64(x))
	case int64:
		return s.SerializeInt64(x)
	case uint8:
		return s.SerializeUint64(uint64(x))
	case uint16:
		return s.SerializeUint64(uint64(x))
	case uint32:
		return s.SerializeUint32(x)
	case uint:
		return s.SerializeUint64(uint64(x))
	case uint64:
		return s.SerializeUint64(x)
	case uintptr:
		if bits.UintSize == 32 {
			return s.SerializeUint32(uint32(x))
		}
		return s.SerializeUint64(uint64(x))
	case float32:
		return s.SerializeFloat64(float64(x))
	case float64:
		return s.SerializeFloat64(x)
	case string:
		return s.SerializeString(x)
	case []byte:
		return s.SerializeBytes(x)
	case []any:
		seq, err := s.SerializeSeq(len(x))
		if err != nil {
			return err
		}
		for _, e := range x {
			if err := seq.SerializeElement(e); err != nil {
				return err
			}
		}
		return seq.End()
	case map[string]any:
		m, err := s.SerializeMap(len(x))
		if err != nil {
			return err
		}
		for _, k := range slices.Sorted(maps.Keys(x)) {
			if err := m.SerializeEntry(k, x[k]); err != nil {
				return err
			}
		}
		return m.End()
	default:
		return Unsupportedf("cannot serialize %T", v)
	}
}

// Deserializer is the input side of a format.
type Deserializer interface {
	// DeserializeAny feeds v whatever the input holds.
	DeserializeAny(v Visitor) error

	// DeserializeStruct tells the format a struct named name with the
	// given fields is expected. Formats may use the hint; most treat it
	// like DeserializeAny.
	DeserializeStruct(name string, fields []string, v Visitor) error
}

// Deserialize fills into from d.
func Deserialize(d Deserializer, into Deserializable) error {
	return into.Deserialize(d)
}

// SeqAccess iterates the elements of a sequence. Each returned Deserializer
// must be used, or ignored, before the next call to Next.
type SeqAccess interface {
	// Len returns the number of elements, or -1 if unknown.
	Len() int
	Next() (Deserializer, bool, error)
}

// MapAccess iterates entries of a map or the fields of a struct. The same
// single-use rule as SeqAccess applies to the value Deserializer.
type MapAccess interface {
	Len() int
	Next() (key string, value Deserializer, ok bool, err error)
}
