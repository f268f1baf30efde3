package vm

import (
	"fmt"
	"math"
	"unsafe"
)

// Value is a NaN-boxed engine value.
//
// Every value is a 64-bit IEEE 754 double. Anything that is not a float
// lives in the quiet-NaN space, with three tag bits selecting the kind and
// a 48-bit payload:
//   - Float: any double that is not one of our tagged NaNs
//   - SmallInt: 48-bit signed integer
//   - Object: 48-bit heap pointer to an *Object
//   - Symbol: interned symbol ID
//   - Special: nil, true, false
//
// A Value is owned by the VM. Code outside the VM holds it through a Local
// obtained from a HandleScope.
type Value uint64

const (
	// 0x7FF8_0000_0000_0000
	nanBits uint64 = 0x7FF8000000000000

	// 0x0007_0000_0000_0000
	tagMask uint64 = 0x0007000000000000

	// 0x0000_FFFF_FFFF_FFFF
	payloadMask uint64 = 0x0000FFFFFFFFFFFF

	tagObject  uint64 = 0x0001000000000000
	tagInt     uint64 = 0x0002000000000000
	tagSpecial uint64 = 0x0003000000000000
	tagSymbol  uint64 = 0x0004000000000000

	intSignBit    uint64 = 0x0000800000000000
	intSignExtend uint64 = 0xFFFF000000000000
)

const (
	specialNil   uint64 = 0
	specialTrue  uint64 = 1
	specialFalse uint64 = 2
)

const (
	Nil   Value = Value(nanBits | tagSpecial | specialNil)
	True  Value = Value(nanBits | tagSpecial | specialTrue)
	False Value = Value(nanBits | tagSpecial | specialFalse)
)

const (
	MaxSmallInt int64 = (1 << 47) - 1
	MinSmallInt int64 = -(1 << 47)
)

// ---------------------------------------------------------------------------
// Kind checks
// ---------------------------------------------------------------------------

// IsFloat reports whether v is a float. Infinities and untagged NaNs count
// as floats.
func (v Value) IsFloat() bool {
	bits := uint64(v)
	if (bits & 0x7FF0000000000000) != 0x7FF0000000000000 {
		return true
	}
	if bits&0x000FFFFFFFFFFFFF == 0 {
		return true
	}
	if (bits & nanBits) != nanBits {
		return true
	}
	return bits&tagMask == 0
}

func (v Value) hasTag(tag uint64) bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tag)
}

// IsSmallInt reports whether v is a small integer.
func (v Value) IsSmallInt() bool { return v.hasTag(tagInt) }

// IsObject reports whether v is a heap object pointer.
func (v Value) IsObject() bool { return v.hasTag(tagObject) }

// IsSymbol reports whether v is an interned symbol.
func (v Value) IsSymbol() bool { return v.hasTag(tagSymbol) }

// IsSpecial reports whether v is nil, true or false.
func (v Value) IsSpecial() bool { return v.hasTag(tagSpecial) }

func (v Value) IsNil() bool  { return v == Nil }
func (v Value) IsBool() bool { return v == True || v == False }

// ---------------------------------------------------------------------------
// Constructors and accessors
// ---------------------------------------------------------------------------

// FromFloat64 boxes a float.
func FromFloat64(f float64) Value {
	return Value(math.Float64bits(f))
}

// Float64 returns v as a float64. Panics if v is not a float.
func (v Value) Float64() float64 {
	if !v.IsFloat() {
		panic("Value.Float64: not a float")
	}
	return math.Float64frombits(uint64(v))
}

// FromSmallInt boxes n. Panics if n does not fit in 48 bits.
func FromSmallInt(n int64) Value {
	v, ok := TryFromSmallInt(n)
	if !ok {
		panic("FromSmallInt: value out of range")
	}
	return v
}

// TryFromSmallInt boxes n, reporting false if it does not fit in 48 bits.
func TryFromSmallInt(n int64) (Value, bool) {
	if n > MaxSmallInt || n < MinSmallInt {
		return Nil, false
	}
	return Value(nanBits | tagInt | (uint64(n) & payloadMask)), true
}

// SmallInt returns v as an int64. Panics if v is not a small integer.
func (v Value) SmallInt() int64 {
	if !v.IsSmallInt() {
		panic("Value.SmallInt: not a small integer")
	}
	payload := uint64(v) & payloadMask
	if payload&intSignBit != 0 {
		payload |= intSignExtend
	}
	return int64(payload)
}

// FromBool boxes b.
func FromBool(b bool) Value {
	if b {
		return True
	}
	return False
}

// Bool returns v as a bool. Panics if v is not true or false.
func (v Value) Bool() bool {
	switch v {
	case True:
		return true
	case False:
		return false
	default:
		panic("Value.Bool: not a boolean")
	}
}

// FromSymbolID boxes an interned symbol ID.
func FromSymbolID(id uint32) Value {
	return Value(nanBits | tagSymbol | uint64(id))
}

// SymbolID returns the symbol ID in v. Panics if v is not a symbol.
func (v Value) SymbolID() uint32 {
	if !v.IsSymbol() {
		panic("Value.SymbolID: not a symbol")
	}
	return uint32(uint64(v) & payloadMask)
}

// fromObjectPtr boxes a heap pointer. The pointer must fit in 48 bits and
// the object must be pinned by the VM, since the GC cannot see through the
// integer.
func fromObjectPtr(ptr unsafe.Pointer) Value {
	return Value(nanBits | tagObject | uint64(uintptr(ptr)))
}

func (v Value) objectPtr() unsafe.Pointer {
	if !v.IsObject() {
		panic("Value.objectPtr: not an object")
	}
	return unsafe.Pointer(uintptr(uint64(v) & payloadMask))
}

// IsTruthy reports whether v counts as true in a conditional. Only nil and
// false are falsy.
func (v Value) IsTruthy() bool {
	return v != False && v != Nil
}

func (v Value) String() string {
	switch {
	case v == Nil:
		return "nil"
	case v == True:
		return "true"
	case v == False:
		return "false"
	case v.IsSmallInt():
		return fmt.Sprintf("%d", v.SmallInt())
	case v.IsSymbol():
		return fmt.Sprintf("#sym%d", v.SymbolID())
	case v.IsObject():
		return fmt.Sprintf("a %s", ObjectFromValue(v).ClassName())
	case v.IsFloat():
		return fmt.Sprintf("%g", v.Float64())
	default:
		return fmt.Sprintf("Value(%#x)", uint64(v))
	}
}
