package vm

import (
	"unsafe"
)

// Object is a heap-allocated engine object.
//
// The first NumInlineSlots instance variables live inline; the rest spill
// into overflow, which is only allocated when a class needs it.
type Object struct {
	class *Class

	slot0 Value
	slot1 Value
	slot2 Value
	slot3 Value

	overflow []Value
}

// NumInlineSlots is the number of slots stored directly in the Object.
const NumInlineSlots = 4

// Class describes the shape of an Object.
type Class struct {
	Name     string
	InstVars []string
}

// NumSlots returns the number of instance variables.
func (c *Class) NumSlots() int {
	return len(c.InstVars)
}

// SlotIndex returns the index of the named instance variable, or -1.
func (c *Class) SlotIndex(name string) int {
	for i, iv := range c.InstVars {
		if iv == name {
			return i
		}
	}
	return -1
}

func newObject(class *Class, slots []Value) *Object {
	obj := &Object{class: class, slot0: Nil, slot1: Nil, slot2: Nil, slot3: Nil}
	if n := class.NumSlots(); n > NumInlineSlots {
		obj.overflow = make([]Value, n-NumInlineSlots)
		for i := range obj.overflow {
			obj.overflow[i] = Nil
		}
	}
	for i, v := range slots {
		obj.SetSlot(i, v)
	}
	return obj
}

// GetSlot returns the value at index. Panics if index is out of range.
func (obj *Object) GetSlot(index int) Value {
	switch index {
	case 0:
		return obj.slot0
	case 1:
		return obj.slot1
	case 2:
		return obj.slot2
	case 3:
		return obj.slot3
	default:
		i := index - NumInlineSlots
		if i < 0 || i >= len(obj.overflow) {
			panic("Object.GetSlot: index out of range")
		}
		return obj.overflow[i]
	}
}

// SetSlot stores value at index. Panics if index is out of range.
func (obj *Object) SetSlot(index int, value Value) {
	switch index {
	case 0:
		obj.slot0 = value
	case 1:
		obj.slot1 = value
	case 2:
		obj.slot2 = value
	case 3:
		obj.slot3 = value
	default:
		i := index - NumInlineSlots
		if i < 0 || i >= len(obj.overflow) {
			panic("Object.SetSlot: index out of range")
		}
		obj.overflow[i] = value
	}
}

// NumSlots returns the number of slots in the object, inline included.
func (obj *Object) NumSlots() int {
	return NumInlineSlots + len(obj.overflow)
}

// ForEachSlot calls fn for each slot.
func (obj *Object) ForEachSlot(fn func(index int, value Value)) {
	fn(0, obj.slot0)
	fn(1, obj.slot1)
	fn(2, obj.slot2)
	fn(3, obj.slot3)
	for i, v := range obj.overflow {
		fn(NumInlineSlots+i, v)
	}
}

// Class returns the object's class.
func (obj *Object) Class() *Class {
	return obj.class
}

// ClassName returns the name of the object's class, or "?".
func (obj *Object) ClassName() string {
	if obj.class == nil {
		return "?"
	}
	return obj.class.Name
}

// ToValue boxes obj. The caller must keep obj reachable through the VM.
func (obj *Object) ToValue() Value {
	return fromObjectPtr(unsafe.Pointer(obj))
}

// ObjectFromValue unboxes an object pointer, or returns nil if v is not an
// object.
func ObjectFromValue(v Value) *Object {
	if !v.IsObject() {
		return nil
	}
	return (*Object)(v.objectPtr())
}
