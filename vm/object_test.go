package vm

import (
	"testing"
)

func TestNewObject(t *testing.T) {
	c := &Class{Name: "Pair", InstVars: []string{"a", "b"}}
	obj := newObject(c, []Value{FromSmallInt(1)})

	if obj.NumSlots() != NumInlineSlots {
		t.Errorf("NumSlots() = %d, want %d (inline slots)", obj.NumSlots(), NumInlineSlots)
	}
	if obj.GetSlot(0) != FromSmallInt(1) {
		t.Errorf("slot 0 = %v, want 1", obj.GetSlot(0))
	}
	for i := 1; i < NumInlineSlots; i++ {
		if obj.GetSlot(i) != Nil {
			t.Errorf("slot %d should be Nil", i)
		}
	}
}

func TestNewObjectWithOverflow(t *testing.T) {
	c := &Class{Name: "Wide", InstVars: []string{"a", "b", "c", "d", "e", "f", "g"}}
	obj := newObject(c, nil)

	if obj.NumSlots() != 7 {
		t.Errorf("NumSlots() = %d, want 7", obj.NumSlots())
	}
	obj.SetSlot(6, True)
	if obj.GetSlot(6) != True {
		t.Error("overflow slot did not round-trip")
	}

	var seen int
	obj.ForEachSlot(func(i int, v Value) {
		if i == 6 && v != True {
			t.Errorf("ForEachSlot slot 6 = %v", v)
		}
		seen++
	})
	if seen != 7 {
		t.Errorf("ForEachSlot visited %d slots, want 7", seen)
	}
}

func TestObjectSlotOutOfRange(t *testing.T) {
	obj := newObject(&Class{Name: "Empty"}, nil)
	defer func() {
		if recover() == nil {
			t.Error("GetSlot past the end should panic")
		}
	}()
	obj.GetSlot(NumInlineSlots)
}

func TestObjectValueRoundTrip(t *testing.T) {
	c := &Class{Name: "Box", InstVars: []string{"v"}}
	obj := newObject(c, nil)

	v := obj.ToValue()
	if !v.IsObject() {
		t.Fatal("ToValue should produce an object value")
	}
	if ObjectFromValue(v) != obj {
		t.Error("ObjectFromValue did not return the same object")
	}
	if ObjectFromValue(FromSmallInt(1)) != nil {
		t.Error("ObjectFromValue on a non-object should be nil")
	}
	if obj.ClassName() != "Box" || obj.Class() != c {
		t.Error("class mismatch")
	}
}

func TestClassSlotIndex(t *testing.T) {
	c := &Class{Name: "Point", InstVars: []string{"x", "y"}}
	if c.SlotIndex("y") != 1 {
		t.Errorf("SlotIndex(y) = %d, want 1", c.SlotIndex("y"))
	}
	if c.SlotIndex("z") != -1 {
		t.Errorf("SlotIndex(z) = %d, want -1", c.SlotIndex("z"))
	}
}
