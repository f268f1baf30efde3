package magic

import (
	"errors"
	"fmt"

	"github.com/chazu/magserde/serde"
	"github.com/chazu/magserde/vm"
)

const (
	// Name marks a struct emission as a tunneled value. A user type with
	// this exact name would be mistaken for one.
	Name = "$__maggie_magic_Value"

	// Field is the single field of a Name struct.
	Field = "$__maggie_magic_value"

	expecting = "a maggie value"
)

var fields = []string{Field}

var (
	// ErrShapeMismatch is returned when the input is not a one-field
	// struct named Name with field Field.
	ErrShapeMismatch = errors.New("magic: shape mismatch")

	// ErrWidthMismatch is returned when the payload integer is not
	// PayloadBits wide.
	ErrWidthMismatch = errors.New("magic: payload width mismatch")
)

// Value is a borrowed engine value carried through a serde pipeline.
// Its memory layout is exactly one payload integer.
type Value struct {
	local vm.Local
}

// FromLocal wraps l.
func FromLocal(l vm.Local) Value {
	return Value{local: l}
}

// Local returns the wrapped handle.
func (v Value) Local() vm.Local {
	return v.local
}

// In resolves v in scope.
func (v Value) In(scope *vm.HandleScope) (vm.Value, error) {
	return scope.Deref(v.local)
}

func (v Value) String() string {
	return fmt.Sprintf("magic.Value(%s)", v.local)
}

// Serialize emits v as the sentinel struct.
func (v Value) Serialize(s serde.Serializer) error {
	st, err := s.SerializeStruct(Name, 1)
	if err != nil {
		return err
	}
	if err := st.SerializeField(Field, toPayload(v)); err != nil {
		return err
	}
	return st.End()
}

// Deserialize reads a sentinel struct written by Serialize.
func (v *Value) Deserialize(d serde.Deserializer) error {
	vis := newVisitor(false)
	if err := d.DeserializeStruct(Name, fields, vis); err != nil {
		return classify(err)
	}
	*v = vis.out
	return nil
}

// Decode reads a Value from d.
func Decode(d serde.Deserializer) (Value, error) {
	var v Value
	err := v.Deserialize(d)
	return v, err
}

// DecodeIn reads a Value from d and checks that it resolves in scope.
func DecodeIn(scope *vm.HandleScope, d serde.Deserializer) (Value, error) {
	v, err := Decode(d)
	if err != nil {
		return Value{}, err
	}
	if _, err := scope.Deref(v.local); err != nil {
		return Value{}, fmt.Errorf("magic: decoded %s: %w", v.local, err)
	}
	return v, nil
}

// classify tags visitor failures with the sentinel errors. A *serde.Error
// about the payload integer is a width problem; everything else is shape.
func classify(err error) error {
	if errors.Is(err, ErrShapeMismatch) || errors.Is(err, ErrWidthMismatch) {
		return err
	}
	var se *serde.Error
	if errors.As(err, &se) {
		return fmt.Errorf("%w: %w", ErrShapeMismatch, err)
	}
	return err
}
