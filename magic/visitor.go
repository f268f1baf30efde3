package magic

import (
	"fmt"

	"github.com/chazu/magserde/serde"
)

// visitor rebuilds a Value. At the top level it accepts the bare payload
// (a cooperating format's fast path) or the sentinel struct; as the
// payload visitor for the struct's field it accepts only the integer.
// The payload-width methods live in width64.go and width32.go.
type visitor struct {
	serde.BaseVisitor
	payload bool
	out     Value
}

func newVisitor(payload bool) *visitor {
	return &visitor{BaseVisitor: serde.BaseVisitor{Expect: expecting}, payload: payload}
}

func shapeMismatch(err error) error {
	return fmt.Errorf("%w: %w", ErrShapeMismatch, err)
}

func widthMismatch(got int) error {
	return fmt.Errorf("%w: %w", ErrWidthMismatch,
		serde.InvalidType(fmt.Sprintf("u%d payload on a %d-bit target", got, PayloadBits), expecting))
}

func (v *visitor) VisitStruct(name string, a serde.MapAccess) error {
	if v.payload || name != Name {
		return shapeMismatch(v.BaseVisitor.VisitStruct(name, a))
	}
	return v.VisitMap(a)
}

func (v *visitor) VisitMap(a serde.MapAccess) error {
	if v.payload {
		return shapeMismatch(v.BaseVisitor.VisitMap(a))
	}
	if n := a.Len(); n >= 0 && n != 1 {
		return shapeMismatch(serde.InvalidLength(n, expecting))
	}

	key, val, ok, err := a.Next()
	if err != nil {
		return err
	}
	if !ok {
		return shapeMismatch(serde.InvalidLength(0, expecting))
	}
	if key != Field {
		return shapeMismatch(serde.UnknownField(key, expecting))
	}
	pv := newVisitor(true)
	if err := val.DeserializeAny(pv); err != nil {
		return err
	}

	// Formats that cannot report a length up front are checked here.
	if _, _, more, err := a.Next(); err != nil {
		return err
	} else if more {
		return shapeMismatch(serde.InvalidLength(2, expecting))
	}
	v.out = pv.out
	return nil
}

// Every other input is the wrong shape.

func (v *visitor) VisitNil() error              { return shapeMismatch(v.BaseVisitor.VisitNil()) }
func (v *visitor) VisitBool(b bool) error       { return shapeMismatch(v.BaseVisitor.VisitBool(b)) }
func (v *visitor) VisitInt64(n int64) error     { return shapeMismatch(v.BaseVisitor.VisitInt64(n)) }
func (v *visitor) VisitFloat64(f float64) error { return shapeMismatch(v.BaseVisitor.VisitFloat64(f)) }
func (v *visitor) VisitString(s string) error   { return shapeMismatch(v.BaseVisitor.VisitString(s)) }
func (v *visitor) VisitBytes(b []byte) error    { return shapeMismatch(v.BaseVisitor.VisitBytes(b)) }

func (v *visitor) VisitSeq(a serde.SeqAccess) error {
	return shapeMismatch(v.BaseVisitor.VisitSeq(a))
}
