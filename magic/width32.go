//go:build 386 || arm || mips || mipsle

package magic

// payload is the integer a Value is reinterpreted as on 32-bit targets.
type payload = uint32

// PayloadBits is the width of the tunneled integer on this target.
const PayloadBits = 32

func (v *visitor) VisitUint32(p uint32) error {
	v.out = fromPayload(p)
	return nil
}

func (v *visitor) VisitUint64(uint64) error {
	return widthMismatch(64)
}
