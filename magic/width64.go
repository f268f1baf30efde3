//go:build !(386 || arm || mips || mipsle)

package magic

// payload is the integer a Value is reinterpreted as on 64-bit targets.
type payload = uint64

// PayloadBits is the width of the tunneled integer on this target.
const PayloadBits = 64

func (v *visitor) VisitUint64(p uint64) error {
	v.out = fromPayload(p)
	return nil
}

func (v *visitor) VisitUint32(uint32) error {
	return widthMismatch(32)
}
