package magic

import "unsafe"

// Value and payload must be the same size. Either array length below goes
// negative, and fails to compile, if they are not.
var (
	_ [unsafe.Sizeof(Value{}) - unsafe.Sizeof(payload(0))]struct{}
	_ [unsafe.Sizeof(payload(0)) - unsafe.Sizeof(Value{})]struct{}
)

// toPayload and fromPayload are the only places a Value's bits are read or
// written as an integer. fromPayload trusts its input: bits that did not
// come from toPayload on this target produce a Local that names nothing,
// or the wrong thing. vm.HandleScope.Deref catches stale and out-of-range
// Locals but cannot catch a forged one that happens to be in range.

func toPayload(v Value) payload {
	return *(*payload)(unsafe.Pointer(&v))
}

func fromPayload(p payload) Value {
	return *(*Value)(unsafe.Pointer(&p))
}
