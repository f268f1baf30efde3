// Package magic tunnels borrowed VM values through serde formats untouched.
//
// A Value wraps a vm.Local. It serializes as a struct named Name with one
// field, Field, whose value is the Local's bits read as a pointer-width
// unsigned integer. A format that recognises Name can divert to a cheaper
// representation; one that does not simply writes a one-field struct, which
// decodes back to the same Local as long as the integer width survives.
// Decoding a sentinel struct with a naive visitor yields an inert map.
//
// Mixed documents carry Values next to plain data:
//
//	type Call struct {
//		Method string
//		Recv   magic.Value
//	}
//
// Values borrow. Nothing in this package releases a handle; the
// vm.HandleScope that issued it does, on Close. A decoded Value is only
// meaningful inside that scope, so resolve it with DecodeIn or Value.In,
// which reject handles whose scope is gone.
package magic
