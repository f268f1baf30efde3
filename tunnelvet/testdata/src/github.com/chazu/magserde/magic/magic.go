package magic

import (
	"unsafe"

	"github.com/chazu/magserde/vm"
)

type Value struct {
	local vm.Local
}

// Allowed here: magic owns the reinterpretation.
func fromPayload(p uint64) Value {
	return *(*Value)(unsafe.Pointer(&p))
}
