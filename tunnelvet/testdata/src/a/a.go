package a

import (
	"unsafe"

	"github.com/chazu/magserde/magic"
	"github.com/chazu/magserde/vm"
)

var last magic.Value // want `package-level variable last holds magic.Value`

var cache map[string][]vm.Local // want `package-level variable cache holds vm.Local`

type call struct {
	method string
	recv   magic.Value
}

var pending *call // want `package-level variable pending holds magic.Value`

var values []vm.Value

var _ magic.Value

var count int

func send() {
	ch := make(chan call) // want `channel element type holds magic.Value`
	_ = ch
	ok := make(chan vm.Value)
	_ = ok
}

func recv(in <-chan vm.Local) { // want `channel element type holds vm.Local`
	_ = in
}

func forge(bits uint64) magic.Value {
	return *(*magic.Value)(unsafe.Pointer(&bits)) // want `conversion from unsafe.Pointer forges magic.Value`
}

func local() {
	var v magic.Value
	_ = v
	p := unsafe.Pointer(&v)
	_ = (*uint64)(p)
}
