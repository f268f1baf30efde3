package vm

type Local struct {
	bits uintptr
}

type Value uint64
