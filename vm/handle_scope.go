package vm

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/petermattis/goid"
)

var (
	ErrScopeClosed    = errors.New("vm: handle scope is closed")
	ErrScopeOrder     = errors.New("vm: handle scope is not the innermost open scope")
	ErrScopeFull      = errors.New("vm: handle scope is full")
	ErrNoParentScope  = errors.New("vm: handle scope has no parent")
	ErrWrongGoroutine = errors.New("vm: handle scope used outside its owning goroutine")
	ErrEmptyHandle    = errors.New("vm: empty handle")
	ErrStaleHandle    = errors.New("vm: handle outlived its scope")
	ErrForeignHandle  = errors.New("vm: handle does not name a slot in its scope")
)

// A Local is a pointer-width tagged index naming one slot in a handle
// scope: the scope serial sits in the high half and the slot index in the
// low half. The zero Local is empty.
//
// A Local borrows its value. It never keeps anything alive on its own and
// is only meaningful while the scope that issued it is open.
type Local struct {
	bits uintptr
}

const (
	slotBits   = bits.UintSize / 2
	slotMask   = uintptr(1)<<slotBits - 1
	serialMask = uint64(1)<<(bits.UintSize-slotBits) - 1
)

func makeLocal(serial uint32, slot int) Local {
	return Local{bits: uintptr(serial)<<slotBits | uintptr(slot)}
}

// IsEmpty reports whether l is the zero Local.
func (l Local) IsEmpty() bool { return l.bits == 0 }

// Serial returns the serial of the scope that issued l.
func (l Local) Serial() uint32 { return uint32(l.bits >> slotBits) }

// Slot returns the slot index of l within its scope.
func (l Local) Slot() int { return int(l.bits & slotMask) }

// SplitLocalBits splits the raw bits of a Local produced on a target with
// the given pointer width into scope serial and slot index. It is for
// diagnostics only and never yields a usable Local.
func SplitLocalBits(raw uint64, width int) (serial uint64, slot uint64) {
	half := uint(width / 2)
	return raw >> half, raw & (uint64(1)<<half - 1)
}

func (l Local) String() string {
	if l.IsEmpty() {
		return "Local(empty)"
	}
	return fmt.Sprintf("Local(scope=%d, slot=%d)", l.Serial(), l.Slot())
}

// HandleScope bounds the validity of the Locals it issues. Values placed in
// a scope are GC roots until the scope closes. Scopes nest per goroutine: a
// scope can resolve Locals issued by itself and by any enclosing open scope
// of the same goroutine, and only the innermost open scope may be closed.
//
// A scope belongs to the goroutine that opened it. Each goroutine has its
// own stack of scopes.
type HandleScope struct {
	vm     *VM
	serial uint32
	depth  int
	owner  int64
	slots  []Value
	closed bool
}

// OpenScope opens a new innermost handle scope owned by the calling
// goroutine.
func (vm *VM) OpenScope() *HandleScope {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	g := goid.Get()
	s := &HandleScope{
		vm:     vm,
		serial: vm.allocSerialLocked(),
		depth:  len(vm.stacks[g]),
		owner:  g,
	}
	vm.stacks[g] = append(vm.stacks[g], s)
	vm.open[s.serial] = s
	log.Debugf("open scope %d at depth %d on goroutine %d", s.serial, s.depth, g)
	return s
}

// allocSerialLocked returns the next non-zero serial not held by an open
// scope. Serials wrap on 32-bit targets.
func (vm *VM) allocSerialLocked() uint32 {
	for {
		vm.nextSerial = uint32((uint64(vm.nextSerial) + 1) & serialMask)
		if vm.nextSerial == 0 {
			continue
		}
		if _, taken := vm.open[vm.nextSerial]; !taken {
			return vm.nextSerial
		}
	}
}

// CurrentScope returns the calling goroutine's innermost open scope, or nil.
func (vm *VM) CurrentScope() *HandleScope {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	stack := vm.stacks[goid.Get()]
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}

// VM returns the VM that owns s.
func (s *HandleScope) VM() *VM { return s.vm }

// Serial returns the scope's serial, which is also the tag in its Locals.
func (s *HandleScope) Serial() uint32 { return s.serial }

// Len returns the number of handles issued by s.
func (s *HandleScope) Len() int {
	s.vm.mu.Lock()
	defer s.vm.mu.Unlock()
	return len(s.slots)
}

func (s *HandleScope) checkLocked() error {
	if s.closed {
		return ErrScopeClosed
	}
	if g := goid.Get(); g != s.owner {
		return fmt.Errorf("%w: opened on goroutine %d, used on %d", ErrWrongGoroutine, s.owner, g)
	}
	return nil
}

// NewLocal places v in s and returns a handle to it.
func (s *HandleScope) NewLocal(v Value) (Local, error) {
	s.vm.mu.Lock()
	defer s.vm.mu.Unlock()

	if err := s.checkLocked(); err != nil {
		return Local{}, err
	}
	return s.appendLocked(v)
}

func (s *HandleScope) appendLocked(v Value) (Local, error) {
	if uintptr(len(s.slots)) > slotMask {
		return Local{}, ErrScopeFull
	}
	s.slots = append(s.slots, v)
	return makeLocal(s.serial, len(s.slots)-1), nil
}

// Deref resolves l. It fails if l is empty, if the scope that issued l is
// no longer open or is nested inside s, if that scope belongs to another
// goroutine, or if l names a slot its scope never issued.
func (s *HandleScope) Deref(l Local) (Value, error) {
	s.vm.mu.Lock()
	defer s.vm.mu.Unlock()

	if err := s.checkLocked(); err != nil {
		return Nil, err
	}
	return s.derefLocked(l)
}

func (s *HandleScope) derefLocked(l Local) (Value, error) {
	if l.IsEmpty() {
		return Nil, ErrEmptyHandle
	}
	owner := s.vm.open[l.Serial()]
	if owner == nil || (owner.owner == s.owner && owner.depth > s.depth) {
		return Nil, fmt.Errorf("%w: %s resolved in scope %d", ErrStaleHandle, l, s.serial)
	}
	if owner.owner != s.owner {
		return Nil, fmt.Errorf("%w: %s issued on goroutine %d, resolved on %d", ErrWrongGoroutine, l, owner.owner, s.owner)
	}
	if l.Slot() >= len(owner.slots) {
		return Nil, fmt.Errorf("%w: %s", ErrForeignHandle, l)
	}
	return owner.slots[l.Slot()], nil
}

// Owns reports whether l resolves in s.
func (s *HandleScope) Owns(l Local) bool {
	_, err := s.Deref(l)
	return err == nil
}

// Escape copies the value behind l into the parent scope, returning a
// handle that survives closing s.
func (s *HandleScope) Escape(l Local) (Local, error) {
	s.vm.mu.Lock()
	defer s.vm.mu.Unlock()

	if err := s.checkLocked(); err != nil {
		return Local{}, err
	}
	if s.depth == 0 {
		return Local{}, ErrNoParentScope
	}
	v, err := s.derefLocked(l)
	if err != nil {
		return Local{}, err
	}
	return s.vm.stacks[s.owner][s.depth-1].appendLocked(v)
}

// Close ends s. Every Local it issued becomes stale and the values it
// rooted become collectable. Closing an already closed scope is a no-op.
func (s *HandleScope) Close() error {
	s.vm.mu.Lock()
	defer s.vm.mu.Unlock()

	if s.closed {
		return nil
	}
	if g := goid.Get(); g != s.owner {
		return fmt.Errorf("%w: opened on goroutine %d, closed on %d", ErrWrongGoroutine, s.owner, g)
	}
	stack := s.vm.stacks[s.owner]
	if n := len(stack); n == 0 || stack[n-1] != s {
		return ErrScopeOrder
	}
	if stack = stack[:len(stack)-1]; len(stack) == 0 {
		delete(s.vm.stacks, s.owner)
	} else {
		s.vm.stacks[s.owner] = stack
	}
	delete(s.vm.open, s.serial)
	s.closed = true
	log.Debugf("close scope %d, released %d handles", s.serial, len(s.slots))
	s.slots = nil
	return nil
}
