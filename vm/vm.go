package vm

import (
	"fmt"
	"sync"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("magserde.vm")

// VM owns every engine value. Objects are kept alive in the heap set
// because a boxed Value hides its pointer from the Go collector; they leave
// it only when CollectGarbage finds them unreachable from globals and open
// handle scopes.
type VM struct {
	Symbols *SymbolTable

	mu      sync.Mutex
	classes map[string]*Class
	globals map[string]Value
	heap    map[*Object]struct{}

	// Open handle scopes by serial, and per owning goroutine innermost last.
	open       map[uint32]*HandleScope
	stacks     map[int64][]*HandleScope
	nextSerial uint32
}

// NewVM creates an empty VM.
func NewVM() *VM {
	return &VM{
		Symbols: NewSymbolTable(),
		classes: make(map[string]*Class),
		globals: make(map[string]Value),
		heap:    make(map[*Object]struct{}),
		open:    make(map[uint32]*HandleScope),
		stacks:  make(map[int64][]*HandleScope),
	}
}

// NewClass defines a class with the given instance variables. Redefining a
// name replaces the previous class for new instances only.
func (vm *VM) NewClass(name string, instVars ...string) *Class {
	c := &Class{Name: name, InstVars: append([]string(nil), instVars...)}
	vm.mu.Lock()
	vm.classes[name] = c
	vm.mu.Unlock()
	return c
}

// LookupClass returns the class registered under name.
func (vm *VM) LookupClass(name string) (*Class, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	c, ok := vm.classes[name]
	return c, ok
}

// Instantiate allocates an instance of class with the given leading slot
// values. Remaining slots are nil.
func (vm *VM) Instantiate(class *Class, slots ...Value) (Value, error) {
	if len(slots) > class.NumSlots() {
		return Nil, fmt.Errorf("vm: %s has %d slots, got %d values", class.Name, class.NumSlots(), len(slots))
	}
	obj := newObject(class, slots)
	vm.mu.Lock()
	vm.heap[obj] = struct{}{}
	vm.mu.Unlock()
	return obj.ToValue(), nil
}

// Intern returns the symbol value for name.
func (vm *VM) Intern(name string) Value {
	return FromSymbolID(vm.Symbols.Intern(name))
}

// SetGlobal binds name to v. Globals are GC roots.
func (vm *VM) SetGlobal(name string, v Value) {
	vm.mu.Lock()
	vm.globals[name] = v
	vm.mu.Unlock()
}

// Global returns the value bound to name.
func (vm *VM) Global(name string) (Value, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	v, ok := vm.globals[name]
	return v, ok
}

// ---------------------------------------------------------------------------
// Garbage Collection
// ---------------------------------------------------------------------------

// CollectGarbage runs a mark-sweep pass. Roots are the globals and the
// slots of every open handle scope. It returns the number of objects
// dropped from the heap.
func (vm *VM) CollectGarbage() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	marked := make(map[*Object]struct{})
	for _, v := range vm.globals {
		markValue(v, marked)
	}
	for _, s := range vm.open {
		for _, v := range s.slots {
			markValue(v, marked)
		}
	}

	collected := 0
	for obj := range vm.heap {
		if _, ok := marked[obj]; !ok {
			delete(vm.heap, obj)
			collected++
		}
	}
	if collected > 0 {
		log.Debugf("collected %d objects, %d live", collected, len(vm.heap))
	}
	return collected
}

func markValue(v Value, marked map[*Object]struct{}) {
	obj := ObjectFromValue(v)
	if obj == nil {
		return
	}
	if _, ok := marked[obj]; ok {
		return
	}
	marked[obj] = struct{}{}
	obj.ForEachSlot(func(_ int, slot Value) {
		markValue(slot, marked)
	})
}

// HeapSize returns the number of live objects.
func (vm *VM) HeapSize() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return len(vm.heap)
}

// Holds reports whether obj is still in the heap.
func (vm *VM) Holds(v Value) bool {
	obj := ObjectFromValue(v)
	if obj == nil {
		return false
	}
	vm.mu.Lock()
	defer vm.mu.Unlock()
	_, ok := vm.heap[obj]
	return ok
}
