// Package vm is the engine side of magserde: NaN-boxed values, a small
// object heap with mark-sweep collection, and the handle scopes that lend
// values to code outside the VM.
//
// Values never leave the VM directly. A caller opens a HandleScope, places
// values in it and gets back Locals, which are plain tagged indices and
// become stale the moment their scope closes.
package vm
