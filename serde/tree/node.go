// Package tree is an in-memory serde format: values encode to a Node tree
// and decode back from one. It keeps struct names and integer widths, and
// stores tunneled magic values as KindHandle leaves instead of one-field
// structs.
package tree

import (
	"fmt"
	"strings"
)

// Kind is the type of a Node.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindBytes
	KindSeq
	KindMap
	KindStruct
	KindHandle
)

var kindNames = [...]string{
	KindNil:    "nil",
	KindBool:   "bool",
	KindInt:    "int",
	KindUint:   "uint",
	KindFloat:  "float",
	KindString: "string",
	KindBytes:  "bytes",
	KindSeq:    "seq",
	KindMap:    "map",
	KindStruct: "struct",
	KindHandle: "handle",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Node is one value in a document tree. Only the fields for its Kind are
// set. Uint and Handle nodes carry their declared Width, 32 or 64.
type Node struct {
	Kind    Kind
	Name    string
	Bool    bool
	Int     int64
	Uint    uint64
	Width   int
	Float   float64
	Str     string
	Bytes   []byte
	Items   []Node
	Entries []Entry
}

// Entry is a map entry or struct field.
type Entry struct {
	Key   string
	Value Node
}

func Nil() Node              { return Node{Kind: KindNil} }
func Bool(b bool) Node       { return Node{Kind: KindBool, Bool: b} }
func Int(n int64) Node       { return Node{Kind: KindInt, Int: n} }
func Uint32(n uint32) Node   { return Node{Kind: KindUint, Uint: uint64(n), Width: 32} }
func Uint64(n uint64) Node   { return Node{Kind: KindUint, Uint: n, Width: 64} }
func Float(f float64) Node   { return Node{Kind: KindFloat, Float: f} }
func String(s string) Node   { return Node{Kind: KindString, Str: s} }
func Bytes(b []byte) Node    { return Node{Kind: KindBytes, Bytes: b} }
func Seq(items ...Node) Node { return Node{Kind: KindSeq, Items: items} }

// Map builds a map node. Entry order is kept.
func Map(entries ...Entry) Node {
	return Node{Kind: KindMap, Entries: entries}
}

// Struct builds a named struct node.
func Struct(name string, fields ...Entry) Node {
	return Node{Kind: KindStruct, Name: name, Entries: fields}
}

// Field builds an Entry.
func Field(key string, v Node) Entry {
	return Entry{Key: key, Value: v}
}

// String renders n compactly, for test failures and debugging.
func (n Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n Node) write(b *strings.Builder) {
	switch n.Kind {
	case KindNil:
		b.WriteString("nil")
	case KindBool:
		fmt.Fprintf(b, "%t", n.Bool)
	case KindInt:
		fmt.Fprintf(b, "%d", n.Int)
	case KindUint:
		fmt.Fprintf(b, "%du%d", n.Uint, n.Width)
	case KindFloat:
		fmt.Fprintf(b, "%g", n.Float)
	case KindString:
		fmt.Fprintf(b, "%q", n.Str)
	case KindBytes:
		fmt.Fprintf(b, "h'%x'", n.Bytes)
	case KindHandle:
		fmt.Fprintf(b, "handle(%#x/u%d)", n.Uint, n.Width)
	case KindSeq:
		b.WriteByte('[')
		for i, it := range n.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			it.write(b)
		}
		b.WriteByte(']')
	case KindMap, KindStruct:
		b.WriteString(n.Name)
		b.WriteByte('{')
		for i, e := range n.Entries {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "%s: ", e.Key)
			e.Value.write(b)
		}
		b.WriteByte('}')
	default:
		b.WriteString(n.Kind.String())
	}
}
