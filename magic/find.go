package magic

import (
	"fmt"
	"maps"
	"slices"
)

// Occurrence is a tunneled value found in a naively decoded document.
type Occurrence struct {
	Path  string
	Bits  uint64
	Width int
}

// Find walks a document produced by serde.DecodeAny and reports every
// sentinel struct in it, in path order. Nothing is reinterpreted; the bits
// are reported as found.
func Find(doc any) []Occurrence {
	var out []Occurrence
	find(doc, "$", &out)
	return out
}

func find(x any, path string, out *[]Occurrence) {
	switch t := x.(type) {
	case map[string]any:
		if len(t) == 1 {
			switch p := t[Field].(type) {
			case uint64:
				*out = append(*out, Occurrence{Path: path, Bits: p, Width: 64})
				return
			case uint32:
				*out = append(*out, Occurrence{Path: path, Bits: uint64(p), Width: 32})
				return
			}
		}
		for _, k := range slices.Sorted(maps.Keys(t)) {
			find(t[k], path+"."+k, out)
		}
	case []any:
		for i, e := range t {
			find(e, fmt.Sprintf("%s[%d]", path, i), out)
		}
	}
}
