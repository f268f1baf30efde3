// Package tunnelvet defines an Analyzer that reports code letting a
// borrowed handle (magic.Value or vm.Local) escape the scope and goroutine
// that issued it.
//
// The runtime rejects such handles when they are resolved; this catches
// the common ways of smuggling them out at build time:
//
//   - package-level variables whose type holds a handle
//   - channels whose element type holds a handle
//   - conversions from unsafe.Pointer to a type holding a handle, outside
//     the magic and vm packages
package tunnelvet

import (
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

const (
	magicPath = "github.com/chazu/magserde/magic"
	vmPath    = "github.com/chazu/magserde/vm"
)

const Doc = `report borrowed maggie handles that can escape their scope

A magic.Value or vm.Local is only valid inside the handle scope that issued
it, on the goroutine that opened that scope. tunnelvet flags package-level
variables and channel element types that can hold one, and forged handles
built from unsafe.Pointer outside the packages that define them.`

var Analyzer = &analysis.Analyzer{
	Name:     "tunnelvet",
	Doc:      Doc,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (any, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	for _, f := range pass.Files {
		for _, decl := range f.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.VAR {
				continue
			}
			checkGlobals(pass, gd)
		}
	}

	nodeFilter := []ast.Node{
		(*ast.ChanType)(nil),
		(*ast.CallExpr)(nil),
	}
	insp.Preorder(nodeFilter, func(n ast.Node) {
		switch n := n.(type) {
		case *ast.ChanType:
			ch, ok := pass.TypesInfo.TypeOf(n).(*types.Chan)
			if !ok {
				return
			}
			if h := findHandle(ch.Elem()); h != nil {
				pass.Reportf(n.Pos(), "channel element type holds %s; handles must not cross goroutines", handleName(h))
			}
		case *ast.CallExpr:
			checkConversion(pass, n)
		}
	})
	return nil, nil
}

func checkGlobals(pass *analysis.Pass, gd *ast.GenDecl) {
	for _, spec := range gd.Specs {
		vs := spec.(*ast.ValueSpec)
		for _, name := range vs.Names {
			if name.Name == "_" {
				continue
			}
			obj := pass.TypesInfo.Defs[name]
			if obj == nil {
				continue
			}
			if h := findHandle(obj.Type()); h != nil {
				pass.Reportf(name.Pos(), "package-level variable %s holds %s, which outlives every handle scope", name.Name, handleName(h))
			}
		}
	}
}

func checkConversion(pass *analysis.Pass, call *ast.CallExpr) {
	if len(call.Args) != 1 {
		return
	}
	tv, ok := pass.TypesInfo.Types[call.Fun]
	if !ok || !tv.IsType() {
		return
	}
	if !types.Identical(pass.TypesInfo.TypeOf(call.Args[0]), types.Typ[types.UnsafePointer]) {
		return
	}
	if p := pass.Pkg.Path(); p == magicPath || p == vmPath {
		return
	}
	if h := findHandle(tv.Type); h != nil {
		pass.Reportf(call.Pos(), "conversion from unsafe.Pointer forges %s", handleName(h))
	}
}

// findHandle returns the handle type reachable from t without following
// interfaces or functions, or nil.
func findHandle(t types.Type) *types.Named {
	return walk(t, make(map[types.Type]bool))
}

func walk(t types.Type, seen map[types.Type]bool) *types.Named {
	if seen[t] {
		return nil
	}
	seen[t] = true

	switch t := types.Unalias(t).(type) {
	case *types.Named:
		if isHandle(t) {
			return t
		}
		return walk(t.Underlying(), seen)
	case *types.Pointer:
		return walk(t.Elem(), seen)
	case *types.Slice:
		return walk(t.Elem(), seen)
	case *types.Array:
		return walk(t.Elem(), seen)
	case *types.Map:
		if h := walk(t.Key(), seen); h != nil {
			return h
		}
		return walk(t.Elem(), seen)
	case *types.Chan:
		return walk(t.Elem(), seen)
	case *types.Struct:
		for i := range t.NumFields() {
			if h := walk(t.Field(i).Type(), seen); h != nil {
				return h
			}
		}
	}
	return nil
}

func isHandle(n *types.Named) bool {
	obj := n.Obj()
	if obj.Pkg() == nil {
		return false
	}
	switch obj.Pkg().Path() {
	case magicPath:
		return obj.Name() == "Value"
	case vmPath:
		return obj.Name() == "Local"
	}
	return false
}

func handleName(n *types.Named) string {
	return n.Obj().Pkg().Name() + "." + n.Obj().Name()
}
