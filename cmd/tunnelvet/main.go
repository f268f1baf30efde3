// tunnelvet reports borrowed maggie handles that can escape their scope.
//
// Usage:
//
//	tunnelvet ./...
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/chazu/magserde/tunnelvet"
)

func main() { singlechecker.Main(tunnelvet.Analyzer) }
