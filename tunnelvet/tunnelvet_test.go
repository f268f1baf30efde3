package tunnelvet_test

import (
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"

	"github.com/chazu/magserde/tunnelvet"
)

func TestAnalyzer(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), tunnelvet.Analyzer, "a", "github.com/chazu/magserde/magic")
}
