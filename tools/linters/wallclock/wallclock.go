// Package wallclock provides a linter that reports direct reads of the wall
// clock outside the clock package.
//
// Date logic must be deterministic for a given "today", so the current time
// is only read through an injected clock.Clock. The linter flags calls to
// time.Now, time.Since and time.Until in every package whose import path
// does not end in "internal/clock".
//
// A call can be exempted with a //nolint or //nolint:wallclock comment on
// the same line or the line above.
package wallclock

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// AllowedPackageSuffix is the import path suffix of the package allowed to
// read the wall clock.
const AllowedPackageSuffix = "internal/clock"

// Analyzer is the wallclock analyzer.
var Analyzer = &analysis.Analyzer{
	Name:     "wallclock",
	Doc:      "reports time.Now, time.Since and time.Until outside internal/clock; inject a clock.Clock instead",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

var clockReads = map[string]bool{
	"Now":   true,
	"Since": true,
	"Until": true,
}

func run(pass *analysis.Pass) (any, error) {
	if strings.HasSuffix(pass.Pkg.Path(), AllowedPackageSuffix) {
		return nil, nil
	}

	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	nolint := nolintLines(pass)

	insp.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node) {
		call := n.(*ast.CallExpr)
		name, ok := timeFunc(pass, call)
		if !ok {
			return
		}

		pos := pass.Fset.Position(call.Pos())
		if nolint[lineKey{pos.Filename, pos.Line}] || nolint[lineKey{pos.Filename, pos.Line - 1}] {
			return
		}

		pass.Reportf(call.Pos(), "time.%s reads the wall clock; use an injected clock.Clock", name)
	})

	return nil, nil
}

// timeFunc reports whether call invokes one of the clock-reading functions
// of package time, resolving renamed imports through type information.
func timeFunc(pass *analysis.Pass, call *ast.CallExpr) (string, bool) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || !clockReads[sel.Sel.Name] {
		return "", false
	}
	fn, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)
	if !ok || fn.Pkg() == nil || fn.Pkg().Path() != "time" {
		return "", false
	}
	// Methods such as (time.Time).Until are not package functions.
	if sig, ok := fn.Type().(*types.Signature); ok && sig.Recv() != nil {
		return "", false
	}
	return sel.Sel.Name, true
}

type lineKey struct {
	file string
	line int
}

// nolintLines collects the lines carrying a //nolint comment that applies to
// this linter: a bare //nolint or one whose list names wallclock.
func nolintLines(pass *analysis.Pass) map[lineKey]bool {
	lines := make(map[lineKey]bool)
	for _, file := range pass.Files {
		for _, cg := range file.Comments {
			for _, c := range cg.List {
				if !appliesHere(c.Text) {
					continue
				}
				pos := pass.Fset.Position(c.Pos())
				lines[lineKey{pos.Filename, pos.Line}] = true
			}
		}
	}
	return lines
}

func appliesHere(text string) bool {
	text = strings.TrimSpace(strings.TrimPrefix(text, "//"))
	rest, ok := strings.CutPrefix(text, "nolint")
	if !ok {
		return false
	}
	linters, ok := strings.CutPrefix(rest, ":")
	if !ok {
		return rest == "" || strings.HasPrefix(rest, " ")
	}
	// "//nolint:a,b // reason"
	linters, _, _ = strings.Cut(linters, " ")
	for name := range strings.SplitSeq(linters, ",") {
		if name == Analyzer.Name {
			return true
		}
	}
	return false
}
