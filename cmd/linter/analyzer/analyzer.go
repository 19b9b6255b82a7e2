package analyzer

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

const (
	analyzerName = "forbiddencalls"
	analyzerDoc  = "reports panic, process exits outside main, the standard logger and fmt printing to stdout outside main"
)

const zerologPath = "github.com/rs/zerolog/log"

// Analyzer checks for calls that bypass structured logging or stop the process outside main.
var Analyzer = &analysis.Analyzer{
	Name:     analyzerName,
	Doc:      analyzerDoc,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.FuncDecl)(nil),
		(*ast.CallExpr)(nil),
	}

	var inMain bool
	insp.Nodes(nodeFilter, func(node ast.Node, push bool) bool {
		switch n := node.(type) {
		case *ast.FuncDecl:
			inMain = push && n.Recv == nil && n.Name.Name == "main"
		case *ast.CallExpr:
			if push {
				checkCall(pass, n, inMain)
			}
		}
		return true
	})

	return nil, nil
}

func checkCall(pass *analysis.Pass, callExpr *ast.CallExpr, inMain bool) {
	switch fn := callExpr.Fun.(type) {
	case *ast.Ident:
		if fn.Name == "panic" && isBuiltin(pass, fn) {
			pass.Reportf(callExpr.Pos(), "panic is forbidden")
		}
	case *ast.SelectorExpr:
		checkSelectorExpr(pass, fn, callExpr, inMain)
	}
}

func isBuiltin(pass *analysis.Pass, ident *ast.Ident) bool {
	_, ok := pass.TypesInfo.Uses[ident].(*types.Builtin)
	return ok
}

func checkSelectorExpr(pass *analysis.Pass, selectorExpr *ast.SelectorExpr, callExpr *ast.CallExpr, inMain bool) {
	ident, ok := selectorExpr.X.(*ast.Ident)
	if !ok {
		return
	}

	pkgName, ok := pass.TypesInfo.Uses[ident].(*types.PkgName)
	if !ok {
		return
	}

	fn := selectorExpr.Sel.Name

	switch pkgName.Imported().Path() {
	case "log":
		switch fn {
		case "Fatal", "Fatalf", "Fatalln":
			if !inMain {
				pass.Reportf(callExpr.Pos(), "log.%s is forbidden outside main function", fn)
			}
		case "Print", "Printf", "Println":
			pass.Reportf(callExpr.Pos(), "log.%s is forbidden, use zerolog", fn)
		}
	case zerologPath:
		if fn == "Fatal" && !inMain {
			pass.Reportf(callExpr.Pos(), "log.Fatal is forbidden outside main function")
		}
	case "os":
		if fn == "Exit" && !inMain {
			pass.Reportf(callExpr.Pos(), "os.Exit is forbidden outside main function")
		}
	case "fmt":
		switch fn {
		case "Print", "Printf", "Println":
			if !inMain {
				pass.Reportf(callExpr.Pos(), "fmt.%s is forbidden outside main function", fn)
			}
		}
	}
}
