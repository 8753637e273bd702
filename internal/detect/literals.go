package detect

import (
	"github.com/t14raptor/go-fast/ast"
	"github.com/t14raptor/go-fast/parser"
)

// ExtractLiterals pulls string literals out of JavaScript/TypeScript
// source using go-fast instead of descending the GAST, so literal-pattern
// detectors (API endpoint strings, SQL fragments, sensitive-looking
// constants) never pay for a second full tree walk. Only top-level
// expression statements, blocks and variable initializers are visited,
// descending through call callees/arguments and binary operands; literals
// inside function bodies, returns, object or array literals and other
// statement kinds are not collected. go-fast doesn't
// support every TypeScript construct; a parse failure here just means the
// caller falls back to zero literals rather than failing the scan.
func ExtractLiterals(source string) []Literal {
	program, err := parser.ParseFile(source)
	if err != nil {
		return nil
	}

	var literals []Literal
	var visitStmt func(ast.Stmt)
	var visitExpr func(ast.Expr)

	visitExpr = func(e ast.Expr) {
		switch v := e.(type) {
		case nil:
			return
		case *ast.StringLiteral:
			literals = append(literals, Literal{Value: v.Value, Line: lineFromIdx(source, int(v.Idx))})
		case *ast.CallExpression:
			visitExpr(v.Callee)
			for _, a := range v.ArgumentList {
				visitExpr(a)
			}
		case *ast.BinaryExpression:
			visitExpr(v.Left)
			visitExpr(v.Right)
		}
	}

	visitStmt = func(s ast.Stmt) {
		switch v := s.(type) {
		case nil:
			return
		case *ast.ExpressionStatement:
			visitExpr(v.Expression)
		case *ast.BlockStatement:
			for _, inner := range v.List {
				visitStmt(inner.Stmt)
			}
		case *ast.VariableDeclaration:
			for _, decl := range v.List {
				if decl.Init != nil {
					visitExpr(decl.Init)
				}
			}
		}
	}

	for _, stmt := range program.Body {
		visitStmt(stmt.Stmt)
	}
	return literals
}

// lineFromIdx converts a go-fast byte offset into a 1-based line number,
// the same linear scan a dedicated symbol extractor would use.
func lineFromIdx(source string, idx int) uint {
	line := uint(1)
	for i := 0; i < idx && i < len(source); i++ {
		if source[i] == '\n' {
			line++
		}
	}
	return line
}
