/*
Copyright (C) 2024-2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// rowsig scans Go source for matcher.RowRef{RowID: ...} composite
// literals and reports the distinct row-ID signature a hand-written
// match tree actually touches, plus a ready-to-paste regalloc.New
// call. This is the same AST-walk-over-a-loaded-package shape as the
// teacher's tools/jitgen (collectOperators walking Declare() call
// sites); here the call site of interest is a RowRef literal instead
// of a Declare call.
//
// Usage:
//
//	go run ./tools/rowsig <package pattern> ...
package main

import (
	"fmt"
	"go/ast"
	"go/token"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"
)

type rowUse struct {
	rowID int
	pos   token.Position
}

func main() {
	patterns := os.Args[1:]
	if len(patterns) == 0 {
		fmt.Fprintln(os.Stderr, "usage: rowsig <package pattern> ...")
		os.Exit(1)
	}

	cfg := &packages.Config{
		Mode: packages.NeedFiles | packages.NeedSyntax | packages.NeedTypes |
			packages.NeedTypesInfo | packages.NeedImports | packages.NeedName,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rowsig: load: %v\n", err)
		os.Exit(1)
	}

	var uses []rowUse
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			fmt.Fprintf(os.Stderr, "rowsig: %v\n", e)
		}
		fset := pkg.Fset
		for _, f := range pkg.Syntax {
			uses = append(uses, collectRowRefs(fset, f)...)
		}
	}

	if len(uses) == 0 {
		fmt.Println("no matcher.RowRef{RowID: ...} literals found")
		return
	}

	sort.Slice(uses, func(i, j int) bool {
		if uses[i].rowID != uses[j].rowID {
			return uses[i].rowID < uses[j].rowID
		}
		return uses[i].pos.String() < uses[j].pos.String()
	})

	seen := map[int]bool{}
	var ids []int
	for _, u := range uses {
		fmt.Printf("  row %-4d %s\n", u.rowID, u.pos)
		if !seen[u.rowID] {
			seen[u.rowID] = true
			ids = append(ids, u.rowID)
		}
	}

	sort.Ints(ids)
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = strconv.Itoa(id)
	}
	fmt.Printf("\nregalloc.New([]int{%s})\n", strings.Join(strs, ", "))
}

// collectRowRefs walks f for composite literals shaped like
// matcher.RowRef{RowID: N} (qualified) or RowRef{RowID: N}
// (dot-imported or same-package), where N is an integer literal.
// Non-literal RowID expressions (a variable, a loop index) are
// reported as skipped rather than silently dropped, since those are
// exactly the cases a static signature can't resolve.
func collectRowRefs(fset *token.FileSet, f *ast.File) []rowUse {
	var uses []rowUse
	ast.Inspect(f, func(n ast.Node) bool {
		lit, ok := n.(*ast.CompositeLit)
		if !ok {
			return true
		}
		if !isRowRefType(lit.Type) {
			return true
		}
		for _, elt := range lit.Elts {
			kv, ok := elt.(*ast.KeyValueExpr)
			if !ok {
				continue
			}
			key, ok := kv.Key.(*ast.Ident)
			if !ok || key.Name != "RowID" {
				continue
			}
			id, ok := intLiteral(kv.Value)
			if !ok {
				pos := fset.Position(kv.Value.Pos())
				fmt.Fprintf(os.Stderr, "rowsig: %s: RowID is not a literal, skipping\n", pos)
				continue
			}
			uses = append(uses, rowUse{rowID: id, pos: fset.Position(lit.Pos())})
		}
		return true
	})
	return uses
}

func isRowRefType(e ast.Expr) bool {
	switch t := e.(type) {
	case *ast.Ident:
		return t.Name == "RowRef"
	case *ast.SelectorExpr:
		return t.Sel.Name == "RowRef"
	default:
		return false
	}
}

func intLiteral(e ast.Expr) (int, bool) {
	lit, ok := e.(*ast.BasicLit)
	if !ok || lit.Kind != token.INT {
		return 0, false
	}
	v, err := strconv.Atoi(lit.Value)
	if err != nil {
		return 0, false
	}
	return v, true
}
