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

package matcher

import (
	"fmt"

	"github.com/sliceindex/matchjit/asmbuf"
	"github.com/sliceindex/matchjit/regalloc"
)

// RowExpr is the narrow interface spec §4.3 describes: a pre-built
// compile-node tree that, given the active row-slot assignment, emits
// the instructions to evaluate one quadword's combined predicate. A
// concrete implementation of the abstract "compile-node tree" the
// emitter treats as a consumed external contract — provided here so
// the emitter is independently testable, the same role the teacher's
// jit_types.go JITEmit contract plays for scm's expression compiler.
type RowExpr interface {
	emit(c *rowCompiler) (asmbuf.Reg, error)
}

// RowRef selects one preloaded row by its row ID (as registered with
// the regalloc.Assignment handed to Compile), loading its quadword at
// the current iteration cursor.
type RowRef struct{ RowID int }

// Const is a fabricated constant quadword, useful for tests that want
// to drive the drain from a known bit pattern without a real row.
type Const struct{ Value uint64 }

// And is the bitwise AND of two or more subexpressions.
type And struct{ Children []RowExpr }

// Or is the bitwise OR of two or more subexpressions.
type Or struct{ Children []RowExpr }

// Not is the bitwise complement of a single subexpression.
type Not struct{ Child RowExpr }

// rowCompiler is the "code-generator handle, register-allocator view"
// spec §4.3 names as the adapter's other two inputs. Per the
// contract, it may use any register outside {R-param, R-slice,
// R-iter, R-limit, R-rows[0..K-1]} freely, without save/restore — its
// free list is drawn only from that remaining register set.
type rowCompiler struct {
	f    *asmbuf.Func
	rows *regalloc.Assignment
	iter asmbuf.Reg
	free []asmbuf.Reg
}

// scratchPool is every register the row-expression compiler is free
// to clobber when no rows are assigned: RAX, RBX, and r9..r15.
// r8..r15 also hold row data, but only the slots regalloc.Assignment
// actually assigned are off limits — newRowCompiler drops
// r8..r8+K-1 from its copy, so unassigned slots above K serve as
// general scratch. r8 itself is never used as scratch.
var scratchPool = []asmbuf.Reg{
	asmbuf.RAX, asmbuf.RBX,
	asmbuf.R9, asmbuf.R10, asmbuf.R11, asmbuf.R12, asmbuf.R13, asmbuf.R14, asmbuf.R15,
}

func newRowCompiler(f *asmbuf.Func, rows *regalloc.Assignment, iter asmbuf.Reg) *rowCompiler {
	free := make([]asmbuf.Reg, 0, len(scratchPool))
	for _, r := range scratchPool {
		if r >= asmbuf.R8 && int(r-asmbuf.R8) < rows.K() {
			continue // holds a preloaded row offset
		}
		free = append(free, r)
	}
	return &rowCompiler{f: f, rows: rows, iter: iter, free: free}
}

func (c *rowCompiler) alloc() (asmbuf.Reg, error) {
	if len(c.free) == 0 {
		return 0, fmt.Errorf("matcher: row expression too deep, ran out of scratch registers")
	}
	r := c.free[len(c.free)-1]
	c.free = c.free[:len(c.free)-1]
	return r, nil
}

func (c *rowCompiler) release(r asmbuf.Reg) {
	c.free = append(c.free, r)
}

func (n RowRef) emit(c *rowCompiler) (asmbuf.Reg, error) {
	slot := c.rows.SlotOf(n.RowID)
	if slot < 0 {
		return 0, fmt.Errorf("matcher: row id %d has no preload slot", n.RowID)
	}
	rowReg := asmbuf.R8 + asmbuf.Reg(slot)
	dst, err := c.alloc()
	if err != nil {
		return 0, err
	}
	// rowReg holds this row's byte offset relative to the slice base
	// (preloaded by the prologue); R-iter is an absolute cursor into
	// the same slice, so [R-iter + rowReg] addresses this row's
	// quadword for the current iteration directly, with no
	// subtraction needed.
	c.f.MovRegMemIndexed(dst, c.iter, rowReg, 1, 0)
	return dst, nil
}

func (n Const) emit(c *rowCompiler) (asmbuf.Reg, error) {
	dst, err := c.alloc()
	if err != nil {
		return 0, err
	}
	c.f.MovRegImm64(dst, n.Value)
	return dst, nil
}

func (n And) emit(c *rowCompiler) (asmbuf.Reg, error) {
	return emitAssoc(c, n.Children, func(dst, src asmbuf.Reg) { c.f.AndRegReg(dst, src) })
}

func (n Or) emit(c *rowCompiler) (asmbuf.Reg, error) {
	return emitAssoc(c, n.Children, func(dst, src asmbuf.Reg) { c.f.OrRegReg(dst, src) })
}

func emitAssoc(c *rowCompiler, children []RowExpr, combine func(dst, src asmbuf.Reg)) (asmbuf.Reg, error) {
	if len(children) < 2 {
		return 0, fmt.Errorf("matcher: And/Or requires at least 2 children, got %d", len(children))
	}
	dst, err := children[0].emit(c)
	if err != nil {
		return 0, err
	}
	for _, child := range children[1:] {
		src, err := child.emit(c)
		if err != nil {
			return 0, err
		}
		combine(dst, src)
		c.release(src)
	}
	return dst, nil
}

func (n Not) emit(c *rowCompiler) (asmbuf.Reg, error) {
	dst, err := n.Child.emit(c)
	if err != nil {
		return 0, err
	}
	c.f.NotReg(dst)
	return dst, nil
}
