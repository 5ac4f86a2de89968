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
	"errors"

	"github.com/sliceindex/matchjit/asmbuf"
	"github.com/sliceindex/matchjit/regalloc"
)

// errNilExpr is returned by Compile when expr is nil. The original
// BitFunnel generator never emits code for an empty match tree —
// compiling one is rejected by the caller before code generation is
// reached, not silently turned into an always-false stub. See
// SPEC_FULL.md's discussion of spec §9's no-row-case open question.
var errNilExpr = errors.New("matcher: cannot compile a nil row expression")

// Fixed internal register assignment. R-param is normalized by the
// prologue regardless of host ABI (abi_unix.go / abi_windows.go);
// R-rowbase, R-slice, and R-iter are chosen to avoid the physical
// r8..r15 range entirely, since that range is reserved for preloaded
// row data for the lifetime of the function body, matching the
// original's register assignment exactly (see SPEC_FULL.md).
const (
	rParam   = asmbuf.RDI
	rRowbase = asmbuf.RSI
	rSlice   = asmbuf.RDX
	rIter    = asmbuf.RCX
)

// limitSpillOffset is R-limit's stack temporary, allocated by the
// prologue's SubRspImm8(8) and addressed relative to RSP for the
// lifetime of the function.
const limitSpillOffset = int32(0)

// emit lays down the full matcher function body into f: prologue, row
// preload, outer loop, inner loop, row-expression evaluation, and
// match drain, in that order, following spec §4.1 exactly. A
// structural error in expr (an unassigned RowID, an And/Or with fewer
// than two children, scratch-register exhaustion) is returned rather
// than panicked, per spec §7's "no partial results" contract.
func emit(f *asmbuf.Func, rows *regalloc.Assignment, expr RowExpr) error {
	emitPrologue(f)
	emitRowPreload(f, rows)
	if err := emitOuterLoop(f, rows, expr); err != nil {
		return err
	}
	f.AddRspImm8(8)
	f.Ret()
	return nil
}

// emitPrologue normalizes the first argument into R-param and
// reserves R-limit's stack spill slot.
func emitPrologue(f *asmbuf.Func) {
	f.MovRegReg(rParam, paramSrcReg)
	f.SubRspImm8(8)
}

// emitRowPreload loads each assigned row's byte offset into its
// physical slot register r8+slot, per spec §4.1's "Row-pointer
// preload" step. With K=0 this emits nothing, as spec §4.1 requires.
func emitRowPreload(f *asmbuf.Func, rows *regalloc.Assignment) {
	if rows.K() == 0 {
		return
	}
	f.MovRegMem(rRowbase, rParam, offRowOffsets)
	for slot := 0; slot < rows.K(); slot++ {
		rowReg := asmbuf.R8 + asmbuf.Reg(slot)
		disp := int32(8 * rows.RowID(slot))
		f.MovRegMem(rowReg, rRowbase, disp)
	}
}

// emitOuterLoop emits the slice-iteration loop described in spec
// §4.1's "Outer loop" pseudocode, using a load-add-store sequence for
// the sliceBuffers pointer advance rather than a direct
// memory-immediate add, per spec §9's note on avoiding that encoder
// complexity.
func emitOuterLoop(f *asmbuf.Func, rows *regalloc.Assignment, expr RowExpr) error {
	top := f.DefineLabel()
	end := f.ReserveLabel()

	f.MovRegMem(asmbuf.RAX, rParam, offSliceCount)
	f.TestRegReg(asmbuf.RAX, asmbuf.RAX)
	f.Jcc(asmbuf.CcE, end)

	if err := emitInnerLoop(f, rows, expr); err != nil {
		return err
	}

	f.DecMem(rParam, offSliceCount)
	f.MovRegMem(asmbuf.RAX, rParam, offSliceBuffers)
	f.AddRegImm32(asmbuf.RAX, 8)
	f.MovMemReg(rParam, offSliceBuffers, asmbuf.RAX)
	f.Jmp(top)

	f.MarkLabel(end)
	return nil
}

// emitInnerLoop emits spec §4.1's "Inner loop": slice dereference,
// limit computation and spill, the per-quadword header/body/footer,
// and the row-expression + drain invocation inside the body.
func emitInnerLoop(f *asmbuf.Func, rows *regalloc.Assignment, expr RowExpr) error {
	f.MovRegMem(rSlice, rParam, offSliceBuffers)
	f.MovRegMem(rSlice, rSlice, 0)

	f.MovRegMem(asmbuf.RAX, rParam, offIterationsPerSlice)
	f.ShlRegImm8(asmbuf.RAX, 3)
	f.AddRegReg(asmbuf.RAX, rSlice)
	f.MovMemReg(asmbuf.RSP, limitSpillOffset, asmbuf.RAX)

	f.MovRegReg(rIter, rSlice)

	header := f.DefineLabel()
	exit := f.ReserveLabel()

	f.CmpRegMem(rIter, asmbuf.RSP, limitSpillOffset)
	f.Jcc(asmbuf.CcE, exit)

	if err := emitQuadwordBody(f, rows, expr); err != nil {
		return err
	}

	f.AddRegImm32(rIter, 8)
	f.Jmp(header)

	f.MarkLabel(exit)
	return nil
}

// emitQuadwordBody evaluates expr for the quadword at R-iter, folds
// the single 64-bit result into dedupe bucket 0 and its summary bit,
// and runs the drain. Only bucket 0 is ever populated by this
// emitter: the two-level dedupe structure generalizes to multiple
// simultaneously-live buckets, but one quadword's predicate per
// iteration only ever needs one. expr is never nil here — Compile
// rejects a nil expression before any code is emitted. A structural
// error from expr.emit (unassigned RowID, a childless And/Or,
// scratch-register exhaustion) is returned to the caller rather than
// panicked, since it reflects the caller's match tree, not an
// internal invariant violation.
func emitQuadwordBody(f *asmbuf.Func, rows *regalloc.Assignment, expr RowExpr) error {
	c := newRowCompiler(f, rows, rIter)
	result, err := expr.emit(c)
	if err != nil {
		return err
	}

	f.MovMemReg(rParam, offDedupeBuckets, result)
	f.TestRegReg(result, result)
	f.Setcc(asmbuf.RBX, asmbuf.CcNE)
	f.MovMemReg(rParam, offDedupeSummary, asmbuf.RBX)

	emitDrain(f)
	return nil
}

