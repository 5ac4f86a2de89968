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

import "github.com/sliceindex/matchjit/asmbuf"

// Drain-local register assignment. r9..r15 may hold live preloaded row
// data from slots that overlap this range (K can be as large as 8,
// occupying r8..r15), so every one of them is saved on entry and
// restored on exit even though the drain body itself only needs six
// of the seven as scratch.
const (
	rSummary  = asmbuf.R9
	rQIdx     = asmbuf.R10
	rBucket   = asmbuf.R11
	rBIdx     = asmbuf.R12
	rMatches  = asmbuf.R13
	rSlicePtr = asmbuf.R14
	rUnused   = asmbuf.R15
)

var drainSaveSet = []asmbuf.Reg{rSummary, rQIdx, rBucket, rBIdx, rMatches, rSlicePtr, rUnused}

// emitDrain walks the dedupe bitmap and records matches, following
// spec §4.4 exactly: a summary scan loop nesting a bucket bit loop,
// each driven by bsf-and-clear for exactly-once visitation.
func emitDrain(f *asmbuf.Func) {
	for _, r := range drainSaveSet {
		f.Push(r)
	}

	f.MovRegMem(rMatches, rParam, offMatches)
	f.MovRegMem(rSlicePtr, rSlice, 0)
	f.MovRegMem(rSummary, rParam, offDedupeSummary)

	summaryTop := f.DefineLabel()
	drainExit := f.ReserveLabel()

	f.Bsf(rQIdx, rSummary)
	f.Jcc(asmbuf.CcE, drainExit)

	f.MovRegMemIndexed(rBucket, rParam, rQIdx, 8, offDedupeBuckets)

	bucketTop := f.DefineLabel()
	bucketDone := f.ReserveLabel()

	f.Bsf(rBIdx, rBucket)
	f.Jcc(asmbuf.CcE, bucketDone)

	emitStoreMatch(f)

	f.Btr(rBucket, rBIdx)
	f.Jmp(bucketTop)

	f.MarkLabel(bucketDone)
	f.MovMemIndexedReg(rParam, rQIdx, 8, offDedupeBuckets, rBucket)
	f.Btr(rSummary, rQIdx)
	f.Jmp(summaryTop)

	f.MarkLabel(drainExit)
	// rSummary is already zero here: the summary loop only exits once
	// bsf finds no set bit left (bsf sets ZF on a zero source, so no
	// separate compare is needed).
	f.MovMemReg(rParam, offDedupeSummary, rSummary)

	for i := len(drainSaveSet) - 1; i >= 0; i-- {
		f.Pop(drainSaveSet[i])
	}
}

// emitStoreMatch emits spec §4.4's "Store match" sequence for the bit
// currently selected by rQIdx/rBIdx: a capacity check, document-index
// and destination-address computation, the two-store write, and the
// matchCount increment. RAX/RBX are used as pure scratch — nothing
// here needs to survive past this one bit's record.
func emitStoreMatch(f *asmbuf.Func) {
	f.MovRegMem(asmbuf.RAX, rParam, offMatchCount)
	f.CmpRegMem(asmbuf.RAX, rParam, offCapacity)
	full := f.ReserveLabel()
	f.Jcc(asmbuf.CcE, full)

	f.MovRegReg(asmbuf.RBX, rQIdx)
	f.ShlRegImm8(asmbuf.RBX, 3)
	f.AddRegReg(asmbuf.RBX, rBIdx)

	f.ShlRegImm8(asmbuf.RAX, 4)
	f.AddRegReg(asmbuf.RAX, rMatches)

	f.MovMemReg(asmbuf.RAX, 0, rSlicePtr)
	f.MovMemReg(asmbuf.RAX, 8, asmbuf.RBX)

	f.IncMem(rParam, offMatchCount)

	f.MarkLabel(full)
}
