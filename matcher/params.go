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

// Package matcher implements the match-tree JIT code generator: given
// a row-expression tree and a row-ID-to-slot assignment, it emits
// x86-64 machine code that scans slice buffers quadword by quadword,
// evaluates the tree per quadword, and records matches.
package matcher

import "unsafe"

// Record is a single match: the slice's canonical object pointer and
// the document index within that slice. Written by the drain as two
// 8-byte stores, matching spec §3's Match Record layout exactly.
type Record struct {
	SlicePtr unsafe.Pointer
	DocIndex int64
}

// Params is the sole argument to every emitted matcher function: a
// fixed-layout record whose field offsets are computed once below via
// unsafe.Offsetof and burned into the generated code at emit time,
// rather than hand-maintained as magic numbers.
type Params struct {
	SliceCount         int64
	SliceBuffers       unsafe.Pointer // *unsafe.Pointer, array of slice base pointers
	IterationsPerSlice int64
	RowOffsets         unsafe.Pointer // *int64, array of per-row byte offsets
	Callback           unsafe.Pointer // unused by the drain; see DESIGN.md
	DedupeSummary      uint64
	DedupeBuckets      [64]uint64
	Capacity           int64
	MatchCount         int64
	Matches            unsafe.Pointer // *Record
}

// Field offsets within Params, computed at compile time so the
// emitter never hardcodes a layout-derived magic number.
const (
	offSliceCount         = int32(unsafe.Offsetof(Params{}.SliceCount))
	offSliceBuffers       = int32(unsafe.Offsetof(Params{}.SliceBuffers))
	offIterationsPerSlice = int32(unsafe.Offsetof(Params{}.IterationsPerSlice))
	offRowOffsets         = int32(unsafe.Offsetof(Params{}.RowOffsets))
	offCallback           = int32(unsafe.Offsetof(Params{}.Callback))
	offDedupeSummary      = int32(unsafe.Offsetof(Params{}.DedupeSummary))
	offDedupeBuckets      = int32(unsafe.Offsetof(Params{}.DedupeBuckets))
	offCapacity           = int32(unsafe.Offsetof(Params{}.Capacity))
	offMatchCount         = int32(unsafe.Offsetof(Params{}.MatchCount))
	offMatches            = int32(unsafe.Offsetof(Params{}.Matches))
)

// recordSize is sizeof(Record): 16 bytes, two quadwords, matching
// spec §3's Match Record layout.
const recordSize = int64(unsafe.Sizeof(Record{}))
