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

// Package regalloc stands in for the upstream register allocator spec
// §1 declares an external collaborator: before the matcher emitter
// runs, something has already decided which row IDs get a preload
// slot and in what order. The emitter then addresses those slots as
// the fixed physical registers r8..r8+K-1 (spec §4.1's deliberate
// "physical register hardcoding" design note) — this package only
// produces the row-ID-to-slot mapping the emitter consumes, modeled
// loosely on JITContext.FreeRegs's bitmap bookkeeping in the
// teacher's scm/jit_types.go.
package regalloc

import "fmt"

// MaxSlots is the largest K the emitter can preload: row slots occupy
// r8..r15 inclusive (8 registers). The match drain saves and restores
// r9..r15 around its own scratch use specifically so that live row
// data surviving in those registers across the drain is preserved;
// there is no register left to extend the window further without a
// spill scheme the reference emitter does not implement.
const MaxSlots = 8

// Assignment is the row-ID-to-slot mapping the matcher emitter
// consumes: slot i (0-based) is preloaded into physical register
// r8+i, holding the byte offset read from rowOffsets[RowID(i)] (byte
// address rowOffsets + 8*RowID(i)).
type Assignment struct {
	rowIDs []int
}

// New builds an Assignment from rowIDs in the order they should be
// preloaded into r8, r9, r8+2, and so on. Returns an error if there
// are more rows than MaxSlots can hold.
func New(rowIDs []int) (*Assignment, error) {
	if len(rowIDs) > MaxSlots {
		return nil, fmt.Errorf("regalloc: %d rows exceeds the %d physical preload slots (r8..r15)", len(rowIDs), MaxSlots)
	}
	return &Assignment{rowIDs: append([]int(nil), rowIDs...)}, nil
}

// K reports the number of preloaded row slots.
func (a *Assignment) K() int { return len(a.rowIDs) }

// RowID returns the row ID preloaded into slot i (0 <= i < K), for
// computing rowOffsets + 8*RowID(i) at emit time.
func (a *Assignment) RowID(slot int) int { return a.rowIDs[slot] }

// SlotOf returns the preload slot a given row ID occupies, or -1 if
// that row was not assigned a slot. Used by the row-expression
// compiler adapter (rowexpr.go) to translate a RowRef's logical row
// ID into the physical register r8+slot holding its offset.
func (a *Assignment) SlotOf(rowID int) int {
	for i, id := range a.rowIDs {
		if id == rowID {
			return i
		}
	}
	return -1
}
