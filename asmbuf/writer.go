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

package asmbuf

import (
	"encoding/binary"
	"fmt"
)

// fixup records a forward reference that must be patched once every
// label has a final position.
type fixup struct {
	codePos  int
	labelID  int
	size     int  // 1 or 4 bytes
	relative bool // true for PC-relative jumps
}

// Func accumulates machine code for a single emitted function into a
// growable byte buffer, tracking labels and forward-reference fixups.
// It is the writable half of the function-buffer abstraction; Exec
// (see exec.go) turns a finished Func into a callable.
type Func struct {
	code   []byte
	labels []int // -1 until MarkLabel/DefineLabel sets it
	fixups []fixup
}

// NewFunc returns an empty code buffer with some headroom to avoid the
// first few reallocations.
func NewFunc() *Func {
	return &Func{code: make([]byte, 0, 512)}
}

// Pos returns the current write offset, usable as a raw jump target
// recorded outside the label mechanism (e.g. for diagnostics).
func (f *Func) Pos() int { return len(f.code) }

// DefineLabel allocates a new label at the current write position.
func (f *Func) DefineLabel() int {
	id := len(f.labels)
	f.labels = append(f.labels, len(f.code))
	return id
}

// ReserveLabel allocates a label ID for later placement via MarkLabel,
// for forward references where the target isn't known yet.
func (f *Func) ReserveLabel() int {
	id := len(f.labels)
	f.labels = append(f.labels, -1)
	return id
}

// MarkLabel sets the position of a previously reserved label.
func (f *Func) MarkLabel(id int) {
	f.labels[id] = len(f.code)
}

// addFixup records a forward reference to be patched by resolveFixups.
func (f *Func) addFixup(labelID, size int, relative bool) {
	f.fixups = append(f.fixups, fixup{codePos: len(f.code), labelID: labelID, size: size, relative: relative})
}

// resolveFixups patches every recorded forward reference. Called once
// by Finalize (exec.go), after the function body is fully emitted.
func (f *Func) resolveFixups() error {
	for _, fx := range f.fixups {
		target := f.labels[fx.labelID]
		if target < 0 {
			return fmt.Errorf("asmbuf: label %d referenced but never placed", fx.labelID)
		}
		switch fx.size {
		case 4:
			off := int32(target - (fx.codePos + 4))
			binary.LittleEndian.PutUint32(f.code[fx.codePos:], uint32(off))
		case 1:
			off := target - (fx.codePos + 1)
			if off < -128 || off > 127 {
				return fmt.Errorf("asmbuf: rel8 fixup out of range: %d", off)
			}
			f.code[fx.codePos] = byte(int8(off))
		default:
			return fmt.Errorf("asmbuf: unsupported fixup size %d", fx.size)
		}
	}
	return nil
}

// Bytes returns the emitted code so far. Intended for tests and the
// "disassemble what we just built" style of debugging the teacher uses
// throughout its own JIT package.
func (f *Func) Bytes() []byte { return f.code }

func (f *Func) emitByte(b byte) { f.code = append(f.code, b) }

func (f *Func) emitBytes(bs ...byte) { f.code = append(f.code, bs...) }

func (f *Func) emitU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	f.code = append(f.code, b[:]...)
}

func (f *Func) emitU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	f.code = append(f.code, b[:]...)
}
