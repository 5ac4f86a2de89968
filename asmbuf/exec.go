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
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Exec is a finalized, executable copy of a Func's code: an anonymous
// mmap'd page written while RW, then flipped to RX, matching the
// teacher's execBuf/allocExec/makeRX sequence in scm/jit.go but going
// through golang.org/x/sys/unix instead of the raw syscall package so
// error values are named rather than bare ints.
type Exec struct {
	mem  []byte
	size int
}

// Finalize resolves f's label fixups, copies the result into a fresh
// executable mapping, and returns it as an Exec whose EntryPointer is
// suitable for the call_amd64_*.s trampolines in call.go.
//
// The returned Exec must be released with Release once every Runner
// using it has gone out of scope; there is no finalizer, matching
// spec §5's "releasing it is this module's caller's responsibility".
func (f *Func) Finalize() (*Exec, error) {
	if err := f.resolveFixups(); err != nil {
		return nil, err
	}
	code := f.Bytes()
	if len(code) == 0 {
		return nil, fmt.Errorf("asmbuf: cannot finalize an empty function")
	}

	pageSize := unix.Getpagesize()
	size := ((len(code) + pageSize - 1) / pageSize) * pageSize

	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("asmbuf: mmap: %w", err)
	}
	copy(mem, code)

	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		_ = unix.Munmap(mem)
		return nil, fmt.Errorf("asmbuf: mprotect RX: %w", err)
	}

	return &Exec{mem: mem, size: size}, nil
}

// EntryPointer returns the address of the first emitted byte, to be
// handed to CallCompiled (see call.go) as a raw function pointer.
func (e *Exec) EntryPointer() uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(e.mem)))
}

// Len reports the size in bytes of the underlying code page, used by
// matcher.Compile to log compiled-code size with docker/go-units.
func (e *Exec) Len() int { return e.size }

// Release unmaps the executable page. Calling any compiled function
// pointer derived from e after Release is undefined behavior — the
// same caller contract the teacher's execBuf never formalized because
// memcp's JIT pages live for the process lifetime; match trees are
// recompiled far more often, so this module makes the release path
// explicit.
func (e *Exec) Release() error {
	if e.mem == nil {
		return nil
	}
	err := unix.Munmap(e.mem)
	e.mem = nil
	return err
}
