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

//go:build amd64

package asmbuf

import "unsafe"

// CallCompiled invokes the compiled function at entry with a single
// pointer argument, placed in the host ABI's first-argument register
// (RDI on System V, RCX on Windows x64) by call_amd64_unix.s /
// call_amd64_windows.s.
//
// This replaces the teacher's experimental approach in scm/jit.go of
// constructing a fake reflect/runtime func value from a raw code
// pointer (explicitly marked "dont output that in production" and
// never called from anywhere in memcp) with a small, auditable
// assembly trampoline — the matcher's entry point has a single fixed
// signature, so a generic fake-closure hack buys nothing here.
func CallCompiled(entry uintptr, param unsafe.Pointer) {
	callCompiledAsm(entry, param)
}

// callCompiledAsm is implemented in call_amd64_unix.s / call_amd64_windows.s.
func callCompiledAsm(entry uintptr, param unsafe.Pointer)
