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

// Package asmbuf is the function-buffer abstraction consumed by code
// generators: label allocation, label placement, raw x86-64 instruction
// emission, and compile-to-callable. It knows nothing about match trees
// or queries; it is the narrow machine underneath them.
package asmbuf

// Reg is a general-purpose x86-64 register index, encoded the same way
// the hardware does: 0-15, REX.B/REX.R add the high bit implicitly via
// the >= 8 check in the encoders below.
type Reg uint8

const (
	RAX Reg = 0
	RCX Reg = 1
	RDX Reg = 2
	RBX Reg = 3
	RSP Reg = 4
	RBP Reg = 5
	RSI Reg = 6
	RDI Reg = 7
	R8  Reg = 8
	R9  Reg = 9
	R10 Reg = 10
	R11 Reg = 11
	R12 Reg = 12
	R13 Reg = 13
	R14 Reg = 14
	R15 Reg = 15
)

// Cc is a condition code for conditional jumps and SETcc, using the
// low nibble of the one-byte Jcc/SETcc opcode (0F 8x / 0F 9x).
type Cc byte

const (
	CcO  Cc = 0x0
	CcNO Cc = 0x1
	CcB  Cc = 0x2 // below / carry (unsigned <)
	CcAE Cc = 0x3 // above-or-equal (unsigned >=)
	CcE  Cc = 0x4 // equal / zero
	CcNE Cc = 0x5 // not-equal / not-zero
	CcBE Cc = 0x6
	CcA  Cc = 0x7
	CcL  Cc = 0xC // signed <
	CcGE Cc = 0xD // signed >=
	CcLE Cc = 0xE // signed <=
	CcG  Cc = 0xF // signed >
)
