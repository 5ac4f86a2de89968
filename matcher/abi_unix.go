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

//go:build !windows

package matcher

import "github.com/sliceindex/matchjit/asmbuf"

// paramSrcReg is the register the host ABI places the single function
// argument in. On System V it is already RDI, which this package also
// uses as the fixed internal R-param register, so the prologue's
// normalizing move is a no-op (MovRegReg skips same-register moves).
// Expressed as a compile-time constant per spec §9's "do not branch at
// runtime" design note.
const paramSrcReg = asmbuf.RDI
