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

package query

import "errors"

// Sentinel errors for the parse-error kinds spec §7 names. Callers
// compare with errors.Is against these; Parse returns them either
// bare or wrapped with position context. An unexpected character at
// the start of a term is reported with an error that wraps none of
// them.
var (
	errUnterminatedPhrase = errors.New("query: unterminated phrase")
	errUnbalancedParen    = errors.New("query: unbalanced parenthesis")
	errEmptyExpression    = errors.New("query: empty expression")
	errUnknownStream      = errors.New("query: unknown stream")
)
