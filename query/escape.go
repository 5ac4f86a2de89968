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

import "strings"

// specialBytes is the character set the Escape utility escapes:
// whitespace, the boolean/grouping operators, the escape character
// itself, the phrase delimiter, the stream-prefix delimiter, and NOT.
// The lexer ends a gram on isWhitespace or isPunct (lexer.go), which
// also covers '\n' and '\r'; those two are not escaped here.
const specialBytes = " \t\f\v&|\\()\":-"

func isSpecial(b byte) bool {
	return strings.IndexByte(specialBytes, b) >= 0
}

// Escape produces a string in which every byte in specialBytes is
// preceded by a backslash; all other bytes pass through verbatim.
// Idempotent only after one round — escaping the result again escapes
// the backslashes Escape itself inserted, per spec §4.2.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isSpecial(c) {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}
