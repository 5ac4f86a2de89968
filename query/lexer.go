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

// isWhitespace is a byte-safe whitespace predicate. The historical
// bug spec §4.2 calls out is passing a signed char with the high bit
// set (any UTF-8 continuation byte) into the C standard library's
// isspace, which is undefined behavior outside [0,255] once sign
// extension turns it negative. Go bytes are already unsigned, but this
// function stays explicit about the set it accepts rather than
// delegating to a general classifier, so multi-byte UTF-8 content
// (e.g. "françois") is never misread as containing whitespace: every
// byte of a multi-byte rune has its high bit set and none of them
// match any case below.
func isWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	default:
		return false
	}
}

// isPunct reports whether b is one of the grammar's special operator
// or delimiter bytes (everything in specialBytes except whitespace
// and the backslash escape marker itself, which the scanner handles
// separately).
func isPunct(b byte) bool {
	switch b {
	case '&', '|', '(', ')', '"', ':', '-':
		return true
	default:
		return false
	}
}

// scanGram reads one gram starting at s[pos]: a maximal run of bytes
// that are neither whitespace nor punctuation, with '\' escaping the
// following byte literally regardless of what it is. Returns the
// decoded text and the position just past the gram. An empty gram
// (pos unchanged) is a valid result — callers decide whether that is
// an error in context.
func scanGram(s []byte, pos int) (text string, next int) {
	var b []byte
	for pos < len(s) {
		c := s[pos]
		if c == '\\' {
			if pos+1 < len(s) {
				b = append(b, s[pos+1])
				pos += 2
				continue
			}
			// Trailing lone backslash: treat leniently as a literal
			// backslash rather than inventing an unterminated-escape
			// error kind spec §7 does not name.
			b = append(b, '\\')
			pos++
			continue
		}
		if isWhitespace(c) || isPunct(c) {
			break
		}
		b = append(b, c)
		pos++
	}
	return string(b), pos
}

func skipWhitespace(s []byte, pos int) int {
	for pos < len(s) && isWhitespace(s[pos]) {
		pos++
	}
	return pos
}
