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

import "testing"

func TestEscapeGolden(t *testing.T) {
	in := "A B\tC\fD\vE&F|G\\H(I)J\"K:L-M"
	want := "A\\ B\\\tC\\\fD\\\vE\\&F\\|G\\\\H\\(I\\)J\\\"K\\:L\\-M"
	if got := Escape(in); got != want {
		t.Errorf("Escape(%q) = %q, want %q", in, got, want)
	}
}

func TestEscapeThenParseRoundTrips(t *testing.T) {
	// An escaped term, re-parsed as a single TERM, must yield back the
	// original literal text as a Unigram.
	raw := "a:b c|d"
	escaped := Escape(raw)
	n, err := Parse(escaped, nil)
	if err != nil {
		t.Fatalf("Parse(%q): %v", escaped, err)
	}
	if n.Kind != KindUnigram || n.Text != raw {
		t.Fatalf("got %s, want Unigram(%q, 0)", n.String(), raw)
	}
}

func TestEscapeNoSpecialBytesIsIdentity(t *testing.T) {
	in := "plainword"
	if got := Escape(in); got != in {
		t.Errorf("Escape(%q) = %q, want unchanged", in, got)
	}
}
