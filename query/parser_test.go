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

import (
	"errors"
	"testing"
)

func parseWithStream(t *testing.T, input string) *Node {
	t.Helper()
	cfg := NewStreamConfig()
	cfg.AddMapping("stream", 1)
	n, err := Parse(input, cfg)
	if err != nil {
		t.Fatalf("Parse(%q): unexpected error: %v", input, err)
	}
	return n
}

// golden is spec §8's canonical suite, plus cases mined from
// BitFunnel's QueryParserTest.cpp (c_testData) covering whitespace
// variants, explicit '&', parenthesized groups and AND-of-PHRASE.
func TestGolden(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"françois", `Unigram("françois", 0)`},
		{"wat", `Unigram("wat", 0)`},
		{"stream:wat", `Unigram("wat", 1)`},
		{"(wat)", `Unigram("wat", 0)`},
		{"wat|foo", `Or { Children: [ Unigram("foo", 0), Unigram("wat", 0) ] }`},
		{"(wat|foo)", `Or { Children: [ Unigram("foo", 0), Unigram("wat", 0) ] }`},
		{" (wat|foo)\t", `Or { Children: [ Unigram("foo", 0), Unigram("wat", 0) ] }`},
		{"\t( wat |\tfoo )", `Or { Children: [ Unigram("foo", 0), Unigram("wat", 0) ] }`},
		{"-wat", `Not { Child: Unigram("wat", 0) }`},
		{"wat foo", `And { Children: [ Unigram("foo", 0), Unigram("wat", 0) ] }`},
		{"wat&foo", `And { Children: [ Unigram("foo", 0), Unigram("wat", 0) ] }`},
		{"wat\t\t&  foo", `And { Children: [ Unigram("foo", 0), Unigram("wat", 0) ] }`},
		{"\" wat\tfoo\"", `Phrase { StreamId: 0, Grams: [ "wat", "foo" ] }`},
		{"\"wat\tfoo\"", `Phrase { StreamId: 0, Grams: [ "wat", "foo" ] }`},
		{"one two | three", `Or { Children: [ Unigram("three", 0), And { Children: [ Unigram("two", 0), Unigram("one", 0) ] } ] }`},
		{"one\ttwo|three    \tfour", `Or { Children: [ And { Children: [ Unigram("four", 0), Unigram("three", 0) ] }, And { Children: [ Unigram("two", 0), Unigram("one", 0) ] } ] }`},
		{"one&-two", `And { Children: [ Not { Child: Unigram("two", 0) }, Unigram("one", 0) ] }`},
		{"one -two", `And { Children: [ Not { Child: Unigram("two", 0) }, Unigram("one", 0) ] }`},
		{"one-two", `And { Children: [ Not { Child: Unigram("two", 0) }, Unigram("one", 0) ] }`},
		{"one- two", `And { Children: [ Not { Child: Unigram("two", 0) }, Unigram("one", 0) ] }`},
		{"one (two)", `And { Children: [ Unigram("two", 0), Unigram("one", 0) ] }`},
		{"one|-two", `Or { Children: [ Not { Child: Unigram("two", 0) }, Unigram("one", 0) ] }`},
		{" one    | -    two ", `Or { Children: [ Not { Child: Unigram("two", 0) }, Unigram("one", 0) ] }`},
		{"one & two | three", `Or { Children: [ Unigram("three", 0), And { Children: [ Unigram("two", 0), Unigram("one", 0) ] } ] }`},
		{"one & (two | three)", `And { Children: [ Or { Children: [ Unigram("three", 0), Unigram("two", 0) ] }, Unigram("one", 0) ] }`},
		{`"one two" "three four"`, `And { Children: [ Phrase { StreamId: 0, Grams: [ "three", "four" ] }, Phrase { StreamId: 0, Grams: [ "one", "two" ] } ] }`},
		{`one\|two`, `Unigram("one|two", 0)`},
		{`"one\"two three"`, `Phrase { StreamId: 0, Grams: [ "one\"two", "three" ] }`},
	}

	for _, c := range cases {
		got := parseWithStream(t, c.input).String()
		if got != c.want {
			t.Errorf("Parse(%q).String() =\n  %s\nwant\n  %s", c.input, got, c.want)
		}
	}
}

func TestUnterminatedPhrase(t *testing.T) {
	_, err := Parse(`"wat foo`, nil)
	if !errors.Is(err, errUnterminatedPhrase) {
		t.Fatalf("got %v, want errUnterminatedPhrase", err)
	}
}

func TestUnbalancedParen(t *testing.T) {
	_, err := Parse(`(wat`, nil)
	if !errors.Is(err, errUnbalancedParen) {
		t.Fatalf("got %v, want errUnbalancedParen", err)
	}

	_, err = Parse(`wat)`, nil)
	if !errors.Is(err, errUnbalancedParen) {
		t.Fatalf("got %v, want errUnbalancedParen", err)
	}
}

func TestEmptyExpression(t *testing.T) {
	_, err := Parse("   \t\n  ", nil)
	if !errors.Is(err, errEmptyExpression) {
		t.Fatalf("got %v, want errEmptyExpression", err)
	}
}

func TestUnknownStreamRejected(t *testing.T) {
	_, err := Parse("unregistered:wat", NewStreamConfig())
	if !errors.Is(err, errUnknownStream) {
		t.Fatalf("got %v, want errUnknownStream", err)
	}
}

func TestUnknownStreamWithNilConfig(t *testing.T) {
	_, err := Parse("unregistered:wat", nil)
	if !errors.Is(err, errUnknownStream) {
		t.Fatalf("got %v, want errUnknownStream", err)
	}
}

func TestColonWithUnregisteredPrefixFails(t *testing.T) {
	// A trailing ':' after a gram always commits to the stream-prefix
	// interpretation; with nothing registered for that name this must
	// fail, not silently degrade to a literal "nostream:wat" unigram —
	// spec §7 treats unknown stream as a synchronous error, never a
	// softened fallback.
	_, err := Parse("nostream:wat", nil)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
}
