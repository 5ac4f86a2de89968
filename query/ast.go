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

// Package query implements the boolean query-text parser: a lexer
// with a byte-safe whitespace classifier, a recursive-descent parser
// with OR < AND < NOT < atom precedence, a canonical formatter used
// for golden tests, and the Escape utility.
package query

// Kind tags the closed sum of AST node shapes. Spec §9 calls for "a
// tagged variant plus a visitor, not a class hierarchy" — Format (see
// format.go) is that visitor, switching on Kind rather than dispatching
// through five separate types.
type Kind int

const (
	KindUnigram Kind = iota
	KindPhrase
	KindAnd
	KindOr
	KindNot
)

// Node is the single AST type backing all five node shapes. Only the
// fields relevant to Kind are populated; this mirrors a tagged union
// more directly than five Go structs behind a common interface would,
// and keeps the formatter a single type switch.
type Node struct {
	Kind Kind

	// KindUnigram
	Text     string
	StreamID uint8

	// KindPhrase (StreamID shared with KindUnigram above)
	Grams []string

	// KindAnd, KindOr — insertion order; Format prints these reversed,
	// per spec §4.2's observable "wat|foo" -> "foo" before "wat".
	Children []*Node

	// KindNot
	Child *Node
}

func unigram(text string, streamID uint8) *Node {
	return &Node{Kind: KindUnigram, Text: text, StreamID: streamID}
}

func phrase(streamID uint8, grams []string) *Node {
	return &Node{Kind: KindPhrase, StreamID: streamID, Grams: grams}
}

func not(child *Node) *Node {
	return &Node{Kind: KindNot, Child: child}
}

// flatAnd and flatOr build an And/Or node from a caller-accumulated,
// already-flat list of children (spec §3: "children are flattened
// only at the leaf level" — a run of same-precedence operators at one
// syntactic position collects into one node, never nested).
func flatAnd(children []*Node) *Node { return &Node{Kind: KindAnd, Children: children} }
func flatOr(children []*Node) *Node  { return &Node{Kind: KindOr, Children: children} }
