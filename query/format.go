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
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Format writes n's canonical textual form to w, per spec §4.2. This
// is the "visitor" half of the tagged-node design in ast.go.
func (n *Node) Format(w io.Writer) error {
	_, err := io.WriteString(w, n.String())
	return err
}

// String returns n's canonical form. Golden tests compare against
// this directly; it is also what Format writes.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	switch n.Kind {
	case KindUnigram:
		fmt.Fprintf(b, "Unigram(%s, %d)", strconv.Quote(n.Text), n.StreamID)
	case KindPhrase:
		b.WriteString("Phrase { StreamId: ")
		fmt.Fprintf(b, "%d", n.StreamID)
		b.WriteString(", Grams: [ ")
		for i, g := range n.Grams {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(g))
		}
		b.WriteString(" ] }")
	case KindAnd:
		writeChildList(b, "And", n.Children)
	case KindOr:
		writeChildList(b, "Or", n.Children)
	case KindNot:
		b.WriteString("Not { Child: ")
		n.Child.write(b)
		b.WriteString(" }")
	}
}

// writeChildList prints children in reverse insertion order, the
// deliberate quirk spec §4.2 calls out explicitly and tests golden.
func writeChildList(b *strings.Builder, name string, children []*Node) {
	b.WriteString(name)
	b.WriteString(" { Children: [ ")
	for i := len(children) - 1; i >= 0; i-- {
		children[i].write(b)
		if i > 0 {
			b.WriteString(", ")
		}
	}
	b.WriteString(" ] }")
}
