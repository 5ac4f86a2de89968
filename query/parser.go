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

import "fmt"

// parser holds the recursive-descent cursor. Every intermediate Node
// it builds belongs to a single parse and is never mutated after
// being handed to a parent — spec §9's "bump allocation" note is
// honored by the caller providing a fresh parser (and, in a fuller
// deployment, a fresh arena) per call to Parse, not by anything inside
// this type.
type parser struct {
	input []byte
	pos   int
	cfg   *StreamConfig
}

// Parse parses input into an AST per the grammar in spec §4.2:
//
//	OR      := AND ( '|' AND )*
//	AND     := UNARY ( ('&' | whitespace-implicit) UNARY )*
//	UNARY   := '-' UNARY | PRIMARY
//	PRIMARY := '(' OR ')' | PHRASE | TERM
//	PHRASE  := '"' gram (whitespace gram)* '"'
//	TERM    := [stream ':'] gram
//
// cfg resolves stream-name prefixes; it may be nil if the query text
// is known not to use any (an attempt to use one against a nil cfg
// fails with errUnknownStream).
func Parse(input string, cfg *StreamConfig) (*Node, error) {
	p := &parser{input: []byte(input), cfg: cfg}

	p.pos = skipWhitespace(p.input, 0)
	if p.pos >= len(p.input) {
		return nil, errEmptyExpression
	}

	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	p.pos = skipWhitespace(p.input, p.pos)
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("query: unexpected input at byte %d: %w", p.pos, errUnbalancedParen)
	}
	return node, nil
}

func (p *parser) parseOr() (*Node, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	children := []*Node{first}

	for {
		p.pos = skipWhitespace(p.input, p.pos)
		if p.pos >= len(p.input) || p.input[p.pos] != '|' {
			break
		}
		p.pos++
		p.pos = skipWhitespace(p.input, p.pos)
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}

	if len(children) == 1 {
		return children[0], nil
	}
	return flatOr(children), nil
}

func (p *parser) parseAnd() (*Node, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	children := []*Node{first}

	for {
		p.pos = skipWhitespace(p.input, p.pos)
		if p.pos >= len(p.input) {
			break
		}
		c := p.input[p.pos]
		if c == '|' || c == ')' {
			break
		}
		if c == '&' {
			p.pos++
			p.pos = skipWhitespace(p.input, p.pos)
		}
		next, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}

	if len(children) == 1 {
		return children[0], nil
	}
	return flatAnd(children), nil
}

func (p *parser) parseUnary() (*Node, error) {
	if p.pos < len(p.input) && p.input[p.pos] == '-' {
		p.pos++
		p.pos = skipWhitespace(p.input, p.pos)
		child, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return not(child), nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (*Node, error) {
	if p.pos >= len(p.input) {
		return nil, fmt.Errorf("query: unexpected end of input: %w", errEmptyExpression)
	}

	switch p.input[p.pos] {
	case '(':
		p.pos++
		p.pos = skipWhitespace(p.input, p.pos)
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		p.pos = skipWhitespace(p.input, p.pos)
		if p.pos >= len(p.input) || p.input[p.pos] != ')' {
			return nil, errUnbalancedParen
		}
		p.pos++
		return inner, nil
	case '"':
		return p.parsePhrase()
	default:
		return p.parseTerm()
	}
}

func (p *parser) parsePhrase() (*Node, error) {
	p.pos++ // consume opening quote
	var grams []string

	for {
		p.pos = skipWhitespace(p.input, p.pos)
		if p.pos >= len(p.input) {
			return nil, errUnterminatedPhrase
		}
		if p.input[p.pos] == '"' {
			p.pos++
			break
		}
		text, next := scanGram(p.input, p.pos)
		if next == p.pos {
			// A lone punctuation byte the grammar's gram production
			// does not expect unescaped inside a phrase; consumed
			// literally so a malformed phrase can't hang the parser.
			text = string(p.input[p.pos])
			next = p.pos + 1
		}
		grams = append(grams, text)
		p.pos = next
	}

	if len(grams) == 0 {
		return nil, errUnterminatedPhrase
	}

	streamID := uint8(0)
	return phrase(streamID, grams), nil
}

func (p *parser) parseTerm() (*Node, error) {
	startPos := p.pos
	name, afterName := scanGram(p.input, p.pos)

	if name != "" && afterName < len(p.input) && p.input[afterName] == ':' {
		id, ok := p.cfg.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("query: stream %q at byte %d: %w", name, startPos, errUnknownStream)
		}
		p.pos = afterName + 1
		text, next := scanGram(p.input, p.pos)
		if text == "" {
			return nil, fmt.Errorf("query: empty term after stream prefix %q at byte %d: %w", name, p.pos, errEmptyExpression)
		}
		p.pos = next
		return unigram(text, id), nil
	}

	if name == "" {
		return nil, fmt.Errorf("query: unexpected character %q at byte %d", string(p.input[p.pos]), p.pos)
	}
	p.pos = afterName
	return unigram(name, 0), nil
}
