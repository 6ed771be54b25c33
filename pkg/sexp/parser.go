package sexp

import (
	"fmt"
	"unicode"
)

// Parse a given string into an S-expression, or return an error if the string
// is malformed.
func Parse(s string) (SExp, error) {
	p := NewParser(s)
	// Parse the input
	sExp, err := p.Parse()
	// Skip any trailing whitespace and comments
	p.skip()
	// Sanity check everything was parsed
	if err == nil && p.index != len(p.text) {
		return nil, p.error("unexpected remainder")
	}

	return sExp, err
}

// ParseAll parses a given string into zero or more S-expressions, whilst
// returning an error if the string is malformed.
func ParseAll(s string) ([]SExp, error) {
	terms := make([]SExp, 0)
	p := NewParser(s)
	// Parse the input
	for {
		term, err := p.Parse()
		// Sanity check everything was parsed
		if err != nil {
			return terms, err
		} else if term == nil {
			// EOF reached
			return terms, nil
		}

		terms = append(terms, term)
	}
}

// Parser represents a parser in the process of parsing a given string into one
// or more S-expressions.
type Parser struct {
	// Text being parsed
	text []rune
	// Determine current position within text
	index int
}

// NewParser constructs a new instance of Parser
func NewParser(text string) *Parser {
	return &Parser{
		text:  []rune(text),
		index: 0,
	}
}

// Parse a given string into an S-Expression, or produce an error.
func (p *Parser) Parse() (SExp, error) {
	token := p.Next()

	if token == nil {
		return nil, nil
	} else if len(token) == 1 && token[0] == ')' {
		p.index-- // backup
		return nil, p.error("unexpected end-of-list")
	} else if len(token) == 1 && token[0] == '(' {
		var elements []SExp

		for c := p.Lookahead(0); c == nil || *c != ')'; c = p.Lookahead(0) {
			// Parse next element
			element, err := p.Parse()
			if err != nil {
				return nil, err
			} else if element == nil {
				p.index-- // backup
				return nil, p.error("unexpected end-of-file")
			}
			// Continue around!
			elements = append(elements, element)
		}
		// Consume right-brace
		p.Next()
		// Done
		return &List{elements}, nil
	}

	return &Symbol{string(token)}, nil
}

// Next extracts the next token from a given string.
func (p *Parser) Next() []rune {
	// Skip over any whitespace and comments
	p.skip()
	//
	index := p.index

	if index == len(p.text) {
		return nil
	}

	switch p.text[index] {
	case '(', ')':
		// List begin / end
		p.index = p.index + 1
		return p.text[index:p.index]
	}
	// Symbol
	for p.index < len(p.text) && !isSymbolTerminator(p.text[p.index]) {
		p.index++
	}

	return p.text[index:p.index]
}

// Lookahead returns the nth non-whitespace character from the current
// position, without advancing the parser.
func (p *Parser) Lookahead(n int) *rune {
	p.skip()
	//
	if p.index+n < len(p.text) {
		return &p.text[p.index+n]
	}

	return nil
}

// Skip over whitespace and line comments (beginning with ';').
func (p *Parser) skip() {
	for p.index < len(p.text) {
		if unicode.IsSpace(p.text[p.index]) {
			p.index++
		} else if p.text[p.index] == ';' {
			for p.index < len(p.text) && p.text[p.index] != '\n' {
				p.index++
			}
		} else {
			return
		}
	}
}

func isSymbolTerminator(c rune) bool {
	return c == '(' || c == ')' || c == ';' || unicode.IsSpace(c)
}

// Construct a syntax error at the current position in the text.
func (p *Parser) error(msg string) *SyntaxError {
	return &SyntaxError{p.index, msg}
}

// SyntaxError is a structured error which retains the index into the original
// string where an error occurred, along with an error message.
type SyntaxError struct {
	// Byte index into string being parsed where error arose.
	index int
	// Error message being reported
	msg string
}

// Index returns the index into the original string where this error arose.
func (e *SyntaxError) Index() int { return e.index }

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%s", e.index, e.msg)
}
