// SPDX-License-Identifier: MPL-2.0

package interp

import (
	"fmt"
	"strconv"
	"strings"
)

// Structural limits enforced at parse time.
const (
	// MaxNestingDepth bounds IF/LOOP nesting. Top-level statements sit at
	// depth 0; each body parses one level deeper.
	MaxNestingDepth = 3

	// MaxLoopIterations bounds the count of a single LOOP statement.
	MaxLoopIterations = 50
)

// Parser turns a token stream into statement nodes.
type Parser struct {
	tokens []Token
	pos    int
}

// Parse tokenizes nothing itself; it consumes an already-tokenized stream
// and returns the program's top-level statements.
func Parse(tokens []Token) ([]Node, error) {
	p := &Parser{tokens: tokens}
	var program []Node
	for !p.atEnd() && p.peek().Type != EOF {
		stmt, err := p.parseStatement(0)
		if err != nil {
			return nil, err
		}
		program = append(program, stmt)
	}
	return program, nil
}

// ParseSource tokenizes and parses in one step.
func ParseSource(source string) ([]Node, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

func (p *Parser) parseStatement(depth int) (Node, error) {
	if depth > MaxNestingDepth {
		return nil, fmt.Errorf("%w: depth %d exceeds limit %d", ErrNestingDepth, depth, MaxNestingDepth)
	}

	tok := p.peek()
	switch tok.Type {
	case IF:
		return p.parseIf(depth)
	case LOOP:
		return p.parseLoop(depth)
	case MOVE, LEFT, RIGHT, PICK, OPEN, END:
		p.advance()
		return &Action{Tok: tok}, nil
	default:
		return nil, fmt.Errorf("%w: unexpected %s", ErrParse, tok)
	}
}

func (p *Parser) parseIf(depth int) (Node, error) {
	ifTok := p.advance()

	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != COLON {
		return nil, fmt.Errorf("%w: IF statement missing colon at line %d", ErrParse, ifTok.Line)
	}
	p.advance()

	var then []Node
	for !p.atEnd() && p.peek().Type != ELSE && p.peek().Type != ENDIF {
		stmt, err := p.parseStatement(depth + 1)
		if err != nil {
			return nil, err
		}
		then = append(then, stmt)
	}

	var otherwise []Node
	if p.peek().Type == ELSE {
		elseTok := p.advance()
		if p.peek().Type != COLON {
			return nil, fmt.Errorf("%w: ELSE missing colon at line %d", ErrParse, elseTok.Line)
		}
		p.advance()
		for !p.atEnd() && p.peek().Type != ENDIF {
			stmt, err := p.parseStatement(depth + 1)
			if err != nil {
				return nil, err
			}
			otherwise = append(otherwise, stmt)
		}
	}

	if p.peek().Type != ENDIF {
		return nil, fmt.Errorf("%w: IF statement missing ENDIF (opened at line %d)", ErrParse, ifTok.Line)
	}
	p.advance()

	return &If{Tok: ifTok, Cond: cond, Then: then, Else: otherwise}, nil
}

func (p *Parser) parseLoop(depth int) (Node, error) {
	loopTok := p.advance()

	if p.peek().Type != NUMBER {
		return nil, fmt.Errorf("%w: LOOP statement missing count at line %d", ErrParse, loopTok.Line)
	}
	countTok := p.advance()
	times, err := strconv.Atoi(countTok.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: bad LOOP count %q at line %d", ErrParse, countTok.Value, countTok.Line)
	}
	if times > MaxLoopIterations {
		return nil, fmt.Errorf("%w: count %d exceeds limit %d", ErrLoopLimit, times, MaxLoopIterations)
	}

	if p.peek().Type != COLON {
		return nil, fmt.Errorf("%w: LOOP statement missing colon at line %d", ErrParse, loopTok.Line)
	}
	p.advance()

	var body []Node
	for !p.atEnd() && p.peek().Type != ENDLOOP {
		stmt, err := p.parseStatement(depth + 1)
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}

	if p.peek().Type != ENDLOOP {
		return nil, fmt.Errorf("%w: LOOP statement missing ENDLOOP (opened at line %d)", ErrParse, loopTok.Line)
	}
	p.advance()

	return &Loop{Tok: loopTok, Times: times, Body: body}, nil
}

// parseCondition parses with NOT binding tightest, then AND, then OR, both
// binaries left-associative.
func (p *Parser) parseCondition() (*Cond, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (*Cond, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == OR {
		opTok := p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Cond{Tok: opTok, Op: OpOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (*Cond, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == AND {
		opTok := p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &Cond{Tok: opTok, Op: OpAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (*Cond, error) {
	if p.peek().Type == NOT {
		opTok := p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &Cond{Tok: opTok, Op: OpNot, Left: operand}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (*Cond, error) {
	tok := p.peek()

	if tok.IsSensor() {
		p.advance()
		return &Cond{Tok: tok}, nil
	}
	if tok.Type == IDENT {
		// A word that upper-cases to a sensor name is accepted; anything
		// else is an invalid sensor.
		upper := strings.ToUpper(tok.Value)
		if kind, ok := keywords[upper]; ok && sensors[kind] {
			p.advance()
			return &Cond{Tok: Token{Type: kind, Value: upper, Line: tok.Line, Column: tok.Column}}, nil
		}
		return nil, fmt.Errorf("%w: invalid sensor %q at line %d, column %d", ErrParse, tok.Value, tok.Line, tok.Column)
	}
	return nil, fmt.Errorf("%w: unexpected condition %s", ErrParse, tok)
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if !p.atEnd() {
		p.pos++
	}
	return tok
}

func (p *Parser) atEnd() bool { return p.pos >= len(p.tokens) }
