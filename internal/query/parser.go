package query

import (
	"fmt"
	"time"
)

// Parser builds one AST from a token sequence by recursive descent.
//
// Grammar, precedence low to high (OR binds loosest):
//
//	expression := or
//	or         := and ( OR and )*
//	and        := not ( AND not )*
//	not        := NOT primary | primary
//	primary    := '(' expression ')'
//	            | STUDENT_REF
//	            | FIELD [ COMPARISON ] VALUE|QUOTED_STRING
//	            | VALUE|QUOTED_STRING
//
// or/and build left-leaning binary trees across repeated operators of the
// same precedence. NOT only ever wraps a single primary.
type Parser struct {
	tokens []Token
	pos    int
	now    time.Time
}

// Parse parses a raw query against the system clock.
func Parse(input string) (*AST, error) {
	return ParseAt(input, time.Now())
}

// ParseAt parses a raw query, resolving relative date keywords against
// now. The query only qualifies for structured parsing if it contains a
// student reference, a field prefix, a logical operator keyword, a
// comparison operator, or a parenthesis; otherwise the entire string
// becomes a single text search node. This keeps ordinary prose
// ("aarav attendance") out of the filter grammar.
func ParseAt(input string, now time.Time) (*AST, error) {
	tokens := Tokenize(input)
	if !hasAdvancedSyntax(tokens) {
		return &AST{
			Root:              &TextSearchNode{Query: input},
			OriginalQuery:     input,
			HasAdvancedSyntax: false,
		}, nil
	}

	p := &Parser{tokens: tokens, now: now}
	root, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != TokenEOF {
		return nil, &ParseError{
			Code:     ErrCodeUnexpectedToken,
			Message:  fmt.Sprintf("unexpected %s %q after expression", tok.Type, tok.Value),
			Position: tok.Position,
		}
	}
	return &AST{
		Root:              root,
		OriginalQuery:     input,
		HasAdvancedSyntax: true,
	}, nil
}

// hasAdvancedSyntax reports whether any token requires the structured
// grammar. Bare values and quoted strings alone stay on the text path.
func hasAdvancedSyntax(tokens []Token) bool {
	for _, tok := range tokens {
		switch tok.Type {
		case TokenStudentRef, TokenField, TokenOperator, TokenComparison, TokenLParen, TokenRParen:
			return true
		}
	}
	return false
}

func (p *Parser) parseExpression() (Node, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peekOperator("OR") {
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &CompoundNode{Op: BoolOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peekOperator("AND") {
		p.pos++
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &CompoundNode{Op: BoolAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (Node, error) {
	if p.peekOperator("NOT") {
		p.pos++
		operand, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &CompoundNode{Op: BoolNot, Left: operand}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Node, error) {
	tok := p.peek()
	switch tok.Type {
	case TokenLParen:
		p.pos++
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if closing := p.peek(); closing.Type != TokenRParen {
			return nil, &ParseError{
				Code:     ErrCodeUnmatchedParen,
				Message:  "missing closing parenthesis",
				Position: tok.Position,
			}
		}
		p.pos++
		return expr, nil

	case TokenStudentRef:
		p.pos++
		return &StudentRefNode{Name: tok.Value, Fuzzy: true}, nil

	case TokenField:
		return p.parseFilter()

	case TokenValue, TokenQuotedString:
		p.pos++
		return &TextSearchNode{Query: tok.Value}, nil

	case TokenRParen:
		return nil, &ParseError{
			Code:     ErrCodeUnmatchedParen,
			Message:  "unexpected closing parenthesis",
			Position: tok.Position,
		}

	case TokenOperator:
		return nil, &ParseError{
			Code:     ErrCodeMissingOperand,
			Message:  fmt.Sprintf("operator %s with no operand", tok.Value),
			Position: tok.Position,
		}

	default: // EOF
		return nil, &ParseError{
			Code:     ErrCodeMissingOperand,
			Message:  "unexpected end of query",
			Position: tok.Position,
		}
	}
}

// parseFilter parses FIELD [ COMPARISON ] VALUE|QUOTED_STRING. An absent
// comparison operator defaults to equals; field-specific handlers decide
// whether equals means exact or substring semantics.
func (p *Parser) parseFilter() (Node, error) {
	fieldTok := p.peek()
	p.pos++

	field, ok := ParseField(fieldTok.Value)
	if !ok {
		return nil, &ParseError{
			Code:     ErrCodeUnknownField,
			Message:  fmt.Sprintf("unknown field %q", fieldTok.Value),
			Position: fieldTok.Position,
			Field:    Field(fieldTok.Value),
		}
	}

	op := OpEquals
	if tok := p.peek(); tok.Type == TokenComparison {
		op = comparisonOp(tok.Value)
		p.pos++
	}

	valueTok := p.peek()
	if valueTok.Type != TokenValue && valueTok.Type != TokenQuotedString {
		return nil, &ParseError{
			Code:     ErrCodeMissingValue,
			Message:  fmt.Sprintf("field %q has no value", field),
			Position: fieldTok.Position,
			Field:    field,
		}
	}
	p.pos++

	value, err := CoerceValue(field, valueTok.Value, valueTok.Position, p.now)
	if err != nil {
		return nil, err
	}
	return &FilterNode{Field: field, Op: op, Value: value}, nil
}

func comparisonOp(literal string) Operator {
	switch literal {
	case ">":
		return OpGreaterThan
	case "<":
		return OpLessThan
	case ">=":
		return OpGreaterEqual
	case "<=":
		return OpLessEqual
	case "!=":
		return OpNotEquals
	default:
		return OpEquals
	}
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF, Position: len(p.tokens)}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekOperator(name string) bool {
	tok := p.peek()
	return tok.Type == TokenOperator && tok.Value == name
}
