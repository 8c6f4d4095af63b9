package query

import "strings"

// Tokenizer scans a query string left to right and produces tokens.
//
// Recognition order at each position:
//  1. Whitespace - skipped, never tokenized.
//  2. @word - student reference.
//  3. "…" - quoted string.
//  4. word: - field prefix; an attached value (bare or quoted) is emitted
//     as VALUE with quotes stripped. A comparison operator between the
//     field and its value is picked up by the main loop.
//  5. >= <= != > < - comparison, longest match first.
//  6. AND / OR / NOT (any case) - operator, normalized to uppercase.
//  7. ( / ) - parens.
//  8. Bare word - VALUE.
//  9. Anything else is silently skipped. Permissive by historical
//     contract: a typo'd operator vanishes rather than failing the scan.
type Tokenizer struct {
	input  string
	pos    int
	tokens []Token
}

// Tokenize scans the whole input and returns the token list terminated
// by an EOF token.
func Tokenize(input string) []Token {
	t := &Tokenizer{input: input, tokens: make([]Token, 0, 8)}
	return t.run()
}

func (t *Tokenizer) run() []Token {
	for t.pos < len(t.input) {
		c := t.input[t.pos]
		switch {
		case isSpace(c):
			t.pos++
		case c == '@':
			t.lexStudentRef()
		case c == '"':
			t.lexQuoted()
		case c == '(':
			t.add(TokenLParen, "(", t.pos)
			t.pos++
		case c == ')':
			t.add(TokenRParen, ")", t.pos)
			t.pos++
		case c == '>' || c == '<' || c == '!':
			t.lexComparison()
		case isWordChar(c):
			t.lexWord()
		default:
			// Unrecognized character: skipped without a token.
			t.pos++
		}
	}
	t.add(TokenEOF, "", t.pos)
	return t.tokens
}

// lexStudentRef scans @word. A lone '@' with no word characters behind it
// is dropped like any other unrecognized character.
func (t *Tokenizer) lexStudentRef() {
	start := t.pos
	t.pos++ // consume '@'
	word := t.scanWhile(isWordChar)
	if word == "" {
		return
	}
	t.add(TokenStudentRef, word, start)
}

// lexQuoted scans a double-quoted string and emits its content with the
// quotes stripped. An unterminated quote is dropped as an unrecognized
// character.
func (t *Tokenizer) lexQuoted() {
	start := t.pos
	end := strings.IndexByte(t.input[t.pos+1:], '"')
	if end < 0 {
		t.pos++
		return
	}
	content := t.input[t.pos+1 : t.pos+1+end]
	t.add(TokenQuotedString, content, start)
	t.pos += end + 2
}

// lexComparison scans >=, <=, !=, > or <. A '!' that is not part of '!='
// is dropped.
func (t *Tokenizer) lexComparison() {
	start := t.pos
	c := t.input[t.pos]
	hasEq := t.pos+1 < len(t.input) && t.input[t.pos+1] == '='
	switch {
	case c == '!' && hasEq:
		t.add(TokenComparison, "!=", start)
		t.pos += 2
	case c == '!':
		t.pos++
	case hasEq:
		t.add(TokenComparison, string(c)+"=", start)
		t.pos += 2
	default:
		t.add(TokenComparison, string(c), start)
		t.pos++
	}
}

// lexWord scans a run of word characters and decides between a field
// prefix, a logical operator keyword, and a bare value.
func (t *Tokenizer) lexWord() {
	start := t.pos
	word := t.scanWhile(isWordChar)

	if t.pos < len(t.input) && t.input[t.pos] == ':' {
		t.add(TokenField, word, start)
		t.pos++ // consume ':'
		t.lexFieldValue()
		return
	}

	switch strings.ToUpper(word) {
	case "AND", "OR", "NOT":
		t.add(TokenOperator, strings.ToUpper(word), start)
	default:
		t.add(TokenValue, word, start)
	}
}

// lexFieldValue scans the value attached to a field prefix, if one starts
// at the current position. Quoted values have their quotes stripped; bare
// values may contain letters, digits, '-', '%', '.' and '_'. When neither
// form follows (for example "attendance:>80", where a comparison operator
// comes first, or a dangling "status:"), nothing is emitted and the main
// loop resumes.
func (t *Tokenizer) lexFieldValue() {
	if t.pos >= len(t.input) {
		return
	}
	if t.input[t.pos] == '"' {
		start := t.pos
		end := strings.IndexByte(t.input[t.pos+1:], '"')
		if end < 0 {
			t.pos++
			return
		}
		t.add(TokenValue, t.input[t.pos+1:t.pos+1+end], start)
		t.pos += end + 2
		return
	}
	start := t.pos
	value := t.scanWhile(isValueChar)
	if value != "" {
		t.add(TokenValue, value, start)
	}
}

// scanWhile consumes characters matching pred and returns the scanned run.
func (t *Tokenizer) scanWhile(pred func(byte) bool) string {
	start := t.pos
	for t.pos < len(t.input) && pred(t.input[t.pos]) {
		t.pos++
	}
	return t.input[start:t.pos]
}

func (t *Tokenizer) add(typ TokenType, value string, pos int) {
	t.tokens = append(t.tokens, Token{Type: typ, Value: value, Position: pos})
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

func isValueChar(c byte) bool {
	return isWordChar(c) || c == '-' || c == '%' || c == '.'
}
