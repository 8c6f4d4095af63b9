package query

// TokenType defines the token alphabet produced by the tokenizer.
type TokenType int

const (
	TokenStudentRef   TokenType = iota // @word student shorthand
	TokenQuotedString                  // "…" free-standing quoted text
	TokenField                         // word immediately followed by ':'
	TokenValue                         // bare word or a field's attached value
	TokenComparison                    // >= <= != > <
	TokenOperator                      // AND OR NOT (normalized to uppercase)
	TokenLParen                        // '('
	TokenRParen                        // ')'
	TokenEOF                           // end of input
)

// String returns a stable name for the token type, used in diagnostics
// and the explain command.
func (t TokenType) String() string {
	switch t {
	case TokenStudentRef:
		return "STUDENT_REF"
	case TokenQuotedString:
		return "QUOTED_STRING"
	case TokenField:
		return "FIELD"
	case TokenValue:
		return "VALUE"
	case TokenComparison:
		return "COMPARISON"
	case TokenOperator:
		return "OPERATOR"
	case TokenLParen:
		return "LPAREN"
	case TokenRParen:
		return "RPAREN"
	case TokenEOF:
		return "EOF"
	default:
		return "UNKNOWN"
	}
}

// Token is a single lexical token with its literal value and the byte
// offset where it started in the original query string.
//
// Tokens are produced fresh per query and never mutated.
type Token struct {
	Type     TokenType
	Value    string
	Position int
}
