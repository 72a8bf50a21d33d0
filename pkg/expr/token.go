// Package expr implements the calculator's evaluation pipeline: a tokenizer,
// an infix-to-postfix converter and a postfix evaluator. Every stage is a pure
// function over an immutable token slice.
package expr

// TokenKind represents the kind of a lexical token.
type TokenKind int

const (
	TokenNumber   TokenKind = iota // numeric literal, optionally signed and percent-suffixed
	TokenOperator                  // + - × ÷ (and the x * / spellings)
	TokenLParen                    // (
	TokenRParen                    // )
)

// Token is a single lexical unit. Value is the text exactly as it appeared
// in the input.
type Token struct {
	Kind  TokenKind
	Value string
	Pos   int // rune offset in the source
}

// String returns a debug-friendly representation of the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenNumber:
		return "NUMBER"
	case TokenOperator:
		return "OPERATOR"
	case TokenLParen:
		return "LPAREN"
	case TokenRParen:
		return "RPAREN"
	default:
		return "UNKNOWN"
	}
}

// Canonical operator symbols.
const (
	OpAdd = "+"
	OpSub = "-"
	OpMul = "×"
	OpDiv = "÷"
)

// operatorAliases maps every accepted operator spelling to its canonical form.
var operatorAliases = map[string]string{
	"+": OpAdd,
	"-": OpSub,
	"×": OpMul,
	"x": OpMul,
	"*": OpMul,
	"÷": OpDiv,
	"/": OpDiv,
}

// precedence ranks the canonical operators.
var precedence = map[string]int{
	OpAdd: 1,
	OpSub: 1,
	OpMul: 2,
	OpDiv: 2,
}

// CanonicalOperator returns the canonical symbol for an operator spelling and
// whether the spelling is known.
func CanonicalOperator(s string) (string, bool) {
	op, ok := operatorAliases[s]
	return op, ok
}

// IsOperator reports whether s is one of the accepted binary operator spellings.
func IsOperator(s string) bool {
	_, ok := operatorAliases[s]
	return ok
}

// IsOperatorRune is IsOperator for a single rune.
func IsOperatorRune(r rune) bool {
	return IsOperator(string(r))
}

// Precedence returns the rank of an operator spelling, or 0 if unknown.
func Precedence(op string) int {
	return precedence[operatorAliases[op]]
}

// Values returns the raw text of each token.
func Values(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Value
	}
	return out
}
