package expr

// Lexer tokenizes a calculator expression string. Runes that cannot start a
// token are skipped, so tokenizing never fails.
type Lexer struct {
	input  []rune
	pos    int
	tokens []Token
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: []rune(input)}
}

// Tokenize is a convenience wrapper around NewLexer(input).Tokenize().
func Tokenize(input string) []Token {
	return NewLexer(input).Tokenize()
}

// Tokenize scans the entire input and returns all tokens.
func (l *Lexer) Tokenize() []Token {
	for l.pos < len(l.input) {
		if tok, ok := l.next(); ok {
			l.tokens = append(l.tokens, tok)
		}
	}
	return l.tokens
}

// next returns the token starting at the current position. ok is false when
// the rune there was skipped.
func (l *Lexer) next() (Token, bool) {
	ch := l.input[l.pos]

	if isDigit(ch) {
		return l.readNumber(), true
	}

	// A minus directly in front of digits is a sign unless it follows a digit
	// or ")", in which case it is the subtraction operator.
	if ch == '-' && l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1]) &&
		(l.pos == 0 || !EndsOperand(l.input[l.pos-1])) {
		return l.readNumber(), true
	}

	switch {
	case ch == '(':
		l.pos++
		return Token{Kind: TokenLParen, Value: "(", Pos: l.pos - 1}, true
	case ch == ')':
		l.pos++
		return Token{Kind: TokenRParen, Value: ")", Pos: l.pos - 1}, true
	case IsOperatorRune(ch):
		l.pos++
		return Token{Kind: TokenOperator, Value: string(ch), Pos: l.pos - 1}, true
	}

	l.pos++
	return Token{}, false
}

// readNumber reads [-]digits[.digits][%].
func (l *Lexer) readNumber() Token {
	start := l.pos
	if l.input[l.pos] == '-' {
		l.pos++
	}
	l.skipDigits()

	if l.pos+1 < len(l.input) && l.input[l.pos] == '.' && isDigit(l.input[l.pos+1]) {
		l.pos++
		l.skipDigits()
	}
	if l.pos < len(l.input) && l.input[l.pos] == '%' {
		l.pos++
	}

	return Token{Kind: TokenNumber, Value: string(l.input[start:l.pos]), Pos: start}
}

func (l *Lexer) skipDigits() {
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
}

// EndsOperand reports whether a minus after r is always binary: r is a digit
// or a closing bracket. After anything else a minus in front of digits is
// the literal's sign, so "5%-3" reads as 5% followed by -3.
func EndsOperand(r rune) bool {
	return isDigit(r) || r == ')'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
