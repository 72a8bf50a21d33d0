package expr

// ToPostfix reorders infix tokens into postfix (reverse Polish) order using
// the shunting-yard algorithm. Operators of equal precedence associate to the
// left, so 8-3+2 becomes 8 3 - 2 +.
//
// Bracket handling: a ")" with no matching "(" is dropped, and any "(" still
// open at the end of input is treated as closed there. This lets a partially
// typed expression such as "2×(3+4" evaluate while the user is still typing.
func ToPostfix(tokens []Token) []Token {
	output := make([]Token, 0, len(tokens))
	var stack []Token

	for _, tok := range tokens {
		switch tok.Kind {
		case TokenNumber:
			output = append(output, tok)

		case TokenLParen:
			stack = append(stack, tok)

		case TokenRParen:
			for len(stack) > 0 && stack[len(stack)-1].Kind != TokenLParen {
				output = append(output, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1] // discard "("
			}

		default:
			prec := Precedence(tok.Value)
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.Kind != TokenOperator || Precedence(top.Value) < prec {
					break
				}
				output = append(output, top)
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, tok)
		}
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.Kind == TokenLParen {
			continue
		}
		output = append(output, top)
	}

	return output
}
