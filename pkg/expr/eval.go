package expr

import (
	"fmt"
	"math"

	"github.com/lemonberrylabs/keypad-calculator/pkg/types"
)

// Evaluate runs the full pipeline over an infix expression string.
func Evaluate(input string) (float64, error) {
	return EvaluatePostfix(ToPostfix(Tokenize(input)))
}

// EvaluatePostfix reduces a postfix token sequence to a single value.
//
// Each operator pops its right operand first and its left operand second.
// Every intermediate result is rounded to 12 fractional digits before it is
// pushed back, so 0.1+0.2 yields 0.3.
func EvaluatePostfix(postfix []Token) (float64, error) {
	stack := make([]float64, 0, len(postfix))

	for _, tok := range postfix {
		if tok.Kind == TokenNumber {
			v, err := parseLiteral(tok)
			if err != nil {
				return 0, err
			}
			stack = append(stack, v)
			continue
		}

		op, ok := CanonicalOperator(tok.Value)
		if tok.Kind != TokenOperator || !ok {
			return 0, types.NewInvalidOperatorError(tok.Value, tok.Pos)
		}
		if len(stack) < 2 {
			return 0, types.NewInvalidExpressionError(
				fmt.Sprintf("operator %q at position %d is missing an operand", tok.Value, tok.Pos))
		}

		right := stack[len(stack)-1]
		left := stack[len(stack)-2]
		stack = stack[:len(stack)-2]

		result, err := apply(op, left, right, tok.Pos)
		if err != nil {
			return 0, err
		}
		stack = append(stack, Round12(result))
	}

	if len(stack) != 1 {
		return 0, types.NewInvalidExpressionError(
			fmt.Sprintf("expression reduced to %d values, want 1", len(stack)))
	}
	return stack[0], nil
}

func apply(op string, left, right float64, pos int) (float64, error) {
	var result float64
	switch op {
	case OpAdd:
		result = left + right
	case OpSub:
		result = left - right
	case OpMul:
		result = left * right
	case OpDiv:
		if right == 0 {
			return 0, types.NewDivisionByZeroError(pos)
		}
		result = left / right
	default:
		return 0, types.NewInvalidOperatorError(op, pos)
	}

	if math.IsInf(result, 0) || math.IsNaN(result) {
		return 0, types.NewInvalidExpressionError("result out of range")
	}
	return result, nil
}
