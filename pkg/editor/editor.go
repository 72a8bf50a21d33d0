// Package editor implements the key-press state machine that edits the
// pending calculator expression.
//
// Apply is a pure function: it takes the current state and one key label and
// returns the next state. It never evaluates anything; the live answer it
// returns is only touched by the "=" and "C" keys; re-deriving the answer
// after an edit is the caller's job.
package editor

import (
	"fmt"

	"github.com/lemonberrylabs/keypad-calculator/pkg/expr"
)

// Key labels with special editing behaviour. Digits and operator symbols are
// used as-is.
const (
	KeyEquals     = "="
	KeyClear      = "C"
	KeyDecimal    = "."
	KeyToggleSign = "+/-"
	KeyPercent    = "%"
	KeyDelete     = "DEL"
	KeyLParen     = "("
	KeyRParen     = ")"
)

// ErrorAnswer is the answer shown when evaluation fails.
const ErrorAnswer = "Error"

// State is the pending expression together with its live answer.
type State struct {
	Expression string `json:"expression"`
	Answer     string `json:"answer"`
}

// ValidLabel reports whether label is a key the editor understands.
func ValidLabel(label string) bool {
	switch label {
	case KeyEquals, KeyClear, KeyDecimal, KeyToggleSign, KeyPercent, KeyDelete, KeyLParen, KeyRParen:
		return true
	}
	if len(label) == 1 && label[0] >= '0' && label[0] <= '9' {
		return true
	}
	return expr.IsOperator(label)
}

// Apply returns the state that results from pressing label in state s.
// Unknown labels leave s unchanged. "=" commits the live answer only when it
// is a number: with an empty or "Error" answer it does nothing, so a failing
// expression stays on screen for correction.
func Apply(s State, label string) State {
	if !ValidLabel(label) {
		return s
	}

	switch label {
	case KeyEquals:
		if s.Answer == "" || s.Answer == ErrorAnswer {
			return s
		}
		return State{Expression: s.Answer}
	case KeyClear:
		return State{}
	case KeyDecimal:
		s.Expression = appendDecimal(s.Expression)
	case KeyToggleSign:
		s.Expression = ToggleSign(s.Expression)
	case KeyDelete:
		return Delete(s)
	default:
		s.Expression = appendLabel(s.Expression, label)
	}
	return s
}

// Replay types expression into an empty editor one key at a time and
// returns the resulting state. A sign minus is entered as the +/- key once
// its literal is complete. Expressions the keypad cannot produce exactly,
// such as "1..2", "3+×4" or "05", are rejected.
func Replay(expression string) (State, error) {
	var s State
	r := []rune(expression)
	signPending := false

	for i, ch := range r {
		if ch == '-' && i+1 < len(r) && isDigit(r[i+1]) && (i == 0 || !expr.EndsOperand(r[i-1])) {
			signPending = true
			continue
		}

		label := string(ch)
		if !ValidLabel(label) {
			return State{}, fmt.Errorf("unknown key %q at position %d", label, i)
		}
		s = Apply(s, label)

		if signPending && (i+1 == len(r) || !continuesLiteral(r[i+1])) {
			s = Apply(s, KeyToggleSign)
			signPending = false
		}
	}

	if s.Expression != expression {
		return State{}, fmt.Errorf("expression %q cannot be typed on the keypad (typing it gives %q)", expression, s.Expression)
	}
	return s, nil
}

func continuesLiteral(r rune) bool {
	return isDigit(r) || r == '.' || r == '%'
}

// Delete removes the last character of the pending expression.
func Delete(s State) State {
	r := []rune(s.Expression)
	if len(r) == 0 {
		return s
	}
	s.Expression = string(r[:len(r)-1])
	return s
}

// appendDecimal starts a new fractional literal or adds a decimal point to
// the trailing one. A segment never gets a second point.
func appendDecimal(e string) string {
	r := []rune(e)
	if len(r) == 0 {
		return "0."
	}

	last := r[len(r)-1]
	switch {
	case expr.IsOperatorRune(last), last == '(':
		return e + "0."
	case last == '%', last == ')':
		return e
	}

	i := len(r)
	for i > 0 && isDigit(r[i-1]) {
		i--
	}
	if i > 0 && r[i-1] == '.' {
		return e
	}
	return e + "."
}

// ToggleSign flips the sign of the last numeric literal in e. A minus counts
// as the literal's sign only where the tokenizer would read it that way, so
// "12-3" becomes "12--3" (subtracting -3) instead of losing the operator and
// merging into "123" as a plain scan for "-?digits" would.
func ToggleSign(e string) string {
	r := []rune(e)
	start, end := -1, -1

	for i := 0; i < len(r); {
		signed := r[i] == '-' && i+1 < len(r) && isDigit(r[i+1]) &&
			(i == 0 || !expr.EndsOperand(r[i-1]))
		if !signed && !isDigit(r[i]) {
			i++
			continue
		}

		j := i
		if signed {
			j++
		}
		for j < len(r) && isDigit(r[j]) {
			j++
		}
		if j+1 < len(r) && r[j] == '.' && isDigit(r[j+1]) {
			j++
			for j < len(r) && isDigit(r[j]) {
				j++
			}
		}
		start, end = i, j
		i = j
	}

	if start < 0 {
		return e
	}

	lit := string(r[start:end])
	if lit[0] == '-' {
		lit = lit[1:]
	} else {
		lit = "-" + lit
	}
	return string(r[:start]) + lit + string(r[end:])
}

// appendLabel handles digits, operators, percent and brackets.
func appendLabel(e, label string) string {
	r := []rune(e)

	if expr.IsOperator(label) {
		// Operator chaining: a new operator replaces any trailing ones.
		i := len(r)
		for i > 0 && expr.IsOperatorRune(r[i-1]) {
			i--
		}
		if i == 0 || r[i-1] == '(' {
			return e
		}
		return string(r[:i]) + label
	}

	if label == KeyPercent {
		if len(r) == 0 || !isDigit(r[len(r)-1]) {
			return e
		}
		return e + label
	}

	// A digit replaces a lone leading zero. Brackets never do.
	if len(label) == 1 && isDigit(rune(label[0])) {
		if e == "0" {
			return label
		}
		if n := len(r); n >= 2 && r[n-1] == '0' && expr.IsOperatorRune(r[n-2]) {
			return string(r[:n-1]) + label
		}
	}
	return e + label
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
