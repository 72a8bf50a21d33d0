// Package calculator ties the expression editor to the evaluation pipeline.
// After every edit the live answer is recomputed from scratch from the
// pending expression.
package calculator

import (
	"fmt"
	"strings"

	"github.com/lemonberrylabs/keypad-calculator/pkg/editor"
	"github.com/lemonberrylabs/keypad-calculator/pkg/expr"
)

// MaxExpressionLength bounds expressions accepted from clients, in bytes.
const MaxExpressionLength = 1024

// Ready reports whether an expression is complete enough to evaluate. Bare
// negative numbers, expressions without a binary operator, and expressions
// ending in an operator or open bracket are not ready.
func Ready(expression string) bool {
	if expression == "" {
		return false
	}
	// A leading minus is a sign, not an operator.
	if rest, ok := strings.CutPrefix(expression, "-"); ok && !strings.ContainsFunc(rest, expr.IsOperatorRune) {
		return false
	}
	if !strings.ContainsFunc(expression, expr.IsOperatorRune) {
		return false
	}

	r := []rune(expression)
	last := r[len(r)-1]
	return !expr.IsOperatorRune(last) && last != '('
}

// Answer computes the live answer for expression. It returns "" with a nil
// error when the expression is not ready, and editor.ErrorAnswer together
// with the pipeline error when evaluation fails.
func Answer(expression string) (string, error) {
	if !Ready(expression) {
		return "", nil
	}
	v, err := expr.Evaluate(expression)
	if err != nil {
		return editor.ErrorAnswer, err
	}
	return expr.FormatNumber(v), nil
}

// Calculator holds one pending expression and its live answer. It is not
// safe for concurrent use.
type Calculator struct {
	state   editor.State
	lastErr error
}

// New creates an empty calculator.
func New() *Calculator {
	return &Calculator{}
}

// Restore creates a calculator positioned at expression, with its answer
// derived from it.
func Restore(expression string) *Calculator {
	c := &Calculator{state: editor.State{Expression: expression}}
	c.refresh()
	return c
}

// State returns the current expression and answer.
func (c *Calculator) State() editor.State {
	return c.state
}

// Err returns the error behind an "Error" answer, or nil.
func (c *Calculator) Err() error {
	return c.lastErr
}

// Press applies one key label. The answer is re-derived whenever the
// expression changed.
func (c *Calculator) Press(label string) (editor.State, error) {
	if !editor.ValidLabel(label) {
		return c.state, fmt.Errorf("unknown key %q", label)
	}

	prev := c.state.Expression
	c.state = editor.Apply(c.state, label)
	if c.state.Expression != prev {
		c.refresh()
	}
	return c.state, nil
}

// Delete removes the last character of the pending expression.
func (c *Calculator) Delete() editor.State {
	prev := c.state.Expression
	c.state = editor.Delete(c.state)
	if c.state.Expression != prev {
		c.refresh()
	}
	return c.state
}

func (c *Calculator) refresh() {
	c.state.Answer, c.lastErr = Answer(c.state.Expression)
}
