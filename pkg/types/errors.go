// Package types holds the error taxonomy shared by the evaluation pipeline
// and the outer adapters.
package types

import (
	"errors"
	"fmt"
	"strings"
)

// Error tag constants for evaluation failures.
const (
	TagDivisionByZero    = "DivisionByZero"
	TagInvalidOperator   = "InvalidOperator"
	TagInvalidExpression = "InvalidExpression"
)

// CalcError is an evaluation failure with a message and classification tags.
type CalcError struct {
	Message string
	Tags    []string
	Pos     int // position of the offending token in the source, -1 if unknown
}

// Error implements the error interface.
func (e *CalcError) Error() string {
	return fmt.Sprintf("%s (tags=[%s])", e.Message, strings.Join(e.Tags, ", "))
}

// HasTag returns true if the error has the specified tag.
func (e *CalcError) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ToMap converts the error to a JSON-friendly map.
func (e *CalcError) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"message": e.Message,
		"tags":    append([]string(nil), e.Tags...),
	}
	if e.Pos >= 0 {
		m["position"] = e.Pos
	}
	return m
}

// HasTag reports whether err, or any error it wraps, is a CalcError
// carrying tag.
func HasTag(err error, tag string) bool {
	var ce *CalcError
	if errors.As(err, &ce) {
		return ce.HasTag(tag)
	}
	return false
}

// AsCalcError unwraps err into a CalcError, returning nil if it is not one.
func AsCalcError(err error) *CalcError {
	var ce *CalcError
	if errors.As(err, &ce) {
		return ce
	}
	return nil
}

// Common error constructors.

// NewDivisionByZeroError creates a DivisionByZero error.
func NewDivisionByZeroError(pos int) *CalcError {
	return &CalcError{Message: "division by zero", Tags: []string{TagDivisionByZero}, Pos: pos}
}

// NewInvalidOperatorError creates an InvalidOperator error for op.
func NewInvalidOperatorError(op string, pos int) *CalcError {
	return &CalcError{
		Message: fmt.Sprintf("invalid operator %q", op),
		Tags:    []string{TagInvalidOperator},
		Pos:     pos,
	}
}

// NewInvalidExpressionError creates an InvalidExpression error.
func NewInvalidExpressionError(msg string) *CalcError {
	return &CalcError{Message: msg, Tags: []string{TagInvalidExpression}, Pos: -1}
}
