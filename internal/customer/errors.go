package customer

import (
	"errors"
	"fmt"
)

var (
	ErrIO                = errors.New("io error")
	ErrParse             = errors.New("parse error")
	ErrInsufficientData  = errors.New("insufficient data")
	ErrDegenerateFeature = errors.New("degenerate feature")
)

// ParseError describes a cell that could not be parsed.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d, column %s: cannot parse %q: %v", e.Line, e.Column, e.Value, e.Err)
	}
	return fmt.Sprintf("line %d, column %s: cannot parse %q", e.Line, e.Column, e.Value)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
