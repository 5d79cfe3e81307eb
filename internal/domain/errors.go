package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrResourceNotFound reports that the dataset path does not resolve.
	ErrResourceNotFound = errors.New("dataset resource not found")

	// ErrParse reports malformed header or row structure.
	ErrParse = errors.New("dataset parse error")

	// ErrNoTargetColumn reports that no column matched a target alias. It is
	// returned together with a usable dataset.
	ErrNoTargetColumn = errors.New("no target column found")

	// ErrUnknownColumn reports a lookup of a column the dataset does not have.
	ErrUnknownColumn = errors.New("unknown column")
)

// ParseError locates a structural problem in the source resource.
// Line is 1-based; 0 means the problem is not tied to a single line.
type ParseError struct {
	Source string
	Line   int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s: line %d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// IsFatal reports whether err prevents any use of the dataset.
// A missing target column is recoverable; everything else is fatal.
func IsFatal(err error) bool {
	return err != nil && !errors.Is(err, ErrNoTargetColumn)
}
