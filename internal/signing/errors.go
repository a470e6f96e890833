package signing

import (
	"errors"
	"fmt"
)

// ErrUnknownVariant is returned when a build variant has no binding at all.
var ErrUnknownVariant = errors.New("unknown build variant")

// ParseError reports malformed properties syntax.
type ParseError struct {
	Path string
	Line int // 0 when the parser could not attribute the failure to a line
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s: line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IOError reports a properties file that exists but could not be read.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// MissingCredentialError is returned when a bound variant needs a field
// that the properties file did not provide.
type MissingCredentialError struct {
	Variant string
	Field   string
}

func (e *MissingCredentialError) Error() string {
	if e.Variant == "" {
		return fmt.Sprintf("signing credential %q is not set", e.Field)
	}
	return fmt.Sprintf("variant %q: signing credential %q is not set", e.Variant, e.Field)
}
