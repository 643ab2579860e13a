package uritemplate

import (
	"errors"
	"fmt"
)

// ErrInvalidTemplate is matched by every *ParseError.
var ErrInvalidTemplate = errors.New("invalid uri template")

// ParseError reports a malformed template. Routes whose template fails to
// parse must not be registered.
type ParseError struct {
	Template string
	Offset   int
	Reason   string
	Err      error
}

func newParseError(template string, offset int, reason string) *ParseError {
	return &ParseError{Template: template, Offset: offset, Reason: reason}
}

func wrapParseError(template string, offset int, err error) *ParseError {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe
	}

	return &ParseError{Template: template, Offset: offset, Reason: err.Error(), Err: err}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("uritemplate: %s at offset %d in template '%s'", e.Reason, e.Offset, e.Template)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidTemplate
}
