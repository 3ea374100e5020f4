package formula

import (
	"errors"
	"fmt"
)

// ErrConfiguration is matched by every *ConfigurationError via errors.Is.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError reports a strata() term left in a formula that is about to
// be handed to an engine which cannot honour it. Fitting must not proceed.
type ConfigurationError struct {
	Var    string // variable wrapped by the offending strata() term
	Nested bool   // true when the term sits inside an interaction
}

func (e *ConfigurationError) Error() string {
	if e.Nested {
		return fmt.Sprintf("configuration error: strata(%s) is nested inside an interaction and cannot be removed from the formula", e.Var)
	}
	return fmt.Sprintf("configuration error: strata(%s) remains in the formula", e.Var)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// ParseError describes a syntax error at a character offset of the formula text.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("formula parse error at offset %d: %s", e.Pos, e.Msg)
}
