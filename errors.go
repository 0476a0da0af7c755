package cli

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrHelp is the error returned when help was requested via -h or --help.
// Parse and ParseArgs return it so callers can distinguish "user asked for
// usage" from real failures; Run and RunFatal treat it as a zero-exit case.
var ErrHelp = errors.New("help requested")

// DefinitionError reports a problem with the config struct itself or with
// the metadata attached to it: an unsupported field type, conflicting
// annotations, colliding flag names, a misplaced variable-arity positional.
// These are programmer mistakes, so Build returns them eagerly and New
// panics on them; they can never be produced by end-user input.
type DefinitionError struct {
	Type   string // config struct type name
	Field  string // offending field, if the problem is field-scoped
	Reason string
}

func (e DefinitionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: field %s: %s", e.Type, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Reason)
}

func definitionErrorf(typeName string, fieldName string, format string, args ...interface{}) DefinitionError {
	return DefinitionError{
		Type:   typeName,
		Field:  fieldName,
		Reason: fmt.Sprintf(format, args...),
	}
}

// ValueError reports end-user input that could not be coerced into a field
// or that failed choices validation. Field holds the user-facing flag or
// argument name, not the Go field name.
type ValueError struct {
	Field   string
	Value   string
	Choices []string
	Cause   error
}

func (e ValueError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid value %q for %s", e.Value, e.Field)
	if len(e.Choices) > 0 {
		fmt.Fprintf(&b, " (choose from %s)", strings.Join(e.Choices, ", "))
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e ValueError) Unwrap() error { return e.Cause }

// FileError reports a failure to read or decode a file named by the user:
// the base config file, a nested config file for a map field, or an
// @-indirected value file.
type FileError struct {
	Path  string
	Cause error
}

func (e FileError) Error() string {
	return fmt.Sprintf("cannot load %s: %s", e.Path, e.Cause)
}

func (e FileError) Unwrap() error { return e.Cause }
