package toolbox

import (
	"errors"
	"fmt"
)

// ErrDuplicateTool is returned by Register when a tool name is already taken.
var ErrDuplicateTool = errors.New("duplicate tool name")

// ArgumentError is the typed failure a tool raises to signal that the caller
// supplied arguments it rejects. The dispatcher maps it to INVALID_PARAMS;
// every other tool error maps to INTERNAL_ERROR.
type ArgumentError struct {
	msg string
}

func (e *ArgumentError) Error() string { return e.msg }

// InvalidArgsf builds an ArgumentError from a format string.
func InvalidArgsf(format string, a ...any) error {
	return &ArgumentError{msg: fmt.Sprintf(format, a...)}
}

// IsArgumentError reports whether err is (or wraps) an ArgumentError.
func IsArgumentError(err error) bool {
	var ae *ArgumentError
	return errors.As(err, &ae)
}
