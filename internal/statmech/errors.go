package statmech

import (
	"errors"
	"fmt"
)

// UnsupportedModeError reports a mode variant the evaluator cannot
// combine.
type UnsupportedModeError struct {
	Mode string
}

func (e *UnsupportedModeError) Error() string {
	return fmt.Sprintf("unsupported mode variant %q", e.Mode)
}

// IsUnsupportedMode reports whether the error chain contains an
// UnsupportedModeError.
func IsUnsupportedMode(err error) bool {
	var ue *UnsupportedModeError
	return errors.As(err, &ue)
}
