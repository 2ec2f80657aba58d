package quantity

import (
	"errors"
	"fmt"
)

// UnitMismatchError reports a dimensional inconsistency in a Quantity
// operation: an unknown unit string, a conversion between incompatible
// dimensions, or a field whose declared units do not match its expected
// physical dimension.
type UnitMismatchError struct {
	Units  string
	Reason string
}

func (e *UnitMismatchError) Error() string {
	return fmt.Sprintf("unit mismatch for %q: %s", e.Units, e.Reason)
}

// IsUnitMismatch reports whether the error chain contains a
// UnitMismatchError.
func IsUnitMismatch(err error) bool {
	var ue *UnitMismatchError
	return errors.As(err, &ue)
}
