package nasa

import (
	"errors"
	"fmt"
)

// PoorFitQualityError reports a fit whose residual exceeds the configured
// tolerance. The fitted model is still returned alongside it; the caller
// decides whether to widen the search or accept.
type PoorFitQualityError struct {
	Residual  float64
	Tolerance float64
}

func (e *PoorFitQualityError) Error() string {
	return fmt.Sprintf("nasa fit residual %.4g exceeds tolerance %.4g (in Cp/R)", e.Residual, e.Tolerance)
}

// IsPoorFitQuality reports whether the error chain contains a
// PoorFitQualityError.
func IsPoorFitQuality(err error) bool {
	var pe *PoorFitQualityError
	return errors.As(err, &pe)
}

// FitDidNotConvergeError reports a breakpoint search that exhausted its
// iteration budget without an acceptable fit.
type FitDidNotConvergeError struct {
	Iterations int
}

func (e *FitDidNotConvergeError) Error() string {
	return fmt.Sprintf("nasa fit did not converge within %d iterations", e.Iterations)
}

// IsFitDidNotConverge reports whether the error chain contains a
// FitDidNotConvergeError.
func IsFitDidNotConverge(err error) bool {
	var fe *FitDidNotConvergeError
	return errors.As(err, &fe)
}
