package equilibrium

import (
	"errors"
	"fmt"

	"github.com/okian/bertrand/internal/domain/model"
)

// ErrConvergenceFailure reports that best-response cycling did not reach a
// fixed point within the cycle cap or deadline.
var ErrConvergenceFailure = errors.New("equilibrium did not converge")

// ConvergenceError carries the state reached when iteration was abandoned.
type ConvergenceError struct {
	Cycles int
	Last   model.PriceVector
	Cause  error
}

func (e *ConvergenceError) Error() string {
	msg := fmt.Sprintf("%s after %d cycles (last prices %v)", ErrConvergenceFailure, e.Cycles, e.Last)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *ConvergenceError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrConvergenceFailure}
	}
	return []error{ErrConvergenceFailure, e.Cause}
}
