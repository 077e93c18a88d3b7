package physics

import "errors"

// Engine errors.
var (
	// ErrInvalidStep indicates a non-positive or non-finite step size.
	ErrInvalidStep = errors.New("physics: step size must be positive and finite")

	// ErrUnstable indicates a body state diverged to NaN or Inf during a step.
	ErrUnstable = errors.New("physics: simulation unstable (body state diverged)")

	// ErrForeignBody indicates a body or geom that belongs to another world or space.
	ErrForeignBody = errors.New("physics: object belongs to a different world or space")
)

// StepError wraps an engine error with the body that triggered it.
type StepError struct {
	Body    int
	Wrapped error
}

func (e *StepError) Error() string {
	return e.Wrapped.Error()
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
