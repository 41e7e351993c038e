package navigation

import "fmt"

// OutcomeKind classifies how a ship operation ended. Callers branch on the
// kind instead of matching error strings.
type OutcomeKind int

const (
	// OutcomeOK means the operation completed
	OutcomeOK OutcomeKind = iota
	// OutcomeInsufficientFuel means the remote rejected a transit for fuel
	OutcomeInsufficientFuel
	// OutcomeNotSold means a market declined to buy the offered good
	OutcomeNotSold
	// OutcomeRetryable means a transient failure; try again next tick
	OutcomeRetryable
	// OutcomeFatal means the controller cannot continue with this ship
	OutcomeFatal
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "OK"
	case OutcomeInsufficientFuel:
		return "INSUFFICIENT_FUEL"
	case OutcomeNotSold:
		return "NOT_SOLD"
	case OutcomeRetryable:
		return "RETRYABLE"
	case OutcomeFatal:
		return "FATAL"
	}
	return fmt.Sprintf("OutcomeKind(%d)", int(k))
}

// Outcome is the tagged result of a ship operation
type Outcome struct {
	Kind OutcomeKind
	Err  error
}

// OK reports a completed operation
func OK() Outcome {
	return Outcome{Kind: OutcomeOK}
}

// InsufficientFuel reports a fuel-rejected transit
func InsufficientFuel(err error) Outcome {
	return Outcome{Kind: OutcomeInsufficientFuel, Err: err}
}

// NotSold reports a declined sale
func NotSold(err error) Outcome {
	return Outcome{Kind: OutcomeNotSold, Err: err}
}

// Retryable reports a transient failure
func Retryable(err error) Outcome {
	return Outcome{Kind: OutcomeRetryable, Err: err}
}

// Fatal reports an unrecoverable failure
func Fatal(err error) Outcome {
	return Outcome{Kind: OutcomeFatal, Err: err}
}

// Success reports whether the operation completed
func (o Outcome) Success() bool {
	return o.Kind == OutcomeOK
}
