package command

type Reason int

const (
	ReasonNone Reason = iota
	// ReasonEmpty: nothing was said.
	ReasonEmpty
	// ReasonNotFound: a lookup missed. Not a fault.
	ReasonNotFound
	// ReasonNoResult: a backend answered without a result.
	ReasonNoResult
	// ReasonUnavailable: a required collaborator or data file is missing.
	ReasonUnavailable
	// ReasonFailed: a side effect failed.
	ReasonFailed
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonEmpty:
		return "empty"
	case ReasonNotFound:
		return "not_found"
	case ReasonNoResult:
		return "no_result"
	case ReasonUnavailable:
		return "unavailable"
	case ReasonFailed:
		return "failed"
	}
	return "unknown"
}

// Outcome is what a handler reports back to the dispatcher.
type Outcome struct {
	OK        bool
	Reason    Reason
	Err       error
	Terminate bool
}

func done() Outcome { return Outcome{OK: true} }

func failed(reason Reason, err error) Outcome {
	return Outcome{Reason: reason, Err: err}
}

// Result pairs the matched intent with its handler's outcome.
type Result struct {
	Intent Intent
	Outcome
}
