package agent

import "fmt"

// ErrorKind classifies a collaborator failure so the loop can branch on it
// instead of catching everything the same way.
type ErrorKind int

const (
	// KindTransient covers network and API failures; the action simply did
	// not complete this cycle.
	KindTransient ErrorKind = iota
	// KindMalformed covers bad input we defaulted around; it never aborts.
	KindMalformed
	// KindNotConfigured covers missing tasks or credentials.
	KindNotConfigured
)

func (k ErrorKind) String() string {
	switch k {
	case KindMalformed:
		return "malformed"
	case KindNotConfigured:
		return "not_configured"
	default:
		return "transient"
	}
}

// Error is a classified collaborator failure.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func transient(op string, err error) *Error {
	return &Error{Kind: KindTransient, Op: op, Err: err}
}

func notConfigured(op string, err error) *Error {
	return &Error{Kind: KindNotConfigured, Op: op, Err: err}
}
