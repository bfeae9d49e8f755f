package store

import (
	"errors"
	"fmt"
)

// Kind classifies why a store operation had no effect.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation: malformed email or password.
	KindValidation
	// KindNetwork: the catalog could not be reached or answered with an error.
	KindNetwork
	// KindDecode: a catalog response or a stored value could not be decoded.
	KindDecode
	// KindPersistence: durable storage rejected a read, write or removal.
	KindPersistence
	// KindSuperseded: a newer request for the same slot won.
	KindSuperseded
	// KindCanceled: the caller's context ended first.
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	case KindDecode:
		return "decode"
	case KindPersistence:
		return "persistence"
	case KindSuperseded:
		return "superseded"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Error is returned by every store operation that touches I/O.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of the first *Error in err's chain, KindUnknown if
// there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSuperseded         = errors.New("superseded by a newer request")
)

func opError(op string, kind Kind, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}
