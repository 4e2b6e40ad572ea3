package repository

import (
	"context"
	"errors"

	"github.com/Digital-Shane/show-manager/internal/provider"
)

// Status classifies the outcome of a repository call.
type Status int

const (
	StatusOK Status = iota
	StatusNotFound
	StatusTransportError
	StatusStorageError
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not_found"
	case StatusTransportError:
		return "transport_error"
	case StatusStorageError:
		return "storage_error"
	case StatusInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Result carries a value or the reason it is missing.
type Result[T any] struct {
	Value  *T
	Status Status
	Err    error
}

// Absent reports whether no value was produced.
func (r Result[T]) Absent() bool { return r.Value == nil }

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool { return r.Status == StatusOK }

// Outcome reports the result of a bookmark write.
type Outcome struct {
	Status Status
	// Changed is false for a duplicate insert or a delete of a missing id.
	Changed bool
	Err     error
}

// OK reports whether the write reached the store without error.
func (o Outcome) OK() bool { return o.Status == StatusOK }

// ErrNoCatalog is returned when no enabled catalog can serve a request.
var ErrNoCatalog = errors.New("no catalog available")

// classify maps a catalog error onto a Status.
func classify(err error) Status {
	var perr *provider.ProviderError
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrNoCatalog):
		return StatusInvalid
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StatusTransportError
	case errors.As(err, &perr):
		switch perr.Code {
		case provider.CodeNotFound:
			return StatusNotFound
		case provider.CodeInvalidRequest:
			return StatusInvalid
		default:
			return StatusTransportError
		}
	default:
		return StatusTransportError
	}
}
