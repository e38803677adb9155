package oparl

import (
	"errors"
	"fmt"
)

// FetchErrorKind classifies why a fetch failed.
type FetchErrorKind int

const (
	// FETCH_TRANSPORT means the request never produced a response (dns, tcp, tls, timeout).
	FETCH_TRANSPORT FetchErrorKind = iota
	// FETCH_STATUS means the upstream answered with a non-2xx status.
	FETCH_STATUS
	// FETCH_DECODE means the body was not the JSON that was expected.
	FETCH_DECODE
)

func (k FetchErrorKind) String() string {
	switch k {
	case FETCH_TRANSPORT:
		return "transport"
	case FETCH_STATUS:
		return "status"
	case FETCH_DECODE:
		return "decode"
	default:
		return "unknown"
	}
}

// FetchError is returned by every fetch that did not yield a usable JSON body.
type FetchError struct {
	Url        string
	Kind       FetchErrorKind
	StatusCode int
	Underlying error
}

func (e *FetchError) Error() string {
	if e.Kind == FETCH_STATUS {
		return fmt.Sprintf("oparl: fetch %s [%s %d]: %v", e.Url, e.Kind, e.StatusCode, e.Underlying)
	}
	return fmt.Sprintf("oparl: fetch %s [%s]: %v", e.Url, e.Kind, e.Underlying)
}

func (e *FetchError) Unwrap() error {
	return e.Underlying
}

// Transient reports whether repeating the request could succeed, transport and status
// failures are transient while a malformed body is not.
func (e *FetchError) Transient() bool {
	return e.Kind == FETCH_TRANSPORT || e.Kind == FETCH_STATUS
}

// IsTransient checks if err is a FetchError worth retrying.
func IsTransient(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Transient()
	}
	return false
}

// ErrMissingReference is returned when a document lacks the link to the next resource in the
// system → body → collection chain.
var ErrMissingReference = errors.New("oparl: missing reference")
