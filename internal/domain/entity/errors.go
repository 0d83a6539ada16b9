package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrIncompatibleServer is reported when a server runs a version older
	// than the minimum supported one. Fatal until the user acts.
	ErrIncompatibleServer = errors.New("incompatible server version")

	// ErrNoMatchingServer is returned when a deep link matches no configured server.
	ErrNoMatchingServer = errors.New("no matching server")

	// ErrServerNotFound is returned for operations on unknown server ids.
	ErrServerNotFound = errors.New("server not found")

	// ErrTabNotFound is returned for operations on unknown tab ids.
	ErrTabNotFound = errors.New("tab not found")
)

// ValidationError rejects bad server input synchronously.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// ConfigurationRaceError describes an attempt to act on a tab that
// reconciliation already removed. Callers log it and carry on.
type ConfigurationRaceError struct {
	TabID TabID
	Op    string
}

func (e *ConfigurationRaceError) Error() string {
	return fmt.Sprintf("%s: no view for tab %s", e.Op, e.TabID)
}

// LoadErrorKind classifies a failed load.
type LoadErrorKind int

const (
	// LoadErrorOther is a transient network failure, retried with a budget.
	LoadErrorOther LoadErrorKind = iota
	// LoadErrorCertificate needs a user trust decision; never retried.
	LoadErrorCertificate
	// LoadErrorAborted means the navigation was superseded; ignored.
	LoadErrorAborted
)

// String returns a human-readable representation of the kind.
func (k LoadErrorKind) String() string {
	switch k {
	case LoadErrorCertificate:
		return "certificate"
	case LoadErrorAborted:
		return "aborted"
	case LoadErrorOther:
		return "other"
	default:
		return "unknown"
	}
}

// LoadError is the failure reported by the content engine for a load.
type LoadError struct {
	Kind LoadErrorKind
	Code string // engine error code, e.g. ERR_CERT_AUTHORITY_INVALID
	URL  string
	Err  error
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("load %s failed (%s)", e.URL, e.Kind)
	if e.Code != "" {
		msg += ": " + e.Code
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ClassifyLoadError returns the kind carried by err. Errors that are not
// a *LoadError count as transient network failures.
func ClassifyLoadError(err error) LoadErrorKind {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Kind
	}
	return LoadErrorOther
}
