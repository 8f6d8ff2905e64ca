package types

import (
	"errors"
	"fmt"
)

// Domain specific errors.
var (
	ErrSessionNotFound = errors.New("session not found or expired")
	ErrStageDisabled   = errors.New("pipeline stage is disabled")
	ErrEmptyItinerary  = errors.New("no places in itinerary bucket")
	ErrPlaceNotFound   = errors.New("place not in itinerary bucket")
	ErrPlaceNotFetched = errors.New("place was not returned by a search in this session")
)

// ErrorKind classifies failures at an external-service boundary.
type ErrorKind string

const (
	KindNetwork    ErrorKind = "network"
	KindUpstream   ErrorKind = "upstream"
	KindParse      ErrorKind = "parse"
	KindValidation ErrorKind = "validation"
)

// ServiceError is the single error value a client operation returns. Status is
// only set for upstream failures.
type ServiceError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s error %d: %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Err }

func NetworkError(err error) *ServiceError {
	return &ServiceError{Kind: KindNetwork, Message: err.Error(), Err: err}
}

func UpstreamError(status int, message string) *ServiceError {
	return &ServiceError{Kind: KindUpstream, Status: status, Message: message}
}

func ParseError(message string, err error) *ServiceError {
	if err != nil {
		message = fmt.Sprintf("%s: %v", message, err)
	}
	return &ServiceError{Kind: KindParse, Message: message, Err: err}
}

func ValidationError(format string, args ...any) *ServiceError {
	return &ServiceError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// AsServiceError unwraps err into a *ServiceError when it carries one.
func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsKind reports whether err is a ServiceError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	se, ok := AsServiceError(err)
	return ok && se.Kind == kind
}
