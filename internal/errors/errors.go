// Package errors defines the error kinds surfaced by the film service.
// FilmError keeps the outer/inner relationship as a cause chain, so a BAD_INPUT
// error wraps the specific request parameter failure that produced it.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a FilmError.
type Kind string

// Error kind constants
const (
	KindBadInput                = Kind("BAD_INPUT")
	KindPrimaryParameterOmitted = Kind("PRIMARY_PARAMETER_OMITTED")
	KindParametersConflict      = Kind("PARAMETERS_CONFLICT")
	KindInvalidValue            = Kind("INVALID_VALUE")
	KindRedundantParameter      = Kind("REDUNDANT_PARAMETER")
	KindUnknownParameter        = Kind("UNKNOWN_PARAMETER")
	KindDataGatheringFailed     = Kind("DATA_GATHERING_FAILED")
	KindNoDataFound             = Kind("NO_DATA_FOUND")
	KindApplicationInner        = Kind("APPLICATION_INNER_ERROR")
	KindPoolExhausted           = Kind("POOL_EXHAUSTED")
)

// Outward-facing messages
const (
	MessageBadInput      = "Invalid input data"
	MessageDataGathering = "Failed to gather film data"
	MessageInner         = "Internal application error"
)

// FilmError represents a classified failure with an optional cause
type FilmError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *FilmError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *FilmError) Unwrap() error {
	return e.Cause
}

// Is matches any FilmError of the same kind, so errors.Is(err, New(KindX, "", nil))
// and errors.Is(err, KindX) style sentinels both work through the chain.
func (e *FilmError) Is(target error) bool {
	switch t := target.(type) {
	case *FilmError:
		return t.Kind == e.Kind
	case Kind:
		return t == e.Kind
	}
	return false
}

// Error lets a Kind be used directly as an errors.Is target.
func (k Kind) Error() string {
	return string(k)
}

// IsRequestParameterKind reports whether k belongs to the request parameter family.
func IsRequestParameterKind(k Kind) bool {
	switch k {
	case KindPrimaryParameterOmitted, KindParametersConflict, KindInvalidValue,
		KindRedundantParameter, KindUnknownParameter:
		return true
	}
	return false
}

// New creates a new FilmError
func New(kind Kind, message string, cause error) *FilmError {
	return &FilmError{
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}
}

// NewBadInputError wraps a request parameter error into the outward BAD_INPUT kind.
func NewBadInputError(cause error) *FilmError {
	return New(KindBadInput, MessageBadInput, cause)
}

// NewPrimaryParameterOmittedError reports that neither primary parameter was supplied.
func NewPrimaryParameterOmittedError(names ...string) *FilmError {
	return NewBadInputError(New(KindPrimaryParameterOmitted,
		fmt.Sprintf("one of the parameters %v must be specified", names), nil))
}

// NewParametersConflictError reports mutually exclusive parameters supplied together.
func NewParametersConflictError(a, b string) *FilmError {
	return NewBadInputError(New(KindParametersConflict,
		fmt.Sprintf("parameters %q and %q cannot be used together", a, b), nil))
}

// NewInvalidValueError reports an unacceptable parameter value.
func NewInvalidValueError(param, value, reason string) *FilmError {
	return NewBadInputError(New(KindInvalidValue,
		fmt.Sprintf("invalid value %q for parameter %q: %s", value, param, reason), nil))
}

// NewRedundantParameterError reports a parameter that has no meaning in this request.
func NewRedundantParameterError(param, reason string) *FilmError {
	return NewBadInputError(New(KindRedundantParameter,
		fmt.Sprintf("redundant parameter %q: %s", param, reason), nil))
}

// NewUnknownParameterError reports a parameter name missing from the catalog.
func NewUnknownParameterError(param string) *FilmError {
	return New(KindUnknownParameter, fmt.Sprintf("unknown parameter %q", param), nil)
}

// NewDataGatheringError wraps a fetch failure or NO_DATA_FOUND.
func NewDataGatheringError(cause error) *FilmError {
	return New(KindDataGatheringFailed, MessageDataGathering, cause)
}

// NewNoDataFoundError reports a provider-side "no result" answer.
func NewNoDataFoundError(reason string) *FilmError {
	if reason == "" {
		reason = "the data source returned no film"
	}
	return NewDataGatheringError(New(KindNoDataFound, reason, nil))
}

// NewInnerError reports an internal fault unrelated to user input.
func NewInnerError(message string, cause error) *FilmError {
	return New(KindApplicationInner, message, cause)
}

// KindOf returns the kind of the outermost FilmError in err's chain, or "".
func KindOf(err error) Kind {
	var fe *FilmError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// CauseKind returns the kind of the first FilmError below the outermost one, or "".
func CauseKind(err error) Kind {
	var fe *FilmError
	if !errors.As(err, &fe) || fe.Cause == nil {
		return ""
	}
	return KindOf(fe.Cause)
}

// Has reports whether any error in err's chain has the given kind.
func Has(err error, kind Kind) bool {
	return errors.Is(err, kind)
}

// Detail returns the message of the innermost FilmError cause, for display
// next to the outer message.
func Detail(err error) string {
	var fe *FilmError
	if !errors.As(err, &fe) {
		if err == nil {
			return ""
		}
		return err.Error()
	}
	for {
		var inner *FilmError
		if fe.Cause == nil {
			return fe.Message
		}
		if !errors.As(fe.Cause, &inner) {
			return fe.Cause.Error()
		}
		fe = inner
	}
}
