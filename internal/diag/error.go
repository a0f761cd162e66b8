package diag

import (
	"errors"
	"fmt"

	"bramble/internal/source"
)

// Error is a coded compiler error with an optional source span. Passes
// return it through ordinary error values; callers that want the span
// recover it with AsError.
type Error struct {
	Code    Code
	Span    source.Span
	HasSpan bool
	Msg     string
}

// Errorf builds an error with a span.
func Errorf(code Code, span source.Span, format string, args ...any) *Error {
	return &Error{Code: code, Span: span, HasSpan: true, Msg: fmt.Sprintf(format, args...)}
}

// Newf builds an error whose span is attached later by the caller.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return e.Msg
}

// At attaches span unless one is already present.
func (e *Error) At(span source.Span) *Error {
	if e == nil || e.HasSpan {
		return e
	}
	e.Span = span
	e.HasSpan = true
	return e
}

// Diagnostic converts the error into a Diagnostic for aggregation.
func (e *Error) Diagnostic() Diagnostic {
	return NewError(e.Code, e.Span, e.Msg)
}

// AsError extracts a *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Attach stamps span onto err if it is a *Error without a span.
// Other errors are returned unchanged.
func Attach(err error, span source.Span) error {
	if de, ok := AsError(err); ok {
		de.At(span)
	}
	return err
}

// FromError wraps any error into a Diagnostic, using DrvInternal for
// errors that carry no code.
func FromError(err error) Diagnostic {
	if de, ok := AsError(err); ok {
		d := de.Diagnostic()
		if de.Msg != err.Error() {
			d.Message = err.Error()
		}
		return d
	}
	return NewError(DrvInternal, source.Span{}, err.Error())
}
