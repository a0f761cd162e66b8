package diag

import (
	"bramble/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is the rendered-ready record collected by the driver.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Unit     string // unit the diagnostic came from, if any
	Notes    []Note
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{Severity: SevError, Code: code, Primary: primary, Message: msg}
}
