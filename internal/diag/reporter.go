package diag

import (
	"sync"

	"bramble/internal/source"
)

// Reporter: минимальный контракт получения диагностик от фаз.
type Reporter interface {
	Report(code Code, sev Severity, primary source.Span, msg string)
}

// BagReporter: адаптер, который пишет в *Bag. Safe for concurrent use.
type BagReporter struct {
	mu   sync.Mutex
	Bag  *Bag
	Unit string
}

func (r *BagReporter) Report(code Code, sev Severity, primary source.Span, msg string) {
	if r == nil || r.Bag == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Bag.Add(Diagnostic{Severity: sev, Code: code, Message: msg, Primary: primary, Unit: r.Unit})
}

// ReportErr reports err through r, keeping its code and span when it is a *Error.
func ReportErr(r Reporter, err error) {
	if r == nil || err == nil {
		return
	}
	d := FromError(err)
	r.Report(d.Code, d.Severity, d.Primary, d.Message)
}
