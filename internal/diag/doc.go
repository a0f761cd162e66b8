// Package diag defines coded compiler errors and the diagnostic records the
// driver aggregates from them.
//
// Passes return *Error values through ordinary error returns and stop at the
// first one. Errors raised deep inside the scope stack may lack a span; the
// resolver stamps the span of the node it was resolving with Attach before
// propagating. The driver converts errors into Diagnostic records, collects
// them per unit in a Bag, then sorts and deduplicates the bag before handing
// it to internal/diagfmt for rendering.
package diag
