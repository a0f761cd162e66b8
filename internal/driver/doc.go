// Package driver runs units through the compiler pipeline: it reads
// encoded units, resolves them, lowers them to MIR and emits LLVM IR,
// aggregating per-unit diagnostics. Units and routines are processed in
// parallel; finished outputs may be kept in a DiskCache.
package driver
