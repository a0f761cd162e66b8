// Package mir lowers resolved routines into a control-flow graph of basic
// blocks with three-address assignments and explicit terminators, and
// replays that graph against backend-supplied Transformers.
//
// Value-producing ifs write both arms into one shared temporary that the
// merge block reads; there are no phi nodes.
package mir
