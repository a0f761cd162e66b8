// Package llvm emits LLVM IR text from MIR by implementing
// mir.Transformer over llir/llvm values.
//
// Every variable and temporary lives in an entry-block alloca; loads and
// stores go through Place. Running mem2reg over the output recovers SSA.
package llvm
