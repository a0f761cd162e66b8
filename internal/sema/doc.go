// Package sema resolves names and types of a parsed module tree.
//
// Resolve never mutates its input. It clones the tree, assigns canonical
// paths to every module and item, registers items in their module tables
// and then walks routines in declaration order with a ScopeStack, filling
// Annotation.Type on every statement and expression. The first error
// stops the walk.
package sema
