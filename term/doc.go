// Package term defines the parsed program representation produced by the
// enforester.
//
// Every node type is a pointer to a struct implementing [Term]. The set of
// node types is closed: the marker method is unexported, so only this
// package can add variants, and consumers dispatch with a type switch.
//
// Before expansion a few fields hold raw token trees instead of terms
// (call arguments, parenthesized contents, function bodies). Those fields
// are typed as [Item], which is either a [*syntax.Syntax] or a [Term].
package term
