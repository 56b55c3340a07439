// Package store holds the compile-time values shared by every module of a
// compilation.
//
// Keys take one of two forms: "specifier:name:phase" for a value exported by
// a module, and the string form of a [syntax.Binding] for a value bound
// locally by a syntax declaration.
package store
