// Package codegen renders expanded terms as source text.
//
// Identifiers are printed by resolving them against their binding table.
// A binding introduced by a macro is renamed only when another binding
// with the same name appears in the output, so hygienic expansions keep
// readable names wherever possible.
package codegen
