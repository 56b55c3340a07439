// Package expand implements the macro expansion engine.
//
// An [Enforester] turns a stream of syntax objects into terms one production
// at a time, invoking macros as it meets them. The [TokenExpander] drives the
// enforester across a whole stream and registers the bindings that each
// declaration introduces, evaluating syntax declarations at the next phase.
// The [TermExpander] then descends into each term, enforesting the raw
// tokens left in call arguments, parenthesized expressions, and function
// bodies. A [Compiler] runs both expanders for one phase.
//
// Compile-time evaluation and module loading are supplied by the caller
// through the [Evaluator] and [Importer] interfaces.
package expand
