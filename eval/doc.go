// Package eval runs compile-time code with expr-lang.
//
// An [Evaluator] renders a fully expanded term back to source text, with
// every bound identifier spelled "name$ID" so that hygienically distinct
// variables stay distinct, and runs the text as an expr program. The program
// environment holds the values of the shared store, a few builtins, and any
// host values registered with [WithNatives].
//
// Arrow functions and function expressions evaluate to a [*Closure]. A
// closure body is either a single expression or a sequence of variable
// declarations ending in a return statement. A closure is callable from
// other compile-time code and, when bound by a syntax declaration, is
// invoked as a macro with a view of the call site as its only argument:
//
//	syntax inc = ctx => #`${ctx.next()} + 1`;
//
// The view exposes next, expr, statement, rest, name, len, and phase.
//
// The builtins are:
//
//	syntaxTemplate(skeleton, values...)  fill a serialized syntax template
//	syntaxQuote(strings, values...)      read a quoted template in context
//	constant(values...)                  a macro that always yields values
//	template(src)                        a macro substituting $0..$N
//
// Compiled programs are cached by a hash of their source.
package eval
