// Package syntax defines syntax objects, the unit of input consumed by the
// expander, together with the scope-set machinery used to keep macro
// expansion hygienic.
//
// A [Syntax] is an atomic token, a delimited group (parens, braces,
// brackets, or a syntax template), or a template literal. Each object
// carries a set of [Scope] values that apply to every [Phase] plus an
// additional set per phase. Scopes are added and removed functionally:
// [Syntax.AddScope], [Syntax.FlipScope], and [Syntax.RemoveScope] always
// return a new object.
//
// Identifiers are resolved against a shared [BindingTable] with
// [Syntax.Resolve], which picks the binding recorded under the largest
// scope set that is a subset of the identifier's own scopes:
//
//	bt := syntax.NewBindingTable()
//	top := syntax.NewScope(syntax.LabelTop)
//	x := syntax.FromIdentifier("x", nil).AddScope(top, bt, 0)
//	bt.Add(x, syntax.Gensym("x"), 0)
//	b, err := x.Resolve(0) // b.String() == "x#1"
package syntax
