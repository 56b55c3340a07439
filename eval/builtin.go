package eval

import (
	"slices"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/ardnew/stx/expand"
	"github.com/ardnew/stx/reader"
	"github.com/ardnew/stx/syntax"
	"github.com/ardnew/stx/term"
)

func (ev *Evaluator) builtins() []expr.Option {
	return []expr.Option{
		expr.Function("syntaxTemplate", ev.syntaxTemplate),
		expr.Function("syntaxQuote", ev.syntaxQuote),
		expr.Function("constant", constant),
		expr.Function("template", template),
	}
}

// syntaxTemplate decodes the skeleton in params[0] and fills its
// placeholders with the remaining params.
func (ev *Evaluator) syntaxTemplate(params ...any) (any, error) {
	if len(params) == 0 {
		return nil, ErrEvaluate.Wrapf("syntaxTemplate: missing skeleton")
	}

	src, ok := params[0].(string)
	if !ok {
		return nil, ErrEvaluate.Wrapf("syntaxTemplate: skeleton must be a string, got %T", params[0])
	}

	skeleton, err := syntax.Unmarshal(src, ev.bindings)
	if err != nil {
		return nil, ErrEvaluate.Wrap(err)
	}

	return expand.ReplaceTemplate(skeleton, params[1:])
}

// syntaxQuote reads the string chunks of a tagged template as source, gives
// every token the lexical context of the serialized identifier passed as
// the final value, and fills the interpolations with the other values.
func (ev *Evaluator) syntaxQuote(params ...any) (any, error) {
	if len(params) < 2 { //nolint:mnd
		return nil, ErrEvaluate.Wrapf("syntaxQuote: missing context")
	}

	chunks, ok := params[0].([]any)
	if !ok {
		return nil, ErrEvaluate.Wrapf("syntaxQuote: chunks must be a list, got %T", params[0])
	}

	values := params[1 : len(params)-1]

	enc, ok := params[len(params)-1].(string)
	if !ok || len(chunks) < len(values)+1 {
		return nil, ErrEvaluate.Wrapf("syntaxQuote: malformed arguments")
	}

	ctx, err := syntax.Unmarshal(enc, ev.bindings)
	if err != nil {
		return nil, ErrEvaluate.Wrap(err)
	}

	if len(ctx) != 1 {
		return nil, ErrEvaluate.Wrapf("syntaxQuote: context must be a single identifier")
	}

	var sb strings.Builder

	for i := range len(values) + 1 {
		s, _ := chunks[i].(string)
		sb.WriteString(s)

		if i < len(values) {
			sb.WriteString(" $" + strconv.Itoa(i) + " ")
		}
	}

	items, err := reader.Read(sb.String())
	if err != nil {
		return nil, ErrEvaluate.Wrap(err)
	}

	for i, s := range items {
		items[i] = s.WithContext(ctx[0])
	}

	return expand.ReplaceTemplate(items, values)
}

// constant returns a macro that yields params on every invocation.
func constant(params ...any) (any, error) {
	values := slices.Clone(params)

	return expand.MacroFunc(func(*expand.MacroContext) ([]term.Item, error) {
		return expand.Sanitize(values)
	}), nil
}

// template returns a macro that reads src once and, on each invocation,
// consumes a parenthesized argument list and substitutes the Nth argument
// for each "$N" in src.
func template(params ...any) (any, error) {
	if len(params) != 1 {
		return nil, ErrEvaluate.Wrapf("template: expected 1 argument, got %d", len(params))
	}

	src, ok := params[0].(string)
	if !ok {
		return nil, ErrEvaluate.Wrapf("template: source must be a string, got %T", params[0])
	}

	items, err := reader.Read(src)
	if err != nil {
		return nil, ErrEvaluate.Wrap(err)
	}

	return expand.MacroFunc(func(mc *expand.MacroContext) ([]term.Item, error) {
		it, ok := mc.Next()

		args, isParens := term.AsSyntax(it)
		if !ok || !isParens || !args.IsParens() {
			return nil, expand.ErrMacro.Wrapf("%s expects an argument list", mc.Name().Val())
		}

		return expand.ReplaceTemplate(items, splitArgs(args.Inner()))
	}), nil
}

// splitArgs splits inner at its top-level commas.
func splitArgs(inner []*syntax.Syntax) []any {
	if len(inner) == 0 {
		return nil
	}

	var (
		args []any
		cur  []*syntax.Syntax
	)

	for _, s := range inner {
		if s.Is(syntax.KindPunctuator, ",") {
			args = append(args, cur)
			cur = nil

			continue
		}

		cur = append(cur, s)
	}

	return append(args, cur)
}

// contextView exposes the call site of a macro to compile-time code.
func contextView(mc *expand.MacroContext) map[string]any {
	return map[string]any{
		"name":  mc.Name,
		"len":   mc.Len,
		"phase": int(mc.Phase()),
		"next": func() term.Item {
			it, _ := mc.Next()

			return it
		},
		"expr": func() (term.Item, error) {
			return mc.NextExpr()
		},
		"statement": func() (term.Item, error) {
			return mc.NextStatement()
		},
		"rest": func() ([]any, error) {
			ts, err := mc.Rest()
			if err != nil {
				return nil, err
			}

			out := make([]any, len(ts))
			for i, t := range ts {
				out[i] = t
			}

			return out, nil
		},
	}
}
